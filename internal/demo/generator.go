// Package demo produces synthetic but schema-valid player data. It backs
// explicit demo mode and doubles as the fallback when a live call fails,
// so it must never error.
package demo

import (
	"math/rand/v2"

	"siege-tracker/internal/domain"
)

var operatorNames = []string{
	"ace", "jager", "ash", "smoke", "sledge", "mute", "hibana",
	"zofia", "ela", "bandit", "thermite", "twitch", "valkyrie",
	"castle", "pulse", "finka", "lion", "alibi", "maestro",
}

// seasonLabels spans the game's year/season numbering used by the
// seasonal history view, oldest first.
var seasonLabels = []string{
	"Y0S0",
	"Y1S1", "Y1S2", "Y1S3", "Y1S4",
	"Y2S1", "Y2S2", "Y2S3", "Y2S4",
	"Y3S1", "Y3S2", "Y3S3", "Y3S4",
	"Y4S1", "Y4S2", "Y4S3", "Y4S4",
	"Y5S1", "Y5S2", "Y5S3", "Y5S4",
	"Y6S1", "Y6S2", "Y6S3", "Y6S4",
	"Y7S1", "Y7S2", "Y7S3", "Y7S4",
	"Y8S1", "Y8S2", "Y8S3", "Y8S4",
	"Y9S1", "Y9S2", "Y9S3", "Y9S4",
	"Y10S1", "Y10S2", "Y10S3",
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Player returns a random but in-range PlayerStats for the given identity.
func (g *Generator) Player(username string, platform domain.Platform) domain.PlayerStats {
	opCount := randInt(3, 6)
	ops := make([]domain.OperatorStats, 0, opCount)
	for i := 0; i < opCount; i++ {
		ops = append(ops, domain.OperatorStats{
			Name:   operatorNames[rand.IntN(len(operatorNames))],
			Kills:  randInt(10, 300),
			Deaths: randInt(5, 250),
			Wins:   randInt(5, 80),
			Losses: randInt(5, 80),
		})
	}

	return domain.PlayerStats{
		Username: username,
		Platform: platform,
		Ranked: domain.RankedStats{
			Rank:               randInt(0, 32),
			MMR:                randInt(800, 6000),
			Season:             seasonLabels[len(seasonLabels)-1],
			LastMatchMMRChange: randInt(-30, 40),
		},
		General: domain.GeneralStats{
			Kills:       randInt(100, 2000),
			Deaths:      randInt(80, 1800),
			MatchesWon:  randInt(20, 300),
			MatchesLost: randInt(20, 300),
		},
		Operators: ops,
	}
}

// SeasonalHistory returns one record per known season label, oldest first.
func (g *Generator) SeasonalHistory() []domain.SeasonRecord {
	records := make([]domain.SeasonRecord, 0, len(seasonLabels))
	for _, label := range seasonLabels {
		mmr := randInt(1500, 6000)
		rank := randInt(0, 32)
		records = append(records, domain.SeasonRecord{
			Season:  label,
			Region:  "NA",
			MMR:     mmr,
			MaxMMR:  mmr + randInt(0, 300),
			Rank:    rank,
			MaxRank: max(rank, randInt(0, 32)),
		})
	}
	return records
}

// randInt returns a uniform int in [min, max] inclusive.
func randInt(min, max int) int {
	return min + rand.IntN(max-min+1)
}
