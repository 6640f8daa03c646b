// Package normalize reshapes raw upstream payloads into the internal
// player-stat schema. All upstream shape variance stops here: numeric
// fields absent upstream come out as zero and the derived-metrics layer
// never sees a provider-specific key.
package normalize

import (
	"siege-tracker/internal/domain"
	"siege-tracker/internal/ubi"
)

// Player folds the raw ranked and operator payloads into a PlayerStats.
// A nil ranked block (profile exists, no stats yet) yields all zeros.
func Player(username string, platform domain.Platform, ranked *ubi.RankedProfile, operators []ubi.RawOperator) domain.PlayerStats {
	stats := domain.PlayerStats{
		Username:  username,
		Platform:  platform,
		Operators: make([]domain.OperatorStats, 0, len(operators)),
	}

	if ranked != nil {
		stats.Ranked = domain.RankedStats{
			Rank:               ranked.Rank,
			MMR:                ranked.MMR,
			Season:             ranked.Season,
			LastMatchMMRChange: ranked.LastMatchMMRChange,
		}
		stats.General = domain.GeneralStats{
			Kills:       ranked.General.Kills,
			Deaths:      ranked.General.Deaths,
			MatchesWon:  ranked.General.MatchesWon,
			MatchesLost: ranked.General.MatchesLost,
		}
	}

	for _, op := range operators {
		stats.Operators = append(stats.Operators, Operator(op))
	}

	return stats
}

// Operator renames provider-specific operator keys into the canonical
// wins/losses shape, preferring the canonical key when both are present.
func Operator(op ubi.RawOperator) domain.OperatorStats {
	wins := op.Wins
	if wins == 0 {
		wins = op.RoundsWon
	}
	losses := op.Losses
	if losses == 0 {
		losses = op.RoundsLost
	}
	return domain.OperatorStats{
		Name:   op.Name,
		Kills:  op.Kills,
		Deaths: op.Deaths,
		Wins:   wins,
		Losses: losses,
	}
}

// Seasons converts the raw season progression into display records.
// Regionless entries keep region empty; ordering is left to the caller.
func Seasons(raw []ubi.RawSeason) []domain.SeasonRecord {
	records := make([]domain.SeasonRecord, 0, len(raw))
	for _, s := range raw {
		records = append(records, domain.SeasonRecord{
			Season:  s.SeasonID,
			Region:  s.Region,
			MMR:     s.MMR,
			MaxMMR:  s.MaxMMR,
			Rank:    s.Rank,
			MaxRank: s.MaxRank,
		})
	}
	return records
}
