// Package metrics is the derived-metrics engine: pure, deterministic
// functions from normalized player stats to the composite threat score,
// its per-category breakdown, team aggregates and qualitative badges.
package metrics

import (
	"math"

	"siege-tracker/internal/domain"
)

// Category labels, in display order. Breakdown output always covers all
// six.
var categoryLabels = [...]string{"Rank", "MMR", "K/D", "Winrate", "Streak", "Op Diversity"}

// components returns the six weighted threat terms for a player:
// rank (30), mmr (20), k/d (20), winrate (15), streak (10, signed) and
// operator diversity (5).
func components(p domain.PlayerStats) [6]float64 {
	rank := math.Min(float64(p.Ranked.Rank)/35, 1)
	mmr := math.Min(float64(p.Ranked.MMR)/6000, 1)
	kd := math.Min(kdRatio(p)/2.5, 1)
	streak := clamp(float64(p.Ranked.LastMatchMMRChange)/40, -1, 1)
	diversity := math.Min(float64(len(p.Operators))/6, 1)

	return [6]float64{
		rank * 30,
		mmr * 20,
		kd * 20,
		winrate(p) * 15,
		streak * 10,
		diversity * 5,
	}
}

// ThreatScore is the composite 0-100 skill/impact estimate.
func ThreatScore(p domain.PlayerStats) int {
	var sum float64
	for _, c := range components(p) {
		sum += c
	}
	return int(math.Round(clamp(sum, 0, 100)))
}

// Breakdown returns the six threat components, each rounded on its own.
// The values sum to ThreatScore within rounding tolerance.
func Breakdown(p domain.PlayerStats) domain.ThreatBreakdown {
	terms := components(p)
	var values [6]int
	var total int
	for i, c := range terms {
		values[i] = int(math.Round(c))
		total += values[i]
	}
	// The score clamps at 0 while the signed streak term can pull the
	// raw sum negative; trim streak so the categories still total the
	// score. The weights cap at exactly 100, so only the lower clamp
	// can ever bind.
	if total < 0 {
		values[4] -= total
	}

	breakdown := make(domain.ThreatBreakdown, 0, len(values))
	for i, v := range values {
		breakdown = append(breakdown, domain.ThreatCategory{
			Label: categoryLabels[i],
			Value: v,
		})
	}
	return breakdown
}

// TeamScore is the mean threat score weighted by max(rank, 1), so
// higher-ranked players pull the team average more strongly. Empty input
// yields 0.
func TeamScore(players []domain.PlayerStats) int {
	if len(players) == 0 {
		return 0
	}
	var weighted, weights float64
	for _, p := range players {
		w := float64(max(p.Ranked.Rank, 1))
		weighted += w * float64(ThreatScore(p))
		weights += w
	}
	return int(math.Round(weighted / weights))
}

// TeamBreakdown is the unweighted per-category mean across players.
// Empty input yields an empty breakdown.
func TeamBreakdown(players []domain.PlayerStats) domain.ThreatBreakdown {
	if len(players) == 0 {
		return domain.ThreatBreakdown{}
	}

	var sums [6]float64
	for _, p := range players {
		for i, c := range components(p) {
			sums[i] += c
		}
	}

	breakdown := make(domain.ThreatBreakdown, 0, len(sums))
	for i, sum := range sums {
		breakdown = append(breakdown, domain.ThreatCategory{
			Label: categoryLabels[i],
			Value: int(math.Round(sum / float64(len(players)))),
		})
	}
	return breakdown
}

// badgeRules is evaluated in declaration order; every matching label is
// emitted once.
var badgeRules = []struct {
	label string
	match func(p domain.PlayerStats) bool
}{
	{"High KD", func(p domain.PlayerStats) bool { return kdRatio(p) >= 1.5 }},
	{"High Winrate", func(p domain.PlayerStats) bool { return winrate(p) >= 0.55 }},
	{"Big MMR Gain", func(p domain.PlayerStats) bool { return p.Ranked.LastMatchMMRChange >= 20 }},
	{"One-Trick Pool", func(p domain.PlayerStats) bool { return len(p.Operators) >= 1 && len(p.Operators) <= 3 }},
	{"Top Tier", func(p domain.PlayerStats) bool { return p.Ranked.Rank >= 30 }},
	{"Veteran", func(p domain.PlayerStats) bool { return p.TotalMatches() >= 300 }},
}

// Badges returns the qualitative labels a player earns, in rule order.
func Badges(p domain.PlayerStats) []string {
	badges := make([]string, 0, len(badgeRules))
	for _, rule := range badgeRules {
		if rule.match(p) {
			badges = append(badges, rule.label)
		}
	}
	return badges
}

// kdRatio defaults to 1 with zero deaths so the term never divides by
// zero.
func kdRatio(p domain.PlayerStats) float64 {
	if p.General.Deaths == 0 {
		return 1
	}
	return float64(p.General.Kills) / float64(p.General.Deaths)
}

// winrate defaults to 0.5 with no recorded matches.
func winrate(p domain.PlayerStats) float64 {
	total := p.TotalMatches()
	if total == 0 {
		return 0.5
	}
	return float64(p.General.MatchesWon) / float64(total)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
