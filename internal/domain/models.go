package domain

import (
	"strings"
	"time"
)

// Platform is the canonical platform identifier used everywhere below the
// HTTP boundary. Free-form aliases are folded by ParsePlatform.
type Platform string

const (
	PlatformPC   Platform = "pc"
	PlatformXbox Platform = "xbox"
	PlatformPSN  Platform = "psn"
)

// ParsePlatform normalizes provider and user-facing aliases into the
// canonical set. Unknown or empty input falls back to pc.
func ParsePlatform(alias string) Platform {
	switch strings.ToLower(strings.TrimSpace(alias)) {
	case "pc", "uplay":
		return PlatformPC
	case "xbox", "xbl":
		return PlatformXbox
	case "ps", "psn", "playstation":
		return PlatformPSN
	default:
		return PlatformPC
	}
}

// Session is the upstream authentication ticket. Owned by the session
// manager; valid until ExpiresAt, replaced on rejection.
type Session struct {
	Ticket    string
	SessionID string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s *Session) Valid(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

// PlayerIdentity is the resolved upstream identity for a (username,
// platform) pair. Request-scoped, never cached.
type PlayerIdentity struct {
	ProfileID   string
	UserID      string
	Platform    Platform
	DisplayName string
}

type RankedStats struct {
	Rank               int    `json:"rank"`
	MMR                int    `json:"mmr"`
	Season             string `json:"season"`
	LastMatchMMRChange int    `json:"lastMatchMmrChange"`
}

type GeneralStats struct {
	Kills       int `json:"kills"`
	Deaths      int `json:"deaths"`
	MatchesWon  int `json:"matchesWon"`
	MatchesLost int `json:"matchesLost"`
}

type OperatorStats struct {
	Name   string `json:"name"`
	Kills  int    `json:"kills"`
	Deaths int    `json:"deaths"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// PlayerStats is the normalized per-player record. Absent upstream fields
// are zero, never null, so downstream arithmetic is total.
type PlayerStats struct {
	Username  string          `json:"username"`
	Platform  Platform        `json:"platform"`
	Ranked    RankedStats     `json:"ranked"`
	General   GeneralStats    `json:"general"`
	Operators []OperatorStats `json:"operators"`
}

func (p PlayerStats) TotalMatches() int {
	return p.General.MatchesWon + p.General.MatchesLost
}

type SeasonRecord struct {
	Season  string `json:"season"`
	Region  string `json:"region"`
	MMR     int    `json:"mmr"`
	MaxMMR  int    `json:"maxMmr"`
	Rank    int    `json:"rank"`
	MaxRank int    `json:"maxRank"`
}

// PlayerRequest is one entry of a batch lookup.
type PlayerRequest struct {
	Username string `json:"username" validate:"required"`
	Platform string `json:"platform"`
}

// BatchResult is the per-player outcome of a batch lookup. Failure of one
// player never aborts the others.
type BatchResult struct {
	Success  bool         `json:"success"`
	Username string       `json:"username"`
	Data     *PlayerStats `json:"data,omitempty"`
	Error    string       `json:"error,omitempty"`
}

type ThreatCategory struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// ThreatBreakdown holds the six threat-score components in display order.
type ThreatBreakdown []ThreatCategory
