package schedule

import (
	"fmt"
	"time"
)

// Game is one real-world game on the league's calendar. ExpectedEndAt is
// the scheduled end used to close a live-scoring window; the actual final
// whistle may differ, which is why the close carries a configurable delay.
type Game struct {
	ID            string
	Week          int
	KickoffAt     time.Time
	ExpectedEndAt time.Time
}

func (g Game) StartedBy(now time.Time) bool {
	return !g.KickoffAt.IsZero() && !now.Before(g.KickoffAt)
}

// Matchup is one scheduled head-to-head pairing of two fantasy teams for
// one week.
type Matchup struct {
	LeagueID   string
	Week       int
	HomeTeamID string
	AwayTeamID string
}

func (m Matchup) Validate() error {
	if m.LeagueID == "" {
		return fmt.Errorf("matchup league id is required")
	}
	if m.Week < 1 {
		return fmt.Errorf("matchup week must be at least 1")
	}
	if m.HomeTeamID == "" || m.AwayTeamID == "" {
		return fmt.Errorf("matchup requires two team ids")
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("matchup cannot pair a team with itself")
	}

	return nil
}

// WeekWindow bounds a live-scoring window: first kickoff through the last
// game's expected end.
type WeekWindow struct {
	Week    int
	OpensAt time.Time
	EndsAt  time.Time
}

// WindowForWeek derives the scoring window from the week's games. The
// second return is false when the week has no scheduled games.
func WindowForWeek(games []Game, week int) (WeekWindow, bool) {
	var opens, ends time.Time
	for _, g := range games {
		if g.Week != week || g.KickoffAt.IsZero() {
			continue
		}
		if opens.IsZero() || g.KickoffAt.Before(opens) {
			opens = g.KickoffAt
		}
		end := g.ExpectedEndAt
		if end.IsZero() {
			end = g.KickoffAt
		}
		if ends.IsZero() || end.After(ends) {
			ends = end
		}
	}
	if opens.IsZero() {
		return WeekWindow{}, false
	}

	return WeekWindow{Week: week, OpensAt: opens, EndsAt: ends}, true
}
