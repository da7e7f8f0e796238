package scoring

import (
	"fmt"
	"sort"
	"time"
)

// Settings stores one league's configurable scoring weights. Yardage weights
// apply per yard with no bucketing; everything else is a flat per-event
// weight except the defensive points-allowed tiers.
type Settings struct {
	PassingYardWeight   float64
	PassingTDWeight     float64
	InterceptionWeight  float64
	RushingYardWeight   float64
	RushingTDWeight     float64
	ReceivingYardWeight float64
	ReceptionWeight     float64
	ReceivingTDWeight   float64
	FumbleLostWeight    float64
	TwoPointWeight      float64

	FieldGoal0to39Weight  float64
	FieldGoal40to49Weight float64
	FieldGoal50Weight     float64
	FieldGoalMissWeight   float64
	ExtraPointWeight      float64
	ExtraPointMissWeight  float64

	SackWeight            float64
	DefInterceptionWeight float64
	FumbleRecoveryWeight  float64
	SafetyWeight          float64
	DefensiveTDWeight     float64

	// PointsAllowedTiers maps an upper bound of points allowed (inclusive)
	// to the fantasy points awarded. Tiers are evaluated in ascending bound
	// order; a shutout uses the 0 bound. Points allowed above the highest
	// bound score PointsAllowedOverflow.
	PointsAllowedTiers    map[int]float64
	PointsAllowedOverflow float64
}

// DefaultSettings is a standard PPR rule set.
func DefaultSettings() Settings {
	return Settings{
		PassingYardWeight:   0.04,
		PassingTDWeight:     4,
		InterceptionWeight:  -2,
		RushingYardWeight:   0.1,
		RushingTDWeight:     6,
		ReceivingYardWeight: 0.1,
		ReceptionWeight:     1,
		ReceivingTDWeight:   6,
		FumbleLostWeight:    -2,
		TwoPointWeight:      2,

		FieldGoal0to39Weight:  3,
		FieldGoal40to49Weight: 4,
		FieldGoal50Weight:     5,
		FieldGoalMissWeight:   -1,
		ExtraPointWeight:      1,
		ExtraPointMissWeight:  -1,

		SackWeight:            1,
		DefInterceptionWeight: 2,
		FumbleRecoveryWeight:  2,
		SafetyWeight:          2,
		DefensiveTDWeight:     6,

		PointsAllowedTiers: map[int]float64{
			0:  10,
			6:  7,
			13: 4,
			20: 1,
			27: 0,
			34: -1,
		},
		PointsAllowedOverflow: -4,
	}
}

func (s Settings) Validate() error {
	if len(s.PointsAllowedTiers) == 0 {
		return fmt.Errorf("points allowed tiers are required")
	}

	bounds := make([]int, 0, len(s.PointsAllowedTiers))
	for bound := range s.PointsAllowedTiers {
		if bound < 0 {
			return fmt.Errorf("points allowed tier bound cannot be negative")
		}
		bounds = append(bounds, bound)
	}
	sort.Ints(bounds)

	// The tier table must be monotonically decreasing so allowing more
	// points never scores better.
	last := s.PointsAllowedTiers[bounds[0]]
	for _, bound := range bounds[1:] {
		value := s.PointsAllowedTiers[bound]
		if value > last {
			return fmt.Errorf("points allowed tiers must not increase: bound=%d", bound)
		}
		last = value
	}
	if s.PointsAllowedOverflow > last {
		return fmt.Errorf("points allowed overflow must not exceed the highest tier")
	}

	return nil
}

// PlayerScore is one roster row inside a matchup snapshot. Bench rows carry
// their score for display but are excluded from the team total.
type PlayerScore struct {
	PlayerID  string
	Slot      string
	Starter   bool
	Locked    bool
	Points    float64
	Projected float64
}

// MatchupScore is one team's live score for one week. It is a snapshot
// superseded on every tick, not an event log.
type MatchupScore struct {
	TeamID          string
	Week            int
	TotalPoints     float64
	ProjectedPoints float64
	Players         []PlayerScore
}

// Snapshot is the latest full set of matchup scores for a league week.
type Snapshot struct {
	LeagueID  string
	Week      int
	Scores    []MatchupScore
	UpdatedAt time.Time
}

// MatchupResult is one frozen head-to-head outcome produced by week
// finalization.
type MatchupResult struct {
	HomeTeamID string
	AwayTeamID string
	HomePoints float64
	AwayPoints float64
	Summary    string
}

// WeekFinal records that a league week has been finalized. Its existence is
// the idempotence guard: finalization never runs twice for the same week.
type WeekFinal struct {
	LeagueID    string
	Week        int
	Results     []MatchupResult
	FinalizedAt time.Time
}
