package stats

// Line holds the raw statistical counters for one player (or defense unit)
// in one week. Counters are cumulative for the week and are re-read from
// scratch on every scoring pass, so a partially updated line never drifts.
type Line struct {
	PlayerID string
	Week     int

	PassingYards  float64
	PassingTDs    int
	Interceptions int

	RushingYards float64
	RushingTDs   int

	ReceivingYards float64
	Receptions     int
	ReceivingTDs   int

	FumblesLost         int
	TwoPointConversions int

	FieldGoals0to39   int
	FieldGoals40to49  int
	FieldGoals50Plus  int
	FieldGoalsMissed  int
	ExtraPointsMade   int
	ExtraPointsMissed int

	Sacks            int
	DefInterceptions int
	FumbleRecoveries int
	Safeties         int
	DefensiveTDs     int

	// PointsAllowed is set only for defense/special-teams units; nil for
	// individual players.
	PointsAllowed *int
}
