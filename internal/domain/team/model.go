package team

import "fmt"

// Team is one fantasy franchise in a league, including its cumulative
// season record.
type Team struct {
	ID            string
	LeagueID      string
	Name          string
	OwnerUserID   string
	Wins          int
	Losses        int
	Ties          int
	PointsFor     float64
	PointsAgainst float64
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.LeagueID == "" {
		return fmt.Errorf("team league id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.OwnerUserID == "" {
		return fmt.Errorf("team owner user id is required")
	}

	return nil
}
