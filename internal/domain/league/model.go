package league

import (
	"fmt"

	"github.com/mwhitacre/leaguelive/internal/domain/scoring"
)

// League is one independent fantasy league. CurrentWeek advances by exactly
// one each time a week is finalized, until TotalWeeks is reached.
type League struct {
	ID                 string
	Name               string
	Season             string
	CommissionerUserID string
	CurrentWeek        int
	TotalWeeks         int
	Scoring            scoring.Settings
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.CommissionerUserID == "" {
		return fmt.Errorf("league commissioner user id is required")
	}
	if l.CurrentWeek < 1 {
		return fmt.Errorf("league current week must be at least 1")
	}
	if l.TotalWeeks < l.CurrentWeek {
		return fmt.Errorf("league total weeks cannot be before current week")
	}

	return l.Scoring.Validate()
}
