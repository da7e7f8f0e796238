package draft

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotInProgress   = errors.New("draft is not in progress")
	ErrAlreadyStarted  = errors.New("draft already started")
	ErrCompleted       = errors.New("draft already completed")
	ErrWrongTurn       = errors.New("not this team's turn")
	ErrPlayerTaken     = errors.New("player already drafted")
	ErrPickSequenceGap = errors.New("pick sequence gap detected")
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusPaused     Status = "PAUSED"
	StatusCompleted  Status = "COMPLETED"
)

type Type string

const TypeSnake Type = "SNAKE"

// Slot is one entry in the immutable draft order: whose turn a given
// overall pick is. Generated once at creation and never mutated.
type Slot struct {
	TeamID  string
	Round   int
	Overall int
}

// Pick is one recorded selection. Immutable once appended; Number is the
// unique key and numbers form a dense sequence starting at 1.
type Pick struct {
	Number   int
	Round    int
	TeamID   string
	PlayerID string
	AutoPick bool
	PickedAt time.Time
}

// Draft owns one league's draft state. Mutated only through the draft
// service, which serializes all writes per draft.
type Draft struct {
	LeagueID        string
	Status          Status
	Type            Type
	TimePerPick     time.Duration
	AutoPickEnabled bool
	StartedAt       time.Time
	PickStartedAt   time.Time
	TeamIDs         []string
	Rounds          int
	Order           []Slot
	Picks           []Pick
}

// New creates a PENDING snake draft with its full order precomputed.
func New(leagueID string, teamIDs []string, rounds int, timePerPick time.Duration) (Draft, error) {
	if leagueID == "" {
		return Draft{}, fmt.Errorf("draft league id is required")
	}
	if len(teamIDs) < 2 {
		return Draft{}, fmt.Errorf("draft requires at least 2 teams, got %d", len(teamIDs))
	}
	if rounds < 1 {
		return Draft{}, fmt.Errorf("draft requires at least 1 round")
	}
	if timePerPick <= 0 {
		return Draft{}, fmt.Errorf("draft time per pick must be positive")
	}

	return Draft{
		LeagueID:        leagueID,
		Status:          StatusPending,
		Type:            TypeSnake,
		TimePerPick:     timePerPick,
		AutoPickEnabled: true,
		TeamIDs:         append([]string(nil), teamIDs...),
		Rounds:          rounds,
		Order:           BuildOrder(teamIDs, rounds),
	}, nil
}

func (d Draft) TotalPicks() int {
	return len(d.TeamIDs) * d.Rounds
}

func (d Draft) NextPickNumber() int {
	return len(d.Picks) + 1
}

func (d Draft) IsComplete() bool {
	return len(d.Picks) >= d.TotalPicks()
}

// OnClock returns the team owed the next pick. Always recomputed from the
// pick count and the immutable team list, never stored.
func (d Draft) OnClock() (string, bool) {
	if d.IsComplete() {
		return "", false
	}
	return TeamOnClock(d.NextPickNumber(), d.TeamIDs), true
}

func (d Draft) PlayerTaken(playerID string) bool {
	for _, p := range d.Picks {
		if p.PlayerID == playerID {
			return true
		}
	}
	return false
}

// AppendPick validates and appends the next pick. The returned error wraps
// ErrPickSequenceGap when the proposed number would break the dense
// sequence; callers must treat that as an invariant violation.
func (d *Draft) AppendPick(p Pick) error {
	if p.Number != d.NextPickNumber() {
		return fmt.Errorf("%w: expected %d, got %d", ErrPickSequenceGap, d.NextPickNumber(), p.Number)
	}
	if d.PlayerTaken(p.PlayerID) {
		return fmt.Errorf("%w: %s", ErrPlayerTaken, p.PlayerID)
	}

	d.Picks = append(d.Picks, p)
	if d.IsComplete() {
		d.Status = StatusCompleted
	}
	return nil
}

// ValidateSequence checks the dense, gapless, strictly increasing pick
// numbering invariant across the whole recorded history.
func (d Draft) ValidateSequence() error {
	for i, p := range d.Picks {
		if p.Number != i+1 {
			return fmt.Errorf("%w: position %d holds number %d", ErrPickSequenceGap, i+1, p.Number)
		}
	}
	if len(d.Picks) > len(d.Order) {
		return fmt.Errorf("%w: %d picks for %d order slots", ErrPickSequenceGap, len(d.Picks), len(d.Order))
	}
	return nil
}
