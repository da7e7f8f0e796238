package realtime

import (
	"time"

	"github.com/mwhitacre/leaguelive/internal/domain/draft"
	"github.com/mwhitacre/leaguelive/internal/domain/scoring"
)

// Event is the tagged union of everything the hub can deliver. Each variant
// carries its own wire tag via EventType; the hub wraps it in an Envelope so
// clients can switch exhaustively on the type field.
type Event interface {
	EventType() string
}

// Envelope is the single wire shape for every outbound message.
type Envelope struct {
	Type string `json:"type"`
	Data Event  `json:"data"`
}

const (
	TypeDraftEvent       = "draft_event"
	TypeDraftSnapshot    = "draft_snapshot"
	TypeDraftTimer       = "draft_timer"
	TypeScoreUpdate      = "score_update"
	TypeScoringLifecycle = "scoring_lifecycle"
	TypeChatMessage      = "chat_message"
	TypeAuthAck          = "auth_ack"
	TypeError            = "error"
)

type DraftEventKind string

const (
	DraftStarted   DraftEventKind = "DRAFT_STARTED"
	DraftPaused    DraftEventKind = "DRAFT_PAUSED"
	DraftResumed   DraftEventKind = "DRAFT_RESUMED"
	DraftCompleted DraftEventKind = "DRAFT_COMPLETED"
	PlayerDrafted  DraftEventKind = "PLAYER_DRAFTED"
)

// DraftEvent announces a draft state change to the draft room. For
// PLAYER_DRAFTED, NextTeamID and Deadline describe the new turn; both are
// empty once the draft completes.
type DraftEvent struct {
	Kind       DraftEventKind `json:"kind"`
	LeagueID   string         `json:"league_id"`
	PickNumber int            `json:"pick_number,omitempty"`
	Round      int            `json:"round,omitempty"`
	TeamID     string         `json:"team_id,omitempty"`
	PlayerID   string         `json:"player_id,omitempty"`
	AutoPick   bool           `json:"auto_pick,omitempty"`
	NextTeamID string         `json:"next_team_id,omitempty"`
	Deadline   time.Time      `json:"deadline"`
}

func (DraftEvent) EventType() string { return TypeDraftEvent }

// DraftTimerEvent carries the countdown for the team on the clock. The
// server deadline stays authoritative; the client countdown is display only.
type DraftTimerEvent struct {
	LeagueID         string `json:"league_id"`
	TeamID           string `json:"team_id"`
	TimeRemainingSec int    `json:"time_remaining_sec"`
}

func (DraftTimerEvent) EventType() string { return TypeDraftTimer }

// PlayerScoreView is the wire shape of one roster row in a score update.
type PlayerScoreView struct {
	PlayerID  string  `json:"player_id"`
	Slot      string  `json:"slot"`
	Starter   bool    `json:"starter"`
	Locked    bool    `json:"locked"`
	Points    float64 `json:"points"`
	Projected float64 `json:"projected"`
}

type TeamScoreView struct {
	TeamID          string            `json:"team_id"`
	Week            int               `json:"week"`
	TotalPoints     float64           `json:"total_points"`
	ProjectedPoints float64           `json:"projected_points"`
	Players         []PlayerScoreView `json:"players"`
}

func NewTeamScoreViews(scores []scoring.MatchupScore) []TeamScoreView {
	views := make([]TeamScoreView, 0, len(scores))
	for _, score := range scores {
		view := TeamScoreView{
			TeamID:          score.TeamID,
			Week:            score.Week,
			TotalPoints:     score.TotalPoints,
			ProjectedPoints: score.ProjectedPoints,
			Players:         make([]PlayerScoreView, 0, len(score.Players)),
		}
		for _, row := range score.Players {
			view.Players = append(view.Players, PlayerScoreView{
				PlayerID:  row.PlayerID,
				Slot:      row.Slot,
				Starter:   row.Starter,
				Locked:    row.Locked,
				Points:    row.Points,
				Projected: row.Projected,
			})
		}
		views = append(views, view)
	}
	return views
}

// ScoreUpdateEvent is the full superseding score snapshot for one league
// week.
type ScoreUpdateEvent struct {
	LeagueID    string          `json:"league_id"`
	Week        int             `json:"week"`
	TeamScores  []TeamScoreView `json:"team_scores"`
	LastUpdated time.Time       `json:"last_updated"`
}

func (ScoreUpdateEvent) EventType() string { return TypeScoreUpdate }

type PickView struct {
	Number   int       `json:"number"`
	Round    int       `json:"round"`
	TeamID   string    `json:"team_id"`
	PlayerID string    `json:"player_id"`
	AutoPick bool      `json:"auto_pick"`
	PickedAt time.Time `json:"picked_at"`
}

// DraftSnapshotEvent is pushed to a connection when it joins a draft room
// so late joiners see the full pick history.
type DraftSnapshotEvent struct {
	LeagueID      string     `json:"league_id"`
	Status        string     `json:"status"`
	OnClockTeamID string     `json:"on_clock_team_id,omitempty"`
	NextPick      int        `json:"next_pick,omitempty"`
	Picks         []PickView `json:"picks"`
}

func (DraftSnapshotEvent) EventType() string { return TypeDraftSnapshot }

func NewDraftSnapshot(d draft.Draft) DraftSnapshotEvent {
	snapshot := DraftSnapshotEvent{
		LeagueID: d.LeagueID,
		Status:   string(d.Status),
		Picks:    make([]PickView, 0, len(d.Picks)),
	}
	if onClock, ok := d.OnClock(); ok {
		snapshot.OnClockTeamID = onClock
		snapshot.NextPick = d.NextPickNumber()
	}
	for _, p := range d.Picks {
		snapshot.Picks = append(snapshot.Picks, PickView{
			Number:   p.Number,
			Round:    p.Round,
			TeamID:   p.TeamID,
			PlayerID: p.PlayerID,
			AutoPick: p.AutoPick,
			PickedAt: p.PickedAt,
		})
	}
	return snapshot
}

type ScoringLifecycleKind string

const (
	ScoringStarted   ScoringLifecycleKind = "scoring:started"
	ScoringFinalized ScoringLifecycleKind = "scoring:finalized"
)

// ScoringLifecycleEvent marks week-boundary transitions; finalized events
// carry the per-team result summaries.
type ScoringLifecycleEvent struct {
	Kind      ScoringLifecycleKind `json:"kind"`
	LeagueID  string               `json:"league_id"`
	Week      int                  `json:"week"`
	Summaries []string             `json:"summaries,omitempty"`
}

func (ScoringLifecycleEvent) EventType() string { return TypeScoringLifecycle }

type ChatMessageEvent struct {
	LeagueID string    `json:"league_id"`
	UserID   string    `json:"user_id"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

func (ChatMessageEvent) EventType() string { return TypeChatMessage }

// AuthAckEvent is delivered only to the authenticating connection.
type AuthAckEvent struct {
	UserID  string   `json:"user_id"`
	TeamIDs []string `json:"team_ids"`
}

func (AuthAckEvent) EventType() string { return TypeAuthAck }

// ErrorEvent is delivered only to the originating connection, with the
// engine's recomputed state hints where applicable.
type ErrorEvent struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	OnClockTeam string `json:"on_clock_team,omitempty"`
	NextPick    int    `json:"next_pick,omitempty"`
}

func (ErrorEvent) EventType() string { return TypeError }
