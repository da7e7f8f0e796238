package gateway

import "encoding/json"

const (
	MessageAuthenticate = "authenticate"
	MessageJoinDraft    = "join_draft"
	MessageJoinScoring  = "join_scoring"
	MessageJoinChat     = "join_chat"
	MessageDraftPlayer  = "draft_player"
	MessageSendMessage  = "send_message"
)

// ClientMessage is the inbound envelope. Data is decoded per Type.
type ClientMessage struct {
	Type string          `json:"type" validate:"required"`
	Data json.RawMessage `json:"data"`
}

type AuthenticatePayload struct {
	Token string `json:"token" validate:"required"`
}

type JoinDraftPayload struct {
	LeagueID string `json:"league_id" validate:"required"`
}

type JoinScoringPayload struct {
	LeagueID string `json:"league_id" validate:"required"`
	Week     int    `json:"week" validate:"required,min=1"`
}

type JoinChatPayload struct {
	LeagueID string `json:"league_id" validate:"required"`
}

// DraftPlayerPayload's ExpectedPick and ExpectedRound are advisory; the
// server recomputes the authoritative turn and rejects stale submissions.
type DraftPlayerPayload struct {
	LeagueID      string `json:"league_id" validate:"required"`
	TeamID        string `json:"team_id" validate:"required"`
	PlayerID      string `json:"player_id" validate:"required"`
	ExpectedPick  int    `json:"expected_pick" validate:"min=0"`
	ExpectedRound int    `json:"expected_round" validate:"min=0"`
}

type SendMessagePayload struct {
	LeagueID string `json:"league_id" validate:"required"`
	Body     string `json:"body" validate:"required,max=500"`
}
