package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"nhooyr.io/websocket"

	"github.com/mwhitacre/leaguelive/internal/platform/id"
	"github.com/mwhitacre/leaguelive/internal/platform/logging"
	"github.com/mwhitacre/leaguelive/internal/realtime"
	"github.com/mwhitacre/leaguelive/internal/usecase"
)

const writeTimeout = 3 * time.Second

// session is the per-connection state. Identity stays nil until the
// connection authenticates; every other message type requires it.
type session struct {
	connID   string
	identity *Identity
}

type Gateway struct {
	hub        *realtime.Hub
	draftSvc   *usecase.DraftService
	scoringSvc *usecase.ScoringSchedulerService
	auth       Authenticator
	ids        id.Generator
	validator  *validator.Validate
	logger     *logging.Logger
	now        func() time.Time
}

func NewGateway(
	hub *realtime.Hub,
	draftSvc *usecase.DraftService,
	scoringSvc *usecase.ScoringSchedulerService,
	auth Authenticator,
	logger *logging.Logger,
) *Gateway {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Gateway{
		hub:        hub,
		draftSvc:   draftSvc,
		scoringSvc: scoringSvc,
		auth:       auth,
		ids:        id.NewRandomGenerator(),
		validator:  validator.New(),
		logger:     logger,
		now:        time.Now,
	}
}

func (g *Gateway) Handle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID, err := g.ids.NewID()
		if err != nil {
			g.logger.Error("generate connection id", "error", err)
			return
		}
		out, ok := g.hub.Register(connID)
		if !ok {
			return
		}
		defer g.hub.Unregister(connID)

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for payload := range out {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				err := conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					writeCancel()
					return
				}
			}
		}()

		sess := &session{connID: connID}
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					g.logger.Debug("websocket read ended", "conn_id", connID, "error", err)
				}
				return
			}
			g.dispatch(r.Context(), sess, data)
		}
	}
}

func (g *Gateway) dispatch(ctx context.Context, sess *session, data []byte) {
	var msg ClientMessage
	if err := sonic.Unmarshal(data, &msg); err != nil {
		g.sendError(sess, fmt.Errorf("%w: malformed message", usecase.ErrInvalidInput))
		return
	}

	switch msg.Type {
	case MessageAuthenticate:
		g.handleAuthenticate(ctx, sess, msg.Data)
	case MessageJoinDraft:
		g.handleJoinDraft(ctx, sess, msg.Data)
	case MessageJoinScoring:
		g.handleJoinScoring(ctx, sess, msg.Data)
	case MessageJoinChat:
		g.handleJoinChat(ctx, sess, msg.Data)
	case MessageDraftPlayer:
		g.handleDraftPlayer(ctx, sess, msg.Data)
	case MessageSendMessage:
		g.handleSendMessage(ctx, sess, msg.Data)
	default:
		g.sendError(sess, fmt.Errorf("%w: unknown message type %q", usecase.ErrInvalidInput, msg.Type))
	}
}

func (g *Gateway) handleAuthenticate(ctx context.Context, sess *session, data []byte) {
	var payload AuthenticatePayload
	if !g.decode(ctx, sess, data, &payload) {
		return
	}

	identity, err := g.auth.Authenticate(ctx, payload.Token)
	if err != nil {
		g.sendError(sess, err)
		return
	}
	sess.identity = &identity

	g.hub.EmitConn(sess.connID, realtime.AuthAckEvent{
		UserID:  identity.UserID,
		TeamIDs: identity.TeamIDs,
	})
}

func (g *Gateway) handleJoinDraft(ctx context.Context, sess *session, data []byte) {
	if !g.requireAuth(sess) {
		return
	}
	var payload JoinDraftPayload
	if !g.decode(ctx, sess, data, &payload) {
		return
	}

	item, err := g.draftSvc.Get(ctx, payload.LeagueID)
	if err != nil {
		g.sendError(sess, err)
		return
	}

	g.hub.Join(realtime.DraftRoom(payload.LeagueID), sess.connID)
	g.hub.EmitConn(sess.connID, realtime.NewDraftSnapshot(item))
}

func (g *Gateway) handleJoinScoring(ctx context.Context, sess *session, data []byte) {
	if !g.requireAuth(sess) {
		return
	}
	var payload JoinScoringPayload
	if !g.decode(ctx, sess, data, &payload) {
		return
	}

	g.hub.Join(realtime.ScoringRoom(payload.LeagueID, payload.Week), sess.connID)
	// Lifecycle announcements (open, finalize) go league-wide.
	g.hub.Join(realtime.LeagueRoom(payload.LeagueID), sess.connID)

	snapshot, exists, err := g.scoringSvc.Snapshot(ctx, payload.LeagueID, payload.Week)
	if err != nil {
		g.sendError(sess, err)
		return
	}
	if exists {
		g.hub.EmitConn(sess.connID, realtime.ScoreUpdateEvent{
			LeagueID:    snapshot.LeagueID,
			Week:        snapshot.Week,
			TeamScores:  realtime.NewTeamScoreViews(snapshot.Scores),
			LastUpdated: snapshot.UpdatedAt,
		})
	}
}

func (g *Gateway) handleJoinChat(ctx context.Context, sess *session, data []byte) {
	if !g.requireAuth(sess) {
		return
	}
	var payload JoinChatPayload
	if !g.decode(ctx, sess, data, &payload) {
		return
	}

	g.hub.Join(realtime.ChatRoom(payload.LeagueID), sess.connID)
}

func (g *Gateway) handleDraftPlayer(ctx context.Context, sess *session, data []byte) {
	if !g.requireAuth(sess) {
		return
	}
	var payload DraftPlayerPayload
	if !g.decode(ctx, sess, data, &payload) {
		return
	}
	if !sess.identity.Owns(payload.TeamID) {
		g.sendError(sess, fmt.Errorf("%w: team %s is not yours", usecase.ErrUnauthorized, payload.TeamID))
		return
	}

	if _, err := g.draftSvc.SubmitPick(ctx, payload.LeagueID, payload.TeamID, payload.PlayerID); err != nil {
		g.sendDraftError(ctx, sess, payload.LeagueID, err)
	}
}

func (g *Gateway) handleSendMessage(ctx context.Context, sess *session, data []byte) {
	if !g.requireAuth(sess) {
		return
	}
	var payload SendMessagePayload
	if !g.decode(ctx, sess, data, &payload) {
		return
	}

	g.hub.EmitRoom(realtime.ChatRoom(payload.LeagueID), realtime.ChatMessageEvent{
		LeagueID: payload.LeagueID,
		UserID:   sess.identity.UserID,
		Body:     payload.Body,
		SentAt:   g.now().UTC(),
	})
}

func (g *Gateway) decode(ctx context.Context, sess *session, data []byte, payload any) bool {
	if len(data) == 0 {
		g.sendError(sess, fmt.Errorf("%w: missing message data", usecase.ErrInvalidInput))
		return false
	}
	if err := sonic.Unmarshal(data, payload); err != nil {
		g.sendError(sess, fmt.Errorf("%w: malformed message data", usecase.ErrInvalidInput))
		return false
	}
	if err := g.validator.StructCtx(ctx, payload); err != nil {
		g.sendError(sess, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return false
	}
	return true
}

func (g *Gateway) requireAuth(sess *session) bool {
	if sess.identity == nil {
		g.sendError(sess, fmt.Errorf("%w: authenticate first", usecase.ErrUnauthorized))
		return false
	}
	return true
}

// sendDraftError decorates turn rejections with the authoritative turn so
// clients can resynchronize without another round trip.
func (g *Gateway) sendDraftError(ctx context.Context, sess *session, leagueID string, err error) {
	event := errorEvent(err)
	if errors.Is(err, usecase.ErrWrongTurn) {
		if item, getErr := g.draftSvc.Get(ctx, leagueID); getErr == nil {
			if onClock, ok := item.OnClock(); ok {
				event.OnClockTeam = onClock
				event.NextPick = item.NextPickNumber()
			}
		}
	}
	g.hub.EmitConn(sess.connID, event)
}

func (g *Gateway) sendError(sess *session, err error) {
	g.hub.EmitConn(sess.connID, errorEvent(err))
}

func errorEvent(err error) realtime.ErrorEvent {
	code := "INTERNAL"
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		code = "INVALID_INPUT"
	case errors.Is(err, usecase.ErrNotFound):
		code = "NOT_FOUND"
	case errors.Is(err, usecase.ErrUnauthorized):
		code = "UNAUTHORIZED"
	case errors.Is(err, usecase.ErrWrongTurn):
		code = "WRONG_TURN"
	case errors.Is(err, usecase.ErrPlayerUnavailable):
		code = "PLAYER_UNAVAILABLE"
	case errors.Is(err, usecase.ErrConflict):
		code = "CONFLICT"
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		code = "DEPENDENCY_UNAVAILABLE"
	}

	return realtime.ErrorEvent{Code: code, Message: err.Error()}
}
