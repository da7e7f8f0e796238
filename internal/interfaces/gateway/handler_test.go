package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/mwhitacre/leaguelive/internal/infrastructure/repository/memory"
	"github.com/mwhitacre/leaguelive/internal/realtime"
	"github.com/mwhitacre/leaguelive/internal/usecase"
)

func testIdentities() map[string]Identity {
	return map[string]Identity{
		"token-commish": {UserID: memory.UserIDCommissioner, TeamIDs: []string{memory.TeamIDDragons}},
		"token-user-1":  {UserID: "user-1", TeamIDs: []string{memory.TeamIDAardvarks}},
	}
}

func newTestGateway(t *testing.T) (*Gateway, *realtime.Hub) {
	t.Helper()

	hub := realtime.NewHub(nil)
	t.Cleanup(func() { hub.Shutdown(context.Background()) })

	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	teamRepo := memory.NewTeamRepository(memory.SeedTeams())
	scheduleRepo := memory.NewScheduleRepository(memory.SeedGames(), memory.SeedMatchups(), memory.SeedAppearances())
	statsRepo := memory.NewStatsRepository(memory.SeedStatLines(), memory.SeedProjections())
	rosterRepo := memory.NewRosterRepository(nil)

	draftSvc := usecase.NewDraftService(
		memory.NewDraftRepository(memory.SeedDrafts()),
		leagueRepo,
		memory.NewPlayerRepository(memory.SeedPlayers()),
		rosterRepo,
		hub,
		nil,
		nil,
	)
	matchupSvc := usecase.NewMatchupService(leagueRepo, rosterRepo, scheduleRepo, statsRepo, nil)
	scoringSvc, err := usecase.NewScoringSchedulerService(
		leagueRepo, teamRepo, scheduleRepo, memory.NewScoringRepository(),
		matchupSvc, hub, nil, usecase.SchedulerConfig{}, nil,
	)
	if err != nil {
		t.Fatalf("build scoring service: %v", err)
	}
	t.Cleanup(func() { scoringSvc.Shutdown(context.Background()) })
	t.Cleanup(draftSvc.Shutdown)

	return NewGateway(hub, draftSvc, scoringSvc, NewStaticAuthenticator(testIdentities()), nil), hub
}

func recvEnvelope(t *testing.T, ch <-chan []byte) (string, []byte) {
	t.Helper()
	select {
	case payload := <-ch:
		var envelope struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := sonic.Unmarshal(payload, &envelope); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		return envelope.Type, envelope.Data
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
	return "", nil
}

func clientJSON(msgType, data string) []byte {
	return []byte(fmt.Sprintf(`{"type":%q,"data":%s}`, msgType, data))
}

func TestGateway_Dispatch_RequiresAuthBeforeJoin(t *testing.T) {
	g, hub := newTestGateway(t)
	ch, _ := hub.Register("conn-1")
	sess := &session{connID: "conn-1"}

	g.dispatch(context.Background(), sess, clientJSON(MessageJoinDraft, `{"league_id":"sunday-showdown-2026"}`))

	eventType, data := recvEnvelope(t, ch)
	if eventType != realtime.TypeError {
		t.Fatalf("expected error event, got %s", eventType)
	}
	if !strings.Contains(string(data), "UNAUTHORIZED") {
		t.Fatalf("expected UNAUTHORIZED code, got %s", data)
	}
}

func TestGateway_Dispatch_AuthenticateThenJoinDraft(t *testing.T) {
	g, hub := newTestGateway(t)
	ch, _ := hub.Register("conn-1")
	sess := &session{connID: "conn-1"}

	g.dispatch(context.Background(), sess, clientJSON(MessageAuthenticate, `{"token":"token-user-1"}`))
	eventType, data := recvEnvelope(t, ch)
	if eventType != realtime.TypeAuthAck {
		t.Fatalf("expected auth ack, got %s: %s", eventType, data)
	}
	if sess.identity == nil || sess.identity.UserID != "user-1" {
		t.Fatalf("session identity not set: %+v", sess.identity)
	}

	g.dispatch(context.Background(), sess, clientJSON(MessageJoinDraft, `{"league_id":"sunday-showdown-2026"}`))
	eventType, data = recvEnvelope(t, ch)
	if eventType != realtime.TypeDraftSnapshot {
		t.Fatalf("expected draft snapshot, got %s: %s", eventType, data)
	}
	if !strings.Contains(string(data), `"status":"PENDING"`) {
		t.Fatalf("snapshot missing status: %s", data)
	}
}

func TestGateway_Dispatch_BadToken(t *testing.T) {
	g, hub := newTestGateway(t)
	ch, _ := hub.Register("conn-1")
	sess := &session{connID: "conn-1"}

	g.dispatch(context.Background(), sess, clientJSON(MessageAuthenticate, `{"token":"token-wrong"}`))

	eventType, data := recvEnvelope(t, ch)
	if eventType != realtime.TypeError || !strings.Contains(string(data), "UNAUTHORIZED") {
		t.Fatalf("expected unauthorized error, got %s: %s", eventType, data)
	}
}

func TestGateway_Dispatch_MalformedAndUnknown(t *testing.T) {
	g, hub := newTestGateway(t)
	ch, _ := hub.Register("conn-1")
	sess := &session{connID: "conn-1"}

	g.dispatch(context.Background(), sess, []byte(`{not json`))
	eventType, data := recvEnvelope(t, ch)
	if eventType != realtime.TypeError || !strings.Contains(string(data), "INVALID_INPUT") {
		t.Fatalf("expected invalid input, got %s: %s", eventType, data)
	}

	g.dispatch(context.Background(), sess, clientJSON("warp_drive", `{}`))
	eventType, data = recvEnvelope(t, ch)
	if eventType != realtime.TypeError || !strings.Contains(string(data), "INVALID_INPUT") {
		t.Fatalf("expected invalid input for unknown type, got %s: %s", eventType, data)
	}
}

func TestGateway_Dispatch_DraftPlayerOwnershipEnforced(t *testing.T) {
	g, hub := newTestGateway(t)
	ch, _ := hub.Register("conn-1")
	sess := &session{connID: "conn-1"}

	g.dispatch(context.Background(), sess, clientJSON(MessageAuthenticate, `{"token":"token-user-1"}`))
	recvEnvelope(t, ch)

	// user-1 owns the aardvarks, not the bulldogs.
	g.dispatch(context.Background(), sess, clientJSON(MessageDraftPlayer,
		`{"league_id":"sunday-showdown-2026","team_id":"team-bulldogs","player_id":"p-chase"}`))

	eventType, data := recvEnvelope(t, ch)
	if eventType != realtime.TypeError || !strings.Contains(string(data), "UNAUTHORIZED") {
		t.Fatalf("expected ownership rejection, got %s: %s", eventType, data)
	}
}

func TestGateway_Dispatch_WrongTurnCarriesAuthoritativeTurn(t *testing.T) {
	g, hub := newTestGateway(t)

	if _, err := g.draftSvc.Start(context.Background(), memory.LeagueIDSundayShowdown, memory.UserIDCommissioner); err != nil {
		t.Fatalf("start draft: %v", err)
	}

	ch, _ := hub.Register("conn-1")
	sess := &session{connID: "conn-1"}
	// The commissioner owns the dragons, who pick fourth.
	g.dispatch(context.Background(), sess, clientJSON(MessageAuthenticate, `{"token":"token-commish"}`))
	recvEnvelope(t, ch)

	g.dispatch(context.Background(), sess, clientJSON(MessageDraftPlayer,
		`{"league_id":"sunday-showdown-2026","team_id":"team-dragons","player_id":"p-chase"}`))

	eventType, data := recvEnvelope(t, ch)
	if eventType != realtime.TypeError {
		t.Fatalf("expected error event, got %s", eventType)
	}
	if !strings.Contains(string(data), "WRONG_TURN") {
		t.Fatalf("expected WRONG_TURN, got %s", data)
	}
	if !strings.Contains(string(data), `"on_clock_team":"team-aardvarks"`) {
		t.Fatalf("expected authoritative turn hint, got %s", data)
	}
}

func TestGateway_Dispatch_ChatBroadcast(t *testing.T) {
	g, hub := newTestGateway(t)

	senderCh, _ := hub.Register("conn-sender")
	listenerCh, _ := hub.Register("conn-listener")
	hub.Join(realtime.ChatRoom(memory.LeagueIDSundayShowdown), "conn-listener")

	sess := &session{connID: "conn-sender"}
	g.dispatch(context.Background(), sess, clientJSON(MessageAuthenticate, `{"token":"token-user-1"}`))
	recvEnvelope(t, senderCh)

	g.dispatch(context.Background(), sess, clientJSON(MessageJoinChat, `{"league_id":"sunday-showdown-2026"}`))
	g.dispatch(context.Background(), sess, clientJSON(MessageSendMessage,
		`{"league_id":"sunday-showdown-2026","body":"good luck this week"}`))

	eventType, data := recvEnvelope(t, listenerCh)
	if eventType != realtime.TypeChatMessage {
		t.Fatalf("expected chat message, got %s", eventType)
	}
	if !strings.Contains(string(data), "good luck this week") || !strings.Contains(string(data), `"user_id":"user-1"`) {
		t.Fatalf("unexpected chat payload: %s", data)
	}
}

func TestGateway_JoinScoring_ReceivesLifecycle(t *testing.T) {
	g, hub := newTestGateway(t)
	ch, _ := hub.Register("conn-1")
	sess := &session{connID: "conn-1"}

	g.dispatch(context.Background(), sess, clientJSON(MessageAuthenticate, `{"token":"token-user-1"}`))
	recvEnvelope(t, ch) // auth ack

	g.dispatch(context.Background(), sess, clientJSON(MessageJoinScoring, `{"league_id":"sunday-showdown-2026","week":1}`))

	// A commissioner opening the week reaches every joined subscriber,
	// and the announcement lands before any score update.
	server := httptest.NewServer(Routes(g))
	t.Cleanup(server.Close)
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/v1/leagues/"+memory.LeagueIDSundayShowdown+"/scoring/start", nil)
	req.Header.Set("Authorization", "Bearer token-commish")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	eventType, data := recvEnvelope(t, ch)
	if eventType != realtime.TypeScoringLifecycle {
		t.Fatalf("expected scoring lifecycle, got %s: %s", eventType, data)
	}
	if !strings.Contains(string(data), `"kind":"scoring:started"`) {
		t.Fatalf("unexpected lifecycle payload: %s", data)
	}
}

func TestGateway_Routes_CommissionerStartDraft(t *testing.T) {
	g, _ := newTestGateway(t)
	server := httptest.NewServer(Routes(g))
	t.Cleanup(server.Close)

	url := server.URL + "/v1/leagues/" + memory.LeagueIDSundayShowdown + "/draft/start"

	req, _ := http.NewRequest(http.MethodPost, url, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodPost, url, nil)
	req.Header.Set("Authorization", "Bearer token-user-1")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-commissioner, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodPost, url, nil)
	req.Header.Set("Authorization", "Bearer token-commish")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for commissioner, got %d", resp.StatusCode)
	}

	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 starting twice, got %d", resp.StatusCode)
	}
}
