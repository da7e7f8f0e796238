package gateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/mwhitacre/leaguelive/internal/usecase"
)

// Routes exposes the websocket endpoint plus the commissioner controls
// that do not belong on a socket.
func Routes(g *Gateway) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", healthz)
	r.Get("/ws", g.Handle())

	r.Post("/v1/leagues/{leagueID}/draft/start", g.commissionerAction(func(r *http.Request, leagueID, userID string) error {
		_, err := g.draftSvc.Start(r.Context(), leagueID, userID)
		return err
	}))
	r.Post("/v1/leagues/{leagueID}/draft/pause", g.commissionerAction(func(r *http.Request, leagueID, userID string) error {
		_, err := g.draftSvc.Pause(r.Context(), leagueID, userID)
		return err
	}))
	r.Post("/v1/leagues/{leagueID}/draft/resume", g.commissionerAction(func(r *http.Request, leagueID, userID string) error {
		_, err := g.draftSvc.Resume(r.Context(), leagueID, userID)
		return err
	}))
	r.Post("/v1/leagues/{leagueID}/scoring/start", g.commissionerAction(func(r *http.Request, leagueID, userID string) error {
		return g.scoringSvc.ForceStart(r.Context(), leagueID, userID)
	}))
	r.Post("/v1/leagues/{leagueID}/scoring/stop", g.commissionerAction(func(r *http.Request, leagueID, userID string) error {
		_, err := g.scoringSvc.ForceStop(r.Context(), leagueID, userID)
		return err
	}))

	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (g *Gateway) commissionerAction(action func(r *http.Request, leagueID, userID string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		identity, err := g.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		leagueID := chi.URLParam(r, "leagueID")
		if err := action(r, leagueID, identity.UserID); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrConflict), errors.Is(err, usecase.ErrWrongTurn), errors.Is(err, usecase.ErrPlayerUnavailable):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload, err := sonic.Marshal(map[string]string{"error": message})
	if err != nil {
		return
	}
	_, _ = w.Write(payload)
}
