package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mwhitacre/leaguelive/internal/config"
	"github.com/mwhitacre/leaguelive/internal/infrastructure/repository/memory"
	"github.com/mwhitacre/leaguelive/internal/interfaces/gateway"
	"github.com/mwhitacre/leaguelive/internal/platform/logging"
	"github.com/mwhitacre/leaguelive/internal/platform/timer"
	"github.com/mwhitacre/leaguelive/internal/realtime"
	"github.com/mwhitacre/leaguelive/internal/usecase"
)

// App owns every long-lived component of the service so shutdown can
// walk them in order: stop the listener, stop the draft clocks and
// scoring loops, then drain the hub.
type App struct {
	Server  *http.Server
	Hub     *realtime.Hub
	Draft   *usecase.DraftService
	Scoring *usecase.ScoringSchedulerService

	timers *timer.Scheduler
	logger *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	teamRepo := memory.NewTeamRepository(memory.SeedTeams())
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	rosterRepo := memory.NewRosterRepository(memory.SeedRosters())
	draftRepo := memory.NewDraftRepository(memory.SeedDrafts())
	scheduleRepo := memory.NewScheduleRepository(memory.SeedGames(), memory.SeedMatchups(), memory.SeedAppearances())
	statsRepo := memory.NewStatsRepository(memory.SeedStatLines(), memory.SeedProjections())
	scoringRepo := memory.NewScoringRepository()

	hub := realtime.NewHub(logger)
	timers := timer.NewScheduler()

	draftSvc := usecase.NewDraftService(
		draftRepo,
		leagueRepo,
		playerRepo,
		rosterRepo,
		hub,
		timers,
		logger,
	)
	matchupSvc := usecase.NewMatchupService(leagueRepo, rosterRepo, scheduleRepo, statsRepo, logger)
	scoringSvc, err := usecase.NewScoringSchedulerService(
		leagueRepo,
		teamRepo,
		scheduleRepo,
		scoringRepo,
		matchupSvc,
		hub,
		timers,
		usecase.SchedulerConfig{
			TickInterval: cfg.ScoringTickInterval,
			CloseDelay:   cfg.ScoringCloseDelay,
			TickWorkers:  cfg.ScoringTickWorkers,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("build scoring scheduler: %w", err)
	}

	gw := gateway.NewGateway(hub, draftSvc, scoringSvc, buildAuthenticator(cfg.AuthTokens), logger)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      gateway.Routes(gw),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:  server,
		Hub:     hub,
		Draft:   draftSvc,
		Scoring: scoringSvc,
		timers:  timers,
		logger:  logger,
	}, nil
}

// Bootstrap arms the scoring calendar for every seeded league. Called once
// before the listener starts.
func (a *App) Bootstrap(ctx context.Context) error {
	return a.Scoring.Bootstrap(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.Server.Shutdown(ctx)

	a.Draft.Shutdown()
	a.Scoring.Shutdown(ctx)
	a.timers.Shutdown()
	a.Hub.Shutdown(ctx)

	return err
}

// buildAuthenticator maps configured bearer tokens onto seeded team
// ownership so a token carries the teams its user may draft for.
func buildAuthenticator(tokens map[string]string) gateway.Authenticator {
	teamsByOwner := make(map[string][]string)
	for _, tm := range memory.SeedTeams() {
		teamsByOwner[tm.OwnerUserID] = append(teamsByOwner[tm.OwnerUserID], tm.ID)
	}

	identities := make(map[string]gateway.Identity, len(tokens))
	for token, userID := range tokens {
		identities[token] = gateway.Identity{
			UserID:  userID,
			TeamIDs: teamsByOwner[userID],
		}
	}

	return gateway.NewStaticAuthenticator(identities)
}
