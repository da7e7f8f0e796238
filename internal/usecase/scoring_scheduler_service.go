package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/mwhitacre/leaguelive/internal/domain/league"
	"github.com/mwhitacre/leaguelive/internal/domain/schedule"
	"github.com/mwhitacre/leaguelive/internal/domain/scoring"
	"github.com/mwhitacre/leaguelive/internal/domain/team"
	"github.com/mwhitacre/leaguelive/internal/platform/cache"
	"github.com/mwhitacre/leaguelive/internal/platform/logging"
	"github.com/mwhitacre/leaguelive/internal/platform/resilience"
	"github.com/mwhitacre/leaguelive/internal/platform/timer"
	"github.com/mwhitacre/leaguelive/internal/realtime"
)

const (
	scoringTickTimeout     = 20 * time.Second
	scoringBreakerFailures = 5
	scoringBreakerCooldown = 2 * time.Minute
	scoringWindowCacheTTL  = 10 * time.Minute
)

type SchedulerConfig struct {
	TickInterval time.Duration
	CloseDelay   time.Duration
	TickWorkers  int
}

// scoringJob is one league's live-scoring loop. Ticks are submitted to the
// shared worker pool; the inFlight flag makes an overdue tick skip rather
// than queue behind the previous one. Each job carries its own breaker so
// one league's failing dependency never silences the others.
type scoringJob struct {
	leagueID string
	week     int
	ticker   *time.Ticker
	stop     chan struct{}
	inFlight atomic.Bool
	breaker  *resilience.CircuitBreaker
}

// ScoringSchedulerService owns the calendar-driven scoring lifecycle:
// open at first kickoff, tick while games run, close and finalize after
// the last expected end plus a grace delay.
type ScoringSchedulerService struct {
	leagueRepo   league.Repository
	teamRepo     team.Repository
	scheduleRepo schedule.Repository
	scoringRepo  scoring.Repository
	matchupSvc   *MatchupService
	emitter      RoomEmitter
	timers       *timer.Scheduler
	windows      *cache.Store
	cfg          SchedulerConfig
	logger       *logging.Logger
	now          func() time.Time

	pool *ants.Pool
	mu   sync.Mutex
	jobs map[string]*scoringJob

	// finalizing serializes FinalizeWeek per league so a calendar close
	// and a manual stop racing each other cannot both pass the WeekFinal
	// existence check.
	finalizeMu sync.Mutex
	finalizing map[string]*sync.Mutex
}

func NewScoringSchedulerService(
	leagueRepo league.Repository,
	teamRepo team.Repository,
	scheduleRepo schedule.Repository,
	scoringRepo scoring.Repository,
	matchupSvc *MatchupService,
	emitter RoomEmitter,
	timers *timer.Scheduler,
	cfg SchedulerConfig,
	logger *logging.Logger,
) (*ScoringSchedulerService, error) {
	if emitter == nil {
		emitter = NewNoopEmitter()
	}
	if timers == nil {
		timers = timer.NewScheduler()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 30 * time.Second
	}
	if cfg.CloseDelay <= 0 {
		cfg.CloseDelay = 30 * time.Minute
	}
	if cfg.TickWorkers <= 0 {
		cfg.TickWorkers = 16
	}

	workerPool, err := ants.NewPool(cfg.TickWorkers)
	if err != nil {
		return nil, fmt.Errorf("create scoring tick pool: %w", err)
	}

	return &ScoringSchedulerService{
		leagueRepo:   leagueRepo,
		teamRepo:     teamRepo,
		scheduleRepo: scheduleRepo,
		scoringRepo:  scoringRepo,
		matchupSvc:   matchupSvc,
		emitter:      emitter,
		timers:       timers,
		windows:      cache.NewStore(scoringWindowCacheTTL),
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
		pool:         workerPool,
		jobs:         make(map[string]*scoringJob),
		finalizing:   make(map[string]*sync.Mutex),
	}, nil
}

// Bootstrap schedules every known league against the calendar. Called once
// at startup.
func (s *ScoringSchedulerService) Bootstrap(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "ScoringSchedulerService.Bootstrap")
	defer span.End()

	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list leagues: %w", err)
	}
	for _, lg := range leagues {
		if err := s.ScheduleWeek(ctx, lg.ID); err != nil {
			s.logger.ErrorContext(ctx, "schedule league scoring failed", "league_id", lg.ID, "error", err)
		}
	}
	return nil
}

// ScheduleWeek arms the calendar open/close for the league's current week.
// Re-arming is always safe: the timer tokens supersede prior schedules.
func (s *ScoringSchedulerService) ScheduleWeek(ctx context.Context, leagueID string) error {
	ctx, span := startUsecaseSpan(ctx, "ScoringSchedulerService.ScheduleWeek")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}

	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}

	week := lg.CurrentWeek
	window, err := s.window(ctx, leagueID, week)
	if err != nil {
		return err
	}
	if window.OpensAt.IsZero() {
		s.logger.InfoContext(ctx, "no games scheduled, scoring not armed", "league_id", leagueID, "week", week)
		return nil
	}

	now := s.now().UTC()
	closeAt := window.EndsAt.Add(s.cfg.CloseDelay)

	switch {
	case now.Before(window.OpensAt):
		s.timers.Arm(scoringOpenKey(leagueID), window.OpensAt.Sub(now), func(token uint64) {
			s.calendarOpen(leagueID, week, token)
		})
	case now.Before(closeAt):
		// Mid-window restart: open immediately.
		s.openJob(leagueID, week)
	}

	if now.Before(closeAt) {
		s.timers.Arm(scoringCloseKey(leagueID), closeAt.Sub(now), func(token uint64) {
			s.calendarClose(leagueID, week, token)
		})
	}

	s.logger.InfoContext(ctx, "scoring window armed",
		"league_id", leagueID, "week", week,
		"opens_at", window.OpensAt, "closes_at", closeAt)
	return nil
}

// ForceStart opens live scoring immediately, superseding the calendar
// open. Commissioner only.
func (s *ScoringSchedulerService) ForceStart(ctx context.Context, leagueID, callerUserID string) error {
	ctx, span := startUsecaseSpan(ctx, "ScoringSchedulerService.ForceStart")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	callerUserID = strings.TrimSpace(callerUserID)
	if leagueID == "" || callerUserID == "" {
		return fmt.Errorf("%w: league_id and user_id are required", ErrInvalidInput)
	}

	lg, err := requireCommissioner(ctx, s.leagueRepo, leagueID, callerUserID)
	if err != nil {
		return err
	}

	s.timers.Cancel(scoringOpenKey(leagueID))
	s.openJob(leagueID, lg.CurrentWeek)
	return nil
}

// ForceStop closes live scoring and finalizes the week immediately. The
// calendar close is canceled first so finalization cannot run a second
// time when the window would have ended. Commissioner only.
func (s *ScoringSchedulerService) ForceStop(ctx context.Context, leagueID, callerUserID string) (scoring.WeekFinal, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoringSchedulerService.ForceStop")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	callerUserID = strings.TrimSpace(callerUserID)
	if leagueID == "" || callerUserID == "" {
		return scoring.WeekFinal{}, fmt.Errorf("%w: league_id and user_id are required", ErrInvalidInput)
	}

	lg, err := requireCommissioner(ctx, s.leagueRepo, leagueID, callerUserID)
	if err != nil {
		return scoring.WeekFinal{}, err
	}

	s.timers.Cancel(scoringOpenKey(leagueID))
	s.timers.Cancel(scoringCloseKey(leagueID))
	s.stopJob(leagueID)

	final, err := s.FinalizeWeek(ctx, leagueID, lg.CurrentWeek)
	if err != nil {
		return scoring.WeekFinal{}, err
	}

	// Manual stops rejoin the calendar, same as a calendar close.
	if err := s.ScheduleWeek(ctx, leagueID); err != nil {
		s.logger.Error("schedule next week failed", "league_id", leagueID, "error", err)
	}

	return final, nil
}

// Snapshot returns the latest persisted score snapshot for a league week.
func (s *ScoringSchedulerService) Snapshot(ctx context.Context, leagueID string, week int) (scoring.Snapshot, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoringSchedulerService.Snapshot")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" || week < 1 {
		return scoring.Snapshot{}, false, fmt.Errorf("%w: league_id and week are required", ErrInvalidInput)
	}

	snapshot, exists, err := s.scoringRepo.GetSnapshot(ctx, leagueID, week)
	if err != nil {
		return scoring.Snapshot{}, false, fmt.Errorf("get snapshot: %w", err)
	}

	return snapshot, exists, nil
}

// FinalizeWeek freezes the week's scores, applies win/loss/tie records and
// points for/against, and advances the league week. The stored WeekFinal
// is the idempotence guard: a second call returns the recorded result
// without touching team records again.
func (s *ScoringSchedulerService) FinalizeWeek(ctx context.Context, leagueID string, week int) (scoring.WeekFinal, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoringSchedulerService.FinalizeWeek")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return scoring.WeekFinal{}, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}
	if week < 1 {
		return scoring.WeekFinal{}, fmt.Errorf("%w: week must be at least 1", ErrInvalidInput)
	}

	lock := s.finalizeLock(leagueID)
	lock.Lock()
	defer lock.Unlock()

	if existing, exists, err := s.scoringRepo.GetWeekFinal(ctx, leagueID, week); err != nil {
		return scoring.WeekFinal{}, fmt.Errorf("get week final: %w", err)
	} else if exists {
		return existing, nil
	}

	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return scoring.WeekFinal{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return scoring.WeekFinal{}, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}

	matchups, err := s.scheduleRepo.ListMatchups(ctx, leagueID, week)
	if err != nil {
		return scoring.WeekFinal{}, fmt.Errorf("list matchups: %w", err)
	}

	teamList, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return scoring.WeekFinal{}, fmt.Errorf("list teams: %w", err)
	}
	teams := make(map[string]team.Team, len(teamList))
	for _, tm := range teamList {
		teams[tm.ID] = tm
	}

	scores, err := s.matchupSvc.ScoreWeek(ctx, leagueID, week)
	if err != nil {
		return scoring.WeekFinal{}, fmt.Errorf("final score pass: %w", err)
	}
	totals := make(map[string]float64, len(scores))
	for _, score := range scores {
		totals[score.TeamID] = score.TotalPoints
	}

	now := s.now().UTC()
	final := scoring.WeekFinal{
		LeagueID:    leagueID,
		Week:        week,
		Results:     make([]scoring.MatchupResult, 0, len(matchups)),
		FinalizedAt: now,
	}
	summaries := make([]string, 0, len(matchups))

	for _, m := range matchups {
		result, settled, err := s.scoringRepo.GetMatchupResult(ctx, leagueID, week, m.HomeTeamID)
		if err != nil {
			return scoring.WeekFinal{}, fmt.Errorf("get matchup result: %w", err)
		}
		if !settled {
			result, err = s.settleMatchup(ctx, leagueID, week, m, totals, teams)
			if err != nil {
				return scoring.WeekFinal{}, err
			}
		}
		final.Results = append(final.Results, result)
		summaries = append(summaries, result.Summary)
	}

	if err := s.scoringRepo.SaveWeekFinal(ctx, final); err != nil {
		return scoring.WeekFinal{}, fmt.Errorf("save week final: %w", err)
	}
	if err := s.scoringRepo.UpsertSnapshot(ctx, scoring.Snapshot{
		LeagueID:  leagueID,
		Week:      week,
		Scores:    scores,
		UpdatedAt: now,
	}); err != nil {
		return scoring.WeekFinal{}, fmt.Errorf("upsert final snapshot: %w", err)
	}

	if lg.CurrentWeek == week && week < lg.TotalWeeks {
		if err := s.leagueRepo.SetCurrentWeek(ctx, leagueID, week+1); err != nil {
			return scoring.WeekFinal{}, fmt.Errorf("advance league week: %w", err)
		}
	}

	s.emitter.EmitRoom(realtime.LeagueRoom(leagueID), realtime.ScoringLifecycleEvent{
		Kind:      realtime.ScoringFinalized,
		LeagueID:  leagueID,
		Week:      week,
		Summaries: summaries,
	})
	s.logger.InfoContext(ctx, "week finalized", "league_id", leagueID, "week", week, "matchups", len(final.Results))

	return final, nil
}

// settleMatchup freezes one pairing. The stored result is the settled
// mark, written before any team record changes, so a finalize retry skips
// the pairing instead of applying its records a second time. Ties require
// exact equality of the rounded totals.
func (s *ScoringSchedulerService) settleMatchup(ctx context.Context, leagueID string, week int, m schedule.Matchup, totals map[string]float64, teams map[string]team.Team) (scoring.MatchupResult, error) {
	home, ok := teams[m.HomeTeamID]
	if !ok {
		return scoring.MatchupResult{}, fmt.Errorf("%w: team %s", ErrNotFound, m.HomeTeamID)
	}
	away, ok := teams[m.AwayTeamID]
	if !ok {
		return scoring.MatchupResult{}, fmt.Errorf("%w: team %s", ErrNotFound, m.AwayTeamID)
	}

	homePts := totals[m.HomeTeamID]
	awayPts := totals[m.AwayTeamID]

	home.PointsFor += homePts
	home.PointsAgainst += awayPts
	away.PointsFor += awayPts
	away.PointsAgainst += homePts

	var summary string
	switch {
	case homePts > awayPts:
		home.Wins++
		away.Losses++
		summary = fmt.Sprintf("%s def. %s %.2f-%.2f", home.Name, away.Name, homePts, awayPts)
	case homePts < awayPts:
		away.Wins++
		home.Losses++
		summary = fmt.Sprintf("%s def. %s %.2f-%.2f", away.Name, home.Name, awayPts, homePts)
	default:
		home.Ties++
		away.Ties++
		summary = fmt.Sprintf("%s ties %s %.2f-%.2f", home.Name, away.Name, homePts, awayPts)
	}

	result := scoring.MatchupResult{
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		HomePoints: homePts,
		AwayPoints: awayPts,
		Summary:    summary,
	}
	if err := s.scoringRepo.SaveMatchupResult(ctx, leagueID, week, result); err != nil {
		return scoring.MatchupResult{}, fmt.Errorf("save matchup result: %w", err)
	}

	if err := s.teamRepo.Save(ctx, home); err != nil {
		return scoring.MatchupResult{}, fmt.Errorf("save team %s: %w", home.ID, err)
	}
	if err := s.teamRepo.Save(ctx, away); err != nil {
		return scoring.MatchupResult{}, fmt.Errorf("save team %s: %w", away.ID, err)
	}

	return result, nil
}

func (s *ScoringSchedulerService) finalizeLock(leagueID string) *sync.Mutex {
	s.finalizeMu.Lock()
	defer s.finalizeMu.Unlock()

	lock, ok := s.finalizing[leagueID]
	if !ok {
		lock = &sync.Mutex{}
		s.finalizing[leagueID] = lock
	}
	return lock
}

func (s *ScoringSchedulerService) calendarOpen(leagueID string, week int, token uint64) {
	if s.timers.Token(scoringOpenKey(leagueID)) != token {
		return
	}
	s.openJob(leagueID, week)
}

func (s *ScoringSchedulerService) calendarClose(leagueID string, week int, token uint64) {
	if s.timers.Token(scoringCloseKey(leagueID)) != token {
		return
	}
	s.stopJob(leagueID)

	ctx, cancel := context.WithTimeout(context.Background(), scoringTickTimeout)
	defer cancel()
	if _, err := s.FinalizeWeek(ctx, leagueID, week); err != nil {
		s.logger.Error("calendar finalize failed", "league_id", leagueID, "week", week, "error", err)
		return
	}
	if err := s.ScheduleWeek(ctx, leagueID); err != nil {
		s.logger.Error("schedule next week failed", "league_id", leagueID, "error", err)
	}
}

func (s *ScoringSchedulerService) openJob(leagueID string, week int) {
	s.mu.Lock()
	if _, running := s.jobs[leagueID]; running {
		s.mu.Unlock()
		return
	}
	job := &scoringJob{
		leagueID: leagueID,
		week:     week,
		ticker:   time.NewTicker(s.cfg.TickInterval),
		stop:     make(chan struct{}),
		breaker:  resilience.NewCircuitBreaker(scoringBreakerFailures, scoringBreakerCooldown),
	}
	s.jobs[leagueID] = job
	s.mu.Unlock()

	// Lifecycle goes out on the league room before the first tick so
	// subscribers see the open before any score update.
	s.emitter.EmitRoom(realtime.LeagueRoom(leagueID), realtime.ScoringLifecycleEvent{
		Kind:     realtime.ScoringStarted,
		LeagueID: leagueID,
		Week:     week,
	})

	go s.runJob(job)
	s.logger.Info("live scoring opened", "league_id", leagueID, "week", week)
}

func (s *ScoringSchedulerService) stopJob(leagueID string) {
	s.mu.Lock()
	job, running := s.jobs[leagueID]
	if running {
		delete(s.jobs, leagueID)
	}
	s.mu.Unlock()
	if !running {
		return
	}

	job.ticker.Stop()
	close(job.stop)
	s.logger.Info("live scoring closed", "league_id", leagueID, "week", job.week)
}

func (s *ScoringSchedulerService) runJob(job *scoringJob) {
	// First score pass right away so the room is never empty until the
	// first full interval elapses.
	s.submitTick(job)

	for {
		select {
		case <-job.stop:
			return
		case <-job.ticker.C:
			s.submitTick(job)
		}
	}
}

func (s *ScoringSchedulerService) submitTick(job *scoringJob) {
	if !job.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("scoring tick skipped, previous tick still running", "league_id", job.leagueID, "week", job.week)
		return
	}
	if err := s.pool.Submit(func() {
		defer job.inFlight.Store(false)
		s.runTick(job)
	}); err != nil {
		job.inFlight.Store(false)
		s.logger.Error("submit scoring tick failed", "league_id", job.leagueID, "error", err)
	}
}

func (s *ScoringSchedulerService) runTick(job *scoringJob) {
	if err := job.breaker.Allow(); err != nil {
		s.logger.Debug("scoring tick suppressed, breaker open", "league_id", job.leagueID, "week", job.week)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), scoringTickTimeout)
	defer cancel()

	err := s.tickOnce(ctx, job.leagueID, job.week)
	job.breaker.Record(err)
	if err != nil {
		s.logger.Error("scoring tick failed", "league_id", job.leagueID, "week", job.week, "error", err)
	}
}

func (s *ScoringSchedulerService) tickOnce(ctx context.Context, leagueID string, week int) error {
	scores, err := s.matchupSvc.ScoreWeek(ctx, leagueID, week)
	if err != nil {
		return err
	}
	if len(scores) == 0 {
		return nil
	}

	now := s.now().UTC()
	if err := s.scoringRepo.UpsertSnapshot(ctx, scoring.Snapshot{
		LeagueID:  leagueID,
		Week:      week,
		Scores:    scores,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	s.emitter.EmitRoom(realtime.ScoringRoom(leagueID, week), realtime.ScoreUpdateEvent{
		LeagueID:    leagueID,
		Week:        week,
		TeamScores:  realtime.NewTeamScoreViews(scores),
		LastUpdated: now,
	})
	return nil
}

func (s *ScoringSchedulerService) window(ctx context.Context, leagueID string, week int) (schedule.WeekWindow, error) {
	key := fmt.Sprintf("scoring-window:%s:%d", leagueID, week)
	value, err := s.windows.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		games, err := s.scheduleRepo.ListGamesByWeek(ctx, leagueID, week)
		if err != nil {
			return nil, fmt.Errorf("list games: %w", err)
		}
		window, ok := schedule.WindowForWeek(games, week)
		if !ok {
			return schedule.WeekWindow{}, nil
		}
		return window, nil
	})
	if err != nil {
		return schedule.WeekWindow{}, err
	}
	window, ok := value.(schedule.WeekWindow)
	if !ok {
		return schedule.WeekWindow{}, fmt.Errorf("%w: unexpected window cache entry", ErrInvariantViolation)
	}
	return window, nil
}

// Shutdown stops every job and releases the tick pool.
func (s *ScoringSchedulerService) Shutdown(_ context.Context) {
	s.mu.Lock()
	jobs := make([]*scoringJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	s.jobs = make(map[string]*scoringJob)
	s.mu.Unlock()

	for _, job := range jobs {
		job.ticker.Stop()
		close(job.stop)
		s.timers.Cancel(scoringOpenKey(job.leagueID))
		s.timers.Cancel(scoringCloseKey(job.leagueID))
	}
	s.pool.Release()
}

func scoringOpenKey(leagueID string) string {
	return "scoring-open:" + leagueID
}

func scoringCloseKey(leagueID string) string {
	return "scoring-close:" + leagueID
}
