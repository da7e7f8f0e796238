package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/mwhitacre/leaguelive/internal/domain/draft"
	"github.com/mwhitacre/leaguelive/internal/domain/league"
	"github.com/mwhitacre/leaguelive/internal/domain/player"
	"github.com/mwhitacre/leaguelive/internal/domain/roster"
	"github.com/mwhitacre/leaguelive/internal/platform/logging"
	"github.com/mwhitacre/leaguelive/internal/platform/resilience"
	"github.com/mwhitacre/leaguelive/internal/platform/timer"
	"github.com/mwhitacre/leaguelive/internal/realtime"
)

const autoPickTimeout = 10 * time.Second

// RoomEmitter is the slice of the broadcast hub the services need.
type RoomEmitter interface {
	EmitRoom(roomID realtime.RoomID, event realtime.Event)
}

type noopEmitter struct{}

func (noopEmitter) EmitRoom(_ realtime.RoomID, _ realtime.Event) {}

func NewNoopEmitter() RoomEmitter {
	return noopEmitter{}
}

// draftRun is the serialization point for one league's draft. Every
// mutation, manual pick, auto pick, and lifecycle change takes run.mu
// first and re-validates state after acquiring it, so timer callbacks
// that lost a race observe the new state instead of acting on a stale
// snapshot.
type draftRun struct {
	mu     sync.Mutex
	halted bool
}

type DraftService struct {
	draftRepo  draft.Repository
	leagueRepo league.Repository
	playerRepo player.Repository
	rosterRepo roster.Repository
	emitter    RoomEmitter
	timers     *timer.Scheduler
	retryCfg   resilience.RetryConfig
	logger     *logging.Logger
	now        func() time.Time

	mu   sync.Mutex
	runs map[string]*draftRun
}

func NewDraftService(
	draftRepo draft.Repository,
	leagueRepo league.Repository,
	playerRepo player.Repository,
	rosterRepo roster.Repository,
	emitter RoomEmitter,
	timers *timer.Scheduler,
	logger *logging.Logger,
) *DraftService {
	if emitter == nil {
		emitter = NewNoopEmitter()
	}
	if timers == nil {
		timers = timer.NewScheduler()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &DraftService{
		draftRepo:  draftRepo,
		leagueRepo: leagueRepo,
		playerRepo: playerRepo,
		rosterRepo: rosterRepo,
		emitter:    emitter,
		timers:     timers,
		retryCfg:   resilience.DefaultRetryConfig(),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *DraftService) Get(ctx context.Context, leagueID string) (draft.Draft, error) {
	ctx, span := startUsecaseSpan(ctx, "DraftService.Get")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return draft.Draft{}, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}

	item, exists, err := s.draftRepo.GetByLeague(ctx, leagueID)
	if err != nil {
		return draft.Draft{}, fmt.Errorf("get draft by league: %w", err)
	}
	if !exists {
		return draft.Draft{}, fmt.Errorf("%w: draft for league %s", ErrNotFound, leagueID)
	}

	return item, nil
}

// Start moves a PENDING draft to IN_PROGRESS and arms the first pick
// timer. Commissioner only.
func (s *DraftService) Start(ctx context.Context, leagueID, callerUserID string) (draft.Draft, error) {
	ctx, span := startUsecaseSpan(ctx, "DraftService.Start")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	callerUserID = strings.TrimSpace(callerUserID)
	if leagueID == "" || callerUserID == "" {
		return draft.Draft{}, fmt.Errorf("%w: league_id and user_id are required", ErrInvalidInput)
	}

	if _, err := requireCommissioner(ctx, s.leagueRepo, leagueID, callerUserID); err != nil {
		return draft.Draft{}, err
	}

	run := s.run(leagueID)
	run.mu.Lock()
	defer run.mu.Unlock()

	item, err := s.loadLocked(ctx, run, leagueID)
	if err != nil {
		return draft.Draft{}, err
	}
	switch item.Status {
	case draft.StatusPending:
	case draft.StatusInProgress, draft.StatusPaused:
		return draft.Draft{}, fmt.Errorf("%w: %s", ErrConflict, draft.ErrAlreadyStarted)
	case draft.StatusCompleted:
		return draft.Draft{}, fmt.Errorf("%w: %s", ErrConflict, draft.ErrCompleted)
	default:
		return draft.Draft{}, fmt.Errorf("%w: unknown draft status %s", ErrConflict, item.Status)
	}

	now := s.now().UTC()
	item.Status = draft.StatusInProgress
	item.StartedAt = now
	item.PickStartedAt = now
	if err := s.draftRepo.Save(ctx, item); err != nil {
		return draft.Draft{}, fmt.Errorf("save draft: %w", err)
	}

	deadline := s.armPickTimer(leagueID, item)
	onClock, _ := item.OnClock()
	s.emitter.EmitRoom(realtime.DraftRoom(leagueID), realtime.DraftEvent{
		Kind:       realtime.DraftStarted,
		LeagueID:   leagueID,
		NextTeamID: onClock,
		Deadline:   deadline,
	})
	s.logger.InfoContext(ctx, "draft started", "league_id", leagueID, "on_clock", onClock)

	return item, nil
}

// Pause stops the pick clock without losing progress. Commissioner only.
func (s *DraftService) Pause(ctx context.Context, leagueID, callerUserID string) (draft.Draft, error) {
	ctx, span := startUsecaseSpan(ctx, "DraftService.Pause")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	callerUserID = strings.TrimSpace(callerUserID)
	if leagueID == "" || callerUserID == "" {
		return draft.Draft{}, fmt.Errorf("%w: league_id and user_id are required", ErrInvalidInput)
	}

	if _, err := requireCommissioner(ctx, s.leagueRepo, leagueID, callerUserID); err != nil {
		return draft.Draft{}, err
	}

	run := s.run(leagueID)
	run.mu.Lock()
	defer run.mu.Unlock()

	item, err := s.loadLocked(ctx, run, leagueID)
	if err != nil {
		return draft.Draft{}, err
	}
	if item.Status != draft.StatusInProgress {
		return draft.Draft{}, fmt.Errorf("%w: %s", ErrConflict, draft.ErrNotInProgress)
	}

	item.Status = draft.StatusPaused
	if err := s.draftRepo.Save(ctx, item); err != nil {
		return draft.Draft{}, fmt.Errorf("save draft: %w", err)
	}

	s.timers.Cancel(draftTimerKey(leagueID))
	s.emitter.EmitRoom(realtime.DraftRoom(leagueID), realtime.DraftEvent{
		Kind:     realtime.DraftPaused,
		LeagueID: leagueID,
	})
	s.logger.InfoContext(ctx, "draft paused", "league_id", leagueID, "picks", len(item.Picks))

	return item, nil
}

// Resume restarts a PAUSED draft with a fresh full-length pick clock for
// the team on the clock. Commissioner only.
func (s *DraftService) Resume(ctx context.Context, leagueID, callerUserID string) (draft.Draft, error) {
	ctx, span := startUsecaseSpan(ctx, "DraftService.Resume")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	callerUserID = strings.TrimSpace(callerUserID)
	if leagueID == "" || callerUserID == "" {
		return draft.Draft{}, fmt.Errorf("%w: league_id and user_id are required", ErrInvalidInput)
	}

	if _, err := requireCommissioner(ctx, s.leagueRepo, leagueID, callerUserID); err != nil {
		return draft.Draft{}, err
	}

	run := s.run(leagueID)
	run.mu.Lock()
	defer run.mu.Unlock()

	item, err := s.loadLocked(ctx, run, leagueID)
	if err != nil {
		return draft.Draft{}, err
	}
	if item.Status != draft.StatusPaused {
		return draft.Draft{}, fmt.Errorf("%w: draft is %s, not paused", ErrConflict, item.Status)
	}

	item.Status = draft.StatusInProgress
	item.PickStartedAt = s.now().UTC()
	if err := s.draftRepo.Save(ctx, item); err != nil {
		return draft.Draft{}, fmt.Errorf("save draft: %w", err)
	}

	deadline := s.armPickTimer(leagueID, item)
	onClock, _ := item.OnClock()
	s.emitter.EmitRoom(realtime.DraftRoom(leagueID), realtime.DraftEvent{
		Kind:       realtime.DraftResumed,
		LeagueID:   leagueID,
		NextTeamID: onClock,
		Deadline:   deadline,
	})
	s.logger.InfoContext(ctx, "draft resumed", "league_id", leagueID, "on_clock", onClock)

	return item, nil
}

// SubmitPick records a manual selection for the team on the clock. The
// turn and availability checks happen under the draft's run lock, so two
// racing submissions for the same turn resolve to exactly one pick.
func (s *DraftService) SubmitPick(ctx context.Context, leagueID, teamID, playerID string) (draft.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "DraftService.SubmitPick")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	teamID = strings.TrimSpace(teamID)
	playerID = strings.TrimSpace(playerID)
	if leagueID == "" || teamID == "" || playerID == "" {
		return draft.Pick{}, fmt.Errorf("%w: league_id, team_id and player_id are required", ErrInvalidInput)
	}

	run := s.run(leagueID)
	run.mu.Lock()
	defer run.mu.Unlock()

	item, err := s.loadLocked(ctx, run, leagueID)
	if err != nil {
		return draft.Pick{}, err
	}
	if item.Status != draft.StatusInProgress {
		return draft.Pick{}, fmt.Errorf("%w: %s", ErrConflict, draft.ErrNotInProgress)
	}

	onClock, ok := item.OnClock()
	if !ok {
		return draft.Pick{}, fmt.Errorf("%w: %s", ErrConflict, draft.ErrCompleted)
	}
	if onClock != teamID {
		return draft.Pick{}, fmt.Errorf("%w: team %s is on the clock", ErrWrongTurn, onClock)
	}
	if item.PlayerTaken(playerID) {
		return draft.Pick{}, fmt.Errorf("%w: %s", ErrPlayerUnavailable, playerID)
	}

	candidate, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return draft.Pick{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return draft.Pick{}, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}

	return s.commitPickLocked(ctx, run, &item, teamID, candidate.ID, false)
}

// commitPickLocked is the single write path shared by manual and auto
// picks. Callers hold run.mu.
func (s *DraftService) commitPickLocked(ctx context.Context, run *draftRun, item *draft.Draft, teamID, playerID string, auto bool) (draft.Pick, error) {
	leagueID := item.LeagueID
	now := s.now().UTC()
	pick := draft.Pick{
		Number:   item.NextPickNumber(),
		Round:    draft.RoundOf(item.NextPickNumber(), len(item.TeamIDs)),
		TeamID:   teamID,
		PlayerID: playerID,
		AutoPick: auto,
		PickedAt: now,
	}

	if err := item.AppendPick(pick); err != nil {
		if crerr.Is(err, draft.ErrPickSequenceGap) {
			run.halted = true
			s.timers.Cancel(draftTimerKey(leagueID))
			s.logger.ErrorContext(ctx, "draft halted on pick sequence gap", "league_id", leagueID, "error", err)
			return draft.Pick{}, crerr.Mark(
				crerr.AssertionFailedf("pick sequence corrupted for league %s: %v", leagueID, err),
				ErrInvariantViolation,
			)
		}
		if crerr.Is(err, draft.ErrPlayerTaken) {
			return draft.Pick{}, fmt.Errorf("%w: %s", ErrPlayerUnavailable, playerID)
		}
		return draft.Pick{}, fmt.Errorf("append pick: %w", err)
	}
	item.PickStartedAt = now

	if err := s.draftRepo.Save(ctx, *item); err != nil {
		return draft.Pick{}, fmt.Errorf("save draft: %w", err)
	}
	if err := s.rosterRepo.Add(ctx, roster.Entry{TeamID: teamID, PlayerID: playerID, Slot: roster.SlotBench}); err != nil {
		return draft.Pick{}, fmt.Errorf("add roster entry: %w", err)
	}

	room := realtime.DraftRoom(leagueID)
	if item.IsComplete() {
		s.timers.Cancel(draftTimerKey(leagueID))
		s.emitter.EmitRoom(room, realtime.DraftEvent{
			Kind:       realtime.PlayerDrafted,
			LeagueID:   leagueID,
			PickNumber: pick.Number,
			Round:      pick.Round,
			TeamID:     teamID,
			PlayerID:   playerID,
			AutoPick:   auto,
		})
		s.emitter.EmitRoom(room, realtime.DraftEvent{
			Kind:     realtime.DraftCompleted,
			LeagueID: leagueID,
		})
		s.logger.InfoContext(ctx, "draft completed", "league_id", leagueID, "picks", len(item.Picks))
		return pick, nil
	}

	deadline := s.armPickTimer(leagueID, *item)
	next, _ := item.OnClock()
	s.emitter.EmitRoom(room, realtime.DraftEvent{
		Kind:       realtime.PlayerDrafted,
		LeagueID:   leagueID,
		PickNumber: pick.Number,
		Round:      pick.Round,
		TeamID:     teamID,
		PlayerID:   playerID,
		AutoPick:   auto,
		NextTeamID: next,
		Deadline:   deadline,
	})

	return pick, nil
}

// armPickTimer schedules the auto-pick fallback for the pick now on the
// clock. Each arm supersedes the previous token, so an expiry from an
// earlier pick can never fire against the current one.
func (s *DraftService) armPickTimer(leagueID string, item draft.Draft) time.Time {
	deadline := s.now().UTC().Add(item.TimePerPick)
	if !item.AutoPickEnabled {
		s.timers.Cancel(draftTimerKey(leagueID))
		return deadline
	}

	s.timers.Arm(draftTimerKey(leagueID), item.TimePerPick, func(token uint64) {
		s.autoPick(leagueID, token)
	})

	if onClock, ok := item.OnClock(); ok {
		s.emitter.EmitRoom(realtime.DraftRoom(leagueID), realtime.DraftTimerEvent{
			LeagueID:         leagueID,
			TeamID:           onClock,
			TimeRemainingSec: int(item.TimePerPick.Seconds()),
		})
	}
	return deadline
}

// autoPick runs on timer expiry. The token re-check after acquiring the
// run lock closes the race where a manual pick landed while the callback
// was waiting.
func (s *DraftService) autoPick(leagueID string, token uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), autoPickTimeout)
	defer cancel()

	run := s.run(leagueID)
	run.mu.Lock()
	defer run.mu.Unlock()

	if s.timers.Token(draftTimerKey(leagueID)) != token {
		return
	}
	if run.halted {
		return
	}

	var item draft.Draft
	err := resilience.Retry(ctx, s.retryCfg, func(ctx context.Context) error {
		loaded, exists, err := s.draftRepo.GetByLeague(ctx, leagueID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: draft for league %s", ErrNotFound, leagueID)
		}
		item = loaded
		return nil
	})
	if err != nil {
		s.logger.Error("auto-pick load failed", "league_id", leagueID, "error", err)
		return
	}
	if item.Status != draft.StatusInProgress {
		return
	}
	teamID, ok := item.OnClock()
	if !ok {
		return
	}

	playerID, err := s.bestAvailable(ctx, item)
	if err != nil {
		run.halted = true
		s.timers.Cancel(draftTimerKey(leagueID))
		s.logger.Error("draft halted, auto-pick pool exhausted", "league_id", leagueID, "error", err)
		return
	}

	if _, err := s.commitPickLocked(ctx, run, &item, teamID, playerID, true); err != nil {
		s.logger.Error("auto-pick commit failed", "league_id", leagueID, "team_id", teamID, "error", err)
		return
	}
	s.logger.Info("auto-pick applied", "league_id", leagueID, "team_id", teamID, "player_id", playerID)
}

// bestAvailable returns the lowest-ADP player not yet taken in this
// draft. Other leagues' drafts never constrain the pool.
func (s *DraftService) bestAvailable(ctx context.Context, item draft.Draft) (string, error) {
	var pool []player.Player
	err := resilience.Retry(ctx, s.retryCfg, func(ctx context.Context) error {
		listed, err := s.playerRepo.ListByADP(ctx)
		if err != nil {
			return err
		}
		pool = listed
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("list players by adp: %w", err)
	}

	taken := make(map[string]struct{}, len(item.Picks))
	for _, p := range item.Picks {
		taken[p.PlayerID] = struct{}{}
	}
	for _, candidate := range pool {
		if _, dup := taken[candidate.ID]; !dup {
			return candidate.ID, nil
		}
	}

	return "", crerr.Mark(
		crerr.AssertionFailedf("no draftable player left for league %s at pick %d", item.LeagueID, item.NextPickNumber()),
		ErrInvariantViolation,
	)
}

func (s *DraftService) loadLocked(ctx context.Context, run *draftRun, leagueID string) (draft.Draft, error) {
	if run.halted {
		return draft.Draft{}, fmt.Errorf("%w: draft is halted pending manual repair", ErrInvariantViolation)
	}

	item, exists, err := s.draftRepo.GetByLeague(ctx, leagueID)
	if err != nil {
		return draft.Draft{}, fmt.Errorf("get draft by league: %w", err)
	}
	if !exists {
		return draft.Draft{}, fmt.Errorf("%w: draft for league %s", ErrNotFound, leagueID)
	}

	return item, nil
}

func (s *DraftService) run(leagueID string) *draftRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runs == nil {
		s.runs = make(map[string]*draftRun)
	}
	r, ok := s.runs[leagueID]
	if !ok {
		r = &draftRun{}
		s.runs[leagueID] = r
	}
	return r
}

// Shutdown cancels every armed pick timer.
func (s *DraftService) Shutdown() {
	s.mu.Lock()
	keys := make([]string, 0, len(s.runs))
	for leagueID := range s.runs {
		keys = append(keys, leagueID)
	}
	s.mu.Unlock()

	sort.Strings(keys)
	for _, leagueID := range keys {
		s.timers.Cancel(draftTimerKey(leagueID))
	}
}

func draftTimerKey(leagueID string) string {
	return "draft-pick:" + leagueID
}
