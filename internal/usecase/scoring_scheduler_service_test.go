package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mwhitacre/leaguelive/internal/domain/scoring"
	"github.com/mwhitacre/leaguelive/internal/domain/stats"
	"github.com/mwhitacre/leaguelive/internal/infrastructure/repository/memory"
	"github.com/mwhitacre/leaguelive/internal/realtime"
)

type schedulerHarness struct {
	svc         *ScoringSchedulerService
	leagueRepo  *memory.LeagueRepository
	teamRepo    *memory.TeamRepository
	scoringRepo *memory.ScoringRepository
	statsRepo   *memory.StatsRepository
	emitter     *captureEmitter
}

func newSchedulerHarness(t *testing.T) *schedulerHarness {
	t.Helper()

	h := &schedulerHarness{
		leagueRepo:  memory.NewLeagueRepository(memory.SeedLeagues()),
		teamRepo:    memory.NewTeamRepository(memory.SeedTeams()),
		scoringRepo: memory.NewScoringRepository(),
		statsRepo:   memory.NewStatsRepository(memory.SeedStatLines(), memory.SeedProjections()),
		emitter:     &captureEmitter{},
	}
	scheduleRepo := memory.NewScheduleRepository(memory.SeedGames(), memory.SeedMatchups(), memory.SeedAppearances())

	matchupSvc := NewMatchupService(h.leagueRepo, memory.NewRosterRepository(memory.SeedRosters()), scheduleRepo, h.statsRepo, nil)
	matchupSvc.now = func() time.Time { return midAfternoon }

	svc, err := NewScoringSchedulerService(
		h.leagueRepo,
		h.teamRepo,
		scheduleRepo,
		h.scoringRepo,
		matchupSvc,
		h.emitter,
		nil,
		SchedulerConfig{TickInterval: 10 * time.Millisecond},
		nil,
	)
	if err != nil {
		t.Fatalf("build scheduler: %v", err)
	}
	svc.now = func() time.Time { return midAfternoon }
	h.svc = svc
	t.Cleanup(func() { svc.Shutdown(context.Background()) })

	return h
}

func TestScoringScheduler_FinalizeWeek_AppliesRecords(t *testing.T) {
	h := newSchedulerHarness(t)

	final, err := h.svc.FinalizeWeek(context.Background(), memory.LeagueIDSundayShowdown, 1)
	if err != nil {
		t.Fatalf("finalize week: %v", err)
	}
	if len(final.Results) != 2 {
		t.Fatalf("expected 2 matchup results, got %d", len(final.Results))
	}

	// Bulldogs 47.0 over Aardvarks 39.5; Cougars 46.8 over Dragons 22.2.
	bulldogs, _, _ := h.teamRepo.GetByID(context.Background(), memory.TeamIDBulldogs)
	if bulldogs.Wins != 1 || bulldogs.Losses != 0 || bulldogs.Ties != 0 {
		t.Fatalf("unexpected bulldogs record: %d-%d-%d", bulldogs.Wins, bulldogs.Losses, bulldogs.Ties)
	}
	if !almostEqual(bulldogs.PointsFor, 47.0) || !almostEqual(bulldogs.PointsAgainst, 39.5) {
		t.Fatalf("unexpected bulldogs points: %.2f / %.2f", bulldogs.PointsFor, bulldogs.PointsAgainst)
	}
	aardvarks, _, _ := h.teamRepo.GetByID(context.Background(), memory.TeamIDAardvarks)
	if aardvarks.Wins != 0 || aardvarks.Losses != 1 {
		t.Fatalf("unexpected aardvarks record: %d-%d", aardvarks.Wins, aardvarks.Losses)
	}
	dragons, _, _ := h.teamRepo.GetByID(context.Background(), memory.TeamIDDragons)
	if dragons.Losses != 1 {
		t.Fatalf("dragons should have lost, record: %d-%d", dragons.Wins, dragons.Losses)
	}

	lg, _, _ := h.leagueRepo.GetByID(context.Background(), memory.LeagueIDSundayShowdown)
	if lg.CurrentWeek != 2 {
		t.Fatalf("league week should advance to 2, got %d", lg.CurrentWeek)
	}
}

func TestScoringScheduler_FinalizeWeek_Idempotent(t *testing.T) {
	h := newSchedulerHarness(t)

	first, err := h.svc.FinalizeWeek(context.Background(), memory.LeagueIDSundayShowdown, 1)
	if err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	second, err := h.svc.FinalizeWeek(context.Background(), memory.LeagueIDSundayShowdown, 1)
	if err != nil {
		t.Fatalf("second finalize: %v", err)
	}
	if !second.FinalizedAt.Equal(first.FinalizedAt) {
		t.Fatalf("second finalize produced a new record")
	}

	bulldogs, _, _ := h.teamRepo.GetByID(context.Background(), memory.TeamIDBulldogs)
	if bulldogs.Wins != 1 {
		t.Fatalf("record applied twice: %d wins", bulldogs.Wins)
	}
	lg, _, _ := h.leagueRepo.GetByID(context.Background(), memory.LeagueIDSundayShowdown)
	if lg.CurrentWeek != 2 {
		t.Fatalf("week advanced twice: %d", lg.CurrentWeek)
	}
}

func TestScoringScheduler_FinalizeWeek_ConcurrentCallsApplyOnce(t *testing.T) {
	h := newSchedulerHarness(t)

	// A calendar close and a manual stop can hit finalization at the
	// same moment; only one may apply records.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = h.svc.FinalizeWeek(context.Background(), memory.LeagueIDSundayShowdown, 1)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("concurrent finalize: %v", err)
		}
	}

	bulldogs, _, _ := h.teamRepo.GetByID(context.Background(), memory.TeamIDBulldogs)
	if bulldogs.Wins != 1 {
		t.Fatalf("records applied more than once: %d wins", bulldogs.Wins)
	}
	if !almostEqual(bulldogs.PointsFor, 47.0) {
		t.Fatalf("points applied more than once: %.2f", bulldogs.PointsFor)
	}
	lg, _, _ := h.leagueRepo.GetByID(context.Background(), memory.LeagueIDSundayShowdown)
	if lg.CurrentWeek != 2 {
		t.Fatalf("week advanced more than once: %d", lg.CurrentWeek)
	}
}

func TestScoringScheduler_FinalizeWeek_SkipsSettledPairings(t *testing.T) {
	h := newSchedulerHarness(t)

	// One pairing settled in an earlier run that failed partway through.
	stored := scoring.MatchupResult{
		HomeTeamID: memory.TeamIDAardvarks,
		AwayTeamID: memory.TeamIDBulldogs,
		HomePoints: 39.5,
		AwayPoints: 47.0,
		Summary:    "Bulldogs def. Aardvarks 47.0-39.5",
	}
	if err := h.scoringRepo.SaveMatchupResult(context.Background(), memory.LeagueIDSundayShowdown, 1, stored); err != nil {
		t.Fatalf("seed matchup result: %v", err)
	}

	final, err := h.svc.FinalizeWeek(context.Background(), memory.LeagueIDSundayShowdown, 1)
	if err != nil {
		t.Fatalf("finalize week: %v", err)
	}
	if len(final.Results) != 2 {
		t.Fatalf("expected 2 matchup results, got %d", len(final.Results))
	}

	// The settled pairing is reused as stored, never re-applied.
	bulldogs, _, _ := h.teamRepo.GetByID(context.Background(), memory.TeamIDBulldogs)
	if bulldogs.Wins != 0 || !almostEqual(bulldogs.PointsFor, 0) {
		t.Fatalf("settled pairing re-applied: %d wins, %.2f points", bulldogs.Wins, bulldogs.PointsFor)
	}
	found := false
	for _, r := range final.Results {
		if r.Summary == stored.Summary {
			found = true
		}
	}
	if !found {
		t.Fatal("stored result not carried into the week final")
	}

	// The unsettled pairing still applies normally.
	cougars, _, _ := h.teamRepo.GetByID(context.Background(), memory.TeamIDCougars)
	if cougars.Wins != 1 {
		t.Fatalf("unsettled pairing skipped: %d wins", cougars.Wins)
	}
}

func TestScoringScheduler_FinalizeWeek_TieNeedsExactEquality(t *testing.T) {
	h := newSchedulerHarness(t)

	// Mirror the aardvarks' lines onto the bulldogs' starters.
	h.statsRepo.SetLine(stats.Line{PlayerID: "p-jackson", Week: 1, PassingYards: 250, PassingTDs: 2, Interceptions: 1, RushingYards: 30})
	h.statsRepo.SetLine(stats.Line{PlayerID: "p-mccaffrey", Week: 1, RushingYards: 90, RushingTDs: 1, Receptions: 3, ReceivingYards: 25})

	final, err := h.svc.FinalizeWeek(context.Background(), memory.LeagueIDSundayShowdown, 1)
	if err != nil {
		t.Fatalf("finalize week: %v", err)
	}

	var tied bool
	for _, result := range final.Results {
		if result.HomeTeamID != memory.TeamIDAardvarks {
			continue
		}
		if !almostEqual(result.HomePoints, result.AwayPoints) {
			t.Fatalf("expected equal totals, got %.2f vs %.2f", result.HomePoints, result.AwayPoints)
		}
		if !strings.Contains(result.Summary, "ties") {
			t.Fatalf("expected tie summary, got %q", result.Summary)
		}
		tied = true
	}
	if !tied {
		t.Fatal("aardvarks matchup missing from results")
	}

	aardvarks, _, _ := h.teamRepo.GetByID(context.Background(), memory.TeamIDAardvarks)
	bulldogs, _, _ := h.teamRepo.GetByID(context.Background(), memory.TeamIDBulldogs)
	if aardvarks.Ties != 1 || bulldogs.Ties != 1 {
		t.Fatalf("both teams should record a tie: %d / %d", aardvarks.Ties, bulldogs.Ties)
	}
	if aardvarks.Wins+aardvarks.Losses+bulldogs.Wins+bulldogs.Losses != 0 {
		t.Fatal("tie must not count as a win or loss")
	}
}

func TestScoringScheduler_FinalizeWeek_EmitsSummaries(t *testing.T) {
	h := newSchedulerHarness(t)

	if _, err := h.svc.FinalizeWeek(context.Background(), memory.LeagueIDSundayShowdown, 1); err != nil {
		t.Fatalf("finalize week: %v", err)
	}

	h.emitter.mu.Lock()
	defer h.emitter.mu.Unlock()
	var found bool
	for _, e := range h.emitter.events {
		lifecycle, ok := e.(realtime.ScoringLifecycleEvent)
		if !ok || lifecycle.Kind != realtime.ScoringFinalized {
			continue
		}
		found = true
		if len(lifecycle.Summaries) != 2 {
			t.Fatalf("expected 2 summaries, got %v", lifecycle.Summaries)
		}
		if !strings.Contains(lifecycle.Summaries[0], "def.") {
			t.Fatalf("unexpected summary: %q", lifecycle.Summaries[0])
		}
	}
	if !found {
		t.Fatal("no scoring:finalized event emitted")
	}
}

func TestScoringScheduler_ForceStop_FinalizesExactlyOnce(t *testing.T) {
	h := newSchedulerHarness(t)

	if err := h.svc.ForceStart(context.Background(), memory.LeagueIDSundayShowdown, memory.UserIDCommissioner); err != nil {
		t.Fatalf("force start: %v", err)
	}

	final, err := h.svc.ForceStop(context.Background(), memory.LeagueIDSundayShowdown, memory.UserIDCommissioner)
	if err != nil {
		t.Fatalf("force stop: %v", err)
	}
	if len(final.Results) != 2 {
		t.Fatalf("expected finalized results, got %d", len(final.Results))
	}

	// A calendar close racing in afterwards must observe the stored final.
	again, err := h.svc.FinalizeWeek(context.Background(), memory.LeagueIDSundayShowdown, 1)
	if err != nil {
		t.Fatalf("repeat finalize: %v", err)
	}
	if !again.FinalizedAt.Equal(final.FinalizedAt) {
		t.Fatal("force stop did not pin the week final")
	}

	bulldogs, _, _ := h.teamRepo.GetByID(context.Background(), memory.TeamIDBulldogs)
	if bulldogs.Wins != 1 {
		t.Fatalf("records applied more than once: %d wins", bulldogs.Wins)
	}
}

func TestScoringScheduler_ForceStop_RearmsCalendar(t *testing.T) {
	h := newSchedulerHarness(t)

	if err := h.svc.ForceStart(context.Background(), memory.LeagueIDSundayShowdown, memory.UserIDCommissioner); err != nil {
		t.Fatalf("force start: %v", err)
	}
	if _, err := h.svc.ForceStop(context.Background(), memory.LeagueIDSundayShowdown, memory.UserIDCommissioner); err != nil {
		t.Fatalf("force stop: %v", err)
	}

	// The stop hands control back to the calendar: the next week's open
	// timer must be armed, not left for a restart to rediscover.
	if h.svc.timers.Token(scoringOpenKey(memory.LeagueIDSundayShowdown)) == 0 {
		t.Fatal("open timer not armed after manual stop")
	}
	lg, _, _ := h.leagueRepo.GetByID(context.Background(), memory.LeagueIDSundayShowdown)
	if lg.CurrentWeek != 2 {
		t.Fatalf("league should sit at week 2, got %d", lg.CurrentWeek)
	}
}

func TestScoringScheduler_ForceStart_NonCommissioner(t *testing.T) {
	h := newSchedulerHarness(t)

	err := h.svc.ForceStart(context.Background(), memory.LeagueIDSundayShowdown, "user-1")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestScoringScheduler_TicksPersistSnapshotAndEmit(t *testing.T) {
	h := newSchedulerHarness(t)

	if err := h.svc.ForceStart(context.Background(), memory.LeagueIDSundayShowdown, memory.UserIDCommissioner); err != nil {
		t.Fatalf("force start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snapshot, ok, _ := h.scoringRepo.GetSnapshot(context.Background(), memory.LeagueIDSundayShowdown, 1); ok {
			if len(snapshot.Scores) != 4 {
				t.Fatalf("expected 4 team scores in snapshot, got %d", len(snapshot.Scores))
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no snapshot persisted by ticking job")
}

func TestScoringScheduler_ScheduleWeek_BeforeKickoffArmsOpenOnly(t *testing.T) {
	h := newSchedulerHarness(t)

	// Saturday, the day before the seeded week 1 slate.
	h.svc.now = func() time.Time {
		return time.Date(2026, time.September, 12, 12, 0, 0, 0, time.UTC)
	}

	if err := h.svc.ScheduleWeek(context.Background(), memory.LeagueIDSundayShowdown); err != nil {
		t.Fatalf("schedule week: %v", err)
	}

	h.svc.mu.Lock()
	_, running := h.svc.jobs[memory.LeagueIDSundayShowdown]
	h.svc.mu.Unlock()
	if running {
		t.Fatal("scoring job opened before first kickoff")
	}
	if h.svc.timers.Token(scoringOpenKey(memory.LeagueIDSundayShowdown)) == 0 {
		t.Fatal("calendar open timer not armed")
	}
	if h.svc.timers.Token(scoringCloseKey(memory.LeagueIDSundayShowdown)) == 0 {
		t.Fatal("calendar close timer not armed")
	}
}
