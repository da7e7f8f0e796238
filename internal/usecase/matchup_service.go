package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/mwhitacre/leaguelive/internal/domain/league"
	"github.com/mwhitacre/leaguelive/internal/domain/roster"
	"github.com/mwhitacre/leaguelive/internal/domain/schedule"
	"github.com/mwhitacre/leaguelive/internal/domain/scoring"
	"github.com/mwhitacre/leaguelive/internal/domain/stats"
	"github.com/mwhitacre/leaguelive/internal/platform/logging"
)

const scoreWeekMaxWorkers = 8

// MatchupService recomputes live matchup scores from raw stat lines.
// Every pass starts from scratch, so a correction upstream simply flows
// through on the next computation instead of requiring a replay.
type MatchupService struct {
	leagueRepo   league.Repository
	rosterRepo   roster.Repository
	scheduleRepo schedule.Repository
	statsRepo    stats.Repository
	logger       *logging.Logger
	now          func() time.Time
}

func NewMatchupService(
	leagueRepo league.Repository,
	rosterRepo roster.Repository,
	scheduleRepo schedule.Repository,
	statsRepo stats.Repository,
	logger *logging.Logger,
) *MatchupService {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &MatchupService{
		leagueRepo:   leagueRepo,
		rosterRepo:   rosterRepo,
		scheduleRepo: scheduleRepo,
		statsRepo:    statsRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// ScoreWeek computes the current score for every team with a scheduled
// matchup in the given week. Teams fan out on a bounded pool; the result
// is ordered by team id so repeated passes over unchanged stats are
// byte-for-byte identical.
func (s *MatchupService) ScoreWeek(ctx context.Context, leagueID string, week int) ([]scoring.MatchupScore, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchupService.ScoreWeek")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}
	if week < 1 {
		return nil, fmt.Errorf("%w: week must be at least 1", ErrInvalidInput)
	}

	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}

	matchups, err := s.scheduleRepo.ListMatchups(ctx, leagueID, week)
	if err != nil {
		return nil, fmt.Errorf("list matchups: %w", err)
	}
	if len(matchups) == 0 {
		return nil, nil
	}

	lines, err := s.statsRepo.LinesByWeek(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("%w: stat lines for week %d: %v", ErrDependencyUnavailable, week, err)
	}
	projections, err := s.statsRepo.ProjectionsByWeek(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("%w: projections for week %d: %v", ErrDependencyUnavailable, week, err)
	}

	teamIDs := teamsInMatchups(matchups)
	scores := make([]scoring.MatchupScore, len(teamIDs))

	p := pool.New().WithContext(ctx).WithMaxGoroutines(scoreWeekMaxWorkers)
	for i, teamID := range teamIDs {
		i, teamID := i, teamID
		p.Go(func(ctx context.Context) error {
			score, err := s.scoreTeam(ctx, lg.Scoring, teamID, week, lines, projections)
			if err != nil {
				return fmt.Errorf("score team %s: %w", teamID, err)
			}
			scores[i] = score
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return scores, nil
}

func (s *MatchupService) scoreTeam(
	ctx context.Context,
	settings scoring.Settings,
	teamID string,
	week int,
	lines map[string]stats.Line,
	projections map[string]float64,
) (scoring.MatchupScore, error) {
	entries, err := s.rosterRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return scoring.MatchupScore{}, fmt.Errorf("list roster: %w", err)
	}

	now := s.now().UTC()
	score := scoring.MatchupScore{
		TeamID:  teamID,
		Week:    week,
		Players: make([]scoring.PlayerScore, 0, len(entries)),
	}

	for _, entry := range entries {
		// A missing line means no production yet and scores zero.
		points := scoring.Round(scoring.Points(lines[entry.PlayerID], settings))

		locked := false
		game, scheduled, err := s.scheduleRepo.GameForPlayer(ctx, entry.PlayerID, week)
		if err != nil {
			return scoring.MatchupScore{}, fmt.Errorf("game for player %s: %w", entry.PlayerID, err)
		}
		if scheduled {
			locked = game.StartedBy(now)
		}

		row := scoring.PlayerScore{
			PlayerID:  entry.PlayerID,
			Slot:      string(entry.Slot),
			Starter:   entry.IsStarter(),
			Locked:    locked,
			Points:    points,
			Projected: projections[entry.PlayerID],
		}
		score.Players = append(score.Players, row)

		if row.Starter {
			score.TotalPoints += row.Points
			score.ProjectedPoints += row.Projected
		}
	}

	score.TotalPoints = scoring.Round(score.TotalPoints)
	score.ProjectedPoints = scoring.Round(score.ProjectedPoints)

	// Starters first, then bench, stable by player id.
	sort.SliceStable(score.Players, func(i, j int) bool {
		if score.Players[i].Starter != score.Players[j].Starter {
			return score.Players[i].Starter
		}
		return score.Players[i].PlayerID < score.Players[j].PlayerID
	})

	return score, nil
}

func teamsInMatchups(matchups []schedule.Matchup) []string {
	seen := make(map[string]struct{}, len(matchups)*2)
	ids := make([]string, 0, len(matchups)*2)
	for _, m := range matchups {
		for _, id := range []string{m.HomeTeamID, m.AwayTeamID} {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
