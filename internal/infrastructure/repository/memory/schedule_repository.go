package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mwhitacre/leaguelive/internal/domain/schedule"
)

// ScheduleRepository holds the game calendar, the matchup pairings, and an
// appearance index resolving which game a player appears in each week.
type ScheduleRepository struct {
	mu          sync.RWMutex
	games       map[string][]schedule.Game // leagueID -> games
	matchups    []schedule.Matchup
	appearances map[string]string // playerID:week -> gameID
	gamesByID   map[string]schedule.Game
}

func NewScheduleRepository(
	games map[string][]schedule.Game,
	matchups []schedule.Matchup,
	appearances map[string]string,
) *ScheduleRepository {
	gamesByID := make(map[string]schedule.Game)
	for _, list := range games {
		for _, g := range list {
			gamesByID[g.ID] = g
		}
	}

	return &ScheduleRepository{
		games:       games,
		matchups:    append([]schedule.Matchup(nil), matchups...),
		appearances: appearances,
		gamesByID:   gamesByID,
	}
}

func (r *ScheduleRepository) ListGamesByWeek(_ context.Context, leagueID string, week int) ([]schedule.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedule.Game, 0, 8)
	for _, g := range r.games[leagueID] {
		if g.Week == week {
			out = append(out, g)
		}
	}

	return out, nil
}

func (r *ScheduleRepository) ListMatchups(_ context.Context, leagueID string, week int) ([]schedule.Matchup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedule.Matchup, 0, 4)
	for _, m := range r.matchups {
		if m.LeagueID == leagueID && m.Week == week {
			out = append(out, m)
		}
	}

	return out, nil
}

func (r *ScheduleRepository) GameForPlayer(_ context.Context, playerID string, week int) (schedule.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gameID, ok := r.appearances[AppearanceKey(playerID, week)]
	if !ok {
		return schedule.Game{}, false, nil
	}
	g, ok := r.gamesByID[gameID]
	if !ok {
		return schedule.Game{}, false, nil
	}

	return g, true, nil
}

func AppearanceKey(playerID string, week int) string {
	return fmt.Sprintf("%s:%d", playerID, week)
}
