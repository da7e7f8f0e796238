package memory

import (
	"context"
	"sync"

	"github.com/mwhitacre/leaguelive/internal/domain/stats"
)

type StatsRepository struct {
	mu          sync.RWMutex
	lines       map[int]map[string]stats.Line
	projections map[int]map[string]float64
}

func NewStatsRepository(lines []stats.Line, projections map[int]map[string]float64) *StatsRepository {
	byWeek := make(map[int]map[string]stats.Line)
	for _, line := range lines {
		week, ok := byWeek[line.Week]
		if !ok {
			week = make(map[string]stats.Line)
			byWeek[line.Week] = week
		}
		week[line.PlayerID] = line
	}
	if projections == nil {
		projections = make(map[int]map[string]float64)
	}

	return &StatsRepository{
		lines:       byWeek,
		projections: projections,
	}
}

func (r *StatsRepository) LinesByWeek(_ context.Context, week int) (map[string]stats.Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]stats.Line, len(r.lines[week]))
	for id, line := range r.lines[week] {
		out[id] = line
	}

	return out, nil
}

func (r *StatsRepository) ProjectionsByWeek(_ context.Context, week int) (map[string]float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]float64, len(r.projections[week]))
	for id, value := range r.projections[week] {
		out[id] = value
	}

	return out, nil
}

// SetLine replaces one player's weekly line. Tests use it to simulate the
// live stat feed advancing between scoring passes.
func (r *StatsRepository) SetLine(line stats.Line) {
	r.mu.Lock()
	defer r.mu.Unlock()

	week, ok := r.lines[line.Week]
	if !ok {
		week = make(map[string]stats.Line)
		r.lines[line.Week] = week
	}
	week[line.PlayerID] = line
}

func (r *StatsRepository) SetProjection(playerID string, week int, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	projections, ok := r.projections[week]
	if !ok {
		projections = make(map[string]float64)
		r.projections[week] = projections
	}
	projections[playerID] = value
}
