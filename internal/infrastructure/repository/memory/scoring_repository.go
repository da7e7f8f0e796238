package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mwhitacre/leaguelive/internal/domain/scoring"
)

type ScoringRepository struct {
	mu        sync.RWMutex
	snapshots map[string]scoring.Snapshot
	results   map[string]map[string]scoring.MatchupResult
	finals    map[string]scoring.WeekFinal
}

func NewScoringRepository() *ScoringRepository {
	return &ScoringRepository{
		snapshots: make(map[string]scoring.Snapshot),
		results:   make(map[string]map[string]scoring.MatchupResult),
		finals:    make(map[string]scoring.WeekFinal),
	}
}

func (r *ScoringRepository) UpsertSnapshot(_ context.Context, snapshot scoring.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[weekKey(snapshot.LeagueID, snapshot.Week)] = snapshot

	return nil
}

func (r *ScoringRepository) GetSnapshot(_ context.Context, leagueID string, week int) (scoring.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.snapshots[weekKey(leagueID, week)]
	if !ok {
		return scoring.Snapshot{}, false, nil
	}

	return s, true, nil
}

func (r *ScoringRepository) SaveMatchupResult(_ context.Context, leagueID string, week int, result scoring.MatchupResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := weekKey(leagueID, week)
	settled, ok := r.results[key]
	if !ok {
		settled = make(map[string]scoring.MatchupResult)
		r.results[key] = settled
	}
	if _, exists := settled[result.HomeTeamID]; exists {
		return fmt.Errorf("matchup result already recorded: %s home=%s", key, result.HomeTeamID)
	}
	settled[result.HomeTeamID] = result

	return nil
}

func (r *ScoringRepository) GetMatchupResult(_ context.Context, leagueID string, week int, homeTeamID string) (scoring.MatchupResult, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.results[weekKey(leagueID, week)][homeTeamID]
	if !ok {
		return scoring.MatchupResult{}, false, nil
	}

	return result, true, nil
}

func (r *ScoringRepository) GetWeekFinal(_ context.Context, leagueID string, week int) (scoring.WeekFinal, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.finals[weekKey(leagueID, week)]
	if !ok {
		return scoring.WeekFinal{}, false, nil
	}

	return f, true, nil
}

func (r *ScoringRepository) SaveWeekFinal(_ context.Context, final scoring.WeekFinal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := weekKey(final.LeagueID, final.Week)
	if _, exists := r.finals[key]; exists {
		return fmt.Errorf("week final already recorded: %s", key)
	}
	r.finals[key] = final

	return nil
}

func weekKey(leagueID string, week int) string {
	return fmt.Sprintf("%s:%d", leagueID, week)
}
