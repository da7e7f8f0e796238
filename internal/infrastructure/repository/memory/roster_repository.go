package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mwhitacre/leaguelive/internal/domain/roster"
)

type RosterRepository struct {
	mu      sync.RWMutex
	entries []roster.Entry
}

func NewRosterRepository(entries []roster.Entry) *RosterRepository {
	return &RosterRepository{
		entries: append([]roster.Entry(nil), entries...),
	}
}

func (r *RosterRepository) ListByTeam(_ context.Context, teamID string) ([]roster.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Entry, 0, 8)
	for _, e := range r.entries {
		if e.TeamID == teamID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlayerID < out[j].PlayerID
	})

	return out, nil
}

func (r *RosterRepository) Add(_ context.Context, entry roster.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)

	return nil
}
