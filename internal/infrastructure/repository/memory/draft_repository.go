package memory

import (
	"context"
	"sync"

	"github.com/mwhitacre/leaguelive/internal/domain/draft"
)

type DraftRepository struct {
	mu    sync.RWMutex
	items map[string]draft.Draft
}

func NewDraftRepository(drafts []draft.Draft) *DraftRepository {
	items := make(map[string]draft.Draft, len(drafts))
	for _, d := range drafts {
		items[d.LeagueID] = d
	}

	return &DraftRepository{items: items}
}

func (r *DraftRepository) GetByLeague(_ context.Context, leagueID string) (draft.Draft, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.items[leagueID]
	if !ok {
		return draft.Draft{}, false, nil
	}

	// Deep copy so callers never mutate the stored pick history in place.
	d.TeamIDs = append([]string(nil), d.TeamIDs...)
	d.Order = append([]draft.Slot(nil), d.Order...)
	d.Picks = append([]draft.Pick(nil), d.Picks...)

	return d, true, nil
}

func (r *DraftRepository) Save(_ context.Context, item draft.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.TeamIDs = append([]string(nil), item.TeamIDs...)
	item.Order = append([]draft.Slot(nil), item.Order...)
	item.Picks = append([]draft.Pick(nil), item.Picks...)
	r.items[item.LeagueID] = item

	return nil
}
