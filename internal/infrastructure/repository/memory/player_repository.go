package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mwhitacre/leaguelive/internal/domain/player"
)

type PlayerRepository struct {
	mu    sync.RWMutex
	items map[string]player.Player
	byADP []string
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	items := make(map[string]player.Player, len(players))
	byADP := make([]string, 0, len(players))

	for _, p := range players {
		items[p.ID] = p
		byADP = append(byADP, p.ID)
	}
	sort.SliceStable(byADP, func(i, j int) bool {
		a, b := items[byADP[i]], items[byADP[j]]
		if a.ADP != b.ADP {
			return a.ADP < b.ADP
		}
		return a.ID < b.ID
	})

	return &PlayerRepository{
		items: items,
		byADP: byADP,
	}
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[playerID]
	if !ok {
		return player.Player{}, false, nil
	}

	return p, true, nil
}

func (r *PlayerRepository) ListByADP(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.byADP))
	for _, id := range r.byADP {
		out = append(out, r.items[id])
	}

	return out, nil
}
