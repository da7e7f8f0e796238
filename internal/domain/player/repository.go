package player

import "context"

// Repository describes the player pool lookups the draft and scoring
// services need.
type Repository interface {
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	// ListByADP returns the whole pool ordered by ascending ADP,
	// ties broken by player id.
	ListByADP(ctx context.Context) ([]Player, error)
}
