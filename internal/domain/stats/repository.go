package stats

import "context"

// Repository is the external stat-provider boundary. Lines and projections
// are keyed by player and week; a missing line means the player has not
// produced any stats yet.
type Repository interface {
	LinesByWeek(ctx context.Context, week int) (map[string]Line, error)
	ProjectionsByWeek(ctx context.Context, week int) (map[string]float64, error)
}
