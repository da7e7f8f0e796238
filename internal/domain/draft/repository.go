package draft

import "context"

// Repository describes draft persistence needs from use cases. Save writes
// the whole draft; the draft service serializes writes per draft so the
// stored record never interleaves.
type Repository interface {
	GetByLeague(ctx context.Context, leagueID string) (Draft, bool, error)
	Save(ctx context.Context, item Draft) error
}
