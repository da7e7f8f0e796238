package roster

import "context"

// Repository describes roster persistence needs from use cases.
type Repository interface {
	ListByTeam(ctx context.Context, teamID string) ([]Entry, error)
	Add(ctx context.Context, entry Entry) error
}
