package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID string) ([]Team, error)
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	Save(ctx context.Context, item Team) error
}
