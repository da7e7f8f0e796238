package schedule

import "context"

// Repository is the game-calendar boundary. GameForPlayer resolves which
// game a player appears in so the aggregator can mark locked players.
type Repository interface {
	ListGamesByWeek(ctx context.Context, leagueID string, week int) ([]Game, error)
	ListMatchups(ctx context.Context, leagueID string, week int) ([]Matchup, error)
	GameForPlayer(ctx context.Context, playerID string, week int) (Game, bool, error)
}
