package scoring

import "context"

// Repository describes score persistence needs from use cases. Snapshots
// are superseded on every write; matchup results and week finals are
// written exactly once. A stored matchup result marks the pairing settled,
// so a finalize re-run skips it instead of applying records twice.
type Repository interface {
	UpsertSnapshot(ctx context.Context, snapshot Snapshot) error
	GetSnapshot(ctx context.Context, leagueID string, week int) (Snapshot, bool, error)
	SaveMatchupResult(ctx context.Context, leagueID string, week int, result MatchupResult) error
	GetMatchupResult(ctx context.Context, leagueID string, week int, homeTeamID string) (MatchupResult, bool, error)
	GetWeekFinal(ctx context.Context, leagueID string, week int) (WeekFinal, bool, error)
	SaveWeekFinal(ctx context.Context, final WeekFinal) error
}
