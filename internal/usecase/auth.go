package usecase

import (
	"context"
	"fmt"

	"github.com/mwhitacre/leaguelive/internal/domain/league"
)

// requireCommissioner loads the league and verifies the caller runs it.
func requireCommissioner(ctx context.Context, repo league.Repository, leagueID, userID string) (league.League, error) {
	lg, exists, err := repo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}
	if lg.CommissionerUserID != userID {
		return league.League{}, fmt.Errorf("%w: commissioner only", ErrUnauthorized)
	}
	return lg, nil
}
