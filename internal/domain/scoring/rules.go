package scoring

import (
	"math"
	"sort"

	"github.com/mwhitacre/leaguelive/internal/domain/stats"
)

// Points maps one raw stat line to fantasy points under the given settings.
// Deterministic and side-effect free; the result is rounded to two decimals
// with standard half-away-from-zero rounding, not truncation.
func Points(line stats.Line, s Settings) float64 {
	total := line.PassingYards * s.PassingYardWeight
	total += float64(line.PassingTDs) * s.PassingTDWeight
	total += float64(line.Interceptions) * s.InterceptionWeight

	total += line.RushingYards * s.RushingYardWeight
	total += float64(line.RushingTDs) * s.RushingTDWeight

	total += line.ReceivingYards * s.ReceivingYardWeight
	total += float64(line.Receptions) * s.ReceptionWeight
	total += float64(line.ReceivingTDs) * s.ReceivingTDWeight

	total += float64(line.FumblesLost) * s.FumbleLostWeight
	total += float64(line.TwoPointConversions) * s.TwoPointWeight

	total += float64(line.FieldGoals0to39) * s.FieldGoal0to39Weight
	total += float64(line.FieldGoals40to49) * s.FieldGoal40to49Weight
	total += float64(line.FieldGoals50Plus) * s.FieldGoal50Weight
	total += float64(line.FieldGoalsMissed) * s.FieldGoalMissWeight
	total += float64(line.ExtraPointsMade) * s.ExtraPointWeight
	total += float64(line.ExtraPointsMissed) * s.ExtraPointMissWeight

	total += float64(line.Sacks) * s.SackWeight
	total += float64(line.DefInterceptions) * s.DefInterceptionWeight
	total += float64(line.FumbleRecoveries) * s.FumbleRecoveryWeight
	total += float64(line.Safeties) * s.SafetyWeight
	total += float64(line.DefensiveTDs) * s.DefensiveTDWeight

	if line.PointsAllowed != nil {
		total += pointsAllowedScore(*line.PointsAllowed, s)
	}

	return Round(total)
}

// Round normalizes a fantasy point value to two decimal places.
func Round(value float64) float64 {
	return math.Round(value*100) / 100
}

func pointsAllowedScore(allowed int, s Settings) float64 {
	bounds := make([]int, 0, len(s.PointsAllowedTiers))
	for bound := range s.PointsAllowedTiers {
		bounds = append(bounds, bound)
	}
	sort.Ints(bounds)

	for _, bound := range bounds {
		if allowed <= bound {
			return s.PointsAllowedTiers[bound]
		}
	}

	return s.PointsAllowedOverflow
}
