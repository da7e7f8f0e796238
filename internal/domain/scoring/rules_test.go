package scoring

import (
	"testing"

	"github.com/mwhitacre/leaguelive/internal/domain/stats"
)

func TestPoints_PPRReceivingExample(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.ReceivingYardWeight = 0.1
	s.ReceptionWeight = 1
	s.ReceivingTDWeight = 6

	line := stats.Line{
		ReceivingYards: 83,
		Receptions:     7,
		ReceivingTDs:   1,
	}

	// 83*0.1 + 7*1 + 1*6 = 21.3
	if got := Points(line, s); got != 21.3 {
		t.Fatalf("expected 21.3 points, got %v", got)
	}
}

func TestPoints_Deterministic(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	line := stats.Line{
		PassingYards:  287,
		PassingTDs:    2,
		Interceptions: 1,
		RushingYards:  13,
		FumblesLost:   1,
	}

	first := Points(line, s)
	for i := 0; i < 100; i++ {
		if got := Points(line, s); got != first {
			t.Fatalf("points drifted: %v != %v", got, first)
		}
	}
}

func TestPoints_ZeroYardageWeightsLeaveEventTerms(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.PassingYardWeight = 0
	s.RushingYardWeight = 0
	s.ReceivingYardWeight = 0

	line := stats.Line{
		PassingYards:   412,
		RushingYards:   88,
		ReceivingYards: 120,
		Receptions:     9,
		ReceivingTDs:   2,
		Interceptions:  1,
	}

	want := 9*s.ReceptionWeight + 2*s.ReceivingTDWeight + 1*s.InterceptionWeight
	if got := Points(line, s); got != Round(want) {
		t.Fatalf("expected %v, got %v", Round(want), got)
	}
}

func TestPoints_RoundsHalfAwayFromZero(t *testing.T) {
	t.Parallel()

	s := Settings{
		PassingYardWeight:  0.035,
		PointsAllowedTiers: map[int]float64{0: 0},
	}

	// 7 * 0.035 = 0.245 rounds to 0.25, not 0.24.
	if got := Points(stats.Line{PassingYards: 7}, s); got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
}

func TestPoints_DefenseTiers(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()

	cases := []struct {
		name    string
		allowed int
		want    float64
	}{
		{name: "shutout bonus", allowed: 0, want: 10},
		{name: "low tier", allowed: 6, want: 7},
		{name: "mid tier", allowed: 14, want: 1},
		{name: "high tier penalty", allowed: 30, want: -1},
		{name: "overflow penalty", allowed: 45, want: -4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed := tc.allowed
			got := Points(stats.Line{PointsAllowed: &allowed}, s)
			if got != tc.want {
				t.Fatalf("allowed=%d: expected %v, got %v", tc.allowed, tc.want, got)
			}
		})
	}
}

func TestPoints_DefenseTiersMonotone(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	last := 1000.0
	for allowed := 0; allowed <= 60; allowed++ {
		a := allowed
		got := Points(stats.Line{PointsAllowed: &a}, s)
		if got > last {
			t.Fatalf("allowed=%d scores %v, above %v for fewer points allowed", allowed, got, last)
		}
		last = got
	}
}

func TestSettings_ValidateRejectsIncreasingTiers(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.PointsAllowedTiers[13] = 99

	if err := s.Validate(); err == nil {
		t.Fatalf("expected validation error for increasing tier")
	}
}
