package draft

import "testing"

func TestTeamOnClock_FourTeamSnake(t *testing.T) {
	t.Parallel()

	teams := []string{"A", "B", "C", "D"}
	want := []string{
		"A", "B", "C", "D", // round 1
		"D", "C", "B", "A", // round 2
		"A", // round 3 returns to A
	}

	for i, expected := range want {
		got := TeamOnClock(i+1, teams)
		if got != expected {
			t.Fatalf("pick %d: expected team %s, got %s", i+1, expected, got)
		}
	}
}

func TestBuildOrder_EachTeamPicksOncePerRound(t *testing.T) {
	t.Parallel()

	for teamCount := 2; teamCount <= 12; teamCount++ {
		teams := make([]string, 0, teamCount)
		for i := 0; i < teamCount; i++ {
			teams = append(teams, string(rune('a'+i)))
		}

		const rounds = 15
		order := BuildOrder(teams, rounds)
		if len(order) != teamCount*rounds {
			t.Fatalf("teams=%d: expected %d slots, got %d", teamCount, teamCount*rounds, len(order))
		}

		perTeam := make(map[string]int)
		perRound := make(map[int]map[string]int)
		for _, slot := range order {
			perTeam[slot.TeamID]++
			if perRound[slot.Round] == nil {
				perRound[slot.Round] = make(map[string]int)
			}
			perRound[slot.Round][slot.TeamID]++
		}

		for _, id := range teams {
			if perTeam[id] != rounds {
				t.Fatalf("teams=%d: team %s has %d picks, expected %d", teamCount, id, perTeam[id], rounds)
			}
		}
		for round, counts := range perRound {
			for id, n := range counts {
				if n != 1 {
					t.Fatalf("teams=%d round=%d: team %s picks %d times", teamCount, round, id, n)
				}
			}
		}
	}
}

func TestTeamOnClock_NoRepeatInsideRound(t *testing.T) {
	t.Parallel()

	teams := []string{"A", "B", "C"}
	for p := 2; p <= 30; p++ {
		if RoundOf(p, len(teams)) == RoundOf(p-1, len(teams)) &&
			TeamOnClock(p, teams) == TeamOnClock(p-1, teams) {
			t.Fatalf("pick %d repeats team %s within a round", p, TeamOnClock(p, teams))
		}
	}
}

func TestAppendPick_RejectsGapAndDuplicatePlayer(t *testing.T) {
	t.Parallel()

	d, err := New("league-1", []string{"A", "B"}, 2, 60e9)
	if err != nil {
		t.Fatalf("new draft: %v", err)
	}

	if err := d.AppendPick(Pick{Number: 2, Round: 1, TeamID: "B", PlayerID: "p2"}); err == nil {
		t.Fatalf("expected pick sequence gap error")
	}
	if err := d.AppendPick(Pick{Number: 1, Round: 1, TeamID: "A", PlayerID: "p1"}); err != nil {
		t.Fatalf("append pick 1: %v", err)
	}
	if err := d.AppendPick(Pick{Number: 2, Round: 1, TeamID: "B", PlayerID: "p1"}); err == nil {
		t.Fatalf("expected player taken error")
	}
	if err := d.ValidateSequence(); err != nil {
		t.Fatalf("validate sequence: %v", err)
	}
}

func TestDraft_CompletesAtTeamsTimesRounds(t *testing.T) {
	t.Parallel()

	d, err := New("league-1", []string{"A", "B"}, 2, 60e9)
	if err != nil {
		t.Fatalf("new draft: %v", err)
	}
	d.Status = StatusInProgress

	players := []string{"p1", "p2", "p3", "p4"}
	for i, playerID := range players {
		team := TeamOnClock(i+1, d.TeamIDs)
		if err := d.AppendPick(Pick{
			Number:   i + 1,
			Round:    RoundOf(i+1, len(d.TeamIDs)),
			TeamID:   team,
			PlayerID: playerID,
		}); err != nil {
			t.Fatalf("append pick %d: %v", i+1, err)
		}
	}

	if d.Status != StatusCompleted {
		t.Fatalf("expected completed draft, got %s", d.Status)
	}
	if _, ok := d.OnClock(); ok {
		t.Fatalf("completed draft must have no team on the clock")
	}
}
