package draft

// RoundOf returns the 1-indexed round for overall pick p among teamCount
// teams.
func RoundOf(p, teamCount int) int {
	return (p-1)/teamCount + 1
}

// TeamOnClock returns the team owed overall pick p under the snake rule:
// odd rounds run forward through the team list, even rounds run reversed,
// so every team picks exactly once per round and the direction flips at
// each round boundary.
func TeamOnClock(p int, teamIDs []string) string {
	t := len(teamIDs)
	if t == 0 || p < 1 {
		return ""
	}

	slotInRound := (p-1)%t + 1
	if RoundOf(p, t)%2 == 1 {
		return teamIDs[slotInRound-1]
	}
	return teamIDs[t-slotInRound]
}

// BuildOrder materializes the full snake order for teams x rounds.
func BuildOrder(teamIDs []string, rounds int) []Slot {
	order := make([]Slot, 0, len(teamIDs)*rounds)
	for p := 1; p <= len(teamIDs)*rounds; p++ {
		order = append(order, Slot{
			TeamID:  TeamOnClock(p, teamIDs),
			Round:   RoundOf(p, len(teamIDs)),
			Overall: p,
		})
	}
	return order
}
