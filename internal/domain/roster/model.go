package roster

import "fmt"

type Slot string

const (
	SlotQuarterback  Slot = "QB"
	SlotRunningBack  Slot = "RB"
	SlotWideReceiver Slot = "WR"
	SlotTightEnd     Slot = "TE"
	SlotFlex         Slot = "FLEX"
	SlotKicker       Slot = "K"
	SlotDefense      Slot = "DST"
	SlotBench        Slot = "BENCH"
)

var AllSlots = map[Slot]struct{}{
	SlotQuarterback:  {},
	SlotRunningBack:  {},
	SlotWideReceiver: {},
	SlotTightEnd:     {},
	SlotFlex:         {},
	SlotKicker:       {},
	SlotDefense:      {},
	SlotBench:        {},
}

// Entry ties one player to one fantasy team's roster. Only non-bench
// entries count toward matchup totals.
type Entry struct {
	TeamID   string
	PlayerID string
	Slot     Slot
}

func (e Entry) IsStarter() bool {
	return e.Slot != SlotBench
}

func (e Entry) Validate() error {
	if e.TeamID == "" {
		return fmt.Errorf("roster entry team id is required")
	}
	if e.PlayerID == "" {
		return fmt.Errorf("roster entry player id is required")
	}
	if _, ok := AllSlots[e.Slot]; !ok {
		return fmt.Errorf("unknown roster slot: %s", e.Slot)
	}

	return nil
}
