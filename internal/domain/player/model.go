package player

import "fmt"

type Position string

const (
	PositionQuarterback  Position = "QB"
	PositionRunningBack  Position = "RB"
	PositionWideReceiver Position = "WR"
	PositionTightEnd     Position = "TE"
	PositionKicker       Position = "K"
	PositionDefense      Position = "DST"
)

var AllPositions = map[Position]struct{}{
	PositionQuarterback:  {},
	PositionRunningBack:  {},
	PositionWideReceiver: {},
	PositionTightEnd:     {},
	PositionKicker:       {},
	PositionDefense:      {},
}

// Player is a draftable real-world player or defense/special-teams unit.
// ADP is the precomputed average draft position used to rank auto-picks;
// lower means earlier.
type Player struct {
	ID       string
	Name     string
	Position Position
	ProTeam  string
	ADP      float64
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("unknown player position: %s", p.Position)
	}
	if p.ADP < 0 {
		return fmt.Errorf("player adp cannot be negative")
	}

	return nil
}
