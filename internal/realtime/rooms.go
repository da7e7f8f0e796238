package realtime

import "fmt"

// RoomID names one broadcast partition. Connections only ever receive
// events for rooms they joined.
type RoomID string

func LeagueRoom(leagueID string) RoomID {
	return RoomID("league:" + leagueID)
}

func DraftRoom(leagueID string) RoomID {
	return RoomID("draft:" + leagueID)
}

func ScoringRoom(leagueID string, week int) RoomID {
	return RoomID(fmt.Sprintf("scoring:%s:%d", leagueID, week))
}

func ChatRoom(leagueID string) RoomID {
	return RoomID("chat:" + leagueID)
}
