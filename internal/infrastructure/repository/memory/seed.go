package memory

import (
	"time"

	"github.com/mwhitacre/leaguelive/internal/domain/draft"
	"github.com/mwhitacre/leaguelive/internal/domain/league"
	"github.com/mwhitacre/leaguelive/internal/domain/player"
	"github.com/mwhitacre/leaguelive/internal/domain/roster"
	"github.com/mwhitacre/leaguelive/internal/domain/schedule"
	"github.com/mwhitacre/leaguelive/internal/domain/scoring"
	"github.com/mwhitacre/leaguelive/internal/domain/stats"
	"github.com/mwhitacre/leaguelive/internal/domain/team"
)

const (
	LeagueIDSundayShowdown = "sunday-showdown-2026"

	TeamIDAardvarks = "team-aardvarks"
	TeamIDBulldogs  = "team-bulldogs"
	TeamIDCougars   = "team-cougars"
	TeamIDDragons   = "team-dragons"

	UserIDCommissioner = "user-commish"
)

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:                 LeagueIDSundayShowdown,
			Name:               "Sunday Showdown",
			Season:             "2026",
			CommissionerUserID: UserIDCommissioner,
			CurrentWeek:        1,
			TotalWeeks:         3,
			Scoring:            scoring.DefaultSettings(),
		},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: TeamIDAardvarks, LeagueID: LeagueIDSundayShowdown, Name: "Alameda Aardvarks", OwnerUserID: "user-1"},
		{ID: TeamIDBulldogs, LeagueID: LeagueIDSundayShowdown, Name: "Berkeley Bulldogs", OwnerUserID: "user-2"},
		{ID: TeamIDCougars, LeagueID: LeagueIDSundayShowdown, Name: "Concord Cougars", OwnerUserID: "user-3"},
		{ID: TeamIDDragons, LeagueID: LeagueIDSundayShowdown, Name: "Davis Dragons", OwnerUserID: UserIDCommissioner},
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: "p-chase", Name: "Ja'Marr Chase", Position: player.PositionWideReceiver, ProTeam: "CIN", ADP: 1},
		{ID: "p-robinson", Name: "Bijan Robinson", Position: player.PositionRunningBack, ProTeam: "ATL", ADP: 2},
		{ID: "p-jefferson", Name: "Justin Jefferson", Position: player.PositionWideReceiver, ProTeam: "MIN", ADP: 3},
		{ID: "p-mccaffrey", Name: "Christian McCaffrey", Position: player.PositionRunningBack, ProTeam: "SF", ADP: 4},
		{ID: "p-lamb", Name: "CeeDee Lamb", Position: player.PositionWideReceiver, ProTeam: "DAL", ADP: 5},
		{ID: "p-gibbs", Name: "Jahmyr Gibbs", Position: player.PositionRunningBack, ProTeam: "DET", ADP: 6},
		{ID: "p-stbrown", Name: "Amon-Ra St. Brown", Position: player.PositionWideReceiver, ProTeam: "DET", ADP: 7},
		{ID: "p-barkley", Name: "Saquon Barkley", Position: player.PositionRunningBack, ProTeam: "PHI", ADP: 8},
		{ID: "p-allen", Name: "Josh Allen", Position: player.PositionQuarterback, ProTeam: "BUF", ADP: 9},
		{ID: "p-jackson", Name: "Lamar Jackson", Position: player.PositionQuarterback, ProTeam: "BAL", ADP: 10},
		{ID: "p-bowers", Name: "Brock Bowers", Position: player.PositionTightEnd, ProTeam: "LV", ADP: 11},
		{ID: "p-laporta", Name: "Sam LaPorta", Position: player.PositionTightEnd, ProTeam: "DET", ADP: 12},
		{ID: "p-henry", Name: "Derrick Henry", Position: player.PositionRunningBack, ProTeam: "BAL", ADP: 13},
		{ID: "p-nacua", Name: "Puka Nacua", Position: player.PositionWideReceiver, ProTeam: "LAR", ADP: 14},
		{ID: "p-burrow", Name: "Joe Burrow", Position: player.PositionQuarterback, ProTeam: "CIN", ADP: 15},
		{ID: "p-mahomes", Name: "Patrick Mahomes", Position: player.PositionQuarterback, ProTeam: "KC", ADP: 16},
		{ID: "p-kelce", Name: "Travis Kelce", Position: player.PositionTightEnd, ProTeam: "KC", ADP: 17},
		{ID: "p-andrews", Name: "Mark Andrews", Position: player.PositionTightEnd, ProTeam: "BAL", ADP: 18},
		{ID: "p-tucker", Name: "Justin Tucker", Position: player.PositionKicker, ProTeam: "BAL", ADP: 19},
		{ID: "p-aubrey", Name: "Brandon Aubrey", Position: player.PositionKicker, ProTeam: "DAL", ADP: 20},
		{ID: "p-dst-ravens", Name: "Ravens D/ST", Position: player.PositionDefense, ProTeam: "BAL", ADP: 21},
		{ID: "p-dst-niners", Name: "49ers D/ST", Position: player.PositionDefense, ProTeam: "SF", ADP: 22},
		{ID: "p-jacobs", Name: "Josh Jacobs", Position: player.PositionRunningBack, ProTeam: "GB", ADP: 23},
		{ID: "p-waddle", Name: "Jaylen Waddle", Position: player.PositionWideReceiver, ProTeam: "MIA", ADP: 24},
	}
}

// SeedRosters gives each team a minimal lineup: quarterback and running
// back starting, a tight end on the bench.
func SeedRosters() []roster.Entry {
	return []roster.Entry{
		{TeamID: TeamIDAardvarks, PlayerID: "p-allen", Slot: roster.SlotQuarterback},
		{TeamID: TeamIDAardvarks, PlayerID: "p-robinson", Slot: roster.SlotRunningBack},
		{TeamID: TeamIDAardvarks, PlayerID: "p-kelce", Slot: roster.SlotBench},

		{TeamID: TeamIDBulldogs, PlayerID: "p-jackson", Slot: roster.SlotQuarterback},
		{TeamID: TeamIDBulldogs, PlayerID: "p-mccaffrey", Slot: roster.SlotRunningBack},
		{TeamID: TeamIDBulldogs, PlayerID: "p-andrews", Slot: roster.SlotBench},

		{TeamID: TeamIDCougars, PlayerID: "p-burrow", Slot: roster.SlotQuarterback},
		{TeamID: TeamIDCougars, PlayerID: "p-barkley", Slot: roster.SlotRunningBack},
		{TeamID: TeamIDCougars, PlayerID: "p-laporta", Slot: roster.SlotBench},

		{TeamID: TeamIDDragons, PlayerID: "p-mahomes", Slot: roster.SlotQuarterback},
		{TeamID: TeamIDDragons, PlayerID: "p-henry", Slot: roster.SlotRunningBack},
		{TeamID: TeamIDDragons, PlayerID: "p-bowers", Slot: roster.SlotBench},
	}
}

func SeedGames() map[string][]schedule.Game {
	return map[string][]schedule.Game{
		LeagueIDSundayShowdown: {
			{
				ID:            "g-wk1-early",
				Week:          1,
				KickoffAt:     time.Date(2026, time.September, 13, 17, 0, 0, 0, time.UTC),
				ExpectedEndAt: time.Date(2026, time.September, 13, 20, 15, 0, 0, time.UTC),
			},
			{
				ID:            "g-wk1-late",
				Week:          1,
				KickoffAt:     time.Date(2026, time.September, 13, 20, 25, 0, 0, time.UTC),
				ExpectedEndAt: time.Date(2026, time.September, 13, 23, 45, 0, 0, time.UTC),
			},
			{
				ID:            "g-wk2-early",
				Week:          2,
				KickoffAt:     time.Date(2026, time.September, 20, 17, 0, 0, 0, time.UTC),
				ExpectedEndAt: time.Date(2026, time.September, 20, 20, 15, 0, 0, time.UTC),
			},
		},
	}
}

func SeedMatchups() []schedule.Matchup {
	return []schedule.Matchup{
		{LeagueID: LeagueIDSundayShowdown, Week: 1, HomeTeamID: TeamIDAardvarks, AwayTeamID: TeamIDBulldogs},
		{LeagueID: LeagueIDSundayShowdown, Week: 1, HomeTeamID: TeamIDCougars, AwayTeamID: TeamIDDragons},
		{LeagueID: LeagueIDSundayShowdown, Week: 2, HomeTeamID: TeamIDAardvarks, AwayTeamID: TeamIDCougars},
		{LeagueID: LeagueIDSundayShowdown, Week: 2, HomeTeamID: TeamIDBulldogs, AwayTeamID: TeamIDDragons},
	}
}

func SeedAppearances() map[string]string {
	return map[string]string{
		AppearanceKey("p-allen", 1):     "g-wk1-early",
		AppearanceKey("p-jackson", 1):   "g-wk1-early",
		AppearanceKey("p-robinson", 1):  "g-wk1-early",
		AppearanceKey("p-mccaffrey", 1): "g-wk1-early",
		AppearanceKey("p-kelce", 1):     "g-wk1-early",
		AppearanceKey("p-andrews", 1):   "g-wk1-early",
		AppearanceKey("p-burrow", 1):    "g-wk1-late",
		AppearanceKey("p-barkley", 1):   "g-wk1-late",
		AppearanceKey("p-mahomes", 1):   "g-wk1-late",
		AppearanceKey("p-henry", 1):     "g-wk1-late",
		AppearanceKey("p-laporta", 1):   "g-wk1-late",
		AppearanceKey("p-bowers", 1):    "g-wk1-late",
	}
}

// SeedStatLines is a mid-afternoon week 1 snapshot. With default scoring:
// Allen 19.0, Robinson 20.5, Jackson 26.0, McCaffrey 21.0, Burrow 22.8,
// Barkley 24.0, Mahomes 15.2, Henry 7.0, Kelce 19.0.
func SeedStatLines() []stats.Line {
	return []stats.Line{
		{PlayerID: "p-allen", Week: 1, PassingYards: 250, PassingTDs: 2, Interceptions: 1, RushingYards: 30},
		{PlayerID: "p-robinson", Week: 1, RushingYards: 90, RushingTDs: 1, Receptions: 3, ReceivingYards: 25},
		{PlayerID: "p-jackson", Week: 1, PassingYards: 200, PassingTDs: 1, RushingYards: 80, RushingTDs: 1},
		{PlayerID: "p-mccaffrey", Week: 1, RushingYards: 60, Receptions: 5, ReceivingYards: 40, ReceivingTDs: 1},
		{PlayerID: "p-burrow", Week: 1, PassingYards: 320, PassingTDs: 3, FumblesLost: 1},
		{PlayerID: "p-barkley", Week: 1, RushingYards: 120, RushingTDs: 2},
		{PlayerID: "p-mahomes", Week: 1, PassingYards: 280, PassingTDs: 2, Interceptions: 2},
		{PlayerID: "p-henry", Week: 1, RushingYards: 70},
		{PlayerID: "p-kelce", Week: 1, Receptions: 6, ReceivingYards: 70, ReceivingTDs: 1},
	}
}

func SeedProjections() map[int]map[string]float64 {
	return map[int]map[string]float64{
		1: {
			"p-allen":     22.5,
			"p-robinson":  19.0,
			"p-jackson":   24.0,
			"p-mccaffrey": 20.0,
			"p-burrow":    21.0,
			"p-barkley":   18.5,
			"p-mahomes":   23.0,
			"p-henry":     16.0,
			"p-kelce":     14.0,
			"p-andrews":   11.0,
			"p-laporta":   12.0,
			"p-bowers":    13.5,
		},
	}
}

func SeedDrafts() []draft.Draft {
	d, err := draft.New(
		LeagueIDSundayShowdown,
		[]string{TeamIDAardvarks, TeamIDBulldogs, TeamIDCougars, TeamIDDragons},
		3,
		30*time.Second,
	)
	if err != nil {
		panic(err)
	}

	return []draft.Draft{d}
}
