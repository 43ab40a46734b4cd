package domain

type User struct {
	Id           int64
	Username     string
	PasswordHash string

	// Lifetime match stats, updated when a game ends.
	Matches         int
	SurvivorMatches int
	MafiaMatches    int
}

type Room struct {
	Id          int64
	Name        string
	Owner       int64
	MinPlayers  int
	MaxPlayers  int
	Private     bool
	Active      bool
	LivePlayers int
}

type LeaderboardEntry struct {
	Id              int64  `json:"id"`
	Username        string `json:"username"`
	Matches         int    `json:"matches"`
	SurvivorMatches int    `json:"survivor_matches"`
	MafiaMatches    int    `json:"mafia_matches"`
}
