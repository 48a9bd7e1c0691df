package teams

// Team represents the normalized team shape for use inside games.
// Kept in its own package to keep domain models modular and reusable across providers/fixtures.
type Team struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FullName     string `json:"fullName"`
	Abbreviation string `json:"abbreviation"`
	City         string `json:"city"`
	Conference   string `json:"conference"`
	Division     string `json:"division"`
}

// Standing is one row of the league standings table.
type Standing struct {
	Team        Team    `json:"team"`
	Conference  string  `json:"conference"`
	PlayoffRank int     `json:"playoffRank"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinPct      float64 `json:"winPct"`
}

// Standings is the league table for a season.
type Standings struct {
	Season string     `json:"season"`
	Rows   []Standing `json:"rows"`
}

// Details carries team background information.
type Details struct {
	Team           Team   `json:"team"`
	YearFounded    int    `json:"yearFounded"`
	Arena          string `json:"arena"`
	ArenaCapacity  int    `json:"arenaCapacity"`
	Owner          string `json:"owner"`
	GeneralManager string `json:"generalManager"`
	HeadCoach      string `json:"headCoach"`
}
