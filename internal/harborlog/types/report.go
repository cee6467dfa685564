package types

// Bar is one entry of a ranked series, ready for bounded-width rendering.
// Percent is relative to the largest value among the bars shown.
type Bar struct {
	Label   string  `json:"label"`
	Value   int     `json:"value"`
	Percent float64 `json:"percent"`
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// RosterDay lists the distinct participants seen on one day.
type RosterDay struct {
	Day     string   `json:"day"`
	Names   []string `json:"names"`
	Unique  int      `json:"unique"`
	Preview string   `json:"preview"`
}

type Breakdown struct {
	Name string `json:"name"`
	Bars []Bar  `json:"bars"`
}

// Report is the dashboard payload for one log over one date range.
type Report struct {
	Variant            Variant     `json:"variant"`
	Start              string      `json:"start"`
	End                string      `json:"end"`
	Total              int         `json:"total"`
	UniqueParticipants int         `json:"unique_participants"`
	ByYear             []Bar       `json:"by_year"`
	ByPeriod           []Bar       `json:"by_period"`
	Categories         []Breakdown `json:"categories"`
	Trend              []DayCount  `json:"trend"`
	Roster             []RosterDay `json:"roster"`
	ExportFile         string      `json:"export_file"`
}

// DayGroup is a day's records, newest first.
type DayGroup struct {
	Day     string   `json:"day"`
	Records []Record `json:"records"`
}
