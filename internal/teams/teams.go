package teams

import "strings"

type Team struct {
	Abbr    string   // e.g. "GB"
	Aliases []string // other codes seen in reports, e.g. PFR "GNB"
	Name    string
}

// AllTeams returns the canonical NFL list. Abbr is the short code most
// weekly reports use; Aliases cover PFR codes and relocated franchises.
func AllTeams() []Team {
	return []Team{
		{Abbr: "ARI", Aliases: []string{"ARZ", "CRD"}, Name: "Arizona Cardinals"},
		{Abbr: "ATL", Name: "Atlanta Falcons"},
		{Abbr: "BAL", Aliases: []string{"RAV", "BLT"}, Name: "Baltimore Ravens"},
		{Abbr: "BUF", Name: "Buffalo Bills"},
		{Abbr: "CAR", Name: "Carolina Panthers"},
		{Abbr: "CHI", Name: "Chicago Bears"},
		{Abbr: "CIN", Name: "Cincinnati Bengals"},
		{Abbr: "CLE", Aliases: []string{"CLV"}, Name: "Cleveland Browns"},
		{Abbr: "DAL", Name: "Dallas Cowboys"},
		{Abbr: "DEN", Name: "Denver Broncos"},
		{Abbr: "DET", Name: "Detroit Lions"},
		{Abbr: "GB", Aliases: []string{"GNB"}, Name: "Green Bay Packers"},
		{Abbr: "HOU", Aliases: []string{"HTX", "HST"}, Name: "Houston Texans"},
		{Abbr: "IND", Aliases: []string{"CLT"}, Name: "Indianapolis Colts"},
		{Abbr: "JAX", Aliases: []string{"JAC"}, Name: "Jacksonville Jaguars"},
		{Abbr: "KC", Aliases: []string{"KAN"}, Name: "Kansas City Chiefs"},
		{Abbr: "LV", Aliases: []string{"LVR", "RAI", "OAK"}, Name: "Las Vegas Raiders"},
		{Abbr: "LAC", Aliases: []string{"SDG", "SD"}, Name: "Los Angeles Chargers"},
		{Abbr: "LAR", Aliases: []string{"RAM", "LA", "STL"}, Name: "Los Angeles Rams"},
		{Abbr: "MIA", Name: "Miami Dolphins"},
		{Abbr: "MIN", Name: "Minnesota Vikings"},
		{Abbr: "NE", Aliases: []string{"NWE"}, Name: "New England Patriots"},
		{Abbr: "NO", Aliases: []string{"NOR"}, Name: "New Orleans Saints"},
		{Abbr: "NYG", Name: "New York Giants"},
		{Abbr: "NYJ", Name: "New York Jets"},
		{Abbr: "PHI", Name: "Philadelphia Eagles"},
		{Abbr: "PIT", Name: "Pittsburgh Steelers"},
		{Abbr: "SF", Aliases: []string{"SFO"}, Name: "San Francisco 49ers"},
		{Abbr: "SEA", Name: "Seattle Seahawks"},
		{Abbr: "TB", Aliases: []string{"TAM"}, Name: "Tampa Bay Buccaneers"},
		{Abbr: "TEN", Aliases: []string{"OTI"}, Name: "Tennessee Titans"},
		{Abbr: "WAS", Aliases: []string{"WSH"}, Name: "Washington Commanders"},
	}
}

var byCode = func() map[string]string {
	m := make(map[string]string, 80)
	for _, t := range AllTeams() {
		m[t.Abbr] = t.Abbr
		for _, a := range t.Aliases {
			m[a] = t.Abbr
		}
	}
	return m
}()

// Canonical maps any known code (case-insensitive) to the team's Abbr.
func Canonical(code string) (string, bool) {
	abbr, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
	return abbr, ok
}

// Abbrs returns all canonical abbreviations in list order.
func Abbrs() []string {
	ts := AllTeams()
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Abbr)
	}
	return out
}
