package ingest

import (
	"strings"

	"github.com/tyler180/ff-weekly-stats/internal/report"
	"github.com/tyler180/ff-weekly-stats/internal/stats"
)

const (
	DefaultDSTSuffix = " D/ST"
	DefaultDSTLabel  = "D/ST"
)

// Config scopes one conversion run. Zero values fall back to the defaults
// the weekly reports have always used.
type Config struct {
	Weeks     []string         // default "1","2"
	Positions []stats.Position // default QB,RB,WR,TE,DST,K
	Format    report.Format    // default tsv

	Placeholder string // missing-value cell, default "–"
	DSTSuffix   string // appended to a defense's name before matching
	DSTLabel    string // roster position label for defenses

	// Normalize falls back to a loose name/team match when the exact
	// triple isn't on the roster.
	Normalize bool
	Debug     bool
}

func (c Config) withDefaults() Config {
	if len(c.Weeks) == 0 {
		c.Weeks = []string{"1", "2"}
	}
	if len(c.Positions) == 0 {
		c.Positions = stats.AllPositions()
	}
	if c.Format == "" {
		c.Format = report.TSV
	}
	if c.Placeholder == "" {
		c.Placeholder = stats.Placeholder
	}
	if c.DSTSuffix == "" {
		c.DSTSuffix = DefaultDSTSuffix
	}
	if c.DSTLabel == "" {
		c.DSTLabel = DefaultDSTLabel
	}
	return c
}

// ParseWeeks reads "1,2,3" into week identifiers. Week ids stay strings;
// they are copied verbatim into the output.
func ParseWeeks(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
