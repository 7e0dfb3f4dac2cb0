package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/tyler180/ff-weekly-stats/internal/report"
	"github.com/tyler180/ff-weekly-stats/internal/roster"
	"github.com/tyler180/ff-weekly-stats/internal/stats"
)

// Sink receives the tuples of one matched row, in extraction order.
type Sink interface {
	Emit(ctx context.Context, tuples []stats.Tuple) error
}

// Summary counts what a run touched. Unmatched rows produce no output.
type Summary struct {
	Files     int
	Rows      int
	Matched   int
	Unmatched int
	Tuples    int
}

func (s *Summary) add(o Summary) {
	s.Files += o.Files
	s.Rows += o.Rows
	s.Matched += o.Matched
	s.Unmatched += o.Unmatched
	s.Tuples += o.Tuples
}

// RowError pins a failure to a report line.
type RowError struct {
	Week string
	Pos  stats.Position
	File string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("week %s %s (%s line %d): %v", e.Week, e.Pos, e.File, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Candidate builds the roster key a report row must match. Defenses are
// listed under their team name plus a suffix and a dedicated label.
func Candidate(cfg Config, pos stats.Position, row report.Row) roster.Key {
	if pos == stats.DST {
		return roster.Key{Name: row.Name() + cfg.DSTSuffix, Pos: cfg.DSTLabel, Team: row.Team()}
	}
	return roster.Key{Name: row.Name(), Pos: string(pos), Team: row.Team()}
}

// Run converts every (week, position) report, weeks outer and positions
// inner. It stops at the first missing file or malformed matched row.
func Run(ctx context.Context, cfg Config, ro *roster.Roster, src Source, sink Sink) (Summary, error) {
	cfg = cfg.withDefaults()

	var total Summary
	for _, week := range cfg.Weeks {
		for _, pos := range cfg.Positions {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			s, err := runFile(ctx, cfg, ro, src, sink, week, pos)
			total.add(s)
			if err != nil {
				return total, err
			}
			log.Printf("ingest: week=%s pos=%s rows=%d matched=%d unmatched=%d tuples=%d",
				week, pos, s.Rows, s.Matched, s.Unmatched, s.Tuples)
		}
	}
	return total, nil
}

func runFile(ctx context.Context, cfg Config, ro *roster.Roster, src Source, sink Sink, week string, pos stats.Position) (Summary, error) {
	var s Summary
	name := src.Describe(week, pos)

	rc, err := src.Open(ctx, week, pos)
	if err != nil {
		return s, fmt.Errorf("open week %s %s: %w", week, pos, err)
	}
	rows, err := report.Parse(cfg.Format, rc)
	rc.Close()
	if err != nil {
		return s, fmt.Errorf("%s: %w", name, err)
	}
	s.Files = 1

	lookup := ro.Lookup
	if cfg.Normalize {
		lookup = ro.LookupNormalized
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		s.Rows++
		if err := row.Check(); err != nil {
			return s, &RowError{Week: week, Pos: pos, File: name, Line: row.Line, Err: err}
		}

		key := Candidate(cfg, pos, row)
		id, ok := lookup(key)
		if !ok {
			s.Unmatched++
			if cfg.Debug {
				log.Printf("ingest: unmatched week=%s pos=%s name=%q team=%s", week, pos, key.Name, key.Team)
			}
			continue
		}
		s.Matched++

		tail := stats.Normalize(row.Tail(), cfg.Placeholder)
		ss, err := stats.Extract(pos, tail)
		if err != nil {
			return s, &RowError{Week: week, Pos: pos, File: name, Line: row.Line, Err: err}
		}
		tuples := stats.Bind(id, week, ss)
		if err := sink.Emit(ctx, tuples); err != nil {
			return s, fmt.Errorf("emit week %s %s: %w", week, pos, err)
		}
		s.Tuples += len(tuples)
	}
	return s, nil
}
