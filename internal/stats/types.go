package stats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Placeholder is the cell value weekly reports use for "no stat" (EN DASH).
const Placeholder = "–"

var ErrFieldCount = errors.New("wrong number of stat fields")

// Stat is one renamed value produced by an extractor. Value keeps the report's
// text for pass-through stats; derived stats are rendered integers.
type Stat struct {
	Code  string
	Value string
}

// Tuple is a Stat bound to a player and week.
type Tuple struct {
	PlayerID string
	Week     string
	Code     string
	Value    string
}

// SQL renders the tuple as one line of an INSERT ... VALUES list.
func (t Tuple) SQL() string {
	return fmt.Sprintf("(%s, %s, '%s', %s),", t.PlayerID, t.Week, t.Code, t.Value)
}

// Bind attaches a player id and week to extracted stats.
func Bind(playerID, week string, ss []Stat) []Tuple {
	out := make([]Tuple, 0, len(ss))
	for _, s := range ss {
		out = append(out, Tuple{PlayerID: playerID, Week: week, Code: s.Code, Value: s.Value})
	}
	return out
}

// FieldCountError reports a tail whose arity doesn't fit the position's layout.
type FieldCountError struct {
	Pos  Position
	Got  int
	Want []int
}

func (e *FieldCountError) Error() string {
	want := make([]string, 0, len(e.Want))
	for _, n := range e.Want {
		want = append(want, strconv.Itoa(n))
	}
	return fmt.Sprintf("%s: got %d stat fields, want %s", e.Pos, e.Got, strings.Join(want, " or "))
}

func (e *FieldCountError) Unwrap() error { return ErrFieldCount }

// ValueError reports a field that must be an integer but isn't.
type ValueError struct {
	Field string
	Value string
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("field %s: %q is not an integer", e.Field, e.Value)
}

func (e *ValueError) Unwrap() error { return e.Err }

func atoi(field, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &ValueError{Field: field, Value: v, Err: err}
	}
	return n, nil
}

// Normalize replaces every placeholder cell with "0". Other cells pass through.
func Normalize(fields []string, placeholder string) []string {
	if placeholder == "" {
		placeholder = Placeholder
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		if f == placeholder {
			f = "0"
		}
		out[i] = f
	}
	return out
}
