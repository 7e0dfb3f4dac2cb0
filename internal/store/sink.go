package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tyler180/ff-weekly-stats/internal/stats"
)

// Sink is where converted tuples go. Emit may buffer; Close flushes.
type Sink interface {
	Emit(ctx context.Context, tuples []stats.Tuple) error
	Close(ctx context.Context) error
}

// Kind names a sink in configuration.
type Kind string

const (
	KindStdout   Kind = "stdout"
	KindPostgres Kind = "postgres"
	KindDynamo   Kind = "dynamodb"
	KindAthena   Kind = "athena"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", KindStdout, "sql":
		return KindStdout, nil
	case KindPostgres, "pg", "postgresql":
		return KindPostgres, nil
	case KindDynamo, "ddb", "dynamo":
		return KindDynamo, nil
	case KindAthena:
		return KindAthena, nil
	default:
		return "", fmt.Errorf("unknown sink %q", s)
	}
}

// TupleWriter prints each tuple as a line of an INSERT ... VALUES list.
type TupleWriter struct {
	w *bufio.Writer
}

func NewTupleWriter(w io.Writer) *TupleWriter {
	return &TupleWriter{w: bufio.NewWriter(w)}
}

func (t *TupleWriter) Emit(_ context.Context, tuples []stats.Tuple) error {
	for _, tu := range tuples {
		if _, err := t.w.WriteString(tu.SQL() + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (t *TupleWriter) Close(context.Context) error { return t.w.Flush() }

// tupleKey identifies a stat row; later tuples for the same key replace
// earlier ones in buffering sinks.
type tupleKey struct {
	player, week, code string
}

// buffer keeps tuples in first-seen order with last-write-wins values.
type buffer struct {
	idx  map[tupleKey]int
	rows []stats.Tuple
}

func (b *buffer) add(ts []stats.Tuple) {
	if b.idx == nil {
		b.idx = make(map[tupleKey]int, 1024)
	}
	for _, t := range ts {
		k := tupleKey{t.PlayerID, t.Week, t.Code}
		if i, ok := b.idx[k]; ok {
			b.rows[i] = t
			continue
		}
		b.idx[k] = len(b.rows)
		b.rows = append(b.rows, t)
	}
}

func (b *buffer) take() []stats.Tuple {
	out := b.rows
	b.rows, b.idx = nil, nil
	return out
}

func chunks(n, size int, fn func(lo, hi int) error) error {
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		if err := fn(lo, hi); err != nil {
			return err
		}
	}
	return nil
}

// decimalRe accepts plain decimal numbers with an optional exponent. No sign
// prefix, hex, NaN or Inf: every store has to read the text as a number.
var decimalRe = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// numeric returns the trimmed value and whether stores may keep it as a
// number. Non-numeric pass-through values are stored as NULL (Postgres,
// Athena) or text (DynamoDB).
func numeric(v string) (string, bool) {
	v = strings.TrimSpace(v)
	return v, decimalRe.MatchString(v)
}
