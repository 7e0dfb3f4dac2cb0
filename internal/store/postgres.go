package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lib/pq"

	"github.com/tyler180/ff-weekly-stats/internal/stats"
)

const DefaultPGTable = "player_week_stats"

// pgBatch keeps a multi-row INSERT well below the 65535 bind-parameter cap.
const pgBatch = 500

// PGTx is the slice of *sql.Tx the sink uses.
type PGTx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Commit() error
	Rollback() error
}

// PGConn starts the transaction Close writes in.
type PGConn interface {
	BeginTx(ctx context.Context) (PGTx, error)
}

type sqlConn struct{ db *sql.DB }

func (c sqlConn) BeginTx(ctx context.Context) (PGTx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// PostgresSink upserts tuples into (player_id, week, stat, value) in one
// transaction on Close. Non-numeric values are written as NULL.
type PostgresSink struct {
	Conn   PGConn
	Table  string
	Create bool

	buf buffer
}

func NewPostgresSink(db *sql.DB, table string, create bool) *PostgresSink {
	if table == "" {
		table = DefaultPGTable
	}
	return &PostgresSink{Conn: sqlConn{db: db}, Table: table, Create: create}
}

// OpenPostgres opens and pings a lib/pq connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (p *PostgresSink) Emit(_ context.Context, tuples []stats.Tuple) error {
	p.buf.add(tuples)
	return nil
}

func (p *PostgresSink) Close(ctx context.Context) error {
	rows := p.buf.take()

	tx, err := p.Conn.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if p.Create {
		if _, err := tx.ExecContext(ctx, BuildPGCreate(p.Table)); err != nil {
			return pgErr("create table", err)
		}
	}

	err = chunks(len(rows), pgBatch, func(lo, hi int) error {
		batch := rows[lo:hi]
		args := make([]any, 0, len(batch)*4)
		for _, t := range batch {
			var value any // NULL
			if v, ok := numeric(t.Value); ok {
				value = v
			}
			args = append(args, t.PlayerID, t.Week, t.Code, value)
		}
		if _, err := tx.ExecContext(ctx, BuildPGUpsert(p.Table, len(batch)), args...); err != nil {
			return pgErr("upsert", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Printf("postgres: upserted %d stats into %s", len(rows), p.Table)
	return nil
}

func pgErr(op string, err error) error {
	var pe *pq.Error
	if errors.As(err, &pe) {
		return fmt.Errorf("%s: %s (%s): %w", op, pe.Message, pe.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// quoteTable quotes each dot-separated part, so "stats.weekly" stays
// schema-qualified.
func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func BuildPGCreate(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  player_id TEXT    NOT NULL,
  week      INTEGER NOT NULL,
  stat      TEXT    NOT NULL,
  value     NUMERIC,
  PRIMARY KEY (player_id, week, stat)
)`, quoteTable(table))
}

// BuildPGUpsert returns a multi-row upsert for n tuples.
func BuildPGUpsert(table string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (player_id, week, stat, value) VALUES ", quoteTable(table))
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		j := i * 4
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d)", j+1, j+2, j+3, j+4)
	}
	b.WriteString(" ON CONFLICT (player_id, week, stat) DO UPDATE SET value = EXCLUDED.value")
	return b.String()
}
