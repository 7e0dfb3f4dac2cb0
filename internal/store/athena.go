package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"

	"github.com/tyler180/ff-weekly-stats/internal/stats"
)

const DefaultAthenaTable = "player_week_stats"

type AthenaAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

// Runner submits a statement and waits for it to finish.
type Runner struct {
	Client    AthenaAPI
	Workgroup string
	Database  string
	OutputS3  string // s3://bucket/prefix/, optional when the workgroup sets one
	PollEvery time.Duration
}

func (r *Runner) ExecAndWait(ctx context.Context, sql string) (string, error) {
	in := &athena.StartQueryExecutionInput{
		QueryString:           aws.String(sql),
		QueryExecutionContext: &types.QueryExecutionContext{Database: aws.String(r.Database)},
		WorkGroup:             aws.String(r.Workgroup),
	}
	if r.OutputS3 != "" {
		in.ResultConfiguration = &types.ResultConfiguration{OutputLocation: aws.String(r.OutputS3)}
	}
	start, err := r.Client.StartQueryExecution(ctx, in)
	if err != nil {
		return "", fmt.Errorf("start query: %w", err)
	}
	qid := aws.ToString(start.QueryExecutionId)

	every := r.PollEvery
	if every <= 0 {
		every = 800 * time.Millisecond
	}
	tick := time.NewTicker(every)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return qid, ctx.Err()
		case <-tick.C:
		}
		ge, err := r.Client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{QueryExecutionId: aws.String(qid)})
		if err != nil {
			return qid, fmt.Errorf("get query execution: %w", err)
		}
		qe := ge.QueryExecution
		switch qe.Status.State {
		case types.QueryExecutionStateSucceeded:
			var scannedMB float64
			if qe.Statistics != nil && qe.Statistics.DataScannedInBytes != nil {
				scannedMB = float64(aws.ToInt64(qe.Statistics.DataScannedInBytes)) / (1024 * 1024)
			}
			log.Printf("athena: OK qid=%s scanned=%.1fMB", qid, scannedMB)
			return qid, nil
		case types.QueryExecutionStateFailed:
			msg := "unknown error"
			if qe.Status.AthenaError != nil && qe.Status.AthenaError.ErrorMessage != nil {
				msg = aws.ToString(qe.Status.AthenaError.ErrorMessage)
			} else if qe.Status.StateChangeReason != nil {
				msg = aws.ToString(qe.Status.StateChangeReason)
			}
			return qid, fmt.Errorf("athena failed qid=%s: %s", qid, msg)
		case types.QueryExecutionStateCancelled:
			return qid, errors.New("athena cancelled qid=" + qid)
		}
	}
}

// FetchCount runs a single-BIGINT query such as COUNT(*).
func (r *Runner) FetchCount(ctx context.Context, sql string) (int64, error) {
	qid, err := r.ExecAndWait(ctx, sql)
	if err != nil {
		return 0, err
	}
	res, err := r.Client.GetQueryResults(ctx, &athena.GetQueryResultsInput{QueryExecutionId: aws.String(qid)})
	if err != nil {
		return 0, fmt.Errorf("get results: %w", err)
	}
	// row 0 is header; row 1 is value
	if len(res.ResultSet.Rows) < 2 || len(res.ResultSet.Rows[1].Data) < 1 {
		return 0, errors.New("unexpected COUNT(*) result shape")
	}
	n, err := strconv.ParseInt(aws.ToString(res.ResultSet.Rows[1].Data[0].VarCharValue), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return n, nil
}

// athenaBatch bounds statement size well under Athena's 256KB query limit.
const athenaBatch = 1000

// AthenaSink appends tuples to an Iceberg table with INSERT INTO.
type AthenaSink struct {
	Runner   *Runner
	Table    string
	Create   bool
	Location string // s3:// location, needed only with Create

	buf buffer
}

func (a *AthenaSink) Emit(_ context.Context, tuples []stats.Tuple) error {
	a.buf.add(tuples)
	return nil
}

func (a *AthenaSink) Close(ctx context.Context) error {
	rows := a.buf.take()
	db, table := a.Runner.Database, a.table()

	if a.Create {
		if _, err := a.Runner.ExecAndWait(ctx, BuildAthenaCreate(db, table, a.Location)); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	err := chunks(len(rows), athenaBatch, func(lo, hi int) error {
		sql, err := BuildAthenaInsert(db, table, rows[lo:hi])
		if err != nil {
			return err
		}
		if _, err := a.Runner.ExecAndWait(ctx, sql); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// sanity count; doesn't fail the run
	if n, err := a.Runner.FetchCount(ctx, BuildAthenaCount(db, table)); err != nil {
		log.Printf("athena: WARN count failed: %v", err)
	} else {
		log.Printf("athena: inserted=%d table_rows=%d table=%s.%s", len(rows), n, db, table)
	}
	return nil
}

func (a *AthenaSink) table() string {
	if a.Table == "" {
		return DefaultAthenaTable
	}
	return a.Table
}

func BuildAthenaCreate(db, table, location string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
  player_id string,
  week      int,
  stat      string,
  value     double
)
LOCATION '%s'
TBLPROPERTIES ('table_type' = 'ICEBERG')`, db, table, strings.TrimSuffix(location, "/")+"/")
}

// BuildAthenaInsert renders one INSERT INTO ... VALUES statement. Weeks must
// be integers; values that don't parse as numbers become NULL.
func BuildAthenaInsert(db, table string, rows []stats.Tuple) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s.%s (player_id, week, stat, value) VALUES\n", db, table)
	for i, t := range rows {
		week, err := strconv.Atoi(strings.TrimSpace(t.Week))
		if err != nil {
			return "", fmt.Errorf("athena week %q for player %s: not an integer", t.Week, t.PlayerID)
		}
		value := "NULL"
		if v, ok := numeric(t.Value); ok {
			value = v
		}
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  (%s, %d, %s, %s)", quoteLiteral(t.PlayerID), week, quoteLiteral(t.Code), value)
	}
	return b.String(), nil
}

func BuildAthenaCount(db, table string) string {
	return fmt.Sprintf(`SELECT COUNT(*) AS c FROM %s.%s`, db, table)
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
