package store

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tyler180/ff-weekly-stats/internal/stats"
)

type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoSink writes one item per stat. PK=PlayerID (S), SK=WeekStat (S),
// e.g. "01#PY".
type DynamoSink struct {
	Client DynamoDBAPI
	Table  string

	buf buffer
}

func NewDynamoSink(c DynamoDBAPI, table string) *DynamoSink {
	return &DynamoSink{Client: c, Table: table}
}

func (d *DynamoSink) Emit(_ context.Context, tuples []stats.Tuple) error {
	d.buf.add(tuples)
	return nil
}

func (d *DynamoSink) Close(ctx context.Context) error {
	rows := d.buf.take()
	if err := PutStatRows(ctx, d.Client, d.Table, rows); err != nil {
		return err
	}
	log.Printf("dynamodb: wrote %d stats into %s", len(rows), d.Table)
	return nil
}

// WeekStat is the sort key: zero-padded numeric weeks sort in week order.
func WeekStat(week, code string) string {
	if n, err := strconv.Atoi(week); err == nil {
		return fmt.Sprintf("%02d#%s", n, code)
	}
	return week + "#" + code
}

func statItem(t stats.Tuple, now string) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PlayerID":  &types.AttributeValueMemberS{Value: t.PlayerID},               // PK
		"WeekStat":  &types.AttributeValueMemberS{Value: WeekStat(t.Week, t.Code)}, // SK
		"Week":      &types.AttributeValueMemberS{Value: t.Week},
		"Stat":      &types.AttributeValueMemberS{Value: t.Code},
		"UpdatedAt": &types.AttributeValueMemberN{Value: now},
	}
	// numeric when it parses, raw text otherwise
	if v, ok := numeric(t.Value); ok {
		item["Value"] = &types.AttributeValueMemberN{Value: v}
	} else {
		item["Value"] = &types.AttributeValueMemberS{Value: t.Value}
	}
	if n, err := strconv.Atoi(t.Week); err == nil {
		item["WeekNum"] = &types.AttributeValueMemberN{Value: strconv.Itoa(n)}
	}
	return item
}

// PutStatRows writes rows in batches of 25, retrying UnprocessedItems.
func PutStatRows(ctx context.Context, ddb DynamoDBAPI, table string, rows []stats.Tuple) error {
	if len(rows) == 0 {
		return nil
	}
	const maxBatch = 25
	now := strconv.FormatInt(time.Now().Unix(), 10)

	return chunks(len(rows), maxBatch, func(lo, hi int) error {
		reqs := make([]types.WriteRequest, 0, hi-lo)
		for _, r := range rows[lo:hi] {
			if r.PlayerID == "" {
				continue
			}
			reqs = append(reqs, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: statItem(r, now)},
			})
		}
		if len(reqs) == 0 {
			return nil
		}
		if err := batchWriteWithRetry(ctx, ddb, table, reqs); err != nil {
			return fmt.Errorf("batch write stat rows: %w", err)
		}
		return nil
	})
}

func batchWriteWithRetry(ctx context.Context, ddb DynamoDBAPI, table string, reqs []types.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{table: reqs},
	}
	const maxAttempts = 6
	backoff := 120 * time.Millisecond

	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := ddb.BatchWriteItem(ctx, input)
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems) == 0 || len(out.UnprocessedItems[table]) == 0 {
			return nil
		}
		input.RequestItems = out.UnprocessedItems
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff += 120 * time.Millisecond
		}
	}
	return fmt.Errorf("unprocessed items remained after retries for table %s", table)
}
