package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tyler180/ff-weekly-stats/internal/stats"
)

// fake client implementing DynamoDBAPI
type fakeDDB struct {
	calls int
	items []map[string]types.AttributeValue
	// simulate first attempt returning unprocessed, second succeeds
	failFirst bool
}

func (f *fakeDDB) BatchWriteItem(ctx context.Context, in *ddb.BatchWriteItemInput, _ ...func(*ddb.Options)) (*ddb.BatchWriteItemOutput, error) {
	f.calls++
	if f.failFirst {
		f.failFirst = false
		// Echo back all as unprocessed to force a retry
		return &ddb.BatchWriteItemOutput{
			UnprocessedItems: in.RequestItems,
		}, nil
	}
	for _, reqs := range in.RequestItems {
		for _, r := range reqs {
			f.items = append(f.items, r.PutRequest.Item)
		}
	}
	return &ddb.BatchWriteItemOutput{}, nil
}

func TestPutStatRows_BatchingAndRetry(t *testing.T) {
	// 30 rows → 25 + 5 batches
	var rows []stats.Tuple
	for i := 0; i < 30; i++ {
		rows = append(rows, stats.Tuple{PlayerID: fmt.Sprintf("%d", 100+i), Week: "1", Code: "PY", Value: "250"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fc := &fakeDDB{failFirst: true}
	if err := PutStatRows(ctx, fc, "tbl", rows); err != nil {
		t.Fatalf("PutStatRows error: %v", err)
	}

	// first batch is attempted twice (one retry), second batch once
	if fc.calls != 3 {
		t.Fatalf("expected 3 BatchWriteItem calls, got %d", fc.calls)
	}
	if len(fc.items) != 30 {
		t.Fatalf("wrote %d items, want 30", len(fc.items))
	}
}

func TestDynamoSink_ItemShape(t *testing.T) {
	fc := &fakeDDB{}
	s := NewDynamoSink(fc, "weekly_stats")
	ctx := context.Background()
	_ = s.Emit(ctx, []stats.Tuple{
		{PlayerID: "101", Week: "1", Code: "PY", Value: "250"},
		{PlayerID: "101", Week: "1", Code: "PY", Value: "260"}, // replaces the first
		{PlayerID: "900", Week: "2", Code: "SK", Value: "n/a"},
	})
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(fc.items) != 2 {
		t.Fatalf("got %d items, want 2", len(fc.items))
	}

	first := fc.items[0]
	if v := first["WeekStat"].(*types.AttributeValueMemberS).Value; v != "01#PY" {
		t.Errorf("WeekStat = %q", v)
	}
	if v, ok := first["Value"].(*types.AttributeValueMemberN); !ok || v.Value != "260" {
		t.Errorf("Value = %#v, want N 260", first["Value"])
	}
	if _, ok := fc.items[1]["Value"].(*types.AttributeValueMemberS); !ok {
		t.Errorf("non-numeric value should be stored as S: %#v", fc.items[1]["Value"])
	}
}

func TestStatItem_NonDecimalNumbersStayText(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "0x1p3", "+5"} {
		item := statItem(stats.Tuple{PlayerID: "1", Week: "1", Code: "YA", Value: v}, "0")
		if s, ok := item["Value"].(*types.AttributeValueMemberS); !ok || s.Value != v {
			t.Errorf("%q: Value = %#v, want S", v, item["Value"])
		}
	}
	item := statItem(stats.Tuple{PlayerID: "1", Week: "1", Code: "SK", Value: " 2.5 "}, "0")
	if n, ok := item["Value"].(*types.AttributeValueMemberN); !ok || n.Value != "2.5" {
		t.Errorf("Value = %#v, want N 2.5", item["Value"])
	}
}

func TestWeekStat(t *testing.T) {
	if got := WeekStat("3", "TO"); got != "03#TO" {
		t.Fatalf("got %q", got)
	}
	if got := WeekStat("WC", "TO"); got != "WC#TO" {
		t.Fatalf("got %q", got)
	}
}
