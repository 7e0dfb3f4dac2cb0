package statsload

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tyler180/ff-weekly-stats/internal/report"
	"github.com/tyler180/ff-weekly-stats/internal/stats"
	"github.com/tyler180/ff-weekly-stats/internal/store"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

// setupLocal lays out a roster and a QB report for week 1 and points the
// env at them.
func setupLocal(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "players.csv"), "101,John Smith,QB,NYJ\n102,Al Jones,QB,BUF\n")
	writeFile(t, filepath.Join(root, "week1", "QB.txt"),
		"John Smith\tNYJ\tx\t20\t1\t250\t2\t10\t0\t1\t0\n"+
			"Unknown Guy\tMIA\tx\t1\t1\t1\t0\t0\t0\t0\t0\n")
	t.Setenv("ROSTER_URI", filepath.Join(root, "players.csv"))
	t.Setenv("STATS_ROOT", root)
	t.Setenv("WEEKS", "1")
	t.Setenv("POSITIONS", "QB")
	t.Setenv("SINK", "")
	return root
}

func TestRun_LocalStdout(t *testing.T) {
	setupLocal(t)
	o, err := OptionsFromEnv()
	if err != nil {
		t.Fatalf("OptionsFromEnv: %v", err)
	}

	var out bytes.Buffer
	sum, err := Run(context.Background(), o, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "(101, 1, 'PY', 250),\n(101, 1, 'PTD', 2),\n(101, 1, 'RY', 10),\n(101, 1, 'RTD', 0),\n(101, 1, 'TO', 1),\n"
	if out.String() != want {
		t.Fatalf("stdout:\n%s\nwant:\n%s", out.String(), want)
	}
	if sum.Rows != 2 || sum.Matched != 1 || sum.Unmatched != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestRun_PartialOutputOnFailure(t *testing.T) {
	setupLocal(t)
	t.Setenv("WEEKS", "1,2") // week2 has no reports

	o, err := OptionsFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	_, err = Run(context.Background(), o, &out)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("want fs.ErrNotExist, got %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("(101, 1, 'TO', 1),")) {
		t.Fatalf("week 1 output should be flushed before the failure, got %q", out.String())
	}
}

func TestRun_MissingRoster(t *testing.T) {
	setupLocal(t)
	t.Setenv("ROSTER_URI", filepath.Join(t.TempDir(), "nope.csv"))
	o, err := OptionsFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if _, err := Run(context.Background(), o, &out); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("want fs.ErrNotExist, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing should be written, got %q", out.String())
	}
}

func TestOptionsFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"ROSTER_URI", "STATS_ROOT", "WEEKS", "POSITIONS", "FORMAT", "SINK", "PLACEHOLDER", "PG_TABLE"} {
		t.Setenv(k, "")
	}
	o, err := OptionsFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if o.RosterURI != "players.csv" || o.StatsRoot != "." {
		t.Errorf("paths = %q %q", o.RosterURI, o.StatsRoot)
	}
	if !reflect.DeepEqual(o.Ingest.Weeks, []string{"1", "2"}) {
		t.Errorf("weeks = %v", o.Ingest.Weeks)
	}
	if !reflect.DeepEqual(o.Ingest.Positions, stats.AllPositions()) {
		t.Errorf("positions = %v", o.Ingest.Positions)
	}
	if o.Ingest.Format != report.TSV || o.Ingest.Placeholder != stats.Placeholder {
		t.Errorf("format/placeholder = %q %q", o.Ingest.Format, o.Ingest.Placeholder)
	}
	if o.Sink != store.KindStdout || o.PGTable != store.DefaultPGTable {
		t.Errorf("sink = %q table = %q", o.Sink, o.PGTable)
	}
}

func TestOptionsFromEnv_SinkRequirements(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres": {"SINK": "postgres", "PG_DSN": ""},
		"dynamodb": {"SINK": "dynamodb", "TABLE_NAME": ""},
		"athena":   {"SINK": "athena", "ATHENA_DB": ""},
		"create":   {"SINK": "athena", "ATHENA_DB": "ff", "ATHENA_CREATE": "true", "ATHENA_LOCATION": ""},
		"badsink":  {"SINK": "kafka"},
		"badpos":   {"POSITIONS": "QB,LS"},
		"badfmt":   {"FORMAT": "xlsx"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := OptionsFromEnv(); err == nil {
				t.Fatal("want error")
			}
		})
	}
}

func TestWithEvent_Overrides(t *testing.T) {
	setupLocal(t)
	o, err := OptionsFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	o, err = o.WithEvent(Event{Weeks: []string{"3"}, Positions: []string{"d/st", "k"}, StatsRoot: "s3://b/p"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(o.Ingest.Weeks, []string{"3"}) ||
		!reflect.DeepEqual(o.Ingest.Positions, []stats.Position{stats.DST, stats.K}) ||
		o.StatsRoot != "s3://b/p" {
		t.Fatalf("options = %+v", o)
	}
	if _, err := o.WithEvent(Event{Sink: "postgres"}); err == nil {
		t.Fatal("postgres without PG_DSN should fail")
	}
}

func TestLambdaEntrypoint_BadEvent(t *testing.T) {
	if _, err := LambdaEntrypoint(context.Background(), Raw(`{"weeks":`)); err == nil {
		t.Fatal("want decode error")
	}
}
