package statsload

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tyler180/ff-weekly-stats/internal/ingest"
	"github.com/tyler180/ff-weekly-stats/internal/report"
	"github.com/tyler180/ff-weekly-stats/internal/roster"
	"github.com/tyler180/ff-weekly-stats/internal/stats"
	"github.com/tyler180/ff-weekly-stats/internal/store"
)

// Options is everything one run needs, resolved from env (and an event).
type Options struct {
	RosterURI string // local path or s3://bucket/key
	StatsRoot string // local dir, s3://bucket/prefix or http(s) base URL
	Ingest    ingest.Config
	Sink      store.Kind

	PGDSN    string
	PGTable  string
	PGCreate bool

	DDBTable string

	AthenaDB        string
	AthenaWorkgroup string
	AthenaOutput    string
	AthenaTable     string
	AthenaCreate    bool
	AthenaLocation  string
}

// OptionsFromEnv reads:
//
//	ROSTER_URI (players.csv)  STATS_ROOT (.)  WEEKS (1,2)  POSITIONS (QB,RB,WR,TE,DST,K)
//	FORMAT (tsv|html)  PLACEHOLDER (–)  MATCH_NORMALIZE  DEBUG
//	SINK (stdout|postgres|dynamodb|athena)
//	PG_DSN PG_TABLE PG_CREATE  TABLE_NAME
//	ATHENA_DB ATHENA_WORKGROUP ATHENA_OUTPUT ATHENA_TABLE ATHENA_CREATE ATHENA_LOCATION
func OptionsFromEnv() (Options, error) {
	positions, err := stats.ParsePositions(envStr("POSITIONS", ""))
	if err != nil {
		return Options{}, err
	}
	format, err := report.ParseFormat(envStr("FORMAT", "tsv"))
	if err != nil {
		return Options{}, err
	}
	kind, err := store.ParseKind(envStr("SINK", "stdout"))
	if err != nil {
		return Options{}, err
	}

	o := Options{
		RosterURI: envStr("ROSTER_URI", "players.csv"),
		StatsRoot: envStr("STATS_ROOT", "."),
		Ingest: ingest.Config{
			Weeks:       ingest.ParseWeeks(envStr("WEEKS", "1,2")),
			Positions:   positions,
			Format:      format,
			Placeholder: envRaw("PLACEHOLDER", stats.Placeholder),
			Normalize:   envBool("MATCH_NORMALIZE", false),
			Debug:       envBool("DEBUG", false),
		},
		Sink: kind,

		PGDSN:    envStr("PG_DSN", ""),
		PGTable:  envStr("PG_TABLE", store.DefaultPGTable),
		PGCreate: envBool("PG_CREATE", false),

		DDBTable: envStr("TABLE_NAME", ""),

		AthenaDB:        envStr("ATHENA_DB", ""),
		AthenaWorkgroup: envStr("ATHENA_WORKGROUP", "primary"),
		AthenaOutput:    envStr("ATHENA_OUTPUT", ""),
		AthenaTable:     envStr("ATHENA_TABLE", store.DefaultAthenaTable),
		AthenaCreate:    envBool("ATHENA_CREATE", false),
		AthenaLocation:  envStr("ATHENA_LOCATION", ""),
	}
	return o, o.validate()
}

// WithEvent applies per-invocation overrides.
func (o Options) WithEvent(e Event) (Options, error) {
	if len(e.Weeks) > 0 {
		o.Ingest.Weeks = e.Weeks
	}
	if len(e.Positions) > 0 {
		ps := make([]stats.Position, 0, len(e.Positions))
		for _, s := range e.Positions {
			p, err := stats.ParsePosition(s)
			if err != nil {
				return o, err
			}
			ps = append(ps, p)
		}
		o.Ingest.Positions = ps
	}
	if e.Sink != "" {
		k, err := store.ParseKind(e.Sink)
		if err != nil {
			return o, err
		}
		o.Sink = k
	}
	o.StatsRoot = pick(e.StatsRoot, o.StatsRoot)
	o.RosterURI = pick(e.Roster, o.RosterURI)
	return o, o.validate()
}

func (o Options) validate() error {
	switch o.Sink {
	case store.KindPostgres:
		if o.PGDSN == "" {
			return errors.New("SINK=postgres requires PG_DSN")
		}
	case store.KindDynamo:
		if o.DDBTable == "" {
			return errors.New("SINK=dynamodb requires TABLE_NAME")
		}
	case store.KindAthena:
		if o.AthenaDB == "" {
			return errors.New("SINK=athena requires ATHENA_DB")
		}
		if o.AthenaCreate && o.AthenaLocation == "" {
			return errors.New("ATHENA_CREATE requires ATHENA_LOCATION")
		}
	}
	return nil
}

// lazyAWS loads the default AWS config on first use only, so local runs
// never need credentials.
type lazyAWS struct {
	cfg    aws.Config
	loaded bool
}

func (l *lazyAWS) get(ctx context.Context) (aws.Config, error) {
	if l.loaded {
		return l.cfg, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("aws config: %w", err)
	}
	l.cfg, l.loaded = cfg, true
	return cfg, nil
}

// Run loads the roster, converts every configured report and closes the sink.
// Tuples go to stdout unless another sink is configured.
func Run(ctx context.Context, o Options, stdout io.Writer) (ingest.Summary, error) {
	var sum ingest.Summary
	aw := &lazyAWS{}

	ro, err := loadRoster(ctx, o.RosterURI, aw)
	if err != nil {
		return sum, err
	}
	log.Printf("roster: %d players from %s", ro.Len(), o.RosterURI)

	src, err := buildSource(ctx, o, aw)
	if err != nil {
		return sum, err
	}
	sink, cleanup, err := buildSink(ctx, o, aw, stdout)
	if err != nil {
		return sum, err
	}
	defer cleanup()

	sum, err = ingest.Run(ctx, o.Ingest, ro, src, sink)
	if err != nil {
		// stdout already carries what was converted before the failure;
		// database sinks write nothing
		if o.Sink == store.KindStdout {
			_ = sink.Close(ctx)
		}
		return sum, err
	}
	if err := sink.Close(ctx); err != nil {
		return sum, fmt.Errorf("%s sink: %w", o.Sink, err)
	}
	log.Printf("done: files=%d rows=%d matched=%d unmatched=%d tuples=%d sink=%s",
		sum.Files, sum.Rows, sum.Matched, sum.Unmatched, sum.Tuples, o.Sink)
	return sum, nil
}

func loadRoster(ctx context.Context, uri string, aw *lazyAWS) (*roster.Roster, error) {
	bucket, key, ok := ingest.ParseS3URI(uri)
	if !ok {
		return roster.LoadFile(uri)
	}
	cfg, err := aw.get(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s3.NewFromConfig(cfg).GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get roster %s: %w", uri, err)
	}
	defer out.Body.Close()
	return roster.Load(out.Body)
}

func buildSource(ctx context.Context, o Options, aw *lazyAWS) (ingest.Source, error) {
	format := o.Ingest.Format
	if format == "" {
		format = report.TSV
	}
	if ingest.IsHTTPRoot(o.StatsRoot) {
		return ingest.HTTPSource{Base: o.StatsRoot, Format: format}, nil
	}
	bucket, prefix, ok := ingest.ParseS3URI(o.StatsRoot)
	if !ok {
		return ingest.DirSource{Root: o.StatsRoot, Format: format}, nil
	}
	cfg, err := aw.get(ctx)
	if err != nil {
		return nil, err
	}
	return ingest.S3Source{Client: s3.NewFromConfig(cfg), Bucket: bucket, Prefix: prefix, Format: format}, nil
}

func buildSink(ctx context.Context, o Options, aw *lazyAWS, stdout io.Writer) (store.Sink, func(), error) {
	noop := func() {}
	switch o.Sink {
	case store.KindPostgres:
		db, err := store.OpenPostgres(ctx, o.PGDSN)
		if err != nil {
			return nil, noop, err
		}
		return store.NewPostgresSink(db, o.PGTable, o.PGCreate), func() { closeDB(db) }, nil

	case store.KindDynamo:
		cfg, err := aw.get(ctx)
		if err != nil {
			return nil, noop, err
		}
		return store.NewDynamoSink(dynamodb.NewFromConfig(cfg), o.DDBTable), noop, nil

	case store.KindAthena:
		cfg, err := aw.get(ctx)
		if err != nil {
			return nil, noop, err
		}
		r := &store.Runner{
			Client:    athena.NewFromConfig(cfg),
			Workgroup: o.AthenaWorkgroup,
			Database:  o.AthenaDB,
			OutputS3:  o.AthenaOutput,
		}
		return &store.AthenaSink{Runner: r, Table: o.AthenaTable, Create: o.AthenaCreate, Location: o.AthenaLocation}, noop, nil

	default:
		return store.NewTupleWriter(stdout), noop, nil
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Printf("postgres: WARN close: %v", err)
	}
}

// LambdaEntrypoint is the single Lambda handler exported from this package.
func LambdaEntrypoint(ctx context.Context, raw Raw) (Response, error) {
	var e Event
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &e); err != nil {
			return Response{}, fmt.Errorf("decode event: %w", err)
		}
	}
	o, err := OptionsFromEnv()
	if err != nil {
		return Response{}, err
	}
	if o, err = o.WithEvent(e); err != nil {
		return Response{}, err
	}

	sum, err := Run(ctx, o, os.Stdout)
	if err != nil {
		return Response{}, err
	}
	return Response{
		OK:        true,
		Weeks:     o.Ingest.Weeks,
		Sink:      string(o.Sink),
		Files:     sum.Files,
		Rows:      sum.Rows,
		Matched:   sum.Matched,
		Unmatched: sum.Unmatched,
		Tuples:    sum.Tuples,
	}, nil
}
