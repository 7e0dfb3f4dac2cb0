package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tyler180/ff-weekly-stats/internal/report"
	"github.com/tyler180/ff-weekly-stats/internal/stats"
)

// Source opens the report for one (week, position).
type Source interface {
	Open(ctx context.Context, week string, pos stats.Position) (io.ReadCloser, error)
	Describe(week string, pos stats.Position) string
}

// RelPath is week{week}/{POS}.txt (or .html).
func RelPath(week string, pos stats.Position, f report.Format) string {
	return path.Join("week"+week, string(pos)+f.Ext())
}

// DirSource reads reports from a local directory tree.
type DirSource struct {
	Root   string
	Format report.Format
}

func (d DirSource) file(week string, pos stats.Position) string {
	return filepath.Join(d.Root, filepath.FromSlash(RelPath(week, pos, d.Format)))
}

func (d DirSource) Describe(week string, pos stats.Position) string { return d.file(week, pos) }

func (d DirSource) Open(_ context.Context, week string, pos stats.Position) (io.ReadCloser, error) {
	f, err := os.Open(d.file(week, pos))
	if err != nil {
		return nil, err
	}
	return f, nil
}

type S3GetAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads reports from s3://Bucket/Prefix/week{week}/{POS}.txt.
type S3Source struct {
	Client S3GetAPI
	Bucket string
	Prefix string
	Format report.Format
}

func (s S3Source) key(week string, pos stats.Position) string {
	rel := RelPath(week, pos, s.Format)
	if p := strings.Trim(s.Prefix, "/"); p != "" {
		return p + "/" + rel
	}
	return rel
}

func (s S3Source) Describe(week string, pos stats.Position) string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket, s.key(week, pos))
}

func (s S3Source) Open(ctx context.Context, week string, pos stats.Position) (io.ReadCloser, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.key(week, pos)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", s.Describe(week, pos), fs.ErrNotExist)
		}
		return nil, fmt.Errorf("get %s: %w", s.Describe(week, pos), err)
	}
	return out.Body, nil
}

// ParseS3URI splits s3://bucket/prefix. ok is false for anything else.
func ParseS3URI(uri string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found || rest == "" {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, strings.Trim(prefix, "/"), true
}
