package ingest

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/tyler180/ff-weekly-stats/internal/report"
	"github.com/tyler180/ff-weekly-stats/internal/stats"
)

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

const defaultUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119 Safari/537.36 (+stats-research)"

// HTTPSource fetches reports from {Base}/week{week}/{POS}.txt (or .html).
type HTTPSource struct {
	Base      string
	Format    report.Format
	Client    *http.Client // nil uses a 30s-timeout client
	UserAgent string
}

func (h HTTPSource) url(week string, pos stats.Position) string {
	return strings.TrimRight(h.Base, "/") + "/" + RelPath(week, pos, h.Format)
}

func (h HTTPSource) Describe(week string, pos stats.Position) string { return h.url(week, pos) }

func (h HTTPSource) Open(ctx context.Context, week string, pos stats.Position) (io.ReadCloser, error) {
	u := h.url(week, pos)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	ua := h.UserAgent
	if ua == "" {
		ua = defaultUA
	}
	req.Header.Set("User-Agent", ua)

	cli := h.Client
	if cli == nil {
		cli = defaultHTTPClient
	}
	resp, err := cli.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", u, fs.ErrNotExist)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("status %d for %s", resp.StatusCode, u)
	}
	return resp.Body, nil
}

// IsHTTPRoot reports whether root names a web location rather than a path.
func IsHTTPRoot(root string) bool {
	return strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://")
}
