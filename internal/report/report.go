package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrShortRow = errors.New("report row has no team column")

// Row is one line of a weekly report: column 0 is the player (or team, for
// defenses), column 1 the team, column 2 is ignored and stats start at 3.
type Row struct {
	Line   int
	Fields []string
}

func (r Row) Name() string { return r.Fields[0] }
func (r Row) Team() string { return r.Fields[1] }

// Tail returns the stat columns. It is empty when the row stops before them.
func (r Row) Tail() []string {
	if len(r.Fields) <= 3 {
		return nil
	}
	return r.Fields[3:]
}

// Check verifies the row can produce a match candidate.
func (r Row) Check() error {
	if len(r.Fields) < 2 {
		return fmt.Errorf("line %d: %w", r.Line, ErrShortRow)
	}
	return nil
}

// Format selects the decoder for a report file.
type Format string

const (
	TSV  Format = "tsv"
	HTML Format = "html"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", TSV, "txt":
		return TSV, nil
	case HTML, "htm":
		return HTML, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Ext is the file extension used for reports of this format.
func (f Format) Ext() string {
	if f == HTML {
		return ".html"
	}
	return ".txt"
}

func Parse(f Format, r io.Reader) ([]Row, error) {
	if f == HTML {
		return ParseHTML(r)
	}
	return ParseTSV(r)
}

// ParseTSV splits every non-blank line on TAB after trimming surrounding
// whitespace from the line.
func ParseTSV(r io.Reader) ([]Row, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	rows := make([]Row, 0, 128)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rows = append(rows, Row{Line: n, Fields: strings.Split(line, "\t")})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}
	return rows, nil
}

var wsRe = regexp.MustCompile(`\s+`)

func cleanCell(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return wsRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ParseHTML reads every body row of every table in a saved report page.
// Header rows repeated inside tbody (class "thead") are skipped.
func ParseHTML(r io.Reader) ([]Row, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	// stat sites often ship tables inside comments
	clean := strings.ReplaceAll(string(b), "<!--", "")
	clean = strings.ReplaceAll(clean, "-->", "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return nil, fmt.Errorf("parse report html: %w", err)
	}

	rows := make([]Row, 0, 128)
	n := 0
	doc.Find("table tbody tr").Each(func(_ int, tr *goquery.Selection) {
		n++
		if strings.Contains(tr.AttrOr("class", ""), "thead") {
			return
		}
		var fields []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			fields = append(fields, cleanCell(cell.Text()))
		})
		if len(fields) == 0 || (len(fields) == 1 && fields[0] == "") {
			return
		}
		rows = append(rows, Row{Line: n, Fields: fields})
	})
	return rows, nil
}
