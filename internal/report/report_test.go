package report

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseTSV(t *testing.T) {
	in := "John Smith\tNYJ\tx\t20\t1\n\n  \r\nJets\tNYJ\t-\t3 \r\n"
	rows, err := ParseTSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseTSV error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Line != 1 || rows[1].Line != 4 {
		t.Fatalf("line numbers = %d,%d", rows[0].Line, rows[1].Line)
	}
	if rows[0].Name() != "John Smith" || rows[0].Team() != "NYJ" {
		t.Fatalf("row0 = %+v", rows[0])
	}
	if got := rows[0].Tail(); !reflect.DeepEqual(got, []string{"20", "1"}) {
		t.Fatalf("tail = %v", got)
	}
	if got := rows[1].Tail(); !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("trailing whitespace should be stripped: %v", got)
	}
}

func TestRowCheck(t *testing.T) {
	r := Row{Line: 3, Fields: []string{"Lonely"}}
	if err := r.Check(); !errors.Is(err, ErrShortRow) {
		t.Fatalf("want ErrShortRow, got %v", err)
	}
	if got := (Row{Fields: []string{"a", "b", "c"}}).Tail(); got != nil {
		t.Fatalf("tail = %v", got)
	}
}

func TestParseHTML(t *testing.T) {
	html := `<html><body>
<!--
<table id="passing">
  <thead><tr><th>Player</th><th>Team</th><th>Opp</th><th>FGA</th></tr></thead>
  <tbody>
    <tr><th data-stat="player">Justin  Tucker</th><td>BAL</td><td>@CIN</td><td>5</td><td>3</td><td>2</td><td>2</td></tr>
    <tr class="thead"><th>Player</th><td>Team</td></tr>
    <tr><td>Harrison&nbsp;Butker</td><td>KC</td><td>DET</td><td>–</td><td>–</td><td>4</td><td>4</td></tr>
  </tbody>
</table>
-->
</body></html>`
	rows, err := ParseHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("ParseHTML error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(rows), rows)
	}
	if rows[0].Name() != "Justin Tucker" || rows[0].Team() != "BAL" {
		t.Fatalf("row0 = %+v", rows[0])
	}
	if rows[1].Name() != "Harrison Butker" {
		t.Fatalf("nbsp not collapsed: %q", rows[1].Name())
	}
	if got := rows[1].Tail(); !reflect.DeepEqual(got, []string{"–", "–", "4", "4"}) {
		t.Fatalf("tail = %v", got)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": TSV, "TXT": TSV, "html": HTML, "htm": HTML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q,%v", in, got, err)
		}
	}
	if _, err := ParseFormat("xlsx"); err == nil {
		t.Error("xlsx should be rejected")
	}
	if HTML.Ext() != ".html" || TSV.Ext() != ".txt" {
		t.Error("unexpected extensions")
	}
}
