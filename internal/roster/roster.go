package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/tyler180/ff-weekly-stats/internal/teams"
)

var ErrShortRecord = errors.New("roster record has fewer than 4 fields")

// Player is one line of the roster reference file: id,name,pos,team.
type Player struct {
	ID   string `csv:"id"`
	Name string `csv:"name"`
	Pos  string `csv:"pos"`
	Team string `csv:"team"`
}

// Key is the structural identity a weekly report row is matched on.
type Key struct {
	Name string
	Pos  string
	Team string
}

func (p Player) Key() Key { return Key{Name: p.Name, Pos: p.Pos, Team: p.Team} }

// Duplicate records a triple shared by more than one id. Kept is the id that
// wins lookups (earliest in file order).
type Duplicate struct {
	Key     Key
	Kept    string
	Dropped string
}

// Roster is immutable once loaded.
type Roster struct {
	byID   map[string]Player
	order  []string
	byKey  map[Key]string
	byNorm map[Key]string
	dups   []Duplicate
}

var header = []string{"id", "name", "pos", "team"}

// recordReader feeds csvutil one roster line at a time. Lines are split on
// every comma with no quote handling, so a name like `"Big" Ben` stays one
// field. Only the line itself is trimmed; fields keep their inner spacing.
type recordReader struct {
	sc   *bufio.Scanner
	line int
}

func (rr *recordReader) Read() ([]string, error) {
	for rr.sc.Scan() {
		rr.line++
		line := strings.TrimSpace(rr.sc.Text())
		if line == "" {
			continue
		}
		rec := strings.Split(line, ",")
		if len(rec) < len(header) {
			return nil, fmt.Errorf("line %d: %w (got %d)", rr.line, ErrShortRecord, len(rec))
		}
		return rec[:len(header)], nil
	}
	if err := rr.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Load reads a headerless id,name,pos,team file. Duplicate ids: the last
// record wins but the id keeps its first position.
func Load(r io.Reader) (*Roster, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	dec, err := csvutil.NewDecoder(&recordReader{sc: sc}, header...)
	if err != nil {
		return nil, fmt.Errorf("roster decoder: %w", err)
	}

	ro := &Roster{byID: make(map[string]Player, 1024)}
	for {
		var p Player
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("read roster: %w", err)
		}
		if _, seen := ro.byID[p.ID]; !seen {
			ro.order = append(ro.order, p.ID)
		}
		ro.byID[p.ID] = p
	}
	ro.index()
	return ro, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func (ro *Roster) index() {
	ro.byKey = make(map[Key]string, len(ro.order))
	ro.byNorm = make(map[Key]string, len(ro.order))
	for _, id := range ro.order {
		k := ro.byID[id].Key()
		if kept, ok := ro.byKey[k]; ok {
			ro.dups = append(ro.dups, Duplicate{Key: k, Kept: kept, Dropped: id})
			log.Printf("roster: WARN duplicate %q/%s/%s ids=%s,%s; keeping %s", k.Name, k.Pos, k.Team, kept, id, kept)
			continue
		}
		ro.byKey[k] = id
		nk := NormKey(k)
		if _, ok := ro.byNorm[nk]; !ok {
			ro.byNorm[nk] = id
		}
	}
}

func (ro *Roster) Len() int { return len(ro.order) }

func (ro *Roster) Get(id string) (Player, bool) {
	p, ok := ro.byID[id]
	return p, ok
}

// Players returns the records in file order.
func (ro *Roster) Players() []Player {
	out := make([]Player, 0, len(ro.order))
	for _, id := range ro.order {
		out = append(out, ro.byID[id])
	}
	return out
}

func (ro *Roster) Duplicates() []Duplicate { return ro.dups }

// Lookup finds the id whose triple equals k exactly.
func (ro *Roster) Lookup(k Key) (string, bool) {
	id, ok := ro.byKey[k]
	return id, ok
}

// LookupNormalized tries an exact match, then a match on NormKey(k).
func (ro *Roster) LookupNormalized(k Key) (string, bool) {
	if id, ok := ro.byKey[k]; ok {
		return id, true
	}
	id, ok := ro.byNorm[NormKey(k)]
	return id, ok
}

var reSpace = regexp.MustCompile(`\s+`)

// normName upper-cases, strips punctuation and collapses spaces.
func normName(s string) string {
	up := strings.ToUpper(s)
	up = strings.NewReplacer(
		".", "", ",", "", "'", "", "`", "", "’", "",
		"-", " ", "–", " ", "—", " ",
		"(", "", ")", "",
	).Replace(up)
	return reSpace.ReplaceAllString(strings.TrimSpace(up), " ")
}

// NormKey is the loose form of k: normalized name, upper-case position and
// canonical team code.
func NormKey(k Key) Key {
	team := strings.ToUpper(strings.TrimSpace(k.Team))
	if abbr, ok := teams.Canonical(team); ok {
		team = abbr
	}
	return Key{
		Name: normName(k.Name),
		Pos:  strings.ToUpper(strings.TrimSpace(k.Pos)),
		Team: team,
	}
}
