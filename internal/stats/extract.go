package stats

import (
	"fmt"
	"strconv"
)

// QBLine holds the quarterback fields that survive extraction.
//
// Two report layouts are accepted:
//
//	10 fields: cmp, att, pct, py, ptd, pint, ry, rtd, ints, fum
//	 8 fields: cmp, att, py, ptd, ry, rtd, ints, fum
type QBLine struct {
	PY, PTD, RY, RTD, Ints, Fum string
}

// DecodeQB accepts either quarterback layout by field count.
func DecodeQB(f []string) (QBLine, error) {
	switch len(f) {
	case 10:
		return QBLine{PY: f[3], PTD: f[4], RY: f[6], RTD: f[7], Ints: f[8], Fum: f[9]}, nil
	case 8:
		return QBLine{PY: f[2], PTD: f[3], RY: f[4], RTD: f[5], Ints: f[6], Fum: f[7]}, nil
	}
	return QBLine{}, &FieldCountError{Pos: QB, Got: len(f), Want: []int{10, 8}}
}

func (l QBLine) Stats() ([]Stat, error) {
	to, err := turnovers(l.Ints, l.Fum)
	if err != nil {
		return nil, err
	}
	return []Stat{
		{"PY", l.PY},
		{"PTD", l.PTD},
		{"RY", l.RY},
		{"RTD", l.RTD},
		{"TO", strconv.Itoa(to)},
	}, nil
}

// SkillLine covers running backs and receivers; both emit the same codes.
type SkillLine struct {
	RY, RTD, REC, REY, RETD, Ints, Fum string
}

// DecodeRB reads att, _, ry, rtd, _, rec, rey, retd, ints, fum.
func DecodeRB(f []string) (SkillLine, error) {
	if len(f) != 10 {
		return SkillLine{}, &FieldCountError{Pos: RB, Got: len(f), Want: []int{10}}
	}
	return SkillLine{RY: f[2], RTD: f[3], REC: f[5], REY: f[6], RETD: f[7], Ints: f[8], Fum: f[9]}, nil
}

// DecodeWR reads _, _, rec, rey, retd, _, ry, rtd, ints, fum. Tight ends use
// the same layout.
func DecodeWR(f []string) (SkillLine, error) {
	if len(f) != 10 {
		return SkillLine{}, &FieldCountError{Pos: WR, Got: len(f), Want: []int{10}}
	}
	return SkillLine{REC: f[2], REY: f[3], RETD: f[4], RY: f[6], RTD: f[7], Ints: f[8], Fum: f[9]}, nil
}

func (l SkillLine) Stats() ([]Stat, error) {
	to, err := turnovers(l.Ints, l.Fum)
	if err != nil {
		return nil, err
	}
	return []Stat{
		{"RY", l.RY},
		{"RTD", l.RTD},
		{"REC", l.REC},
		{"REY", l.REY},
		{"RETD", l.RETD},
		{"TO", strconv.Itoa(to)},
	}, nil
}

// DSTLine is a team defense: sacks, fum, ints, tds, safeties, ya, pa.
type DSTLine struct {
	Sacks, Fum, Ints, TDs, Safeties, YA, PA string
}

// DecodeDST reads the seven defense fields in report order.
func DecodeDST(f []string) (DSTLine, error) {
	if len(f) != 7 {
		return DSTLine{}, &FieldCountError{Pos: DST, Got: len(f), Want: []int{7}}
	}
	return DSTLine{Sacks: f[0], Fum: f[1], Ints: f[2], TDs: f[3], Safeties: f[4], YA: f[5], PA: f[6]}, nil
}

func (l DSTLine) Stats() ([]Stat, error) {
	fum, err := atoi("fum", l.Fum)
	if err != nil {
		return nil, err
	}
	ints, err := atoi("ints", l.Ints)
	if err != nil {
		return nil, err
	}
	return []Stat{
		{"SK", l.Sacks},
		{"TOC", strconv.Itoa(fum + ints)},
		{"DTD", l.TDs},
		{"SF", l.Safeties},
		{"YA", l.YA},
		{"PA", l.PA},
	}, nil
}

// KLine is a kicker: fga, fgm, xpa, xpm.
type KLine struct {
	FGA, FGM, XPA, XPM string
}

// DecodeK reads the four kicker fields in report order.
func DecodeK(f []string) (KLine, error) {
	if len(f) != 4 {
		return KLine{}, &FieldCountError{Pos: K, Got: len(f), Want: []int{4}}
	}
	return KLine{FGA: f[0], FGM: f[1], XPA: f[2], XPM: f[3]}, nil
}

func (l KLine) Stats() ([]Stat, error) {
	fga, err := atoi("fga", l.FGA)
	if err != nil {
		return nil, err
	}
	fgm, err := atoi("fgm", l.FGM)
	if err != nil {
		return nil, err
	}
	return []Stat{
		{"MFG", strconv.Itoa(fga - fgm)},
		{"FG", l.FGM},
		{"PAT", l.XPM},
	}, nil
}

func turnovers(ints, fum string) (int, error) {
	i, err := atoi("ints", ints)
	if err != nil {
		return 0, err
	}
	f, err := atoi("fum", fum)
	if err != nil {
		return 0, err
	}
	return i + f, nil
}

// Extract decodes normalized tail fields for pos and returns its stats in
// emission order.
func Extract(pos Position, tail []string) ([]Stat, error) {
	switch pos {
	case QB:
		l, err := DecodeQB(tail)
		if err != nil {
			return nil, err
		}
		return l.Stats()
	case RB:
		l, err := DecodeRB(tail)
		if err != nil {
			return nil, err
		}
		return l.Stats()
	case WR, TE:
		l, err := DecodeWR(tail)
		if err != nil {
			if fe, ok := err.(*FieldCountError); ok {
				fe.Pos = pos
			}
			return nil, err
		}
		return l.Stats()
	case DST:
		l, err := DecodeDST(tail)
		if err != nil {
			return nil, err
		}
		return l.Stats()
	case K:
		l, err := DecodeK(tail)
		if err != nil {
			return nil, err
		}
		return l.Stats()
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownPosition, pos)
}
