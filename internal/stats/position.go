package stats

import (
	"errors"
	"fmt"
	"strings"
)

// Position identifies one weekly report file and the extractor that reads it.
type Position string

const (
	QB  Position = "QB"
	RB  Position = "RB"
	WR  Position = "WR"
	TE  Position = "TE"
	DST Position = "DST"
	K   Position = "K"
)

var ErrUnknownPosition = errors.New("unknown position")

// AllPositions returns the report positions in processing order.
func AllPositions() []Position {
	return []Position{QB, RB, WR, TE, DST, K}
}

func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case QB, RB, WR, TE, DST, K:
		return p, nil
	case "D/ST", "DEF":
		return DST, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownPosition, s)
}

// ParsePositions reads a comma-separated list like "QB,RB,WR". Empty input
// yields the full default list.
func ParsePositions(csv string) ([]Position, error) {
	if strings.TrimSpace(csv) == "" {
		return AllPositions(), nil
	}
	parts := strings.Split(csv, ",")
	out := make([]Position, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		pos, err := ParsePosition(p)
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, nil
}
