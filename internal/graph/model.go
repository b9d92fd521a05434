package graph

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const shortSHALen = 7

// CommitRecord is one commit as returned by a data source. A zero Date means
// the source did not report one.
type CommitRecord struct {
	SHA         string    `json:"sha"`
	ShortSHA    string    `json:"shortSha,omitempty"`
	Message     string    `json:"message"`
	AuthorName  string    `json:"authorName"`
	AuthorLogin string    `json:"authorLogin,omitempty"`
	Date        time.Time `json:"date"`
	Parents     []string  `json:"parents"`
	ExternalURL string    `json:"externalUrl,omitempty"`
}

// Short returns the abbreviated identifier, deriving one from SHA when the
// source did not provide it.
func (c CommitRecord) Short() string {
	if c.ShortSHA != "" {
		return c.ShortSHA
	}
	if len(c.SHA) > shortSHALen {
		return c.SHA[:shortSHALen]
	}
	return c.SHA
}

// Summary returns the first line of the commit message.
func (c CommitRecord) Summary() string {
	msg := strings.TrimSpace(c.Message)
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	return strings.TrimSpace(msg)
}

// Initial is the single upper-cased letter drawn inside a node.
func (c CommitRecord) Initial() string {
	for _, name := range []string{c.AuthorLogin, c.AuthorName} {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(name)
		return string(unicode.ToUpper(r))
	}
	return "?"
}

// BranchEntry is a branch together with its fetched history, newest first.
type BranchEntry struct {
	Name      string         `json:"name"`
	IsDefault bool           `json:"isDefault"`
	Commits   []CommitRecord `json:"commits"`
}

// Kind says why a commit was placed on the graph.
type Kind string

const (
	KindFull        Kind = "full"
	KindHead        Kind = "head"
	KindStart       Kind = "start"
	KindBranchPoint Kind = "branchpoint"
)

type Mode int

const (
	ModeOverview Mode = iota
	ModeDetailed
)

func (m Mode) String() string {
	switch m {
	case ModeDetailed:
		return "detailed"
	default:
		return "overview"
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMode accepts "overview" or "detailed" in any case. An empty string
// selects the overview.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", ModeOverview.String():
		return ModeOverview, nil
	case ModeDetailed.String():
		return ModeDetailed, nil
	default:
		return ModeOverview, fmt.Errorf("unknown graph mode %q", raw)
	}
}

// dayKey is the calendar day of a commit in the commit's own time zone.
type dayKey struct {
	known bool
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) dayKey {
	if t.IsZero() {
		return dayKey{}
	}
	y, m, d := t.Date()
	return dayKey{known: true, year: y, month: m, day: d}
}

// less orders unknown days before every known day.
func (k dayKey) less(o dayKey) bool {
	if k.known != o.known {
		return !k.known
	}
	if k.year != o.year {
		return k.year < o.year
	}
	if k.month != o.month {
		return k.month < o.month
	}
	return k.day < o.day
}

func (k dayKey) label() string {
	if !k.known {
		return "?"
	}
	return fmt.Sprintf("%d/%d", int(k.month), k.day)
}
