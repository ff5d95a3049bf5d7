package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type Status uint8

const (
	Open Status = iota
	Cleared
	Flagged
)

var statusNames = [...]string{
	Open:    "open",
	Cleared: "cleared",
	Flagged: "flagged",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

// [Status] implements [encoding.TextMarshaler]
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown cell status %q", text)
}

type Outcome uint8

const (
	Start Outcome = iota
	Ongoing
	Won
	Lost
)

var outcomeNames = [...]string{
	Start:   "start",
	Ongoing: "ongoing",
	Won:     "won",
	Lost:    "lost",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "outcome(" + strconv.Itoa(int(o)) + ")"
}

// Terminal reports whether no further moves are accepted.
func (o Outcome) Terminal() bool {
	return o == Won || o == Lost
}

// [Outcome] implements [encoding.TextMarshaler]
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for i, name := range outcomeNames {
		if name == string(text) {
			*o = Outcome(i)
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

type Cell struct {
	Row           int
	Col           int
	IsMine        bool
	AdjacentMines int
	Status        Status
}

// Rune renders the cell the way a player sees it: '#' covered, 'f' flag,
// '*' exposed mine, '.' cleared with no neighbours, digits otherwise.
func (c Cell) Rune() rune {
	switch c.Status {
	case Flagged:
		return 'f'
	case Cleared:
		if c.IsMine {
			return '*'
		}
		if c.AdjacentMines == 0 {
			return '.'
		}
		return rune('0' + c.AdjacentMines)
	default:
		return '#'
	}
}

type CellView struct {
	Status   Status `json:"status" yaml:"status"`
	Adjacent int    `json:"adjacent,omitempty" yaml:"adjacent,omitempty"`
	Mine     bool   `json:"mine,omitempty" yaml:"mine,omitempty"`
}

func (c Cell) View() CellView {
	v := CellView{Status: c.Status}
	if c.Status == Cleared {
		v.Mine = c.IsMine
		if !c.IsMine {
			v.Adjacent = c.AdjacentMines
		}
	}
	return v
}

// Snapshot is a read-only copy of the board as a player may see it. Mines
// are only disclosed once their cell is cleared.
type Snapshot struct {
	Rows      int          `json:"rows" yaml:"rows"`
	Cols      int          `json:"cols" yaml:"cols"`
	Mines     int          `json:"mines" yaml:"mines"`
	MinesLeft int          `json:"mines_left" yaml:"mines_left"`
	Remaining int          `json:"remaining" yaml:"remaining"`
	Outcome   Outcome      `json:"outcome" yaml:"outcome"`
	Cells     [][]CellView `json:"cells" yaml:"cells,flow"`
	text      []string
}

func (s Snapshot) String() string {
	var b strings.Builder
	for _, line := range s.text {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
