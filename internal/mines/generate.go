package mines

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewBoard builds a rows × cols board with exactly params.Mines mines placed
// uniformly at random.
func NewBoard(params Params, r *rand.Rand) (*Board, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	b := newEmptyBoard(params)
	b.placeMines(r)
	b.computeAdjacency()

	Log.WithFields(logrus.Fields{
		"rows":  b.rows,
		"cols":  b.cols,
		"mines": b.mineCount,
	}).Debug("board generated")

	return b, nil
}

func newEmptyBoard(params Params) *Board {
	rows, cols, mines := params.Unpack()
	b := &Board{
		rows:      rows,
		cols:      cols,
		mineCount: mines,
		remaining: rows*cols - mines,
		outcome:   Start,
		cells:     make([]Cell, rows*cols),
	}
	for i := range b.cells {
		b.cells[i] = Cell{Row: i / cols, Col: i % cols, Status: Open}
	}
	return b
}

// placeMines shuffles the flattened cell indices and mines the first
// mineCount of them, so every placement is equally likely.
func (b *Board) placeMines(r *rand.Rand) {
	indices := make([]int, len(b.cells))
	for i := range indices {
		indices[i] = i
	}
	r.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	for _, i := range indices[:b.mineCount] {
		b.cells[i].IsMine = true
	}
}

func (b *Board) computeAdjacency() {
	for i := range b.cells {
		b.cells[i].AdjacentMines = 0
	}
	for i := range b.cells {
		if !b.cells[i].IsMine {
			continue
		}
		for n := range b.neighbors(i) {
			b.cells[n].AdjacentMines++
		}
	}
}

// FromLayout builds a board from rows of '*' (mine) and '.' (safe) runes.
// All rows must have the same length.
func FromLayout(layout ...string) (*Board, error) {
	if len(layout) == 0 || len(layout[0]) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidConfiguration)
	}
	params := Params{Rows: len(layout), Cols: len(layout[0])}
	for row, line := range layout {
		if len(line) != params.Cols {
			return nil, LayoutError{Row: row, message: fmt.Sprintf(
				"layout row %d has %d cells, expected %d", row, len(line), params.Cols,
			)}
		}
		params.Mines += strings.Count(line, "*")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	b := newEmptyBoard(params)
	for row, line := range layout {
		for col, c := range line {
			switch c {
			case '*':
				b.cells[row*params.Cols+col].IsMine = true
			case '.':
			default:
				return nil, LayoutError{Row: row, Col: col, message: fmt.Sprintf(
					"unexpected rune %q at %d:%d", c, row, col,
				)}
			}
		}
	}
	b.computeAdjacency()
	return b, nil
}

// MoveMine relocates the mine at (row, col) to the first safe cell in
// row-major order and recomputes adjacency. It is only allowed before the
// first cell has been cleared.
func (b *Board) MoveMine(row, col int) bool {
	i, ok := b.index(row, col)
	if !ok || !b.cells[i].IsMine || b.outcome != Start {
		return false
	}
	for j := range b.cells {
		if j != i && !b.cells[j].IsMine {
			b.cells[i].IsMine = false
			b.cells[j].IsMine = true
			b.computeAdjacency()
			Log.WithFields(logrus.Fields{
				"from": fmt.Sprintf("%d:%d", row, col),
				"to":   fmt.Sprintf("%d:%d", j/b.cols, j%b.cols),
			}).Debug("mine moved")
			return true
		}
	}
	return false
}
