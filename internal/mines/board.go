package mines

import (
	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type Board struct {
	rows, cols int
	mineCount  int
	remaining  int // safe cells still to clear
	flags      int
	outcome    Outcome
	cells      []Cell // row-major, i = row*cols + col
}

func (b *Board) Rows() int               { return b.rows }
func (b *Board) Cols() int               { return b.cols }
func (b *Board) MineCount() int          { return b.mineCount }
func (b *Board) RemainingSafeCells() int { return b.remaining }
func (b *Board) Flags() int              { return b.flags }
func (b *Board) Outcome() Outcome        { return b.outcome }

func (b *Board) Params() Params {
	return Params{Rows: b.rows, Cols: b.cols, Mines: b.mineCount}
}

func (b *Board) InBounds(row, col int) bool {
	_, ok := b.index(row, col)
	return ok
}

// Cell returns a copy of the cell at (row, col).
func (b *Board) Cell(row, col int) (Cell, bool) {
	i, ok := b.index(row, col)
	if !ok {
		return Cell{}, false
	}
	return b.cells[i], true
}

// Begin moves a fresh board from Start to Ongoing.
func (b *Board) Begin() {
	if b.outcome == Start {
		b.outcome = Ongoing
	}
}

// Reveal opens the cell at (row, col). Clearing a cell with no adjacent
// mines cascades to its neighbours until numbered cells or the board edge
// are reached. The win condition is checked after every cleared cell, so a
// win completed inside a cascade is reported.
func (b *Board) Reveal(row, col int) Outcome {
	i, ok := b.index(row, col)
	if !ok || b.outcome.Terminal() || b.cells[i].Status != Open {
		return b.outcome
	}

	b.Begin()
	if b.cells[i].IsMine {
		Log.WithFields(logrus.Fields{"row": row, "col": col}).Debug("mine hit")
		b.Lose()
		return b.outcome
	}

	var todo deque.Deque[int]
	b.clear(i)
	todo.PushBack(i)
	for todo.Len() > 0 && b.outcome == Ongoing {
		j := todo.PopFront()
		if b.cells[j].AdjacentMines != 0 {
			continue
		}
		for n := range b.neighbors(j) {
			if b.cells[n].Status == Open {
				b.clear(n)
				todo.PushBack(n)
			}
		}
	}

	return b.outcome
}

func (b *Board) clear(i int) {
	b.cells[i].Status = Cleared
	b.remaining--
	if b.remaining <= 0 {
		b.win()
	}
}

func (b *Board) win() {
	b.RevealAll()
	b.outcome = Won
	Log.WithFields(logrus.Fields{
		"rows":  b.rows,
		"cols":  b.cols,
		"mines": b.mineCount,
	}).Debug("board won")
}

// Lose ends the round as a loss and exposes every mine. It is a no-op on a
// board that has already ended.
func (b *Board) Lose() {
	if b.outcome.Terminal() {
		return
	}
	b.RevealAll()
	b.outcome = Lost
}

// ToggleFlag flips an open cell to flagged and back. Cleared cells and
// finished boards are left alone. It reports whether the cell changed.
func (b *Board) ToggleFlag(row, col int) bool {
	i, ok := b.index(row, col)
	if !ok || b.outcome.Terminal() {
		return false
	}
	switch b.cells[i].Status {
	case Open:
		b.cells[i].Status = Flagged
		b.flags++
	case Flagged:
		b.cells[i].Status = Open
		b.flags--
	default:
		return false
	}
	return true
}

// RevealAll clears every mine cell. Safe cells are not touched.
func (b *Board) RevealAll() {
	for i := range b.cells {
		if b.cells[i].IsMine {
			if b.cells[i].Status == Flagged {
				b.flags--
			}
			b.cells[i].Status = Cleared
		}
	}
}

func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		Rows:      b.rows,
		Cols:      b.cols,
		Mines:     b.mineCount,
		MinesLeft: b.mineCount - b.flags,
		Remaining: b.remaining,
		Outcome:   b.outcome,
		Cells:     make([][]CellView, b.rows),
		text:      make([]string, b.rows),
	}
	for row := range b.rows {
		views := make([]CellView, b.cols)
		line := make([]rune, b.cols)
		for col := range b.cols {
			c := b.cells[row*b.cols+col]
			views[col] = c.View()
			line[col] = c.Rune()
		}
		s.Cells[row] = views
		s.text[row] = string(line)
	}
	return s
}
