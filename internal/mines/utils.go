package mines

import "iter"

// deltas of the 8 cells surrounding a square
var proximity = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// neighbors yields the flat indices of the in-bounds cells around i.
func (b *Board) neighbors(i int) iter.Seq[int] {
	row, col := i/b.cols, i%b.cols
	return func(yield func(int) bool) {
		for _, d := range proximity {
			r, c := row+d[0], col+d[1]
			if r < 0 || r >= b.rows || c < 0 || c >= b.cols {
				continue
			}
			if !yield(r*b.cols + c) {
				return
			}
		}
	}
}

func (b *Board) index(row, col int) (int, bool) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return 0, false
	}
	return row*b.cols + col, true
}
