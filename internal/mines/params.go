package mines

import (
	"fmt"
	"math"
	"strings"
)

type Params struct {
	Rows  int `json:"rows" yaml:"rows"`
	Cols  int `json:"cols" yaml:"cols"`
	Mines int `json:"mines" yaml:"mines"`
}

func (p Params) Unpack() (rows int, cols int, mines int) {
	return p.Rows, p.Cols, p.Mines
}

func (p Params) Size() int {
	return p.Rows * p.Cols
}

// Validate reports [ErrInvalidConfiguration] unless the board has at least
// one cell and leaves at least one cell free of mines.
func (p Params) Validate() error {
	switch {
	case p.Rows < 1:
		return fmt.Errorf("%w: rows must be positive (rows = %d)", ErrInvalidConfiguration, p.Rows)
	case p.Cols < 1:
		return fmt.Errorf("%w: cols must be positive (cols = %d)", ErrInvalidConfiguration, p.Cols)
	case p.Rows > math.MaxInt/p.Cols:
		return fmt.Errorf("%w: too many cells (rows = %d, cols = %d)", ErrInvalidConfiguration, p.Rows, p.Cols)
	case p.Mines < 0:
		return fmt.Errorf("%w: mines must not be negative (mines = %d)", ErrInvalidConfiguration, p.Mines)
	case p.Mines >= p.Size():
		return fmt.Errorf(
			"%w: mines must leave a safe cell (mines = %d, cells = %d)",
			ErrInvalidConfiguration, p.Mines, p.Size(),
		)
	}
	return nil
}

func (p Params) InBounds(row, col int) bool {
	return 0 <= row && row < p.Rows && 0 <= col && col < p.Cols
}

func (p Params) String() string {
	return fmt.Sprintf("%d:%d:%d", p.Rows, p.Cols, p.Mines)
}

// ParseParams reads the "rows:cols:mines" form produced by [Params.String].
func ParseParams(s string) (*Params, error) {
	p := &Params{}
	ss := strings.ReplaceAll(s, ":", " ")
	n, err := fmt.Sscanf(ss, "%d %d %d", &p.Rows, &p.Cols, &p.Mines)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid board params (s = "%s", n = %d, err = %w)`, s, n, err,
		)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
