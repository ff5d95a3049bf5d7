package mines

import "errors"

var ErrInvalidConfiguration = errors.New("invalid board configuration")

type LayoutError struct {
	Row, Col int
	message  string
}

// [LayoutError] implements [error]
func (e LayoutError) Error() string {
	return e.message
}
