// Package commands implements the line oriented text protocol used by the
// websocket endpoint and the play command.
package commands

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/session"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArgCount       = errors.New("invalid number of arguments")
	ErrCoordinates    = errors.New("invalid cell coordinates")
)

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	"g": 0, // get, only reports the state
	"n": 0, // new game with the last configuration
	"s": 4, // start: rows cols mines timer
	"o": 2, // open
	"f": 2, // flag
	"p": 0, // press
	"u": 0, // release
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d must be an int: %q", i+1, a)
		}
		out[i] = v
	}
	return out, nil
}

func position(s *session.Session, args []int) (row, col int, err error) {
	row, col = args[0], args[1]
	config, ok := s.Config()
	if !ok {
		return 0, 0, session.ErrNotConfigured
	}
	if !config.InBounds(row, col) {
		return 0, 0, fmt.Errorf("%w: %d %d", ErrCoordinates, row, col)
	}
	return row, col, nil
}

// Execute runs a single command line against s.
func Execute(s *session.Session, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return ErrUnknownCommand
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return fmt.Errorf("%w: %q takes %d", ErrArgCount, parts[0], nargs)
	}
	args, err := parseInts(parts[1:])
	if err != nil {
		return err
	}

	switch parts[0] {
	case "g":
		return nil
	case "n":
		return s.Reset()
	case "s":
		return s.Start(session.Config{
			Params: mines.Params{Rows: args[0], Cols: args[1], Mines: args[2]},
			Timer:  args[3],
		})
	case "o":
		row, col, err := position(s, args)
		if err != nil {
			return err
		}
		_, err = s.Reveal(row, col)
		return err
	case "f":
		row, col, err := position(s, args)
		if err != nil {
			return err
		}
		_, err = s.ToggleFlag(row, col)
		return err
	case "p":
		s.Press()
		return nil
	case "u":
		s.Release()
		return nil
	}
	return ErrUnknownCommand
}

// Lines yields the non-blank lines of text, trimmed.
func Lines(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		found := true
		var piece string
		for found {
			piece, text, found = strings.Cut(text, "\n")
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			if !yield(piece) {
				return
			}
		}
	}
}

// Run executes every command in text, stopping at the first error or
// once the round is over.
func Run(s *session.Session, text string) (int, error) {
	n := 0
	for line := range Lines(text) {
		if err := Execute(s, line); err != nil {
			return n, fmt.Errorf("command %q: %w", line, err)
		}
		n++
		if s.Outcome().Terminal() {
			break
		}
	}
	return n, nil
}
