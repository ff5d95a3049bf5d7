package session

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-board/internal/mines"
)

// CountUpLimit is the value at which a count-up clock ends the round. A
// timer budget equal to it also selects the count-up clock.
const CountUpLimit = 999

type Config struct {
	mines.Params `yaml:",inline"`
	// Seconds allowed for a round; 0 counts up to [CountUpLimit] instead.
	Timer int `json:"timer" yaml:"timer"`
}

var DefaultConfig = Config{
	Params: mines.Params{Rows: 9, Cols: 9, Mines: 10},
}

func (c Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.Timer < 0 || c.Timer > CountUpLimit {
		return fmt.Errorf(
			"%w: timer must be between 0 and %d (timer = %d)",
			mines.ErrInvalidConfiguration, CountUpLimit, c.Timer,
		)
	}
	return nil
}

// Countdown reports whether the round clock runs down from Timer.
func (c Config) Countdown() bool {
	return c.Timer > 0 && c.Timer != CountUpLimit
}

func (c Config) initialTime() int {
	if c.Countdown() {
		return c.Timer
	}
	return 0
}

func (c Config) Fields() logrus.Fields {
	return logrus.Fields{
		"rows":  c.Rows,
		"cols":  c.Cols,
		"mines": c.Mines,
		"timer": c.Timer,
	}
}
