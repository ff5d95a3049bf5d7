package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/session"
)

var log = logrus.New()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mines",
		Short: "Minesweeper board engine and game server",
		Long: `mines hosts minesweeper sessions over HTTP and websockets, or plays
a single game on the terminal.

Serve the API
	mines serve -c config.yaml

Play a beginner game, reading commands from stdin
	mines play --game 9:9:10
`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newPlayCmd(), newMigrateCmd())
	return root
}

// paramsValue lets board parameters be given as rows:cols:mines.
type paramsValue mines.Params

func newParamsValue(val mines.Params, p *mines.Params) *paramsValue {
	*p = val
	return (*paramsValue)(p)
}

func (v *paramsValue) String() string {
	return mines.Params(*v).String()
}

func (v *paramsValue) Set(value string) error {
	p, err := mines.ParseParams(value)
	if err != nil {
		return err
	}
	*v = paramsValue(*p)
	return nil
}

func (v *paramsValue) Type() string {
	return "rows:cols:mines"
}

// timerValue rejects budgets outside what a session accepts.
type timerValue int

func (v *timerValue) String() string {
	return fmt.Sprint(int(*v))
}

func (v *timerValue) Set(value string) error {
	var t int
	if _, err := fmt.Sscan(value, &t); err != nil {
		return err
	}
	if t < 0 || t > session.CountUpLimit {
		return fmt.Errorf("timer must be between 0 and %d", session.CountUpLimit)
	}
	*v = timerValue(t)
	return nil
}

func (v *timerValue) Type() string {
	return "seconds"
}
