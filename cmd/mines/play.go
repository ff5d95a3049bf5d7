package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-board/internal/commands"
	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/session"
)

type playOptions struct {
	params  mines.Params
	timer   timerValue
	seed    uint64
	yaml    bool
	verbose bool
}

func newPlayCmd() *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one session on the terminal",
		Long: `play reads commands from stdin, one per line, and prints the board
after each of them:

	o ROW COL       reveal a cell
	f ROW COL       flag or unflag a cell
	n               new game with the same configuration
	s R C M T       new game with R rows, C cols, M mines and a T second timer
	g               print the board
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return play(cmd.InOrStdin(), cmd.OutOrStdout(), opts, cmd.Flags().Changed("seed"))
		},
	}
	cmd.Flags().Var(newParamsValue(session.DefaultConfig.Params, &opts.params), "game", "board as rows:cols:mines")
	cmd.Flags().Var(&opts.timer, "timer", "seconds per round, 0 counts up")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for mine placement")
	cmd.Flags().BoolVar(&opts.yaml, "yaml", false, "print the board as YAML")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log game events")
	return cmd
}

func play(in io.Reader, out io.Writer, opts playOptions, seeded bool) error {
	level := logrus.WarnLevel
	if opts.verbose {
		level = logrus.DebugLevel
	}
	for _, l := range []*logrus.Logger{log, mines.Log, session.Log} {
		l.SetLevel(level)
	}

	var sessionOpts []session.Option
	if seeded {
		sessionOpts = append(sessionOpts, session.WithRand(rand.New(rand.NewPCG(opts.seed, opts.seed))))
	}
	s := session.New(sessionOpts...)
	defer s.Close()

	if err := s.Start(session.Config{Params: opts.params, Timer: int(opts.timer)}); err != nil {
		return err
	}
	if err := printView(out, s, opts.yaml); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := commands.Execute(s, line); err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		if err := printView(out, s, opts.yaml); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func printView(out io.Writer, s *session.Session, asYAML bool) error {
	view, err := s.Snapshot()
	if err != nil {
		return err
	}
	if asYAML {
		text, err := view.Board.YAML()
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, text+"---\n")
		return err
	}
	_, err = fmt.Fprintf(out, "%s %s time=%d mines=%d\n%s",
		view.Board.Outcome, view.State, view.Time, view.Board.MinesLeft, view.Board,
	)
	return err
}
