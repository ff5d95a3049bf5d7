package session

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-board/internal/mines"
)

var Log = logrus.New()

var (
	ErrNotConfigured = errors.New("session has no configuration")
	ErrClosed        = errors.New("session is closed")
)

// DefaultMaxRebuilds bounds the boards built while looking for a safe first
// click before falling back to moving the mine.
const DefaultMaxRebuilds = 10_000

// DefaultMaxCells caps rows*cols for boards a session agrees to build.
const DefaultMaxCells = 10_000

type State uint8

const (
	Idle State = iota
	Pressed
	Lost
	Won
)

var stateNames = [...]string{
	Idle:    "idle",
	Pressed: "pressed",
	Lost:    "lost",
	Won:     "won",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// [State] implements [encoding.TextMarshaler]
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type BoardBuilder func(mines.Params, *rand.Rand) (*mines.Board, error)

// Session drives one game at a time: it owns the current board, the round
// clock and the coarse UI state. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	rnd         *rand.Rand
	clock       Clock
	build       BoardBuilder
	maxRebuilds int
	maxCells    int
	onRoundEnd  func(Round)

	board     *mines.Board
	config    *Config
	firstPlay bool
	time      int
	state     State
	startedAt time.Time

	generation uint64
	stopTimer  context.CancelFunc

	subs   map[chan Event]struct{}
	closed bool
}

type Option func(*Session)

func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rnd = r }
}

func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithBoardBuilder(b BoardBuilder) Option {
	return func(s *Session) { s.build = b }
}

func WithMaxRebuilds(n int) Option {
	return func(s *Session) { s.maxRebuilds = n }
}

// WithMaxCells caps the size of boards the session builds; n <= 0 keeps
// [DefaultMaxCells].
func WithMaxCells(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxCells = n
		}
	}
}

// OnRoundEnd registers f to be called, outside the session lock, whenever
// a round is won or lost.
func OnRoundEnd(f func(Round)) Option {
	return func(s *Session) { s.onRoundEnd = f }
}

func New(opts ...Option) *Session {
	s := &Session{
		rnd: rand.New(rand.NewPCG(
			new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
		)),
		clock:       realClock{},
		build:       mines.NewBoard,
		maxRebuilds: DefaultMaxRebuilds,
		maxCells:    DefaultMaxCells,
		subs:        make(map[chan Event]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start replaces the current board with a new one built from config.
func (s *Session) Start(config Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.startLocked(config)
}

func (s *Session) startLocked(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if size := config.Size(); size > s.maxCells {
		return fmt.Errorf(
			"%w: board is too large (cells = %d, max = %d)",
			mines.ErrInvalidConfiguration, size, s.maxCells,
		)
	}
	board, err := s.build(config.Params, s.rnd)
	if err != nil {
		return err
	}

	s.stopTimerLocked()
	s.board = board
	s.config = &config
	s.state = Idle
	s.firstPlay = true
	s.time = config.initialTime()
	s.startedAt = time.Time{}

	Log.WithFields(config.Fields()).Debug("new game")
	s.publishLocked(s.eventLocked(EventOutcome))
	return nil
}

// Reset starts a new game with the last used configuration.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.config == nil {
		return ErrNotConfigured
	}
	return s.startLocked(*s.config)
}

// Reveal opens the cell at (row, col). The first reveal of a game never
// hits a mine: boards are rebuilt until the clicked position is safe.
func (s *Session) Reveal(row, col int) (mines.Outcome, error) {
	outcome, ended, err := s.reveal(row, col)
	if ended != nil && s.onRoundEnd != nil {
		s.onRoundEnd(*ended)
	}
	return outcome, err
}

func (s *Session) reveal(row, col int) (mines.Outcome, *Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealLocked(row, col)
}

func (s *Session) revealLocked(row, col int) (mines.Outcome, *Round, error) {
	if s.closed {
		return mines.Start, nil, ErrClosed
	}
	if s.board == nil {
		return mines.Start, nil, ErrNotConfigured
	}
	outcome := s.board.Outcome()
	if outcome.Terminal() {
		return outcome, nil, nil
	}
	cell, ok := s.board.Cell(row, col)
	if !ok || cell.Status != mines.Open {
		return outcome, nil, nil
	}

	if s.firstPlay && cell.IsMine {
		s.rebuildLocked(row, col)
	}

	begun := s.board.Outcome() == mines.Start
	if begun {
		s.board.Begin()
		s.startedAt = s.clock.Now()
		s.startTimerLocked()
	}

	outcome = s.board.Reveal(row, col)
	s.firstPlay = false

	switch outcome {
	case mines.Lost:
		s.state = Lost
	case mines.Won:
		s.state = Won
	default:
		s.state = Idle
	}

	Log.WithFields(logrus.Fields{
		"row":     row,
		"col":     col,
		"outcome": outcome,
	}).Debug("reveal")

	if outcome.Terminal() {
		return outcome, s.endRoundLocked(), nil
	}
	if begun {
		s.publishLocked(s.eventLocked(EventOutcome))
	}
	return outcome, nil, nil
}

// rebuildLocked replaces the board until (row, col) is safe. Once
// maxRebuilds boards have been tried the mine is moved out of the way.
func (s *Session) rebuildLocked(row, col int) {
	params := s.config.Params
	for tries := 1; tries <= s.maxRebuilds; tries++ {
		board, err := s.build(params, s.rnd)
		if err != nil {
			Log.WithError(err).Error("unable to rebuild board")
			break
		}
		if cell, _ := board.Cell(row, col); !cell.IsMine {
			Log.WithFields(logrus.Fields{
				"row":   row,
				"col":   col,
				"tries": tries,
			}).Debug("board rebuilt for a safe first click")
			s.board = board
			return
		}
	}
	s.board.MoveMine(row, col)
}

func (s *Session) endRoundLocked() *Round {
	s.stopTimerLocked()
	round := Round{
		Config:    *s.config,
		Outcome:   s.board.Outcome(),
		Elapsed:   s.elapsedLocked(),
		StartedAt: s.startedAt,
		EndedAt:   s.clock.Now(),
	}
	Log.WithFields(s.config.Fields()).WithFields(logrus.Fields{
		"outcome": round.Outcome,
		"elapsed": round.Elapsed,
	}).Info("round ended")
	s.publishLocked(s.eventLocked(EventOutcome))
	return &round
}

func (s *Session) elapsedLocked() int {
	if s.config.Countdown() {
		return s.config.Timer - s.time
	}
	return s.time
}

// ToggleFlag flags or unflags the cell at (row, col) while a round is in
// progress.
func (s *Session) ToggleFlag(row, col int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}
	if s.board == nil {
		return false, ErrNotConfigured
	}
	if s.board.Outcome() != mines.Ongoing {
		return false, nil
	}
	return s.board.ToggleFlag(row, col), nil
}

// Press marks the pointer as held down over the board.
func (s *Session) Press() {
	s.setTransient(Pressed)
}

// Release clears the pressed state.
func (s *Session) Release() {
	s.setTransient(Idle)
}

func (s *Session) setTransient(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.board == nil || s.board.Outcome().Terminal() || s.state == state {
		return
	}
	s.state = state
	s.publishLocked(s.eventLocked(EventState))
}

func (s *Session) Outcome() mines.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.board == nil {
		return mines.Start
	}
	return s.board.Outcome()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Time() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.time
}

func (s *Session) Config() (Config, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config == nil {
		return Config{}, false
	}
	return *s.config, true
}

type View struct {
	Config    Config         `json:"config"`
	State     State          `json:"state"`
	Time      int            `json:"time"`
	FirstPlay bool           `json:"first_play"`
	Board     mines.Snapshot `json:"board"`
}

func (s *Session) Snapshot() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.board == nil {
		return View{}, ErrNotConfigured
	}
	return View{
		Config:    *s.config,
		State:     s.state,
		Time:      s.time,
		FirstPlay: s.firstPlay,
		Board:     s.board.Snapshot(),
	}, nil
}

// Close stops the clock and closes every subscriber channel.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.stopTimerLocked()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}
