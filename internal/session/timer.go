package session

import (
	"context"
	"time"

	"github.com/vancomm/minesweeper-board/internal/mines"
)

const tickInterval = time.Second

// startTimerLocked cancels any running clock and starts a new one for the
// current round. Ticks carry the generation they were started with, so a
// tick that raced a reset is ignored.
func (s *Session) startTimerLocked() {
	s.stopTimerLocked()

	ctx, cancel := context.WithCancel(context.Background())
	s.stopTimer = cancel
	gen := s.generation
	ticker := s.clock.NewTicker(tickInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if !s.tick(gen) {
					return
				}
			}
		}
	}()
}

func (s *Session) stopTimerLocked() {
	s.generation++
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
}

// tick advances the round clock by one second. It reports whether the
// clock should keep running.
func (s *Session) tick(gen uint64) bool {
	keep, ended := s.advance(gen)

	if ended != nil && s.onRoundEnd != nil {
		s.onRoundEnd(*ended)
	}
	return keep
}

func (s *Session) advance(gen uint64) (bool, *Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickLocked(gen)
}

func (s *Session) tickLocked(gen uint64) (bool, *Round) {
	if gen != s.generation || s.closed || s.board == nil ||
		s.board.Outcome() != mines.Ongoing {
		return false, nil
	}

	var expired bool
	if s.config.Countdown() {
		s.time--
		expired = s.time <= 0
	} else {
		s.time++
		expired = s.time >= CountUpLimit
	}
	s.publishLocked(s.eventLocked(EventTick))

	if !expired {
		return true, nil
	}

	Log.WithFields(s.config.Fields()).Debug("time is up")
	s.board.Lose()
	s.state = Lost
	return false, s.endRoundLocked()
}
