package session

import (
	"time"

	"github.com/vancomm/minesweeper-board/internal/mines"
)

type EventKind uint8

const (
	EventOutcome EventKind = iota + 1
	EventTick
	EventState
)

func (k EventKind) String() string {
	switch k {
	case EventOutcome:
		return "outcome"
	case EventTick:
		return "tick"
	case EventState:
		return "state"
	default:
		return "unknown"
	}
}

// [EventKind] implements [encoding.TextMarshaler]
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type Event struct {
	Kind    EventKind     `json:"kind"`
	Outcome mines.Outcome `json:"outcome"`
	State   State         `json:"state"`
	Time    int           `json:"time"`
}

// Round describes a finished round.
type Round struct {
	Config    Config
	Outcome   mines.Outcome
	Elapsed   int // seconds
	StartedAt time.Time
	EndedAt   time.Time
}

const subscriberBuffer = 32

// Subscribe returns a channel of session events and a func to stop
// receiving them. Events are dropped for subscribers that fall behind.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
}

func (s *Session) publishLocked(e Event) {
	for ch := range s.subs {
		select {
		case ch <- e:
		default:
			Log.WithField("kind", e.Kind).Warn("subscriber is behind, event dropped")
		}
	}
}

func (s *Session) eventLocked(kind EventKind) Event {
	e := Event{Kind: kind, State: s.state, Time: s.time}
	if s.board != nil {
		e.Outcome = s.board.Outcome()
	}
	return e
}
