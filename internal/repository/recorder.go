package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/session"
)

// Recorder keeps the results of finished rounds.
type Recorder interface {
	Record(ctx context.Context, sessionId uuid.UUID, round session.Round) error
	Highscores(ctx context.Context, filter HighscoreFilter) ([]Highscore, error)
}

type Store struct {
	q   *Queries
	log *logrus.Logger
}

func NewStore(db DBTX, log *logrus.Logger) *Store {
	return &Store{q: New(db), log: log}
}

func (s *Store) Record(
	ctx context.Context, sessionId uuid.UUID, round session.Round,
) error {
	record, err := s.q.CreateRoundRecord(ctx, CreateRoundRecordParams{
		SessionId: sessionId.String(),
		Params:    round.Config.Params,
		Timer:     round.Config.Timer,
		Won:       round.Outcome == mines.Won,
		ElapsedS:  round.Elapsed,
		StartedAt: round.StartedAt,
		EndedAt:   round.EndedAt,
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"round_record_id": record.RoundRecordId,
		"session_id":      record.SessionId,
		"game":            record.Params().String(),
		"won":             record.Won,
	}).Debug("round recorded")
	return nil
}

func (s *Store) Highscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Highscore, error) {
	return s.q.GetHighscores(ctx, filter)
}

// Nop is used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, uuid.UUID, session.Round) error {
	return nil
}

func (Nop) Highscores(context.Context, HighscoreFilter) ([]Highscore, error) {
	return []Highscore{}, nil
}
