package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vancomm/minesweeper-board/internal/mines"
)

type RoundRecord struct {
	RoundRecordId int64     `json:"round_record_id"`
	SessionId     string    `json:"session_id"`
	RowCount      int       `json:"rows"`
	ColCount      int       `json:"cols"`
	MineCount     int       `json:"mines"`
	Timer         int       `json:"timer"`
	Won           bool      `json:"won"`
	ElapsedS      int       `json:"elapsed_s"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r RoundRecord) Params() mines.Params {
	return mines.Params{Rows: r.RowCount, Cols: r.ColCount, Mines: r.MineCount}
}

type CreateRoundRecordParams struct {
	SessionId string
	Params    mines.Params
	Timer     int
	Won       bool
	ElapsedS  int
	StartedAt time.Time
	EndedAt   time.Time
}

func (p CreateRoundRecordParams) Args() pgx.NamedArgs {
	return pgx.NamedArgs{
		"session_id": p.SessionId,
		"row_count":  p.Params.Rows,
		"col_count":  p.Params.Cols,
		"mine_count": p.Params.Mines,
		"timer":      p.Timer,
		"won":        p.Won,
		"elapsed_s":  p.ElapsedS,
		"started_at": p.StartedAt,
		"ended_at":   p.EndedAt,
	}
}

func (q Queries) CreateRoundRecord(
	ctx context.Context, params CreateRoundRecordParams,
) (*RoundRecord, error) {
	record := &RoundRecord{
		SessionId: params.SessionId,
		RowCount:  params.Params.Rows,
		ColCount:  params.Params.Cols,
		MineCount: params.Params.Mines,
		Timer:     params.Timer,
		Won:       params.Won,
		ElapsedS:  params.ElapsedS,
		StartedAt: params.StartedAt,
		EndedAt:   params.EndedAt,
	}
	err := q.db.QueryRow(
		ctx,
		`INSERT INTO round_record (
			session_id, row_count, col_count, mine_count, timer,
			won, elapsed_s, started_at, ended_at
		)
		VALUES (
			@session_id, @row_count, @col_count, @mine_count, @timer,
			@won, @elapsed_s, @started_at, @ended_at
		)
		RETURNING round_record_id, created_at;`,
		params.Args(),
	).Scan(&record.RoundRecordId, &record.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRecord, pgErr.Detail)
	} else if err != nil {
		return nil, err
	}
	return record, nil
}
