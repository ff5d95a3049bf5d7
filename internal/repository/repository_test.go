package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/session"
)

type row struct {
	values []any
	err    error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *int64:
			*d = r.values[i].(int64)
		case *time.Time:
			*d = r.values[i].(time.Time)
		}
	}
	return nil
}

type fakeDB struct {
	sql  string
	args []any
	row  row
}

func (db *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not implemented")
}

func (db *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.sql, db.args = sql, args
	return db.row
}

func TestHighscoreFilterWhereClause(t *testing.T) {
	clause, args := HighscoreFilter{}.WhereClause()
	assert.Empty(t, clause)
	assert.Empty(t, args)

	timer := 0
	clause, args = HighscoreFilter{
		Params: &mines.Params{Rows: 9, Cols: 9, Mines: 10},
		Timer:  &timer,
	}.WhereClause()
	assert.Equal(t,
		"row_count = @rowCount AND col_count = @colCount AND mine_count = @mineCount AND timer = @timer",
		clause,
	)
	assert.Equal(t, pgx.NamedArgs{
		"rowCount":  9,
		"colCount":  9,
		"mineCount": 10,
		"timer":     0,
	}, args)

	assert.Equal(t, DefaultHighscoreLimit, HighscoreFilter{}.limit())
	assert.Equal(t, 5, HighscoreFilter{Limit: 5}.limit())
}

func TestStoreRecord(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 5, 0, time.UTC)
	db := &fakeDB{row: row{values: []any{int64(42), created}}}
	store := NewStore(db, logrus.New())

	id := uuid.New()
	round := session.Round{
		Config:    session.Config{Params: mines.Params{Rows: 9, Cols: 9, Mines: 10}, Timer: 60},
		Outcome:   mines.Won,
		Elapsed:   17,
		StartedAt: created.Add(-17 * time.Second),
		EndedAt:   created,
	}
	require.NoError(t, store.Record(context.Background(), id, round))

	assert.Contains(t, db.sql, "INSERT INTO round_record")
	require.Len(t, db.args, 1)
	args := db.args[0].(pgx.NamedArgs)
	assert.Equal(t, id.String(), args["session_id"])
	assert.Equal(t, 9, args["row_count"])
	assert.Equal(t, 10, args["mine_count"])
	assert.Equal(t, 60, args["timer"])
	assert.Equal(t, true, args["won"])
	assert.Equal(t, 17, args["elapsed_s"])
}

func TestCreateRoundRecord(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 5, 0, time.UTC)
	db := &fakeDB{row: row{values: []any{int64(7), created}}}
	params := mines.Params{Rows: 16, Cols: 30, Mines: 99}

	record, err := New(db).CreateRoundRecord(context.Background(), CreateRoundRecordParams{
		SessionId: "abc",
		Params:    params,
		ElapsedS:  120,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), record.RoundRecordId)
	assert.Equal(t, created, record.CreatedAt)
	assert.Equal(t, params, record.Params())
	assert.Equal(t, 120, record.ElapsedS)
}

func TestCreateRoundRecordDuplicate(t *testing.T) {
	db := &fakeDB{row: row{err: &pgconn.PgError{
		Code:   pgerrcode.UniqueViolation,
		Detail: "Key (session_id, started_at) already exists.",
	}}}

	_, err := New(db).CreateRoundRecord(context.Background(), CreateRoundRecordParams{
		SessionId: uuid.NewString(),
		Params:    mines.Params{Rows: 2, Cols: 2, Mines: 1},
	})
	assert.ErrorIs(t, err, ErrDuplicateRecord)
	assert.ErrorContains(t, err, "already exists")
}

func TestCreateRoundRecordPassesOtherErrors(t *testing.T) {
	boom := errors.New("connection refused")
	db := &fakeDB{row: row{err: boom}}

	_, err := New(db).CreateRoundRecord(context.Background(), CreateRoundRecordParams{})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrDuplicateRecord)
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NoError(t, r.Record(context.Background(), uuid.New(), session.Round{}))
	scores, err := r.Highscores(context.Background(), HighscoreFilter{})
	require.NoError(t, err)
	assert.Empty(t, scores)
}
