package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vancomm/minesweeper-board/internal/mines"
)

type Highscore struct {
	SessionId string    `json:"session_id"`
	RowCount  int       `json:"rows"`
	ColCount  int       `json:"cols"`
	MineCount int       `json:"mines"`
	Timer     int       `json:"timer"`
	ElapsedS  int       `json:"elapsed_s"`
	EndedAt   time.Time `json:"ended_at"`
}

const DefaultHighscoreLimit = 50

type HighscoreFilter struct {
	Params *mines.Params
	Timer  *int
	Limit  int
}

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Params != nil {
		clauses = append(
			clauses,
			"row_count = @rowCount",
			"col_count = @colCount",
			"mine_count = @mineCount",
		)
		args["rowCount"] = f.Params.Rows
		args["colCount"] = f.Params.Cols
		args["mineCount"] = f.Params.Mines
	}
	if f.Timer != nil {
		clauses = append(clauses, "timer = @timer")
		args["timer"] = *f.Timer
	}
	return strings.Join(clauses, " AND "), args
}

func (f HighscoreFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultHighscoreLimit
	}
	return f.Limit
}

func (q Queries) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Highscore, error) {
	query := `
	SELECT
		session_id::text AS session_id,
		row_count,
		col_count,
		mine_count,
		timer,
		elapsed_s,
		ended_at
	FROM round_record
	WHERE
		won = true
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	query += " ORDER BY elapsed_s, ended_at LIMIT @limit;"
	args["limit"] = filter.limit()

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
