package handlers

import (
	"errors"
	"net/url"

	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/repository"
	"github.com/vancomm/minesweeper-board/internal/session"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

type GameConfigDTO struct {
	Rows  int `schema:"rows"`
	Cols  int `schema:"cols"`
	Mines int `schema:"mines"`
	Timer int `schema:"timer"`
}

// ParseGameConfig reads a game configuration from the query, taking
// missing values from defaults.
func ParseGameConfig(src url.Values, defaults session.Config) (session.Config, error) {
	dto := GameConfigDTO{
		Rows:  defaults.Rows,
		Cols:  defaults.Cols,
		Mines: defaults.Mines,
		Timer: defaults.Timer,
	}
	if err := decoder.Decode(&dto, src); err != nil {
		return session.Config{}, err
	}
	config := session.Config{
		Params: mines.Params{Rows: dto.Rows, Cols: dto.Cols, Mines: dto.Mines},
		Timer:  dto.Timer,
	}
	return config, config.Validate()
}

type PositionDTO struct {
	Row int `schema:"row,required"`
	Col int `schema:"col,required"`
}

func ParsePosition(src url.Values) (PositionDTO, error) {
	var dto PositionDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type HighscoreQueryDTO struct {
	Rows  *int `schema:"rows"`
	Cols  *int `schema:"cols"`
	Mines *int `schema:"mines"`
	Timer *int `schema:"timer"`
	Limit int  `schema:"limit"`
}

var ErrPartialParams = errors.New("rows, cols and mines must be given together")

func ParseHighscoreFilter(src url.Values) (repository.HighscoreFilter, error) {
	var dto HighscoreQueryDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return repository.HighscoreFilter{}, err
	}
	filter := repository.HighscoreFilter{Timer: dto.Timer, Limit: dto.Limit}
	switch {
	case dto.Rows != nil && dto.Cols != nil && dto.Mines != nil:
		filter.Params = &mines.Params{Rows: *dto.Rows, Cols: *dto.Cols, Mines: *dto.Mines}
	case dto.Rows != nil || dto.Cols != nil || dto.Mines != nil:
		return filter, ErrPartialParams
	}
	return filter, nil
}

type SessionDTO struct {
	SessionId uuid.UUID `json:"session_id"`
	Token     string    `json:"token,omitempty"`
	session.View
}
