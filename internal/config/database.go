package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoDatabase = errors.New("no database configured")

type Database struct {
	URL      string `json:"-" yaml:"url"`
	Migrate  bool   `json:"migrate" yaml:"migrate"`
	MaxConns int32  `json:"max_conns" yaml:"max_conns"`
}

func (d Database) Enabled() bool {
	return d.URL != ""
}

func (d Database) PoolConfig() (*pgxpool.Config, error) {
	if !d.Enabled() {
		return nil, ErrNoDatabase
	}
	cfg, err := pgxpool.ParseConfig(d.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}
	if d.MaxConns > 0 {
		cfg.MaxConns = d.MaxConns
	}
	return cfg, nil
}

func readSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read secret file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
