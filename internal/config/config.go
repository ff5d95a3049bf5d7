// Package config loads the server configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-board/internal/session"
	"gopkg.in/yaml.v2"
)

var ErrInvalid = errors.New("invalid config")

type Log struct {
	File       string `json:"file" yaml:"file"`
	MaxSize    int    `json:"max_size" yaml:"max_size"` // megabytes
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAge     int    `json:"max_age" yaml:"max_age"` // days
}

type Sessions struct {
	TTL           Duration `json:"ttl" yaml:"ttl"`
	ReapInterval  Duration `json:"reap_interval" yaml:"reap_interval"`
	TokenLifetime Duration `json:"token_lifetime" yaml:"token_lifetime"`
	Secret        string   `json:"-" yaml:"secret"`
	// Largest rows*cols a client may ask for.
	MaxCells int `json:"max_cells" yaml:"max_cells"`
}

type Config struct {
	Mode string `json:"mode" yaml:"mode"`
	Addr string `json:"addr" yaml:"addr"`
	// Origins allowed by CORS; empty allows any.
	AllowedOrigins []string       `json:"allowed_origins" yaml:"allowed_origins"`
	Game           session.Config `json:"game" yaml:"game"`
	Sessions       Sessions       `json:"sessions" yaml:"sessions"`
	Database       Database       `json:"database" yaml:"database"`
	Log            Log            `json:"log" yaml:"log"`
}

func Default() Config {
	return Config{
		Mode: "production",
		Addr: ":8080",
		Game: session.DefaultConfig,
		Sessions: Sessions{
			TTL:           Duration{30 * time.Minute},
			ReapInterval:  Duration{time.Minute},
			TokenLifetime: Duration{24 * time.Hour},
			MaxCells:      session.DefaultMaxCells,
		},
		Database: Database{Migrate: true},
		Log:      Log{MaxSize: 10, MaxBackups: 3, MaxAge: 28},
	}
}

// Load reads the YAML file at path over [Default] and applies the
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read config %s: %w", path, err)
		}
		if err := yaml.UnmarshalStrict(b, &c); err != nil {
			return nil, fmt.Errorf("unable to parse config %s: %w", path, err)
		}
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyEnv overrides fields from the environment as seen through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if addr, ok := lookup("APP_ADDR"); ok {
		c.Addr = addr
	} else if port, ok := lookup("APP_PORT"); ok {
		c.Addr = ":" + port
	}
	if development, ok := lookup("DEVELOPMENT"); ok {
		if development != "0" {
			c.Mode = "development"
		} else {
			c.Mode = "production"
		}
	}
	if url, ok := lookup("DATABASE_URL"); ok {
		c.Database.URL = url
	}
	if migrate, ok := lookup("DATABASE_MIGRATE"); ok {
		v, err := strconv.ParseBool(migrate)
		if err != nil {
			return fmt.Errorf("%w: DATABASE_MIGRATE: %w", ErrInvalid, err)
		}
		c.Database.Migrate = v
	}
	if secret, ok := lookup("SESSION_SECRET"); ok {
		c.Sessions.Secret = secret
	} else if path, ok := lookup("SESSION_SECRET_FILE"); ok {
		secret, err := readSecret(path)
		if err != nil {
			return err
		}
		c.Sessions.Secret = secret
	}
	if file, ok := lookup("LOG_FILE"); ok {
		c.Log.File = file
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("%w: game: %w", ErrInvalid, err)
	}
	if c.Sessions.TTL.Duration <= 0 {
		return fmt.Errorf("%w: sessions.ttl must be positive", ErrInvalid)
	}
	if c.Sessions.ReapInterval.Duration <= 0 {
		return fmt.Errorf("%w: sessions.reap_interval must be positive", ErrInvalid)
	}
	if c.Sessions.TokenLifetime.Duration <= 0 {
		return fmt.Errorf("%w: sessions.token_lifetime must be positive", ErrInvalid)
	}
	if c.Sessions.MaxCells <= 0 {
		return fmt.Errorf("%w: sessions.max_cells must be positive", ErrInvalid)
	}
	if c.Game.Size() > c.Sessions.MaxCells {
		return fmt.Errorf(
			"%w: game has more than sessions.max_cells = %d cells",
			ErrInvalid, c.Sessions.MaxCells,
		)
	}
	if c.Production() && c.Sessions.Secret == "" {
		return fmt.Errorf("%w: a session secret is required in production", ErrInvalid)
	}
	return nil
}

func (c Config) Production() bool {
	return c.Mode == "production"
}

func (c Config) Development() bool {
	return c.Mode != "production"
}

func (c Config) Fields() logrus.Fields {
	return logrus.Fields{
		"mode":                   c.Mode,
		"addr":                   c.Addr,
		"allowed_origins":        c.AllowedOrigins,
		"game":                   c.Game.Params.String(),
		"game_timer":             c.Game.Timer,
		"sessions_ttl":           c.Sessions.TTL.String(),
		"sessions_reap_interval": c.Sessions.ReapInterval.String(),
		"sessions_token_ttl":     c.Sessions.TokenLifetime.String(),
		"sessions_max_cells":     c.Sessions.MaxCells,
		"database":               c.Database.URL != "",
		"database_migrate":       c.Database.Migrate,
		"log_file":               c.Log.File,
	}
}
