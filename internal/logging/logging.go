// Package logging configures the logrus loggers shared by the server.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
	"github.com/vancomm/minesweeper-board/internal/config"
)

// Setup applies the level, formatter and optional rotating file hook from c
// to every logger passed.
func Setup(c *config.Config, out io.Writer, loggers ...*logrus.Logger) error {
	level := logrus.InfoLevel
	if c.Development() {
		level = logrus.DebugLevel
	}

	var hook logrus.Hook
	if c.Log.File != "" {
		var err error
		hook, err = rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   c.Log.File,
			MaxSize:    c.Log.MaxSize,
			MaxBackups: c.Log.MaxBackups,
			MaxAge:     c.Log.MaxAge,
			Level:      level,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			return fmt.Errorf("unable to open log file %s: %w", c.Log.File, err)
		}
	}

	for _, log := range loggers {
		log.SetLevel(level)
		log.SetOutput(out)
		log.SetFormatter(&logrus.TextFormatter{ForceColors: c.Development()})
		if hook != nil {
			log.AddHook(hook)
		}
	}
	return nil
}
