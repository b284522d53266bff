package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/boxker/boxk"
)

var (
	once    sync.Once
	logFile *os.File
	initErr error
)

// Init installs the global logger once, later calls return the first result
func Init(cfg *boxk.LogConfig) error {
	once.Do(func() {
		var logger zerolog.Logger
		logger, logFile, initErr = build(cfg, os.Stdout)
		if initErr != nil {
			return
		}
		log.Logger = logger
	})
	return initErr
}

// Close the log file, if one was opened
func Close() error {
	if logFile == nil {
		return nil
	}
	logFile.Sync()
	return logFile.Close()
}

func build(cfg *boxk.LogConfig, console io.Writer) (zerolog.Logger, *os.File, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	writers := make([]io.Writer, 0, 2)
	if cfg.Console || cfg.File == "" {
		writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339})
	}

	var f *os.File
	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return zerolog.Logger{}, nil, errors.Wrapf(err, "failed to create log dir %s", dir)
			}
		}
		f, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Logger{}, nil, errors.Wrapf(err, "failed to open log file %s", cfg.File)
		}
		writers = append(writers, f)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	return logger, f, nil
}
