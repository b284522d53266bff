package store

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BadgerLogger sends badger's log output to zerolog
type BadgerLogger struct {
	logger zerolog.Logger
}

// NewBadgerLogger with a component field
func NewBadgerLogger() *BadgerLogger {
	return &BadgerLogger{logger: log.With().Str("component", "badger").Logger()}
}

func (b *BadgerLogger) Errorf(format string, args ...interface{}) {
	b.logger.Error().Msgf(strings.TrimSpace(format), args...)
}

func (b *BadgerLogger) Warningf(format string, args ...interface{}) {
	b.logger.Warn().Msgf(strings.TrimSpace(format), args...)
}

// Infof is noisy, it goes to debug
func (b *BadgerLogger) Infof(format string, args ...interface{}) {
	b.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (b *BadgerLogger) Debugf(format string, args ...interface{}) {
	b.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}
