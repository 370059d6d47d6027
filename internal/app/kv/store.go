/*
Package kv provides the embedded badger store, an alternative to PostgreSQL for development
and tests. It implements the same user and message repositories.

Key layout:

	user:{id}                          user record (JSON)
	email:{lowercased email}           user id
	msg:{pair}:{unix nanos}:{seq}      message record (JSON); pair is the two user ids in sorted order
	msgid:{id}                         key of the message record
*/
package kv

import (
	"fmt"
	"strings"

	"dmchat/internal/pkg/logx"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

const (
	sequenceKey       = "seq:messages"
	sequenceBandwidth = 128
)

// Store wraps a badger database and the sequence that orders messages with equal timestamps.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open opens (or creates) the badger database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(newLogger())
	return open(opts)
}

// OpenInMemory opens a throwaway in-memory database.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	return open(opts)
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}

	seq, err := db.GetSequence([]byte(sequenceKey), sequenceBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to lease message sequence: %w", err)
	}

	return &Store{db: db, seq: seq}, nil
}

// Close releases the sequence lease and closes the database.
func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		logx.Warn("Failed to release message sequence", "error", err.Error())
	}
	return s.db.Close()
}

// badgerLogger routes badger's internal logging to zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func newLogger() badgerLogger {
	return badgerLogger{logger: logx.Component("badger")}
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Info().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}
