// Package storage is the facade the state layer talks to. It composes the
// catalog, tag, like, playlist and search components and runs every write as
// one all-or-nothing transaction, keeping the search index in step with the
// catalog.
package storage

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavestore/internal/db"
	"github.com/llehouerou/wavestore/internal/library"
	"github.com/llehouerou/wavestore/internal/likes"
	"github.com/llehouerou/wavestore/internal/playlists"
	"github.com/llehouerou/wavestore/internal/search"
	"github.com/llehouerou/wavestore/internal/tags"
)

// Error kinds. Every error returned by a Store wraps at most one of them.
var (
	ErrNotFound             = db.ErrNotFound
	ErrReferentialIntegrity = db.ErrReferentialIntegrity
	ErrKindMismatch         = db.ErrKindMismatch
	ErrOrderingConflict     = db.ErrOrderingConflict
	ErrStorageUnavailable   = db.ErrStorageUnavailable
)

// KindOf returns the error kind err wraps, or nil.
func KindOf(err error) error {
	return db.Kind(err)
}

// Options configure Open.
type Options struct {
	// Path of the database file. Empty or ":memory:" opens a private
	// in-memory database.
	Path string
	// BusyTimeout is how long a statement waits on a locked database.
	BusyTimeout time.Duration
	// Logger receives unit-of-work traces. Nil discards them.
	Logger *logrus.Logger
	// Now stamps new rows. Defaults to time.Now.
	Now func() time.Time
}

// Store is the storage facade over one SQLite database.
type Store struct {
	db  *sqlx.DB
	log *logrus.Logger
	now func() time.Time

	// writeMu serializes units of work inside the process. SQLite's own
	// write lock covers other processes.
	writeMu sync.Mutex
}

// Open opens the database described by opts and applies the schema.
func Open(ctx context.Context, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	conn, err := db.Open(ctx, opts.Path, opts.BusyTimeout)
	if err != nil {
		log.WithError(err).WithField("path", opts.Path).Error("open database")
		return nil, err
	}
	log.WithField("path", opts.Path).Info("database opened")

	return &Store{db: conn, log: log, now: now}, nil
}

// Close closes the database. Units of work in flight finish first.
func (s *Store) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.db.Close()
	s.log.Info("database closed")
	return db.Classify(err)
}

// components binds every store to one handle: the pool for reads, the open
// transaction for writes.
type components struct {
	q     db.Querier
	lib   *library.Library
	tags  *tags.Tags
	likes *likes.Likes
	pls   *playlists.Playlists
	idx   *search.Index
}

func (s *Store) bind(q db.Querier) *components {
	c := &components{
		q:     q,
		lib:   library.New(q),
		tags:  tags.New(q),
		likes: likes.New(q),
		idx:   search.New(q),
	}
	c.pls = playlists.New(q, c.tags)
	c.lib.Now = s.now
	c.likes.Now = s.now
	c.pls.Now = s.now
	return c
}

// write runs fn as one unit of work. Any error, cancellation included,
// rolls the whole unit back. A unit that fails because the database is
// busy is retried from the start, so fn must only have effects through c.
func (s *Store) write(ctx context.Context, op string, fields logrus.Fields, fn func(c *components) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	entry := s.log.WithField("op", op).WithFields(fields)
	start := time.Now()

	err := retryWithBackoff(ctx, op, func() error {
		return db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
			return fn(s.bind(tx))
		})
	})
	if err != nil {
		entry.WithError(err).Debug("rolled back")
		return err
	}
	entry.WithField("elapsed", time.Since(start)).Trace("committed")
	return nil
}

// read runs fn against the pool. Readers see the last committed state.
func (s *Store) read(ctx context.Context, fn func(c *components) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s.bind(s.db))
}

func isNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}
