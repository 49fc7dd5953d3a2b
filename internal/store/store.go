/*
Copyright 2026 The Perkeep Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package store implements nodepack's content-addressed blob and
// package metadata storage over an embedded SQLite database.
//
// It is grounded on camlistore's pkg/sorted/sqlkv (the prepared-query
// cache and Serial mutex that works around SQLite's single-writer
// locking) and pkg/sorted/sqlite/dbschema.go (CREATE TABLE + WAL
// pragma on open), adapted from a generic key/value store to the four
// tables nodepack actually needs.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/perkeep/nodepack/internal/nperrors"
)

// dbTx is satisfied by both *sql.DB and *sql.Tx, letting the read/write
// helpers in tx.go run against either a bare connection or an open
// transaction.
type dbTx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store owns the database handle for one snapshot file. Per spec, it
// has a single exclusive writer; mu mirrors sqlkv's Serial mutex, which
// exists because SQLite's own locking returns "database is locked"
// under concurrent access from one process more readily than one
// might expect.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	closed bool
	log    zerolog.Logger
}

// Open creates the schema if absent and returns a Store backed by the
// SQLite file at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // one connection: we serialize writes ourselves anyway

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", pragma, err)
		}
	}
	for _, stmt := range createTableStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: create schema: %w", err)
		}
	}

	s := &Store{db: db, path: path, log: log}
	if err := s.SetMetadata("schema_version", schemaVersion); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle. Operations on a closed Store
// return nperrors.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}

func (s *Store) checkOpen() error {
	if s.closed {
		return nperrors.ErrClosed
	}
	return nil
}

// SetMetadata upserts a metadata key/value pair.
func (s *Store) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	return setMetadata(s.db, key, value)
}

// GetMetadata returns the value for key, or ok=false if absent.
func (s *Store) GetMetadata(key string) (value string, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return "", false, err
	}
	return getMetadata(s.db, key)
}

// InsertPackage upserts by (name, version, path) and returns the row id.
func (s *Store) InsertPackage(name, version, path string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return insertPackage(s.db, name, version, path)
}

// HasBlob reports whether digest is already stored.
func (s *Store) HasBlob(digest string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	return hasBlob(s.db, digest)
}

// InsertBlob stores compressed content under digest if absent
// (insert-or-ignore).
func (s *Store) InsertBlob(digest string, compressed []byte, originalLen, compressedLen int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	return insertBlob(s.db, digest, compressed, originalLen, compressedLen)
}

// GetBlob returns the compressed bytes for digest, or ok=false if
// absent.
func (s *Store) GetBlob(digest string) (content []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, false, err
	}
	return getBlob(s.db, digest)
}

// InsertFile upserts a file row by (packageID, relativePath).
func (s *Store) InsertFile(packageID int64, relativePath, digest string, mode uint32, mtime int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	return insertFile(s.db, packageID, relativePath, digest, mode, mtime)
}

// GetAllFiles returns every file row, joined with its package's path.
func (s *Store) GetAllFiles() ([]FileRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return getAllFiles(s.db)
}

// GetTotalFileCount returns the number of file rows.
func (s *Store) GetTotalFileCount() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return getTotalFileCount(s.db)
}

// BlobStats summarizes the blobs table.
type BlobStats struct {
	Count           int64
	TotalOriginal   int64
	TotalCompressed int64
}

// GetBlobStats aggregates blob counts and sizes.
func (s *Store) GetBlobStats() (BlobStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return BlobStats{}, err
	}
	return getBlobStats(s.db)
}

// Transaction runs fn inside a single write transaction, holding the
// Store's exclusive-writer lock for the duration. fn's own return
// value is forwarded to the caller; any error aborts and rolls back.
//
// It's a package-level generic function rather than a method because
// Go methods can't carry their own type parameters.
func Transaction[T any](s *Store, fn func(tx *Tx) (T, error)) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return zero, err
	}
	sqlTx, err := s.db.Begin()
	if err != nil {
		return zero, fmt.Errorf("store: begin transaction: %w", err)
	}
	tx := &Tx{tx: sqlTx}
	result, err := fn(tx)
	if err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.log.Warn().Err(rbErr).Msg("store: rollback failed")
		}
		return zero, err
	}
	if err := sqlTx.Commit(); err != nil {
		return zero, fmt.Errorf("store: commit: %w", err)
	}
	return result, nil
}

// Tx is the write surface available inside Transaction's callback. It
// exposes the same write operations as Store, bound to the open
// transaction instead of the bare connection.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) InsertPackage(name, version, path string) (int64, error) {
	return insertPackage(t.tx, name, version, path)
}

func (t *Tx) HasBlob(digest string) (bool, error) {
	return hasBlob(t.tx, digest)
}

func (t *Tx) InsertBlob(digest string, compressed []byte, originalLen, compressedLen int64) error {
	return insertBlob(t.tx, digest, compressed, originalLen, compressedLen)
}

func (t *Tx) InsertFile(packageID int64, relativePath, digest string, mode uint32, mtime int64) error {
	return insertFile(t.tx, packageID, relativePath, digest, mode, mtime)
}

func (t *Tx) SetMetadata(key, value string) error {
	return setMetadata(t.tx, key, value)
}
