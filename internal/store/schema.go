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

package store

const schemaVersion = "1"

// createTableStatements mirrors dbschema.go's CREATE-TABLE-per-string
// pattern, adapted from the teacher's generic rows/meta tables to
// nodepack's four concrete entities.
var createTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS metadata (
		key   TEXT PRIMARY KEY,
		value TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS packages (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		name    TEXT NOT NULL,
		version TEXT NOT NULL,
		path    TEXT NOT NULL,
		UNIQUE(name, version, path)
	)`,
	`CREATE TABLE IF NOT EXISTS blobs (
		hash            TEXT PRIMARY KEY,
		content         BLOB NOT NULL,
		original_size   INTEGER,
		compressed_size INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS files (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		package_id    INTEGER REFERENCES packages(id),
		relative_path TEXT NOT NULL,
		blob_hash     TEXT REFERENCES blobs(hash),
		mode          INTEGER,
		mtime         INTEGER,
		UNIQUE(package_id, relative_path)
	)`,
	`CREATE INDEX IF NOT EXISTS files_package_id_idx ON files(package_id)`,
	`CREATE INDEX IF NOT EXISTS files_blob_hash_idx ON files(blob_hash)`,
}

// pragmas enables write-ahead logging for concurrency and relaxes
// fsync behavior for throughput, per dbschema.go's EnableWAL.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
}
