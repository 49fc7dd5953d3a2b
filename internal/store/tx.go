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

import (
	"database/sql"
	"fmt"
)

// FileRow is a denormalized file record joined against its owning
// package, as returned by GetAllFiles for the Extractor and Status
// components.
type FileRow struct {
	PackageID    int64
	PackagePath  string
	RelativePath string
	BlobHash     string
	Mode         uint32
	Mtime        int64
}

func setMetadata(db dbTx, key, value string) error {
	_, err := db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("store: set metadata %q: %w", key, err)
	}
	return nil
}

func getMetadata(db dbTx, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get metadata %q: %w", key, err)
	}
	return value, true, nil
}

// insertPackage upserts by (name, version, path) in a single
// statement: inserting a triple that already exists returns the
// existing row's id instead of creating a duplicate package row.
func insertPackage(db dbTx, name, version, path string) (int64, error) {
	var id int64
	err := db.QueryRow(
		`INSERT INTO packages (name, version, path) VALUES (?, ?, ?)
		 ON CONFLICT(name, version, path) DO UPDATE SET path = excluded.path
		 RETURNING id`,
		name, version, path,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: insert package %s@%s: %w", name, version, err)
	}
	return id, nil
}

func hasBlob(db dbTx, digest string) (bool, error) {
	var exists int
	err := db.QueryRow(`SELECT 1 FROM blobs WHERE hash = ?`, digest).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: has blob %s: %w", digest, err)
	}
	return true, nil
}

// insertBlob is insert-or-ignore: identical content under the same
// digest never needs rewriting, and a second writer racing on the
// same digest (across packages in one pack run) must not error.
func insertBlob(db dbTx, digest string, compressed []byte, originalLen, compressedLen int64) error {
	_, err := db.Exec(
		`INSERT INTO blobs (hash, content, original_size, compressed_size)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(hash) DO NOTHING`,
		digest, compressed, originalLen, compressedLen,
	)
	if err != nil {
		return fmt.Errorf("store: insert blob %s: %w", digest, err)
	}
	return nil
}

func getBlob(db dbTx, digest string) ([]byte, bool, error) {
	var content []byte
	err := db.QueryRow(`SELECT content FROM blobs WHERE hash = ?`, digest).Scan(&content)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get blob %s: %w", digest, err)
	}
	return content, true, nil
}

func insertFile(db dbTx, packageID int64, relativePath, digest string, mode uint32, mtime int64) error {
	_, err := db.Exec(
		`INSERT INTO files (package_id, relative_path, blob_hash, mode, mtime)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(package_id, relative_path) DO UPDATE SET
			blob_hash = excluded.blob_hash,
			mode      = excluded.mode,
			mtime     = excluded.mtime`,
		packageID, relativePath, digest, mode, mtime,
	)
	if err != nil {
		return fmt.Errorf("store: insert file %s: %w", relativePath, err)
	}
	return nil
}

func getAllFiles(db dbTx) ([]FileRow, error) {
	rows, err := db.Query(
		`SELECT f.package_id, p.path, f.relative_path, f.blob_hash, f.mode, f.mtime
		 FROM files f JOIN packages p ON p.id = f.package_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: get all files: %w", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		var r FileRow
		if err := rows.Scan(&r.PackageID, &r.PackagePath, &r.RelativePath, &r.BlobHash, &r.Mode, &r.Mtime); err != nil {
			return nil, fmt.Errorf("store: scan file row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate file rows: %w", err)
	}
	return out, nil
}

func getTotalFileCount(db dbTx) (int64, error) {
	var count int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&count); err != nil {
		return 0, fmt.Errorf("store: get total file count: %w", err)
	}
	return count, nil
}

func getBlobStats(db dbTx) (BlobStats, error) {
	var stats BlobStats
	err := db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(original_size), 0), COALESCE(SUM(compressed_size), 0) FROM blobs`,
	).Scan(&stats.Count, &stats.TotalOriginal, &stats.TotalCompressed)
	if err != nil {
		return BlobStats{}, fmt.Errorf("store: get blob stats: %w", err)
	}
	return stats, nil
}
