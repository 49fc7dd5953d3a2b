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

// Package packer orchestrates Scanner -> Hasher -> Compressor -> Store
// into a single write transaction that produces a snapshot database.
//
// Grounded on cmd/camput's upload driver (files.go's run/TreeUpload):
// a walk feeds a worker pool that does the CPU-bound work, and a
// single goroutine performs the serialized writes against the
// single-writer store, mirroring camput's separation between hashing
// workers and the one connection that talks to the blob server.
package packer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/perkeep/nodepack/internal/compressor"
	"github.com/perkeep/nodepack/internal/hasher"
	"github.com/perkeep/nodepack/internal/nperrors"
	"github.com/perkeep/nodepack/internal/scanner"
	"github.com/perkeep/nodepack/internal/store"
	"github.com/perkeep/nodepack/internal/workerpool"
)

// ProgressFunc matches the contract shared by scanner, packer,
// extractor and status: (current, total, message) purely for
// observation.
type ProgressFunc func(current, total int, message string)

// Options configures a Pack run.
type Options struct {
	SourcePath      string
	OutputPath      string
	CompressLevel   int // passed through to compressor.Compress
	IncludeLockfile bool
	Workers         int // 0 means GOMAXPROCS
	Logger          zerolog.Logger
	Progress        ProgressFunc
}

// Summary reports what a Pack run produced.
type Summary struct {
	PackageCount    int
	FileCount       int
	BlobCount       int
	Deduplicated    int
	TotalSize       int64
	CompressedSize  int64
}

// hashedFile is the result of the parallel hash/compress stage, ready
// for the single serialized writer to insert.
type hashedFile struct {
	entry        scanner.FileEntry
	digest       string
	compressed   []byte
	originalSize int64
}

// Pack scans opts.SourcePath and writes a fresh snapshot at
// opts.OutputPath, overwriting any existing one.
func Pack(opts Options) (Summary, error) {
	runID := uuid.New().String()
	log := opts.Logger.With().Str("run_id", runID).Logger()

	sourcePath, err := filepath.Abs(opts.SourcePath)
	if err != nil {
		return Summary{}, fmt.Errorf("packer: resolve source path: %w", err)
	}
	if info, statErr := os.Stat(sourcePath); statErr != nil || !info.IsDir() {
		return Summary{}, nperrors.ErrSourceNotFound
	}

	if err := removeOutputAndJournals(opts.OutputPath); err != nil {
		return Summary{}, err
	}

	log.Info().Str("source", sourcePath).Str("output", opts.OutputPath).Msg("packer: starting pack")

	scanResult, err := scanner.Scan(sourcePath, func(done, total int, relativePath string) {
		if opts.Progress != nil {
			opts.Progress(done, total, relativePath)
		}
	})
	if err != nil {
		return Summary{}, fmt.Errorf("packer: scan %s: %w", sourcePath, err)
	}

	s, err := store.Open(opts.OutputPath, log)
	if err != nil {
		return Summary{}, err
	}
	defer s.Close()

	if err := seedMetadata(s, sourcePath); err != nil {
		return Summary{}, err
	}
	if opts.IncludeLockfile {
		if err := recordLockfileHash(s, sourcePath); err != nil {
			return Summary{}, err
		}
	}

	summary, err := writeSnapshot(s, scanResult, opts)
	if err != nil {
		return Summary{}, err
	}
	summary.PackageCount = len(scanResult.Packages)
	return summary, nil
}

func removeOutputAndJournals(outputPath string) error {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(outputPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("packer: remove existing %s%s: %w", outputPath, suffix, err)
		}
	}
	return nil
}

func seedMetadata(s *store.Store, sourcePath string) error {
	seeds := map[string]string{
		"created_at":   time.Now().UTC().Format(time.RFC3339),
		"node_version": runtime.Version(),
		"source_path":  sourcePath,
	}
	for k, v := range seeds {
		if err := s.SetMetadata(k, v); err != nil {
			return err
		}
	}
	return nil
}

func recordLockfileHash(s *store.Store, sourcePath string) error {
	lockfilePath := filepath.Join(sourcePath, "..", "package-lock.json")
	data, err := os.ReadFile(lockfilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // absence is not an error
		}
		return fmt.Errorf("packer: read lockfile %s: %w", lockfilePath, err)
	}
	sum := sha256.Sum256(data)
	return s.SetMetadata("lockfile_hash", hex.EncodeToString(sum[:]))
}

// writeSnapshot performs the single write transaction: parallel
// hash/compress of every file feeds a serialized sequence of
// insertPackage/insertBlob/insertFile calls.
func writeSnapshot(s *store.Store, scanResult scanner.Result, opts Options) (Summary, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return store.Transaction(s, func(tx *store.Tx) (Summary, error) {
		var summary Summary
		total := scanResult.TotalFiles
		done := 0

		for _, pkg := range scanResult.Packages {
			pkgID, err := tx.InsertPackage(pkg.Name, pkg.Version, pkg.RelativePath)
			if err != nil {
				return Summary{}, err
			}

			hashed := workerpool.Run(workers, pkg.Files, func(entry scanner.FileEntry) (hashedFile, error) {
				return hashAndCompress(entry, opts.CompressLevel)
			})

			for i, r := range hashed {
				done++
				if r.Err != nil {
					return Summary{}, fmt.Errorf("packer: hash/compress %s: %w", pkg.Files[i].RelativePath, r.Err)
				}
				hf := r.Value

				exists, err := tx.HasBlob(hf.digest)
				if err != nil {
					return Summary{}, err
				}
				if exists {
					summary.Deduplicated++
				} else {
					if err := tx.InsertBlob(hf.digest, hf.compressed, hf.originalSize, int64(len(hf.compressed))); err != nil {
						return Summary{}, err
					}
					summary.BlobCount++
					summary.CompressedSize += int64(len(hf.compressed))
				}

				mtime := hf.entry.MtimeMS
				if err := tx.InsertFile(pkgID, hf.entry.RelativePath, hf.digest, uint32(hf.entry.Mode.Perm()), mtime); err != nil {
					return Summary{}, err
				}
				summary.FileCount++
				summary.TotalSize += hf.entry.Size

				if opts.Progress != nil {
					opts.Progress(done, total, hf.entry.RelativePath)
				}
			}
		}
		return summary, nil
	})
}

func hashAndCompress(entry scanner.FileEntry, level int) (hashedFile, error) {
	content, err := os.ReadFile(entry.AbsolutePath)
	if err != nil {
		return hashedFile{}, fmt.Errorf("read %s: %w", entry.AbsolutePath, err)
	}
	digest := hasher.Digest(content)
	compressed, err := compressor.Compress(content, level)
	if err != nil {
		return hashedFile{}, err
	}
	return hashedFile{
		entry:        entry,
		digest:       digest,
		compressed:   compressed,
		originalSize: int64(len(content)),
	}, nil
}
