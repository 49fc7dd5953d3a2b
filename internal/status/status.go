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

// Package status diffs a snapshot database against the current state
// of the tree it was packed from, by re-hashing every file the
// snapshot knows about.
package status

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/perkeep/nodepack/internal/hasher"
	"github.com/perkeep/nodepack/internal/nperrors"
	"github.com/perkeep/nodepack/internal/store"
)

// ProgressFunc matches the shared (current, total, message) contract.
type ProgressFunc func(current, total int, message string)

// Options configures a Status run.
type Options struct {
	DatabasePath string
	TreePath     string
	Logger       zerolog.Logger
	Progress     ProgressFunc
}

// Report classifies every file the snapshot knows about relative to
// the tree on disk.
type Report struct {
	OnlyInDB  []string
	OnlyInFS  []string // reserved; always empty, per contract
	Modified  []string
	Unchanged int
}

// Diff compares the snapshot at opts.DatabasePath against the tree at
// opts.TreePath.
func Diff(opts Options) (Report, error) {
	if _, err := os.Stat(opts.DatabasePath); err != nil {
		if os.IsNotExist(err) {
			return Report{}, nperrors.ErrDatabaseNotFound
		}
		return Report{}, err
	}

	if _, err := os.Stat(opts.TreePath); err != nil {
		if os.IsNotExist(err) {
			opts.Logger.Warn().Str("tree", opts.TreePath).Msg("status: tree path does not exist")
			return Report{}, nil
		}
		return Report{}, err
	}

	s, err := store.Open(opts.DatabasePath, opts.Logger)
	if err != nil {
		return Report{}, err
	}
	defer s.Close()

	files, err := s.GetAllFiles()
	if err != nil {
		return Report{}, err
	}

	var report Report
	total := len(files)
	for i, f := range files {
		fullPath := filepath.Join(opts.TreePath, f.PackagePath, f.RelativePath)
		joined := filepath.Join(f.PackagePath, f.RelativePath)

		content, err := os.ReadFile(fullPath)
		switch {
		case os.IsNotExist(err):
			report.OnlyInDB = append(report.OnlyInDB, joined)
		case err != nil:
			report.Modified = append(report.Modified, joined)
		case hasher.Digest(content) != f.BlobHash:
			report.Modified = append(report.Modified, joined)
		default:
			report.Unchanged++
		}

		if opts.Progress != nil {
			opts.Progress(i+1, total, joined)
		}
	}
	return report, nil
}
