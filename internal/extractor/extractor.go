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

// Package extractor materializes a packed snapshot back onto the
// filesystem, decompressing each referenced blob and restoring file
// permissions.
//
// Grounded on diskpacked.go's read path: a bounded cache of recently
// decompressed blobs avoids re-inflating the same shared dependency
// (lodash, react, etc.) once per file that references it.
package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/perkeep/nodepack/internal/compressor"
	"github.com/perkeep/nodepack/internal/nperrors"
	"github.com/perkeep/nodepack/internal/store"
)

// ProgressFunc matches the shared (current, total, message) contract.
type ProgressFunc func(current, total int, message string)

// Options configures an Extract run.
type Options struct {
	DatabasePath string
	OutputPath   string
	Force        bool // if false, refuse to extract into an existing non-empty directory
	Logger       zerolog.Logger
	Progress     ProgressFunc
}

// Summary reports what an Extract run restored.
type Summary struct {
	TotalFiles int
	TotalSize  int64
}

// blobCacheLimit bounds the in-memory decompressed-blob cache; entries
// larger than this are never cached, only decompressed on demand.
const blobCacheLimit = 100 * 1024

// Extract restores every file recorded in the snapshot at
// opts.DatabasePath into opts.OutputPath.
func Extract(opts Options) (Summary, error) {
	if _, err := os.Stat(opts.DatabasePath); err != nil {
		if os.IsNotExist(err) {
			return Summary{}, nperrors.ErrDatabaseNotFound
		}
		return Summary{}, fmt.Errorf("extractor: stat database %s: %w", opts.DatabasePath, err)
	}

	if !opts.Force {
		if exists, err := outputHasEntries(opts.OutputPath); err != nil {
			return Summary{}, err
		} else if exists {
			return Summary{}, nperrors.ErrOutputExists
		}
	}

	s, err := store.Open(opts.DatabasePath, opts.Logger)
	if err != nil {
		return Summary{}, err
	}
	defer s.Close()

	files, err := s.GetAllFiles()
	if err != nil {
		return Summary{}, err
	}

	cache := newBlobCache()
	var summary Summary
	total := len(files)
	for i, f := range files {
		content, ok, err := resolveBlob(s, cache, f.BlobHash)
		if err != nil {
			return Summary{}, err
		}
		if !ok {
			opts.Logger.Warn().Err(nperrors.ErrBlobMissing).Str("path", f.RelativePath).Str("digest", f.BlobHash).Msg("extractor: skipping file")
			if opts.Progress != nil {
				opts.Progress(i+1, total, f.RelativePath)
			}
			continue
		}

		destPath := filepath.Join(opts.OutputPath, f.PackagePath, f.RelativePath)
		if err := writeFile(destPath, content, f.Mode); err != nil {
			return Summary{}, err
		}
		summary.TotalFiles++
		summary.TotalSize += int64(len(content))

		if opts.Progress != nil {
			opts.Progress(i+1, total, f.RelativePath)
		}
	}
	return summary, nil
}

func outputHasEntries(outputPath string) (bool, error) {
	entries, err := os.ReadDir(outputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("extractor: read output dir %s: %w", outputPath, err)
	}
	return len(entries) > 0, nil
}

func writeFile(destPath string, content []byte, mode uint32) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("extractor: mkdir for %s: %w", destPath, err)
	}
	if err := os.WriteFile(destPath, content, 0o644); err != nil {
		return fmt.Errorf("extractor: write %s: %w", destPath, err)
	}
	// Permission application is best-effort and cross-platform
	// tolerant: failures here never abort extraction.
	_ = os.Chmod(destPath, os.FileMode(mode&0o777))
	return nil
}

// blobCache holds recently decompressed blob contents under
// blobCacheLimit bytes, avoiding repeated inflate of a shared
// dependency referenced by many files.
type blobCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newBlobCache() *blobCache {
	return &blobCache{items: make(map[string][]byte)}
}

func (c *blobCache) get(digest string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[digest]
	return v, ok
}

func (c *blobCache) put(digest string, content []byte) {
	if len(content) > blobCacheLimit {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[digest] = content
}

func resolveBlob(s *store.Store, cache *blobCache, digest string) ([]byte, bool, error) {
	if content, ok := cache.get(digest); ok {
		return content, true, nil
	}
	compressed, ok, err := s.GetBlob(digest)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	content, err := compressor.Decompress(compressed)
	if err != nil {
		return nil, false, fmt.Errorf("extractor: decompress blob %s: %w", digest, err)
	}
	cache.put(digest, content)
	return content, true, nil
}
