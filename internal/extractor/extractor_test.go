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

package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perkeep/nodepack/internal/logging"
	"github.com/perkeep/nodepack/internal/nperrors"
	"github.com/perkeep/nodepack/internal/packer"
)

func packTestTree(t *testing.T) (dbPath, source string) {
	t.Helper()
	root := t.TempDir()
	source = filepath.Join(root, "node_modules")
	pkgDir := filepath.Join(source, "a")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(`{"name":"a","version":"1.0.0"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "index.js"), []byte("hello"), 0o644))

	dbPath = filepath.Join(root, "node_modules.db")
	_, err := packer.Pack(packer.Options{
		SourcePath:    source,
		OutputPath:    dbPath,
		CompressLevel: 6,
		Logger:        logging.Nop(),
	})
	require.NoError(t, err)
	return dbPath, source
}

func TestExtractRoundTrip(t *testing.T) {
	dbPath, _ := packTestTree(t)
	out := filepath.Join(t.TempDir(), "restored")

	summary, err := Extract(Options{
		DatabasePath: dbPath,
		OutputPath:   out,
		Logger:       logging.Nop(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.TotalFiles)

	content, err := os.ReadFile(filepath.Join(out, "a", "index.js"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))
}

func TestExtractFailsWhenDatabaseMissing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "restored")
	_, err := Extract(Options{
		DatabasePath: filepath.Join(t.TempDir(), "missing.db"),
		OutputPath:   out,
		Logger:       logging.Nop(),
	})
	require.ErrorIs(t, err, nperrors.ErrDatabaseNotFound)
}

func TestExtractRefusesExistingOutputWithoutForce(t *testing.T) {
	dbPath, _ := packTestTree(t)
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "preexisting.txt"), []byte("x"), 0o644))

	_, err := Extract(Options{
		DatabasePath: dbPath,
		OutputPath:   out,
		Logger:       logging.Nop(),
	})
	require.ErrorIs(t, err, nperrors.ErrOutputExists)
}

func TestExtractWithForceOverwritesExisting(t *testing.T) {
	dbPath, _ := packTestTree(t)
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "preexisting.txt"), []byte("x"), 0o644))

	_, err := Extract(Options{
		DatabasePath: dbPath,
		OutputPath:   out,
		Force:        true,
		Logger:       logging.Nop(),
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(out, "a", "index.js"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))
}
