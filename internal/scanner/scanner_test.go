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

package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePackage(t *testing.T, dir, name, version string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	manifest := `{"name":"` + name + `","version":"` + version + `"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0o644))
	for rel, content := range files {
		full := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestScanFlatLayout(t *testing.T) {
	root := t.TempDir()
	writePackage(t, filepath.Join(root, "lodash"), "lodash", "4.17.21", map[string]string{
		"index.js": "module.exports = {}",
	})

	result, err := Scan(root, nil)
	require.NoError(t, err)
	require.Len(t, result.Packages, 1)
	require.Equal(t, "lodash", result.Packages[0].Name)
	require.Equal(t, "lodash", result.Packages[0].RelativePath)
	require.Equal(t, 1, result.TotalFiles)
}

func TestScanFlatLayoutSkipsReservedNames(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".bin"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".cache"), 0o755))
	writePackage(t, filepath.Join(root, "chalk"), "chalk", "5.3.0", map[string]string{"a.js": "x"})

	result, err := Scan(root, nil)
	require.NoError(t, err)
	require.Len(t, result.Packages, 1)
	require.Equal(t, "chalk", result.Packages[0].Name)
}

func TestScanFlatLayoutScopedPackage(t *testing.T) {
	root := t.TempDir()
	writePackage(t, filepath.Join(root, "@scope", "pkg"), "@scope/pkg", "1.0.0", map[string]string{
		"a.js": "x",
	})

	result, err := Scan(root, nil)
	require.NoError(t, err)
	require.Len(t, result.Packages, 1)
	require.Equal(t, "@scope/pkg", result.Packages[0].RelativePath)
}

func TestScanSkipsPackageWithMissingManifest(t *testing.T) {
	root := t.TempDir()
	noManifest := filepath.Join(root, "broken")
	require.NoError(t, os.MkdirAll(noManifest, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(noManifest, "index.js"), []byte("x"), 0o644))
	writePackage(t, filepath.Join(root, "ok"), "ok", "1.0.0", map[string]string{"index.js": "x"})

	result, err := Scan(root, nil)
	require.NoError(t, err)
	require.Len(t, result.Packages, 1)
	require.Equal(t, "ok", result.Packages[0].Name)
}

func TestScanSkipsPackageWithMalformedManifest(t *testing.T) {
	root := t.TempDir()
	broken := filepath.Join(root, "broken")
	require.NoError(t, os.MkdirAll(broken, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, "package.json"), []byte("{not json"), 0o644))

	result, err := Scan(root, nil)
	require.NoError(t, err)
	require.Empty(t, result.Packages)
}

func TestScanDetectsSymlinkFarmLayout(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, pnpmDir, "foo@1.0.0", "node_modules", "foo")
	writePackage(t, pkgDir, "foo", "1.0.0", map[string]string{"index.js": "x"})

	result, err := Scan(root, nil)
	require.NoError(t, err)
	require.Len(t, result.Packages, 1)
	require.Equal(t, ".pnpm/foo@1.0.0/node_modules/foo", result.Packages[0].RelativePath)
}

func TestScanSymlinkFarmScopedPackage(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, pnpmDir, "@scope+pkg@1.0.0", "node_modules", "@scope", "pkg")
	writePackage(t, pkgDir, "@scope/pkg", "1.0.0", map[string]string{"index.js": "x"})

	result, err := Scan(root, nil)
	require.NoError(t, err)
	require.Len(t, result.Packages, 1)
	require.Equal(t, ".pnpm/@scope+pkg@1.0.0/node_modules/@scope/pkg", result.Packages[0].RelativePath)
}

func TestScanProgressCallbackFiresOncePerPackage(t *testing.T) {
	root := t.TempDir()
	writePackage(t, filepath.Join(root, "a"), "a", "1.0.0", map[string]string{"x.js": "1"})
	writePackage(t, filepath.Join(root, "b"), "b", "1.0.0", map[string]string{"x.js": "1", "y.js": "2"})

	var calls int
	_, err := Scan(root, func(done, total int, relativePath string) {
		calls++
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls, "progress fires once per package, not per file")
}
