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

// Package scanner walks a Node.js dependency tree and turns it into a
// stream of package and file records, aware of both the flat
// node_modules layout and pnpm's .pnpm symlink-farm layout.
//
// Grounded on cmd/camput/files.go's statPath/TreeUpload walking, with
// the permanode/schema machinery stripped out: this scanner only ever
// produces flat descriptive records, never blobrefs or uploads.
package scanner

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileEntry describes one regular file inside a package directory.
type FileEntry struct {
	RelativePath string // relative to the package directory
	AbsolutePath string
	Mode         fs.FileMode
	Size         int64
	MtimeMS      int64
}

// Package is one discovered dependency-tree package together with its
// files.
type Package struct {
	Name         string
	Version      string
	RelativePath string // path recorded verbatim in the snapshot, e.g. "@scope/pkg" or ".pnpm/foo@1.0.0/node_modules/foo"
	AbsolutePath string
	Files        []FileEntry
}

// Result is the output of a full scan.
type Result struct {
	Packages   []Package
	TotalFiles int
	TotalSize  int64
}

// ProgressFunc is invoked once per package discovered, not per file.
type ProgressFunc func(done, total int, relativePath string)

// manifest mirrors the fields of package.json that packaging cares
// about; everything else is ignored.
type manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

const (
	pnpmDir = ".pnpm"
)

var skipFlatNames = map[string]bool{
	".bin":   true,
	".cache": true,
	pnpmDir:  true,
}

// Scan walks root and returns every package it can find, according to
// the layout (flat or symlink-farm) detected at root.
func Scan(root string, progress ProgressFunc) (Result, error) {
	candidates, err := discoverCandidates(root)
	if err != nil {
		return Result{}, err
	}

	var result Result
	total := len(candidates)
	for i, c := range candidates {
		pkg, ok, err := readPackage(c.absolutePath, c.relativePath)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			if progress != nil {
				progress(i+1, total, c.relativePath)
			}
			continue
		}
		result.Packages = append(result.Packages, pkg)
		result.TotalFiles += len(pkg.Files)
		for _, f := range pkg.Files {
			result.TotalSize += f.Size
		}
		if progress != nil {
			progress(i+1, total, c.relativePath)
		}
	}
	return result, nil
}

// candidate is a directory that might be a package, paired with the
// relative path it should be recorded under if it is one.
type candidate struct {
	absolutePath string
	relativePath string
}

func discoverCandidates(root string) ([]candidate, error) {
	if isSymlinkFarm(root) {
		return discoverSymlinkFarm(root)
	}
	return discoverFlat(root)
}

func isSymlinkFarm(root string) bool {
	info, err := os.Stat(filepath.Join(root, pnpmDir))
	return err == nil && info.IsDir()
}

func discoverFlat(root string) ([]candidate, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var out []candidate
	for _, e := range entries {
		if !e.IsDir() || skipFlatNames[e.Name()] {
			continue
		}
		if strings.HasPrefix(e.Name(), "@") {
			scopePath := filepath.Join(root, e.Name())
			scoped, err := os.ReadDir(scopePath)
			if err != nil {
				continue
			}
			for _, s := range scoped {
				if !s.IsDir() {
					continue
				}
				out = append(out, candidate{
					absolutePath: filepath.Join(scopePath, s.Name()),
					relativePath: e.Name() + "/" + s.Name(),
				})
			}
			continue
		}
		out = append(out, candidate{
			absolutePath: filepath.Join(root, e.Name()),
			relativePath: e.Name(),
		})
	}
	return out, nil
}

func discoverSymlinkFarm(root string) ([]candidate, error) {
	farmRoot := filepath.Join(root, pnpmDir)
	entries, err := os.ReadDir(farmRoot)
	if err != nil {
		return nil, err
	}
	var out []candidate
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || e.Name() == "node_modules" {
			continue
		}
		innerModules := filepath.Join(farmRoot, e.Name(), "node_modules")
		info, err := os.Stat(innerModules)
		if err != nil || !info.IsDir() {
			continue
		}
		pkgEntries, err := os.ReadDir(innerModules)
		if err != nil {
			continue
		}
		for _, p := range pkgEntries {
			if !p.IsDir() {
				continue
			}
			if strings.HasPrefix(p.Name(), "@") {
				scopePath := filepath.Join(innerModules, p.Name())
				scoped, err := os.ReadDir(scopePath)
				if err != nil {
					continue
				}
				for _, s := range scoped {
					if !s.IsDir() {
						continue
					}
					out = append(out, candidate{
						absolutePath: filepath.Join(scopePath, s.Name()),
						relativePath: pnpmDir + "/" + e.Name() + "/node_modules/" + p.Name() + "/" + s.Name(),
					})
				}
				continue
			}
			out = append(out, candidate{
				absolutePath: filepath.Join(innerModules, p.Name()),
				relativePath: pnpmDir + "/" + e.Name() + "/node_modules/" + p.Name(),
			})
		}
	}
	return out, nil
}

// readPackage parses pkgPath/package.json and walks pkgPath for
// files. ok is false if the manifest is missing or malformed, in
// which case the package is skipped silently.
func readPackage(pkgPath, relativePath string) (Package, bool, error) {
	data, err := os.ReadFile(filepath.Join(pkgPath, "package.json"))
	if err != nil {
		return Package{}, false, nil
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Package{}, false, nil
	}

	name := m.Name
	if name == "" {
		name = "unknown"
	}
	version := m.Version
	if version == "" {
		version = "0.0.0"
	}

	files, err := walkFiles(pkgPath)
	if err != nil {
		return Package{}, false, err
	}

	return Package{
		Name:         name,
		Version:      version,
		RelativePath: relativePath,
		AbsolutePath: pkgPath,
		Files:        files,
	}, true, nil
}

func walkFiles(pkgPath string) ([]FileEntry, error) {
	var files []FileEntry
	err := filepath.WalkDir(pkgPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil // symlinks and special files are not emitted
		}
		rel, err := filepath.Rel(pkgPath, path)
		if err != nil {
			return err
		}
		files = append(files, FileEntry{
			RelativePath: rel,
			AbsolutePath: path,
			Mode:         info.Mode(),
			Size:         info.Size(),
			MtimeMS:      info.ModTime().UnixMilli(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
