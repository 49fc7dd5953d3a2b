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

// Package nperrors defines the sentinel errors nodepack's core
// components use to decide how to react to a failure, as opposed to
// merely reporting it.
package nperrors

import "errors"

// Precondition failures. Callers check these with errors.Is; the CLI
// reports them and exits 1.
var (
	// ErrSourceNotFound is returned by Packer when the source tree
	// doesn't exist.
	ErrSourceNotFound = errors.New("nodepack: source path not found")

	// ErrDatabaseNotFound is returned by Extractor and Status when the
	// snapshot file doesn't exist.
	ErrDatabaseNotFound = errors.New("nodepack: database not found")

	// ErrOutputExists is returned by Extractor when the output
	// directory already exists and is not empty, and the caller didn't
	// ask to overwrite it. An existing empty directory is accepted.
	ErrOutputExists = errors.New("nodepack: output path already exists")

	// ErrClosed is returned by Store operations called after Close.
	ErrClosed = errors.New("nodepack: store is closed")

	// ErrBlobMissing indicates a file row references a blob digest
	// absent from the blobs table. Extractor logs and skips; it is
	// never returned to a Packer caller since Packer always inserts
	// the blob before the file in the same transaction.
	ErrBlobMissing = errors.New("nodepack: referenced blob missing from store")
)
