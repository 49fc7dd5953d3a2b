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

// Package compressor wraps gzip-member-format compression for blob
// storage. Like hasher, it is a pure codec: no filesystem or database
// access.
package compressor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// DecompressError wraps a failure to inflate a blob.
type DecompressError struct {
	Err error
}

func (e *DecompressError) Error() string { return fmt.Sprintf("compressor: decompress: %v", e.Err) }
func (e *DecompressError) Unwrap() error { return e.Err }

// Compress gzips b at the given level, which must be between
// gzip.BestSpeed (1) and gzip.BestCompression (9).
func Compress(b []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("compressor: new writer: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		w.Close()
		return nil, fmt.Errorf("compressor: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compressor: close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a gzip member produced by Compress.
func Decompress(b []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, &DecompressError{Err: err}
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecompressError{Err: err}
	}
	return out, nil
}
