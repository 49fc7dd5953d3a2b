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

package compressor

import (
	"bytes"
	"errors"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	for level := 1; level <= 9; level++ {
		orig := []byte("the quick brown fox jumps over the lazy dog, repeated for good measure. " +
			"the quick brown fox jumps over the lazy dog.")
		compressed, err := Compress(orig, level)
		if err != nil {
			t.Fatalf("level %d: Compress: %v", level, err)
		}
		got, err := Decompress(compressed)
		if err != nil {
			t.Fatalf("level %d: Decompress: %v", level, err)
		}
		if !bytes.Equal(got, orig) {
			t.Errorf("level %d: round trip mismatch", level)
		}
	}
}

func TestDecompressMalformed(t *testing.T) {
	_, err := Decompress([]byte("not gzip data"))
	if err == nil {
		t.Fatal("expected error decompressing malformed input")
	}
	var de *DecompressError
	if !errors.As(err, &de) {
		t.Errorf("expected *DecompressError, got %T", err)
	}
}

func TestCompressEmpty(t *testing.T) {
	compressed, err := Compress(nil, 6)
	if err != nil {
		t.Fatalf("Compress(nil): %v", err)
	}
	got, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d bytes", len(got))
	}
}
