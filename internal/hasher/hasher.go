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

// Package hasher computes the content digests nodepack uses to
// address blobs. It is pure: no I/O, no errors, no package-level state.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the lowercase hex-encoded SHA-256 digest of b.
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// DigestText returns the digest of s encoded as UTF-8.
func DigestText(s string) string {
	return Digest([]byte(s))
}
