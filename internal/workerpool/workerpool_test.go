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

package workerpool

import (
	"errors"
	"testing"
)

func TestRunPreservesOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	results := Run(3, items, func(i int) (int, error) {
		return i * i, nil
	})
	for i, r := range results {
		want := items[i] * items[i]
		if r.Err != nil {
			t.Fatalf("item %d: unexpected error: %v", i, r.Err)
		}
		if r.Value != want {
			t.Errorf("item %d: got %d, want %d", i, r.Value, want)
		}
		if r.Index != i {
			t.Errorf("item %d: Index = %d, want %d", i, r.Index, i)
		}
	}
}

func TestRunCapturesPerItemErrors(t *testing.T) {
	boom := errors.New("boom")
	items := []int{1, 2, 3}
	results := Run(2, items, func(i int) (int, error) {
		if i == 2 {
			return 0, boom
		}
		return i, nil
	})
	if results[1].Err != boom {
		t.Errorf("expected boom error for item 2, got %v", results[1].Err)
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("unexpected errors on non-failing items: %v %v", results[0].Err, results[2].Err)
	}
}

func TestRunEmpty(t *testing.T) {
	results := Run(4, []int{}, func(i int) (int, error) { return i, nil })
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestRunUnboundedWorkers(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}
	results := Run(-1, items, func(i int) (int, error) { return i + 1, nil })
	for i, r := range results {
		if r.Value != items[i]+1 {
			t.Errorf("item %d: got %d, want %d", i, r.Value, items[i]+1)
		}
	}
}
