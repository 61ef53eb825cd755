// Copyright 2015-2016 trivago GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"sync"

	"github.com/trivago/conflux/core"
)

// handleTable hands out opaque integer handles for Synchronizer values
// crossing the cgo boundary (payloads use payloadTable below). cgo forbids storing a Go
// pointer in C memory, so every value reachable from C code is looked
// up by integer handle instead, mirroring the contrib/native cgo
// wrappers' map[*C.type]Go-value pattern turned around: here the map
// key is the Go-side handle and the value is the Go object.
type handleTable struct {
	mu      sync.Mutex
	nextID  uint64
	entries map[uint64]*core.Synchronizer
}

var syncHandles = &handleTable{entries: make(map[uint64]*core.Synchronizer)}

func (t *handleTable) put(sync *core.Synchronizer) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.entries[id] = sync
	return id
}

func (t *handleTable) get(id uint64) (*core.Synchronizer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.entries[id]
	return s, ok
}

func (t *handleTable) delete(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
}

// payloadTable holds payload values pushed across the boundary so the
// C side only ever carries an opaque integer identity for them, per
// spec: "the core never dereferences it."
type payloadTable struct {
	mu      sync.Mutex
	nextID  uint64
	entries map[uint64]interface{}
}

var payloadHandles = &payloadTable{entries: make(map[uint64]interface{})}

func (t *payloadTable) put(value interface{}) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.entries[id] = value
	return id
}

func (t *payloadTable) take(id uint64) (interface{}, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.entries[id]
	delete(t.entries, id)
	return v, ok
}
