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
	"testing"

	"github.com/trivago/conflux/core"
	"github.com/trivago/tgo/ttesting"
)

// The cgo boundary itself (conflux.go) can't be exercised from a plain
// Go test without a C caller; these tests cover the handle tables that
// back it, which is where the actual bookkeeping logic lives, and the
// drop-policy code mapping it uses.

func TestHandleTablePutGetDelete(t *testing.T) {
	expect := ttesting.NewExpect(t)
	table := &handleTable{entries: make(map[uint64]*core.Synchronizer)}

	sync, err := core.New([]string{"a"}, core.Config{WindowSizeNs: core.WindowInfinite, BufferSize: 4, DropPolicy: core.RejectNew})
	expect.NoError(err)

	id := table.put(sync)
	expect.True(id != 0)

	got, ok := table.get(id)
	expect.True(ok)
	expect.Equal(sync, got)

	table.delete(id)
	_, ok = table.get(id)
	expect.False(ok)
}

func TestHandleTableAssignsDistinctIDs(t *testing.T) {
	expect := ttesting.NewExpect(t)
	table := &handleTable{entries: make(map[uint64]*core.Synchronizer)}

	sync, err := core.New([]string{"a"}, core.Config{WindowSizeNs: core.WindowInfinite, BufferSize: 4, DropPolicy: core.RejectNew})
	expect.NoError(err)

	first := table.put(sync)
	second := table.put(sync)
	expect.True(first != second)
}

func TestPayloadTableTakeIsOneShot(t *testing.T) {
	expect := ttesting.NewExpect(t)
	table := &payloadTable{entries: make(map[uint64]interface{})}

	id := table.put("hello")

	value, ok := table.take(id)
	expect.True(ok)
	expect.Equal("hello", value)

	_, ok = table.take(id)
	expect.False(ok)
}

func TestPayloadTableTakeUnknownID(t *testing.T) {
	expect := ttesting.NewExpect(t)
	table := &payloadTable{entries: make(map[uint64]interface{})}

	_, ok := table.take(999)
	expect.False(ok)
}

func TestFFIDropPolicyMapping(t *testing.T) {
	expect := ttesting.NewExpect(t)

	policy, err := ffiDropPolicy(0)
	expect.NoError(err)
	expect.Equal(core.RejectNew, policy)

	policy, err = ffiDropPolicy(1)
	expect.NoError(err)
	expect.Equal(core.DropOldest, policy)

	_, err = ffiDropPolicy(42)
	expect.NotNil(err)
}
