// Copyright 2015-2018 trivago N.V.
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

package core

import (
	"testing"

	"github.com/trivago/tgo/ttesting"
)

func newTestConfig(windowNs int64, bufferSize int, policy DropPolicy) Config {
	return Config{WindowSizeNs: windowNs, BufferSize: bufferSize, DropPolicy: policy}
}

// Scenario A — basic match (spec §8).
func TestScenarioABasicMatch(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a", "b"}, newTestConfig(100*int64(1e6), 10, RejectNew))
	expect.NoError(err)

	_, err = sync.Push("a", 1_000_000_000, "a1")
	expect.NoError(err)
	_, err = sync.Push("b", 1_000_000_000, "b1")
	expect.NoError(err)
	_, err = sync.Push("a", 1_100_000_000, "a2")
	expect.NoError(err)
	_, err = sync.Push("b", 1_100_000_000, "b2")
	expect.NoError(err)

	group, ok := sync.Poll()
	expect.True(ok)
	expect.Equal(int64(1_000_000_000), group.TimestampNs())

	group, ok = sync.Poll()
	expect.True(ok)
	expect.Equal(int64(1_100_000_000), group.TimestampNs())

	_, ok = sync.Poll()
	expect.False(ok)
}

// Scenario B — advance on skew (spec §8).
func TestScenarioBAdvanceOnSkew(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a", "b"}, newTestConfig(10*int64(1e6), 10, RejectNew))
	expect.NoError(err)

	sync.Push("a", 0, "a0")
	sync.Push("b", 100_000_000, "b0")
	sync.Push("a", 95_000_000, "a1")

	_, ok := sync.Poll()
	expect.False(ok)

	bufLen, err := sync.BufferLen("a")
	expect.NoError(err)
	expect.Equal(1, bufLen)

	group, ok := sync.Poll()
	expect.True(ok)
	expect.Equal(int64(95_000_000), group.TimestampNs())
}

// Scenario C — REJECT_NEW overflow (spec §8).
func TestScenarioCRejectNewOverflow(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a"}, newTestConfig(WindowInfinite, 2, RejectNew))
	expect.NoError(err)

	accepted, err := sync.Push("a", 1, "m1")
	expect.NoError(err)
	expect.True(accepted)

	accepted, err = sync.Push("a", 2, "m2")
	expect.NoError(err)
	expect.True(accepted)

	accepted, err = sync.Push("a", 3, "m3")
	expect.NoError(err)
	expect.False(accepted)

	bufLen, _ := sync.BufferLen("a")
	expect.Equal(2, bufLen)
}

// Scenario D — DROP_OLDEST overflow (spec §8).
func TestScenarioDDropOldestOverflow(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a"}, newTestConfig(WindowInfinite, 2, DropOldest))
	expect.NoError(err)

	for _, ts := range []int64{1, 2, 3} {
		accepted, err := sync.Push("a", ts, ts)
		expect.NoError(err)
		expect.True(accepted)
	}

	bufLen, _ := sync.BufferLen("a")
	expect.Equal(2, bufLen)

	group, ok := sync.Poll()
	expect.True(ok)
	payload, ts, ok := group.Get("a")
	expect.True(ok)
	expect.Equal(int64(2), ts)
	expect.Equal(int64(2), payload.(int64))
}

// Scenario E — unknown topic (spec §8).
func TestScenarioEUnknownTopic(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a"}, newTestConfig(WindowInfinite, 2, RejectNew))
	expect.NoError(err)

	_, err = sync.Push("b", 1, "x")
	expect.NotNil(err)

	_, isUnknown := err.(UnknownTopicError)
	expect.True(isUnknown)

	bufLen, _ := sync.BufferLen("a")
	expect.Equal(0, bufLen)
}

// Scenario F — infinite window (spec §8).
func TestScenarioFInfiniteWindow(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a", "b"}, newTestConfig(WindowInfinite, 10, RejectNew))
	expect.NoError(err)

	sync.Push("a", 1, "a0")
	sync.Push("b", 1_000_000_000, "b0")

	group, ok := sync.Poll()
	expect.True(ok)
	expect.Equal(int64(1), group.TimestampNs())
}

// Boundary — buffer_size=2, window=0, identical timestamps (spec §8.10).
func TestBoundaryIdenticalTimestampsZeroWindow(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a", "b"}, newTestConfig(0, 2, RejectNew))
	expect.NoError(err)

	sync.Push("a", 5, "a0")
	sync.Push("b", 5, "b0")
	sync.Push("a", 6, "a1")
	sync.Push("b", 6, "b1")

	group, ok := sync.Poll()
	expect.True(ok)
	expect.Equal(int64(5), group.TimestampNs())

	group, ok = sync.Poll()
	expect.True(ok)
	expect.Equal(int64(6), group.TimestampNs())

	_, ok = sync.Poll()
	expect.False(ok)
}

// Boundary — infinite window, single topic (spec §8.11).
func TestBoundarySingleTopicInfiniteWindow(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"only"}, newTestConfig(WindowInfinite, 4, RejectNew))
	expect.NoError(err)

	for _, ts := range []int64{10, 20, 30} {
		sync.Push("only", ts, ts)
	}

	count := 0
	for {
		_, ok := sync.Poll()
		if !ok {
			break
		}
		count++
	}
	expect.Equal(3, count)
	expect.True(sync.IsEmpty())
}

// Boundary — out-of-order push respects stable sorted insertion (spec §8.12, §4.2).
func TestBoundaryOutOfOrderPushSortedInsertion(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a"}, newTestConfig(WindowInfinite, 4, RejectNew))
	expect.NoError(err)

	sync.Push("a", 10, "ten")
	sync.Push("a", 30, "thirty")
	sync.Push("a", 20, "twenty") // late arrival, belongs between 10 and 30

	group, _ := sync.Poll()
	payload, ts, _ := group.Get("a")
	expect.Equal(int64(10), ts)
	expect.Equal("ten", payload)

	group, _ = sync.Poll()
	payload, ts, _ = group.Get("a")
	expect.Equal(int64(20), ts)
	expect.Equal("twenty", payload)

	group, _ = sync.Poll()
	payload, ts, _ = group.Get("a")
	expect.Equal(int64(30), ts)
	expect.Equal("thirty", payload)
}

// Invariant 9 — poll on an all-empty state is a repeatable no-op.
func TestInvariantPollOnEmptyIsIdempotent(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a", "b"}, newTestConfig(WindowInfinite, 4, RejectNew))
	expect.NoError(err)

	for i := 0; i < 5; i++ {
		_, ok := sync.Poll()
		expect.False(ok)
	}
}

// Invariant 1/2 — buffer_len stays within [0, buffer_size] and stays ordered.
func TestInvariantBufferBoundsAndOrdering(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a"}, newTestConfig(WindowInfinite, 3, DropOldest))
	expect.NoError(err)

	for _, ts := range []int64{5, 1, 9, 3, 7} {
		sync.Push("a", ts, ts)
		n, _ := sync.BufferLen("a")
		expect.True(n <= 3)

		msgs := sync.buffers[0].messages
		for i := 1; i < len(msgs); i++ {
			expect.True(msgs[i-1].timestampNs <= msgs[i].timestampNs)
		}
	}
}

// Invariant 5 — a non-emitting poll either advances by exactly one or
// returned due to an empty stream.
func TestInvariantNonEmittingPollReducesCountByOne(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a", "b"}, newTestConfig(1, 10, RejectNew))
	expect.NoError(err)

	sync.Push("a", 0, "a0")
	sync.Push("b", 1000, "b0")

	totalBefore := 0
	for _, topic := range sync.Topics() {
		n, _ := sync.BufferLen(topic)
		totalBefore += n
	}

	_, ok := sync.Poll()
	expect.False(ok)

	totalAfter := 0
	for _, topic := range sync.Topics() {
		n, _ := sync.BufferLen(topic)
		totalAfter += n
	}
	expect.Equal(totalBefore-1, totalAfter)
}

func TestIsReadyRequiresTwoPerStream(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a", "b"}, newTestConfig(WindowInfinite, 4, RejectNew))
	expect.NoError(err)

	expect.False(sync.IsReady())

	sync.Push("a", 1, "a0")
	sync.Push("b", 1, "b0")
	expect.False(sync.IsReady())

	sync.Push("a", 2, "a1")
	expect.False(sync.IsReady())

	sync.Push("b", 2, "b1")
	expect.True(sync.IsReady())
}

func TestDrainReturnsMaximalPrefix(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a", "b"}, newTestConfig(WindowInfinite, 10, RejectNew))
	expect.NoError(err)

	for _, ts := range []int64{1, 2, 3} {
		sync.Push("a", ts, ts)
		sync.Push("b", ts, ts)
	}

	groups := sync.Drain()
	expect.Equal(3, len(groups))
	expect.Equal(int64(1), groups[0].TimestampNs())
	expect.Equal(int64(3), groups[2].TimestampNs())
}

func TestNewRejectsInvalidArguments(t *testing.T) {
	expect := ttesting.NewExpect(t)

	_, err := New(nil, newTestConfig(WindowInfinite, 4, RejectNew))
	expect.NotNil(err)

	_, err = New([]string{"a", ""}, newTestConfig(WindowInfinite, 4, RejectNew))
	expect.NotNil(err)

	_, err = New([]string{"a", "a"}, newTestConfig(WindowInfinite, 4, RejectNew))
	expect.NotNil(err)

	_, err = New([]string{"a"}, newTestConfig(WindowInfinite, 1, RejectNew))
	expect.NotNil(err)
}

func TestPushNegativeTimestampIsInvalidArgument(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := New([]string{"a"}, newTestConfig(WindowInfinite, 4, RejectNew))
	expect.NoError(err)

	_, err = sync.Push("a", -1, "x")
	expect.NotNil(err)

	_, isInvalid := err.(InvalidArgumentError)
	expect.True(isInvalid)
}
