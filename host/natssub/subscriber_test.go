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

package natssub

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/trivago/tgo/ttesting"

	"github.com/trivago/conflux/core"
)

func TestParseHeaderTimestamp(t *testing.T) {
	expect := ttesting.NewExpect(t)

	ts, ok := parseHeaderTimestamp("1.100000000")
	expect.True(ok)
	expect.Equal(int64(1_100_000_000), ts)

	ts, ok = parseHeaderTimestamp("2")
	expect.True(ok)
	expect.Equal(int64(2_000_000_000), ts)

	_, ok = parseHeaderTimestamp("not-a-number")
	expect.False(ok)
}

func TestExtractTimestampNsFallsBackToReceiptTime(t *testing.T) {
	expect := ttesting.NewExpect(t)

	msg := &nats.Msg{Subject: "topic.a", Data: []byte("payload")}
	before := time.Now().UnixNano()
	ts := extractTimestampNs(msg)
	after := time.Now().UnixNano()

	expect.True(ts >= before)
	expect.True(ts <= after)
}

func TestExtractTimestampNsUsesHeader(t *testing.T) {
	expect := ttesting.NewExpect(t)

	msg := &nats.Msg{Subject: "topic.a", Data: []byte("payload"), Header: nats.Header{}}
	msg.Header.Set(TimestampHeader, "5.250000000")

	expect.Equal(int64(5_250_000_000), extractTimestampNs(msg))
}

func TestStartRejectsUnknownTopicBeforeSubscribing(t *testing.T) {
	expect := ttesting.NewExpect(t)

	sync, err := core.New([]string{"a"}, core.Config{WindowSizeNs: core.WindowInfinite, BufferSize: 2, DropPolicy: core.RejectNew})
	expect.NoError(err)

	sub := New(nil, sync, nil)
	err = sub.Start([]TopicSubject{{Topic: "unregistered", Subject: "x.y"}})
	expect.NotNil(err)

	_, isUnknown := err.(core.UnknownTopicError)
	expect.True(isUnknown)
}
