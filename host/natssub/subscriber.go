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

// Package natssub is the host subscription layer described as an
// external collaborator of the synchronization engine: it turns one
// NATS subject per topic into (topic, timestamp_ns, payload) pushes,
// and drains the Synchronizer after every push. It is the only place
// in this repository that owns a goroutine or touches the network on
// the engine's behalf — core.Synchronizer itself stays passive.
package natssub

import (
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/trivago/conflux/core"
	"github.com/trivago/conflux/internal/corelog"
)

// TimestampHeader is the NATS message header carrying the producer's
// timestamp, formatted as "<seconds>.<nanoseconds>" (the header-clock
// convention described for the host subscription layer). When absent,
// the subscriber falls back to its own receipt time.
const TimestampHeader = "Conflux-Ts"

// TopicSubject maps a Synchronizer topic name to the NATS subject it is
// fed from. Start checks only that each topic is registered with the
// Synchronizer; it does not reject several mappings for the same topic.
type TopicSubject struct {
	Topic   string
	Subject string
}

// GroupHandler receives every group the Synchronizer emits as a result
// of a push triggered by this subscriber.
type GroupHandler func(core.SyncGroup)

// Subscriber wires a set of NATS subjects to a core.Synchronizer: it
// subscribes to each subject, extracts a timestamp from incoming
// messages, and pushes them into the engine, draining and forwarding
// any resulting groups to the configured handler.
//
// Subscriptions are always fire-and-forget core NATS subscriptions (no
// JetStream durability, best effort QoS), matching the synchronizer's
// own "realtime sensors favor freshness" framing for DropOldest. Setting
// QueueGroup switches to a queue subscription, so each message goes to
// one member of the group; it does not add durability.
type Subscriber struct {
	conn        *nats.Conn
	sync        *core.Synchronizer
	handler     GroupHandler
	QueueGroup  string
	subs        []*nats.Subscription
	overflowLim map[string]*rate.Limiter
}

// New creates a Subscriber bound to an established NATS connection and
// a Synchronizer. The caller owns the connection's lifecycle.
func New(conn *nats.Conn, sync *core.Synchronizer, handler GroupHandler) *Subscriber {
	return &Subscriber{
		conn:        conn,
		sync:        sync,
		handler:     handler,
		overflowLim: make(map[string]*rate.Limiter),
	}
}

// Start subscribes to every given (topic, subject) pair. It fails fast
// if any topic is not registered with the Synchronizer, so misconfigured
// mappings are caught at startup instead of silently dropping messages.
func (s *Subscriber) Start(mappings []TopicSubject) error {
	known := make(map[string]bool)
	for _, topic := range s.sync.Topics() {
		known[topic] = true
	}

	for _, m := range mappings {
		if !known[m.Topic] {
			return core.NewUnknownTopicError(m.Topic)
		}
		s.overflowLim[m.Topic] = rate.NewLimiter(rate.Every(time.Second), 1)

		mapping := m
		onMsg := func(msg *nats.Msg) { s.handleMessage(mapping.Topic, msg) }

		var (
			sub *nats.Subscription
			err error
		)
		if s.QueueGroup != "" {
			sub, err = s.conn.QueueSubscribe(mapping.Subject, s.QueueGroup, onMsg)
		} else {
			sub, err = s.conn.Subscribe(mapping.Subject, onMsg)
		}
		if err != nil {
			return err
		}
		s.subs = append(s.subs, sub)

		logrus.WithFields(logrus.Fields{
			"topic":   mapping.Topic,
			"subject": mapping.Subject,
		}).Info("subscribed")
	}
	return nil
}

// Stop unsubscribes from every subject this Subscriber opened.
func (s *Subscriber) Stop() {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
}

func (s *Subscriber) handleMessage(topic string, msg *nats.Msg) {
	ts := extractTimestampNs(msg)

	accepted, err := s.sync.Push(topic, ts, msg.Data)
	if err != nil {
		logrus.WithError(err).WithField("topic", topic).Error("push failed")
		return
	}
	if !accepted {
		s.warnOverflow(topic)
	}

	for {
		group, ok := s.sync.Poll()
		if !ok {
			return
		}
		corelog.Note.Printf("natssub: forwarding group ts=%d", group.TimestampNs())
		if s.handler != nil {
			s.handler(group)
		}
	}
}

// warnOverflow logs a BufferFull occurrence at most once per second per
// topic, so a sustained overflow doesn't flood the log. Per the
// synchronizer's own contract, this only fires for Push returning
// false, never for an inferred failure (spec open question 2: count
// rejections only for true capacity overflow).
func (s *Subscriber) warnOverflow(topic string) {
	limiter := s.overflowLim[topic]
	if limiter != nil && limiter.Allow() {
		logrus.WithField("topic", topic).Warn("buffer full, message rejected")
	}
}

// extractTimestampNs reads TimestampHeader off the message and combines
// seconds+nanoseconds into one nanosecond count, falling back to the
// subscriber's local receipt time if the header is absent or malformed.
func extractTimestampNs(msg *nats.Msg) int64 {
	if msg.Header != nil {
		if raw := msg.Header.Get(TimestampHeader); raw != "" {
			if ts, ok := parseHeaderTimestamp(raw); ok {
				return ts
			}
		}
	}
	return time.Now().UnixNano()
}

func parseHeaderTimestamp(raw string) (int64, bool) {
	parts := strings.SplitN(raw, ".", 2)
	secs, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, false
	}
	var nanos int64
	if len(parts) == 2 {
		nanos, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, false
		}
	}
	return secs*int64(time.Second) + nanos, true
}
