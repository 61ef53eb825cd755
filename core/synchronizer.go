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

// Package core implements the multi-stream message synchronizer: a
// passive, single-threaded data structure that buffers timestamped
// messages per topic and emits cross-topic groups whose timestamps fall
// within a configurable window. It owns no thread, performs no I/O, and
// never interprets the opaque payloads it carries — see the package's
// accompanying design notes for the full non-goal list.
package core

import (
	"github.com/trivago/conflux/internal/corelog"
)

// Synchronizer is the composite engine described above: a
// TopicRegistry, one StreamBuffer per topic, and the head-set matcher,
// driven entirely by Push and Poll. Concurrent use must be serialized
// by the caller; the Synchronizer does not lock itself.
type Synchronizer struct {
	registry *topicRegistry
	config   Config
	buffers  []*streamBuffer
	metrics  []topicMetric
}

// New constructs a Synchronizer for the given topic names and Config.
// It fails with InvalidArgumentError when the topic list is empty, any
// name is empty or duplicated, buffer_size < 2, or drop_policy is
// unrecognized.
func New(topics []string, config Config) (*Synchronizer, error) {
	registry, err := newTopicRegistry(topics)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	buffers := make([]*streamBuffer, registry.count())
	metrics := make([]topicMetric, registry.count())
	for i := range buffers {
		buffers[i] = newStreamBuffer(config.BufferSize, config.DropPolicy)
		metrics[i] = newTopicMetric(registry.nameOf(i))
	}

	return &Synchronizer{
		registry: registry,
		config:   config,
		buffers:  buffers,
		metrics:  metrics,
	}, nil
}

// Push appends a timestamped payload to the named topic's buffer. It
// returns (accepted, error): error is non-nil only for UnknownTopic or
// a negative timestamp; accepted reports whether the overflow policy
// kept the message (always true under DropOldest, per §8 invariant 6).
func (s *Synchronizer) Push(topic string, timestampNs int64, payload Payload) (bool, error) {
	idx, ok := s.registry.indexOf(topic)
	if !ok {
		return false, NewUnknownTopicError(topic)
	}
	if timestampNs < 0 {
		return false, NewInvalidArgumentError("timestamp must be non-negative, got %d", timestampNs)
	}

	accepted := s.buffers[idx].push(timestampNs, payload)
	if accepted {
		s.metrics[idx].countAccepted()
		corelog.Debug.Printf("push accepted: topic=%s ts=%d buffer_len=%d", topic, timestampNs, s.buffers[idx].len())
	} else {
		s.metrics[idx].countRejected()
		corelog.Debug.Printf("push rejected: topic=%s ts=%d (buffer full, RejectNew)", topic, timestampNs)
	}
	return accepted, nil
}

// Poll performs exactly one evaluation of the current stream heads: if
// every stream is non-empty and the head timestamps fit within the
// window, it pops one message from every stream and returns the
// resulting SyncGroup. If no group is available it either discards the
// oldest head of the stream that cannot participate (an advance) or,
// if some stream is empty, does nothing. It never fails and never
// performs more than one emission or discard per call.
func (s *Synchronizer) Poll() (SyncGroup, bool) {
	outcome, advanceIdx := evaluateHeads(s.buffers, s.config.WindowSizeNs)

	switch outcome {
	case outcomeNone:
		return SyncGroup{}, false

	case outcomeAdvance:
		dropped := s.buffers[advanceIdx].popFront()
		s.metrics[advanceIdx].countAdvanced()
		corelog.Note.Printf("advance: topic=%s dropped_ts=%d", s.registry.nameOf(advanceIdx), dropped.timestampNs)
		return SyncGroup{}, false

	default: // outcomeEmit
		return s.emit(), true
	}
}

// emit pops the front of every stream and packages the result. Called
// only after evaluateHeads has confirmed every stream is non-empty and
// in-window.
func (s *Synchronizer) emit() SyncGroup {
	members := make([]syncGroupMember, len(s.buffers))
	minTs := int64(0)

	for i, b := range s.buffers {
		msg := b.popFront()
		members[i] = syncGroupMember{timestampNs: msg.timestampNs, payload: msg.payload}
		if i == 0 || msg.timestampNs < minTs {
			minTs = msg.timestampNs
		}
	}

	countEmission()
	corelog.Note.Printf("emit: representative_ts=%d", minTs)

	return SyncGroup{
		registry:    s.registry,
		timestampNs: minTs,
		members:     members,
	}
}

// Drain repeatedly polls until no further group is available and
// returns every emitted group in order. This is a convenience over the
// documented drain semantic (repeated Poll extracts the maximal prefix
// of emittable groups under the head-set strategy); it performs no
// matching logic of its own.
func (s *Synchronizer) Drain() []SyncGroup {
	var groups []SyncGroup
	for {
		group, ok := s.Poll()
		if !ok {
			return groups
		}
		groups = append(groups, group)
	}
}

// IsReady reports whether every stream holds at least two buffered
// messages — a hint that at least one advance plus one emission is
// possible without further input.
func (s *Synchronizer) IsReady() bool {
	for _, b := range s.buffers {
		if b.len() < 2 {
			return false
		}
	}
	return true
}

// IsEmpty reports whether any stream currently holds zero messages
// (not whether all streams are empty — see the package design notes
// for the asymmetry).
func (s *Synchronizer) IsEmpty() bool {
	for _, b := range s.buffers {
		if b.isEmpty() {
			return true
		}
	}
	return false
}

// BufferLen returns the number of messages currently buffered for the
// given topic, or UnknownTopicError if the name was not registered.
func (s *Synchronizer) BufferLen(topic string) (int, error) {
	idx, ok := s.registry.indexOf(topic)
	if !ok {
		return 0, NewUnknownTopicError(topic)
	}
	return s.buffers[idx].len(), nil
}

// TopicCount returns the number of registered topics.
func (s *Synchronizer) TopicCount() int {
	return s.registry.count()
}

// Topics returns the registered topic names in construction order.
func (s *Synchronizer) Topics() []string {
	return s.registry.topics()
}
