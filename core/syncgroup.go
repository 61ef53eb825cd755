// Copyright 2015 trivago GmbH
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

// SyncGroup is one emitted result: exactly one (timestamp, payload) per
// registered topic. Its representative timestamp is the minimum of the
// member timestamps (recomputed by emit from the popped heads, which
// gives the same t_min the matcher saw).
type SyncGroup struct {
	registry    *topicRegistry
	timestampNs int64
	members     []syncGroupMember
}

type syncGroupMember struct {
	timestampNs int64
	payload     Payload
}

// TimestampNs returns the group's representative timestamp in
// nanoseconds.
func (g SyncGroup) TimestampNs() int64 {
	return g.timestampNs
}

// Topics returns the topic names carried by this group, in the
// Synchronizer's construction order.
func (g SyncGroup) Topics() []string {
	return g.registry.topics()
}

// Get returns the payload and timestamp pushed for the given topic, or
// (nil, 0, false) if the topic is not part of this Synchronizer.
func (g SyncGroup) Get(topic string) (payload Payload, timestampNs int64, ok bool) {
	idx, known := g.registry.indexOf(topic)
	if !known {
		return nil, 0, false
	}
	member := g.members[idx]
	return member.payload, member.timestampNs, true
}

// Len returns the number of members in the group, which always equals
// the Synchronizer's topic count.
func (g SyncGroup) Len() int {
	return len(g.members)
}
