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

// DropPolicy selects what a StreamBuffer does when Push arrives at a
// full buffer. There are exactly two variants; this is a tagged value,
// not an interface, since no further behavior ever attaches to a policy.
type DropPolicy uint8

const (
	// RejectNew discards the incoming message and keeps the buffer as
	// is. Preserves existing data; suited to offline/replay producers.
	RejectNew = DropPolicy(iota)

	// DropOldest evicts the front message to make room for the new
	// one. Always accepts; suited to realtime producers that favor
	// freshness over completeness.
	DropOldest
)

// String implements the stringer interface.
func (p DropPolicy) String() string {
	switch p {
	case RejectNew:
		return "RejectNew"
	case DropOldest:
		return "DropOldest"
	default:
		return "unknown"
	}
}

// ParseDropPolicy converts a config string into a DropPolicy. Accepted
// spellings are the external drop_policy option values:
// "REJECT_NEW" and "DROP_OLDEST" (case sensitive, matching upstream
// conventions for this option).
func ParseDropPolicy(name string) (DropPolicy, error) {
	switch name {
	case "REJECT_NEW":
		return RejectNew, nil
	case "DROP_OLDEST":
		return DropOldest, nil
	default:
		return RejectNew, NewInvalidArgumentError("unrecognized drop_policy %q", name)
	}
}
