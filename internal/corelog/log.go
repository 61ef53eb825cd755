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

// Package corelog is the verbosity-gated diagnostic logger used by the
// synchronization engine. It never touches a socket or a file directly;
// callers that want the messages persisted attach their own io.Writer
// with SetWriter.
package corelog

import (
	"io"
	"log"
)

// Verbosity defines an enumeration for log verbosity.
type Verbosity byte

const (
	// VerbosityNote shows only note messages (advance/emit summaries).
	VerbosityNote = Verbosity(iota)
	// VerbosityDebug shows note and debug messages.
	VerbosityDebug
	// VerbositySilent disables all engine logging.
	VerbositySilent
)

var (
	// Note is the channel used for one-line per-call engine diagnostics.
	Note = log.New(io.Discard, "", 0)

	// Debug is the channel used for verbose per-message tracing.
	Debug = log.New(io.Discard, "", 0)

	verbosity = VerbosityNote
	target    io.Writer = io.Discard
)

func init() {
	rebuild()
}

// SetVerbosity defines which channels are active. VerbosityDebug also
// enables the Note channel; VerbositySilent enables neither.
func SetVerbosity(v Verbosity) {
	verbosity = v
	rebuild()
}

// SetWriter redirects enabled channels to the given writer.
func SetWriter(w io.Writer) {
	target = w
	rebuild()
}

func rebuild() {
	Note = log.New(io.Discard, "", 0)
	Debug = log.New(io.Discard, "", 0)

	switch verbosity {
	case VerbosityDebug:
		Debug = log.New(target, "sync debug: ", 0)
		fallthrough
	case VerbosityNote:
		Note = log.New(target, "sync: ", 0)
	case VerbositySilent:
		// both channels stay discarded
	}
}
