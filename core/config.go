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

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// WindowInfinite is the Config.WindowSizeNs sentinel meaning "no window
// constraint" — the matcher's spread test is vacuous. A window can never
// legitimately be negative, so a negative sentinel can't collide with a
// real caller-supplied value.
const WindowInfinite int64 = -1

// Config holds the three knobs the engine exposes externally: the
// matching window, per-stream capacity, and the overflow policy.
type Config struct {
	// WindowSizeNs is the maximum timestamp spread, in nanoseconds,
	// permitted within one emitted group. Use WindowInfinite to disable
	// the constraint.
	WindowSizeNs int64

	// BufferSize is the per-stream capacity. Must be >= 2.
	BufferSize int

	// DropPolicy selects the overflow behavior.
	DropPolicy DropPolicy
}

// Validate checks the Config fields in isolation, independent of any
// topic list. New performs this check as part of construction.
func (c Config) Validate() error {
	if c.BufferSize < 2 {
		return NewInvalidArgumentError("buffer_size must be >= 2, got %d", c.BufferSize)
	}
	if c.DropPolicy != RejectNew && c.DropPolicy != DropOldest {
		return NewInvalidArgumentError("unrecognized drop_policy %v", c.DropPolicy)
	}
	return nil
}

// rawConfigFile mirrors the YAML document shape read from disk, using
// the external option names from the library's config table
// (window_size_ms, buffer_size, drop_policy).
type rawConfigFile struct {
	Topics       []string    `yaml:"topics"`
	WindowSizeMs interface{} `yaml:"window_size_ms"`
	BufferSize   int         `yaml:"buffer_size"`
	DropPolicy   string      `yaml:"drop_policy"`
}

// ReadConfig parses a YAML config file into a topic list and a Config,
// following the same ReadConfig-from-YAML shape the rest of this
// library's configuration surface uses.
func ReadConfig(path string) ([]string, Config, error) {
	buffer, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, Config{}, err
	}

	var raw rawConfigFile
	if err := yaml.Unmarshal(buffer, &raw); err != nil {
		return nil, Config{}, err
	}

	windowNs, err := parseWindowSizeMs(raw.WindowSizeMs)
	if err != nil {
		return nil, Config{}, err
	}

	dropPolicy, err := ParseDropPolicy(raw.DropPolicy)
	if err != nil {
		return nil, Config{}, err
	}

	cfg := Config{
		WindowSizeNs: windowNs,
		BufferSize:   raw.BufferSize,
		DropPolicy:   dropPolicy,
	}
	return raw.Topics, cfg, nil
}

// parseWindowSizeMs converts the YAML window_size_ms value (an integer,
// the string "none", or 0) into nanoseconds or WindowInfinite, per the
// external config table: "0 or 'none' = infinite".
func parseWindowSizeMs(val interface{}) (int64, error) {
	switch v := val.(type) {
	case nil:
		return WindowInfinite, nil
	case string:
		if v == "none" {
			return WindowInfinite, nil
		}
		return 0, NewInvalidArgumentError("window_size_ms string value must be \"none\", got %q", v)
	case int:
		if v == 0 {
			return WindowInfinite, nil
		}
		if v < 0 {
			return 0, NewInvalidArgumentError("window_size_ms must be non-negative, got %d", v)
		}
		return int64(v) * int64(1e6), nil
	default:
		return 0, NewInvalidArgumentError("window_size_ms has unsupported type %T", val)
	}
}
