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
	"fmt"
)

// InvalidArgumentError is returned by New and Push when a caller-supplied
// value is out of range: an empty or duplicate topic name, a buffer size
// below 2, an unrecognized drop policy, or a negative timestamp.
type InvalidArgumentError struct {
	message string
}

// Error fulfills the golang error interface.
func (e InvalidArgumentError) Error() string {
	return e.message
}

// NewInvalidArgumentError creates a new InvalidArgumentError with the
// given message.
func NewInvalidArgumentError(message string, values ...interface{}) InvalidArgumentError {
	return InvalidArgumentError{
		message: fmt.Sprintf(message, values...),
	}
}

// UnknownTopicError is returned by Push and BufferLen when the given
// topic name was not registered at construction.
type UnknownTopicError struct {
	message string
}

// Error fulfills the golang error interface.
func (e UnknownTopicError) Error() string {
	return e.message
}

// NewUnknownTopicError creates a new UnknownTopicError for the given
// topic name.
func NewUnknownTopicError(topic string) UnknownTopicError {
	return UnknownTopicError{
		message: fmt.Sprintf("unknown topic %q", topic),
	}
}
