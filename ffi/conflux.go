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

// Package main builds the conflux-ffi shared library: the foreign
// function boundary described as an external collaborator of the
// synchronization engine. It carries an opaque synchronizer handle, a
// C config struct, push/poll entry points, and a small closed
// result-code enum — the same shape a ctypes or Rust FFI caller on the
// other side of this boundary already expects. The engine itself
// (github.com/trivago/conflux/core) never links against cgo; only this
// boundary package does, following the same isolation gollum uses for
// its contrib/native cgo wrappers (librdkafka, pcap).
package main

/*
#include <stdint.h>
#include <stddef.h>
#include <stdbool.h>
#include <stdlib.h>

typedef struct {
	uint64_t window_size_ms;
	size_t   buffer_size;
	int32_t  drop_policy;
} conflux_config_t;

typedef void (*conflux_poll_callback)(const char *topic, int64_t timestamp_ns, uint64_t payload_handle, void *user_data);

static inline void conflux_invoke_poll_callback(conflux_poll_callback cb, const char *topic, int64_t timestamp_ns, uint64_t payload_handle, void *user_data) {
	cb(topic, timestamp_ns, payload_handle, user_data);
}
*/
import "C"

import (
	"unsafe"

	"github.com/trivago/conflux/core"
)

// Result codes. Matches the closed enum spec.md §6 assigns to the FFI
// boundary: OK / InvalidArgument / BufferFull / UnknownTopic /
// NullPointer / InternalError.
const (
	resultOK              C.int32_t = 0
	resultInvalidArgument C.int32_t = 1
	resultBufferFull      C.int32_t = 2
	resultUnknownTopic    C.int32_t = 3
	resultNullPointer     C.int32_t = 4
	resultInternalError   C.int32_t = 5
)

func main() {} // required by cgo for a c-shared build, never invoked.

//export conflux_synchronizer_new
func conflux_synchronizer_new(cfg *C.conflux_config_t, topicNames **C.char, topicCount C.size_t) C.uint64_t {
	if cfg == nil || topicNames == nil {
		return 0
	}

	names := make([]string, int(topicCount))
	slice := (*[1 << 28]*C.char)(unsafe.Pointer(topicNames))[:topicCount:topicCount]
	for i := range names {
		names[i] = C.GoString(slice[i])
	}

	windowNs := core.WindowInfinite
	if cfg.window_size_ms != 0 {
		windowNs = int64(cfg.window_size_ms) * int64(1e6)
	}

	policy, err := ffiDropPolicy(int32(cfg.drop_policy))
	if err != nil {
		return 0
	}

	sync, err := core.New(names, core.Config{
		WindowSizeNs: windowNs,
		BufferSize:   int(cfg.buffer_size),
		DropPolicy:   policy,
	})
	if err != nil {
		return 0
	}

	return C.uint64_t(syncHandles.put(sync))
}

//export conflux_synchronizer_free
func conflux_synchronizer_free(handle C.uint64_t) {
	syncHandles.delete(uint64(handle))
}

//export conflux_push_message
func conflux_push_message(handle C.uint64_t, topic *C.char, timestampNs C.int64_t, payloadHandle C.uint64_t) C.int32_t {
	sync, ok := syncHandles.get(uint64(handle))
	if !ok {
		return resultNullPointer
	}

	payload, _ := payloadHandles.take(uint64(payloadHandle))
	accepted, err := sync.Push(C.GoString(topic), int64(timestampNs), payload)
	if err != nil {
		switch err.(type) {
		case core.UnknownTopicError:
			return resultUnknownTopic
		case core.InvalidArgumentError:
			return resultInvalidArgument
		default:
			return resultInternalError
		}
	}
	if !accepted {
		return resultBufferFull
	}
	return resultOK
}

//export conflux_register_payload
func conflux_register_payload(dataPtr unsafe.Pointer, dataLen C.size_t) C.uint64_t {
	data := C.GoBytes(dataPtr, C.int(dataLen))
	return C.uint64_t(payloadHandles.put(data))
}

//export conflux_poll
func conflux_poll(handle C.uint64_t, callback C.conflux_poll_callback, userData unsafe.Pointer) C.int32_t {
	sync, ok := syncHandles.get(uint64(handle))
	if !ok {
		return resultNullPointer
	}

	group, hasGroup := sync.Poll()
	if !hasGroup {
		return resultOK
	}

	for _, topic := range group.Topics() {
		payload, ts, _ := group.Get(topic)
		cTopic := C.CString(topic)
		payloadHandle := payloadHandles.put(payload)
		C.conflux_invoke_poll_callback(callback, cTopic, C.int64_t(ts), C.uint64_t(payloadHandle), userData)
		C.free(unsafe.Pointer(cTopic))
	}
	return resultOK
}

//export conflux_topic_count
func conflux_topic_count(handle C.uint64_t) C.size_t {
	sync, ok := syncHandles.get(uint64(handle))
	if !ok {
		return 0
	}
	return C.size_t(sync.TopicCount())
}

//export conflux_is_ready
func conflux_is_ready(handle C.uint64_t) C.bool {
	sync, ok := syncHandles.get(uint64(handle))
	return ok && C.bool(sync.IsReady())
}

//export conflux_is_empty
func conflux_is_empty(handle C.uint64_t) C.bool {
	sync, ok := syncHandles.get(uint64(handle))
	return !ok || C.bool(sync.IsEmpty())
}

//export conflux_buffer_len
func conflux_buffer_len(handle C.uint64_t, topic *C.char) C.size_t {
	sync, ok := syncHandles.get(uint64(handle))
	if !ok {
		return 0
	}
	n, err := sync.BufferLen(C.GoString(topic))
	if err != nil {
		return 0
	}
	return C.size_t(n)
}

func ffiDropPolicy(v int32) (core.DropPolicy, error) {
	switch v {
	case 0:
		return core.RejectNew, nil
	case 1:
		return core.DropOldest, nil
	default:
		return core.RejectNew, core.NewInvalidArgumentError("unrecognized drop_policy code %d", v)
	}
}
