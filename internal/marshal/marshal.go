/*
 * Copyright 2024 The tsingest Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package marshal copies foreign strings and byte buffers into Go-owned memory.
//
// Every function returns a fresh copy; nothing returned aliases the foreign
// memory after the call returns.
package marshal

import (
	"errors"
	"unicode/utf8"
	"unsafe"
)

var (
	// ErrNullPointer is returned when a required foreign pointer is null.
	ErrNullPointer = errors.New("null pointer")
	// ErrInvalidEncoding is returned when a foreign string is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid UTF-8 string")
)

// ToString copies the NUL-terminated string at p.
func ToString(p unsafe.Pointer) (string, error) {
	if p == nil {
		return "", ErrNullPointer
	}

	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}

	b := unsafe.Slice((*byte)(p), n)
	if !utf8.Valid(b) {
		return "", ErrInvalidEncoding
	}
	return string(b), nil
}

// ToBytes copies n bytes starting at p.
//
// A zero length always yields an empty buffer, whether or not p is null.
func ToBytes(p unsafe.Pointer, n int) ([]byte, error) {
	if n <= 0 {
		return []byte{}, nil
	}
	if p == nil {
		return nil, ErrNullPointer
	}

	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(p), n))
	return out, nil
}
