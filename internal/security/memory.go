// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package security holds document passwords in scrubbable memory.
package security

import "bytes"

// SecureString wraps a password with best-effort scrubbing on Clear.
//
// The garbage collector may copy memory at any time and every String call
// makes an immutable copy, so Clear only shortens the exposure window.
type SecureString struct {
	data []byte
}

// NewSecureString copies s into a mutable byte slice
func NewSecureString(s string) *SecureString {
	data := make([]byte, len(s))
	copy(data, s)
	return &SecureString{data: data}
}

// FromBytes takes a copy of b with trailing line breaks removed and zeroes
// b. It is meant for terminal input read as bytes.
func FromBytes(b []byte) *SecureString {
	trimmed := bytes.TrimRight(b, "\r\n")
	data := make([]byte, len(trimmed))
	copy(data, trimmed)
	Zero(b)
	return &SecureString{data: data}
}

// String returns the value. Each call creates a copy Clear cannot reach.
func (ss *SecureString) String() string {
	return string(ss.data)
}

// Empty reports whether the value is empty or cleared
func (ss *SecureString) Empty() bool {
	return len(ss.data) == 0
}

// Clear overwrites the value with zeros and releases it
func (ss *SecureString) Clear() {
	if ss.data != nil {
		Zero(ss.data)
		ss.data = nil
	}
}

// Zero overwrites b with zeros
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
