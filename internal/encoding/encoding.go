// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package encoding provides the byte-exact (de)serialization helpers shared by every OPAQUE wire message.
package encoding

import (
	"errors"
)

// ErrVectorTooLong indicates an encoded vector's length field would overflow its prefix.
var ErrVectorTooLong = errors.New("encoding: input too long for length-prefix encoding")

// ErrVectorTooShort indicates a buffer is too short to hold a declared length-prefixed vector.
var ErrVectorTooShort = errors.New("encoding: buffer too short for declared vector length")

// I2OSP is the Integer-to-Octet-String-Primitive: big-endian encoding of i in length bytes.
func I2OSP(i, length int) []byte {
	out := make([]byte, length)

	v := i
	for idx := length - 1; idx >= 0; idx-- {
		out[idx] = byte(v & 0xff)
		v >>= 8
	}

	return out
}

// OS2IP is the Octet-String-to-Integer-Primitive: big-endian decoding of a byte string.
func OS2IP(b []byte) int {
	v := 0
	for _, x := range b {
		v = v<<8 | int(x)
	}

	return v
}

// Concatenate returns the concatenation of all inputs.
func Concatenate(inputs ...[]byte) []byte {
	length := 0
	for _, i := range inputs {
		length += len(i)
	}

	out := make([]byte, 0, length)
	for _, i := range inputs {
		out = append(out, i...)
	}

	return out
}

// Concat3 concatenates exactly three byte strings (a common shape in the 3DH transcript).
func Concat3(a, b, c []byte) []byte {
	return Concatenate(a, b, c)
}

// EncodeVector prefixes input with a 2-byte big-endian length.
func EncodeVector(input []byte) []byte {
	return EncodeVectorLen(input, 2)
}

// EncodeVectorLen prefixes input with a big-endian length field of the given byte width.
func EncodeVectorLen(input []byte, lenBytes int) []byte {
	return Concatenate(I2OSP(len(input), lenBytes), input)
}

// DecodeVector reads a 2-byte length-prefixed vector, returning the vector and the remaining bytes.
func DecodeVector(input []byte) (vector, rest []byte, err error) {
	if len(input) < 2 {
		return nil, nil, ErrVectorTooShort
	}

	length := OS2IP(input[:2])
	if len(input) < 2+length {
		return nil, nil, ErrVectorTooShort
	}

	return input[2 : 2+length], input[2+length:], nil
}

// SuffixString appends an ASCII label to a byte string, e.g. nonce || "AuthKey".
func SuffixString(input []byte, label string) []byte {
	return Concatenate(input, []byte(label))
}
