// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package internal holds structures and values used internally by the opaque package. These are used internally and
// are not meant to be used by users of the library.
package internal

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"errors"
	"io"

	"github.com/bytemare/ecc"
	"github.com/bytemare/hash"
	"github.com/bytemare/ksf"
	xhkdf "golang.org/x/crypto/hkdf"

	"github.com/opaquecore/opaque/internal/oprf"
)

const (
	// NonceLength is the default length used for nonces.
	NonceLength = 32

	// SeedLength is the default length used for seeds, the input to DeriveKeyPair, independent of ciphersuite.
	SeedLength = 32
)

var (
	// ErrConfigurationInvalidLength indicates that the configuration's encoding is of invalid length.
	ErrConfigurationInvalidLength = errors.New("invalid encoding length")

	// ErrHkdfInvalidLength indicates an invalid HKDF-Expand output length was requested.
	ErrHkdfInvalidLength = errors.New("hkdf: requested output length too large")
)

// RandomBytes returns random bytes of length len (wrapper for crypto/rand).
func RandomBytes(length int) []byte {
	r := make([]byte, length)
	if _, err := rand.Read(r); err != nil {
		// crypto/rand.Read failing is an unrecoverable environment fault, not a protocol error.
		panic(err)
	}

	return r
}

// Hash wraps a ciphersuite-restricted hash identifier and exposes one-shot hashing.
type Hash struct {
	id hash.Hash
}

// NewHash returns a Hash wrapper for the given crypto.Hash, restricted to the identifiers OPAQUE allows.
func NewHash(h crypto.Hash) *Hash {
	return &Hash{id: hash.Hash(h)}
}

// Sum hashes the concatenation of the given inputs in one shot.
func (h *Hash) Sum(input ...[]byte) []byte {
	d := crypto.Hash(h.id).New()
	for _, i := range input {
		d.Write(i)
	}

	return d.Sum(nil)
}

// Size returns the hash's output size in bytes.
func (h *Hash) Size() int {
	return crypto.Hash(h.id).Size()
}

// KDF wraps HKDF-Extract/Expand bound to a hash identifier.
type KDF struct {
	id crypto.Hash
}

// NewKDF returns a KDF wrapper for the given hash identifier.
func NewKDF(h crypto.Hash) *KDF {
	return &KDF{id: h}
}

// Extract runs HKDF-Extract(salt, ikm).
func (k *KDF) Extract(salt, ikm []byte) []byte {
	return xhkdf.Extract(k.id.New, ikm, salt)
}

// Expand runs HKDF-Expand(prk, info, length).
func (k *KDF) Expand(prk, info []byte, length int) []byte {
	out := make([]byte, length)

	r := xhkdf.Expand(k.id.New, prk, info)
	if _, err := io.ReadFull(r, out); err != nil {
		panic(err)
	}

	return out
}

// Size returns the underlying hash's output size.
func (k *KDF) Size() int {
	return k.id.Size()
}

// Mac wraps HMAC bound to a hash identifier.
type Mac struct {
	id crypto.Hash
}

// NewMac returns a Mac wrapper for the given hash identifier.
func NewMac(h crypto.Hash) *Mac {
	return &Mac{id: h}
}

// MAC computes HMAC(key, message).
func (m *Mac) MAC(key, message []byte) []byte {
	h := hmac.New(m.id.New, key)
	h.Write(message)

	return h.Sum(nil)
}

// Equal runs a constant-time comparison of two MAC tags.
func (m *Mac) Equal(a, b []byte) bool {
	return hmac.Equal(a, b)
}

// Size returns the MAC's output size in bytes.
func (m *Mac) Size() int {
	return m.id.Size()
}

// KSF wraps an optional password-stretching key-stretching function.
type KSF struct {
	id ksf.Identifier
}

// NewKSF returns a KSF wrapper. An Identifier of 0 is the identity function.
func NewKSF(id ksf.Identifier) *KSF {
	return &KSF{id: id}
}

// Harden stretches input, returning it unmodified if the KSF is the identity function.
func (k *KSF) Harden(input, salt []byte, length int) []byte {
	if k == nil || k.id == 0 {
		return input
	}

	return k.id.Harden(input, salt, length)
}

// Configuration groups the primitives bound to an OPAQUE ciphersuite, and is shared, read-only, across
// every handshake run under it.
type Configuration struct {
	OPRF         oprf.Identifier
	Group        ecc.Group
	KSF          *KSF
	KDF          *KDF
	MAC          *Mac
	Hash         *Hash
	Context      []byte
	NonceLen     int
	EnvelopeSize int
}
