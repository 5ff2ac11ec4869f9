// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package oprf implements the base-mode Oblivious Pseudorandom Function that OPAQUE builds on, as defined by
// draft-irtf-cfrg-voprf. It binds the verifiable-OPRF primitive to the same prime-order group used by the 3DH
// key exchange, via github.com/bytemare/ecc.
package oprf

import (
	"crypto"
	"errors"

	"github.com/bytemare/ecc"

	"github.com/opaquecore/opaque/internal/encoding"
	"github.com/opaquecore/opaque/internal/tag"
)

// mode distinguishes the OPRF base mode (used by OPAQUE) from the verifiable mode (unused here).
const mode = 0

// ErrIdentityElement indicates a blinded or evaluated element decoded to the group's identity element.
var ErrIdentityElement = errors.New("oprf: invalid identity group element")

// Identifier identifies the OPRF ciphersuite, always matching the AKE group in this implementation.
type Identifier byte

const (
	// RistrettoSha512 is the OPRF ciphersuite over ristretto255 with SHA-512.
	RistrettoSha512 = Identifier(ecc.Ristretto255Sha512)

	// P256Sha256 is the OPRF ciphersuite over NIST P-256 with SHA-256.
	P256Sha256 = Identifier(ecc.P256Sha256)

	// P384Sha384 is the OPRF ciphersuite over NIST P-384 with SHA-384.
	P384Sha384 = Identifier(ecc.P384Sha384)

	// P521Sha512 is the OPRF ciphersuite over NIST P-521 with SHA-512.
	P521Sha512 = Identifier(ecc.P521Sha512)
)

// IDFromGroup returns the OPRF Identifier matching the given group.
func IDFromGroup(g ecc.Group) Identifier {
	return Identifier(g)
}

// Group returns the prime-order group backing this OPRF ciphersuite.
func (i Identifier) Group() ecc.Group {
	return ecc.Group(i)
}

// Available reports whether the OPRF ciphersuite is recognized and usable.
func (i Identifier) Available() bool {
	return i.Group().Available()
}

// Hash returns the hash function paired with this OPRF ciphersuite's group, per the VOPRF suite registry.
func (i Identifier) Hash() crypto.Hash {
	switch i {
	case P256Sha256:
		return crypto.SHA256
	case P384Sha384:
		return crypto.SHA384
	default: // RistrettoSha512, P521Sha512
		return crypto.SHA512
	}
}

func (i Identifier) contextString() []byte {
	return encoding.Concatenate([]byte(tag.OPRF), encoding.I2OSP(mode, 1), encoding.I2OSP(int(i), 2))
}

func (i Identifier) dst(prefix string) []byte {
	return encoding.Concatenate([]byte(prefix), i.contextString())
}

// Client holds per-handshake OPRF client state between Blind and Finalize.
type Client struct {
	group Identifier
	blind *ecc.Scalar
}

// NewClient returns a new OPRF client bound to the ciphersuite.
func (i Identifier) NewClient() *Client {
	return &Client{group: i}
}

// Blind samples a fresh blind scalar and returns the blinded representation of input.
func (c *Client) Blind(input []byte) *ecc.Element {
	c.blind = c.group.Group().NewScalar().Random()

	p := c.group.Group().HashToGroup(input, c.group.dst("HashToGroup-"))

	return p.Multiply(c.blind)
}

// Finalize unblinds evaluated and derives the OPRF output bound to input.
func (c *Client) Finalize(input []byte, evaluated *ecc.Element) ([]byte, error) {
	if evaluated.IsIdentity() {
		return nil, ErrIdentityElement
	}

	n := evaluated.Multiply(c.blind.Invert())

	h := c.group.Hash().New()
	h.Write(encoding.EncodeVector(input))
	h.Write(encoding.EncodeVector(n.Encode()))
	h.Write([]byte("Finalize"))

	return h.Sum(nil), nil
}

// Evaluate applies the server's OPRF key to a (presumed blinded) element.
func (i Identifier) Evaluate(key *ecc.Scalar, element *ecc.Element) (*ecc.Element, error) {
	if element.IsIdentity() {
		return nil, ErrIdentityElement
	}

	return element.Multiply(key), nil
}

// deriveKeyPairMaxRetries bounds the RFC 9497 §3.2 DeriveKeyPair retry loop: the counter is encoded
// in a single octet, so it can never legitimately reach 256.
const deriveKeyPairMaxRetries = 255

// DeriveKey deterministically derives an OPRF private key from a seed and a caller-supplied info
// label, per VOPRF's DeriveKeyPair (RFC 9497 §3.2). The domain separator is fixed per ciphersuite and
// does not depend on info; info is instead folded into the hashed input alongside a retry counter,
// and the result is rejected (and re-derived with the next counter) if it is the zero scalar.
func (i Identifier) DeriveKey(seed, info []byte) *ecc.Scalar {
	dst := encoding.Concatenate([]byte(tag.DeriveKeyPairInternal), i.contextString())
	deriveInput := encoding.Concatenate(seed, encoding.EncodeVector(info))

	for counter := 0; ; counter++ {
		if counter > deriveKeyPairMaxRetries {
			panic("oprf: DeriveKeyPair exceeded its maximum retries")
		}

		sk := i.Group().HashToScalar(encoding.Concatenate(deriveInput, encoding.I2OSP(counter, 1)), dst)
		if !sk.IsZero() {
			return sk
		}
	}
}
