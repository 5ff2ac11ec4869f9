// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ake

import (
	"github.com/bytemare/ecc"

	"github.com/opaquecore/opaque/internal"
)

// Options lets a caller force deterministic ephemeral values, used only to reproduce test vectors.
type Options struct {
	// KeyShareSeed, if set, is decoded as the ephemeral secret key instead of sampling one.
	KeyShareSeed []byte
	// Nonce, if set, is used instead of sampling a fresh one.
	Nonce []byte
	// NonceLength overrides the default nonce length if no Nonce is given.
	NonceLength uint32
}

// values holds the ephemeral key share and nonce shared by the client and server sides of 3DH.
type values struct {
	ephemeralSecretKey *ecc.Scalar
	nonce              []byte
}

// setOptions populates v from options (or samples fresh values), returning the ephemeral public key.
func (v *values) setOptions(g ecc.Group, options Options) *ecc.Element {
	if len(options.KeyShareSeed) != 0 {
		sk := g.NewScalar()
		if err := sk.Decode(options.KeyShareSeed); err == nil {
			v.ephemeralSecretKey = sk
		}
	}

	if v.ephemeralSecretKey == nil {
		v.ephemeralSecretKey = g.NewScalar().Random()
	}

	if len(options.Nonce) != 0 {
		v.nonce = options.Nonce
	} else if v.nonce == nil {
		length := internal.NonceLength
		if options.NonceLength != 0 {
			length = int(options.NonceLength)
		}

		v.nonce = internal.RandomBytes(length)
	}

	return g.Base().Multiply(v.ephemeralSecretKey)
}

// flush sets the ephemeral values held by v to nil.
func (v *values) flush() {
	v.ephemeralSecretKey = nil
	v.nonce = nil
}
