// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package masking_test

import (
	"bytes"
	"crypto"
	"testing"

	"github.com/bytemare/ecc"

	"github.com/opaquecore/opaque/internal"
	"github.com/opaquecore/opaque/internal/masking"
)

func TestMaskUnmask_RoundTrip(t *testing.T) {
	conf := &internal.Configuration{
		Group: ecc.Ristretto255Sha512,
		KDF:   internal.NewKDF(crypto.SHA512),
	}

	maskingKey := internal.RandomBytes(conf.KDF.Size())
	serverPublicKey := conf.Group.Base().Multiply(conf.Group.NewScalar().Random()).Encode()
	envelope := internal.RandomBytes(64)

	nonce, masked := masking.Mask(conf, nil, maskingKey, serverPublicKey, envelope)
	if len(nonce) != internal.NonceLength {
		t.Fatalf("nonce length = %d, want %d", len(nonce), internal.NonceLength)
	}

	gotPK, gotEnvelope := masking.Unmask(conf, nonce, maskingKey, masked, conf.Group.ElementLength())

	if !bytes.Equal(gotPK, serverPublicKey) {
		t.Fatal("unmasked server public key does not match the original")
	}

	if !bytes.Equal(gotEnvelope, envelope) {
		t.Fatal("unmasked envelope does not match the original")
	}
}

func TestMask_WrongKeyProducesGarbage(t *testing.T) {
	conf := &internal.Configuration{
		Group: ecc.Ristretto255Sha512,
		KDF:   internal.NewKDF(crypto.SHA512),
	}

	serverPublicKey := conf.Group.Base().Multiply(conf.Group.NewScalar().Random()).Encode()
	envelope := internal.RandomBytes(64)

	maskingKey := internal.RandomBytes(conf.KDF.Size())
	nonce, masked := masking.Mask(conf, nil, maskingKey, serverPublicKey, envelope)

	wrongKey := internal.RandomBytes(conf.KDF.Size())
	gotPK, _ := masking.Unmask(conf, nonce, wrongKey, masked, conf.Group.ElementLength())

	if bytes.Equal(gotPK, serverPublicKey) {
		t.Fatal("unmasking under the wrong key recovered the original server public key")
	}
}
