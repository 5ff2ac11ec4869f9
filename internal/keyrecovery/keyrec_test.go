// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package keyrecovery_test

import (
	"bytes"
	"crypto"
	"testing"

	"github.com/bytemare/ecc"
	"github.com/bytemare/ksf"

	"github.com/opaquecore/opaque/internal"
	"github.com/opaquecore/opaque/internal/keyrecovery"
	"github.com/opaquecore/opaque/internal/oprf"
)

func testConf() *internal.Configuration {
	mac := internal.NewMac(crypto.SHA512)

	return &internal.Configuration{
		OPRF:         oprf.RistrettoSha512,
		Group:        ecc.Ristretto255Sha512,
		KSF:          internal.NewKSF(ksf.Identifier(0)),
		KDF:          internal.NewKDF(crypto.SHA512),
		MAC:          mac,
		Hash:         internal.NewHash(crypto.SHA512),
		NonceLen:     internal.NonceLength,
		EnvelopeSize: internal.NonceLength + mac.Size(),
	}
}

func TestStoreAndRecover(t *testing.T) {
	conf := testConf()
	randomizedPwd := internal.RandomBytes(64)
	serverPublicKey := conf.Group.Base().Multiply(conf.Group.NewScalar().Random()).Encode()

	envelope, clientPublicKey, exportKeyReg := keyrecovery.Store(
		conf, randomizedPwd, serverPublicKey, []byte("client-id"), []byte("server-id"),
	)

	serialized := envelope.Serialize()
	if len(serialized) != conf.EnvelopeSize {
		t.Fatalf("serialized envelope length = %d, want %d", len(serialized), conf.EnvelopeSize)
	}

	opened, err := keyrecovery.Deserialize(conf.MAC.Size(), serialized)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	clientSecretKey, recoveredPublicKey, exportKeyLogin, err := keyrecovery.Recover(
		conf, randomizedPwd, serverPublicKey, opened, []byte("client-id"), []byte("server-id"),
	)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}

	if !bytes.Equal(exportKeyReg, exportKeyLogin) {
		t.Fatal("export key differs between Store and Recover")
	}

	if !bytes.Equal(clientPublicKey.Encode(), recoveredPublicKey.Encode()) {
		t.Fatal("recovered client public key does not match the one produced at Store time")
	}

	if !bytes.Equal(conf.Group.Base().Multiply(clientSecretKey).Encode(), recoveredPublicKey.Encode()) {
		t.Fatal("recovered secret key does not correspond to the recovered public key")
	}
}

func TestRecover_WrongPasswordFails(t *testing.T) {
	conf := testConf()
	serverPublicKey := conf.Group.Base().Multiply(conf.Group.NewScalar().Random()).Encode()

	envelope, _, _ := keyrecovery.Store(
		conf, internal.RandomBytes(64), serverPublicKey, nil, nil,
	)

	_, _, _, err := keyrecovery.Recover(
		conf, internal.RandomBytes(64), serverPublicKey, envelope, nil, nil,
	)
	if err != keyrecovery.ErrInvalidLogin {
		t.Fatalf("expected ErrInvalidLogin, got %v", err)
	}
}

func TestRecover_TamperedServerPublicKeyFails(t *testing.T) {
	conf := testConf()
	randomizedPwd := internal.RandomBytes(64)
	serverPublicKey := conf.Group.Base().Multiply(conf.Group.NewScalar().Random()).Encode()

	envelope, _, _ := keyrecovery.Store(conf, randomizedPwd, serverPublicKey, nil, nil)

	otherServerPublicKey := conf.Group.Base().Multiply(conf.Group.NewScalar().Random()).Encode()

	_, _, _, err := keyrecovery.Recover(conf, randomizedPwd, otherServerPublicKey, envelope, nil, nil)
	if err != keyrecovery.ErrInvalidLogin {
		t.Fatalf("expected ErrInvalidLogin, got %v", err)
	}
}

func TestDummyEnvelope_NeverAuthenticates(t *testing.T) {
	conf := testConf()
	serverPublicKey := conf.Group.Base().Multiply(conf.Group.NewScalar().Random()).Encode()

	dummy := keyrecovery.Dummy(conf.MAC.Size())
	if len(dummy.Serialize()) != conf.EnvelopeSize {
		t.Fatalf("dummy envelope length = %d, want %d", len(dummy.Serialize()), conf.EnvelopeSize)
	}

	_, _, _, err := keyrecovery.Recover(conf, internal.RandomBytes(64), serverPublicKey, dummy, nil, nil)
	if err != keyrecovery.ErrIncompatibleEnvelopeMode {
		t.Fatalf("expected ErrIncompatibleEnvelopeMode, got %v", err)
	}
}
