// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ake_test

import (
	"bytes"
	"crypto"
	"testing"

	"github.com/bytemare/ecc"

	"github.com/opaquecore/opaque/internal"
	"github.com/opaquecore/opaque/internal/ake"
	"github.com/opaquecore/opaque/internal/oprf"
	"github.com/opaquecore/opaque/message"
)

func testConf() *internal.Configuration {
	mac := internal.NewMac(crypto.SHA512)

	return &internal.Configuration{
		OPRF:         oprf.RistrettoSha512,
		Group:        ecc.Ristretto255Sha512,
		KDF:          internal.NewKDF(crypto.SHA512),
		MAC:          mac,
		Hash:         internal.NewHash(crypto.SHA512),
		NonceLen:     internal.NonceLength,
		EnvelopeSize: internal.NonceLength + mac.Size(),
	}
}

func TestAKE_3DH_RoundTrip(t *testing.T) {
	conf := testConf()

	clientSecretKey, clientPublicKeyBytes := ake.KeyGen(conf.Group)
	serverSecretKeyBytes, serverPublicKeyBytes := ake.KeyGen(conf.Group)

	clientSK := conf.Group.NewScalar()
	if err := clientSK.Decode(clientSecretKey); err != nil {
		t.Fatalf("decode client secret key: %v", err)
	}

	serverSK := conf.Group.NewScalar()
	if err := serverSK.Decode(serverSecretKeyBytes); err != nil {
		t.Fatalf("decode server secret key: %v", err)
	}

	clientPK := conf.Group.NewElement()
	if err := clientPK.Decode(clientPublicKeyBytes); err != nil {
		t.Fatalf("decode client public key: %v", err)
	}

	serverPK := conf.Group.NewElement()
	if err := serverPK.Decode(serverPublicKeyBytes); err != nil {
		t.Fatalf("decode server public key: %v", err)
	}

	identities := &ake.Identities{}
	identities.SetIdentities(clientPublicKeyBytes, serverPublicKeyBytes)

	client := ake.NewClient()
	req := &message.CredentialRequest{BlindedMessage: conf.Group.Base().Multiply(conf.Group.NewScalar().Random())}
	ke1 := client.Init(conf, req, ake.Options{})

	server := ake.NewServer()
	response := &message.CredentialResponse{
		EvaluatedMessage: conf.Group.Base().Multiply(conf.Group.NewScalar().Random()),
		MaskingNonce:     internal.RandomBytes(internal.NonceLength),
		MaskedResponse:   internal.RandomBytes(conf.Group.ElementLength() + conf.EnvelopeSize),
	}

	ke2 := server.Response(conf, identities, serverSK, clientPK, ke1, response, ake.Options{})

	sessionKeyClient, ke3, err := client.Finalize(conf, identities, clientSK, serverPK, ke1.Serialize(), ke2)
	if err != nil {
		t.Fatalf("client finalize: %v", err)
	}

	if !server.Finalize(conf, ke3) {
		t.Fatal("server rejected a genuine client MAC")
	}

	if !bytes.Equal(sessionKeyClient, server.SessionKey()) {
		t.Fatal("client and server derived different session keys")
	}
}

func TestAKE_3DH_TamperedServerMacRejected(t *testing.T) {
	conf := testConf()

	clientSecretKey, clientPublicKeyBytes := ake.KeyGen(conf.Group)
	serverSecretKeyBytes, serverPublicKeyBytes := ake.KeyGen(conf.Group)

	clientSK := conf.Group.NewScalar()
	_ = clientSK.Decode(clientSecretKey)
	serverSK := conf.Group.NewScalar()
	_ = serverSK.Decode(serverSecretKeyBytes)
	clientPK := conf.Group.NewElement()
	_ = clientPK.Decode(clientPublicKeyBytes)
	serverPK := conf.Group.NewElement()
	_ = serverPK.Decode(serverPublicKeyBytes)

	identities := &ake.Identities{}
	identities.SetIdentities(clientPublicKeyBytes, serverPublicKeyBytes)

	client := ake.NewClient()
	req := &message.CredentialRequest{BlindedMessage: conf.Group.Base().Multiply(conf.Group.NewScalar().Random())}
	ke1 := client.Init(conf, req, ake.Options{})

	server := ake.NewServer()
	response := &message.CredentialResponse{
		EvaluatedMessage: conf.Group.Base().Multiply(conf.Group.NewScalar().Random()),
		MaskingNonce:     internal.RandomBytes(internal.NonceLength),
		MaskedResponse:   internal.RandomBytes(conf.Group.ElementLength() + conf.EnvelopeSize),
	}

	ke2 := server.Response(conf, identities, serverSK, clientPK, ke1, response, ake.Options{})
	ke2.ServerMac[0] ^= 0xff

	if _, _, err := client.Finalize(conf, identities, clientSK, serverPK, ke1.Serialize(), ke2); err != ake.ErrInvalidServerMac {
		t.Fatalf("expected ErrInvalidServerMac, got %v", err)
	}
}

func TestAKE_DeterministicOptions(t *testing.T) {
	conf := testConf()

	seed := internal.RandomBytes(conf.Group.ScalarLength())
	nonce := internal.RandomBytes(internal.NonceLength)

	client := ake.NewClient()
	req := &message.CredentialRequest{BlindedMessage: conf.Group.Base().Multiply(conf.Group.NewScalar().Random())}

	ke1a := client.Init(conf, req, ake.Options{KeyShareSeed: seed, Nonce: nonce})
	ke1b := ake.NewClient().Init(conf, req, ake.Options{KeyShareSeed: seed, Nonce: nonce})

	if !bytes.Equal(ke1a.Serialize(), ke1b.Serialize()) {
		t.Fatal("identical KeyShareSeed/Nonce options produced different KE1 messages")
	}
}
