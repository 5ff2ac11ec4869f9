// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package message_test

import (
	"bytes"
	"testing"

	"github.com/bytemare/ecc"

	"github.com/opaquecore/opaque/message"
)

const group = ecc.Ristretto255Sha512

func randomElement() *ecc.Element {
	return group.Base().Multiply(group.NewScalar().Random())
}

func TestRegistrationRequest_RoundTrip(t *testing.T) {
	req := &message.RegistrationRequest{BlindedMessage: randomElement()}

	decoded, err := message.DeserializeRegistrationRequest(group, req.Serialize())
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if !bytes.Equal(decoded.BlindedMessage.Encode(), req.BlindedMessage.Encode()) {
		t.Fatal("round trip changed the blinded message")
	}
}

func TestRegistrationRequest_RejectsWrongLength(t *testing.T) {
	if _, err := message.DeserializeRegistrationRequest(group, []byte{1, 2, 3}); err != message.ErrInvalidLength {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
}

func TestRegistrationRequest_RejectsIdentityElement(t *testing.T) {
	identity := group.NewElement().Encode()

	if _, err := message.DeserializeRegistrationRequest(group, identity); err != message.ErrIdentityElement {
		t.Fatalf("expected ErrIdentityElement, got %v", err)
	}
}

func TestRegistrationRecord_RoundTrip(t *testing.T) {
	record := &message.RegistrationRecord{
		PublicKey:  randomElement(),
		MaskingKey: []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcd"),
		Envelope:   []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcd"),
	}

	decoded, err := message.DeserializeRegistrationRecord(group, len(record.MaskingKey), len(record.Envelope), record.Serialize())
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if !bytes.Equal(decoded.MaskingKey, record.MaskingKey) || !bytes.Equal(decoded.Envelope, record.Envelope) {
		t.Fatal("round trip changed masking key or envelope bytes")
	}
}

func TestKE1_RoundTrip(t *testing.T) {
	ke1 := &message.KE1{
		CredentialRequest:    &message.CredentialRequest{BlindedMessage: randomElement()},
		ClientNonce:          bytes.Repeat([]byte{0x42}, 32),
		ClientPublicKeyshare: randomElement(),
	}

	decoded, err := message.DeserializeKE1(group, 32, ke1.Serialize())
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if !bytes.Equal(decoded.Serialize(), ke1.Serialize()) {
		t.Fatal("round trip changed the KE1 encoding")
	}
}

func TestKE2_RoundTrip(t *testing.T) {
	maskedResponse := bytes.Repeat([]byte{0x7}, group.ElementLength()+64)

	ke2 := &message.KE2{
		CredentialResponse: message.NewCredentialResponse(randomElement(), bytes.Repeat([]byte{0x1}, 32), maskedResponse),
		ServerNonce:        bytes.Repeat([]byte{0x2}, 32),
		ServerPublicKeyshare: randomElement(),
		ServerMac:          bytes.Repeat([]byte{0x3}, 64),
	}

	decoded, err := message.DeserializeKE2(group, 32, 64, len(maskedResponse), ke2.Serialize())
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if !bytes.Equal(decoded.Serialize(), ke2.Serialize()) {
		t.Fatal("round trip changed the KE2 encoding")
	}
}

func TestKE3_RoundTrip(t *testing.T) {
	ke3 := &message.KE3{ClientMac: bytes.Repeat([]byte{0x9}, 64)}

	decoded, err := message.DeserializeKE3(64, ke3.Serialize())
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if !bytes.Equal(decoded.ClientMac, ke3.ClientMac) {
		t.Fatal("round trip changed the client MAC")
	}
}
