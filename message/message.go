// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package message defines the byte-exact wire messages exchanged during OPAQUE registration and login.
package message

import (
	"errors"

	"github.com/bytemare/ecc"
)

// ErrInvalidLength indicates a message failed to decode because its encoded length didn't match expectations.
var ErrInvalidLength = errors.New("message: invalid encoded length")

// ErrIdentityElement indicates an encoded group element decoded to the group's identity element, which is
// never valid in an OPRF message.
var ErrIdentityElement = errors.New("message: element decodes to the group identity")

func decodeElement(g ecc.Group, input []byte) (*ecc.Element, error) {
	e := g.NewElement()
	if err := e.Decode(input); err != nil {
		return nil, err
	}

	if e.IsIdentity() {
		return nil, ErrIdentityElement
	}

	return e, nil
}

// RegistrationRequest is the client's first registration message: a blinded representation of the password.
type RegistrationRequest struct {
	BlindedMessage *ecc.Element
}

// Serialize returns the byte encoding of the request.
func (m *RegistrationRequest) Serialize() []byte {
	return m.BlindedMessage.Encode()
}

// DeserializeRegistrationRequest decodes a RegistrationRequest.
func DeserializeRegistrationRequest(g ecc.Group, input []byte) (*RegistrationRequest, error) {
	if len(input) != g.ElementLength() {
		return nil, ErrInvalidLength
	}

	e, err := decodeElement(g, input)
	if err != nil {
		return nil, err
	}

	return &RegistrationRequest{BlindedMessage: e}, nil
}

// RegistrationResponse is the server's answer to a RegistrationRequest.
type RegistrationResponse struct {
	EvaluatedMessage *ecc.Element
	Pks              *ecc.Element
}

// Serialize returns the byte encoding of the response.
func (m *RegistrationResponse) Serialize() []byte {
	return append(m.EvaluatedMessage.Encode(), m.Pks.Encode()...)
}

// DeserializeRegistrationResponse decodes a RegistrationResponse.
func DeserializeRegistrationResponse(g ecc.Group, input []byte) (*RegistrationResponse, error) {
	el := g.ElementLength()
	if len(input) != 2*el {
		return nil, ErrInvalidLength
	}

	z, err := decodeElement(g, input[:el])
	if err != nil {
		return nil, err
	}

	pks, err := decodeElement(g, input[el:])
	if err != nil {
		return nil, err
	}

	return &RegistrationResponse{EvaluatedMessage: z, Pks: pks}, nil
}

// RegistrationRecord is what the client uploads at the end of registration, and what the server persists
// against the user's credential identifier.
type RegistrationRecord struct {
	PublicKey  *ecc.Element
	MaskingKey []byte
	Envelope   []byte
}

// Serialize returns the byte encoding of the record.
func (m *RegistrationRecord) Serialize() []byte {
	out := make([]byte, 0, m.PublicKey.Group().ElementLength()+len(m.MaskingKey)+len(m.Envelope))
	out = append(out, m.PublicKey.Encode()...)
	out = append(out, m.MaskingKey...)
	out = append(out, m.Envelope...)

	return out
}

// DeserializeRegistrationRecord decodes a RegistrationRecord. maskingKeySize and envelopeSize are
// ciphersuite-determined (hash output size and NonceLength+MAC size respectively).
func DeserializeRegistrationRecord(g ecc.Group, maskingKeySize, envelopeSize int, input []byte) (*RegistrationRecord, error) {
	el := g.ElementLength()
	if len(input) != el+maskingKeySize+envelopeSize {
		return nil, ErrInvalidLength
	}

	pk, err := decodeElement(g, input[:el])
	if err != nil {
		return nil, err
	}

	maskingKey := input[el : el+maskingKeySize]
	envelope := input[el+maskingKeySize:]

	return &RegistrationRecord{
		PublicKey:  pk,
		MaskingKey: append([]byte(nil), maskingKey...),
		Envelope:   append([]byte(nil), envelope...),
	}, nil
}

// CredentialRequest is the OPRF half of a login request: a blinded representation of the password.
type CredentialRequest struct {
	BlindedMessage *ecc.Element
}

// Serialize returns the byte encoding of the request.
func (m *CredentialRequest) Serialize() []byte {
	return m.BlindedMessage.Encode()
}

// DeserializeCredentialRequest decodes a CredentialRequest.
func DeserializeCredentialRequest(g ecc.Group, input []byte) (*CredentialRequest, error) {
	if len(input) != g.ElementLength() {
		return nil, ErrInvalidLength
	}

	e, err := decodeElement(g, input)
	if err != nil {
		return nil, err
	}

	return &CredentialRequest{BlindedMessage: e}, nil
}

// KE1 is the client's first authenticated-key-exchange message, carried alongside the CredentialRequest.
type KE1 struct {
	*CredentialRequest
	ClientNonce           []byte
	ClientPublicKeyshare  *ecc.Element
}

// Serialize returns the byte encoding of the full CredentialRequest||KE1 message ("l1" in spec §4.3).
func (m *KE1) Serialize() []byte {
	out := m.CredentialRequest.Serialize()
	out = append(out, m.ClientNonce...)
	out = append(out, m.ClientPublicKeyshare.Encode()...)

	return out
}

// DeserializeKE1 decodes a KE1 message (blinded_element || client_nonce || client_keyshare).
func DeserializeKE1(g ecc.Group, nonceLen int, input []byte) (*KE1, error) {
	el := g.ElementLength()
	if len(input) != el+nonceLen+el {
		return nil, ErrInvalidLength
	}

	req, err := DeserializeCredentialRequest(g, input[:el])
	if err != nil {
		return nil, err
	}

	nonce := input[el : el+nonceLen]

	epk, err := decodeElement(g, input[el+nonceLen:])
	if err != nil {
		return nil, err
	}

	return &KE1{
		CredentialRequest:    req,
		ClientNonce:          append([]byte(nil), nonce...),
		ClientPublicKeyshare: epk,
	}, nil
}

// CredentialResponse is the OPRF/masking half of a login response.
type CredentialResponse struct {
	EvaluatedMessage *ecc.Element
	MaskingNonce     []byte
	MaskedResponse   []byte
}

// NewCredentialResponse builds a CredentialResponse from its parts.
func NewCredentialResponse(evaluated *ecc.Element, maskingNonce, maskedResponse []byte) *CredentialResponse {
	return &CredentialResponse{
		EvaluatedMessage: evaluated,
		MaskingNonce:     maskingNonce,
		MaskedResponse:   maskedResponse,
	}
}

// Serialize returns the byte encoding of the response.
func (m *CredentialResponse) Serialize() []byte {
	out := m.EvaluatedMessage.Encode()
	out = append(out, m.MaskingNonce...)
	out = append(out, m.MaskedResponse...)

	return out
}

// DeserializeCredentialResponse decodes a CredentialResponse. maskedResponseLen is Npk+32+Nm.
func DeserializeCredentialResponse(g ecc.Group, nonceLen, maskedResponseLen int, input []byte) (*CredentialResponse, error) {
	el := g.ElementLength()
	if len(input) != el+nonceLen+maskedResponseLen {
		return nil, ErrInvalidLength
	}

	z, err := decodeElement(g, input[:el])
	if err != nil {
		return nil, err
	}

	maskingNonce := input[el : el+nonceLen]
	maskedResponse := input[el+nonceLen:]

	return &CredentialResponse{
		EvaluatedMessage: z,
		MaskingNonce:     append([]byte(nil), maskingNonce...),
		MaskedResponse:   append([]byte(nil), maskedResponse...),
	}, nil
}

// KE2 is the server's authenticated-key-exchange response, carried alongside the CredentialResponse.
type KE2 struct {
	*CredentialResponse
	ServerNonce          []byte
	ServerPublicKeyshare *ecc.Element
	ServerMac            []byte
}

// Serialize returns the byte encoding of the full CredentialResponse||KE2 message ("l2" plus the KE2 suffix).
func (m *KE2) Serialize() []byte {
	out := m.CredentialResponse.Serialize()
	out = append(out, m.ServerNonce...)
	out = append(out, m.ServerPublicKeyshare.Encode()...)
	out = append(out, m.ServerMac...)

	return out
}

// DeserializeKE2 decodes a full KE2 message.
func DeserializeKE2(g ecc.Group, nonceLen, macLen, maskedResponseLen int, input []byte) (*KE2, error) {
	el := g.ElementLength()
	credLen := el + nonceLen + maskedResponseLen

	if len(input) != credLen+nonceLen+el+macLen {
		return nil, ErrInvalidLength
	}

	resp, err := DeserializeCredentialResponse(g, nonceLen, maskedResponseLen, input[:credLen])
	if err != nil {
		return nil, err
	}

	rest := input[credLen:]
	serverNonce := rest[:nonceLen]

	epk, err := decodeElement(g, rest[nonceLen:nonceLen+el])
	if err != nil {
		return nil, err
	}

	mac := rest[nonceLen+el:]

	return &KE2{
		CredentialResponse:   resp,
		ServerNonce:          append([]byte(nil), serverNonce...),
		ServerPublicKeyshare: epk,
		ServerMac:            append([]byte(nil), mac...),
	}, nil
}

// KE3 is the client's final authentication tag, completing the handshake.
type KE3 struct {
	ClientMac []byte
}

// Serialize returns the byte encoding of the KE3 message.
func (m *KE3) Serialize() []byte {
	return append([]byte(nil), m.ClientMac...)
}

// DeserializeKE3 decodes a KE3 message of exactly macLen bytes.
func DeserializeKE3(macLen int, input []byte) (*KE3, error) {
	if len(input) != macLen {
		return nil, ErrInvalidLength
	}

	return &KE3{ClientMac: append([]byte(nil), input...)}, nil
}
