// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"github.com/opaquecore/opaque/internal"
	"github.com/opaquecore/opaque/message"
)

// Deserializer exposes functions to deserialize messages, bound to a specific Configuration's wire lengths
// (group element size, nonce length, MAC and masking-key sizes), so the caller never has to track them.
type Deserializer struct {
	conf *internal.Configuration
}

func (d *Deserializer) maskedResponseLen() int {
	return d.conf.Group.ElementLength() + d.conf.EnvelopeSize
}

// RegistrationRequest returns a deserialized RegistrationRequest.
func (d *Deserializer) RegistrationRequest(input []byte) (*message.RegistrationRequest, error) {
	return message.DeserializeRegistrationRequest(d.conf.Group, input)
}

// RegistrationResponse returns a deserialized RegistrationResponse.
func (d *Deserializer) RegistrationResponse(input []byte) (*message.RegistrationResponse, error) {
	return message.DeserializeRegistrationResponse(d.conf.Group, input)
}

// RegistrationRecord returns a deserialized RegistrationRecord.
func (d *Deserializer) RegistrationRecord(input []byte) (*message.RegistrationRecord, error) {
	return message.DeserializeRegistrationRecord(d.conf.Group, d.conf.KDF.Size(), d.conf.EnvelopeSize, input)
}

// CredentialRequest returns a deserialized CredentialRequest.
func (d *Deserializer) CredentialRequest(input []byte) (*message.CredentialRequest, error) {
	return message.DeserializeCredentialRequest(d.conf.Group, input)
}

// CredentialResponse returns a deserialized CredentialResponse.
func (d *Deserializer) CredentialResponse(input []byte) (*message.CredentialResponse, error) {
	return message.DeserializeCredentialResponse(d.conf.Group, d.conf.NonceLen, d.maskedResponseLen(), input)
}

// KE1 returns a deserialized KE1 message.
func (d *Deserializer) KE1(input []byte) (*message.KE1, error) {
	return message.DeserializeKE1(d.conf.Group, d.conf.NonceLen, input)
}

// KE2 returns a deserialized KE2 message.
func (d *Deserializer) KE2(input []byte) (*message.KE2, error) {
	return message.DeserializeKE2(d.conf.Group, d.conf.NonceLen, d.conf.MAC.Size(), d.maskedResponseLen(), input)
}

// KE3 returns a deserialized KE3 message.
func (d *Deserializer) KE3(input []byte) (*message.KE3, error) {
	return message.DeserializeKE3(d.conf.MAC.Size(), input)
}
