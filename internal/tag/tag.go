// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package tag holds the ASCII domain-separation labels used across the HKDF schedule and the 3DH transcript.
package tag

const (
	// VersionTag prefixes the 3DH preamble.
	VersionTag = "OPAQUE-"

	// LabelPrefix prefixes every Derive-Secret label inside the 3DH key schedule.
	LabelPrefix = "OPAQUE-"

	// AuthKey is the HKDF-Expand label for the envelope's HMAC key.
	AuthKey = "AuthKey"

	// ExportKey is the HKDF-Expand label for the envelope's export key.
	ExportKey = "ExportKey"

	// ExpandPrivateKey is the HKDF-Expand label for the envelope's client static key seed.
	ExpandPrivateKey = "PrivateKey"

	// DerivePrivateKeyPair is the OPAQUE-level info label passed into the OPRF's own DeriveKeyPair procedure
	// when turning the envelope seed into the client's static key pair.
	DerivePrivateKeyPair = "OPAQUE-DeriveAuthKeyPair"

	// MaskingKey is the HKDF-Expand label for the registration record's masking key.
	MaskingKey = "MaskingKey"

	// CredentialResponsePad is the HKDF-Expand label for the per-login masking pad.
	CredentialResponsePad = "CredentialResponsePad"

	// ExpandOPRF is the HKDF-Expand label used to derive the per-user OPRF key seed from the OPRF seed.
	ExpandOPRF = "OprfKey"

	// DeriveKeyPair is the OPAQUE-level info label passed into the OPRF's own DeriveKeyPair procedure
	// when deriving the server's per-user OPRF key.
	DeriveKeyPair = "OPAQUE-DeriveKeyPair"

	// DeriveKeyPairInternal is the VOPRF (RFC 9497 §3.2) DeriveKeyPair domain separator, fixed per
	// ciphersuite and independent of the caller-supplied info label.
	DeriveKeyPairInternal = "DeriveKeyPair"

	// Handshake is the Derive-Secret label for the 3DH handshake secret.
	Handshake = "HandshakeSecret"

	// SessionKey is the Derive-Secret label for the 3DH session key.
	SessionKey = "SessionKey"

	// MacServer is the Expand-Label for the server MAC key.
	MacServer = "ServerMAC"

	// MacClient is the Expand-Label for the client MAC key.
	MacClient = "ClientMAC"

	// OPRF is the domain separation prefix used in the OPRF's own contextString.
	OPRF = "OPRFV1-"
)
