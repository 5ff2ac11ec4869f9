// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package masking implements the credential-response masking described in spec §4.5: XOR-ing the server's
// public key and the stored envelope under an HKDF-derived pad, so an unregistered user's response is the
// same size and shape as a registered one.
package masking

import (
	"github.com/opaquecore/opaque/internal"
	"github.com/opaquecore/opaque/internal/encoding"
	"github.com/opaquecore/opaque/internal/tag"
)

func pad(conf *internal.Configuration, maskingKey, maskingNonce []byte, length int) []byte {
	return conf.KDF.Expand(maskingKey, encoding.SuffixString(maskingNonce, tag.CredentialResponsePad), length)
}

// Mask XORs serverPublicKey||envelope under a fresh (or caller-supplied) masking nonce, returning the nonce
// used and the masked response.
func Mask(conf *internal.Configuration, maskingNonce, maskingKey, serverPublicKey, envelope []byte) (nonce, maskedResponse []byte) {
	if len(maskingNonce) == 0 {
		maskingNonce = internal.RandomBytes(internal.NonceLength)
	}

	plaintext := encoding.Concatenate(serverPublicKey, envelope)
	p := pad(conf, maskingKey, maskingNonce, len(plaintext))

	masked := make([]byte, len(plaintext))
	for i := range plaintext {
		masked[i] = plaintext[i] ^ p[i]
	}

	return maskingNonce, masked
}

// Unmask reverses Mask, splitting the recovered plaintext into the server's public key and the envelope bytes.
func Unmask(conf *internal.Configuration, maskingNonce, maskingKey, maskedResponse []byte, pkLen int) (serverPublicKey, envelope []byte) {
	p := pad(conf, maskingKey, maskingNonce, len(maskedResponse))

	plaintext := make([]byte, len(maskedResponse))
	for i := range maskedResponse {
		plaintext[i] = maskedResponse[i] ^ p[i]
	}

	return plaintext[:pkLen], plaintext[pkLen:]
}
