// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package keyrecovery implements the OPAQUE envelope: sealing and opening the client's static key pair under
// a password-derived key, as described in spec §4.2.
package keyrecovery

import (
	"errors"

	"github.com/bytemare/ecc"

	"github.com/opaquecore/opaque/internal"
	"github.com/opaquecore/opaque/internal/encoding"
	"github.com/opaquecore/opaque/internal/oprf"
	"github.com/opaquecore/opaque/internal/tag"
)

// mode distinguishes a real, sealed envelope from the all-zero dummy used on the unknown-user path.
type mode byte

const (
	// modeZero is the dummy envelope mode: never authenticates, used only to mask unregistered users.
	modeZero mode = 0
	// modeInternal is the only mode this implementation ever produces or accepts for a real envelope.
	modeInternal mode = 1
)

// ErrIncompatibleEnvelopeMode indicates an attempt to open a dummy (Zero-mode) envelope.
var ErrIncompatibleEnvelopeMode = errors.New("keyrecovery: envelope mode is not Internal")

// ErrInvalidLogin collapses envelope-authentication failure into the single protocol-visible outcome that must
// not distinguish a wrong password from any other cause, per spec §7.
var ErrInvalidLogin = errors.New("keyrecovery: envelope authentication failed")

// Envelope is the client's password-sealed container: a nonce plus an authentication tag over that nonce and
// the envelope's associated data (server public key, server identity, client identity).
type Envelope struct {
	mode mode
	nonce []byte
	hmac  []byte
}

// Serialize returns the byte encoding of the envelope (nonce || hmac), regardless of mode: a dummy envelope
// serializes to the same length as a real one (all-zero bytes).
func (e *Envelope) Serialize() []byte {
	return encoding.Concatenate(e.nonce, e.hmac)
}

// Deserialize decodes an envelope of the given exact length (internal.NonceLength + mac size). Per spec §4.2,
// only the Internal mode can ever be produced on the wire by this implementation; the mode byte itself is not
// transmitted, so any successfully-lengthed buffer is provisionally Internal until HMAC verification says
// otherwise.
func Deserialize(macSize int, input []byte) (*Envelope, error) {
	if len(input) != internal.NonceLength+macSize {
		return nil, errors.New("keyrecovery: invalid envelope length")
	}

	return &Envelope{
		mode:  modeInternal,
		nonce: append([]byte(nil), input[:internal.NonceLength]...),
		hmac:  append([]byte(nil), input[internal.NonceLength:]...),
	}, nil
}

// Dummy returns the all-zero envelope used on the unknown-user (fake credential) login path. It serializes to
// exactly the same length as a real envelope and never authenticates.
func Dummy(macSize int) *Envelope {
	return &Envelope{
		mode:  modeZero,
		nonce: make([]byte, internal.NonceLength),
		hmac:  make([]byte, macSize),
	}
}

func deriveAuthKeyPair(conf *internal.Configuration, randomizedPwd, nonce []byte) (*ecc.Scalar, *ecc.Element) {
	seed := conf.KDF.Expand(randomizedPwd, encoding.SuffixString(nonce, tag.ExpandPrivateKey), internal.SeedLength)
	sk := oprf.Identifier(conf.OPRF).DeriveKey(seed, []byte(tag.DerivePrivateKeyPair))

	return sk, conf.Group.Base().Multiply(sk)
}

func constructAAD(serverPublicKey, serverIdentity, clientIdentity []byte) []byte {
	return encoding.Concatenate(serverPublicKey, serverIdentity, clientIdentity)
}

func authKeyAndExportKey(conf *internal.Configuration, randomizedPwd, nonce []byte) (authKey, exportKey []byte) {
	authKey = conf.KDF.Expand(randomizedPwd, encoding.SuffixString(nonce, tag.AuthKey), conf.Hash.Size())
	exportKey = conf.KDF.Expand(randomizedPwd, encoding.SuffixString(nonce, tag.ExportKey), conf.Hash.Size())

	return authKey, exportKey
}

// Store seals a fresh envelope under randomizedPwd, binding serverPublicKey and the (possibly defaulted)
// client/server identities as associated data. It returns the envelope, the client's derived static public
// key, and the export key.
func Store(
	conf *internal.Configuration,
	randomizedPwd, serverPublicKey []byte,
	clientIdentity, serverIdentity []byte,
) (envelope *Envelope, clientPublicKey *ecc.Element, exportKey []byte) {
	nonce := internal.RandomBytes(internal.NonceLength)

	_, clientPublicKey = deriveAuthKeyPair(conf, randomizedPwd, nonce)

	idU := clientIdentity
	if len(idU) == 0 {
		idU = clientPublicKey.Encode()
	}

	idS := serverIdentity
	if len(idS) == 0 {
		idS = serverPublicKey
	}

	aad := constructAAD(serverPublicKey, idS, idU)

	authKey, exportKey := authKeyAndExportKey(conf, randomizedPwd, nonce)
	tagBytes := conf.MAC.MAC(authKey, encoding.Concatenate(nonce, aad))

	return &Envelope{mode: modeInternal, nonce: nonce, hmac: tagBytes}, clientPublicKey, exportKey
}

// Recover opens envelope under randomizedPwd, re-deriving the client static key pair and verifying the HMAC
// against serverPublicKey and the (possibly defaulted) identities. A dummy (Zero-mode) envelope is rejected with
// ErrIncompatibleEnvelopeMode; any authentication failure - wrong password, tampered AAD - surfaces as the single
// ErrInvalidLogin outcome.
func Recover(
	conf *internal.Configuration,
	randomizedPwd, serverPublicKey []byte,
	envelope *Envelope,
	clientIdentity, serverIdentity []byte,
) (clientSecretKey *ecc.Scalar, clientPublicKey *ecc.Element, exportKey []byte, err error) {
	if envelope.mode != modeInternal {
		return nil, nil, nil, ErrIncompatibleEnvelopeMode
	}

	clientSecretKey, clientPublicKey = deriveAuthKeyPair(conf, randomizedPwd, envelope.nonce)

	idU := clientIdentity
	if len(idU) == 0 {
		idU = clientPublicKey.Encode()
	}

	idS := serverIdentity
	if len(idS) == 0 {
		idS = serverPublicKey
	}

	aad := constructAAD(serverPublicKey, idS, idU)

	authKey, derivedExportKey := authKeyAndExportKey(conf, randomizedPwd, envelope.nonce)

	if !conf.MAC.Equal(envelope.hmac, conf.MAC.MAC(authKey, encoding.Concatenate(envelope.nonce, aad))) {
		return nil, nil, nil, ErrInvalidLogin
	}

	return clientSecretKey, clientPublicKey, derivedExportKey, nil
}
