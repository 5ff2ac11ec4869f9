// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package ake provides high-level functions for the 3DH AKE.
package ake

import (
	"github.com/bytemare/ecc"

	"github.com/opaquecore/opaque/internal"
	"github.com/opaquecore/opaque/internal/encoding"
	"github.com/opaquecore/opaque/internal/tag"
	"github.com/opaquecore/opaque/message"
)

// KeyGen returns a fresh private/public key pair in the given group, for use as a static AKE key.
func KeyGen(g ecc.Group) (sk, pk []byte) {
	scalar := g.NewScalar().Random()
	publicKey := g.Base().Multiply(scalar)

	return scalar.Encode(), publicKey.Encode()
}

func buildLabel(length int, label, context []byte) []byte {
	return encoding.Concat3(
		encoding.I2OSP(length, 2),
		encoding.EncodeVectorLen(append([]byte(tag.LabelPrefix), label...), 1),
		encoding.EncodeVectorLen(context, 1))
}

func expand(h *internal.KDF, secret, hkdfLabel []byte) []byte {
	return h.Expand(secret, hkdfLabel, h.Size())
}

func expandLabel(h *internal.KDF, secret, label, context []byte) []byte {
	hkdfLabel := buildLabel(h.Size(), label, context)
	return expand(h, secret, hkdfLabel)
}

func deriveSecret(h *internal.KDF, secret, label, context []byte) []byte {
	return expandLabel(h, secret, label, context)
}

// preamble builds the 3DH transcript preamble described in spec §4.3:
//
//	"OPAQUE-" || I2OSP(len(context),2) || context || I2OSP(len(id_u),2) || id_u ||
//	l1 || l2 || I2OSP(len(id_s),2) || id_s || server_nonce || server_e_pk
//
// l1 is the serialized CredentialRequest||KE1 ("ke1Bytes"); l2 is the serialized CredentialResponse prefix of
// KE2, i.e. evaluation_element || masking_nonce || masked_response.
func preamble(conf *internal.Configuration, identities *Identities, ke1Bytes []byte, ke2 *message.KE2) []byte {
	return encoding.Concatenate(
		[]byte(tag.VersionTag),
		encoding.EncodeVector(conf.Context),
		encoding.EncodeVector(identities.ClientIdentity),
		ke1Bytes,
		ke2.CredentialResponse.Serialize(),
		encoding.EncodeVector(identities.ServerIdentity),
		ke2.ServerNonce,
		ke2.ServerPublicKeyshare.Encode(),
	)
}

type macKeys struct {
	serverMacKey, clientMacKey []byte
}

func deriveKeys(h *internal.KDF, ikm, context []byte) (k *macKeys, sessionSecret []byte) {
	prk := h.Extract(nil, ikm)
	k = &macKeys{}
	handshakeSecret := deriveSecret(h, prk, []byte(tag.Handshake), context)
	sessionSecret = deriveSecret(h, prk, []byte(tag.SessionKey), context)
	k.serverMacKey = expandLabel(h, handshakeSecret, []byte(tag.MacServer), nil)
	k.clientMacKey = expandLabel(h, handshakeSecret, []byte(tag.MacClient), nil)

	return k, sessionSecret
}

// k3dh computes the concatenation of three scalar-point multiplications, serialized per the active group.
func k3dh(p1 *ecc.Element, s1 *ecc.Scalar, p2 *ecc.Element, s2 *ecc.Scalar, p3 *ecc.Element, s3 *ecc.Scalar) []byte {
	e1 := p1.Multiply(s1).Encode()
	e2 := p2.Multiply(s2).Encode()
	e3 := p3.Multiply(s3).Encode()

	return encoding.Concat3(e1, e2, e3)
}

// core3DH runs the shared half of the 3DH key schedule: builds the transcript hash, derives the session key
// and both MAC keys, and computes the server and (expected) client MAC tags.
func core3DH(
	conf *internal.Configuration,
	identities *Identities,
	ikm, ke1Bytes []byte,
	ke2 *message.KE2,
) (sessionSecret, serverMac, clientMac []byte) {
	h1 := conf.Hash.Sum(preamble(conf, identities, ke1Bytes, ke2))

	keys, sessionSecret := deriveKeys(conf.KDF, ikm, h1)
	serverMac = conf.MAC.MAC(keys.serverMacKey, h1)

	h2 := conf.Hash.Sum(preamble(conf, identities, ke1Bytes, ke2), serverMac)
	clientMac = conf.MAC.MAC(keys.clientMacKey, h2)

	return sessionSecret, serverMac, clientMac
}
