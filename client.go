// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"errors"

	"github.com/bytemare/ecc"

	"github.com/opaquecore/opaque/internal"
	"github.com/opaquecore/opaque/internal/ake"
	"github.com/opaquecore/opaque/internal/keyrecovery"
	"github.com/opaquecore/opaque/internal/masking"
	"github.com/opaquecore/opaque/internal/oprf"
	"github.com/opaquecore/opaque/internal/tag"
	"github.com/opaquecore/opaque/message"
)

// ErrInvalidLogin is the single protocol-visible outcome for a wrong password, an unknown user, an envelope
// authentication failure, or a key-exchange MAC failure. Collapsing these into one error and one wire shape is
// what makes the unknown-user and wrong-password paths indistinguishable to a network observer (spec §7, §8).
var ErrInvalidLogin = errors.New("invalid client credentials")

// Client represents an OPAQUE Client, exposing its functions and holding its per-handshake state.
type Client struct {
	Deserialize *Deserializer
	conf        *internal.Configuration
	Ake         *ake.Client

	oprfClient *oprf.Client
	password   []byte
}

// NewClient returns a newly instantiated Client from the Configuration.
func NewClient(c *Configuration) (*Client, error) {
	if c == nil {
		c = DefaultConfiguration()
	}

	conf, err := c.toInternal()
	if err != nil {
		return nil, err
	}

	return &Client{
		Deserialize: &Deserializer{conf: conf},
		conf:        conf,
		Ake:         ake.NewClient(),
	}, nil
}

// Identities carries the optional application-level client/server identities bound into the envelope and the
// 3DH transcript. A nil field defaults to the corresponding static public key (spec §4.6).
type Identities struct {
	ClientIdentity []byte
	ServerIdentity []byte
}

func (i Identities) toAke() *ake.Identities {
	return &ake.Identities{ClientIdentity: i.ClientIdentity, ServerIdentity: i.ServerIdentity}
}

// RegistrationInit blinds password and returns the first registration message. The blind is held internally
// until RegistrationFinalize is called on the same Client.
func (c *Client) RegistrationInit(password []byte) *message.RegistrationRequest {
	c.oprfClient = c.conf.OPRF.NewClient()
	c.password = password

	return &message.RegistrationRequest{BlindedMessage: c.oprfClient.Blind(password)}
}

// RegistrationFinalize consumes the server's RegistrationResponse and produces the RegistrationRecord to
// upload, plus the export key.
func (c *Client) RegistrationFinalize(
	response *message.RegistrationResponse,
	identities Identities,
) (*message.RegistrationRecord, []byte, error) {
	randomizedPwd, err := c.randomizedPassword(response.EvaluatedMessage)
	if err != nil {
		return nil, nil, ErrInvalidLogin
	}

	maskingKey := c.conf.KDF.Expand(randomizedPwd, []byte(tag.MaskingKey), c.conf.Hash.Size())

	envelope, clientPublicKey, exportKey := keyrecovery.Store(
		c.conf, randomizedPwd, response.Pks.Encode(), identities.ClientIdentity, identities.ServerIdentity,
	)

	return &message.RegistrationRecord{
		PublicKey:  clientPublicKey,
		MaskingKey: maskingKey,
		Envelope:   envelope.Serialize(),
	}, exportKey, nil
}

// GenerateKE1 blinds password and returns the client's first login message.
func (c *Client) GenerateKE1(password []byte, options ...ake.Options) *message.KE1 {
	c.oprfClient = c.conf.OPRF.NewClient()
	c.password = password

	req := &message.CredentialRequest{BlindedMessage: c.oprfClient.Blind(password)}

	var op ake.Options
	if len(options) != 0 {
		op = options[0]
	}

	return c.Ake.Init(c.conf, req, op)
}

// GenerateKE3 unmasks and opens the credential response, verifies the server's KE2, and returns the client's
// final KE3 message alongside the session key and the export key. Any failure - wrong password, tampered
// server response, invalid server MAC - surfaces uniformly as ErrInvalidLogin, never distinguishing the cause.
func (c *Client) GenerateKE3(
	ke1 *message.KE1,
	ke2 *message.KE2,
	identities Identities,
) (*message.KE3, []byte, []byte, error) {
	randomizedPwd, err := c.randomizedPassword(ke2.EvaluatedMessage)
	if err != nil {
		return nil, nil, nil, ErrInvalidLogin
	}

	maskingKey := c.conf.KDF.Expand(randomizedPwd, []byte(tag.MaskingKey), c.conf.Hash.Size())

	serverPublicKeyBytes, envelopeBytes := masking.Unmask(
		c.conf, ke2.MaskingNonce, maskingKey, ke2.MaskedResponse, c.conf.Group.ElementLength(),
	)

	serverPublicKey := c.conf.Group.NewElement()
	if err := serverPublicKey.Decode(serverPublicKeyBytes); err != nil {
		return nil, nil, nil, ErrInvalidLogin
	}

	envelope, err := keyrecovery.Deserialize(c.conf.MAC.Size(), envelopeBytes)
	if err != nil {
		return nil, nil, nil, ErrInvalidLogin
	}

	clientSecretKey, clientPublicKey, exportKey, err := keyrecovery.Recover(
		c.conf, randomizedPwd, serverPublicKeyBytes, envelope, identities.ClientIdentity, identities.ServerIdentity,
	)
	if err != nil {
		return nil, nil, nil, ErrInvalidLogin
	}

	akeIdentities := identities.toAke()
	akeIdentities.SetIdentities(clientPublicKey.Encode(), serverPublicKeyBytes)

	sessionKey, ke3, err := c.Ake.Finalize(
		c.conf, akeIdentities, clientSecretKey, serverPublicKey, ke1.Serialize(), ke2,
	)
	if err != nil {
		return nil, nil, nil, ErrInvalidLogin
	}

	return ke3, sessionKey, exportKey, nil
}

// SessionKey returns the session key, if a previous call to GenerateKE3 was successful.
func (c *Client) SessionKey() []byte {
	return c.Ake.SessionKey()
}

// KeyGen returns a static key pair in the AKE group, for the caller's own account bootstrap flows.
func (c *Client) KeyGen() (sk, pk []byte) {
	return ake.KeyGen(c.conf.Group)
}

// randomizedPassword finalizes the OPRF exchange and runs the optional KSF, producing
// rp = HKDF-Extract(salt=0, oprf_output || KSF(oprf_output)), per spec §4.4.
func (c *Client) randomizedPassword(evaluated *ecc.Element) ([]byte, error) {
	oprfOutput, err := c.oprfClient.Finalize(c.password, evaluated)
	if err != nil {
		return nil, err
	}

	stretched := c.conf.KSF.Harden(oprfOutput, nil, c.conf.Hash.Size())
	ikm := append(append([]byte(nil), oprfOutput...), stretched...)

	return c.conf.KDF.Extract(nil, ikm), nil
}
