// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ake

import (
	"errors"

	"github.com/bytemare/ecc"

	"github.com/opaquecore/opaque/internal"
	"github.com/opaquecore/opaque/message"
)

// ErrInvalidServerMac indicates the server's MAC in KE2 did not authenticate under the derived key.
var ErrInvalidServerMac = errors.New("ake: invalid server mac")

// Client exposes the client's AKE functions and holds its state between GenerateKE1 and GenerateKE3.
type Client struct {
	values
	sessionSecret []byte
}

// NewClient returns a new, empty, 3DH client.
func NewClient() *Client {
	return &Client{}
}

// Init produces the client's KE1 message, binding it to the given CredentialRequest.
func (c *Client) Init(conf *internal.Configuration, req *message.CredentialRequest, options Options) *message.KE1 {
	epk := c.setOptions(conf.Group, options)

	return &message.KE1{
		CredentialRequest:    req,
		ClientNonce:          c.nonce,
		ClientPublicKeyshare: epk,
	}
}

// Finalize verifies the server's KE2 message and produces the client's KE3 message and the session key.
// clientSecretKey is the client's recovered static secret key (from the opened envelope); serverPublicKey is
// the server's long-term static public key (recovered from the masked response).
func (c *Client) Finalize(
	conf *internal.Configuration,
	identities *Identities,
	clientSecretKey *ecc.Scalar,
	serverPublicKey *ecc.Element,
	ke1Bytes []byte,
	ke2 *message.KE2,
) (sessionKey []byte, ke3 *message.KE3, err error) {
	ikm := k3dh(
		ke2.ServerPublicKeyshare,
		c.ephemeralSecretKey,
		serverPublicKey,
		c.ephemeralSecretKey,
		ke2.ServerPublicKeyshare,
		clientSecretKey,
	)

	sessionSecret, expectedServerMac, clientMac := core3DH(conf, identities, ikm, ke1Bytes, ke2)

	if !conf.MAC.Equal(expectedServerMac, ke2.ServerMac) {
		return nil, nil, ErrInvalidServerMac
	}

	c.sessionSecret = sessionSecret

	return sessionSecret, &message.KE3{ClientMac: clientMac}, nil
}

// SessionKey returns the session key derived by a previous successful call to Finalize.
func (c *Client) SessionKey() []byte {
	return c.sessionSecret
}

// Flush sets all the client's session-related internal AKE values to nil.
func (c *Client) Flush() {
	c.flush()
	c.sessionSecret = nil
}
