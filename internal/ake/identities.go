// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ake

// Identities holds the optional application-level identities bound into the envelope AAD and the 3DH transcript.
// A nil ClientIdentity/ServerIdentity defaults to the corresponding static public key, per spec §4.6.
type Identities struct {
	ClientIdentity []byte
	ServerIdentity []byte
}

// SetIdentities fills in defaults: the client/server static public keys, if no explicit identity was given.
func (i *Identities) SetIdentities(clientPublicKey, serverPublicKey []byte) {
	if len(i.ClientIdentity) == 0 {
		i.ClientIdentity = clientPublicKey
	}

	if len(i.ServerIdentity) == 0 {
		i.ServerIdentity = serverPublicKey
	}
}
