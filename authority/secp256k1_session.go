// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"bytes"
	"encoding/binary"

	"github.com/lazorkit/wallet-core/walleterr"
)

// secpSessionLen is secpLen + session_key(32) + max_session_age(8) +
// expiration_slot(8). Shared by both Secp256k1Session and Secp256r1Session.
//
// wallet-len: KindSecp256k1Session, KindSecp256r1Session
const secpSessionLen = secpLen + 32 + 8 + 8

type secp256k1SessionAuthority struct {
	secp256k1Authority
	sessionKey [32]byte
	maxAge     uint64
	expiration uint64
}

func parseSecp256k1Session(raw []byte) (Authority, error) {
	if len(raw) != secpSessionLen {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	a := &secp256k1SessionAuthority{}
	copy(a.publicKey[:], raw[0:33])
	a.odometer = binary.LittleEndian.Uint32(raw[36:40])
	copy(a.sessionKey[:], raw[40:72])
	a.maxAge = binary.LittleEndian.Uint64(raw[72:80])
	a.expiration = binary.LittleEndian.Uint64(raw[80:88])
	return a, nil
}

func (a *secp256k1SessionAuthority) TypeTag() Kind { return KindSecp256k1Session }
func (a *secp256k1SessionAuthority) Length() int   { return secpSessionLen }
func (a *secp256k1SessionAuthority) MatchData(raw []byte) bool {
	return len(raw) == secpSessionLen
}

func (a *secp256k1SessionAuthority) Encode() []byte {
	out := make([]byte, secpSessionLen)
	copy(out[0:33], a.publicKey[:])
	binary.LittleEndian.PutUint32(out[36:40], a.odometer)
	copy(out[40:72], a.sessionKey[:])
	binary.LittleEndian.PutUint64(out[72:80], a.maxAge)
	binary.LittleEndian.PutUint64(out[80:88], a.expiration)
	return out
}

// AuthenticateSession treats session_key as an Ed25519-style signer-flagged
// handle bounded by the stored expiration slot (spec.md §9 design notes).
func (a *secp256k1SessionAuthority) AuthenticateSession(ctx AuthContext, sessionPayload, dataPayload []byte, currentSlot uint64) error {
	if currentSlot > a.expiration {
		return walleterr.ErrSessionExpired
	}
	if len(sessionPayload) != 1 {
		return walleterr.ErrInvalidAuthorityPayload
	}
	idx := int(sessionPayload[0])
	acct, err := ctx.Accounts.At(idx)
	if err != nil {
		return walleterr.ErrInvalidAuthorityPayload
	}
	if !acct.IsSigner {
		return walleterr.ErrSignatureInvalid
	}
	if !bytes.Equal(acct.Key[:], a.sessionKey[:]) {
		return walleterr.ErrPubkeyMismatch
	}
	return nil
}

// StartSession writes (session_key, creation_slot+duration), re-initializing
// the odometer to zero (spec.md §4.C: "the next 4 re-initialize the odometer
// to zero").
func (a *secp256k1SessionAuthority) StartSession(sessionKey []byte, currentSlot uint64, duration uint64) error {
	if duration > a.maxAge {
		return walleterr.ErrInvalidSessionDuration
	}
	if len(sessionKey) != 32 {
		return walleterr.ErrInvalidAuthorityPayload
	}
	copy(a.sessionKey[:], sessionKey)
	a.expiration = currentSlot + duration
	a.odometer = 0
	return nil
}
