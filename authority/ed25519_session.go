// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"bytes"
	"encoding/binary"

	"github.com/lazorkit/wallet-core/walleterr"
)

// ed25519SessionLen is public_key(32) + session_key(32) + max_session_age(8)
// + expiration_slot(8).
//
// wallet-len: KindEd25519Session
const ed25519SessionLen = 32 + 32 + 8 + 8

type ed25519SessionAuthority struct {
	ed25519Authority
	sessionKey  [32]byte
	maxAge      uint64
	expiration  uint64
}

func parseEd25519Session(raw []byte) (Authority, error) {
	if len(raw) != ed25519SessionLen {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	a := &ed25519SessionAuthority{}
	copy(a.publicKey[:], raw[0:32])
	copy(a.sessionKey[:], raw[32:64])
	a.maxAge = binary.LittleEndian.Uint64(raw[64:72])
	a.expiration = binary.LittleEndian.Uint64(raw[72:80])
	return a, nil
}

func (a *ed25519SessionAuthority) TypeTag() Kind { return KindEd25519Session }
func (a *ed25519SessionAuthority) Length() int   { return ed25519SessionLen }
func (a *ed25519SessionAuthority) MatchData(raw []byte) bool {
	return len(raw) == ed25519SessionLen
}

func (a *ed25519SessionAuthority) Encode() []byte {
	out := make([]byte, ed25519SessionLen)
	copy(out[0:32], a.publicKey[:])
	copy(out[32:64], a.sessionKey[:])
	binary.LittleEndian.PutUint64(out[64:72], a.maxAge)
	binary.LittleEndian.PutUint64(out[72:80], a.expiration)
	return out
}

// AuthenticateSession treats session_key like an Ed25519 public key bounded
// by the stored expiration slot (spec.md §4.B, §9 design notes).
func (a *ed25519SessionAuthority) AuthenticateSession(ctx AuthContext, sessionPayload, dataPayload []byte, currentSlot uint64) error {
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

// StartSession writes (session_key, creation_slot+duration); it fails if
// duration exceeds max_session_age (spec.md §4.C, invariant I6).
func (a *ed25519SessionAuthority) StartSession(sessionKey []byte, currentSlot uint64, duration uint64) error {
	if duration > a.maxAge {
		return walleterr.ErrInvalidSessionDuration
	}
	if len(sessionKey) != 32 {
		return walleterr.ErrInvalidAuthorityPayload
	}
	copy(a.sessionKey[:], sessionKey)
	a.expiration = currentSlot + duration
	return nil
}
