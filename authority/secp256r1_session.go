// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"bytes"
	"encoding/binary"

	"github.com/lazorkit/wallet-core/walleterr"
)

type secp256r1SessionAuthority struct {
	secp256r1Authority
	sessionKey [32]byte
	maxAge     uint64
	expiration uint64
}

func parseSecp256r1Session(raw []byte) (Authority, error) {
	if len(raw) != secpSessionLen {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	a := &secp256r1SessionAuthority{}
	copy(a.publicKey[:], raw[0:33])
	a.odometer = binary.LittleEndian.Uint32(raw[36:40])
	copy(a.sessionKey[:], raw[40:72])
	a.maxAge = binary.LittleEndian.Uint64(raw[72:80])
	a.expiration = binary.LittleEndian.Uint64(raw[80:88])
	return a, nil
}

func (a *secp256r1SessionAuthority) TypeTag() Kind { return KindSecp256r1Session }
func (a *secp256r1SessionAuthority) Length() int   { return secpSessionLen }
func (a *secp256r1SessionAuthority) MatchData(raw []byte) bool {
	return len(raw) == secpSessionLen
}

func (a *secp256r1SessionAuthority) Encode() []byte {
	out := make([]byte, secpSessionLen)
	copy(out[0:33], a.publicKey[:])
	binary.LittleEndian.PutUint32(out[36:40], a.odometer)
	copy(out[40:72], a.sessionKey[:])
	binary.LittleEndian.PutUint64(out[72:80], a.maxAge)
	binary.LittleEndian.PutUint64(out[80:88], a.expiration)
	return out
}

func (a *secp256r1SessionAuthority) AuthenticateSession(ctx AuthContext, sessionPayload, dataPayload []byte, currentSlot uint64) error {
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

func (a *secp256r1SessionAuthority) StartSession(sessionKey []byte, currentSlot uint64, duration uint64) error {
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
