// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"bytes"
	"encoding/binary"

	"github.com/lazorkit/wallet-core/walleterr"
)

// programExecSessionLen is programExecLen + session_key(32) +
// max_session_age(8) + expiration_slot(8).
//
// wallet-len: KindProgramExecSession
const programExecSessionLen = programExecLen + 32 + 8 + 8

type programExecSessionAuthority struct {
	programExecAuthority
	sessionKey [32]byte
	maxAge     uint64
	expiration uint64
}

func parseProgramExecSession(raw []byte) (Authority, error) {
	if len(raw) != programExecSessionLen {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	a := &programExecSessionAuthority{}
	copy(a.programID[:], raw[0:32])
	a.prefixLen = raw[32]
	copy(a.expectedPrefix[:], raw[40:80])
	copy(a.sessionKey[:], raw[80:112])
	a.maxAge = binary.LittleEndian.Uint64(raw[112:120])
	a.expiration = binary.LittleEndian.Uint64(raw[120:128])
	if int(a.prefixLen) > programExecPrefixCap {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	return a, nil
}

func (a *programExecSessionAuthority) TypeTag() Kind { return KindProgramExecSession }
func (a *programExecSessionAuthority) Length() int   { return programExecSessionLen }
func (a *programExecSessionAuthority) MatchData(raw []byte) bool {
	return len(raw) == programExecSessionLen
}

func (a *programExecSessionAuthority) Encode() []byte {
	out := make([]byte, programExecSessionLen)
	copy(out[0:32], a.programID[:])
	out[32] = a.prefixLen
	copy(out[40:80], a.expectedPrefix[:])
	copy(out[80:112], a.sessionKey[:])
	binary.LittleEndian.PutUint64(out[112:120], a.maxAge)
	binary.LittleEndian.PutUint64(out[120:128], a.expiration)
	return out
}

func (a *programExecSessionAuthority) AuthenticateSession(ctx AuthContext, sessionPayload, dataPayload []byte, currentSlot uint64) error {
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

func (a *programExecSessionAuthority) StartSession(sessionKey []byte, currentSlot uint64, duration uint64) error {
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
