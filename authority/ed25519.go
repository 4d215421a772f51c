// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"bytes"

	"github.com/lazorkit/wallet-core/walleterr"
)

// ed25519Len is the wire length of Ed25519 authority data: public_key.
//
// wallet-len: KindEd25519
const ed25519Len = 32

type ed25519Authority struct {
	publicKey [32]byte
}

func parseEd25519(raw []byte) (Authority, error) {
	if len(raw) != ed25519Len {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	a := &ed25519Authority{}
	copy(a.publicKey[:], raw)
	return a, nil
}

func (a *ed25519Authority) TypeTag() Kind    { return KindEd25519 }
func (a *ed25519Authority) Length() int      { return ed25519Len }
func (a *ed25519Authority) MatchData(raw []byte) bool { return len(raw) == ed25519Len }
func (a *ed25519Authority) Identity() []byte { return a.publicKey[:] }
func (a *ed25519Authority) Odometer() uint32 { return 0 }
func (a *ed25519Authority) Encode() []byte   { return append([]byte(nil), a.publicKey[:]...) }

// Authenticate checks that authorityPayload names a transaction signer
// account whose key matches the stored public key (spec.md §4.B: Ed25519
// relies entirely on the host's own signature verification of that
// account, the core never re-verifies the signature itself).
func (a *ed25519Authority) Authenticate(ctx AuthContext, authorityPayload, dataPayload []byte, currentSlot uint64) error {
	if len(authorityPayload) != 1 {
		return walleterr.ErrInvalidAuthorityPayload
	}
	idx := int(authorityPayload[0])
	acct, err := ctx.Accounts.At(idx)
	if err != nil {
		return walleterr.ErrInvalidAuthorityPayload
	}
	if !acct.IsSigner {
		return walleterr.ErrSignatureInvalid
	}
	if !bytes.Equal(acct.Key[:], a.publicKey[:]) {
		return walleterr.ErrPubkeyMismatch
	}
	return nil
}
