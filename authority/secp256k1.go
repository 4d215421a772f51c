// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/lazorkit/wallet-core/walleterr"
)

// secpLen is compressed_pk(33) + pad(3) + odometer(4). Shared by both
// Secp256k1 and Secp256r1: the two curves differ in point math, not in the
// root authority's wire shape.
//
// wallet-len: KindSecp256k1, KindSecp256r1
const secpLen = 33 + 3 + 4

type secp256k1Authority struct {
	publicKey [33]byte
	odometer  uint32
}

// NormalizeSecp256k1PubKey accepts either a 33-byte compressed or 64-byte
// raw uncompressed (X||Y) Secp256k1 point, validates it lies on the curve,
// and returns its compressed form (spec.md §4.B tie-break rule). Exported
// for add_authority/update_authority, which embed the normalized key into a
// freshly built record rather than constructing an Authority instance.
func NormalizeSecp256k1PubKey(raw []byte) ([33]byte, error) {
	var out [33]byte
	switch len(raw) {
	case 33:
		pk, err := secp256k1.ParsePubKey(raw)
		if err != nil {
			return out, walleterr.ErrInvalidAuthorityPayload
		}
		copy(out[:], pk.SerializeCompressed())
		return out, nil
	case 64:
		uncompressed := make([]byte, 65)
		uncompressed[0] = 0x04
		copy(uncompressed[1:], raw)
		pk, err := secp256k1.ParsePubKey(uncompressed)
		if err != nil {
			return out, walleterr.ErrInvalidAuthorityPayload
		}
		copy(out[:], pk.SerializeCompressed())
		return out, nil
	default:
		return out, walleterr.ErrInvalidAuthorityPayload
	}
}

func parseSecp256k1(raw []byte) (Authority, error) {
	if len(raw) != secpLen {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	a := &secp256k1Authority{}
	copy(a.publicKey[:], raw[0:33])
	a.odometer = binary.LittleEndian.Uint32(raw[36:40])
	return a, nil
}

func (a *secp256k1Authority) TypeTag() Kind    { return KindSecp256k1 }
func (a *secp256k1Authority) Length() int      { return secpLen }
func (a *secp256k1Authority) MatchData(raw []byte) bool { return len(raw) == secpLen }
func (a *secp256k1Authority) Identity() []byte { return a.publicKey[:] }
func (a *secp256k1Authority) Odometer() uint32 { return a.odometer }

func (a *secp256k1Authority) Encode() []byte {
	out := make([]byte, secpLen)
	copy(out[0:33], a.publicKey[:])
	binary.LittleEndian.PutUint32(out[36:40], a.odometer)
	return out
}

// Authenticate implements the Secp256k1 precompile-inspection protocol of
// spec.md §4.B.
func (a *secp256k1Authority) Authenticate(ctx AuthContext, authorityPayload, dataPayload []byte, currentSlot uint64) error {
	p, err := parseSecpPayload(authorityPayload)
	if err != nil {
		return err
	}
	if err := checkCounter(p.counter, a.odometer); err != nil {
		return err
	}
	if err := checkSlotAge(p.slot, currentSlot); err != nil {
		return err
	}
	message, err := computeMessageHash(dataPayload, ctx.Accounts, p.slot, p.counter)
	if err != nil {
		return err
	}
	if err := verifyPrecompileInstruction(ctx, ctx.Secp256k1PrecompileID, p.ixIndex, a.publicKey[:], message[:]); err != nil {
		return err
	}
	a.odometer = p.counter
	return nil
}
