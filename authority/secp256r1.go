// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"crypto/elliptic"
	"encoding/binary"

	"github.com/lazorkit/wallet-core/walleterr"
)

// r1AuthKindWebAuthn is the tail discriminator signalling a WebAuthn-wrapped
// message (spec.md §4.B: "signalled by a non-empty tail with discriminator 1").
const r1AuthKindWebAuthn = 1

type secp256r1Authority struct {
	publicKey [33]byte
	odometer  uint32
}

// NormalizeSecp256r1PubKey accepts a 33-byte compressed or a 64-byte raw
// X||Y P-256 point (spec.md's tie-break rule), validates it's on the curve,
// and returns the compressed form. The 65-byte 0x04-prefixed encoding is
// rejected. Exported for the same reason as
// NormalizeSecp256k1PubKey.
func NormalizeSecp256r1PubKey(raw []byte) ([33]byte, error) {
	var out [33]byte
	curve := elliptic.P256()
	switch len(raw) {
	case 33:
		x, y := elliptic.UnmarshalCompressed(curve, raw)
		if x == nil {
			return out, walleterr.ErrInvalidAuthorityPayload
		}
		copy(out[:], elliptic.MarshalCompressed(curve, x, y))
		return out, nil
	case 64:
		uncompressed := make([]byte, 65)
		uncompressed[0] = 0x04
		copy(uncompressed[1:], raw)
		x, y := elliptic.Unmarshal(curve, uncompressed)
		if x == nil {
			return out, walleterr.ErrInvalidAuthorityPayload
		}
		copy(out[:], elliptic.MarshalCompressed(curve, x, y))
		return out, nil
	default:
		return out, walleterr.ErrInvalidAuthorityPayload
	}
}

func parseSecp256r1(raw []byte) (Authority, error) {
	if len(raw) != secpLen {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	a := &secp256r1Authority{}
	copy(a.publicKey[:], raw[0:33])
	a.odometer = binary.LittleEndian.Uint32(raw[36:40])
	return a, nil
}

func (a *secp256r1Authority) TypeTag() Kind    { return KindSecp256r1 }
func (a *secp256r1Authority) Length() int      { return secpLen }
func (a *secp256r1Authority) MatchData(raw []byte) bool { return len(raw) == secpLen }
func (a *secp256r1Authority) Identity() []byte { return a.publicKey[:] }
func (a *secp256r1Authority) Odometer() uint32 { return a.odometer }

func (a *secp256r1Authority) Encode() []byte {
	out := make([]byte, secpLen)
	copy(out[0:33], a.publicKey[:])
	binary.LittleEndian.PutUint32(out[36:40], a.odometer)
	return out
}

// Authenticate implements the Secp256r1 precompile-inspection protocol,
// with an optional WebAuthn authenticator-data/client-data-JSON wrapper
// around the computed message hash (spec.md §4.B).
func (a *secp256r1Authority) Authenticate(ctx AuthContext, authorityPayload, dataPayload []byte, currentSlot uint64) error {
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
	computedHash, err := computeMessageHash(dataPayload, ctx.Accounts, p.slot, p.counter)
	if err != nil {
		return err
	}

	message := computedHash[:]
	if len(p.tail) > 0 {
		if len(p.tail) < 2 {
			return walleterr.ErrInvalidAuthorityPayload
		}
		kind := binary.LittleEndian.Uint16(p.tail[0:2])
		if kind != r1AuthKindWebAuthn {
			return walleterr.ErrInvalidAuthorityPayload
		}
		wrapped, err := webAuthnMessage(p.tail, computedHash)
		if err != nil {
			return err
		}
		message = wrapped
	}

	if err := verifyPrecompileInstruction(ctx, ctx.Secp256r1PrecompileID, p.ixIndex, a.publicKey[:], message); err != nil {
		return err
	}
	a.odometer = p.counter
	return nil
}
