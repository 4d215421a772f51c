// SPDX-License-Identifier: Apache-2.0

package authority_test

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	. "github.com/lazorkit/wallet-core/authority"
	"github.com/lazorkit/wallet-core/hostio"
	"github.com/lazorkit/wallet-core/walleterr"
)

// P-256 generator point G, a fixed domain parameter of the curve, used here
// only as a known-good on-curve point for NormalizeSecp256r1PubKey.
const p256GCompressedHex = "036b17d1f2e12c4247f8bce6e563a440f277037d812deb33a0f4a13945d898c296"
const p256GxHex = "6b17d1f2e12c4247f8bce6e563a440f277037d812deb33a0f4a13945d898c296"
const p256GyHex = "4fe342e2fe1a7f9b8ee7eb4a7c0f9e162bce33576b315ececbb6406837bf51f5"

func TestNormalizeSecp256r1PubKeyCompressed(t *testing.T) {
	raw := mustHex(t, p256GCompressedHex)
	got, err := NormalizeSecp256r1PubKey(raw)
	if err != nil {
		t.Fatalf("NormalizeSecp256r1PubKey: %v", err)
	}
	if hex.EncodeToString(got[:]) != p256GCompressedHex {
		t.Fatalf("NormalizeSecp256r1PubKey = %x, want %s", got, p256GCompressedHex)
	}
}

func TestNormalizeSecp256r1PubKeyRawXY(t *testing.T) {
	raw := append(mustHex(t, p256GxHex), mustHex(t, p256GyHex)...)
	got, err := NormalizeSecp256r1PubKey(raw)
	if err != nil {
		t.Fatalf("NormalizeSecp256r1PubKey: %v", err)
	}
	if hex.EncodeToString(got[:]) != p256GCompressedHex {
		t.Fatalf("NormalizeSecp256r1PubKey(raw) = %x, want %s", got, p256GCompressedHex)
	}
}

func TestNormalizeSecp256r1PubKeyRejectsWrongLength(t *testing.T) {
	if _, err := NormalizeSecp256r1PubKey(make([]byte, 10)); err == nil {
		t.Fatal("expected error for a 10-byte input")
	}
}

func TestNormalizeSecp256r1PubKeyRejectsOffCurve(t *testing.T) {
	bad := make([]byte, 64)
	for i := range bad {
		bad[i] = 0x7
	}
	if _, err := NormalizeSecp256r1PubKey(bad); err == nil {
		t.Fatal("expected error for an off-curve point")
	}
}

func secp256r1RecordWithOdometer(t *testing.T, odometer uint32) []byte {
	t.Helper()
	out := make([]byte, 40)
	copy(out[0:33], mustHex(t, p256GCompressedHex))
	binary.LittleEndian.PutUint32(out[36:40], odometer)
	return out
}

func TestSecp256r1AuthenticatePlainSignatureSuccess(t *testing.T) {
	a, err := Parse(KindSecp256r1, secp256r1RecordWithOdometer(t, 0))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	pubkey := mustHex(t, p256GCompressedHex)
	accounts := &fakeAccountList{accounts: []*hostio.Account{
		{Key: [32]byte{2}, IsSigner: true},
	}}
	dataPayload := []byte("withdraw")
	slot := uint64(50)
	counter := uint32(1)

	message, err := computeMessageHashForTest(dataPayload, accounts, slot, counter)
	if err != nil {
		t.Fatalf("computeMessageHashForTest: %v", err)
	}

	precompileID := [32]byte{0xEF}
	ix := buildPrecompileInstruction(pubkey, message[:])
	ix.ProgramID = precompileID

	ctx := AuthContext{
		Accounts: accounts,
		Instructions: &fakeInstructions{entries: []hostio.InstructionEntry{
			ix,
			{ProgramID: [32]byte{0xCD}},
		}},
		CurrentSlot:           slot,
		Secp256r1PrecompileID: precompileID,
	}

	authorityPayload := secp256k1AuthorityPayload(slot, counter, 0)
	if err := a.Authenticate(ctx, authorityPayload, dataPayload, slot); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if a.Odometer() != counter {
		t.Fatalf("Odometer() = %d, want %d", a.Odometer(), counter)
	}
}

func TestSecp256r1AuthenticateRejectsMalformedWebAuthnTail(t *testing.T) {
	a, err := Parse(KindSecp256r1, secp256r1RecordWithOdometer(t, 0))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	payload := secp256k1AuthorityPayload(50, 1, 0)
	payload = append(payload, 0) // one stray tail byte, too short to be a tail discriminator
	ctx := AuthContext{Accounts: &fakeAccountList{}}
	if err := a.Authenticate(ctx, payload, nil, 50); err != walleterr.ErrInvalidAuthorityPayload {
		t.Fatalf("Authenticate = %v, want ErrInvalidAuthorityPayload", err)
	}
}
