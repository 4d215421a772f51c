// SPDX-License-Identifier: Apache-2.0

package authority_test

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"testing"

	. "github.com/lazorkit/wallet-core/authority"
	"github.com/lazorkit/wallet-core/hostio"
	"github.com/lazorkit/wallet-core/walleterr"
)

// secp256k1 generator point G, a fixed domain parameter of the curve, used
// here only as a known-good on-curve point for NormalizeSecp256k1PubKey.
const secp256k1GCompressedHex = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
const secp256k1GxHex = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
const secp256k1GyHex = "483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex.DecodeString(%q): %v", s, err)
	}
	return b
}

func TestNormalizeSecp256k1PubKeyCompressed(t *testing.T) {
	raw := mustHex(t, secp256k1GCompressedHex)
	got, err := NormalizeSecp256k1PubKey(raw)
	if err != nil {
		t.Fatalf("NormalizeSecp256k1PubKey: %v", err)
	}
	if hex.EncodeToString(got[:]) != secp256k1GCompressedHex {
		t.Fatalf("NormalizeSecp256k1PubKey = %x, want %s", got, secp256k1GCompressedHex)
	}
}

func TestNormalizeSecp256k1PubKeyRawXY(t *testing.T) {
	raw := append(mustHex(t, secp256k1GxHex), mustHex(t, secp256k1GyHex)...)
	got, err := NormalizeSecp256k1PubKey(raw)
	if err != nil {
		t.Fatalf("NormalizeSecp256k1PubKey: %v", err)
	}
	if hex.EncodeToString(got[:]) != secp256k1GCompressedHex {
		t.Fatalf("NormalizeSecp256k1PubKey(raw) = %x, want %s", got, secp256k1GCompressedHex)
	}
}

func TestNormalizeSecp256k1PubKeyRejectsWrongLength(t *testing.T) {
	if _, err := NormalizeSecp256k1PubKey(make([]byte, 32)); err == nil {
		t.Fatal("expected error for 32-byte input")
	}
}

func TestNormalizeSecp256k1PubKeyRejectsOffCurve(t *testing.T) {
	bad := make([]byte, 64)
	for i := range bad {
		bad[i] = 0x42
	}
	if _, err := NormalizeSecp256k1PubKey(bad); err == nil {
		t.Fatal("expected error for an off-curve point")
	}
}

func secp256k1RecordWithOdometer(t *testing.T, odometer uint32) []byte {
	t.Helper()
	out := make([]byte, 40)
	copy(out[0:33], mustHex(t, secp256k1GCompressedHex))
	binary.LittleEndian.PutUint32(out[36:40], odometer)
	return out
}

func secp256k1AuthorityPayload(slot uint64, counter uint32, ixIndex byte) []byte {
	p := make([]byte, 13)
	binary.LittleEndian.PutUint64(p[0:8], slot)
	binary.LittleEndian.PutUint32(p[8:12], counter)
	p[12] = ixIndex
	return p
}

// buildPrecompileInstruction assembles a minimal instruction data buffer for
// the signature-verify precompile model of spec.md §4.B: num_signatures(1),
// pad(1), a 14-byte offsets header, then the public key and message bytes it
// points at.
func buildPrecompileInstruction(pubkey, message []byte) hostio.InstructionEntry {
	const offsetsLen = 14
	headerLen := 2 + offsetsLen
	pkOffset := headerLen
	msgOffset := pkOffset + len(pubkey)
	data := make([]byte, msgOffset+len(message))
	data[0] = 1 // num_signatures

	offsets := data[2 : 2+offsetsLen]
	binary.LittleEndian.PutUint16(offsets[0:2], 0)      // signatureOffset (unused)
	binary.LittleEndian.PutUint16(offsets[2:4], 0xFFFF) // signatureIxIndex (unused)
	binary.LittleEndian.PutUint16(offsets[4:6], uint16(pkOffset))
	binary.LittleEndian.PutUint16(offsets[6:8], 0xFFFF)
	binary.LittleEndian.PutUint16(offsets[8:10], uint16(msgOffset))
	binary.LittleEndian.PutUint16(offsets[10:12], uint16(len(message)))
	binary.LittleEndian.PutUint16(offsets[12:14], 0xFFFF)

	copy(data[pkOffset:], pubkey)
	copy(data[msgOffset:], message)

	return hostio.InstructionEntry{
		ProgramID: [32]byte{0xAB},
		Data:      data,
	}
}

func TestSecp256k1AuthenticateSuccess(t *testing.T) {
	a, err := Parse(KindSecp256k1, secp256k1RecordWithOdometer(t, 5))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	pubkey := mustHex(t, secp256k1GCompressedHex)
	accounts := &fakeAccountList{accounts: []*hostio.Account{
		{Key: [32]byte{1}, IsWritable: true},
	}}
	dataPayload := []byte("transfer 1 sol")
	slot := uint64(100)
	counter := uint32(6)

	message, err := computeMessageHashForTest(dataPayload, accounts, slot, counter)
	if err != nil {
		t.Fatalf("computeMessageHashForTest: %v", err)
	}

	precompileID := [32]byte{0xAB}
	ix := buildPrecompileInstruction(pubkey, message[:])
	ix.ProgramID = precompileID

	ctx := AuthContext{
		Accounts: accounts,
		Instructions: &fakeInstructions{entries: []hostio.InstructionEntry{
			ix,
			{ProgramID: [32]byte{0xCD}}, // the wallet-core instruction itself
		}},
		CurrentSlot:           slot,
		Secp256k1PrecompileID: precompileID,
	}

	authorityPayload := secp256k1AuthorityPayload(slot, counter, 0)
	if err := a.Authenticate(ctx, authorityPayload, dataPayload, slot); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if a.Odometer() != counter {
		t.Fatalf("Odometer() = %d, want %d", a.Odometer(), counter)
	}
}

func TestSecp256k1AuthenticateRejectsReplayedCounter(t *testing.T) {
	a, err := Parse(KindSecp256k1, secp256k1RecordWithOdometer(t, 5))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx := AuthContext{Accounts: &fakeAccountList{}}
	authorityPayload := secp256k1AuthorityPayload(100, 5, 0) // == stored odometer, not +1
	if err := a.Authenticate(ctx, authorityPayload, nil, 100); err != walleterr.ErrSignatureReused {
		t.Fatalf("Authenticate = %v, want ErrSignatureReused", err)
	}
}

func TestSecp256k1AuthenticateRejectsStaleSlot(t *testing.T) {
	a, err := Parse(KindSecp256k1, secp256k1RecordWithOdometer(t, 5))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx := AuthContext{Accounts: &fakeAccountList{}}
	authorityPayload := secp256k1AuthorityPayload(10, 6, 0)
	if err := a.Authenticate(ctx, authorityPayload, nil, 100); err != walleterr.ErrSignatureAgeExceeded {
		t.Fatalf("Authenticate = %v, want ErrSignatureAgeExceeded", err)
	}
}

// computeMessageHashForTest mirrors computeMessageHash's unexported
// construction (sha256 over data_payload || accounts_payload || slot ||
// counter) so the test can predict the message the precompile instruction
// must embed. Duplicated here rather than exported from authority since
// only tests need it.
func computeMessageHashForTest(dataPayload []byte, accounts hostio.AccountList, slot uint64, counter uint32) ([32]byte, error) {
	h := sha256.New()
	h.Write(dataPayload)
	for i := 0; i < accounts.Len(); i++ {
		acct, err := accounts.At(i)
		if err != nil {
			return [32]byte{}, err
		}
		var entry [40]byte
		copy(entry[0:32], acct.Key[:])
		if acct.IsWritable {
			entry[32] = 1
		}
		if acct.IsSigner {
			entry[33] = 1
		}
		h.Write(entry[:])
	}
	var slotBytes [8]byte
	binary.LittleEndian.PutUint64(slotBytes[:], slot)
	h.Write(slotBytes[:])
	var counterBytes [4]byte
	binary.LittleEndian.PutUint32(counterBytes[:], counter)
	h.Write(counterBytes[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}
