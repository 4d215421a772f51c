// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/lazorkit/wallet-core/hostio"
	"github.com/lazorkit/wallet-core/walleterr"
)

// maxSignatureAgeSlots bounds how stale a Secp* authority_payload's slot
// field may be (spec.md §4.B).
const maxSignatureAgeSlots = 60

// precompileSentinel marks a signature-offsets field as "this instruction",
// the convention the platform's signature-verify precompiles use.
const precompileSentinel = 0xFFFF

// secpPayloadPrefixLen is slot(8) || counter(4) || instructions_sysvar_index(1).
const secpPayloadPrefixLen = 13

// secpPayload is the parsed common prefix of a Secp256k1/Secp256r1
// authority_payload (spec.md §4.B); tail holds whatever curve-specific
// bytes follow (empty for plain signatures, WebAuthn framing for Secp256r1).
type secpPayload struct {
	slot    uint64
	counter uint32
	ixIndex int
	tail    []byte
}

func parseSecpPayload(raw []byte) (secpPayload, error) {
	if len(raw) < secpPayloadPrefixLen {
		return secpPayload{}, walleterr.ErrInvalidAuthorityPayload
	}
	return secpPayload{
		slot:    binary.LittleEndian.Uint64(raw[0:8]),
		counter: binary.LittleEndian.Uint32(raw[8:12]),
		ixIndex: int(raw[12]),
		tail:    raw[secpPayloadPrefixLen:],
	}, nil
}

// checkCounter enforces the odometer rule: counter must equal
// stored_odometer + 1 (spec.md §4.B, §8 B2).
func checkCounter(counter, storedOdometer uint32) error {
	if counter != storedOdometer+1 {
		return walleterr.ErrSignatureReused
	}
	return nil
}

// checkSlotAge enforces current_slot - slot <= 60 (spec.md §4.B).
func checkSlotAge(slot, currentSlot uint64) error {
	if currentSlot < slot {
		return walleterr.ErrSignatureAgeExceeded
	}
	if currentSlot-slot > maxSignatureAgeSlots {
		return walleterr.ErrSignatureAgeExceeded
	}
	return nil
}

// accountsPayloadEntryLen mirrors the original implementation's
// AccountsPayload record: pubkey(32) || is_writable(1) || is_signer(1) ||
// padding(6).
const accountsPayloadEntryLen = 40

// computeMessageHash builds sha256(data_payload || accounts_payload ||
// slot || counter), the message the signature-verify precompile is expected
// to have signed (spec.md §4.B).
func computeMessageHash(dataPayload []byte, accounts hostio.AccountList, slot uint64, counter uint32) ([32]byte, error) {
	h := sha256.New()
	h.Write(dataPayload)
	for i := 0; i < accounts.Len(); i++ {
		acct, err := accounts.At(i)
		if err != nil {
			return [32]byte{}, err
		}
		var entry [accountsPayloadEntryLen]byte
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

// precompileOffsets is the signature-verify precompile's fixed 14-byte
// offsets header (modeled on the platform's Secp256r1SignatureOffsets
// layout, reused for both curves in this abstracted host model).
type precompileOffsets struct {
	signatureOffset      uint16
	signatureIxIndex     uint16
	publicKeyOffset      uint16
	publicKeyIxIndex     uint16
	messageDataOffset    uint16
	messageDataSize      uint16
	messageIxIndex       uint16
}

const precompileOffsetsLen = 14
const precompileDataStart = 2 + precompileOffsetsLen

func parsePrecompileOffsets(b []byte) (precompileOffsets, error) {
	if len(b) != precompileOffsetsLen {
		return precompileOffsets{}, walleterr.ErrPrecompileInstructionMismatch
	}
	return precompileOffsets{
		signatureOffset:   binary.LittleEndian.Uint16(b[0:2]),
		signatureIxIndex:  binary.LittleEndian.Uint16(b[2:4]),
		publicKeyOffset:   binary.LittleEndian.Uint16(b[4:6]),
		publicKeyIxIndex:  binary.LittleEndian.Uint16(b[6:8]),
		messageDataOffset: binary.LittleEndian.Uint16(b[8:10]),
		messageDataSize:   binary.LittleEndian.Uint16(b[10:12]),
		messageIxIndex:    binary.LittleEndian.Uint16(b[12:14]),
	}, nil
}

// verifyPrecompileInstruction fetches the instruction immediately preceding
// currentIndex, requires its program id to equal precompileID, and checks
// its embedded public key and message against the expected values
// (spec.md §4.B).
func verifyPrecompileInstruction(ctx AuthContext, precompileID [32]byte, ixIndex int, expectedPubkey, expectedMessage []byte) error {
	currentIndex, err := ctx.Instructions.CurrentIndex()
	if err != nil {
		return walleterr.ErrInvalidAuthorityPayload
	}
	if currentIndex == 0 {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	ix, err := ctx.Instructions.PreviousInstruction(currentIndex)
	if err != nil {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	if ix.ProgramID != precompileID {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	data := ix.Data
	if len(data) < precompileDataStart {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	numSignatures := data[0]
	if numSignatures != 1 {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	offsets, err := parsePrecompileOffsets(data[2:precompileDataStart])
	if err != nil {
		return err
	}
	if offsets.publicKeyIxIndex != precompileSentinel || offsets.messageIxIndex != precompileSentinel {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	pkStart := int(offsets.publicKeyOffset)
	if pkStart+len(expectedPubkey) > len(data) {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	if !bytesEqual(data[pkStart:pkStart+len(expectedPubkey)], expectedPubkey) {
		return walleterr.ErrPubkeyMismatch
	}
	msgStart := int(offsets.messageDataOffset)
	msgLen := int(offsets.messageDataSize)
	if msgLen != len(expectedMessage) || msgStart+msgLen > len(data) {
		return walleterr.ErrMessageHashMismatch
	}
	if !bytesEqual(data[msgStart:msgStart+msgLen], expectedMessage) {
		return walleterr.ErrMessageHashMismatch
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
