// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/walleterr"
)

// PutUint16At writes a little-endian u16 at an absolute offset. It never
// grows buf — callers must resize the backing account before writing.
func PutUint16At(buf []byte, offset int, v uint16) error {
	if offset < 0 || offset+2 > len(buf) {
		return walleterr.ErrInvalidAccountData
	}
	binary.LittleEndian.PutUint16(buf[offset:offset+2], v)
	return nil
}

// PutUint32At writes a little-endian u32 at an absolute offset.
func PutUint32At(buf []byte, offset int, v uint32) error {
	if offset < 0 || offset+4 > len(buf) {
		return walleterr.ErrInvalidAccountData
	}
	binary.LittleEndian.PutUint32(buf[offset:offset+4], v)
	return nil
}

// PutUint64At writes a little-endian u64 at an absolute offset.
func PutUint64At(buf []byte, offset int, v uint64) error {
	if offset < 0 || offset+8 > len(buf) {
		return walleterr.ErrInvalidAccountData
	}
	binary.LittleEndian.PutUint64(buf[offset:offset+8], v)
	return nil
}

// PutBytesAt copies src into buf at an absolute offset.
func PutBytesAt(buf []byte, offset int, src []byte) error {
	if offset < 0 || offset+len(src) > len(buf) {
		return walleterr.ErrInvalidAccountData
	}
	copy(buf[offset:offset+len(src)], src)
	return nil
}

// AlignUp8 rounds n up to the next multiple of 8, matching the §3 wire
// format's 8-byte alignment of multi-byte fields within a record.
func AlignUp8(n int) int {
	return (n + 7) &^ 7
}

// ShiftTail moves buf[oldOffset:] to start at newOffset, in place, handling
// overlapping src/dst ranges the way a grow/shrink resize requires (shift
// forward to grow, backward to shrink). length is the number of bytes to
// move, taken from the tail starting at oldOffset.
func ShiftTail(buf []byte, oldOffset, newOffset, length int) error {
	if oldOffset < 0 || newOffset < 0 || length < 0 {
		return walleterr.ErrInvalidAccountData
	}
	if oldOffset+length > len(buf) || newOffset+length > len(buf) {
		return walleterr.ErrInvalidAccountData
	}
	if oldOffset == newOffset || length == 0 {
		return nil
	}
	// Go's builtin copy is safe for overlapping slices regardless of
	// direction because it behaves like memmove.
	copy(buf[newOffset:newOffset+length], buf[oldOffset:oldOffset+length])
	return nil
}
