// SPDX-License-Identifier: Apache-2.0

// Package layout provides typed, bounds-checked read/write access to the
// fixed-size wire records of spec.md §3 over a raw, possibly-unaligned
// []byte. It never reallocates and never assumes any alignment of the
// backing buffer — callers resize before writing.
package layout

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/walleterr"
)

// Decoder is a cursor over a []byte, modeled on the bounds-checked,
// position-tracking buffer decoders used throughout the codec layer: no
// panics, every read validates remaining length first and returns
// walleterr.ErrInvalidAccountData on truncation.
type Decoder struct {
	buf    []byte
	limits []int
	limit  int
	pos    int
}

// NewDecoder wraps buf for sequential reads starting at offset 0.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{
		buf:   buf,
		limit: len(buf),
	}
}

// Position returns the current read cursor.
func (d *Decoder) Position() int { return d.pos }

// Remaining returns the number of bytes left before the active limit.
func (d *Decoder) Remaining() int { return d.limit - d.pos }

// Seek moves the cursor to an absolute offset within the active limit.
func (d *Decoder) Seek(pos int) error {
	if pos < 0 || pos > d.limit {
		return walleterr.ErrInvalidAccountData
	}
	d.pos = pos
	return nil
}

// PushLimit bounds subsequent reads to at most n bytes from the current
// position, restored by PopLimit, so a length-prefixed field cannot be read
// past its declared length.
func (d *Decoder) PushLimit(n int) {
	newLimit := d.pos + n
	if newLimit > d.limit {
		newLimit = d.limit
	}
	d.limits = append(d.limits, d.limit)
	d.limit = newLimit
}

// PopLimit restores the limit active before the matching PushLimit.
func (d *Decoder) PopLimit() {
	n := len(d.limits)
	if n == 0 {
		return
	}
	d.limit = d.limits[n-1]
	d.limits = d.limits[:n-1]
}

func (d *Decoder) require(n int) error {
	if d.Remaining() < n {
		return walleterr.ErrInvalidAccountData
	}
	return nil
}

// Uint8 reads one byte.
func (d *Decoder) Uint8() (uint8, error) {
	if err := d.require(1); err != nil {
		return 0, err
	}
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}

// Uint16 reads a little-endian u16, byte by byte to avoid relying on any
// alignment of d.buf.
func (d *Decoder) Uint16() (uint16, error) {
	if err := d.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(d.buf[d.pos : d.pos+2])
	d.pos += 2
	return v, nil
}

// Uint32 reads a little-endian u32.
func (d *Decoder) Uint32() (uint32, error) {
	if err := d.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos : d.pos+4])
	d.pos += 4
	return v, nil
}

// Uint64 reads a little-endian u64.
func (d *Decoder) Uint64() (uint64, error) {
	if err := d.require(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos : d.pos+8])
	d.pos += 8
	return v, nil
}

// Bytes returns a sub-slice of n bytes at the current position, advancing
// the cursor. The slice aliases the backing buffer; callers must copy it if
// they need to retain it past a subsequent mutation of buf.
func (d *Decoder) Bytes(n int) ([]byte, error) {
	if err := d.require(n); err != nil {
		return nil, err
	}
	v := d.buf[d.pos : d.pos+n]
	d.pos += n
	return v, nil
}

// Skip advances the cursor by n bytes without returning them.
func (d *Decoder) Skip(n int) error {
	if err := d.require(n); err != nil {
		return err
	}
	d.pos += n
	return nil
}

// ReadAt reads n bytes at an absolute offset without disturbing the cursor.
func ReadAt(buf []byte, offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+n > len(buf) {
		return nil, walleterr.ErrInvalidAccountData
	}
	return buf[offset : offset+n], nil
}

// Uint16At reads a little-endian u16 at an absolute offset.
func Uint16At(buf []byte, offset int) (uint16, error) {
	b, err := ReadAt(buf, offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32At reads a little-endian u32 at an absolute offset.
func Uint32At(buf []byte, offset int) (uint32, error) {
	b, err := ReadAt(buf, offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64At reads a little-endian u64 at an absolute offset.
func Uint64At(buf []byte, offset int) (uint64, error) {
	b, err := ReadAt(buf, offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}
