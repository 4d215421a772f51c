// SPDX-License-Identifier: Apache-2.0

package layout_test

import (
	"testing"

	. "github.com/lazorkit/wallet-core/layout"
)

func TestDecoderSequentialReads(t *testing.T) {
	buf := []byte{
		0x01,                   // Uint8
		0x02, 0x00,             // Uint16 = 2
		0x03, 0x00, 0x00, 0x00, // Uint32 = 3
		0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // Uint64 = 4
		0xAA, 0xBB, 0xCC, // Bytes(3)
	}
	d := NewDecoder(buf)

	if v, err := d.Uint8(); err != nil || v != 1 {
		t.Fatalf("Uint8() = %d, %v", v, err)
	}
	if v, err := d.Uint16(); err != nil || v != 2 {
		t.Fatalf("Uint16() = %d, %v", v, err)
	}
	if v, err := d.Uint32(); err != nil || v != 3 {
		t.Fatalf("Uint32() = %d, %v", v, err)
	}
	if v, err := d.Uint64(); err != nil || v != 4 {
		t.Fatalf("Uint64() = %d, %v", v, err)
	}
	b, err := d.Bytes(3)
	if err != nil {
		t.Fatalf("Bytes(3) error: %v", err)
	}
	if b[0] != 0xAA || b[1] != 0xBB || b[2] != 0xCC {
		t.Fatalf("Bytes(3) = %x", b)
	}
	if d.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0", d.Remaining())
	}
}

func TestDecoderTruncatedReadFails(t *testing.T) {
	d := NewDecoder([]byte{0x01, 0x02})
	if _, err := d.Uint32(); err == nil {
		t.Fatal("expected error reading Uint32 from a 2-byte buffer")
	}
	// A failed read must not move the cursor.
	if d.Position() != 0 {
		t.Fatalf("Position() = %d after failed read, want 0", d.Position())
	}
}

func TestDecoderSeekBounds(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3, 4})
	if err := d.Seek(2); err != nil {
		t.Fatalf("Seek(2): %v", err)
	}
	if d.Remaining() != 2 {
		t.Fatalf("Remaining() = %d, want 2", d.Remaining())
	}
	if err := d.Seek(-1); err == nil {
		t.Fatal("expected error seeking negative")
	}
	if err := d.Seek(5); err == nil {
		t.Fatal("expected error seeking past end")
	}
}

func TestDecoderPushPopLimit(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3, 4, 5, 6})
	d.PushLimit(2)
	if d.Remaining() != 2 {
		t.Fatalf("Remaining() under limit = %d, want 2", d.Remaining())
	}
	if _, err := d.Bytes(3); err == nil {
		t.Fatal("expected error reading past a pushed limit")
	}
	if _, err := d.Bytes(2); err != nil {
		t.Fatalf("Bytes(2) within limit: %v", err)
	}
	d.PopLimit()
	if d.Remaining() != 4 {
		t.Fatalf("Remaining() after PopLimit = %d, want 4", d.Remaining())
	}
}

func TestDecoderSkip(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3, 4})
	if err := d.Skip(2); err != nil {
		t.Fatalf("Skip(2): %v", err)
	}
	v, err := d.Uint16()
	if err != nil {
		t.Fatalf("Uint16() after skip: %v", err)
	}
	if v != 0x0403 {
		t.Fatalf("Uint16() after skip = %#x, want 0x0403", v)
	}
}

func TestReadAtAbsoluteOffsets(t *testing.T) {
	buf := []byte{0, 0, 0x2A, 0x00, 0, 0, 0, 0}
	v, err := Uint16At(buf, 2)
	if err != nil {
		t.Fatalf("Uint16At: %v", err)
	}
	if v != 0x2A {
		t.Fatalf("Uint16At = %#x, want 0x2A", v)
	}
	if _, err := Uint32At(buf, 6); err == nil {
		t.Fatal("expected error reading Uint32At past the end of buf")
	}
}
