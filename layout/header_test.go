// SPDX-License-Identifier: Apache-2.0

package layout_test

import (
	"testing"

	. "github.com/lazorkit/wallet-core/layout"
)

func TestHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, AuthoritiesOffset)
	h := Header{
		Discriminator: WalletDiscriminator,
		Bump:          250,
		ID:            [32]byte{1, 2, 3},
		VaultBump:     251,
		Version:       WalletVersion,
	}
	if err := WriteHeader(buf, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	got, err := ReadHeader(buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round-trip Header = %+v, want %+v", got, h)
	}
}

func TestWriteHeaderZeroesReserved(t *testing.T) {
	buf := make([]byte, HeaderLen)
	for i := range buf {
		buf[i] = 0xFF
	}
	if err := WriteHeader(buf, Header{}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	for i := 36; i < 40; i++ {
		if buf[i] != 0 {
			t.Fatalf("reserved byte %d = %#x, want 0", i, buf[i])
		}
	}
}

func TestNumAuthoritiesRoundTrip(t *testing.T) {
	buf := make([]byte, AuthoritiesOffset)
	if err := SetNumAuthorities(buf, 3); err != nil {
		t.Fatalf("SetNumAuthorities: %v", err)
	}
	n, err := NumAuthorities(buf)
	if err != nil {
		t.Fatalf("NumAuthorities: %v", err)
	}
	if n != 3 {
		t.Fatalf("NumAuthorities() = %d, want 3", n)
	}
}

func TestHeaderTruncatedFails(t *testing.T) {
	if _, err := ReadHeader(make([]byte, HeaderLen-1)); err == nil {
		t.Fatal("expected error reading a truncated header")
	}
}
