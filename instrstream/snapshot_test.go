// SPDX-License-Identifier: Apache-2.0

package instrstream_test

import (
	"testing"

	"github.com/lazorkit/wallet-core/hostio"
	. "github.com/lazorkit/wallet-core/instrstream"
)

func TestCaptureSkipsReadOnlyAccounts(t *testing.T) {
	accounts := &fakeAccounts{accounts: []*hostio.Account{
		{Key: [32]byte{1}, IsWritable: false, Data: []byte{1, 2, 3}},
		{Key: [32]byte{2}, IsWritable: true, Data: []byte{4, 5, 6}},
	}}
	snap, err := Capture(accounts, nil)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if snap[0] != nil {
		t.Fatalf("snapshot[0] = %v, want nil for a read-only account", snap[0])
	}
	if snap[1] == nil {
		t.Fatal("snapshot[1] = nil, want a hash for a writable account")
	}
}

func TestVerifyDetectsMutation(t *testing.T) {
	accounts := &fakeAccounts{accounts: []*hostio.Account{
		{Key: [32]byte{1}, IsWritable: true, Data: []byte{1, 2, 3}, Lamports: 100},
	}}
	snap, err := Capture(accounts, nil)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if idx, err := Verify(accounts, snap, nil); err != nil || idx != -1 {
		t.Fatalf("Verify(unmodified) = %d, %v, want -1, nil", idx, err)
	}

	accounts.accounts[0].Lamports = 50
	idx, err := Verify(accounts, snap, nil)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if idx != 0 {
		t.Fatalf("Verify(mutated) = %d, want 0", idx)
	}
}

func TestCaptureHonorsExcludeRanges(t *testing.T) {
	accounts := &fakeAccounts{accounts: []*hostio.Account{
		{Key: [32]byte{1}, IsWritable: true, Data: []byte{1, 2, 3, 4, 5}},
	}}
	excludes := map[int][]ByteRange{0: {{Start: 1, End: 3}}}
	snap, err := Capture(accounts, excludes)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	// mutating only the excluded range must not trip Verify.
	accounts.accounts[0].Data[1] = 0xFF
	accounts.accounts[0].Data[2] = 0xFF
	idx, err := Verify(accounts, snap, excludes)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if idx != -1 {
		t.Fatalf("Verify = %d, want -1 since only the excluded range changed", idx)
	}

	accounts.accounts[0].Data[0] = 0xFF
	idx, err = Verify(accounts, snap, excludes)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if idx != 0 {
		t.Fatalf("Verify = %d, want 0 after mutating a non-excluded byte", idx)
	}
}

func TestCaptureCapsWritableAccountCount(t *testing.T) {
	accounts := &fakeAccounts{}
	for i := 0; i < 101; i++ {
		accounts.accounts = append(accounts.accounts, &hostio.Account{Key: [32]byte{byte(i)}, IsWritable: true})
	}
	snap, err := Capture(accounts, nil)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if snap[100] != nil {
		t.Fatal("snapshot[100] should be nil past the 100-writable-account cap")
	}
	if snap[99] == nil {
		t.Fatal("snapshot[99] should still be captured")
	}
}
