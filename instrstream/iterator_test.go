// SPDX-License-Identifier: Apache-2.0

package instrstream_test

import (
	"encoding/binary"
	"testing"

	"github.com/lazorkit/wallet-core/hostio"
	. "github.com/lazorkit/wallet-core/instrstream"
)

// buildStream assembles the compact inner-instruction stream: num_ixs(1)
// followed by program_id_index(1) || num_accounts(1) || account_indexes[] ||
// data_len(2) || data[] for each instruction.
func buildStream(entries []InnerInstruction) []byte {
	out := []byte{byte(len(entries))}
	for _, e := range entries {
		out = append(out, byte(e.ProgramIDIndex), byte(len(e.AccountIndexes)))
		for _, idx := range e.AccountIndexes {
			out = append(out, byte(idx))
		}
		var dl [2]byte
		binary.LittleEndian.PutUint16(dl[:], uint16(len(e.Data)))
		out = append(out, dl[:]...)
		out = append(out, e.Data...)
	}
	return out
}

func TestIteratorDecodesEntries(t *testing.T) {
	buf := buildStream([]InnerInstruction{
		{ProgramIDIndex: 1, AccountIndexes: []int{2, 3}, Data: []byte{9, 9}},
		{ProgramIDIndex: 4, AccountIndexes: nil, Data: nil},
	})
	it, err := NewIterator(buf)
	if err != nil {
		t.Fatalf("NewIterator: %v", err)
	}
	if it.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", it.Len())
	}
	first, ok, err := it.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %+v, %v, %v", first, ok, err)
	}
	if first.ProgramIDIndex != 1 || len(first.AccountIndexes) != 2 {
		t.Fatalf("first = %+v", first)
	}
	second, ok, err := it.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %+v, %v, %v", second, ok, err)
	}
	if second.ProgramIDIndex != 4 {
		t.Fatalf("second = %+v", second)
	}
	_, ok, err = it.Next()
	if err != nil || ok {
		t.Fatalf("Next() past the end = %v, %v, want ok=false", ok, err)
	}
}

func TestIteratorRejectsTruncatedStream(t *testing.T) {
	buf := []byte{1, 0, 2, 0, 0} // claims 1 instruction, 2 accounts, but no data_len follows
	it, err := NewIterator(buf)
	if err != nil {
		t.Fatalf("NewIterator: %v", err)
	}
	if _, _, err := it.Next(); err == nil {
		t.Fatal("expected error decoding a truncated entry")
	}
}

func TestResolveValidatesIndexes(t *testing.T) {
	accounts := &fakeAccounts{accounts: []*hostio.Account{
		{Key: [32]byte{1}},
		{Key: [32]byte{2}, IsWritable: true},
		{Key: [32]byte{3}, IsSigner: true},
	}}
	ix := InnerInstruction{ProgramIDIndex: 0, AccountIndexes: []int{1, 2}}
	programID, metas, err := Resolve(ix, accounts)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if programID != [32]byte{1} {
		t.Fatalf("programID = %v, want account 0's key", programID)
	}
	if len(metas) != 2 || metas[0].Key != [32]byte{2} || !metas[0].IsWritable {
		t.Fatalf("metas[0] = %+v", metas[0])
	}
	if metas[1].Key != [32]byte{3} || !metas[1].IsSigner {
		t.Fatalf("metas[1] = %+v", metas[1])
	}
}

func TestResolveRejectsOutOfRangeProgramIndex(t *testing.T) {
	accounts := &fakeAccounts{accounts: []*hostio.Account{{Key: [32]byte{1}}}}
	ix := InnerInstruction{ProgramIDIndex: 5}
	if _, _, err := Resolve(ix, accounts); err == nil {
		t.Fatal("expected error for an out-of-range program id index")
	}
}

func TestResolveRejectsOutOfRangeAccountIndex(t *testing.T) {
	accounts := &fakeAccounts{accounts: []*hostio.Account{{Key: [32]byte{1}}}}
	ix := InnerInstruction{ProgramIDIndex: 0, AccountIndexes: []int{9}}
	if _, _, err := Resolve(ix, accounts); err == nil {
		t.Fatal("expected error for an out-of-range account index")
	}
}

// fakeAccounts is a minimal hostio.AccountList for Resolve/Capture/Verify tests.
type fakeAccounts struct {
	accounts []*hostio.Account
}

func (f *fakeAccounts) At(index int) (*hostio.Account, error) {
	if index < 0 || index >= len(f.accounts) {
		return nil, errOutOfRange
	}
	return f.accounts[index], nil
}

func (f *fakeAccounts) Len() int { return len(f.accounts) }

func (f *fakeAccounts) Resize(index int, newSize int) error {
	a, err := f.At(index)
	if err != nil {
		return err
	}
	grown := make([]byte, newSize)
	copy(grown, a.Data)
	a.Data = grown
	return nil
}

var errOutOfRange = errTestSentinel("instrstream_test: account index out of range")

type errTestSentinel string

func (e errTestSentinel) Error() string { return string(e) }
