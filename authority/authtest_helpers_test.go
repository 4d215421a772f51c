// SPDX-License-Identifier: Apache-2.0

package authority_test

import (
	"github.com/lazorkit/wallet-core/hostio"
	"github.com/lazorkit/wallet-core/walleterr"
)

// fakeAccountList is a minimal in-memory hostio.AccountList for exercising
// Authenticate's signer-flag and account-payload logic without a host.
type fakeAccountList struct {
	accounts []*hostio.Account
}

func (f *fakeAccountList) At(index int) (*hostio.Account, error) {
	if index < 0 || index >= len(f.accounts) {
		return nil, walleterr.ErrInvalidAccountData
	}
	return f.accounts[index], nil
}

func (f *fakeAccountList) Len() int { return len(f.accounts) }

func (f *fakeAccountList) Resize(index int, newSize int) error {
	a, err := f.At(index)
	if err != nil {
		return err
	}
	if newSize <= len(a.Data) {
		a.Data = a.Data[:newSize]
		return nil
	}
	grown := make([]byte, newSize)
	copy(grown, a.Data)
	a.Data = grown
	return nil
}

// fakeInstructions is a minimal hostio.InstructionsSysvar backed by a fixed
// slice of instructions, with the "current" one always the last entry.
type fakeInstructions struct {
	entries []hostio.InstructionEntry
	depth   int
}

func (f *fakeInstructions) CurrentIndex() (int, error) {
	return len(f.entries) - 1, nil
}

func (f *fakeInstructions) PreviousInstruction(currentIndex int) (hostio.InstructionEntry, error) {
	if currentIndex <= 0 || currentIndex > len(f.entries) {
		return hostio.InstructionEntry{}, walleterr.ErrInvalidAccountData
	}
	return f.entries[currentIndex-1], nil
}

func (f *fakeInstructions) CallStackDepth() (int, error) {
	if f.depth == 0 {
		return 1, nil
	}
	return f.depth, nil
}
