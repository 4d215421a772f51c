// SPDX-License-Identifier: Apache-2.0

// Package instrstream decodes the compact inner-instruction stream of
// spec.md §4.G and implements the account-snapshot utility of §4.G/§4.E.
package instrstream

import (
	"github.com/lazorkit/wallet-core/hostio"
	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/walleterr"
)

// InnerInstruction is one decoded entry of the compact stream: a
// program-id index and account indexes into the outer account list, plus
// the raw instruction data.
type InnerInstruction struct {
	ProgramIDIndex int
	AccountIndexes []int
	Data           []byte
}

// Iterator lazily decodes inner instructions one at a time, so a
// malformed entry past the Nth is only discovered once the caller reaches
// it — matching the §4.E pipeline, which processes instructions in
// emission order and aborts immediately on the first error.
type Iterator struct {
	dec       *layout.Decoder
	remaining int
}

// NewIterator reads the leading num_ixs byte and returns an Iterator over
// the rest of buf.
func NewIterator(buf []byte) (*Iterator, error) {
	dec := layout.NewDecoder(buf)
	numIxs, err := dec.Uint8()
	if err != nil {
		return nil, walleterr.ErrInvalidInstructionData
	}
	return &Iterator{dec: dec, remaining: int(numIxs)}, nil
}

// Len returns the number of instructions declared by the stream header.
func (it *Iterator) Len() int { return it.remaining }

// Next decodes the next instruction, or returns ok=false once exhausted.
func (it *Iterator) Next() (InnerInstruction, bool, error) {
	if it.remaining == 0 {
		return InnerInstruction{}, false, nil
	}
	programIDIndex, err := it.dec.Uint8()
	if err != nil {
		return InnerInstruction{}, false, walleterr.ErrInvalidInstructionData
	}
	numAccts, err := it.dec.Uint8()
	if err != nil {
		return InnerInstruction{}, false, walleterr.ErrInvalidInstructionData
	}
	indexes := make([]int, numAccts)
	for i := range indexes {
		b, err := it.dec.Uint8()
		if err != nil {
			return InnerInstruction{}, false, walleterr.ErrInvalidInstructionData
		}
		indexes[i] = int(b)
	}
	dataLen, err := it.dec.Uint16()
	if err != nil {
		return InnerInstruction{}, false, walleterr.ErrInvalidInstructionData
	}
	data, err := it.dec.Bytes(int(dataLen))
	if err != nil {
		return InnerInstruction{}, false, walleterr.ErrInvalidInstructionData
	}
	it.remaining--
	return InnerInstruction{
		ProgramIDIndex: int(programIDIndex),
		AccountIndexes: indexes,
		Data:           data,
	}, true, nil
}

// Resolve validates ix's indexes against accounts and returns the
// program id and account-meta list, rejecting out-of-range references
// (spec.md §4.G: "rejects out-of-range indices").
func Resolve(ix InnerInstruction, accounts hostio.AccountList) (programID [32]byte, metas []hostio.AccountMeta, err error) {
	if ix.ProgramIDIndex < 0 || ix.ProgramIDIndex >= accounts.Len() {
		return programID, nil, walleterr.ErrInvalidInstructionData
	}
	programAcct, err := accounts.At(ix.ProgramIDIndex)
	if err != nil {
		return programID, nil, walleterr.ErrInvalidInstructionData
	}
	programID = programAcct.Key

	metas = make([]hostio.AccountMeta, len(ix.AccountIndexes))
	for i, idx := range ix.AccountIndexes {
		if idx < 0 || idx >= accounts.Len() {
			return programID, nil, walleterr.ErrInvalidInstructionData
		}
		acct, err := accounts.At(idx)
		if err != nil {
			return programID, nil, walleterr.ErrInvalidInstructionData
		}
		metas[i] = hostio.AccountMeta{Key: acct.Key, IsSigner: acct.IsSigner, IsWritable: acct.IsWritable}
	}
	return programID, metas, nil
}
