// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"bytes"

	"github.com/lazorkit/wallet-core/walleterr"
)

// programExecLen is invoking_program_id(32) + prefix_len(1) + pad(7) +
// expected_prefix(40).
//
// wallet-len: KindProgramExec
const programExecLen = 32 + 1 + 7 + 40
const programExecPrefixCap = 40

type programExecAuthority struct {
	programID     [32]byte
	prefixLen     uint8
	expectedPrefix [programExecPrefixCap]byte
}

func parseProgramExec(raw []byte) (Authority, error) {
	if len(raw) != programExecLen {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	a := &programExecAuthority{}
	copy(a.programID[:], raw[0:32])
	a.prefixLen = raw[32]
	copy(a.expectedPrefix[:], raw[40:80])
	if int(a.prefixLen) > programExecPrefixCap {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	return a, nil
}

func (a *programExecAuthority) TypeTag() Kind    { return KindProgramExec }
func (a *programExecAuthority) Length() int      { return programExecLen }
func (a *programExecAuthority) MatchData(raw []byte) bool { return len(raw) == programExecLen }
func (a *programExecAuthority) Identity() []byte { return a.programID[:] }
func (a *programExecAuthority) Odometer() uint32 { return 0 }

func (a *programExecAuthority) Encode() []byte {
	out := make([]byte, programExecLen)
	copy(out[0:32], a.programID[:])
	out[32] = a.prefixLen
	copy(out[40:80], a.expectedPrefix[:])
	return out
}

// Authenticate inspects the preceding instruction for an attestation from
// the trusted program: matching program id, a matching data prefix, and
// the wallet/vault accounts as its first two account metas (spec.md §4.B).
func (a *programExecAuthority) Authenticate(ctx AuthContext, authorityPayload, dataPayload []byte, currentSlot uint64) error {
	if len(authorityPayload) != 1 {
		return walleterr.ErrInvalidAuthorityPayload
	}
	currentIndex, err := ctx.Instructions.CurrentIndex()
	if err != nil {
		return walleterr.ErrInvalidAuthorityPayload
	}
	if currentIndex == 0 {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	prev, err := ctx.Instructions.PreviousInstruction(currentIndex)
	if err != nil {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	if prev.ProgramID != a.programID {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	prefix := a.expectedPrefix[:a.prefixLen]
	if len(prev.Data) < len(prefix) || !bytes.Equal(prev.Data[:len(prefix)], prefix) {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	if len(prev.Accounts) < 2 {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	if prev.Accounts[0].Key != ctx.ProgramExecWallet || prev.Accounts[1].Key != ctx.ProgramExecVault {
		return walleterr.ErrPrecompileInstructionMismatch
	}
	return nil
}
