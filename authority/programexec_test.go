// SPDX-License-Identifier: Apache-2.0

package authority_test

import (
	"testing"

	. "github.com/lazorkit/wallet-core/authority"
	"github.com/lazorkit/wallet-core/hostio"
	"github.com/lazorkit/wallet-core/walleterr"
)

func programExecRecord(programID [32]byte, prefix []byte) []byte {
	out := make([]byte, 80)
	copy(out[0:32], programID[:])
	out[32] = byte(len(prefix))
	copy(out[40:40+len(prefix)], prefix)
	return out
}

func TestProgramExecAuthenticateSuccess(t *testing.T) {
	programID := [32]byte{7, 7, 7}
	wallet := [32]byte{1}
	vault := [32]byte{2}
	prefix := []byte{0xAA, 0xBB}

	a, err := Parse(KindProgramExec, programExecRecord(programID, prefix))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	prev := hostio.InstructionEntry{
		ProgramID: programID,
		Data:      []byte{0xAA, 0xBB, 0x01, 0x02},
		Accounts: []hostio.AccountMeta{
			{Key: wallet},
			{Key: vault},
		},
	}
	ctx := AuthContext{
		Instructions: &fakeInstructions{entries: []hostio.InstructionEntry{
			prev,
			{ProgramID: [32]byte{0xCD}},
		}},
		ProgramExecWallet: wallet,
		ProgramExecVault:  vault,
	}
	if err := a.Authenticate(ctx, []byte{0}, nil, 0); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
}

func TestProgramExecAuthenticateRejectsWrongProgram(t *testing.T) {
	programID := [32]byte{7, 7, 7}
	a, _ := Parse(KindProgramExec, programExecRecord(programID, nil))
	ctx := AuthContext{
		Instructions: &fakeInstructions{entries: []hostio.InstructionEntry{
			{ProgramID: [32]byte{9, 9, 9}},
			{ProgramID: [32]byte{0xCD}},
		}},
	}
	if err := a.Authenticate(ctx, []byte{0}, nil, 0); err != walleterr.ErrPrecompileInstructionMismatch {
		t.Fatalf("Authenticate = %v, want ErrPrecompileInstructionMismatch", err)
	}
}

func TestProgramExecAuthenticateRejectsPrefixMismatch(t *testing.T) {
	programID := [32]byte{7, 7, 7}
	a, _ := Parse(KindProgramExec, programExecRecord(programID, []byte{0xAA, 0xBB}))
	ctx := AuthContext{
		Instructions: &fakeInstructions{entries: []hostio.InstructionEntry{
			{ProgramID: programID, Data: []byte{0xAA, 0xFF}},
			{ProgramID: [32]byte{0xCD}},
		}},
	}
	if err := a.Authenticate(ctx, []byte{0}, nil, 0); err != walleterr.ErrPrecompileInstructionMismatch {
		t.Fatalf("Authenticate = %v, want ErrPrecompileInstructionMismatch", err)
	}
}

func TestProgramExecAuthenticateRejectsWrongAccounts(t *testing.T) {
	programID := [32]byte{7, 7, 7}
	a, _ := Parse(KindProgramExec, programExecRecord(programID, nil))
	ctx := AuthContext{
		Instructions: &fakeInstructions{entries: []hostio.InstructionEntry{
			{ProgramID: programID, Accounts: []hostio.AccountMeta{{Key: [32]byte{1}}, {Key: [32]byte{9}}}},
			{ProgramID: [32]byte{0xCD}},
		}},
		ProgramExecWallet: [32]byte{1},
		ProgramExecVault:  [32]byte{2},
	}
	if err := a.Authenticate(ctx, []byte{0}, nil, 0); err != walleterr.ErrPrecompileInstructionMismatch {
		t.Fatalf("Authenticate = %v, want ErrPrecompileInstructionMismatch", err)
	}
}

func TestProgramExecSessionAuthenticateSession(t *testing.T) {
	programID := [32]byte{7, 7, 7}
	sessionKey := [32]byte{3, 3, 3}
	root := programExecRecord(programID, nil)
	kind, data, err := PromoteToSession(KindProgramExec, root, sessionKey[:], 10, 100, 50)
	if err != nil {
		t.Fatalf("PromoteToSession: %v", err)
	}
	a, err := Parse(kind, data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sessionAuth := a.(SessionAuthority)

	ctx := AuthContext{
		Accounts: &fakeAccountList{accounts: []*hostio.Account{
			{Key: sessionKey, IsSigner: true},
		}},
	}
	if err := sessionAuth.AuthenticateSession(ctx, []byte{0}, nil, 60); err != nil {
		t.Fatalf("AuthenticateSession: %v", err)
	}
	if err := sessionAuth.AuthenticateSession(ctx, []byte{0}, nil, 61); err != walleterr.ErrSessionExpired {
		t.Fatalf("AuthenticateSession past expiration = %v, want ErrSessionExpired", err)
	}
}
