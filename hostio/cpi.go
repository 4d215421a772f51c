// SPDX-License-Identifier: Apache-2.0

package hostio

// Instruction is a fully-formed cross-program invocation, built by
// plugincpi/execute and handed to CPI.Invoke or CPI.InvokeSigned.
type Instruction struct {
	ProgramID [32]byte
	Accounts  []AccountMeta
	Data      []byte
}

// Seed is one element of a PDA signer seed set, e.g. "wallet_vault" or a
// 32-byte key, plus the trailing bump byte.
type Seed []byte

// SignerSeeds is the ordered seed list (without the bump) the vault PDA was
// derived from, used to authorize an invoke_signed call.
type SignerSeeds struct {
	Seeds []Seed
	Bump  byte
}

// CPI issues cross-program invocations on the host's behalf.
type CPI interface {
	// Invoke performs an unsigned CPI: ix.Accounts must already carry every
	// signer the instruction needs from the outer transaction.
	Invoke(ix Instruction, accounts AccountList) error

	// InvokeSigned performs a CPI where the host re-derives signer
	// authority from seeds (the vault PDA), matching spec.md §4.E's
	// vault-signed plugin and inner-instruction invokes.
	InvokeSigned(ix Instruction, accounts AccountList, seeds SignerSeeds) error
}
