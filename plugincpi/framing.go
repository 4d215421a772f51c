// SPDX-License-Identifier: Apache-2.0

// Package plugincpi implements the wire framing of spec.md §4.F: the
// opcode-tagged payloads sent to a plugin program over CPI, and the account
// list shape every plugin invocation shares.
package plugincpi

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/hostio"
	"github.com/lazorkit/wallet-core/layout"
)

// Opcode identifies which plugin entry point a CPI targets.
type Opcode uint8

const (
	OpCheckPermission     Opcode = 0
	OpUpdateState         Opcode = 1
	OpValidateAddAuthority Opcode = 2
	OpInitialize          Opcode = 3
)

// BuildCheckPermission frames opcode 0: `authority_id u32 || auth_data_len
// u32 || auth_data[] || program_id[32] || ix_data_len u32 || ix_data[]`.
func BuildCheckPermission(authorityID uint32, authData []byte, programID [32]byte, ixData []byte) []byte {
	out := make([]byte, 1, 1+4+4+len(authData)+32+4+len(ixData))
	out[0] = byte(OpCheckPermission)
	out = appendUint32(out, authorityID)
	out = appendUint32(out, uint32(len(authData)))
	out = append(out, authData...)
	out = append(out, programID[:]...)
	out = appendUint32(out, uint32(len(ixData)))
	out = append(out, ixData...)
	return out
}

// BuildUpdateState frames opcode 1: `ix_data_len u32 || ix_data[]`.
func BuildUpdateState(ixData []byte) []byte {
	out := make([]byte, 1, 1+4+len(ixData))
	out[0] = byte(OpUpdateState)
	out = appendUint32(out, uint32(len(ixData)))
	out = append(out, ixData...)
	return out
}

// BuildValidateAddAuthority frames opcode 2: `auth_data_len u32 ||
// auth_data[] || num_refs u16 || refs[]`.
func BuildValidateAddAuthority(authData []byte, refs []layout.PluginRef) []byte {
	out := make([]byte, 1, 1+4+len(authData)+2+layout.PluginRefLen*len(refs))
	out[0] = byte(OpValidateAddAuthority)
	out = appendUint32(out, uint32(len(authData)))
	out = append(out, authData...)
	out = appendUint16(out, uint16(len(refs)))
	for _, ref := range refs {
		var buf [layout.PluginRefLen]byte
		_ = layout.WritePluginRef(buf[:], 0, ref)
		out = append(out, buf[:]...)
	}
	return out
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

// AccountSet builds the account list shared by CheckPermission and
// UpdateState CPIs: `[plugin_config (w), wallet_account (ro), wallet_vault
// (signer, ro), *instruction.accounts]` (spec.md §4.E).
func AccountSet(pluginConfig, walletAccount, walletVault [32]byte, ixAccounts []hostio.AccountMeta) []hostio.AccountMeta {
	out := make([]hostio.AccountMeta, 0, 3+len(ixAccounts))
	out = append(out,
		hostio.AccountMeta{Key: pluginConfig, IsWritable: true},
		hostio.AccountMeta{Key: walletAccount},
		hostio.AccountMeta{Key: walletVault, IsSigner: true},
	)
	out = append(out, ixAccounts...)
	return out
}
