// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/wallet"
	"github.com/lazorkit/wallet-core/walleterr"
)

// AddPluginArgs is `acting_authority_id u32 || authority_payload_len u16 ||
// authority_payload[...] || program_id[32] || config_account[32] ||
// enabled u8 || priority u8`. DataPayload for the acting authority's
// Authenticate call is every byte from program_id onward.
type AddPluginArgs struct {
	ActingAuthorityID uint32
	AuthorityPayload  []byte
	DataPayload       []byte

	Entry layout.PluginEntry
}

const addPluginHeaderLen = 4 + 2

func parseAddPluginArgs(raw []byte) (AddPluginArgs, error) {
	if len(raw) < addPluginHeaderLen {
		return AddPluginArgs{}, walleterr.ErrInvalidInstructionData
	}
	var a AddPluginArgs
	a.ActingAuthorityID = binary.LittleEndian.Uint32(raw[0:4])
	payloadLen := binary.LittleEndian.Uint16(raw[4:6])
	if len(raw) < addPluginHeaderLen+int(payloadLen)+32+32+1+1 {
		return AddPluginArgs{}, walleterr.ErrInvalidInstructionData
	}
	a.AuthorityPayload = raw[addPluginHeaderLen : addPluginHeaderLen+int(payloadLen)]
	body := raw[addPluginHeaderLen+int(payloadLen):]
	a.DataPayload = body

	var e layout.PluginEntry
	copy(e.ProgramID[:], body[0:32])
	copy(e.ConfigAccount[:], body[32:64])
	e.Enabled = body[64] != 0
	e.Priority = body[65]
	a.Entry = e
	return a, nil
}

// AddPlugin appends a new entry to the wallet's plugin registry, growing the
// account by layout.PluginEntryLen (spec.md §4.C), after authenticating the
// acting authority and enforcing the plugin-management role-permission gate
// (§4.D steps 4-6). An entry whose program_id and config_account both equal
// those of an existing entry is rejected with walleterr.ErrDuplicateAuthority.
// A plugin is identified by its registry index, not a
// stable id: removing an earlier plugin shifts every later one's index,
// which is why AuthorityRecord.PluginRefs are revalidated against the
// current table at sign time rather than cached.
func AddPlugin(c *Context, host Host) error {
	args, err := parseAddPluginArgs(c.Args)
	if err != nil {
		return err
	}
	perm, err := authenticateAction(c, host, args.ActingAuthorityID, args.AuthorityPayload, args.DataPayload)
	if err != nil {
		return err
	}
	if err := requirePermission(categoryPluginManagement, perm); err != nil {
		return err
	}

	walletAcct, err := c.WalletAccount()
	if err != nil {
		return err
	}
	regOffset, err := wallet.PluginRegistryOffset(walletAcct.Data)
	if err != nil {
		return err
	}
	numPlugins, err := layout.Uint16At(walletAcct.Data, regOffset)
	if err != nil {
		return err
	}
	existing, err := wallet.GetPlugins(walletAcct.Data)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p.Entry.ProgramID == args.Entry.ProgramID && p.Entry.ConfigAccount == args.Entry.ConfigAccount {
			return walleterr.ErrDuplicateAuthority
		}
	}

	oldLen := len(walletAcct.Data)
	entryOffset := regOffset + 2 + int(numPlugins)*layout.PluginEntryLen
	tail := append([]byte(nil), walletAcct.Data[entryOffset:]...)

	if err := c.Accounts.Resize(c.WalletIndex, oldLen+layout.PluginEntryLen); err != nil {
		return err
	}
	walletAcct, err = c.WalletAccount()
	if err != nil {
		return err
	}

	if err := layout.PutBytesAt(walletAcct.Data, entryOffset+layout.PluginEntryLen, tail); err != nil {
		return err
	}
	if err := layout.WritePluginEntry(walletAcct.Data, entryOffset, args.Entry); err != nil {
		return err
	}
	if err := layout.PutUint16At(walletAcct.Data, regOffset, numPlugins+1); err != nil {
		return err
	}

	return resizeAndRebalance(c, len(walletAcct.Data))
}
