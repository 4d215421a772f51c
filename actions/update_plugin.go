// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/wallet"
	"github.com/lazorkit/wallet-core/walleterr"
)

// UpdatePluginArgs is `acting_authority_id u32 || authority_payload_len u16
// || authority_payload[...] || plugin_index u16 || config_account[32] ||
// enabled u8 || priority u8`. program_id is immutable; swapping it is an
// add/remove. DataPayload for the acting authority's Authenticate call is
// every byte from plugin_index onward.
type UpdatePluginArgs struct {
	ActingAuthorityID uint32
	AuthorityPayload  []byte
	DataPayload       []byte

	Index         uint16
	ConfigAccount [32]byte
	Enabled       bool
	Priority      uint8
}

const updatePluginHeaderLen = 4 + 2

func parseUpdatePluginArgs(raw []byte) (UpdatePluginArgs, error) {
	if len(raw) < updatePluginHeaderLen {
		return UpdatePluginArgs{}, walleterr.ErrInvalidInstructionData
	}
	var a UpdatePluginArgs
	a.ActingAuthorityID = binary.LittleEndian.Uint32(raw[0:4])
	payloadLen := binary.LittleEndian.Uint16(raw[4:6])
	if len(raw) < updatePluginHeaderLen+int(payloadLen)+2+32+1+1 {
		return UpdatePluginArgs{}, walleterr.ErrInvalidInstructionData
	}
	a.AuthorityPayload = raw[updatePluginHeaderLen : updatePluginHeaderLen+int(payloadLen)]
	body := raw[updatePluginHeaderLen+int(payloadLen):]
	a.DataPayload = body

	a.Index = binary.LittleEndian.Uint16(body[0:2])
	copy(a.ConfigAccount[:], body[2:34])
	a.Enabled = body[34] != 0
	a.Priority = body[35]
	return a, nil
}

// UpdatePlugin overwrites an existing registry entry's mutable fields in
// place (spec.md §4.C), after authenticating the acting authority and
// enforcing the plugin-management role-permission gate (§4.D steps 4-6).
// The registry's size never changes.
func UpdatePlugin(c *Context, host Host) error {
	args, err := parseUpdatePluginArgs(c.Args)
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
	if args.Index >= numPlugins {
		return walleterr.ErrPluginNotFound
	}

	entryOffset := regOffset + 2 + int(args.Index)*layout.PluginEntryLen
	entry, err := layout.ReadPluginEntry(walletAcct.Data, entryOffset)
	if err != nil {
		return err
	}
	entry.ConfigAccount = args.ConfigAccount
	entry.Enabled = args.Enabled
	entry.Priority = args.Priority
	return layout.WritePluginEntry(walletAcct.Data, entryOffset, entry)
}
