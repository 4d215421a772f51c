// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/wallet"
	"github.com/lazorkit/wallet-core/walleterr"
)

// RemovePluginArgs is `acting_authority_id u32 || authority_payload_len u16
// || authority_payload[...] || plugin_index u16`. DataPayload for the
// acting authority's Authenticate call is the trailing plugin_index.
type RemovePluginArgs struct {
	ActingAuthorityID uint32
	AuthorityPayload  []byte
	DataPayload       []byte

	Index uint16
}

const removePluginHeaderLen = 4 + 2

func parseRemovePluginArgs(raw []byte) (RemovePluginArgs, error) {
	if len(raw) < removePluginHeaderLen {
		return RemovePluginArgs{}, walleterr.ErrInvalidInstructionData
	}
	var a RemovePluginArgs
	a.ActingAuthorityID = binary.LittleEndian.Uint32(raw[0:4])
	payloadLen := binary.LittleEndian.Uint16(raw[4:6])
	if len(raw) < removePluginHeaderLen+int(payloadLen)+2 {
		return RemovePluginArgs{}, walleterr.ErrInvalidInstructionData
	}
	a.AuthorityPayload = raw[removePluginHeaderLen : removePluginHeaderLen+int(payloadLen)]
	body := raw[removePluginHeaderLen+int(payloadLen):]
	a.DataPayload = body
	a.Index = binary.LittleEndian.Uint16(body[0:2])
	return a, nil
}

// RemovePlugin deletes the entry at args.Index from the plugin registry,
// shifting every later entry down by one slot (spec.md §4.C), after
// authenticating the acting authority and enforcing the plugin-management
// role-permission gate (§4.D steps 4-6). It does not touch any authority's
// PluginRefs: a dangling PluginRef.PluginIndex past the new table length, or
// one that now names a different plugin, is the caller's responsibility to
// clean up with update_authority — sign simply revalidates refs against the
// live table on every invocation.
func RemovePlugin(c *Context, host Host) error {
	args, err := parseRemovePluginArgs(c.Args)
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
	oldLen := len(walletAcct.Data)
	if err := layout.ShiftTail(walletAcct.Data, entryOffset+layout.PluginEntryLen, entryOffset, oldLen-entryOffset-layout.PluginEntryLen); err != nil {
		return err
	}
	if err := layout.PutUint16At(walletAcct.Data, regOffset, numPlugins-1); err != nil {
		return err
	}

	return resizeAndRebalance(c, oldLen-layout.PluginEntryLen)
}
