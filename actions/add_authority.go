// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/authority"
	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/wallet"
	"github.com/lazorkit/wallet-core/walleterr"
)

// AddAuthorityArgs is `acting_authority_id u32 || authority_payload_len u16
// || authority_payload[...] || authority_kind u16 || role_permission u8 ||
// num_plugin_refs u16 || plugin_refs[num_plugin_refs] || authority_data[...]`.
// DataPayload for the acting authority's Authenticate call is every byte
// from authority_kind onward, matching create_session's convention.
type AddAuthorityArgs struct {
	ActingAuthorityID uint32
	AuthorityPayload  []byte
	DataPayload       []byte

	Kind           authority.Kind
	RolePermission layout.RolePermission
	PluginRefs     []layout.PluginRef
	AuthorityData  []byte
}

const addAuthorityHeaderLen = 4 + 2

func parseAddAuthorityArgs(raw []byte) (AddAuthorityArgs, error) {
	if len(raw) < addAuthorityHeaderLen {
		return AddAuthorityArgs{}, walleterr.ErrInvalidInstructionData
	}
	var a AddAuthorityArgs
	a.ActingAuthorityID = binary.LittleEndian.Uint32(raw[0:4])
	payloadLen := binary.LittleEndian.Uint16(raw[4:6])
	if len(raw) < addAuthorityHeaderLen+int(payloadLen)+2+1+2 {
		return AddAuthorityArgs{}, walleterr.ErrInvalidInstructionData
	}
	a.AuthorityPayload = raw[addAuthorityHeaderLen : addAuthorityHeaderLen+int(payloadLen)]
	body := raw[addAuthorityHeaderLen+int(payloadLen):]
	a.DataPayload = body

	a.Kind = authority.Kind(binary.LittleEndian.Uint16(body[0:2]))
	a.RolePermission = layout.RolePermission(body[2])
	numRefs := binary.LittleEndian.Uint16(body[3:5])
	offset := 5
	for i := uint16(0); i < numRefs; i++ {
		if offset+layout.PluginRefLen > len(body) {
			return AddAuthorityArgs{}, walleterr.ErrInvalidInstructionData
		}
		ref, err := layout.ReadPluginRef(body, offset)
		if err != nil {
			return AddAuthorityArgs{}, err
		}
		a.PluginRefs = append(a.PluginRefs, ref)
		offset += layout.PluginRefLen
	}
	a.AuthorityData = body[offset:]
	return a, nil
}

// AddAuthority appends a new authority at the current plugin-registry
// offset (spec.md §4.C), after authenticating the acting authority and
// enforcing the authority-management role-permission gate (§4.D steps 4-6).
func AddAuthority(c *Context, host Host) error {
	args, err := parseAddAuthorityArgs(c.Args)
	if err != nil {
		return err
	}
	perm, err := authenticateAction(c, host, args.ActingAuthorityID, args.AuthorityPayload, args.DataPayload)
	if err != nil {
		return err
	}
	if err := requirePermission(categoryAuthorityManagement, perm); err != nil {
		return err
	}

	if args.Kind.IsSession() {
		return walleterr.ErrInvalidAuthorityType
	}
	authLen, err := authority.Length(args.Kind)
	if err != nil {
		return err
	}
	authorityData, err := buildAuthorityRecord(args.Kind, args.AuthorityData, authLen)
	if err != nil {
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
	last, err := wallet.LastAuthority(walletAcct.Data)
	if err != nil {
		return err
	}
	newID := last.Position.ID + 1

	newSize := alignedAuthoritySize(authLen, len(args.PluginRefs))
	registryTail := append([]byte(nil), walletAcct.Data[regOffset:]...)

	oldLen := len(walletAcct.Data)
	if err := c.Accounts.Resize(c.WalletIndex, oldLen+newSize); err != nil {
		return err
	}
	walletAcct, err = c.WalletAccount()
	if err != nil {
		return err
	}

	if err := layout.PutBytesAt(walletAcct.Data, regOffset+newSize, registryTail); err != nil {
		return err
	}

	pos := layout.Position{
		AuthorityType:   uint16(args.Kind),
		AuthorityLength: uint16(authLen),
		NumPluginRefs:   uint16(len(args.PluginRefs)),
		RolePermission:  args.RolePermission,
		ID:              newID,
		Boundary:        uint32(regOffset + newSize),
	}
	if err := layout.WritePosition(walletAcct.Data, regOffset, pos); err != nil {
		return err
	}
	if err := layout.PutBytesAt(walletAcct.Data, regOffset+layout.PositionLen, authorityData); err != nil {
		return err
	}
	refOffset := regOffset + layout.PositionLen + authLen
	for _, ref := range args.PluginRefs {
		if err := layout.WritePluginRef(walletAcct.Data, refOffset, ref); err != nil {
			return err
		}
		refOffset += layout.PluginRefLen
	}

	n, err := layout.NumAuthorities(walletAcct.Data)
	if err != nil {
		return err
	}
	if err := layout.SetNumAuthorities(walletAcct.Data, n+1); err != nil {
		return err
	}

	return resizeAndRebalance(c, len(walletAcct.Data))
}
