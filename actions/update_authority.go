// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/authority"
	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/walleterr"
)

// UpdateAuthorityArgs is `acting_authority_id u32 || authority_payload_len
// u16 || authority_payload[...] || target_authority_id u32 ||
// new_authority_type u16 || role_permission u8 || new_data_len u16 ||
// num_plugin_refs u16 || plugin_refs[num_plugin_refs] || new_data[...]`.
// DataPayload for the acting authority's Authenticate call is every byte
// from target_authority_id onward. A kind change (new_authority_type
// differing from the stored one) and a plugin-ref-count change are both
// legal here; growing or shrinking the record shifts every later authority's
// bytes and adjusts its Boundary by the signed size delta.
type UpdateAuthorityArgs struct {
	ActingAuthorityID uint32
	AuthorityPayload  []byte
	DataPayload       []byte

	ID               uint32
	NewAuthorityType authority.Kind
	RolePermission   layout.RolePermission
	PluginRefs       []layout.PluginRef
	NewData          []byte
}

const updateAuthorityHeaderLen = 4 + 2

func parseUpdateAuthorityArgs(raw []byte) (UpdateAuthorityArgs, error) {
	if len(raw) < updateAuthorityHeaderLen {
		return UpdateAuthorityArgs{}, walleterr.ErrInvalidInstructionData
	}
	var a UpdateAuthorityArgs
	a.ActingAuthorityID = binary.LittleEndian.Uint32(raw[0:4])
	payloadLen := binary.LittleEndian.Uint16(raw[4:6])
	body := raw[updateAuthorityHeaderLen:]
	if len(body) < int(payloadLen)+4+2+1+2+2 {
		return UpdateAuthorityArgs{}, walleterr.ErrInvalidInstructionData
	}
	a.AuthorityPayload = body[0:payloadLen]
	body = body[payloadLen:]
	a.DataPayload = body

	a.ID = binary.LittleEndian.Uint32(body[0:4])
	a.NewAuthorityType = authority.Kind(binary.LittleEndian.Uint16(body[4:6]))
	a.RolePermission = layout.RolePermission(body[6])
	dataLen := binary.LittleEndian.Uint16(body[7:9])
	numRefs := binary.LittleEndian.Uint16(body[9:11])

	offset := 11
	for i := uint16(0); i < numRefs; i++ {
		if offset+layout.PluginRefLen > len(body) {
			return UpdateAuthorityArgs{}, walleterr.ErrInvalidInstructionData
		}
		ref, err := layout.ReadPluginRef(body, offset)
		if err != nil {
			return UpdateAuthorityArgs{}, err
		}
		a.PluginRefs = append(a.PluginRefs, ref)
		offset += layout.PluginRefLen
	}
	if offset+int(dataLen) > len(body) {
		return UpdateAuthorityArgs{}, walleterr.ErrInvalidInstructionData
	}
	a.NewData = body[offset : offset+int(dataLen)]
	return a, nil
}

// UpdateAuthority overwrites an existing authority's type, role_permission,
// payload, and plugin-ref table (spec.md §4.C), after authenticating the
// acting authority and enforcing the authority-management role-permission
// gate (§4.D steps 4-6). Three code paths are keyed on the signed size
// delta between the old and new record: equal (overwrite in place), grow
// (resize, shift the tail forward, top up rent), shrink (shift the tail
// backward, resize, refund rent). In every path every following authority's
// Position.Boundary is adjusted by the same signed delta.
//
// For the two Secp* root kinds, new_data may also be a bare 33- or 64-byte
// public key rather than the full fixed-length record (the same tie-break
// rule add_authority and create_wallet accept, spec.md §4.B): when the kind
// is unchanged the key is normalized to compressed form and spliced in
// while the existing odometer is preserved, so rotating a key never rewinds
// its replay counter. A kind change always starts the new record's odometer
// at zero, matching add_authority/create_wallet.
func UpdateAuthority(c *Context, host Host) error {
	args, err := parseUpdateAuthorityArgs(c.Args)
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

	walletAcct, err := c.WalletAccount()
	if err != nil {
		return err
	}
	target, err := findAuthorityOrFail(walletAcct.Data, args.ID)
	if err != nil {
		return err
	}
	kind := authority.Kind(target.Position.AuthorityType)

	newKind := args.NewAuthorityType
	if !newKind.Valid() || newKind.IsSession() {
		return walleterr.ErrInvalidAuthorityType
	}
	newAuthLen, err := authority.Length(newKind)
	if err != nil {
		return err
	}

	var newData []byte
	if newKind == kind {
		newData, err = rebuildAuthorityRecord(kind, args.NewData, newAuthLen, target.Data)
	} else {
		newData, err = buildAuthorityRecord(newKind, args.NewData, newAuthLen)
	}
	if err != nil {
		return err
	}
	if _, err := authority.Parse(newKind, newData); err != nil {
		return err
	}

	oldRecordLen := target.Position.RecordLen()
	newRecordLen := layout.AlignUp8(layout.PositionLen + len(newData) + layout.PluginRefLen*len(args.PluginRefs))
	delta := newRecordLen - oldRecordLen

	tailStart := target.Offset + oldRecordLen
	if delta != 0 {
		oldLen := len(walletAcct.Data)
		tail := append([]byte(nil), walletAcct.Data[tailStart:]...)
		if delta > 0 {
			if err := c.Accounts.Resize(c.WalletIndex, oldLen+delta); err != nil {
				return err
			}
			walletAcct, err = c.WalletAccount()
			if err != nil {
				return err
			}
		}
		if err := layout.PutBytesAt(walletAcct.Data, tailStart+delta, tail); err != nil {
			return err
		}
	}

	pos := target.Position
	pos.AuthorityType = uint16(newKind)
	pos.AuthorityLength = uint16(len(newData))
	pos.NumPluginRefs = uint16(len(args.PluginRefs))
	pos.RolePermission = args.RolePermission
	pos.Boundary = uint32(target.Offset + newRecordLen)
	if err := layout.WritePosition(walletAcct.Data, target.Offset, pos); err != nil {
		return err
	}
	dataOffset := target.Offset + layout.PositionLen
	if err := layout.PutBytesAt(walletAcct.Data, dataOffset, newData); err != nil {
		return err
	}
	refOffset := dataOffset + len(newData)
	for _, ref := range args.PluginRefs {
		if err := layout.WritePluginRef(walletAcct.Data, refOffset, ref); err != nil {
			return err
		}
		refOffset += layout.PluginRefLen
	}

	if delta != 0 {
		// tailStart+delta is where the shifted records now start; their own
		// embedded Boundary fields are still offset by delta from the new
		// layout, the same correction create_session/remove_authority apply
		// after a shift.
		if err := fixupBoundaries(walletAcct.Data, tailStart+delta, -delta); err != nil {
			return err
		}
	}

	if delta < 0 {
		return resizeAndRebalance(c, len(walletAcct.Data)+delta)
	}
	if delta > 0 {
		return resizeAndRebalance(c, len(walletAcct.Data))
	}
	return nil
}
