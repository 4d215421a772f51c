// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/authority"
	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/walleterr"
)

// CreateSessionArgs is `authority_id u32 || session_key[32] ||
// max_session_age u64 || duration u64 || authority_payload_len u16 ||
// authority_payload[...]`. dataPayload for the root authority's Authenticate
// call is every byte preceding authority_payload, matching sign's own
// message-hash convention (spec.md §4.B).
type CreateSessionArgs struct {
	AuthorityID      uint32
	SessionKey       [32]byte
	MaxSessionAge    uint64
	Duration         uint64
	AuthorityPayload []byte
	DataPayload      []byte
}

const createSessionFixedLen = 4 + 32 + 8 + 8 + 2

func parseCreateSessionArgs(raw []byte) (CreateSessionArgs, error) {
	if len(raw) < createSessionFixedLen {
		return CreateSessionArgs{}, walleterr.ErrInvalidInstructionData
	}
	var a CreateSessionArgs
	a.AuthorityID = binary.LittleEndian.Uint32(raw[0:4])
	copy(a.SessionKey[:], raw[4:36])
	a.MaxSessionAge = binary.LittleEndian.Uint64(raw[36:44])
	a.Duration = binary.LittleEndian.Uint64(raw[44:52])
	payloadLen := binary.LittleEndian.Uint16(raw[52:54])
	if len(raw) < 54+int(payloadLen) {
		return CreateSessionArgs{}, walleterr.ErrInvalidInstructionData
	}
	a.DataPayload = raw[0:54]
	a.AuthorityPayload = raw[54 : 54+int(payloadLen)]
	return a, nil
}

// CreateSession authenticates the root authority named by args.AuthorityID
// and converts its record to the corresponding session kind in place
// (spec.md §4.C). Where the other authority-management handlers authenticate
// a separate acting authority, this one authenticates the very authority it
// converts, since it mints a new signer (the session key) on the wallet's
// behalf. A session authority cannot itself mint another session.
func CreateSession(c *Context, host Host) error {
	args, err := parseCreateSessionArgs(c.Args)
	if err != nil {
		return err
	}

	walletAcct, err := c.WalletAccount()
	if err != nil {
		return err
	}
	target, err := findAuthorityOrFail(walletAcct.Data, args.AuthorityID)
	if err != nil {
		return err
	}
	rootKind := authority.Kind(target.Position.AuthorityType)
	if rootKind.IsSession() {
		return walleterr.ErrInvalidOperation
	}

	perm, err := authenticateAction(c, host, args.AuthorityID, args.AuthorityPayload, args.DataPayload)
	if err != nil {
		return err
	}
	if err := requirePermission(categoryAuthorityManagement, perm); err != nil {
		return err
	}

	// authenticateAction may have resized nothing, but it did write back the
	// authenticated odometer; re-fetch target so its Data/Offset reflect the
	// live buffer before the promotion below reads target.Data again.
	target, err = findAuthorityOrFail(walletAcct.Data, args.AuthorityID)
	if err != nil {
		return err
	}

	currentSlot := c.Clock.CurrentSlot()
	newKind, newData, err := authority.PromoteToSession(
		rootKind, target.Data, args.SessionKey[:], currentSlot, args.MaxSessionAge, args.Duration,
	)
	if err != nil {
		return err
	}

	oldRecordLen := target.Position.RecordLen()
	newRecordLen := layout.AlignUp8(layout.PositionLen + len(newData) + layout.PluginRefLen*len(target.PluginRefs))
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
	pos.Boundary = uint32(target.Offset + newRecordLen)
	if err := layout.WritePosition(walletAcct.Data, target.Offset, pos); err != nil {
		return err
	}
	dataOffset := target.Offset + layout.PositionLen
	if err := layout.PutBytesAt(walletAcct.Data, dataOffset, newData); err != nil {
		return err
	}
	refOffset := dataOffset + len(newData)
	for _, ref := range target.PluginRefs {
		if err := layout.WritePluginRef(walletAcct.Data, refOffset, ref); err != nil {
			return err
		}
		refOffset += layout.PluginRefLen
	}

	if delta != 0 {
		// tailStart+delta is where the shifted records now start; their own
		// embedded Boundary fields are still offset by delta from the new
		// layout, the same correction remove_authority needs after a shift.
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
