// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/wallet"
	"github.com/lazorkit/wallet-core/walleterr"
)

// RemoveAuthorityArgs is `acting_authority_id u32 || authority_payload_len
// u16 || authority_payload[...] || target_authority_id u32`. DataPayload for
// the acting authority's Authenticate call is the trailing
// target_authority_id, matching create_session's convention.
type RemoveAuthorityArgs struct {
	ActingAuthorityID uint32
	AuthorityPayload  []byte
	DataPayload       []byte

	ID uint32
}

const removeAuthorityHeaderLen = 4 + 2

func parseRemoveAuthorityArgs(raw []byte) (RemoveAuthorityArgs, error) {
	if len(raw) < removeAuthorityHeaderLen {
		return RemoveAuthorityArgs{}, walleterr.ErrInvalidInstructionData
	}
	var a RemoveAuthorityArgs
	a.ActingAuthorityID = binary.LittleEndian.Uint32(raw[0:4])
	payloadLen := binary.LittleEndian.Uint16(raw[4:6])
	if len(raw) < removeAuthorityHeaderLen+int(payloadLen)+4 {
		return RemoveAuthorityArgs{}, walleterr.ErrInvalidInstructionData
	}
	a.AuthorityPayload = raw[removeAuthorityHeaderLen : removeAuthorityHeaderLen+int(payloadLen)]
	body := raw[removeAuthorityHeaderLen+int(payloadLen):]
	a.DataPayload = body
	a.ID = binary.LittleEndian.Uint32(body[0:4])
	return a, nil
}

// RemoveAuthority deletes the authority record whose id matches args.ID,
// shifting every later record down and shrinking the account (spec.md
// §4.C), after authenticating the acting authority and enforcing the
// authority-management role-permission gate (§4.D steps 4-6). The wallet's
// sole remaining authority may never be removed: the call fails with
// walleterr.ErrInvalidOperation. The count includes authorities of every
// kind, session kinds too.
func RemoveAuthority(c *Context, host Host) error {
	args, err := parseRemoveAuthorityArgs(c.Args)
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

	recs, err := wallet.ListAuthorities(walletAcct.Data)
	if err != nil {
		return err
	}
	remaining := 0
	for _, rec := range recs {
		if rec.Position.ID != args.ID {
			remaining++
		}
	}
	if remaining == 0 {
		return walleterr.ErrInvalidOperation
	}

	recordLen := target.Position.RecordLen()
	oldLen := len(walletAcct.Data)
	if err := layout.ShiftTail(walletAcct.Data, target.Offset+recordLen, target.Offset, oldLen-target.Offset-recordLen); err != nil {
		return err
	}

	n, err := layout.NumAuthorities(walletAcct.Data)
	if err != nil {
		return err
	}
	if err := layout.SetNumAuthorities(walletAcct.Data, n-1); err != nil {
		return err
	}

	if err := fixupBoundaries(walletAcct.Data, target.Offset, recordLen); err != nil {
		return err
	}

	return resizeAndRebalance(c, oldLen-recordLen)
}

// fixupBoundaries repairs Position.Boundary fields after ShiftTail has moved
// the records that followed the removed one down by shrink bytes. Records
// before shiftPoint kept their original bytes and already point at the
// correct offset (the removed record's old start, where the next record now
// begins); records at or after shiftPoint still carry their pre-shift
// Boundary value and need shrink subtracted.
func fixupBoundaries(buf []byte, shiftPoint int, shrink int) error {
	n, err := layout.NumAuthorities(buf)
	if err != nil {
		return err
	}
	offset := wallet.AuthoritiesOffset()
	for i := uint16(0); i < n; i++ {
		pos, err := layout.ReadPosition(buf, offset)
		if err != nil {
			return err
		}
		if offset >= shiftPoint {
			pos.Boundary -= uint32(shrink)
			if err := layout.WritePosition(buf, offset, pos); err != nil {
				return err
			}
		}
		offset = int(pos.Boundary)
	}
	return nil
}
