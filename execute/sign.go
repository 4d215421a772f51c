// SPDX-License-Identifier: Apache-2.0

package execute

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/authority"
	"github.com/lazorkit/wallet-core/config"
	"github.com/lazorkit/wallet-core/hostio"
	"github.com/lazorkit/wallet-core/instrstream"
	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/plugincpi"
	"github.com/lazorkit/wallet-core/wallet"
	"github.com/lazorkit/wallet-core/walleterr"
)

// Context bundles sign's collaborators. It is deliberately separate from
// actions.Context: sign drives CPIs and reads the instructions sysvar,
// neither of which the mutating handlers touch.
type Context struct {
	Accounts hostio.AccountList

	WalletIndex int
	VaultIndex  int

	Args []byte

	Rent         hostio.RentSysvar
	Clock        hostio.ClockSysvar
	Instructions hostio.InstructionsSysvar
	CPI          hostio.CPI
	Config       config.Config

	LogCb   func(format string, args ...any)
	Verbose bool
}

func (c *Context) log(format string, args ...any) {
	if c.LogCb != nil {
		c.LogCb(format, args...)
	}
}

// SignArgs is `authority_id u32 || authority_payload_len u16 ||
// authority_payload[...] || inner_instruction_stream[...]`. The inner
// instruction stream (spec.md §4.G format) doubles as the signed message's
// data_payload.
type SignArgs struct {
	AuthorityID      uint32
	AuthorityPayload []byte
	InstructionData  []byte
}

func parseSignArgs(raw []byte) (SignArgs, error) {
	if len(raw) < 4+2 {
		return SignArgs{}, walleterr.ErrInvalidInstructionData
	}
	a := SignArgs{AuthorityID: binary.LittleEndian.Uint32(raw[0:4])}
	payloadLen := binary.LittleEndian.Uint16(raw[4:6])
	if len(raw) < 6+int(payloadLen) {
		return SignArgs{}, walleterr.ErrInvalidInstructionData
	}
	a.AuthorityPayload = raw[6 : 6+int(payloadLen)]
	a.InstructionData = raw[6+int(payloadLen):]
	return a, nil
}

// Sign is the §4.E state machine: LOAD_WALLET → FIND_AUTHORITY →
// AUTHENTICATE → DECIDE_MODE → (bypass or enforcing per-instruction loop)
// → RENT_CHECK.
func Sign(c *Context) error {
	depth, err := c.Instructions.CallStackDepth()
	if err != nil {
		return walleterr.ErrCpi
	}
	if depth != 1 {
		return walleterr.ErrCpi
	}

	args, err := parseSignArgs(c.Args)
	if err != nil {
		return err
	}

	walletAcct, err := c.Accounts.At(c.WalletIndex)
	if err != nil {
		return err
	}
	vaultAcct, err := c.Accounts.At(c.VaultIndex)
	if err != nil {
		return err
	}
	header, err := layout.ReadHeader(walletAcct.Data)
	if err != nil {
		return err
	}
	if header.Discriminator != layout.WalletDiscriminator {
		return walleterr.ErrInvalidWalletDiscriminator
	}

	target, err := wallet.MustGetAuthority(walletAcct.Data, args.AuthorityID)
	if err != nil {
		return err
	}
	kind := authority.Kind(target.Position.AuthorityType)
	auth, err := authority.Parse(kind, target.Data)
	if err != nil {
		return err
	}

	currentSlot := c.Clock.CurrentSlot()
	currentIndex, err := c.Instructions.CurrentIndex()
	if err != nil {
		return err
	}
	authCtx := authority.AuthContext{
		Accounts:              c.Accounts,
		Instructions:          c.Instructions,
		CurrentSlot:           currentSlot,
		CurrentIndex:          currentIndex,
		Secp256k1PrecompileID: c.Config.Secp256k1PrecompileID,
		Secp256r1PrecompileID: c.Config.Secp256r1PrecompileID,
		ProgramExecWallet:     walletAcct.Key,
		ProgramExecVault:      vaultAcct.Key,
	}

	if kind.IsSession() {
		sessionAuth, ok := auth.(authority.SessionAuthority)
		if !ok {
			return walleterr.ErrInvalidAuthorityType
		}
		if err := sessionAuth.AuthenticateSession(authCtx, args.AuthorityPayload, args.InstructionData, currentSlot); err != nil {
			return err
		}
	} else {
		if err := auth.Authenticate(authCtx, args.AuthorityPayload, args.InstructionData, currentSlot); err != nil {
			return err
		}
	}
	if err := layout.PutBytesAt(walletAcct.Data, target.Offset+layout.PositionLen, auth.Encode()); err != nil {
		return err
	}

	role := target.Position.RolePermission
	var bypass bool
	switch role {
	case layout.RoleAll, layout.RoleAllButManageAuthority:
		bypass = true
	case layout.RoleExecuteOnly:
		bypass = false
	default:
		return walleterr.ErrPermissionDeniedForCategory
	}

	plugins, err := wallet.GetEnabledPlugins(walletAcct.Data, target.PluginRefs)
	if err != nil {
		return err
	}
	if !bypass && len(plugins) == 0 {
		return walleterr.ErrPluginNotFound
	}

	it, err := instrstream.NewIterator(args.InstructionData)
	if err != nil {
		return err
	}

	// protectedIndexes never have their snapshot entry cleared below, even
	// when an inner instruction names them among its own accounts: the
	// wallet account and every enabled plugin's config account must always
	// come out of an invoke unchanged (spec.md §4.E), unlike an inner
	// instruction's ordinary target accounts (e.g. the vault and a transfer
	// recipient), which are expected to change as the instruction's entire
	// point.
	protected := map[int]bool{c.WalletIndex: true}
	for _, p := range plugins {
		if idx, ok := accountIndexByKey(c.Accounts, p.Entry.ConfigAccount); ok {
			protected[idx] = true
		}
	}

	vaultSeeds := hostio.SignerSeeds{Seeds: hostio.VaultSeeds(walletAcct.Key), Bump: header.VaultBump}

	for {
		ix, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		programID, metas, err := instrstream.Resolve(ix, c.Accounts)
		if err != nil {
			return err
		}

		if !bypass {
			if err := c.runPlugins(plugins, args.AuthorityID, target.Data, programID, ix.Data, metas, walletAcct.Key, vaultAcct.Key, vaultSeeds, plugincpi.OpCheckPermission); err != nil {
				return walleterr.ErrPluginRejected
			}
		}

		vaultIsSigner := false
		for _, m := range metas {
			if m.Key == vaultAcct.Key && m.IsSigner {
				vaultIsSigner = true
				break
			}
		}
		if !bypass && vaultIsSigner {
			if !cpiAllowed(c.Config, header.Version, programID) {
				return walleterr.ErrUnauthorizedCpiProgram
			}
		}

		// Snapshot immediately before this invoke, not once for the whole
		// loop: each inner instruction gets its own baseline, and its own
		// declared accounts (ix.ProgramIDIndex / ix.AccountIndexes) are
		// exempted from the post-invoke check since mutating them is the
		// instruction's entire purpose (e.g. vault -> recipient transfer).
		snapshot, err := instrstream.Capture(c.Accounts, nil)
		if err != nil {
			return err
		}
		exemptOwnAccounts(snapshot, ix, protected)

		innerIx := hostio.Instruction{ProgramID: programID, Accounts: metas, Data: ix.Data}
		if err := c.CPI.InvokeSigned(innerIx, c.Accounts, vaultSeeds); err != nil {
			return walleterr.ErrCpi
		}

		if mismatch, err := instrstream.Verify(c.Accounts, snapshot, nil); err != nil {
			return err
		} else if mismatch >= 0 {
			return walleterr.ErrAccountDataModifiedUnexpectedly
		}

		if !bypass {
			if err := c.runPlugins(plugins, args.AuthorityID, target.Data, programID, ix.Data, metas, walletAcct.Key, vaultAcct.Key, vaultSeeds, plugincpi.OpUpdateState); err != nil {
				return walleterr.ErrPluginRejected
			}
		}
	}

	walletAcct, err = c.Accounts.At(c.WalletIndex)
	if err != nil {
		return err
	}
	vaultAcct, err = c.Accounts.At(c.VaultIndex)
	if err != nil {
		return err
	}
	if walletAcct.Lamports < c.Rent.MinimumBalance(len(walletAcct.Data)) {
		return walleterr.ErrInsufficientBalance
	}
	if vaultAcct.Lamports < c.Rent.MinimumBalance(len(vaultAcct.Data)) {
		return walleterr.ErrInsufficientBalance
	}
	return nil
}

// accountIndexByKey returns the outer account-list index of key, if present.
func accountIndexByKey(accounts hostio.AccountList, key [32]byte) (int, bool) {
	for i := 0; i < accounts.Len(); i++ {
		acct, err := accounts.At(i)
		if err != nil {
			return 0, false
		}
		if acct.Key == key {
			return i, true
		}
	}
	return 0, false
}

// exemptOwnAccounts clears snapshot's entries for ix's own program id and
// account indexes, unless the index is protected. Mutating those accounts
// is the inner instruction's entire purpose; mutating a protected one is not.
func exemptOwnAccounts(snapshot [][]byte, ix instrstream.InnerInstruction, protected map[int]bool) {
	if ix.ProgramIDIndex >= 0 && ix.ProgramIDIndex < len(snapshot) && !protected[ix.ProgramIDIndex] {
		snapshot[ix.ProgramIDIndex] = nil
	}
	for _, idx := range ix.AccountIndexes {
		if idx >= 0 && idx < len(snapshot) && !protected[idx] {
			snapshot[idx] = nil
		}
	}
}

// runPlugins drives one opcode (CheckPermission or UpdateState) across
// every enabled plugin in ascending priority, aborting on the first CPI
// failure (spec.md §4.E).
func (c *Context) runPlugins(
	plugins []wallet.PluginRecord,
	authorityID uint32,
	authData []byte,
	programID [32]byte,
	ixData []byte,
	ixAccounts []hostio.AccountMeta,
	walletKey, vaultKey [32]byte,
	seeds hostio.SignerSeeds,
	op plugincpi.Opcode,
) error {
	for _, p := range plugins {
		var payload []byte
		switch op {
		case plugincpi.OpCheckPermission:
			payload = plugincpi.BuildCheckPermission(authorityID, authData, programID, ixData)
		case plugincpi.OpUpdateState:
			payload = plugincpi.BuildUpdateState(ixData)
		}
		accounts := plugincpi.AccountSet(p.Entry.ConfigAccount, walletKey, vaultKey, ixAccounts)
		ix := hostio.Instruction{ProgramID: p.Entry.ProgramID, Accounts: accounts, Data: payload}
		if err := c.CPI.InvokeSigned(ix, c.Accounts, seeds); err != nil {
			c.log("wallet-core: plugin %x rejected opcode %d: %v", p.Entry.ProgramID, op, err)
			return err
		}
	}
	return nil
}
