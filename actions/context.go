// SPDX-License-Identifier: Apache-2.0

// Package actions implements the eight wallet account handlers of
// spec.md §4.D: create_wallet, add_authority, remove_authority,
// update_authority, add_plugin, remove_plugin, update_plugin, and
// create_session. sign (§4.E) lives in the execute package since it is a
// state machine over the other seven handlers' shared primitives rather
// than a wallet-account mutator of the same shape.
package actions

import (
	"github.com/lazorkit/wallet-core/authority"
	"github.com/lazorkit/wallet-core/config"
	"github.com/lazorkit/wallet-core/hostio"
	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/wallet"
	"github.com/lazorkit/wallet-core/walleterr"
)

// Context bundles everything a handler needs: the account list, the fixed
// positions of the wallet/vault/payer accounts within it, the raw argument
// bytes that follow the discriminator, and the host collaborators.
type Context struct {
	Accounts hostio.AccountList

	WalletIndex int
	VaultIndex  int
	PayerIndex  int

	Args []byte

	Rent   hostio.RentSysvar
	Clock  hostio.ClockSysvar
	PDA    hostio.PDA
	Config config.Config

	// ProgramID is the core program's own id, used to validate the wallet
	// account and vault PDAs (spec.md §4.C, §6 seed schemes).
	ProgramID [32]byte

	LogCb   func(format string, args ...any)
	Verbose bool
}

func (c *Context) log(format string, args ...any) {
	if c.LogCb != nil {
		c.LogCb(format, args...)
	}
}

// WalletAccount returns the wallet account entry.
func (c *Context) WalletAccount() (*hostio.Account, error) {
	return c.Accounts.At(c.WalletIndex)
}

// VaultAccount returns the vault account entry.
func (c *Context) VaultAccount() (*hostio.Account, error) {
	return c.Accounts.At(c.VaultIndex)
}

// PayerAccount returns the rent payer account entry.
func (c *Context) PayerAccount() (*hostio.Account, error) {
	return c.Accounts.At(c.PayerIndex)
}

// requireDiscriminator validates the wallet account's header (invariant I1)
// and returns its parsed Header.
func requireDiscriminator(buf []byte) (layout.Header, error) {
	h, err := layout.ReadHeader(buf)
	if err != nil {
		return layout.Header{}, err
	}
	if h.Discriminator != layout.WalletDiscriminator {
		return layout.Header{}, walleterr.ErrInvalidWalletDiscriminator
	}
	return h, nil
}

// category classifies an action for the inline role-permission gate
// (spec.md §4.C table).
type category int

const (
	categoryAuthorityManagement category = iota
	categoryPluginManagement
	categoryExecute
)

// requirePermission enforces the inline role-permission gate for cat,
// given the acting authority's stored role_permission.
func requirePermission(cat category, perm layout.RolePermission) error {
	switch cat {
	case categoryAuthorityManagement:
		if perm == layout.RoleAll || perm == layout.RoleManageAuthority {
			return nil
		}
	case categoryPluginManagement:
		if perm == layout.RoleAll {
			return nil
		}
	case categoryExecute:
		if perm == layout.RoleManageAuthority {
			return walleterr.ErrPermissionDeniedForCategory
		}
		return nil
	}
	return walleterr.ErrPermissionDeniedForCategory
}

// resizeAndRebalance resizes the wallet account to newSize and tops up or
// refunds lamports against the rent-exemption minimum of the new size
// (spec.md §4.C step 8), moving the difference to/from the payer.
func resizeAndRebalance(c *Context, newSize int) error {
	if err := c.Accounts.Resize(c.WalletIndex, newSize); err != nil {
		return err
	}
	wallet, err := c.WalletAccount()
	if err != nil {
		return err
	}
	payer, err := c.PayerAccount()
	if err != nil {
		return err
	}
	minBalance := c.Rent.MinimumBalance(newSize)
	if wallet.Lamports < minBalance {
		delta := minBalance - wallet.Lamports
		if payer.Lamports < delta {
			return walleterr.ErrInsufficientBalance
		}
		payer.Lamports -= delta
		wallet.Lamports += delta
	} else if wallet.Lamports > minBalance {
		refund := wallet.Lamports - minBalance
		wallet.Lamports -= refund
		payer.Lamports += refund
	}
	return nil
}

// alignedAuthoritySize returns 8-byte-aligned §4.C `new_authority_size`.
func alignedAuthoritySize(dataLen int, numPluginRefs int) int {
	raw := layout.PositionLen + dataLen + layout.PluginRefLen*numPluginRefs
	return layout.AlignUp8(raw)
}

// findAuthorityOrFail is the §4.C step-4 lookup shared by every handler
// that targets an existing authority by id.
func findAuthorityOrFail(buf []byte, id uint32) (wallet.AuthorityRecord, error) {
	return wallet.MustGetAuthority(buf, id)
}

// Host bundles the host collaborators a handler needs to authenticate the
// acting authority: the instructions sysvar, the transaction's current
// instruction index, the two signature-precompile ids, and the wallet/vault
// keys ProgramExec authorities compare their attesting instruction against.
type Host struct {
	Instructions          hostio.InstructionsSysvar
	CurrentIndex          int
	Secp256k1PrecompileID [32]byte
	Secp256r1PrecompileID [32]byte
	ProgramExecWallet     [32]byte
	ProgramExecVault      [32]byte
}

// authenticateAction resolves the acting authority named by actingID,
// authenticates it against authorityPayload/dataPayload (§4.B), writes back
// its mutated odometer, and returns its stored role_permission for the
// caller's requirePermission gate (spec.md §4.D steps 4-6).
func authenticateAction(c *Context, host Host, actingID uint32, authorityPayload, dataPayload []byte) (layout.RolePermission, error) {
	walletAcct, err := c.WalletAccount()
	if err != nil {
		return 0, err
	}
	target, err := findAuthorityOrFail(walletAcct.Data, actingID)
	if err != nil {
		return 0, err
	}
	kind := authority.Kind(target.Position.AuthorityType)
	auth, err := authority.Parse(kind, target.Data)
	if err != nil {
		return 0, err
	}

	currentSlot := c.Clock.CurrentSlot()
	authCtx := authority.AuthContext{
		Accounts:              c.Accounts,
		Instructions:          host.Instructions,
		CurrentSlot:           currentSlot,
		CurrentIndex:          host.CurrentIndex,
		Secp256k1PrecompileID: host.Secp256k1PrecompileID,
		Secp256r1PrecompileID: host.Secp256r1PrecompileID,
		ProgramExecWallet:     host.ProgramExecWallet,
		ProgramExecVault:      host.ProgramExecVault,
	}
	if kind.IsSession() {
		sessionAuth, ok := auth.(authority.SessionAuthority)
		if !ok {
			return 0, walleterr.ErrInvalidAuthorityType
		}
		if err := sessionAuth.AuthenticateSession(authCtx, authorityPayload, dataPayload, currentSlot); err != nil {
			return 0, err
		}
	} else if err := auth.Authenticate(authCtx, authorityPayload, dataPayload, currentSlot); err != nil {
		return 0, err
	}

	if err := layout.PutBytesAt(walletAcct.Data, target.Offset+layout.PositionLen, auth.Encode()); err != nil {
		return 0, err
	}
	return target.Position.RolePermission, nil
}

// buildAuthorityRecord turns caller-supplied authority data into the exact
// fixed-length record a Position.AuthorityLength expects. For the two
// Secp* root kinds the caller supplies a bare 33- or 64-byte public key
// (spec.md §4.B tie-break rule) rather than the full record: it is
// normalized to compressed form and embedded with a zeroed odometer. Every
// other kind's data is already the full record and is only length-checked.
func buildAuthorityRecord(kind authority.Kind, raw []byte, authLen int) ([]byte, error) {
	switch kind {
	case authority.KindSecp256k1:
		pk, err := authority.NormalizeSecp256k1PubKey(raw)
		if err != nil {
			return nil, err
		}
		out := make([]byte, authLen)
		copy(out[0:33], pk[:])
		return out, nil
	case authority.KindSecp256r1:
		pk, err := authority.NormalizeSecp256r1PubKey(raw)
		if err != nil {
			return nil, err
		}
		out := make([]byte, authLen)
		copy(out[0:33], pk[:])
		return out, nil
	default:
		if len(raw) != authLen {
			return nil, walleterr.ErrInvalidAuthorityPayload
		}
		return raw, nil
	}
}

// rebuildAuthorityRecord is buildAuthorityRecord's update_authority
// counterpart: when raw is a bare tie-break public key for a Secp* kind, the
// existing record's odometer (trailing bytes of current) is preserved
// instead of being zeroed, since a key rotation must not rewind replay
// protection. A full-length raw record (including a caller-chosen odometer)
// is still accepted verbatim, matching the prior behavior.
func rebuildAuthorityRecord(kind authority.Kind, raw []byte, authLen int, current []byte) ([]byte, error) {
	if len(raw) == authLen {
		return raw, nil
	}
	switch kind {
	case authority.KindSecp256k1:
		pk, err := authority.NormalizeSecp256k1PubKey(raw)
		if err != nil {
			return nil, err
		}
		out := append([]byte(nil), current...)
		copy(out[0:33], pk[:])
		return out, nil
	case authority.KindSecp256r1:
		pk, err := authority.NormalizeSecp256r1PubKey(raw)
		if err != nil {
			return nil, err
		}
		out := append([]byte(nil), current...)
		copy(out[0:33], pk[:])
		return out, nil
	default:
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
}
