// SPDX-License-Identifier: Apache-2.0

package walletcore

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/actions"
	"github.com/lazorkit/wallet-core/execute"
	"github.com/lazorkit/wallet-core/hostio"
	"github.com/lazorkit/wallet-core/walleterr"
)

// Dispatcher owns the configuration every instruction handler reads
// (CPI whitelist, precompile ids, log sink) and exposes the single
// Dispatch entry point a host program calls once per instruction.
type Dispatcher struct {
	opts *Options
}

// NewDispatcher builds a Dispatcher from opts, defaulting anything unset.
func NewDispatcher(opts ...Option) *Dispatcher {
	o := defaultOptions()
	for _, apply := range opts {
		apply(o)
	}
	return &Dispatcher{opts: o}
}

// Call bundles everything Dispatch needs from the host beyond the raw
// instruction bytes: the account list, the fixed account slots, and the
// host collaborators the action/execute packages consume through hostio.
type Call struct {
	Accounts hostio.AccountList

	WalletIndex int
	VaultIndex  int
	PayerIndex  int

	ProgramID [32]byte

	Rent         hostio.RentSysvar
	Clock        hostio.ClockSysvar
	PDA          hostio.PDA
	Instructions hostio.InstructionsSysvar
	CPI          hostio.CPI

	Data []byte
}

// Dispatch reads the little-endian discriminator from call.Data and routes
// to the matching action or execute handler (spec.md §6).
func (d *Dispatcher) Dispatch(call Call) error {
	if len(call.Data) < discriminatorHeaderLen {
		return walleterr.ErrInvalidInstructionData
	}
	discriminator := Discriminator(binary.LittleEndian.Uint16(call.Data[0:2]))
	args := call.Data[discriminatorHeaderLen:]

	if discriminator == DiscriminatorSign {
		ctx := &execute.Context{
			Accounts:     call.Accounts,
			WalletIndex:  call.WalletIndex,
			VaultIndex:   call.VaultIndex,
			Args:         args,
			Rent:         call.Rent,
			Clock:        call.Clock,
			Instructions: call.Instructions,
			CPI:          call.CPI,
			Config:       d.opts.Config,
			LogCb:        d.opts.LogCb,
			Verbose:      d.opts.Verbose,
		}
		d.opts.log("wallet-core: dispatch sign")
		return execute.Sign(ctx)
	}

	if discriminator == DiscriminatorCreateWallet {
		ctx := &actions.Context{
			Accounts:    call.Accounts,
			WalletIndex: call.WalletIndex,
			VaultIndex:  call.VaultIndex,
			PayerIndex:  call.PayerIndex,
			Args:        args,
			Rent:        call.Rent,
			Clock:       call.Clock,
			PDA:         call.PDA,
			Config:      d.opts.Config,
			ProgramID:   call.ProgramID,
			LogCb:       d.opts.LogCb,
			Verbose:     d.opts.Verbose,
		}
		d.opts.log("wallet-core: dispatch create_wallet")
		return actions.CreateWallet(ctx)
	}

	ctx := &actions.Context{
		Accounts:    call.Accounts,
		WalletIndex: call.WalletIndex,
		VaultIndex:  call.VaultIndex,
		PayerIndex:  call.PayerIndex,
		Args:        args,
		Rent:        call.Rent,
		Clock:       call.Clock,
		PDA:         call.PDA,
		Config:      d.opts.Config,
		ProgramID:   call.ProgramID,
		LogCb:       d.opts.LogCb,
		Verbose:     d.opts.Verbose,
	}
	host, err := d.buildHost(call)
	if err != nil {
		return err
	}

	switch discriminator {
	case DiscriminatorCreateSession:
		d.opts.log("wallet-core: dispatch create_session")
		return actions.CreateSession(ctx, host)
	case DiscriminatorAddAuthority:
		d.opts.log("wallet-core: dispatch add_authority")
		return actions.AddAuthority(ctx, host)
	case DiscriminatorRemoveAuthority:
		d.opts.log("wallet-core: dispatch remove_authority")
		return actions.RemoveAuthority(ctx, host)
	case DiscriminatorUpdateAuthority:
		d.opts.log("wallet-core: dispatch update_authority")
		return actions.UpdateAuthority(ctx, host)
	case DiscriminatorAddPlugin:
		d.opts.log("wallet-core: dispatch add_plugin")
		return actions.AddPlugin(ctx, host)
	case DiscriminatorRemovePlugin:
		d.opts.log("wallet-core: dispatch remove_plugin")
		return actions.RemovePlugin(ctx, host)
	case DiscriminatorUpdatePlugin:
		d.opts.log("wallet-core: dispatch update_plugin")
		return actions.UpdatePlugin(ctx, host)
	default:
		return walleterr.ErrInvalidOperation
	}
}

// buildHost assembles the actions.Host every authenticating handler needs
// from call's collaborators: the instructions sysvar, the transaction's
// current instruction index, and the wallet/vault keys ProgramExec
// authorities compare their attesting instruction against.
func (d *Dispatcher) buildHost(call Call) (actions.Host, error) {
	walletAcct, err := call.Accounts.At(call.WalletIndex)
	if err != nil {
		return actions.Host{}, err
	}
	vaultAcct, err := call.Accounts.At(call.VaultIndex)
	if err != nil {
		return actions.Host{}, err
	}
	idx, err := call.Instructions.CurrentIndex()
	if err != nil {
		return actions.Host{}, err
	}
	return actions.Host{
		Instructions:          call.Instructions,
		CurrentIndex:          idx,
		Secp256k1PrecompileID: d.opts.Config.Secp256k1PrecompileID,
		Secp256r1PrecompileID: d.opts.Config.Secp256r1PrecompileID,
		ProgramExecWallet:     walletAcct.Key,
		ProgramExecVault:      vaultAcct.Key,
	}, nil
}
