// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/authority"
	"github.com/lazorkit/wallet-core/hostio"
	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/walleterr"
)

// CreateWalletArgs is the argument block following the discriminator:
// `id[32] || bump u8 || vault_bump u8 || authority_kind u16 ||
// role_permission u8 || authority_data[...]`.
type CreateWalletArgs struct {
	ID             [32]byte
	Bump           byte
	VaultBump      byte
	AuthorityKind  authority.Kind
	RolePermission layout.RolePermission
	AuthorityData  []byte
}

func parseCreateWalletArgs(raw []byte) (CreateWalletArgs, error) {
	if len(raw) < 32+1+1+2+1 {
		return CreateWalletArgs{}, walleterr.ErrInvalidInstructionData
	}
	var a CreateWalletArgs
	copy(a.ID[:], raw[0:32])
	a.Bump = raw[32]
	a.VaultBump = raw[33]
	a.AuthorityKind = authority.Kind(binary.LittleEndian.Uint16(raw[34:36]))
	a.RolePermission = layout.RolePermission(raw[36])
	a.AuthorityData = raw[37:]
	return a, nil
}

// CreateWallet is the only handler that allocates the account (spec.md
// §4.C). It validates both PDAs, funds them to rent-exemption-minimum, and
// writes the header plus a single root authority with id 0.
func CreateWallet(c *Context) error {
	args, err := parseCreateWalletArgs(c.Args)
	if err != nil {
		return err
	}
	if !args.AuthorityKind.Valid() || args.AuthorityKind.IsSession() {
		return walleterr.ErrInvalidAuthorityType
	}
	authLen, err := authority.Length(args.AuthorityKind)
	if err != nil {
		return err
	}
	authorityData, err := buildAuthorityRecord(args.AuthorityKind, args.AuthorityData, authLen)
	if err != nil {
		return err
	}

	walletAcct, err := c.WalletAccount()
	if err != nil {
		return err
	}
	vaultAcct, err := c.VaultAccount()
	if err != nil {
		return err
	}

	walletSeeds := hostio.WalletAccountSeeds(args.ID)
	walletPDA, err := c.PDA.CreateProgramAddress(walletSeeds, args.Bump, c.ProgramID)
	if err != nil || walletPDA != walletAcct.Key {
		return walleterr.ErrInvalidSeed
	}
	vaultSeeds := hostio.VaultSeeds(walletAcct.Key)
	vaultPDA, err := c.PDA.CreateProgramAddress(vaultSeeds, args.VaultBump, c.ProgramID)
	if err != nil || vaultPDA != vaultAcct.Key {
		return walleterr.ErrInvalidSeed
	}

	size := layout.AuthoritiesOffset + alignedAuthoritySize(authLen, 0) + 2
	if err := c.Accounts.Resize(c.WalletIndex, size); err != nil {
		return err
	}
	walletAcct, err = c.WalletAccount()
	if err != nil {
		return err
	}

	header := layout.Header{
		Discriminator: layout.WalletDiscriminator,
		Bump:          args.Bump,
		ID:            args.ID,
		VaultBump:     args.VaultBump,
		Version:       layout.WalletVersion,
	}
	if err := layout.WriteHeader(walletAcct.Data, header); err != nil {
		return err
	}
	if err := layout.SetNumAuthorities(walletAcct.Data, 1); err != nil {
		return err
	}

	pos := layout.Position{
		AuthorityType:   uint16(args.AuthorityKind),
		AuthorityLength: uint16(authLen),
		NumPluginRefs:   0,
		RolePermission:  args.RolePermission,
		ID:              0,
		Boundary:        uint32(layout.AuthoritiesOffset + alignedAuthoritySize(authLen, 0)),
	}
	offset := layout.AuthoritiesOffset
	if err := layout.WritePosition(walletAcct.Data, offset, pos); err != nil {
		return err
	}
	copy(walletAcct.Data[offset+layout.PositionLen:offset+layout.PositionLen+authLen], authorityData)

	numPluginsOffset := int(pos.Boundary)
	if err := layout.PutUint16At(walletAcct.Data, numPluginsOffset, 0); err != nil {
		return err
	}

	walletMin := c.Rent.MinimumBalance(len(walletAcct.Data))
	if walletAcct.Lamports < walletMin {
		payer, err := c.PayerAccount()
		if err != nil {
			return err
		}
		delta := walletMin - walletAcct.Lamports
		if payer.Lamports < delta {
			return walleterr.ErrInsufficientBalance
		}
		payer.Lamports -= delta
		walletAcct.Lamports += delta
	}
	vaultMin := c.Rent.MinimumBalance(len(vaultAcct.Data))
	if vaultAcct.Lamports < vaultMin {
		payer, err := c.PayerAccount()
		if err != nil {
			return err
		}
		delta := vaultMin - vaultAcct.Lamports
		if payer.Lamports < delta {
			return walleterr.ErrInsufficientBalance
		}
		payer.Lamports -= delta
		vaultAcct.Lamports += delta
	}
	return nil
}
