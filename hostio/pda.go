// SPDX-License-Identifier: Apache-2.0

package hostio

// PDA derives and validates program-derived addresses. The core never
// computes curve points itself; it asks the host, since PDA derivation is
// tied to the host's program id and bump-search convention (spec.md §6).
type PDA interface {
	// FindProgramAddress derives the canonical (lowest valid bump) address
	// for seeds under programID.
	FindProgramAddress(seeds []Seed, programID [32]byte) (address [32]byte, bump byte, err error)

	// CreateProgramAddress derives the address for seeds||bump without
	// searching, used to re-validate a stored bump (wallet_account,
	// wallet_vault PDAs) cheaply on every call.
	CreateProgramAddress(seeds []Seed, bump byte, programID [32]byte) (address [32]byte, err error)
}

// WalletAccountSeeds builds the `("wallet_account", id)` seed set (spec.md §6).
func WalletAccountSeeds(id [32]byte) []Seed {
	return []Seed{Seed("wallet_account"), Seed(id[:])}
}

// VaultSeeds builds the `("wallet_vault", wallet_account_key)` seed set.
func VaultSeeds(walletAccountKey [32]byte) []Seed {
	return []Seed{Seed("wallet_vault"), Seed(walletAccountKey[:])}
}
