// SPDX-License-Identifier: Apache-2.0

// Package execute implements the sign pipeline of spec.md §4.E: the
// authenticate → permission-gate → per-instruction plugin/CPI/snapshot loop
// → rent-check state machine that drives a wallet's vault.
package execute

import "github.com/lazorkit/wallet-core/config"

// cpiAllowed enforces the enforcing-mode CPI whitelist (spec.md §4.E): the
// vault may only sign for a program id the version-keyed whitelist
// contains.
func cpiAllowed(cfg config.Config, version uint8, programID [32]byte) bool {
	return cfg.Allowed(version, programID)
}
