// SPDX-License-Identifier: Apache-2.0

// Package walleterr defines the flat error taxonomy shared by every package
// in wallet-core. Every sentinel here corresponds to one of the error kinds
// enumerated in spec.md §7; handlers surface the first one encountered and
// never recover from it locally.
package walleterr

import "errors"

// Structural errors.
var (
	ErrInvalidAccountsLength     = errors.New("wallet-core: invalid accounts length")
	ErrInvalidWalletDiscriminator = errors.New("wallet-core: invalid wallet discriminator")
	ErrOwnerMismatch             = errors.New("wallet-core: account owner mismatch")
	ErrInvalidSystemProgram      = errors.New("wallet-core: invalid system program account")
	ErrInvalidSeed               = errors.New("wallet-core: invalid PDA seed")
	ErrInvalidAlignment          = errors.New("wallet-core: invalid alignment")
	ErrInvalidAccountData        = errors.New("wallet-core: invalid account data")
)

// Authority errors.
var (
	ErrAuthorityNotFound    = errors.New("wallet-core: authority not found")
	ErrInvalidAuthorityType = errors.New("wallet-core: invalid authority type")
	ErrInvalidAuthorityPayload = errors.New("wallet-core: invalid authority payload")
	ErrDuplicateAuthority   = errors.New("wallet-core: duplicate authority")
	ErrInvalidOperation     = errors.New("wallet-core: invalid operation")
)

// Authentication errors.
var (
	ErrPermissionDenied            = errors.New("wallet-core: permission denied")
	ErrSignatureReused             = errors.New("wallet-core: signature replayed")
	ErrSignatureAgeExceeded        = errors.New("wallet-core: signature age exceeded")
	ErrSignatureInvalid            = errors.New("wallet-core: signature invalid")
	ErrSessionExpired              = errors.New("wallet-core: session expired")
	ErrInvalidSessionDuration       = errors.New("wallet-core: invalid session duration")
	ErrPrecompileInstructionMismatch = errors.New("wallet-core: precompile instruction mismatch")
	ErrMessageHashMismatch          = errors.New("wallet-core: message hash mismatch")
	ErrPubkeyMismatch               = errors.New("wallet-core: public key mismatch")
)

// Permission errors.
var (
	ErrPermissionDeniedForCategory = errors.New("wallet-core: permission denied for category")
	ErrUnauthorizedCpiProgram      = errors.New("wallet-core: unauthorized cpi program")
)

// Plugin errors.
var (
	ErrPluginNotFound      = errors.New("wallet-core: plugin not found")
	ErrPluginRejected      = errors.New("wallet-core: plugin rejected")
	ErrPluginConfigMismatch = errors.New("wallet-core: plugin config mismatch")
)

// Runtime errors.
var (
	ErrInsufficientBalance             = errors.New("wallet-core: insufficient balance")
	ErrAccountDataModifiedUnexpectedly = errors.New("wallet-core: account data modified unexpectedly")
	ErrCpi                             = errors.New("wallet-core: invalid cpi call depth")
)

// Input errors.
var (
	ErrInvalidInstructionData = errors.New("wallet-core: invalid instruction data")
)
