// SPDX-License-Identifier: Apache-2.0

// Package authority implements the credential variants of spec.md §4.B: a
// tagged union dispatched by authority_type, never a trait-object stored on
// the wire (spec.md §9 design notes). Each variant is parsed fresh from the
// raw authority_data bytes on every call.
package authority

import (
	"encoding/binary"

	"github.com/lazorkit/wallet-core/hostio"
	"github.com/lazorkit/wallet-core/walleterr"
)

// Kind is the authority_type tag stored in a Position record.
type Kind uint16

const (
	KindEd25519            Kind = 0
	KindEd25519Session     Kind = 1
	KindSecp256k1          Kind = 2
	KindSecp256k1Session   Kind = 3
	KindSecp256r1          Kind = 4
	KindSecp256r1Session   Kind = 5
	KindProgramExec        Kind = 6
	KindProgramExecSession Kind = 7
)

// Valid reports whether k is one of the eight recognized kinds.
func (k Kind) Valid() bool {
	return k <= KindProgramExecSession
}

// IsSession reports whether k is a session variant of some root kind.
func (k Kind) IsSession() bool {
	return k%2 == 1
}

// RootKind returns the non-session kind a session kind was derived from
// (create_session's `authority_type changes to t+1`, spec.md §4.C); for a
// non-session kind it returns itself.
func (k Kind) RootKind() Kind {
	if k.IsSession() {
		return k - 1
	}
	return k
}

// SessionKind returns the session variant of a root kind.
func (k Kind) SessionKind() Kind {
	return k + 1
}

// AuthContext bundles the host collaborators authenticate needs: the
// instructions sysvar (for Secp*/ProgramExec precompile/attestation
// inspection) and the current account list (for Ed25519 signer-flag
// lookup).
type AuthContext struct {
	Accounts     hostio.AccountList
	Instructions hostio.InstructionsSysvar
	CurrentSlot  uint64
	CurrentIndex int

	// Secp256k1PrecompileID/Secp256r1PrecompileID are the platform's
	// signature-verify precompile program ids for each curve, injected by
	// the caller (execute.Sign reads them from config) rather than
	// hard-coded, since they are host-deployment specific.
	Secp256k1PrecompileID [32]byte
	Secp256r1PrecompileID [32]byte

	// ProgramExecWallet/ProgramExecVault are the wallet and vault account
	// keys, required to validate a ProgramExec attestation's first two
	// account metas (spec.md §4.B).
	ProgramExecWallet [32]byte
	ProgramExecVault  [32]byte
}

// Authority is the capability set every variant implements (spec.md §4.B):
// `{type_tag, length, is_session, match_data, identity, odometer,
// authenticate, (optionally) authenticate_session, start_session}`.
type Authority interface {
	// TypeTag is this instance's authority_type.
	TypeTag() Kind

	// Length is the byte length of this instance's authority-specific data,
	// matching the §3 per-kind table.
	Length() int

	// MatchData reports whether raw is a syntactically well-formed payload
	// for this kind (correct length, any fixed tag bytes in place). It does
	// not verify cryptographic validity.
	MatchData(raw []byte) bool

	// Identity returns the variant's public identity bytes (public_key, or
	// invoking_program_id for ProgramExec).
	Identity() []byte

	// Odometer returns the stored replay counter, or 0 for variants that
	// don't carry one (Ed25519, ProgramExec).
	Odometer() uint32

	// Authenticate verifies authorityPayload against dataPayload at
	// currentSlot, per the per-kind rules of spec.md §4.B.
	Authenticate(ctx AuthContext, authorityPayload, dataPayload []byte, currentSlot uint64) error

	// Encode serializes this instance back to its raw authority-data bytes,
	// used after Authenticate mutates the odometer.
	Encode() []byte
}

// SessionAuthority is implemented additionally by session variants.
type SessionAuthority interface {
	Authority

	// AuthenticateSession verifies a session-key signature bounded by the
	// stored expiration slot.
	AuthenticateSession(ctx AuthContext, sessionPayload, dataPayload []byte, currentSlot uint64) error

	// StartSession writes (session_key, creation_slot+duration); it fails
	// with ErrInvalidSessionDuration if duration exceeds the variant's max.
	StartSession(sessionKey []byte, currentSlot uint64, duration uint64) error
}

// Parse decodes the authority-specific payload for kind from raw, which
// must already be exactly Length(kind) bytes (the caller reads that many
// bytes using the enclosing Position.AuthorityLength).
func Parse(kind Kind, raw []byte) (Authority, error) {
	switch kind {
	case KindEd25519:
		return parseEd25519(raw)
	case KindEd25519Session:
		return parseEd25519Session(raw)
	case KindSecp256k1:
		return parseSecp256k1(raw)
	case KindSecp256k1Session:
		return parseSecp256k1Session(raw)
	case KindSecp256r1:
		return parseSecp256r1(raw)
	case KindSecp256r1Session:
		return parseSecp256r1Session(raw)
	case KindProgramExec:
		return parseProgramExec(raw)
	case KindProgramExecSession:
		return parseProgramExecSession(raw)
	default:
		return nil, walleterr.ErrInvalidAuthorityType
	}
}

// Length returns the wire length of kind's authority-specific data
// (zz_generated_lengths.go), used by add_authority/create_session to size
// new records without first constructing an instance.
func Length(kind Kind) (int, error) {
	l, ok := lengthByKind[kind]
	if !ok {
		return 0, walleterr.ErrInvalidAuthorityType
	}
	return l, nil
}

// PromoteToSession converts a non-session authority's raw data into its
// session variant's raw data, appending (session_key, max_session_age,
// creation_slot+duration) and, for Secp* roots, re-initializing the
// odometer to zero (spec.md §4.C create_session). rootKind must not
// already be a session kind, and duration must not exceed maxSessionAge.
func PromoteToSession(rootKind Kind, rootData []byte, sessionKey []byte, currentSlot, maxSessionAge, duration uint64) (Kind, []byte, error) {
	if rootKind.IsSession() {
		return 0, nil, walleterr.ErrInvalidOperation
	}
	if duration > maxSessionAge {
		return 0, nil, walleterr.ErrInvalidSessionDuration
	}
	if len(sessionKey) != 32 {
		return 0, nil, walleterr.ErrInvalidAuthorityPayload
	}
	sessionKind := rootKind.SessionKind()
	sessionLen, err := Length(sessionKind)
	if err != nil {
		return 0, nil, err
	}
	rootLen, err := Length(rootKind)
	if err != nil {
		return 0, nil, err
	}
	if len(rootData) != rootLen {
		return 0, nil, walleterr.ErrInvalidAuthorityPayload
	}

	out := make([]byte, sessionLen)
	copy(out, rootData)
	tail := out[rootLen:]
	copy(tail[0:32], sessionKey)
	binary.LittleEndian.PutUint64(tail[32:40], maxSessionAge)
	binary.LittleEndian.PutUint64(tail[40:48], currentSlot+duration)
	if rootKind == KindSecp256k1 || rootKind == KindSecp256r1 {
		binary.LittleEndian.PutUint32(out[36:40], 0)
	}
	return sessionKind, out, nil
}

