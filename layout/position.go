// SPDX-License-Identifier: Apache-2.0

package layout

import "github.com/lazorkit/wallet-core/walleterr"

// RolePermission is the inline 1-byte capability gate on each authority,
// orthogonal to plugin gating (spec.md §3, GLOSSARY).
type RolePermission uint8

const (
	RoleAll                   RolePermission = 0
	RoleManageAuthority       RolePermission = 1
	RoleAllButManageAuthority RolePermission = 2
	RoleExecuteOnly           RolePermission = 3
)

// PositionLen is the fixed size of a Position record (spec.md §3).
const PositionLen = 16

// Position precedes each authority record. It is always read/written as the
// role-permission-included encoding (spec.md §9 Open Question 1).
type Position struct {
	AuthorityType   uint16
	AuthorityLength uint16
	NumPluginRefs   uint16
	RolePermission  RolePermission
	ID              uint32
	Boundary        uint32
}

// ReadPosition decodes a Position at offset in buf.
func ReadPosition(buf []byte, offset int) (Position, error) {
	if offset < 0 || offset+PositionLen > len(buf) {
		return Position{}, walleterr.ErrInvalidAccountData
	}
	authorityType, _ := Uint16At(buf, offset+0)
	authorityLength, _ := Uint16At(buf, offset+2)
	numPluginRefs, _ := Uint16At(buf, offset+4)
	rolePermission := buf[offset+6]
	// offset+7 is the _pad byte, ignored.
	id, _ := Uint32At(buf, offset+8)
	boundary, _ := Uint32At(buf, offset+12)
	return Position{
		AuthorityType:   authorityType,
		AuthorityLength: authorityLength,
		NumPluginRefs:   numPluginRefs,
		RolePermission:  RolePermission(rolePermission),
		ID:              id,
		Boundary:        boundary,
	}, nil
}

// WritePosition encodes p at offset in buf.
func WritePosition(buf []byte, offset int, p Position) error {
	if offset < 0 || offset+PositionLen > len(buf) {
		return walleterr.ErrInvalidAccountData
	}
	if err := PutUint16At(buf, offset+0, p.AuthorityType); err != nil {
		return err
	}
	if err := PutUint16At(buf, offset+2, p.AuthorityLength); err != nil {
		return err
	}
	if err := PutUint16At(buf, offset+4, p.NumPluginRefs); err != nil {
		return err
	}
	buf[offset+6] = byte(p.RolePermission)
	buf[offset+7] = 0
	if err := PutUint32At(buf, offset+8, p.ID); err != nil {
		return err
	}
	return PutUint32At(buf, offset+12, p.Boundary)
}

// RecordLen is the total byte length of the authority record this Position
// describes: Position || authority_data || plugin_refs[num_plugin_refs].
func (p Position) RecordLen() int {
	return PositionLen + int(p.AuthorityLength) + PluginRefLen*int(p.NumPluginRefs)
}

// PluginRefLen is the fixed size of a PluginRef record (spec.md §3).
const PluginRefLen = 8

// PluginRef is an authority-scoped reference into the wallet's plugin
// registry, with priority and enable flag.
type PluginRef struct {
	PluginIndex uint16
	Priority    uint8
	Enabled     bool
}

// ReadPluginRef decodes a PluginRef at offset in buf.
func ReadPluginRef(buf []byte, offset int) (PluginRef, error) {
	if offset < 0 || offset+PluginRefLen > len(buf) {
		return PluginRef{}, walleterr.ErrInvalidAccountData
	}
	idx, _ := Uint16At(buf, offset)
	priority := buf[offset+2]
	enabled := buf[offset+3] != 0
	return PluginRef{PluginIndex: idx, Priority: priority, Enabled: enabled}, nil
}

// WritePluginRef encodes r at offset in buf.
func WritePluginRef(buf []byte, offset int, r PluginRef) error {
	if offset < 0 || offset+PluginRefLen > len(buf) {
		return walleterr.ErrInvalidAccountData
	}
	if err := PutUint16At(buf, offset, r.PluginIndex); err != nil {
		return err
	}
	buf[offset+2] = r.Priority
	if r.Enabled {
		buf[offset+3] = 1
	} else {
		buf[offset+3] = 0
	}
	buf[offset+4] = 0
	buf[offset+5] = 0
	buf[offset+6] = 0
	buf[offset+7] = 0
	return nil
}
