// SPDX-License-Identifier: Apache-2.0

// Package wallet implements the wallet account model of spec.md §4.C: the
// packed header + authority list + plugin registry, offset math, and
// lookup helpers. It performs no I/O — resizing and persisting the backing
// buffer is the action handlers' responsibility (spec.md §4.C: "Resize
// helpers are not methods on the wallet").
package wallet

import (
	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/walleterr"
)

// maxPlugins guards get_plugins against a corrupted num_plugins field
// (spec.md §4.C: "rejects a table with num_plugins > 1000 as corrupted").
const maxPlugins = 1000

// AuthorityRecord is a fully located authority: its Position, the raw
// authority-specific payload, its plugin refs, and the absolute offset its
// Position starts at.
type AuthorityRecord struct {
	Offset     int
	Position   layout.Position
	Data       []byte
	PluginRefs []layout.PluginRef
}

// PluginRecord pairs a PluginEntry with its absolute offset and index in
// the registry, since remove_plugin needs the offset and sign needs the
// index to validate PluginRef.PluginIndex bounds.
type PluginRecord struct {
	Index int
	Offset int
	Entry  layout.PluginEntry
}

// NumAuthorities returns the header's num_authorities field.
func NumAuthorities(buf []byte) (uint16, error) {
	return layout.NumAuthorities(buf)
}

// AuthoritiesOffset returns the fixed offset of the first authority record.
func AuthoritiesOffset() int {
	return layout.AuthoritiesOffset
}

// PluginRegistryOffset walks each authority's Position.Boundary for
// num_authorities steps; the final boundary is the offset of num_plugins.
func PluginRegistryOffset(buf []byte) (int, error) {
	n, err := layout.NumAuthorities(buf)
	if err != nil {
		return 0, err
	}
	offset := AuthoritiesOffset()
	for i := uint16(0); i < n; i++ {
		pos, err := layout.ReadPosition(buf, offset)
		if err != nil {
			return 0, err
		}
		offset = int(pos.Boundary)
	}
	return offset, nil
}

// readAuthorityAt decodes the full record (Position, data, plugin refs)
// starting at offset.
func readAuthorityAt(buf []byte, offset int) (AuthorityRecord, error) {
	pos, err := layout.ReadPosition(buf, offset)
	if err != nil {
		return AuthorityRecord{}, err
	}
	dataOffset := offset + layout.PositionLen
	data, err := layout.ReadAt(buf, dataOffset, int(pos.AuthorityLength))
	if err != nil {
		return AuthorityRecord{}, err
	}
	refs := make([]layout.PluginRef, 0, pos.NumPluginRefs)
	refOffset := dataOffset + int(pos.AuthorityLength)
	for i := uint16(0); i < pos.NumPluginRefs; i++ {
		ref, err := layout.ReadPluginRef(buf, refOffset)
		if err != nil {
			return AuthorityRecord{}, err
		}
		refs = append(refs, ref)
		refOffset += layout.PluginRefLen
	}
	return AuthorityRecord{Offset: offset, Position: pos, Data: data, PluginRefs: refs}, nil
}

// GetAuthority returns the authority whose Position.ID matches id, or
// (_, false, nil) if none matches. A non-nil error indicates corrupted
// wire data, not a missing id.
func GetAuthority(buf []byte, id uint32) (AuthorityRecord, bool, error) {
	n, err := layout.NumAuthorities(buf)
	if err != nil {
		return AuthorityRecord{}, false, err
	}
	offset := AuthoritiesOffset()
	for i := uint16(0); i < n; i++ {
		rec, err := readAuthorityAt(buf, offset)
		if err != nil {
			return AuthorityRecord{}, false, err
		}
		if rec.Position.ID == id {
			return rec, true, nil
		}
		offset = int(rec.Position.Boundary)
	}
	return AuthorityRecord{}, false, nil
}

// MustGetAuthority is GetAuthority with the "absent" case folded into
// walleterr.ErrAuthorityNotFound, matching the action handlers' step 4.
func MustGetAuthority(buf []byte, id uint32) (AuthorityRecord, error) {
	rec, ok, err := GetAuthority(buf, id)
	if err != nil {
		return AuthorityRecord{}, err
	}
	if !ok {
		return AuthorityRecord{}, walleterr.ErrAuthorityNotFound
	}
	return rec, nil
}

// ListAuthorities returns every authority record in wire order.
func ListAuthorities(buf []byte) ([]AuthorityRecord, error) {
	n, err := layout.NumAuthorities(buf)
	if err != nil {
		return nil, err
	}
	out := make([]AuthorityRecord, 0, n)
	offset := AuthoritiesOffset()
	for i := uint16(0); i < n; i++ {
		rec, err := readAuthorityAt(buf, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
		offset = int(rec.Position.Boundary)
	}
	return out, nil
}

// LastAuthority returns the final authority in wire order, used by
// add_authority to derive the next id.
func LastAuthority(buf []byte) (AuthorityRecord, error) {
	recs, err := ListAuthorities(buf)
	if err != nil {
		return AuthorityRecord{}, err
	}
	if len(recs) == 0 {
		return AuthorityRecord{}, walleterr.ErrAuthorityNotFound
	}
	return recs[len(recs)-1], nil
}

// GetPlugins returns the parsed plugin table in registry (insertion) order.
// A table claiming more than maxPlugins entries is treated as corrupted and
// an empty table is returned, per spec.md §4.C.
func GetPlugins(buf []byte) ([]PluginRecord, error) {
	regOffset, err := PluginRegistryOffset(buf)
	if err != nil {
		return nil, err
	}
	numPlugins, err := layout.Uint16At(buf, regOffset)
	if err != nil {
		return nil, err
	}
	if numPlugins > maxPlugins {
		return nil, nil
	}
	out := make([]PluginRecord, 0, numPlugins)
	offset := regOffset + 2
	for i := uint16(0); i < numPlugins; i++ {
		entry, err := layout.ReadPluginEntry(buf, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, PluginRecord{Index: int(i), Offset: offset, Entry: entry})
		offset += layout.PluginEntryLen
	}
	return out, nil
}

// NumPlugins returns the plugin registry's num_plugins field.
func NumPlugins(buf []byte) (uint16, error) {
	regOffset, err := PluginRegistryOffset(buf)
	if err != nil {
		return 0, err
	}
	return layout.Uint16At(buf, regOffset)
}

