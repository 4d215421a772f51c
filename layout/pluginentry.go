// SPDX-License-Identifier: Apache-2.0

package layout

import "github.com/lazorkit/wallet-core/walleterr"

// PluginEntryLen is the fixed size of a PluginEntry record (spec.md §3).
const PluginEntryLen = 72

// PluginEntry is stored in the wallet's plugin registry.
type PluginEntry struct {
	ProgramID     [32]byte
	ConfigAccount [32]byte
	Enabled       bool
	Priority      uint8
}

// ReadPluginEntry decodes a PluginEntry at offset in buf.
func ReadPluginEntry(buf []byte, offset int) (PluginEntry, error) {
	if offset < 0 || offset+PluginEntryLen > len(buf) {
		return PluginEntry{}, walleterr.ErrInvalidAccountData
	}
	var e PluginEntry
	copy(e.ProgramID[:], buf[offset:offset+32])
	copy(e.ConfigAccount[:], buf[offset+32:offset+64])
	e.Enabled = buf[offset+64] != 0
	e.Priority = buf[offset+65]
	return e, nil
}

// WritePluginEntry encodes e at offset in buf.
func WritePluginEntry(buf []byte, offset int, e PluginEntry) error {
	if offset < 0 || offset+PluginEntryLen > len(buf) {
		return walleterr.ErrInvalidAccountData
	}
	copy(buf[offset:offset+32], e.ProgramID[:])
	copy(buf[offset+32:offset+64], e.ConfigAccount[:])
	if e.Enabled {
		buf[offset+64] = 1
	} else {
		buf[offset+64] = 0
	}
	buf[offset+65] = e.Priority
	for i := 66; i < 72; i++ {
		buf[offset+i] = 0
	}
	return nil
}
