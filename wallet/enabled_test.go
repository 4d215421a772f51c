// SPDX-License-Identifier: Apache-2.0

package wallet_test

import (
	"testing"

	"github.com/lazorkit/wallet-core/layout"
	. "github.com/lazorkit/wallet-core/wallet"
)

func TestGetEnabledPluginsOrdersByPriority(t *testing.T) {
	buf := buildWalletBuffer(t, []authoritySpec{{id: 1, authLen: 32}})
	regOffset, err := PluginRegistryOffset(buf)
	if err != nil {
		t.Fatalf("PluginRegistryOffset: %v", err)
	}
	buf = addPluginEntries(t, buf, regOffset, []layout.PluginEntry{
		{ProgramID: [32]byte{1}, Enabled: true}, // index 0
		{ProgramID: [32]byte{2}, Enabled: true}, // index 1
		{ProgramID: [32]byte{3}, Enabled: true}, // index 2
	})
	refs := []layout.PluginRef{
		{PluginIndex: 0, Priority: 20, Enabled: true},
		{PluginIndex: 1, Priority: 10, Enabled: true},
		{PluginIndex: 2, Priority: 10, Enabled: true},
	}
	enabled, err := GetEnabledPlugins(buf, refs)
	if err != nil {
		t.Fatalf("GetEnabledPlugins: %v", err)
	}
	if len(enabled) != 3 {
		t.Fatalf("GetEnabledPlugins returned %d entries, want 3", len(enabled))
	}
	// priority 10 entries (index 1, then 2, insertion order) come before priority 20 (index 0).
	if enabled[0].Index != 1 || enabled[1].Index != 2 || enabled[2].Index != 0 {
		t.Fatalf("GetEnabledPlugins order = %d, %d, %d", enabled[0].Index, enabled[1].Index, enabled[2].Index)
	}
}

func TestGetEnabledPluginsSkipsDisabledRef(t *testing.T) {
	buf := buildWalletBuffer(t, []authoritySpec{{id: 1, authLen: 32}})
	regOffset, err := PluginRegistryOffset(buf)
	if err != nil {
		t.Fatalf("PluginRegistryOffset: %v", err)
	}
	buf = addPluginEntries(t, buf, regOffset, []layout.PluginEntry{
		{ProgramID: [32]byte{1}, Enabled: true},
	})
	refs := []layout.PluginRef{{PluginIndex: 0, Priority: 1, Enabled: false}}
	enabled, err := GetEnabledPlugins(buf, refs)
	if err != nil {
		t.Fatalf("GetEnabledPlugins: %v", err)
	}
	if len(enabled) != 0 {
		t.Fatalf("GetEnabledPlugins returned %d entries, want 0", len(enabled))
	}
}

func TestGetEnabledPluginsSkipsDisabledEntry(t *testing.T) {
	buf := buildWalletBuffer(t, []authoritySpec{{id: 1, authLen: 32}})
	regOffset, err := PluginRegistryOffset(buf)
	if err != nil {
		t.Fatalf("PluginRegistryOffset: %v", err)
	}
	buf = addPluginEntries(t, buf, regOffset, []layout.PluginEntry{
		{ProgramID: [32]byte{1}, Enabled: false},
	})
	refs := []layout.PluginRef{{PluginIndex: 0, Priority: 1, Enabled: true}}
	enabled, err := GetEnabledPlugins(buf, refs)
	if err != nil {
		t.Fatalf("GetEnabledPlugins: %v", err)
	}
	if len(enabled) != 0 {
		t.Fatalf("GetEnabledPlugins returned %d entries, want 0 since the registry entry is disabled", len(enabled))
	}
}

func TestGetEnabledPluginsRejectsOutOfRangeIndex(t *testing.T) {
	buf := buildWalletBuffer(t, []authoritySpec{{id: 1, authLen: 32}})
	refs := []layout.PluginRef{{PluginIndex: 5, Priority: 1, Enabled: true}}
	if _, err := GetEnabledPlugins(buf, refs); err == nil {
		t.Fatal("expected ErrPluginNotFound for an out-of-range plugin index")
	}
}
