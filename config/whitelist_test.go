// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"strings"
	"testing"

	. "github.com/lazorkit/wallet-core/config"
)

func TestDefaultWhitelistsSystemProgramOnly(t *testing.T) {
	cfg := Default()
	var systemProgram [32]byte
	if !cfg.Allowed(0, systemProgram) {
		t.Fatal("Default() should allow the system program for version 0")
	}
	if cfg.Allowed(0, [32]byte{1}) {
		t.Fatal("Default() should not allow an arbitrary program")
	}
}

func TestLoadOverlaysWhitelist(t *testing.T) {
	hexID := strings.Repeat("01", 32)
	yamlDoc := []byte("versions:\n  1:\n    cpi_whitelist:\n      - \"" + hexID + "\"\n")

	cfg, err := Load(yamlDoc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var want [32]byte
	for i := range want {
		want[i] = 0x01
	}
	if !cfg.Allowed(1, want) {
		t.Fatal("Load() should whitelist the configured program id for version 1")
	}
	var systemProgram [32]byte
	if !cfg.Allowed(1, systemProgram) {
		t.Fatal("Load() should still implicitly whitelist the system program")
	}
	if cfg.Allowed(0, want) {
		t.Fatal("version 0 should be unaffected by a version-1-only override")
	}
}

func TestLoadParsesPrecompileIDs(t *testing.T) {
	hexID := strings.Repeat("02", 32)
	yamlDoc := []byte("secp256k1_precompile: \"" + hexID + "\"\n")
	cfg, err := Load(yamlDoc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var want [32]byte
	for i := range want {
		want[i] = 0x02
	}
	if cfg.Secp256k1PrecompileID != want {
		t.Fatalf("Secp256k1PrecompileID = %x, want %x", cfg.Secp256k1PrecompileID, want)
	}
}

func TestLoadRejectsMalformedHex(t *testing.T) {
	yamlDoc := []byte("secp256k1_precompile: \"not-hex\"\n")
	if _, err := Load(yamlDoc); err == nil {
		t.Fatal("expected error for a malformed hex precompile id")
	}
}

func TestAllowedUnknownVersionFallsBackToSystemProgram(t *testing.T) {
	cfg := Default()
	var systemProgram [32]byte
	if !cfg.Allowed(99, systemProgram) {
		t.Fatal("an unconfigured version should still allow the system program")
	}
}
