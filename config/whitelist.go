// SPDX-License-Identifier: Apache-2.0

// Package config loads the CPI whitelist and precompile program ids from a
// YAML document (SPEC_FULL.md §A.4), resolving the §9 Open Question that
// these should be configurable rather than hard-coded.
package config

import (
	"encoding/hex"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lazorkit/wallet-core/walleterr"
)

// rawConfig is the YAML document shape. Keys are hex-encoded 32-byte
// program ids, matching the teacher's fixture convention of hex-encoded
// byte strings in YAML test data.
type rawConfig struct {
	Versions map[uint8]struct {
		CPIWhitelist []string `yaml:"cpi_whitelist"`
	} `yaml:"versions"`
	Secp256k1Precompile string `yaml:"secp256k1_precompile"`
	Secp256r1Precompile string `yaml:"secp256r1_precompile"`
}

// Config is the parsed, version-keyed CPI whitelist plus the platform's
// precompile program ids.
type Config struct {
	// CPIWhitelist maps WalletAccount.version to the set of program ids the
	// vault may invoke as a signer (spec.md §4.E, §9 OQ2).
	CPIWhitelist map[uint8]map[[32]byte]bool

	Secp256k1PrecompileID [32]byte
	Secp256r1PrecompileID [32]byte
}

// systemProgramID is the construction-time default whitelist entry
// (spec.md §4.E default: "the system program plus ... a small extensible
// set of token-like programs").
var systemProgramID = [32]byte{}

// Default returns a Config whose only whitelisted program, for every
// version, is the system program id — the stated default before any YAML
// override is loaded.
func Default() Config {
	whitelist := map[[32]byte]bool{systemProgramID: true}
	return Config{
		CPIWhitelist: map[uint8]map[[32]byte]bool{
			0: whitelist,
			1: whitelist,
		},
	}
}

// Load parses a YAML document of the rawConfig shape into a Config,
// starting from Default() and overlaying whatever the document specifies.
func Load(data []byte) (Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("wallet-core: parse cpi whitelist config: %w", err)
	}

	cfg := Default()
	if len(raw.Versions) > 0 {
		cfg.CPIWhitelist = make(map[uint8]map[[32]byte]bool, len(raw.Versions))
	}
	for version, entry := range raw.Versions {
		set := make(map[[32]byte]bool, len(entry.CPIWhitelist)+1)
		set[systemProgramID] = true
		for _, hexID := range entry.CPIWhitelist {
			id, err := decodeHexKey(hexID)
			if err != nil {
				return Config{}, err
			}
			set[id] = true
		}
		cfg.CPIWhitelist[version] = set
	}

	if raw.Secp256k1Precompile != "" {
		id, err := decodeHexKey(raw.Secp256k1Precompile)
		if err != nil {
			return Config{}, err
		}
		cfg.Secp256k1PrecompileID = id
	}
	if raw.Secp256r1Precompile != "" {
		id, err := decodeHexKey(raw.Secp256r1Precompile)
		if err != nil {
			return Config{}, err
		}
		cfg.Secp256r1PrecompileID = id
	}
	return cfg, nil
}

func decodeHexKey(s string) ([32]byte, error) {
	var out [32]byte
	if len(s) != 64 {
		return out, walleterr.ErrInvalidSeed
	}
	if _, err := hex.Decode(out[:], []byte(s)); err != nil {
		return out, walleterr.ErrInvalidSeed
	}
	return out, nil
}

// Allowed reports whether programID is whitelisted for CPI under version.
func (c Config) Allowed(version uint8, programID [32]byte) bool {
	set, ok := c.CPIWhitelist[version]
	if !ok {
		return programID == systemProgramID
	}
	return set[programID]
}
