// SPDX-License-Identifier: Apache-2.0

// Code generated by cmd/wallettablegen from the `// wallet-len:` struct tags
// in this package. DO NOT EDIT.

package authority

// lengthByKind is the per-kind authority_length table of spec.md §3.
var lengthByKind = map[Kind]int{
	KindEd25519:            32,
	KindEd25519Session:     80,
	KindSecp256k1:          40,
	KindSecp256k1Session:   88,
	KindSecp256r1:          40,
	KindSecp256r1Session:   88,
	KindProgramExec:        80,
	KindProgramExecSession: 128,
}
