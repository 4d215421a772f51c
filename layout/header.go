// SPDX-License-Identifier: Apache-2.0

package layout

import "github.com/lazorkit/wallet-core/walleterr"

// WalletDiscriminator is the tag byte identifying a WalletAccount at offset 0.
const WalletDiscriminator byte = 1

// WalletVersion is the only account-layout version this implementation
// understands.
const WalletVersion byte = 1

// HeaderLen is the size of the fixed wallet header, discriminator through
// reserved (spec.md §3): 1+1+32+1+1+4 = 40 bytes.
const HeaderLen = 40

// Header is the fixed prefix of a WalletAccount.
type Header struct {
	Discriminator byte
	Bump          byte
	ID            [32]byte
	VaultBump     byte
	Version       byte
}

// ReadHeader decodes the fixed header from buf.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderLen {
		return Header{}, walleterr.ErrInvalidAccountData
	}
	var h Header
	h.Discriminator = buf[0]
	h.Bump = buf[1]
	copy(h.ID[:], buf[2:34])
	h.VaultBump = buf[34]
	h.Version = buf[35]
	return h, nil
}

// WriteHeader encodes h into buf, zeroing the reserved field.
func WriteHeader(buf []byte, h Header) error {
	if len(buf) < HeaderLen {
		return walleterr.ErrInvalidAccountData
	}
	buf[0] = h.Discriminator
	buf[1] = h.Bump
	copy(buf[2:34], h.ID[:])
	buf[34] = h.VaultBump
	buf[35] = h.Version
	buf[36], buf[37], buf[38], buf[39] = 0, 0, 0, 0
	return nil
}

// NumAuthorities reads the num_authorities field at offset 40.
func NumAuthorities(buf []byte) (uint16, error) {
	return Uint16At(buf, HeaderLen)
}

// SetNumAuthorities writes the num_authorities field at offset 40.
func SetNumAuthorities(buf []byte, n uint16) error {
	return PutUint16At(buf, HeaderLen, n)
}

// AuthoritiesOffset is the fixed start of the authority list: the header
// plus the 2-byte num_authorities field.
const AuthoritiesOffset = HeaderLen + 2
