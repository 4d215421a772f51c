// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"

	"github.com/lazorkit/wallet-core/walleterr"
)

// webauthnAuthDataMaxSize bounds the raw authenticator data the payload may
// carry, mirroring the precompile's fixed message buffer.
const webauthnAuthDataMaxSize = 196

// webAuthnField tags one entry of a client-data-JSON field_order descriptor.
type webAuthnField uint8

const (
	webAuthnFieldNone webAuthnField = iota
	webAuthnFieldType
	webAuthnFieldChallenge
	webAuthnFieldOrigin
	webAuthnFieldCrossOrigin
)

// webAuthnMessage parses the WebAuthn wrapper framing described in
// SPEC_FULL.md §C — `auth_type(2) || auth_data_len(2) || auth_data ||
// field_order(4) || origin_len(2) || huffman_tree_len(2) ||
// huffman_encoded_len(2) || huffman_tree || huffman_encoded_origin`, where
// auth_type is the tail discriminator itself — reconstructs the
// canonical client-data JSON with the computed hash base64url-encoded as
// the challenge, and returns `authenticator_data || sha256(client_data_json)`
// as the message the precompile is expected to have signed.
func webAuthnMessage(payload []byte, computedHash [32]byte) ([]byte, error) {
	if len(payload) < 6 {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	authLen := int(binary.LittleEndian.Uint16(payload[2:4]))
	if authLen >= webauthnAuthDataMaxSize {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	if len(payload) < 4+authLen+4 {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	authData := payload[4 : 4+authLen]
	offset := 4 + authLen

	fieldOrder := payload[offset : offset+4]
	offset += 4

	if len(payload) < offset+2 {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	originLen := int(binary.LittleEndian.Uint16(payload[offset : offset+2]))
	offset += 2

	if len(payload) < offset+2 {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	huffmanTreeLen := int(binary.LittleEndian.Uint16(payload[offset : offset+2]))
	offset += 2

	if len(payload) < offset+2 {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	huffmanEncodedLen := int(binary.LittleEndian.Uint16(payload[offset : offset+2]))
	offset += 2

	if len(payload) < offset+huffmanTreeLen+huffmanEncodedLen {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	huffmanTree := payload[offset : offset+huffmanTreeLen]
	huffmanEncoded := payload[offset+huffmanTreeLen : offset+huffmanTreeLen+huffmanEncodedLen]

	origin, err := decodeHuffmanOrigin(huffmanTree, huffmanEncoded, originLen)
	if err != nil {
		return nil, err
	}

	clientDataJSON := reconstructClientDataJSON(fieldOrder, origin, computedHash[:])
	clientDataHash := sha256.Sum256(clientDataJSON)

	message := make([]byte, authLen+32)
	copy(message[:authLen], authData)
	copy(message[authLen:], clientDataHash[:])
	return message, nil
}

// huffmanNodeSize is the 3-byte-per-node tree encoding: `node_type,
// left_or_char, right`.
const huffmanNodeSize = 3
const huffmanLeafNode = 0

// decodeHuffmanOrigin walks tree_data bit-by-bit from encoded_data, starting
// at the root (the last node), emitting one byte per leaf reached, until
// decodedLen bytes are produced.
func decodeHuffmanOrigin(treeData, encodedData []byte, decodedLen int) ([]byte, error) {
	if len(treeData) == 0 || len(treeData)%huffmanNodeSize != 0 {
		return nil, walleterr.ErrInvalidAuthorityPayload
	}
	nodeCount := len(treeData) / huffmanNodeSize
	rootIndex := nodeCount - 1
	current := rootIndex
	decoded := make([]byte, 0, decodedLen)

	for _, b := range encodedData {
		for bitPos := 0; bitPos < 8; bitPos++ {
			if len(decoded) == decodedLen {
				return decoded, nil
			}
			bit := b&(0x80>>uint(bitPos)) != 0

			nodeOffset := current * huffmanNodeSize
			if treeData[nodeOffset] == huffmanLeafNode {
				return nil, walleterr.ErrInvalidAuthorityPayload
			}
			leftOrChar := treeData[nodeOffset+1]
			right := treeData[nodeOffset+2]
			if bit {
				current = int(right)
			} else {
				current = int(leftOrChar)
			}
			if current >= nodeCount {
				return nil, walleterr.ErrInvalidAuthorityPayload
			}

			nextOffset := current * huffmanNodeSize
			if treeData[nextOffset] == huffmanLeafNode {
				decoded = append(decoded, treeData[nextOffset+1])
				current = rootIndex
			}
		}
	}
	return decoded, nil
}

// base64URLNoPad encodes data with the standard base64url alphabet and no
// padding, matching the platform's challenge encoding.
func base64URLNoPad(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// reconstructClientDataJSON emits the fields named by fieldOrder, in order,
// joined into one flat JSON object — the same shape a WebAuthn
// `clientDataJSON` blob takes, reduced to exactly the fields the wallet
// needs to verify.
func reconstructClientDataJSON(fieldOrder, origin, challenge []byte) []byte {
	challengeB64 := base64URLNoPad(challenge)
	var fields []string
	for _, key := range fieldOrder {
		switch webAuthnField(key) {
		case webAuthnFieldNone:
		case webAuthnFieldChallenge:
			fields = append(fields, `"challenge":"`+challengeB64+`"`)
		case webAuthnFieldType:
			fields = append(fields, `"type":"webauthn.get"`)
		case webAuthnFieldOrigin:
			fields = append(fields, `"origin":"`+string(origin)+`"`)
		case webAuthnFieldCrossOrigin:
			fields = append(fields, `"crossOrigin":false`)
		}
	}
	out := "{"
	for i, f := range fields {
		if i > 0 {
			out += ","
		}
		out += f
	}
	out += "}"
	return []byte(out)
}
