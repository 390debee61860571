// Package didkey encodes and decodes did:key identifiers for Ed25519 keys.
//
// Used at issuer provisioning time to derive a stable DID from the issuer's
// signing key, and by request validation to reject malformed did:key subject
// identifiers before they reach the verification provider.
package didkey

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"
)

const prefix = "did:key:"

// multicodec code for Ed25519 public keys (0xed), varint encoded.
var ed25519Codec = []byte{0xed, 0x01}

// FromPublicKey derives the did:key identifier for an Ed25519 public key.
func FromPublicKey(pub ed25519.PublicKey) (string, error) {
	if len(pub) != ed25519.PublicKeySize {
		return "", fmt.Errorf("invalid ed25519 public key length %d", len(pub))
	}
	payload := make([]byte, 0, len(ed25519Codec)+len(pub))
	payload = append(payload, ed25519Codec...)
	payload = append(payload, pub...)

	encoded, err := multibase.Encode(multibase.Base58BTC, payload)
	if err != nil {
		return "", fmt.Errorf("multibase encode: %w", err)
	}
	return prefix + encoded, nil
}

// PublicKey extracts the Ed25519 public key from a did:key identifier.
func PublicKey(did string) (ed25519.PublicKey, error) {
	suffix, ok := strings.CutPrefix(did, prefix)
	if !ok {
		return nil, fmt.Errorf("not a did:key identifier: %s", did)
	}
	_, payload, err := multibase.Decode(suffix)
	if err != nil {
		return nil, fmt.Errorf("multibase decode: %w", err)
	}
	if len(payload) != len(ed25519Codec)+ed25519.PublicKeySize {
		return nil, fmt.Errorf("unexpected did:key payload length %d", len(payload))
	}
	if payload[0] != ed25519Codec[0] || payload[1] != ed25519Codec[1] {
		return nil, fmt.Errorf("unsupported key codec in did:key %s", did)
	}
	return ed25519.PublicKey(payload[2:]), nil
}
