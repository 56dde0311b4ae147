// Package codec decodes image payloads and computes their content fingerprints.
package codec

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// FingerprintSize is the length of a fingerprint in bytes.
const FingerprintSize = sha256.Size

// ErrInvalidEncoding is returned for payloads that are empty or not valid base64.
var ErrInvalidEncoding = errors.New("invalid base64 payload")

// Fingerprint is the SHA-256 digest of an image's raw bytes.
// Fingerprints are compared for equality only.
type Fingerprint [FingerprintSize]byte

// Bytes returns the digest as a slice for persistence.
func (f Fingerprint) Bytes() []byte {
	out := make([]byte, FingerprintSize)
	copy(out, f[:])
	return out
}

// String returns the lowercase hex form of the digest.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// FingerprintFromBytes rebuilds a fingerprint read back from storage.
func FingerprintFromBytes(b []byte) (Fingerprint, error) {
	var f Fingerprint
	if len(b) != FingerprintSize {
		return f, fmt.Errorf("fingerprint must be %d bytes, got %d", FingerprintSize, len(b))
	}
	copy(f[:], b)
	return f, nil
}

// FingerprintFromHex parses the form produced by String.
func FingerprintFromHex(s string) (Fingerprint, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("decode fingerprint: %w", err)
	}
	return FingerprintFromBytes(raw)
}

// Compute returns the fingerprint of raw.
func Compute(raw []byte) Fingerprint {
	return sha256.Sum256(raw)
}

var whitespace = strings.NewReplacer(" ", "", "\t", "", "\r", "", "\n", "")

// Decode decodes standard padded base64. Spaces, tabs and line breaks
// inside the payload are ignored.
func Decode(encoded string) ([]byte, error) {
	compact := whitespace.Replace(encoded)
	if compact == "" {
		return nil, ErrInvalidEncoding
	}
	raw, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return raw, nil
}

// Encode is the inverse of Decode.
func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}
