package dupefilehash

import (
	"encoding/hex"
	"fmt"
)

// Digest is the fixed-size fingerprint of a file's full content. Two digests
// are equal iff all bytes match, so a Digest can be used directly as a map key.
type Digest [DigestSize]byte

// String returns the lowercase hex rendering of the digest
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether every byte of the digest is zero
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseDigest parses a hex-encoded digest. The input must be exactly
// 2*DigestSize hex characters.
func ParseDigest(hexString string) (Digest, error) {
	var d Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return d, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != DigestSize {
		return d, fmt.Errorf("digest is %d bytes, want %d", len(decoded), DigestSize)
	}
	copy(d[:], decoded)
	return d, nil
}

// digestFromSum copies a hash.Hash Sum into a Digest
func digestFromSum(sum []byte) (Digest, error) {
	var d Digest
	if len(sum) != DigestSize {
		return d, fmt.Errorf("hash produced %d bytes, want %d", len(sum), DigestSize)
	}
	copy(d[:], sum)
	return d, nil
}
