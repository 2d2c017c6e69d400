package stream

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/Neumenon/nbt/nbt"
)

// Digest is a 32-byte BLAKE3 fingerprint of an NBT root.
type Digest [32]byte

// String returns the lowercase hex form.
func (d Digest) String() string {
	return FormatDigest(d)
}

// fingerprintKey separates NBT fingerprints from other BLAKE3 uses of the
// same bytes. It is the ASCII domain name zero-padded to 32 bytes; changing
// it changes every fingerprint.
var fingerprintKey = [32]byte{
	'n', 'b', 't', '.', 'f', 'i', 'n', 'g', 'e', 'r', 'p', 'r', 'i', 'n', 't',
}

// Fingerprint hashes the canonical encoding of root: compound entries in
// sorted key order, so trees that are nbt.Equal (and carry the same name)
// have the same fingerprint regardless of insertion order.
func Fingerprint(root nbt.NamedTag) (Digest, error) {
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("stream: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	if err := nbt.NewEncoder(hasher, nbt.WithSortedKeys()).Encode(root); err != nil {
		return Digest{}, err
	}
	var d Digest
	copy(d[:], hasher.Sum(nil))
	return d, nil
}

// FormatDigest returns the hex encoding of d.
func FormatDigest(d Digest) string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses a 64-character hex string.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(d) {
		return d, fmt.Errorf("digest is %d bytes, want %d", len(decoded), len(d))
	}
	copy(d[:], decoded)
	return d, nil
}
