package job

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/crypto/sha3"
)

// DigestLen is the Keccak-256 output width in bytes.
const DigestLen = 32

// MaxZeros is the highest leading-zero-digit count a digest can show.
const MaxZeros = DigestLen * 2

// HashPreimage computes the legacy Keccak-256 digest of buf. Every call
// starts from a fresh hash state; nothing is streamed across calls.
func HashPreimage(buf []byte) [DigestLen]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(buf)
	var digest [DigestLen]byte
	h.Sum(digest[:0])
	return digest
}

// LeadingZeroNibbles counts the leading zero hex digits of digest. It
// consumes the digest one big-endian 64-bit word at a time and only
// moves to the next word while the current one is entirely zero, which
// gives the same count as a nibble-by-nibble scan without touching
// every byte in the common case.
func LeadingZeroNibbles(digest []byte) int {
	total := 0
	for off := 0; off+8 <= len(digest); off += 8 {
		word := binary.BigEndian.Uint64(digest[off:])
		n := bits.LeadingZeros64(word) / 4
		total += n
		if n < 16 {
			break
		}
	}
	return total
}

// MeetsTarget reports whether digest has at least target leading zero
// hex digits. A digest beating the target still counts as a solution.
func MeetsTarget(digest []byte, target int) bool {
	return LeadingZeroNibbles(digest) >= target
}
