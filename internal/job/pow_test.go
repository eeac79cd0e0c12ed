package job

import (
	"encoding/hex"
	"math/rand"
	"testing"
)

func TestHashPreimageKnownVectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"abc", "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, c := range cases {
		got := HashPreimage([]byte(c.in))
		if hex.EncodeToString(got[:]) != c.want {
			t.Fatalf("keccak256(%q)\n got: %x\nwant: %s", c.in, got, c.want)
		}
	}
}

func TestHashPreimageStateless(t *testing.T) {
	a := HashPreimage([]byte("first"))
	HashPreimage([]byte("interleaved input"))
	b := HashPreimage([]byte("first"))
	if a != b {
		t.Fatalf("hash not deterministic across calls: %x vs %x", a, b)
	}
}

// naiveZeroNibbles is the reference nibble-by-nibble scan the word
// shortcut must agree with.
func naiveZeroNibbles(digest []byte) int {
	count := 0
	for _, b := range digest {
		if b>>4 != 0 {
			return count
		}
		count++
		if b&0x0f != 0 {
			return count
		}
		count++
	}
	return count
}

func TestLeadingZeroNibblesMatchesNaiveScan(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	digest := make([]byte, DigestLen)
	for i := 0; i < 10000; i++ {
		rng.Read(digest)
		// Bias some digests toward long zero runs so the shortcut's
		// word-boundary continuation actually gets exercised.
		zero := rng.Intn(DigestLen + 1)
		for j := 0; j < zero; j++ {
			digest[j] = 0
		}
		want := naiveZeroNibbles(digest)
		if got := LeadingZeroNibbles(digest); got != want {
			t.Fatalf("digest %x: shortcut %d, naive %d", digest, got, want)
		}
		target := rng.Intn(MaxZeros + 1)
		if got, want := MeetsTarget(digest, target), want >= target; got != want {
			t.Fatalf("digest %x target %d: MeetsTarget %v want %v", digest, target, got, want)
		}
	}
}

func TestLeadingZeroNibblesEdges(t *testing.T) {
	allZero := make([]byte, DigestLen)
	if got := LeadingZeroNibbles(allZero); got != MaxZeros {
		t.Fatalf("all-zero digest got %d want %d", got, MaxZeros)
	}

	full := make([]byte, DigestLen)
	full[0] = 0xff
	if got := LeadingZeroNibbles(full); got != 0 {
		t.Fatalf("0xff-leading digest got %d want 0", got)
	}

	half := make([]byte, DigestLen)
	half[0] = 0x0f
	if got := LeadingZeroNibbles(half); got != 1 {
		t.Fatalf("0x0f-leading digest got %d want 1", got)
	}

	// Exactly one full word of zeros, then a nonzero nibble.
	word := make([]byte, DigestLen)
	word[8] = 0x10
	if got := LeadingZeroNibbles(word); got != 16 {
		t.Fatalf("one-word digest got %d want 16", got)
	}

	if !MeetsTarget(full, 0) {
		t.Fatalf("target 0 must accept any digest")
	}
	if MeetsTarget(full, 1) {
		t.Fatalf("target 1 must reject a 0xff-leading digest")
	}
	if !MeetsTarget(allZero, MaxZeros) {
		t.Fatalf("target %d must accept the all-zero digest", MaxZeros)
	}
}
