package job

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestTemplateMatchesReferenceEncoding(t *testing.T) {
	w := Work{Index: 1360, Message: []byte("KALE")}
	tmpl := NewTemplate(w)

	want := make([]byte, 0, 120)
	want = append(want, 0, 0, 0, 5)
	want = binary.BigEndian.AppendUint64(want, 1360)
	want = append(want, 0, 0, 0, 14, 0, 0, 0, 4)
	want = append(want, 'K', 'A', 'L', 'E')
	want = append(want, 0, 0, 0, 13, 0, 0, 0, 32)
	want = append(want, make([]byte, 32)...)
	want = append(want, 0, 0, 0, 5)
	want = append(want, make([]byte, 8)...)
	want = append(want, 0, 0, 0, 18, 0, 0, 0, 0, 0, 0, 0, 0)
	want = append(want, make([]byte, 32)...)

	if !bytes.Equal(tmpl.Bytes(), want) {
		t.Fatalf("template mismatch\n got: %x\nwant: %x", tmpl.Bytes(), want)
	}
	if tmpl.Len() != 120 {
		t.Fatalf("template len got %d want 120", tmpl.Len())
	}
	if tmpl.NonceOffset() != 68 {
		t.Fatalf("nonce offset got %d want 68", tmpl.NonceOffset())
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	w := Work{Index: 1360, Message: []byte("KALE")}
	for i := range w.PrevHash {
		w.PrevHash[i] = byte(i)
	}
	for i := range w.Miner {
		w.Miner[i] = byte(255 - i)
	}
	tmpl := NewTemplate(w)
	tmpl.PutNonce(0xdeadbeefcafe)

	got, nonce, err := ParseTemplate(tmpl.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if nonce != 0xdeadbeefcafe {
		t.Fatalf("nonce got %#x want %#x", nonce, uint64(0xdeadbeefcafe))
	}
	if got.Index != w.Index {
		t.Fatalf("index got %d want %d", got.Index, w.Index)
	}
	if !bytes.Equal(got.Message, w.Message) {
		t.Fatalf("message got %q want %q", got.Message, w.Message)
	}
	if got.PrevHash != w.PrevHash {
		t.Fatalf("prev hash got %x want %x", got.PrevHash, w.PrevHash)
	}
	if got.Miner != w.Miner {
		t.Fatalf("miner got %x want %x", got.Miner, w.Miner)
	}
}

func TestTemplateVariableMessageLength(t *testing.T) {
	w := Work{Index: 7, Message: []byte("a longer message than usual")}
	tmpl := NewTemplate(w)
	if tmpl.Len() != 68-4+len(w.Message)+8+44 {
		t.Fatalf("template len got %d want %d", tmpl.Len(), 68-4+len(w.Message)+8+44)
	}
	got, _, err := ParseTemplate(tmpl.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !bytes.Equal(got.Message, w.Message) {
		t.Fatalf("message got %q want %q", got.Message, w.Message)
	}
}

func TestTemplateCloneIsIndependent(t *testing.T) {
	tmpl := NewTemplate(Work{Index: 1, Message: []byte("KALE")})
	clone := tmpl.Clone()
	clone.PutNonce(99)
	if tmpl.Nonce() != 0 {
		t.Fatalf("clone write leaked into source template: nonce %d", tmpl.Nonce())
	}
	if clone.Nonce() != 99 {
		t.Fatalf("clone nonce got %d want 99", clone.Nonce())
	}
	if clone.NonceOffset() != tmpl.NonceOffset() {
		t.Fatalf("clone nonce offset got %d want %d", clone.NonceOffset(), tmpl.NonceOffset())
	}
}

func TestParseTemplateRejectsCorruptTags(t *testing.T) {
	tmpl := NewTemplate(Work{Index: 1, Message: []byte("KALE")})

	bad := tmpl.Clone().Bytes()
	bad[3] = 99 // index tag
	if _, _, err := ParseTemplate(bad); err == nil {
		t.Fatalf("expected error for corrupt index tag")
	}

	if _, _, err := ParseTemplate(tmpl.Bytes()[:20]); err == nil {
		t.Fatalf("expected error for truncated buffer")
	}

	long := append(append([]byte{}, tmpl.Bytes()...), 0)
	if _, _, err := ParseTemplate(long); err == nil {
		t.Fatalf("expected error for trailing bytes")
	}
}
