package job

import (
	"encoding/binary"
	"fmt"
)

// ScVal type tags for the fields of the KALE farming contract's hash
// preimage. The preimage is the XDR encoding of the work invocation
// tuple (index, message, previous hash, nonce, farmer address), so the
// tag bytes have to match the contract exactly.
const (
	scvU64     = 5
	scvBytes   = 13
	scvString  = 14
	scvAddress = 18
)

const (
	// HashLen is the width of block hashes and farmer account keys.
	HashLen = 32
	// NonceLen is the width of the nonce slot in the preimage.
	NonceLen = 8
)

// Work is one fully validated unit of mining work. The CLI layer is
// responsible for decoding and size-checking every field before a Work
// is built; nothing below this point validates inputs.
type Work struct {
	Index    uint64
	Message  []byte
	PrevHash [HashLen]byte
	Miner    [HashLen]byte
	Target   int // required leading zero hex digits in the digest
}

// Template is the preimage buffer for one work unit. Everything except
// the 8-byte nonce slot is fixed at construction, and the slot offset
// never changes afterwards. A Template must not be shared across
// goroutines: each worker hashes its own Clone.
type Template struct {
	buf      []byte
	nonceOff int
}

// NewTemplate encodes w into a preimage template and records the nonce
// slot offset.
func NewTemplate(w Work) *Template {
	buf := make([]byte, 0, 76+len(w.Message)+NonceLen+2*HashLen)

	buf = binary.BigEndian.AppendUint32(buf, scvU64)
	buf = binary.BigEndian.AppendUint64(buf, w.Index)

	buf = binary.BigEndian.AppendUint32(buf, scvString)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(w.Message)))
	buf = append(buf, w.Message...)

	buf = binary.BigEndian.AppendUint32(buf, scvBytes)
	buf = binary.BigEndian.AppendUint32(buf, HashLen)
	buf = append(buf, w.PrevHash[:]...)

	buf = binary.BigEndian.AppendUint32(buf, scvU64)
	nonceOff := len(buf)
	buf = append(buf, make([]byte, NonceLen)...)

	buf = binary.BigEndian.AppendUint32(buf, scvAddress)
	buf = binary.BigEndian.AppendUint32(buf, 0) // SC_ADDRESS_TYPE_ACCOUNT
	buf = binary.BigEndian.AppendUint32(buf, 0) // PUBLIC_KEY_TYPE_ED25519
	buf = append(buf, w.Miner[:]...)

	return &Template{buf: buf, nonceOff: nonceOff}
}

// Bytes returns the full preimage, including the current nonce slot
// contents. The slice aliases the template's buffer.
func (t *Template) Bytes() []byte { return t.buf }

// Len returns the preimage length in bytes.
func (t *Template) Len() int { return len(t.buf) }

// NonceOffset returns the byte offset of the nonce slot.
func (t *Template) NonceOffset() int { return t.nonceOff }

// PutNonce overwrites the nonce slot with n, big-endian.
func (t *Template) PutNonce(n uint64) {
	binary.BigEndian.PutUint64(t.buf[t.nonceOff:], n)
}

// Nonce reads back the nonce currently in the slot.
func (t *Template) Nonce() uint64 {
	return binary.BigEndian.Uint64(t.buf[t.nonceOff:])
}

// Clone returns an independent copy of the template for exclusive use
// by one worker.
func (t *Template) Clone() *Template {
	buf := make([]byte, len(t.buf))
	copy(buf, t.buf)
	return &Template{buf: buf, nonceOff: t.nonceOff}
}

// ParseTemplate walks the tag structure of an encoded preimage and
// recovers the work fields and the nonce currently in the slot. Target
// is not part of the preimage and is left zero.
func ParseTemplate(buf []byte) (Work, uint64, error) {
	var w Work
	c := cursor{buf: buf}

	if err := c.expectU32("index tag", scvU64); err != nil {
		return w, 0, err
	}
	index, err := c.u64("index")
	if err != nil {
		return w, 0, err
	}
	w.Index = index

	if err := c.expectU32("message tag", scvString); err != nil {
		return w, 0, err
	}
	msgLen, err := c.u32("message length")
	if err != nil {
		return w, 0, err
	}
	msg, err := c.bytes("message", int(msgLen))
	if err != nil {
		return w, 0, err
	}
	w.Message = msg

	if err := c.expectU32("prev hash tag", scvBytes); err != nil {
		return w, 0, err
	}
	if err := c.expectU32("prev hash length", HashLen); err != nil {
		return w, 0, err
	}
	prev, err := c.bytes("prev hash", HashLen)
	if err != nil {
		return w, 0, err
	}
	copy(w.PrevHash[:], prev)

	if err := c.expectU32("nonce tag", scvU64); err != nil {
		return w, 0, err
	}
	nonce, err := c.u64("nonce")
	if err != nil {
		return w, 0, err
	}

	if err := c.expectU32("miner tag", scvAddress); err != nil {
		return w, 0, err
	}
	if err := c.expectU32("miner address type", 0); err != nil {
		return w, 0, err
	}
	if err := c.expectU32("miner key type", 0); err != nil {
		return w, 0, err
	}
	miner, err := c.bytes("miner", HashLen)
	if err != nil {
		return w, 0, err
	}
	copy(w.Miner[:], miner)

	if c.off != len(buf) {
		return w, 0, fmt.Errorf("trailing bytes after miner field: %d", len(buf)-c.off)
	}
	return w, nonce, nil
}

type cursor struct {
	buf []byte
	off int
}

func (c *cursor) bytes(field string, n int) ([]byte, error) {
	if c.off+n > len(c.buf) {
		return nil, fmt.Errorf("%s: truncated at offset %d", field, c.off)
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) u32(field string) (uint32, error) {
	b, err := c.bytes(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *cursor) u64(field string) (uint64, error) {
	b, err := c.bytes(field, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (c *cursor) expectU32(field string, want uint32) error {
	got, err := c.u32(field)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s: got %d want %d", field, got, want)
	}
	return nil
}
