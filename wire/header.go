package wire

import "encoding/binary"

// Identifier types threaded through the envelope. All are opaque to this
// layer: the service owns their meaning.
type (
	// KeyID names a key held by the service.
	KeyID uint32

	// Algorithm selects an algorithm within an operation family.
	Algorithm uint32

	// Handle is the continuation token correlating the calls of one
	// streaming operation. Zero means "no operation bound". It is not a
	// pointer and has no structure; it is only ever copied between a
	// reply and the next request.
	Handle uint32

	// Step tags a key-derivation input (salt, secret, info, ...).
	Step uint32

	// KeyType, Lifetime and Usage populate KeyAttributes. The named
	// Lifetime values are the only two this layer ships; key types and
	// usage semantics are defined by the service.
	KeyType  uint32
	Lifetime uint32
	Usage    uint32
)

const (
	LifetimeVolatile   Lifetime = 0
	LifetimePersistent Lifetime = 1
)

// Usage flags, combinable with bitwise or.
const (
	UsageExport Usage = 1 << iota
	UsageCopy
	UsageEncrypt
	UsageDecrypt
	UsageSignMessage
	UsageVerifyMessage
	UsageSignHash
	UsageVerifyHash
	UsageDerive
)

// MaxInline is the capacity of the header's inline buffer (used for AEAD
// nonces on whole-message calls). Longer values are rejected locally,
// never truncated.
const MaxInline = 16

// HeaderSize is the encoded size of a Header in bytes.
const HeaderSize = 4*5 + 4*2 + MaxInline + 4

// Header is the fixed-shape request envelope sent as the first input
// descriptor of every call. All fields are present regardless of
// selector so the header always encodes to exactly HeaderSize bytes.
type Header struct {
	Selector Selector
	KeyID    KeyID
	Alg      Algorithm
	Handle   Handle
	Step     Step
	Len      [2]uint32

	InlineLen uint32
	Inline    [MaxInline]byte
}

// SetInline copies b into the header's inline buffer. Values longer than
// MaxInline are rejected before any byte is copied.
func (h *Header) SetInline(b []byte) error {
	if len(b) > MaxInline {
		return ErrInvalidArgument
	}
	copy(h.Inline[:], b)
	h.InlineLen = uint32(len(b))
	return nil
}

// InlineBytes returns the populated prefix of the inline buffer.
func (h *Header) InlineBytes() []byte {
	n := h.InlineLen
	if n > MaxInline {
		n = MaxInline
	}
	return h.Inline[:n]
}

// Encode serializes the header to its fixed little-endian layout.
func (h *Header) Encode() []byte {
	b := make([]byte, HeaderSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:], uint32(h.Selector))
	le.PutUint32(b[4:], uint32(h.KeyID))
	le.PutUint32(b[8:], uint32(h.Alg))
	le.PutUint32(b[12:], uint32(h.Handle))
	le.PutUint32(b[16:], uint32(h.Step))
	le.PutUint32(b[20:], h.Len[0])
	le.PutUint32(b[24:], h.Len[1])
	copy(b[28:28+MaxInline], h.Inline[:])
	le.PutUint32(b[28+MaxInline:], h.InlineLen)
	return b
}

// DecodeHeader parses a fixed-layout header. The inline length is
// validated against MaxInline so a malformed peer cannot smuggle an
// out-of-range count.
func DecodeHeader(b []byte) (Header, error) {
	var h Header
	if len(b) != HeaderSize {
		return h, ErrInvalidArgument
	}
	le := binary.LittleEndian
	h.Selector = Selector(le.Uint32(b[0:]))
	h.KeyID = KeyID(le.Uint32(b[4:]))
	h.Alg = Algorithm(le.Uint32(b[8:]))
	h.Handle = Handle(le.Uint32(b[12:]))
	h.Step = Step(le.Uint32(b[16:]))
	h.Len[0] = le.Uint32(b[20:])
	h.Len[1] = le.Uint32(b[24:])
	copy(h.Inline[:], b[28:28+MaxInline])
	h.InlineLen = le.Uint32(b[28+MaxInline:])
	if h.InlineLen > MaxInline {
		return Header{}, ErrInvalidArgument
	}
	return h, nil
}

// KeyAttributesSize is the encoded size of KeyAttributes in bytes.
const KeyAttributesSize = 24

// KeyAttributes is the key metadata blob passed as a data descriptor on
// key-management calls, mirroring the service's attribute struct
// byte-for-byte.
type KeyAttributes struct {
	Type     KeyType
	Bits     uint32
	Lifetime Lifetime
	Usage    Usage
	Alg      Algorithm
	ID       KeyID
}

// Encode serializes the attributes to their fixed little-endian layout.
func (a *KeyAttributes) Encode() []byte {
	b := make([]byte, KeyAttributesSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:], uint32(a.Type))
	le.PutUint32(b[4:], a.Bits)
	le.PutUint32(b[8:], uint32(a.Lifetime))
	le.PutUint32(b[12:], uint32(a.Usage))
	le.PutUint32(b[16:], uint32(a.Alg))
	le.PutUint32(b[20:], uint32(a.ID))
	return b
}

// DecodeKeyAttributes parses an attributes blob.
func DecodeKeyAttributes(b []byte) (KeyAttributes, error) {
	var a KeyAttributes
	if len(b) != KeyAttributesSize {
		return a, ErrInvalidArgument
	}
	le := binary.LittleEndian
	a.Type = KeyType(le.Uint32(b[0:]))
	a.Bits = le.Uint32(b[4:])
	a.Lifetime = Lifetime(le.Uint32(b[8:]))
	a.Usage = Usage(le.Uint32(b[12:]))
	a.Alg = Algorithm(le.Uint32(b[16:]))
	a.ID = KeyID(le.Uint32(b[20:]))
	return a, nil
}
