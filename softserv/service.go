package softserv

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync"

	"xdao.co/psacall/wire"
)

// Service is a volatile, in-memory crypto service. It implements
// channel.Channel, so a client can sit directly on top of it or reach it
// through a transport binding.
type Service struct {
	mu sync.Mutex

	rand io.Reader

	keys    map[wire.KeyID]*keyEntry
	nextKey uint32

	sessions   map[wire.Handle]*session
	nextHandle uint32
}

// New returns an empty service seeded from crypto/rand.
func New() *Service {
	return &Service{
		rand:       rand.Reader,
		keys:       make(map[wire.KeyID]*keyEntry),
		nextKey:    1,
		sessions:   make(map[wire.Handle]*session),
		nextHandle: 1,
	}
}

type sessionKind uint8

const (
	kindHash sessionKind = iota + 1
	kindMAC
	kindCipher
	kindAEAD
	kindDerive
)

// session is the server-side state behind one continuation handle.
// Streaming hash/MAC/AEAD sessions buffer their input and run the
// primitive at finish time; cipher sessions stream through a keystream.
type session struct {
	kind sessionKind

	alg     wire.Algorithm
	encrypt bool
	verify  bool

	// hash / mac
	transcript []byte
	macKey     []byte

	// cipher
	cipherKey []byte
	stream    cipher.Stream

	// aead
	aeadKey   []byte
	nonce     []byte
	ad        []byte
	data      []byte
	lensSet   bool
	adTotal   uint32
	dataTotal uint32

	// derive
	salt     []byte
	secret   []byte
	info     []byte
	capacity uint32
	out      io.Reader
}

func (ss *session) clone() *session {
	dup := *ss
	dup.transcript = append([]byte(nil), ss.transcript...)
	return &dup
}

// Call dispatches one envelope. in[0] must be the encoded header; the
// remaining input descriptors and all output descriptors are the
// operation's data vectors. Output lengths are rewritten in place.
func (s *Service) Call(sel wire.Selector, in []wire.Vec, out []wire.Vec) wire.Status {
	if len(in) < 1 || 1+(len(in)-1)+len(out) > wire.MaxTotalVecs {
		return wire.StatusProgrammerError
	}
	h, err := wire.DecodeHeader(in[0].Base[:in[0].Len])
	if err != nil || h.Selector != sel {
		return wire.StatusProgrammerError
	}
	data := in[1:]

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.dispatch(sel, h, data, out)
	if st != wire.StatusSuccess {
		// Failed calls never report produced output.
		for i := range out {
			out[i].Len = 0
		}
	}
	return st
}

func (s *Service) dispatch(sel wire.Selector, h wire.Header, data, out []wire.Vec) wire.Status {
	switch sel.Module() {
	case wire.ModuleKeys:
		return s.keyCall(h, data, out)
	case wire.ModuleHash:
		return s.hashCall(h, data, out)
	case wire.ModuleMAC:
		return s.macCall(h, data, out)
	case wire.ModuleCipher:
		return s.cipherCall(h, data, out)
	case wire.ModuleAEAD:
		return s.aeadCall(h, data, out)
	case wire.ModuleAsymSign:
		return s.signCall(h, data, out)
	case wire.ModuleAsymEncrypt:
		return s.asymCall(h, data, out)
	case wire.ModuleDerive:
		return s.deriveCall(h, data, out)
	case wire.ModuleRandom:
		return s.randomCall(h, data, out)
	default:
		return wire.StatusNotSupported
	}
}

// bind registers a session under a fresh handle.
func (s *Service) bind(ss *session) wire.Handle {
	h := wire.Handle(s.nextHandle)
	s.nextHandle++
	s.sessions[h] = ss
	return h
}

// rotate retires the old handle and reissues the session under a new
// one. Reassigning on every call keeps handle threading observable.
func (s *Service) rotate(old wire.Handle, ss *session) wire.Handle {
	delete(s.sessions, old)
	return s.bind(ss)
}

// take resolves an active session of the expected kind.
func (s *Service) take(h wire.Handle, kind sessionKind) (*session, wire.Status) {
	if h == 0 {
		return nil, wire.StatusBadState
	}
	ss, ok := s.sessions[h]
	if !ok || ss.kind != kind {
		return nil, wire.StatusBadState
	}
	return ss, wire.StatusSuccess
}

// release drops a session; terminal and abort paths share it.
func (s *Service) release(h wire.Handle) {
	delete(s.sessions, h)
}

// putBytes writes b into an output descriptor, shrinking its length to
// the bytes produced. The descriptor's capacity must hold all of b.
func putBytes(v *wire.Vec, b []byte) wire.Status {
	if int(v.Len) < len(b) || len(v.Base) < len(b) {
		return wire.StatusBufferTooSmall
	}
	copy(v.Base, b)
	v.Len = uint32(len(b))
	return wire.StatusSuccess
}

// putHandle writes a continuation handle into its 4-byte descriptor.
func putHandle(v *wire.Vec, h wire.Handle) wire.Status {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(h))
	return putBytes(v, b[:])
}

// putU32 writes a little-endian scalar into its 4-byte descriptor.
func putU32(v *wire.Vec, u uint32) wire.Status {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], u)
	return putBytes(v, b[:])
}

// vecBytes returns the populated bytes of an input descriptor.
func vecBytes(v wire.Vec) []byte {
	if v.Base == nil {
		return nil
	}
	return v.Base[:v.Len]
}
