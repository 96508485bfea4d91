package softserv

import (
	"crypto/ecdh"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"xdao.co/psacall/wire"
)

// hkdfMaxOutput is how much HKDF-SHA256 can expand from one secret.
const hkdfMaxOutput = 255 * sha256.Size

// feed accepts one labeled input into a derivation. Inputs follow the
// salt, secret, info order; nothing may arrive once output has started.
func (ss *session) feed(step wire.Step, data []byte) wire.Status {
	if ss.out != nil {
		return wire.StatusBadState
	}
	switch step {
	case StepSalt:
		if ss.salt != nil || ss.secret != nil {
			return wire.StatusBadState
		}
		ss.salt = append([]byte{}, data...)
	case StepSecret:
		if ss.secret != nil {
			return wire.StatusBadState
		}
		ss.secret = append([]byte{}, data...)
	case StepInfo:
		if ss.secret == nil {
			return wire.StatusBadState
		}
		ss.info = append(ss.info, data...)
	default:
		return wire.StatusInvalidArgument
	}
	return wire.StatusSuccess
}

// draw produces the next n bytes of the derivation's output stream.
func (ss *session) draw(n int) ([]byte, wire.Status) {
	if ss.secret == nil {
		return nil, wire.StatusBadState
	}
	if uint32(n) > ss.capacity {
		return nil, wire.StatusInsufficientData
	}
	if ss.out == nil {
		ss.out = hkdf.New(sha256.New, ss.secret, ss.salt, ss.info)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(ss.out, b); err != nil {
		return nil, wire.StatusInsufficientData
	}
	ss.capacity -= uint32(n)
	return b, wire.StatusSuccess
}

// x25519Shared runs the agreement between a held private key and a raw
// peer public key.
func x25519Shared(material, peer []byte) ([]byte, wire.Status) {
	priv, err := ecdh.X25519().NewPrivateKey(material)
	if err != nil {
		return nil, wire.StatusInvalidArgument
	}
	pub, err := ecdh.X25519().NewPublicKey(peer)
	if err != nil {
		return nil, wire.StatusInvalidArgument
	}
	shared, err := priv.ECDH(pub)
	if err != nil {
		return nil, wire.StatusInvalidArgument
	}
	return shared, wire.StatusSuccess
}

func (s *Service) deriveCall(h wire.Header, in, out []wire.Vec) wire.Status {
	switch h.Selector {
	case wire.SelKeyDerivationSetup:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		if h.Alg != AlgHKDFSHA256 {
			return wire.StatusNotSupported
		}
		ss := &session{kind: kindDerive, alg: h.Alg, capacity: hkdfMaxOutput}
		hnd := s.bind(ss)
		if st := putHandle(&out[0], hnd); st != wire.StatusSuccess {
			s.release(hnd)
			return st
		}
		return wire.StatusSuccess

	case wire.SelKeyDerivationGetCapacity:
		if len(in) != 0 || len(out) != 2 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindDerive)
		if st != wire.StatusSuccess {
			return st
		}
		if st := putU32(&out[1], ss.capacity); st != wire.StatusSuccess {
			return st
		}
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelKeyDerivationSetCapacity:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindDerive)
		if st != wire.StatusSuccess {
			return st
		}
		// The capacity only ever shrinks.
		if h.Len[0] > ss.capacity {
			return wire.StatusInvalidArgument
		}
		ss.capacity = h.Len[0]
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelKeyDerivationInputBytes:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindDerive)
		if st != wire.StatusSuccess {
			return st
		}
		if st := ss.feed(h.Step, vecBytes(in[0])); st != wire.StatusSuccess {
			return st
		}
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelKeyDerivationInputKey:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindDerive)
		if st != wire.StatusSuccess {
			return st
		}
		e, st := s.useKey(h.KeyID, KeyTypeDerive, wire.UsageDerive)
		if st != wire.StatusSuccess {
			return st
		}
		if st := ss.feed(h.Step, e.material); st != wire.StatusSuccess {
			return st
		}
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelKeyDerivationKeyAgreement:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindDerive)
		if st != wire.StatusSuccess {
			return st
		}
		if h.Step != StepSecret {
			return wire.StatusInvalidArgument
		}
		e, st := s.useKey(h.KeyID, KeyTypeX25519KeyPair, wire.UsageDerive)
		if st != wire.StatusSuccess {
			return st
		}
		shared, st := x25519Shared(e.material, vecBytes(in[0]))
		if st != wire.StatusSuccess {
			return st
		}
		if st := ss.feed(h.Step, shared); st != wire.StatusSuccess {
			return st
		}
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelKeyDerivationOutputBytes:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		// This call keeps the operation's current handle; no handle
		// descriptor travels with it.
		ss, st := s.take(h.Handle, kindDerive)
		if st != wire.StatusSuccess {
			return st
		}
		b, st := ss.draw(int(out[0].Len))
		if st != wire.StatusSuccess {
			return st
		}
		return putBytes(&out[0], b)

	case wire.SelKeyDerivationOutputKey:
		if len(in) != 1 || len(out) != 2 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindDerive)
		if st != wire.StatusSuccess {
			return st
		}
		attrs, err := wire.DecodeKeyAttributes(vecBytes(in[0]))
		if err != nil {
			return wire.StatusInvalidArgument
		}
		if attrs.Bits == 0 || attrs.Bits%8 != 0 {
			return wire.StatusInvalidArgument
		}
		material, st := ss.draw(int(attrs.Bits / 8))
		if st != wire.StatusSuccess {
			return st
		}
		if st := checkMaterial(attrs.Type, material); st != wire.StatusSuccess {
			return st
		}
		id, st := s.storeKey(attrs, material)
		if st != wire.StatusSuccess {
			return st
		}
		if st := putU32(&out[1], uint32(id)); st != wire.StatusSuccess {
			return st
		}
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelKeyDerivationAbort:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		s.release(h.Handle)
		return putHandle(&out[0], 0)

	case wire.SelRawKeyAgreement:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		if h.Alg != AlgECDHX25519 {
			return wire.StatusNotSupported
		}
		e, st := s.useKey(h.KeyID, KeyTypeX25519KeyPair, wire.UsageDerive)
		if st != wire.StatusSuccess {
			return st
		}
		shared, st := x25519Shared(e.material, vecBytes(in[0]))
		if st != wire.StatusSuccess {
			return st
		}
		return putBytes(&out[0], shared)

	default:
		return wire.StatusNotSupported
	}
}
