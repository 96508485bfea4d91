package softserv

import (
	"crypto/subtle"

	"xdao.co/psacall/wire"
)

func hashDigest(alg wire.Algorithm, data []byte) ([]byte, wire.Status) {
	newFn, ok := hashNew(alg)
	if !ok {
		return nil, wire.StatusNotSupported
	}
	hh := newFn()
	hh.Write(data)
	return hh.Sum(nil), wire.StatusSuccess
}

func (s *Service) hashCall(h wire.Header, in, out []wire.Vec) wire.Status {
	switch h.Selector {
	case wire.SelHashCompute:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		digest, st := hashDigest(h.Alg, vecBytes(in[0]))
		if st != wire.StatusSuccess {
			return st
		}
		return putBytes(&out[0], digest)

	case wire.SelHashCompare:
		if len(in) != 2 || len(out) != 0 {
			return wire.StatusProgrammerError
		}
		digest, st := hashDigest(h.Alg, vecBytes(in[0]))
		if st != wire.StatusSuccess {
			return st
		}
		if subtle.ConstantTimeCompare(digest, vecBytes(in[1])) != 1 {
			return wire.StatusInvalidSignature
		}
		return wire.StatusSuccess

	case wire.SelHashSetup:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		if _, ok := hashNew(h.Alg); !ok {
			return wire.StatusNotSupported
		}
		hnd := s.bind(&session{kind: kindHash, alg: h.Alg})
		if st := putHandle(&out[0], hnd); st != wire.StatusSuccess {
			s.release(hnd)
			return st
		}
		return wire.StatusSuccess

	case wire.SelHashUpdate:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindHash)
		if st != wire.StatusSuccess {
			return st
		}
		ss.transcript = append(ss.transcript, vecBytes(in[0])...)
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelHashFinish:
		if len(in) != 0 || len(out) != 2 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindHash)
		if st != wire.StatusSuccess {
			return st
		}
		digest, st := hashDigest(ss.alg, ss.transcript)
		if st != wire.StatusSuccess {
			s.release(h.Handle)
			return st
		}
		if st := putBytes(&out[1], digest); st != wire.StatusSuccess {
			s.release(h.Handle)
			return st
		}
		s.release(h.Handle)
		return putHandle(&out[0], 0)

	case wire.SelHashVerify:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindHash)
		if st != wire.StatusSuccess {
			return st
		}
		s.release(h.Handle)
		digest, st := hashDigest(ss.alg, ss.transcript)
		if st != wire.StatusSuccess {
			return st
		}
		if subtle.ConstantTimeCompare(digest, vecBytes(in[0])) != 1 {
			return wire.StatusInvalidSignature
		}
		return putHandle(&out[0], 0)

	case wire.SelHashAbort:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		// Aborting an unbound or already-released operation is a no-op.
		s.release(h.Handle)
		return putHandle(&out[0], 0)

	case wire.SelHashClone:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindHash)
		if st != wire.StatusSuccess {
			return st
		}
		hnd := s.bind(ss.clone())
		if st := putHandle(&out[0], hnd); st != wire.StatusSuccess {
			s.release(hnd)
			return st
		}
		return wire.StatusSuccess

	default:
		return wire.StatusNotSupported
	}
}
