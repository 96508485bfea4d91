package softserv

import (
	"crypto/hmac"

	"xdao.co/psacall/wire"
)

// useKey resolves a key and checks its type and usage policy.
func (s *Service) useKey(id wire.KeyID, t wire.KeyType, u wire.Usage) (*keyEntry, wire.Status) {
	e, st := s.key(id)
	if st != wire.StatusSuccess {
		return nil, st
	}
	if e.attrs.Type != t {
		return nil, wire.StatusInvalidArgument
	}
	if !e.allow(u) {
		return nil, wire.StatusNotPermitted
	}
	return e, wire.StatusSuccess
}

func macSum(alg wire.Algorithm, key, data []byte) ([]byte, wire.Status) {
	newFn, ok := macNew(alg)
	if !ok {
		return nil, wire.StatusNotSupported
	}
	m := hmac.New(newFn, key)
	m.Write(data)
	return m.Sum(nil), wire.StatusSuccess
}

func (s *Service) macCall(h wire.Header, in, out []wire.Vec) wire.Status {
	switch h.Selector {
	case wire.SelMACCompute:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		e, st := s.useKey(h.KeyID, KeyTypeHMAC, wire.UsageSignMessage)
		if st != wire.StatusSuccess {
			return st
		}
		mac, st := macSum(h.Alg, e.material, vecBytes(in[0]))
		if st != wire.StatusSuccess {
			return st
		}
		return putBytes(&out[0], mac)

	case wire.SelMACVerify:
		if len(in) != 2 || len(out) != 0 {
			return wire.StatusProgrammerError
		}
		e, st := s.useKey(h.KeyID, KeyTypeHMAC, wire.UsageVerifyMessage)
		if st != wire.StatusSuccess {
			return st
		}
		mac, st := macSum(h.Alg, e.material, vecBytes(in[0]))
		if st != wire.StatusSuccess {
			return st
		}
		if !hmac.Equal(mac, vecBytes(in[1])) {
			return wire.StatusInvalidSignature
		}
		return wire.StatusSuccess

	case wire.SelMACSignSetup, wire.SelMACVerifySetup:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		usage := wire.UsageSignMessage
		if h.Selector == wire.SelMACVerifySetup {
			usage = wire.UsageVerifyMessage
		}
		e, st := s.useKey(h.KeyID, KeyTypeHMAC, usage)
		if st != wire.StatusSuccess {
			return st
		}
		if _, ok := macNew(h.Alg); !ok {
			return wire.StatusNotSupported
		}
		ss := &session{
			kind:   kindMAC,
			alg:    h.Alg,
			verify: h.Selector == wire.SelMACVerifySetup,
			macKey: append([]byte(nil), e.material...),
		}
		hnd := s.bind(ss)
		if st := putHandle(&out[0], hnd); st != wire.StatusSuccess {
			s.release(hnd)
			return st
		}
		return wire.StatusSuccess

	case wire.SelMACUpdate:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindMAC)
		if st != wire.StatusSuccess {
			return st
		}
		ss.transcript = append(ss.transcript, vecBytes(in[0])...)
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelMACSignFinish:
		if len(in) != 0 || len(out) != 2 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindMAC)
		if st != wire.StatusSuccess {
			return st
		}
		if ss.verify {
			return wire.StatusBadState
		}
		mac, st := macSum(ss.alg, ss.macKey, ss.transcript)
		if st != wire.StatusSuccess {
			s.release(h.Handle)
			return st
		}
		if st := putBytes(&out[1], mac); st != wire.StatusSuccess {
			s.release(h.Handle)
			return st
		}
		s.release(h.Handle)
		return putHandle(&out[0], 0)

	case wire.SelMACVerifyFinish:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindMAC)
		if st != wire.StatusSuccess {
			return st
		}
		if !ss.verify {
			return wire.StatusBadState
		}
		s.release(h.Handle)
		mac, st := macSum(ss.alg, ss.macKey, ss.transcript)
		if st != wire.StatusSuccess {
			return st
		}
		if !hmac.Equal(mac, vecBytes(in[0])) {
			return wire.StatusInvalidSignature
		}
		return putHandle(&out[0], 0)

	case wire.SelMACAbort:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		s.release(h.Handle)
		return putHandle(&out[0], 0)

	default:
		return wire.StatusNotSupported
	}
}
