package softserv

import (
	"crypto/aes"
	"crypto/cipher"
	"io"

	"xdao.co/psacall/wire"
)

func ctrStream(key, iv []byte) (cipher.Stream, wire.Status) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, wire.StatusInvalidArgument
	}
	if len(iv) != block.BlockSize() {
		return nil, wire.StatusInvalidArgument
	}
	return cipher.NewCTR(block, iv), wire.StatusSuccess
}

func (s *Service) cipherCall(h wire.Header, in, out []wire.Vec) wire.Status {
	if h.Alg != 0 && h.Alg != AlgAESCTR {
		return wire.StatusNotSupported
	}
	switch h.Selector {
	case wire.SelCipherEncrypt:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		e, st := s.useKey(h.KeyID, KeyTypeAES, wire.UsageEncrypt)
		if st != wire.StatusSuccess {
			return st
		}
		input := vecBytes(in[0])
		buf := make([]byte, aes.BlockSize+len(input))
		if _, err := io.ReadFull(s.rand, buf[:aes.BlockSize]); err != nil {
			return wire.StatusHardwareFailure
		}
		stream, st := ctrStream(e.material, buf[:aes.BlockSize])
		if st != wire.StatusSuccess {
			return st
		}
		stream.XORKeyStream(buf[aes.BlockSize:], input)
		return putBytes(&out[0], buf)

	case wire.SelCipherDecrypt:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		e, st := s.useKey(h.KeyID, KeyTypeAES, wire.UsageDecrypt)
		if st != wire.StatusSuccess {
			return st
		}
		input := vecBytes(in[0])
		if len(input) < aes.BlockSize {
			return wire.StatusInvalidArgument
		}
		stream, st := ctrStream(e.material, input[:aes.BlockSize])
		if st != wire.StatusSuccess {
			return st
		}
		buf := make([]byte, len(input)-aes.BlockSize)
		stream.XORKeyStream(buf, input[aes.BlockSize:])
		return putBytes(&out[0], buf)

	case wire.SelCipherEncryptSetup, wire.SelCipherDecryptSetup:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		encrypt := h.Selector == wire.SelCipherEncryptSetup
		usage := wire.UsageDecrypt
		if encrypt {
			usage = wire.UsageEncrypt
		}
		e, st := s.useKey(h.KeyID, KeyTypeAES, usage)
		if st != wire.StatusSuccess {
			return st
		}
		ss := &session{
			kind:      kindCipher,
			alg:       AlgAESCTR,
			encrypt:   encrypt,
			cipherKey: append([]byte(nil), e.material...),
		}
		hnd := s.bind(ss)
		if st := putHandle(&out[0], hnd); st != wire.StatusSuccess {
			s.release(hnd)
			return st
		}
		return wire.StatusSuccess

	case wire.SelCipherGenerateIV:
		if len(in) != 0 || len(out) != 2 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindCipher)
		if st != wire.StatusSuccess {
			return st
		}
		if !ss.encrypt || ss.stream != nil {
			return wire.StatusBadState
		}
		iv := make([]byte, aes.BlockSize)
		if _, err := io.ReadFull(s.rand, iv); err != nil {
			return wire.StatusHardwareFailure
		}
		if st := putBytes(&out[1], iv); st != wire.StatusSuccess {
			return st
		}
		stream, st := ctrStream(ss.cipherKey, iv)
		if st != wire.StatusSuccess {
			return st
		}
		ss.stream = stream
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelCipherSetIV:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindCipher)
		if st != wire.StatusSuccess {
			return st
		}
		if ss.stream != nil {
			return wire.StatusBadState
		}
		stream, st := ctrStream(ss.cipherKey, vecBytes(in[0]))
		if st != wire.StatusSuccess {
			return st
		}
		ss.stream = stream
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelCipherUpdate:
		if len(in) != 1 || len(out) != 2 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindCipher)
		if st != wire.StatusSuccess {
			return st
		}
		if ss.stream == nil {
			return wire.StatusBadState
		}
		input := vecBytes(in[0])
		buf := make([]byte, len(input))
		ss.stream.XORKeyStream(buf, input)
		if st := putBytes(&out[1], buf); st != wire.StatusSuccess {
			return st
		}
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelCipherFinish:
		if len(in) != 0 || len(out) != 2 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindCipher)
		if st != wire.StatusSuccess {
			return st
		}
		if ss.stream == nil {
			return wire.StatusBadState
		}
		// A stream cipher holds no residue.
		s.release(h.Handle)
		out[1].Len = 0
		return putHandle(&out[0], 0)

	case wire.SelCipherAbort:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		s.release(h.Handle)
		return putHandle(&out[0], 0)

	default:
		return wire.StatusNotSupported
	}
}
