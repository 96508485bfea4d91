package softserv

import (
	"crypto/aes"
	"crypto/cipher"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"xdao.co/psacall/wire"
)

// aeadKeyType maps an AEAD algorithm to the key type it requires.
func aeadKeyType(alg wire.Algorithm) (wire.KeyType, bool) {
	switch alg {
	case AlgAESGCM:
		return KeyTypeAES, true
	case AlgChaCha20Poly1305:
		return KeyTypeChaCha20, true
	default:
		return 0, false
	}
}

func aeadNew(alg wire.Algorithm, key []byte) (cipher.AEAD, wire.Status) {
	switch alg {
	case AlgAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, wire.StatusInvalidArgument
		}
		a, err := cipher.NewGCM(block)
		if err != nil {
			return nil, wire.StatusInvalidArgument
		}
		return a, wire.StatusSuccess
	case AlgChaCha20Poly1305:
		a, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, wire.StatusInvalidArgument
		}
		return a, wire.StatusSuccess
	default:
		return nil, wire.StatusNotSupported
	}
}

func (s *Service) aeadCall(h wire.Header, in, out []wire.Vec) wire.Status {
	switch h.Selector {
	case wire.SelAEADEncrypt:
		if len(in) < 1 || len(in) > 2 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		kt, ok := aeadKeyType(h.Alg)
		if !ok {
			return wire.StatusNotSupported
		}
		e, st := s.useKey(h.KeyID, kt, wire.UsageEncrypt)
		if st != wire.StatusSuccess {
			return st
		}
		a, st := aeadNew(h.Alg, e.material)
		if st != wire.StatusSuccess {
			return st
		}
		nonce := h.InlineBytes()
		if len(nonce) != a.NonceSize() {
			return wire.StatusInvalidArgument
		}
		var ad []byte
		if len(in) == 2 {
			ad = vecBytes(in[1])
		}
		return putBytes(&out[0], a.Seal(nil, nonce, vecBytes(in[0]), ad))

	case wire.SelAEADDecrypt:
		if len(in) < 1 || len(in) > 2 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		kt, ok := aeadKeyType(h.Alg)
		if !ok {
			return wire.StatusNotSupported
		}
		e, st := s.useKey(h.KeyID, kt, wire.UsageDecrypt)
		if st != wire.StatusSuccess {
			return st
		}
		a, st := aeadNew(h.Alg, e.material)
		if st != wire.StatusSuccess {
			return st
		}
		nonce := h.InlineBytes()
		if len(nonce) != a.NonceSize() {
			return wire.StatusInvalidArgument
		}
		var ad []byte
		if len(in) == 2 {
			ad = vecBytes(in[1])
		}
		plaintext, err := a.Open(nil, nonce, vecBytes(in[0]), ad)
		if err != nil {
			return wire.StatusInvalidSignature
		}
		return putBytes(&out[0], plaintext)

	case wire.SelAEADEncryptSetup, wire.SelAEADDecryptSetup:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		encrypt := h.Selector == wire.SelAEADEncryptSetup
		usage := wire.UsageDecrypt
		if encrypt {
			usage = wire.UsageEncrypt
		}
		kt, ok := aeadKeyType(h.Alg)
		if !ok {
			return wire.StatusNotSupported
		}
		e, st := s.useKey(h.KeyID, kt, usage)
		if st != wire.StatusSuccess {
			return st
		}
		if _, st := aeadNew(h.Alg, e.material); st != wire.StatusSuccess {
			return st
		}
		ss := &session{
			kind:    kindAEAD,
			alg:     h.Alg,
			encrypt: encrypt,
			aeadKey: append([]byte(nil), e.material...),
		}
		hnd := s.bind(ss)
		if st := putHandle(&out[0], hnd); st != wire.StatusSuccess {
			s.release(hnd)
			return st
		}
		return wire.StatusSuccess

	case wire.SelAEADGenerateNonce:
		if len(in) != 0 || len(out) != 2 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindAEAD)
		if st != wire.StatusSuccess {
			return st
		}
		if !ss.encrypt || ss.nonce != nil {
			return wire.StatusBadState
		}
		a, st := aeadNew(ss.alg, ss.aeadKey)
		if st != wire.StatusSuccess {
			return st
		}
		nonce := make([]byte, a.NonceSize())
		if _, err := io.ReadFull(s.rand, nonce); err != nil {
			return wire.StatusHardwareFailure
		}
		if st := putBytes(&out[1], nonce); st != wire.StatusSuccess {
			return st
		}
		ss.nonce = nonce
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelAEADSetNonce:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindAEAD)
		if st != wire.StatusSuccess {
			return st
		}
		if ss.nonce != nil {
			return wire.StatusBadState
		}
		a, st := aeadNew(ss.alg, ss.aeadKey)
		if st != wire.StatusSuccess {
			return st
		}
		nonce := vecBytes(in[0])
		if len(nonce) != a.NonceSize() {
			return wire.StatusInvalidArgument
		}
		ss.nonce = append([]byte(nil), nonce...)
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelAEADSetLengths:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindAEAD)
		if st != wire.StatusSuccess {
			return st
		}
		if len(ss.ad) > 0 || len(ss.data) > 0 {
			return wire.StatusBadState
		}
		ss.lensSet = true
		ss.adTotal = h.Len[0]
		ss.dataTotal = h.Len[1]
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelAEADUpdateAD:
		if len(in) > 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindAEAD)
		if st != wire.StatusSuccess {
			return st
		}
		if ss.nonce == nil || len(ss.data) > 0 {
			return wire.StatusBadState
		}
		if len(in) == 1 {
			ss.ad = append(ss.ad, vecBytes(in[0])...)
		}
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelAEADUpdate:
		if len(in) > 1 || len(out) != 2 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindAEAD)
		if st != wire.StatusSuccess {
			return st
		}
		if ss.nonce == nil {
			return wire.StatusBadState
		}
		if len(in) == 1 {
			ss.data = append(ss.data, vecBytes(in[0])...)
		}
		// Everything is held back until finish or verify.
		out[1].Len = 0
		return putHandle(&out[0], s.rotate(h.Handle, ss))

	case wire.SelAEADFinish:
		if len(in) != 0 || len(out) < 2 || len(out) > 3 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindAEAD)
		if st != wire.StatusSuccess {
			return st
		}
		if !ss.encrypt || ss.nonce == nil {
			return wire.StatusBadState
		}
		if st := ss.checkLengths(); st != wire.StatusSuccess {
			s.release(h.Handle)
			return st
		}
		a, st := aeadNew(ss.alg, ss.aeadKey)
		if st != wire.StatusSuccess {
			s.release(h.Handle)
			return st
		}
		sealed := a.Seal(nil, ss.nonce, ss.data, ss.ad)
		split := len(sealed) - a.Overhead()
		ciphertext, tag := sealed[:split], sealed[split:]
		if len(out) == 3 {
			if st := putBytes(&out[2], ciphertext); st != wire.StatusSuccess {
				s.release(h.Handle)
				return st
			}
		} else if len(ciphertext) > 0 {
			// The caller elided the ciphertext descriptor but bytes remain.
			s.release(h.Handle)
			return wire.StatusBufferTooSmall
		}
		if st := putBytes(&out[1], tag); st != wire.StatusSuccess {
			s.release(h.Handle)
			return st
		}
		s.release(h.Handle)
		return putHandle(&out[0], 0)

	case wire.SelAEADVerify:
		if len(in) != 1 || len(out) < 1 || len(out) > 2 {
			return wire.StatusProgrammerError
		}
		ss, st := s.take(h.Handle, kindAEAD)
		if st != wire.StatusSuccess {
			return st
		}
		if ss.encrypt || ss.nonce == nil {
			return wire.StatusBadState
		}
		s.release(h.Handle)
		if st := ss.checkLengths(); st != wire.StatusSuccess {
			return st
		}
		a, st := aeadNew(ss.alg, ss.aeadKey)
		if st != wire.StatusSuccess {
			return st
		}
		sealed := append(append([]byte(nil), ss.data...), vecBytes(in[0])...)
		plaintext, err := a.Open(nil, ss.nonce, sealed, ss.ad)
		if err != nil {
			return wire.StatusInvalidSignature
		}
		if len(out) == 2 {
			if st := putBytes(&out[1], plaintext); st != wire.StatusSuccess {
				return st
			}
		} else if len(plaintext) > 0 {
			return wire.StatusBufferTooSmall
		}
		return putHandle(&out[0], 0)

	case wire.SelAEADAbort:
		if len(in) != 0 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		s.release(h.Handle)
		return putHandle(&out[0], 0)

	default:
		return wire.StatusNotSupported
	}
}

// checkLengths enforces totals declared up front, if any were.
func (ss *session) checkLengths() wire.Status {
	if !ss.lensSet {
		return wire.StatusSuccess
	}
	if uint32(len(ss.ad)) != ss.adTotal || uint32(len(ss.data)) != ss.dataTotal {
		return wire.StatusInvalidArgument
	}
	return wire.StatusSuccess
}
