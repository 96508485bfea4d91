package softserv

import (
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"xdao.co/psacall/wire"
)

// signKeyType maps a signature algorithm to the key type it requires.
func signKeyType(alg wire.Algorithm) (wire.KeyType, bool) {
	switch alg {
	case AlgEd25519:
		return KeyTypeEd25519KeyPair, true
	case AlgDilithium3:
		return KeyTypeDilithium3KeyPair, true
	default:
		return 0, false
	}
}

func signWith(e *keyEntry, alg wire.Algorithm, msg []byte) ([]byte, wire.Status) {
	switch alg {
	case AlgEd25519:
		priv := ed25519.NewKeyFromSeed(e.material)
		return ed25519.Sign(priv, msg), wire.StatusSuccess
	case AlgDilithium3:
		_, sk := dilithiumKey(e.material)
		sig := make([]byte, mode3.SignatureSize)
		mode3.SignTo(sk, msg, sig)
		return sig, wire.StatusSuccess
	default:
		return nil, wire.StatusNotSupported
	}
}

func verifyWith(e *keyEntry, alg wire.Algorithm, msg, sig []byte) wire.Status {
	switch alg {
	case AlgEd25519:
		priv := ed25519.NewKeyFromSeed(e.material)
		if !ed25519.Verify(priv.Public().(ed25519.PublicKey), msg, sig) {
			return wire.StatusInvalidSignature
		}
		return wire.StatusSuccess
	case AlgDilithium3:
		pk, _ := dilithiumKey(e.material)
		if !mode3.Verify(pk, msg, sig) {
			return wire.StatusInvalidSignature
		}
		return wire.StatusSuccess
	default:
		return wire.StatusNotSupported
	}
}

func (s *Service) signCall(h wire.Header, in, out []wire.Vec) wire.Status {
	kt, ok := signKeyType(h.Alg)
	if !ok {
		return wire.StatusNotSupported
	}
	switch h.Selector {
	case wire.SelSignMessage, wire.SelSignHash:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		usage := wire.UsageSignMessage
		if h.Selector == wire.SelSignHash {
			usage = wire.UsageSignHash
		}
		e, st := s.useKey(h.KeyID, kt, usage)
		if st != wire.StatusSuccess {
			return st
		}
		sig, st := signWith(e, h.Alg, vecBytes(in[0]))
		if st != wire.StatusSuccess {
			return st
		}
		return putBytes(&out[0], sig)

	case wire.SelVerifyMessage, wire.SelVerifyHash:
		if len(in) != 2 || len(out) != 0 {
			return wire.StatusProgrammerError
		}
		usage := wire.UsageVerifyMessage
		if h.Selector == wire.SelVerifyHash {
			usage = wire.UsageVerifyHash
		}
		e, st := s.useKey(h.KeyID, kt, usage)
		if st != wire.StatusSuccess {
			return st
		}
		return verifyWith(e, h.Alg, vecBytes(in[0]), vecBytes(in[1]))

	default:
		return wire.StatusNotSupported
	}
}

func (s *Service) asymCall(h wire.Header, in, out []wire.Vec) wire.Status {
	if h.Alg != AlgRSAOAEPSHA256 {
		return wire.StatusNotSupported
	}
	if len(in) < 1 || len(in) > 2 || len(out) != 1 {
		return wire.StatusProgrammerError
	}
	var salt []byte
	if len(in) == 2 {
		salt = vecBytes(in[1])
	}
	switch h.Selector {
	case wire.SelAsymmetricEncrypt:
		e, st := s.useKey(h.KeyID, KeyTypeRSAKeyPair, wire.UsageEncrypt)
		if st != wire.StatusSuccess {
			return st
		}
		priv, err := x509.ParsePKCS1PrivateKey(e.material)
		if err != nil {
			return wire.StatusInvalidArgument
		}
		// The salt, when present, acts as the OAEP label.
		ct, err := rsa.EncryptOAEP(sha256.New(), s.rand, &priv.PublicKey, vecBytes(in[0]), salt)
		if err != nil {
			return wire.StatusInvalidArgument
		}
		return putBytes(&out[0], ct)

	case wire.SelAsymmetricDecrypt:
		e, st := s.useKey(h.KeyID, KeyTypeRSAKeyPair, wire.UsageDecrypt)
		if st != wire.StatusSuccess {
			return st
		}
		priv, err := x509.ParsePKCS1PrivateKey(e.material)
		if err != nil {
			return wire.StatusInvalidArgument
		}
		pt, err := rsa.DecryptOAEP(sha256.New(), nil, priv, vecBytes(in[0]), salt)
		if err != nil {
			return wire.StatusInvalidPadding
		}
		return putBytes(&out[0], pt)

	default:
		return wire.StatusNotSupported
	}
}
