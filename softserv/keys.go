package softserv

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/binary"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"xdao.co/psacall/wire"
)

// keyEntry is one volatile key: its attributes and its raw material.
// For asymmetric types the material is the private form (seed bytes for
// ed25519/dilithium3/x25519, PKCS#1 DER for RSA).
type keyEntry struct {
	attrs    wire.KeyAttributes
	material []byte
}

func (e *keyEntry) allow(u wire.Usage) bool {
	return e.attrs.Usage&u != 0
}

func (s *Service) key(id wire.KeyID) (*keyEntry, wire.Status) {
	e, ok := s.keys[id]
	if !ok {
		return nil, wire.StatusInvalidHandle
	}
	return e, wire.StatusSuccess
}

func (s *Service) keyCall(h wire.Header, in, out []wire.Vec) wire.Status {
	switch h.Selector {
	case wire.SelImportKey:
		if len(in) != 2 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		attrs, err := wire.DecodeKeyAttributes(vecBytes(in[0]))
		if err != nil {
			return wire.StatusInvalidArgument
		}
		material := append([]byte(nil), vecBytes(in[1])...)
		if st := checkMaterial(attrs.Type, material); st != wire.StatusSuccess {
			return st
		}
		if attrs.Bits == 0 {
			attrs.Bits = uint32(len(material)) * 8
		}
		id, st := s.storeKey(attrs, material)
		if st != wire.StatusSuccess {
			return st
		}
		return putU32(&out[0], uint32(id))

	case wire.SelGenerateKey:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		attrs, err := wire.DecodeKeyAttributes(vecBytes(in[0]))
		if err != nil {
			return wire.StatusInvalidArgument
		}
		material, st := s.generateMaterial(attrs.Type, attrs.Bits)
		if st != wire.StatusSuccess {
			return st
		}
		id, st := s.storeKey(attrs, material)
		if st != wire.StatusSuccess {
			return st
		}
		return putU32(&out[0], uint32(id))

	case wire.SelOpenKey:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		b := vecBytes(in[0])
		if len(b) != 4 {
			return wire.StatusInvalidArgument
		}
		id := wire.KeyID(binary.LittleEndian.Uint32(b))
		if _, ok := s.keys[id]; !ok {
			return wire.StatusDoesNotExist
		}
		return putU32(&out[0], uint32(id))

	case wire.SelCloseKey, wire.SelPurgeKey:
		// Volatile store: nothing cached to drop, but the key must exist.
		_, st := s.key(h.KeyID)
		return st

	case wire.SelDestroyKey:
		if _, st := s.key(h.KeyID); st != wire.StatusSuccess {
			return st
		}
		delete(s.keys, h.KeyID)
		return wire.StatusSuccess

	case wire.SelCopyKey:
		if len(in) != 1 || len(out) != 1 {
			return wire.StatusProgrammerError
		}
		src, st := s.key(h.KeyID)
		if st != wire.StatusSuccess {
			return st
		}
		if !src.allow(wire.UsageCopy) {
			return wire.StatusNotPermitted
		}
		attrs, err := wire.DecodeKeyAttributes(vecBytes(in[0]))
		if err != nil {
			return wire.StatusInvalidArgument
		}
		if attrs.Type != src.attrs.Type {
			return wire.StatusInvalidArgument
		}
		if attrs.Bits == 0 {
			attrs.Bits = src.attrs.Bits
		}
		id, st := s.storeKey(attrs, append([]byte(nil), src.material...))
		if st != wire.StatusSuccess {
			return st
		}
		return putU32(&out[0], uint32(id))

	case wire.SelGetKeyAttributes:
		if len(out) != 1 {
			return wire.StatusProgrammerError
		}
		e, st := s.key(h.KeyID)
		if st != wire.StatusSuccess {
			return st
		}
		a := e.attrs
		return putBytes(&out[0], a.Encode())

	case wire.SelExportKey:
		if len(out) != 1 {
			return wire.StatusProgrammerError
		}
		e, st := s.key(h.KeyID)
		if st != wire.StatusSuccess {
			return st
		}
		if !e.allow(wire.UsageExport) {
			return wire.StatusNotPermitted
		}
		return putBytes(&out[0], e.material)

	case wire.SelExportPublicKey:
		if len(out) != 1 {
			return wire.StatusProgrammerError
		}
		e, st := s.key(h.KeyID)
		if st != wire.StatusSuccess {
			return st
		}
		pub, st := publicBytes(e)
		if st != wire.StatusSuccess {
			return st
		}
		return putBytes(&out[0], pub)

	default:
		return wire.StatusNotSupported
	}
}

// storeKey registers material under the caller-chosen or next free id.
func (s *Service) storeKey(attrs wire.KeyAttributes, material []byte) (wire.KeyID, wire.Status) {
	id := attrs.ID
	if id == 0 {
		id = wire.KeyID(s.nextKey)
		s.nextKey++
	} else if _, ok := s.keys[id]; ok {
		return 0, wire.StatusAlreadyExists
	}
	attrs.ID = id
	s.keys[id] = &keyEntry{attrs: attrs, material: material}
	return id, wire.StatusSuccess
}

// checkMaterial validates imported key material for its declared type.
func checkMaterial(t wire.KeyType, material []byte) wire.Status {
	switch t {
	case KeyTypeRaw, KeyTypeDerive, KeyTypeHMAC:
		if len(material) == 0 {
			return wire.StatusInvalidArgument
		}
	case KeyTypeAES:
		switch len(material) {
		case 16, 24, 32:
		default:
			return wire.StatusInvalidArgument
		}
	case KeyTypeChaCha20:
		if len(material) != 32 {
			return wire.StatusInvalidArgument
		}
	case KeyTypeEd25519KeyPair:
		if len(material) != ed25519.SeedSize {
			return wire.StatusInvalidArgument
		}
	case KeyTypeX25519KeyPair:
		if _, err := ecdh.X25519().NewPrivateKey(material); err != nil {
			return wire.StatusInvalidArgument
		}
	case KeyTypeRSAKeyPair:
		if _, err := x509.ParsePKCS1PrivateKey(material); err != nil {
			return wire.StatusInvalidArgument
		}
	case KeyTypeDilithium3KeyPair:
		if len(material) != mode3.SeedSize {
			return wire.StatusInvalidArgument
		}
	default:
		return wire.StatusNotSupported
	}
	return wire.StatusSuccess
}

// generateMaterial creates fresh material for a key type. bits is
// honored where the type has a free size (raw/HMAC/RSA), fixed sizes
// ignore it.
func (s *Service) generateMaterial(t wire.KeyType, bits uint32) ([]byte, wire.Status) {
	switch t {
	case KeyTypeRaw, KeyTypeDerive, KeyTypeHMAC:
		if bits == 0 || bits%8 != 0 {
			return nil, wire.StatusInvalidArgument
		}
		return s.randomBytes(int(bits / 8))
	case KeyTypeAES:
		switch bits {
		case 128, 192, 256:
			return s.randomBytes(int(bits / 8))
		default:
			return nil, wire.StatusInvalidArgument
		}
	case KeyTypeChaCha20:
		return s.randomBytes(32)
	case KeyTypeEd25519KeyPair:
		return s.randomBytes(ed25519.SeedSize)
	case KeyTypeDilithium3KeyPair:
		return s.randomBytes(mode3.SeedSize)
	case KeyTypeX25519KeyPair:
		priv, err := ecdh.X25519().GenerateKey(s.rand)
		if err != nil {
			return nil, wire.StatusHardwareFailure
		}
		return priv.Bytes(), wire.StatusSuccess
	case KeyTypeRSAKeyPair:
		if bits < 1024 || bits > 4096 {
			return nil, wire.StatusInvalidArgument
		}
		priv, err := rsa.GenerateKey(s.rand, int(bits))
		if err != nil {
			return nil, wire.StatusHardwareFailure
		}
		return x509.MarshalPKCS1PrivateKey(priv), wire.StatusSuccess
	default:
		return nil, wire.StatusNotSupported
	}
}

func (s *Service) randomBytes(n int) ([]byte, wire.Status) {
	b := make([]byte, n)
	if _, err := io.ReadFull(s.rand, b); err != nil {
		return nil, wire.StatusHardwareFailure
	}
	return b, wire.StatusSuccess
}

// publicBytes derives the exportable public form of an asymmetric key.
func publicBytes(e *keyEntry) ([]byte, wire.Status) {
	switch e.attrs.Type {
	case KeyTypeEd25519KeyPair:
		priv := ed25519.NewKeyFromSeed(e.material)
		return priv.Public().(ed25519.PublicKey), wire.StatusSuccess
	case KeyTypeX25519KeyPair:
		priv, err := ecdh.X25519().NewPrivateKey(e.material)
		if err != nil {
			return nil, wire.StatusInvalidArgument
		}
		return priv.PublicKey().Bytes(), wire.StatusSuccess
	case KeyTypeRSAKeyPair:
		priv, err := x509.ParsePKCS1PrivateKey(e.material)
		if err != nil {
			return nil, wire.StatusInvalidArgument
		}
		return x509.MarshalPKCS1PublicKey(&priv.PublicKey), wire.StatusSuccess
	case KeyTypeDilithium3KeyPair:
		pk, _ := dilithiumKey(e.material)
		return pk.Bytes(), wire.StatusSuccess
	default:
		return nil, wire.StatusInvalidArgument
	}
}

// dilithiumKey expands a stored seed into the mode3 key pair.
func dilithiumKey(seed []byte) (*mode3.PublicKey, *mode3.PrivateKey) {
	var s [mode3.SeedSize]byte
	copy(s[:], seed)
	return mode3.NewKeyFromSeed(&s)
}
