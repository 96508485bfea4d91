package softserv

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/sha3"

	"xdao.co/psacall/wire"
)

// Algorithm identifiers understood by this service. The client layer
// never interprets these; they are part of the service's vocabulary.
const (
	AlgSHA256 wire.Algorithm = iota + 1
	AlgSHA512
	AlgSHA3_256
	AlgHMACSHA256
	AlgHMACSHA512
	AlgAESCTR
	AlgAESGCM
	AlgChaCha20Poly1305
	AlgRSAOAEPSHA256
	AlgEd25519
	AlgDilithium3
	AlgHKDFSHA256
	AlgECDHX25519
)

// Key types understood by this service.
const (
	KeyTypeRaw wire.KeyType = iota + 1
	KeyTypeDerive
	KeyTypeHMAC
	KeyTypeAES
	KeyTypeChaCha20
	KeyTypeRSAKeyPair
	KeyTypeEd25519KeyPair
	KeyTypeX25519KeyPair
	KeyTypeDilithium3KeyPair
)

// Key-derivation input steps.
const (
	StepSalt wire.Step = iota + 1
	StepSecret
	StepInfo
)

// hashNew returns the constructor for a plain digest algorithm.
func hashNew(alg wire.Algorithm) (func() hash.Hash, bool) {
	switch alg {
	case AlgSHA256:
		return sha256.New, true
	case AlgSHA512:
		return sha512.New, true
	case AlgSHA3_256:
		return sha3.New256, true
	default:
		return nil, false
	}
}

// macNew returns the constructor for the digest underlying an HMAC
// algorithm.
func macNew(alg wire.Algorithm) (func() hash.Hash, bool) {
	switch alg {
	case AlgHMACSHA256:
		return sha256.New, true
	case AlgHMACSHA512:
		return sha512.New, true
	default:
		return nil, false
	}
}
