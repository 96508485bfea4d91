package wire

// Module identifies an operation family. Whole families can be absent
// from a build; the client consults its capability table before
// dispatching into one.
type Module uint32

const (
	ModuleKeys Module = iota + 1
	ModuleHash
	ModuleMAC
	ModuleCipher
	ModuleAEAD
	ModuleAsymSign
	ModuleAsymEncrypt
	ModuleDerive
	ModuleRandom

	moduleCount = int(ModuleRandom)
)

func (m Module) String() string {
	switch m {
	case ModuleKeys:
		return "keys"
	case ModuleHash:
		return "hash"
	case ModuleMAC:
		return "mac"
	case ModuleCipher:
		return "cipher"
	case ModuleAEAD:
		return "aead"
	case ModuleAsymSign:
		return "asym-sign"
	case ModuleAsymEncrypt:
		return "asym-encrypt"
	case ModuleDerive:
		return "derive"
	case ModuleRandom:
		return "random"
	default:
		return "unknown"
	}
}

// Selector identifies one logical operation. The high byte carries the
// module, the low byte the operation within it.
type Selector uint32

// Module returns the operation family a selector belongs to.
func (s Selector) Module() Module { return Module(s >> 8) }

// Key management.
const (
	SelImportKey        Selector = 0x101
	SelOpenKey          Selector = 0x102
	SelCloseKey         Selector = 0x103
	SelDestroyKey       Selector = 0x104
	SelPurgeKey         Selector = 0x105
	SelCopyKey          Selector = 0x106
	SelGetKeyAttributes Selector = 0x107
	SelExportKey        Selector = 0x108
	SelExportPublicKey  Selector = 0x109
	SelGenerateKey      Selector = 0x10a
)

// Hash.
const (
	SelHashCompute Selector = 0x201
	SelHashCompare Selector = 0x202
	SelHashSetup   Selector = 0x203
	SelHashUpdate  Selector = 0x204
	SelHashFinish  Selector = 0x205
	SelHashVerify  Selector = 0x206
	SelHashAbort   Selector = 0x207
	SelHashClone   Selector = 0x208
)

// MAC.
const (
	SelMACCompute      Selector = 0x301
	SelMACVerify       Selector = 0x302
	SelMACSignSetup    Selector = 0x303
	SelMACVerifySetup  Selector = 0x304
	SelMACUpdate       Selector = 0x305
	SelMACSignFinish   Selector = 0x306
	SelMACVerifyFinish Selector = 0x307
	SelMACAbort        Selector = 0x308
)

// Unauthenticated cipher.
const (
	SelCipherEncrypt      Selector = 0x401
	SelCipherDecrypt      Selector = 0x402
	SelCipherEncryptSetup Selector = 0x403
	SelCipherDecryptSetup Selector = 0x404
	SelCipherGenerateIV   Selector = 0x405
	SelCipherSetIV        Selector = 0x406
	SelCipherUpdate       Selector = 0x407
	SelCipherFinish       Selector = 0x408
	SelCipherAbort        Selector = 0x409
)

// AEAD.
const (
	SelAEADEncrypt       Selector = 0x501
	SelAEADDecrypt       Selector = 0x502
	SelAEADEncryptSetup  Selector = 0x503
	SelAEADDecryptSetup  Selector = 0x504
	SelAEADGenerateNonce Selector = 0x505
	SelAEADSetNonce      Selector = 0x506
	SelAEADSetLengths    Selector = 0x507
	SelAEADUpdateAD      Selector = 0x508
	SelAEADUpdate        Selector = 0x509
	SelAEADFinish        Selector = 0x50a
	SelAEADVerify        Selector = 0x50b
	SelAEADAbort         Selector = 0x50c
)

// Asymmetric signatures.
const (
	SelSignMessage   Selector = 0x601
	SelVerifyMessage Selector = 0x602
	SelSignHash      Selector = 0x603
	SelVerifyHash    Selector = 0x604
)

// Asymmetric encryption.
const (
	SelAsymmetricEncrypt Selector = 0x701
	SelAsymmetricDecrypt Selector = 0x702
)

// Key derivation and agreement.
const (
	SelKeyDerivationSetup        Selector = 0x801
	SelKeyDerivationGetCapacity  Selector = 0x802
	SelKeyDerivationSetCapacity  Selector = 0x803
	SelKeyDerivationInputBytes   Selector = 0x804
	SelKeyDerivationInputKey     Selector = 0x805
	SelKeyDerivationKeyAgreement Selector = 0x806
	SelKeyDerivationOutputBytes  Selector = 0x807
	SelKeyDerivationOutputKey    Selector = 0x808
	SelKeyDerivationAbort        Selector = 0x809
	SelRawKeyAgreement           Selector = 0x80a
)

// Random generation.
const (
	SelGenerateRandom Selector = 0x901
)
