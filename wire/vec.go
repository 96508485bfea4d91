package wire

// MaxTotalVecs is the channel's fixed descriptor budget per call: header
// plus data-in plus data-out descriptors never exceed it.
const MaxTotalVecs = 4

// Vec describes one buffer crossing the channel. For output vectors Len
// is bidirectional: the caller supplies the capacity and the service
// overwrites it with the number of bytes actually produced. An absent
// optional buffer is a Vec with a nil Base.
type Vec struct {
	Base []byte
	Len  uint32
}

// Bytes builds a well-formed Vec covering all of b. A nil slice yields
// the absent descriptor.
func Bytes(b []byte) Vec {
	return Vec{Base: b, Len: uint32(len(b))}
}

// slotKind says how one descriptor slot of an operation's template
// behaves when the caller leaves it empty.
type slotKind uint8

const (
	// slotReq descriptors are always dispatched.
	slotReq slotKind = iota
	// slotOpt descriptors are dropped from the tail when Base is nil.
	slotOpt
	// slotOptZ descriptors are dropped when Base is nil or the capacity
	// is zero (whole-message AEAD finish/verify outputs behave this way).
	slotOptZ
)

// shape is the fixed descriptor template of one selector: the data-in
// and data-out slots it may carry, excluding the header descriptor.
type shape struct {
	in  []slotKind
	out []slotKind
}

var (
	shapeNone     = shape{}
	shapeIn1      = shape{in: []slotKind{slotReq}}
	shapeIn2      = shape{in: []slotKind{slotReq, slotReq}}
	shapeIn1Out1  = shape{in: []slotKind{slotReq}, out: []slotKind{slotReq}}
	shapeIn2Out1  = shape{in: []slotKind{slotReq, slotReq}, out: []slotKind{slotReq}}
	shapeOut1     = shape{out: []slotKind{slotReq}}
	shapeOut2     = shape{out: []slotKind{slotReq, slotReq}}
	shapeIn1Out2  = shape{in: []slotKind{slotReq}, out: []slotKind{slotReq, slotReq}}
	shapeOneshotO = shape{in: []slotKind{slotReq, slotOpt}, out: []slotKind{slotReq}}
)

// shapes is the constant per-selector template table. It is the only
// state this package carries and is never mutated after init.
var shapes = map[Selector]shape{
	SelImportKey:        shapeIn2Out1,
	SelOpenKey:          shapeIn1Out1,
	SelCloseKey:         shapeNone,
	SelDestroyKey:       shapeNone,
	SelPurgeKey:         shapeNone,
	SelCopyKey:          shapeIn1Out1,
	SelGetKeyAttributes: shapeOut1,
	SelExportKey:        shapeOut1,
	SelExportPublicKey:  shapeOut1,
	SelGenerateKey:      shapeIn1Out1,

	SelHashCompute: shapeIn1Out1,
	SelHashCompare: shapeIn2,
	SelHashSetup:   shapeOut1,
	SelHashUpdate:  shapeIn1Out1,
	SelHashFinish:  shapeOut2,
	SelHashVerify:  shapeIn1Out1,
	SelHashAbort:   shapeOut1,
	SelHashClone:   shapeOut1,

	SelMACCompute:      shapeIn1Out1,
	SelMACVerify:       shapeIn2,
	SelMACSignSetup:    shapeOut1,
	SelMACVerifySetup:  shapeOut1,
	SelMACUpdate:       shapeIn1Out1,
	SelMACSignFinish:   shapeOut2,
	SelMACVerifyFinish: shapeIn1Out1,
	SelMACAbort:        shapeOut1,

	SelCipherEncrypt:      shapeIn1Out1,
	SelCipherDecrypt:      shapeIn1Out1,
	SelCipherEncryptSetup: shapeOut1,
	SelCipherDecryptSetup: shapeOut1,
	SelCipherGenerateIV:   shapeOut2,
	SelCipherSetIV:        shapeIn1Out1,
	SelCipherUpdate:       shapeIn1Out2,
	SelCipherFinish:       shapeOut2,
	SelCipherAbort:        shapeOut1,

	SelAEADEncrypt:       shapeOneshotO,
	SelAEADDecrypt:       shapeOneshotO,
	SelAEADEncryptSetup:  shapeOut1,
	SelAEADDecryptSetup:  shapeOut1,
	SelAEADGenerateNonce: shapeOut2,
	SelAEADSetNonce:      shapeIn1Out1,
	SelAEADSetLengths:    shapeOut1,
	SelAEADUpdateAD:      {in: []slotKind{slotOpt}, out: []slotKind{slotReq}},
	SelAEADUpdate:        {in: []slotKind{slotOpt}, out: []slotKind{slotReq, slotReq}},
	SelAEADFinish:        {out: []slotKind{slotReq, slotReq, slotOptZ}},
	SelAEADVerify:        {in: []slotKind{slotReq}, out: []slotKind{slotReq, slotOptZ}},
	SelAEADAbort:         shapeOut1,

	SelSignMessage:   shapeIn1Out1,
	SelVerifyMessage: shapeIn2,
	SelSignHash:      shapeIn1Out1,
	SelVerifyHash:    shapeIn2,

	SelAsymmetricEncrypt: shapeOneshotO,
	SelAsymmetricDecrypt: shapeOneshotO,

	SelKeyDerivationSetup:        shapeOut1,
	SelKeyDerivationGetCapacity:  shapeOut2,
	SelKeyDerivationSetCapacity:  shapeOut1,
	SelKeyDerivationInputBytes:   shapeIn1Out1,
	SelKeyDerivationInputKey:     shapeOut1,
	SelKeyDerivationKeyAgreement: shapeIn1Out1,
	SelKeyDerivationOutputBytes:  shapeOut1,
	SelKeyDerivationOutputKey:    shapeIn1Out2,
	SelKeyDerivationAbort:        shapeOut1,
	SelRawKeyAgreement:           shapeIn1Out1,

	SelGenerateRandom: shapeOut1,
}

// Assemble validates the caller's data descriptors against the
// selector's template and produces the minimal ordered vectors to
// dispatch: absent optional descriptors are removed from the tail of
// their group, never from the middle.
//
// The length/reference mismatch check (a nil Base with a nonzero Len)
// runs before any trimming and fails the whole call with
// ErrInvalidArgument. Vectors with a Len exceeding their backing buffer
// are rejected the same way.
func Assemble(sel Selector, in, out []Vec) ([]Vec, []Vec, error) {
	sh, ok := shapes[sel]
	if !ok {
		return nil, nil, ErrProgrammerError
	}
	if len(in) != len(sh.in) || len(out) != len(sh.out) {
		return nil, nil, ErrProgrammerError
	}
	if err := checkVecs(in); err != nil {
		return nil, nil, err
	}
	if err := checkVecs(out); err != nil {
		return nil, nil, err
	}

	in = trimTail(in, sh.in)
	out = trimTail(out, sh.out)

	if 1+len(in)+len(out) > MaxTotalVecs {
		return nil, nil, ErrProgrammerError
	}
	return in, out, nil
}

func checkVecs(vs []Vec) error {
	for _, v := range vs {
		if v.Base == nil && v.Len != 0 {
			return ErrInvalidArgument
		}
		if v.Base != nil && int(v.Len) > len(v.Base) {
			return ErrInvalidArgument
		}
	}
	return nil
}

func trimTail(vs []Vec, kinds []slotKind) []Vec {
	for len(vs) > 0 {
		k := kinds[len(vs)-1]
		v := vs[len(vs)-1]
		switch {
		case k == slotOpt && v.Base == nil:
		case k == slotOptZ && (v.Base == nil || v.Len == 0):
		default:
			return vs
		}
		vs = vs[:len(vs)-1]
	}
	return vs
}
