package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestCallFrameRoundTrip(t *testing.T) {
	in := []Vec{Bytes([]byte("header-bytes")), Bytes([]byte("payload"))}
	out := []Vec{Bytes(make([]byte, 4)), Bytes(make([]byte, 32))}

	frame := EncodeCall(SelHashUpdate, in, out)
	sel, gin, gout, err := DecodeCall(frame)
	if err != nil {
		t.Fatalf("DecodeCall: %v", err)
	}
	if sel != SelHashUpdate {
		t.Fatalf("sel = %#x", uint32(sel))
	}
	if len(gin) != 2 || len(gout) != 2 {
		t.Fatalf("got %d in / %d out", len(gin), len(gout))
	}
	if !bytes.Equal(gin[0].Base, []byte("header-bytes")) || !bytes.Equal(gin[1].Base, []byte("payload")) {
		t.Fatalf("input payload mismatch")
	}
	if gout[0].Len != 4 || gout[1].Len != 32 {
		t.Fatalf("output capacities = %d, %d", gout[0].Len, gout[1].Len)
	}
	if len(gout[1].Base) != 32 {
		t.Fatalf("output base not allocated to capacity")
	}
}

func TestDecodeCallMalformed(t *testing.T) {
	cases := [][]byte{
		nil,
		{1, 2, 3},
		// Truncated input payload.
		append(EncodeCall(SelHashCompute, []Vec{Bytes([]byte("abcd"))}, nil)[:8]),
		// Trailing garbage.
		append(EncodeCall(SelHashCompute, nil, nil), 0xff),
	}
	for i, b := range cases {
		if _, _, _, err := DecodeCall(b); !errors.Is(err, ErrCommunicationFailure) {
			t.Fatalf("case %d: err = %v, want ErrCommunicationFailure", i, err)
		}
	}
}

func TestDecodeCallBudget(t *testing.T) {
	b := EncodeCall(SelHashCompute, nil, nil)
	b[4], b[5] = 3, 2 // 5 descriptors, over the channel budget
	if _, _, _, err := DecodeCall(b); !errors.Is(err, ErrCommunicationFailure) {
		t.Fatalf("err = %v, want ErrCommunicationFailure", err)
	}
}

func TestReplyFrameRoundTrip(t *testing.T) {
	served := []Vec{Bytes([]byte{1, 2, 3, 4}), {Base: make([]byte, 32), Len: 7}}
	copy(served[1].Base, "derived")
	frame := EncodeReply(StatusSuccess, served)

	out := []Vec{Bytes(make([]byte, 4)), Bytes(make([]byte, 32))}
	st, err := DecodeReply(frame, out)
	if err != nil {
		t.Fatalf("DecodeReply: %v", err)
	}
	if st != StatusSuccess {
		t.Fatalf("status = %v", st)
	}
	if out[0].Len != 4 || !bytes.Equal(out[0].Base, []byte{1, 2, 3, 4}) {
		t.Fatalf("out[0] mismatch")
	}
	if out[1].Len != 7 || string(out[1].Base[:7]) != "derived" {
		t.Fatalf("out[1] mismatch: len=%d %q", out[1].Len, out[1].Base[:out[1].Len])
	}
}

func TestReplyFrameCarriesFailureStatus(t *testing.T) {
	frame := EncodeReply(StatusInvalidSignature, nil)
	st, err := DecodeReply(frame, nil)
	if err != nil {
		t.Fatalf("DecodeReply: %v", err)
	}
	if st != StatusInvalidSignature {
		t.Fatalf("status = %v, want invalid signature", st)
	}
}

func TestDecodeReplyOverflow(t *testing.T) {
	// A reply claiming more bytes than the caller's capacity is malformed.
	served := []Vec{Bytes(make([]byte, 64))}
	frame := EncodeReply(StatusSuccess, served)
	out := []Vec{Bytes(make([]byte, 16))}
	if _, err := DecodeReply(frame, out); !errors.Is(err, ErrCommunicationFailure) {
		t.Fatalf("err = %v, want ErrCommunicationFailure", err)
	}
}

func TestDecodeReplyCountMismatch(t *testing.T) {
	frame := EncodeReply(StatusSuccess, []Vec{Bytes([]byte{1})})
	if _, err := DecodeReply(frame, nil); !errors.Is(err, ErrCommunicationFailure) {
		t.Fatalf("err = %v, want ErrCommunicationFailure", err)
	}
}
