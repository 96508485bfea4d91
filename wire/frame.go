package wire

import "encoding/binary"

// Call and reply framing for remote channel bindings. A call frame
// carries the selector, the full input payloads, and the capacities of
// the output descriptors; a reply frame carries the status and the bytes
// each output descriptor actually produced. Everything is little-endian.
//
// Frame layout:
//
//	call:  sel u32 | nIn u8 | nOut u8 | nIn×(len u32, bytes) | nOut×(cap u32)
//	reply: status i32 | nOut u8 | nOut×(len u32, bytes)

// EncodeCall serializes a dispatched call. Input vectors must be
// well-formed (Len within Base); output vectors contribute only their
// capacity.
func EncodeCall(sel Selector, in, out []Vec) []byte {
	n := 4 + 1 + 1 + 4*len(in) + 4*len(out)
	for _, v := range in {
		n += int(v.Len)
	}
	b := make([]byte, 0, n)
	le := binary.LittleEndian
	b = le.AppendUint32(b, uint32(sel))
	b = append(b, byte(len(in)), byte(len(out)))
	for _, v := range in {
		b = le.AppendUint32(b, v.Len)
		b = append(b, v.Base[:v.Len]...)
	}
	for _, v := range out {
		b = le.AppendUint32(b, v.Len)
	}
	return b
}

// DecodeCall parses a call frame, allocating output vectors with the
// requested capacities. Malformed frames yield ErrCommunicationFailure.
func DecodeCall(b []byte) (Selector, []Vec, []Vec, error) {
	le := binary.LittleEndian
	if len(b) < 6 {
		return 0, nil, nil, ErrCommunicationFailure
	}
	sel := Selector(le.Uint32(b))
	nIn, nOut := int(b[4]), int(b[5])
	b = b[6:]
	// The header descriptor travels as in[0], so the frame's own counts
	// are bounded by the channel budget directly.
	if nIn+nOut > MaxTotalVecs {
		return 0, nil, nil, ErrCommunicationFailure
	}

	in := make([]Vec, 0, nIn)
	for i := 0; i < nIn; i++ {
		if len(b) < 4 {
			return 0, nil, nil, ErrCommunicationFailure
		}
		n := int(le.Uint32(b))
		b = b[4:]
		if len(b) < n {
			return 0, nil, nil, ErrCommunicationFailure
		}
		in = append(in, Bytes(b[:n:n]))
		b = b[n:]
	}

	out := make([]Vec, 0, nOut)
	for i := 0; i < nOut; i++ {
		if len(b) < 4 {
			return 0, nil, nil, ErrCommunicationFailure
		}
		capacity := le.Uint32(b)
		b = b[4:]
		out = append(out, Vec{Base: make([]byte, capacity), Len: capacity})
	}
	if len(b) != 0 {
		return 0, nil, nil, ErrCommunicationFailure
	}
	return sel, in, out, nil
}

// EncodeReply serializes the outcome of a served call. Only the produced
// prefix of each output vector travels back.
func EncodeReply(status Status, out []Vec) []byte {
	n := 4 + 1 + 4*len(out)
	for _, v := range out {
		n += int(v.Len)
	}
	b := make([]byte, 0, n)
	le := binary.LittleEndian
	b = le.AppendUint32(b, uint32(int32(status)))
	b = append(b, byte(len(out)))
	for _, v := range out {
		b = le.AppendUint32(b, v.Len)
		b = append(b, v.Base[:v.Len]...)
	}
	return b
}

// DecodeReply parses a reply frame into the caller's output vectors,
// copying produced bytes into each Base and overwriting each Len. A
// produced length larger than the descriptor's capacity is malformed.
func DecodeReply(b []byte, out []Vec) (Status, error) {
	le := binary.LittleEndian
	if len(b) < 5 {
		return StatusCommunicationFailure, ErrCommunicationFailure
	}
	status := Status(int32(le.Uint32(b)))
	nOut := int(b[4])
	b = b[5:]
	if nOut != len(out) {
		return StatusCommunicationFailure, ErrCommunicationFailure
	}
	for i := range out {
		if len(b) < 4 {
			return StatusCommunicationFailure, ErrCommunicationFailure
		}
		n := int(le.Uint32(b))
		b = b[4:]
		if len(b) < n || n > int(out[i].Len) || n > len(out[i].Base) {
			return StatusCommunicationFailure, ErrCommunicationFailure
		}
		copy(out[i].Base, b[:n])
		out[i].Len = uint32(n)
		b = b[n:]
	}
	if len(b) != 0 {
		return StatusCommunicationFailure, ErrCommunicationFailure
	}
	return status, nil
}
