package client

import (
	"encoding/binary"

	"xdao.co/psacall/wire"
)

// HashCompute digests input in one call and writes the result into hash,
// returning the digest length.
func (c *Client) HashCompute(alg wire.Algorithm, input, hash []byte) (int, error) {
	h := wire.Header{Selector: wire.SelHashCompute, Alg: alg}
	out, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(input)},
		[]wire.Vec{wire.Bytes(hash)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// HashCompare digests input and compares the result against hash.
func (c *Client) HashCompare(alg wire.Algorithm, input, hash []byte) error {
	h := wire.Header{Selector: wire.SelHashCompare, Alg: alg}
	_, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(input), wire.Bytes(hash)},
		nil,
	)
	return err
}

// HashSetup begins a streaming digest on an unbound operation value.
func (c *Client) HashSetup(op *HashOperation, alg wire.Algorithm) error {
	if err := setupCheck(op.Handle); err != nil {
		return err
	}
	h := wire.Header{Selector: wire.SelHashSetup, Alg: alg}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// HashUpdate feeds input into an active digest operation.
func (c *Client) HashUpdate(op *HashOperation, input []byte) error {
	h := wire.Header{Selector: wire.SelHashUpdate}
	_, err := c.opCall(&h, &op.Handle, []wire.Vec{wire.Bytes(input)}, nil)
	return err
}

// HashFinish terminates a digest operation, writing the digest into hash
// and returning its length.
func (c *Client) HashFinish(op *HashOperation, hash []byte) (int, error) {
	h := wire.Header{Selector: wire.SelHashFinish}
	out, err := c.opCall(&h, &op.Handle, nil, []wire.Vec{wire.Bytes(hash)})
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// HashVerify terminates a digest operation by comparing the digest
// against hash.
func (c *Client) HashVerify(op *HashOperation, hash []byte) error {
	h := wire.Header{Selector: wire.SelHashVerify}
	_, err := c.opCall(&h, &op.Handle, []wire.Vec{wire.Bytes(hash)}, nil)
	return err
}

// HashAbort releases an active digest operation. Aborting is valid from
// any active state and leaves the value ready for a new setup.
func (c *Client) HashAbort(op *HashOperation) error {
	h := wire.Header{Selector: wire.SelHashAbort}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// HashClone duplicates the state of src into dst. dst must be unbound;
// a bound destination fails locally with a state error, without
// dispatching.
func (c *Client) HashClone(src *HashOperation, dst *HashOperation) error {
	if dst.Handle != 0 {
		return wire.ErrBadState
	}
	h := wire.Header{Selector: wire.SelHashClone, Handle: src.Handle}
	hbuf := make([]byte, 4)
	_, err := c.Invoke(&h, nil, []wire.Vec{wire.Bytes(hbuf)})
	if err != nil {
		return err
	}
	dst.Handle = wire.Handle(binary.LittleEndian.Uint32(hbuf))
	return nil
}
