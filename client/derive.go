package client

import (
	"encoding/binary"

	"xdao.co/psacall/wire"
)

// KeyDerivationSetup begins a derivation on an unbound operation value.
func (c *Client) KeyDerivationSetup(op *KeyDerivationOperation, alg wire.Algorithm) error {
	if err := setupCheck(op.Handle); err != nil {
		return err
	}
	h := wire.Header{Selector: wire.SelKeyDerivationSetup, Alg: alg}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// KeyDerivationGetCapacity reports how many bytes the operation can
// still produce.
func (c *Client) KeyDerivationGetCapacity(op *KeyDerivationOperation) (uint32, error) {
	h := wire.Header{Selector: wire.SelKeyDerivationGetCapacity}
	capBuf := make([]byte, 4)
	_, err := c.opCall(&h, &op.Handle, nil, []wire.Vec{wire.Bytes(capBuf)})
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(capBuf), nil
}

// KeyDerivationSetCapacity caps how many bytes the operation may
// produce in total.
func (c *Client) KeyDerivationSetCapacity(op *KeyDerivationOperation, capacity uint32) error {
	h := wire.Header{Selector: wire.SelKeyDerivationSetCapacity}
	h.Len[0] = capacity
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// KeyDerivationInputBytes feeds raw data into the derivation step.
func (c *Client) KeyDerivationInputBytes(op *KeyDerivationOperation, step wire.Step, data []byte) error {
	h := wire.Header{Selector: wire.SelKeyDerivationInputBytes, Step: step}
	_, err := c.opCall(&h, &op.Handle, []wire.Vec{wire.Bytes(data)}, nil)
	return err
}

// KeyDerivationInputKey feeds a service-held key into the derivation
// step.
func (c *Client) KeyDerivationInputKey(op *KeyDerivationOperation, step wire.Step, key wire.KeyID) error {
	h := wire.Header{Selector: wire.SelKeyDerivationInputKey, Step: step, KeyID: key}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// KeyDerivationKeyAgreement runs a key agreement between privateKey and
// peerKey and feeds the shared secret into the derivation step.
func (c *Client) KeyDerivationKeyAgreement(op *KeyDerivationOperation, step wire.Step, privateKey wire.KeyID, peerKey []byte) error {
	h := wire.Header{Selector: wire.SelKeyDerivationKeyAgreement, Step: step, KeyID: privateKey}
	_, err := c.opCall(&h, &op.Handle, []wire.Vec{wire.Bytes(peerKey)}, nil)
	return err
}

// KeyDerivationOutputBytes fills output entirely with derived bytes.
// Unlike the other derivation steps, the service does not hand back a
// continuation handle on this call; the operation keeps its current one.
func (c *Client) KeyDerivationOutputBytes(op *KeyDerivationOperation, output []byte) error {
	h := wire.Header{Selector: wire.SelKeyDerivationOutputBytes, Handle: op.Handle}
	_, err := c.Invoke(&h, nil, []wire.Vec{wire.Bytes(output)})
	return err
}

// KeyDerivationOutputKey derives a new key with the given attributes and
// returns its identifier.
func (c *Client) KeyDerivationOutputKey(attrs wire.KeyAttributes, op *KeyDerivationOperation) (wire.KeyID, error) {
	h := wire.Header{Selector: wire.SelKeyDerivationOutputKey}
	idBuf := make([]byte, 4)
	_, err := c.opCall(&h, &op.Handle,
		[]wire.Vec{wire.Bytes(attrs.Encode())},
		[]wire.Vec{wire.Bytes(idBuf)},
	)
	if err != nil {
		return 0, err
	}
	return wire.KeyID(binary.LittleEndian.Uint32(idBuf)), nil
}

// KeyDerivationAbort releases an active derivation.
func (c *Client) KeyDerivationAbort(op *KeyDerivationOperation) error {
	h := wire.Header{Selector: wire.SelKeyDerivationAbort}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// RawKeyAgreement runs a key agreement between privateKey and peerKey in
// one call, writing the shared secret into output and returning its
// length.
func (c *Client) RawKeyAgreement(alg wire.Algorithm, privateKey wire.KeyID, peerKey, output []byte) (int, error) {
	h := wire.Header{Selector: wire.SelRawKeyAgreement, KeyID: privateKey, Alg: alg}
	out, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(peerKey)},
		[]wire.Vec{wire.Bytes(output)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}
