package client

import "xdao.co/psacall/wire"

// MACCompute computes the MAC of input under key in one call, writing it
// into mac and returning its length.
func (c *Client) MACCompute(key wire.KeyID, alg wire.Algorithm, input, mac []byte) (int, error) {
	h := wire.Header{Selector: wire.SelMACCompute, KeyID: key, Alg: alg}
	out, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(input)},
		[]wire.Vec{wire.Bytes(mac)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// MACVerify computes the MAC of input under key and compares it against
// mac in one call.
func (c *Client) MACVerify(key wire.KeyID, alg wire.Algorithm, input, mac []byte) error {
	h := wire.Header{Selector: wire.SelMACVerify, KeyID: key, Alg: alg}
	_, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(input), wire.Bytes(mac)},
		nil,
	)
	return err
}

// MACSignSetup begins a streaming MAC computation on an unbound
// operation value.
func (c *Client) MACSignSetup(op *MACOperation, key wire.KeyID, alg wire.Algorithm) error {
	if err := setupCheck(op.Handle); err != nil {
		return err
	}
	h := wire.Header{Selector: wire.SelMACSignSetup, KeyID: key, Alg: alg}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// MACVerifySetup begins a streaming MAC verification on an unbound
// operation value.
func (c *Client) MACVerifySetup(op *MACOperation, key wire.KeyID, alg wire.Algorithm) error {
	if err := setupCheck(op.Handle); err != nil {
		return err
	}
	h := wire.Header{Selector: wire.SelMACVerifySetup, KeyID: key, Alg: alg}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// MACUpdate feeds input into an active MAC operation.
func (c *Client) MACUpdate(op *MACOperation, input []byte) error {
	h := wire.Header{Selector: wire.SelMACUpdate}
	_, err := c.opCall(&h, &op.Handle, []wire.Vec{wire.Bytes(input)}, nil)
	return err
}

// MACSignFinish terminates a MAC computation, writing the MAC into mac
// and returning its length.
func (c *Client) MACSignFinish(op *MACOperation, mac []byte) (int, error) {
	h := wire.Header{Selector: wire.SelMACSignFinish}
	out, err := c.opCall(&h, &op.Handle, nil, []wire.Vec{wire.Bytes(mac)})
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// MACVerifyFinish terminates a MAC verification by comparing against mac.
func (c *Client) MACVerifyFinish(op *MACOperation, mac []byte) error {
	h := wire.Header{Selector: wire.SelMACVerifyFinish}
	_, err := c.opCall(&h, &op.Handle, []wire.Vec{wire.Bytes(mac)}, nil)
	return err
}

// MACAbort releases an active MAC operation.
func (c *Client) MACAbort(op *MACOperation) error {
	h := wire.Header{Selector: wire.SelMACAbort}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}
