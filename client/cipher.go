package client

import "xdao.co/psacall/wire"

// CipherEncrypt encrypts input under key in one call. The service picks
// the IV and prepends it to the output. Returns the bytes written.
func (c *Client) CipherEncrypt(key wire.KeyID, alg wire.Algorithm, input, output []byte) (int, error) {
	h := wire.Header{Selector: wire.SelCipherEncrypt, KeyID: key, Alg: alg}
	out, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(input)},
		[]wire.Vec{wire.Bytes(output)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// CipherDecrypt decrypts input (IV-prefixed) under key in one call.
// Returns the bytes written.
func (c *Client) CipherDecrypt(key wire.KeyID, alg wire.Algorithm, input, output []byte) (int, error) {
	h := wire.Header{Selector: wire.SelCipherDecrypt, KeyID: key, Alg: alg}
	out, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(input)},
		[]wire.Vec{wire.Bytes(output)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// CipherEncryptSetup begins a streaming encryption on an unbound
// operation value.
func (c *Client) CipherEncryptSetup(op *CipherOperation, key wire.KeyID, alg wire.Algorithm) error {
	if err := setupCheck(op.Handle); err != nil {
		return err
	}
	h := wire.Header{Selector: wire.SelCipherEncryptSetup, KeyID: key, Alg: alg}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// CipherDecryptSetup begins a streaming decryption on an unbound
// operation value.
func (c *Client) CipherDecryptSetup(op *CipherOperation, key wire.KeyID, alg wire.Algorithm) error {
	if err := setupCheck(op.Handle); err != nil {
		return err
	}
	h := wire.Header{Selector: wire.SelCipherDecryptSetup, KeyID: key, Alg: alg}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// CipherGenerateIV has the service pick an IV for an active encryption,
// writing it into iv and returning its length.
func (c *Client) CipherGenerateIV(op *CipherOperation, iv []byte) (int, error) {
	h := wire.Header{Selector: wire.SelCipherGenerateIV}
	out, err := c.opCall(&h, &op.Handle, nil, []wire.Vec{wire.Bytes(iv)})
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// CipherSetIV supplies the IV for an active operation.
func (c *Client) CipherSetIV(op *CipherOperation, iv []byte) error {
	h := wire.Header{Selector: wire.SelCipherSetIV}
	_, err := c.opCall(&h, &op.Handle, []wire.Vec{wire.Bytes(iv)}, nil)
	return err
}

// CipherUpdate feeds input into an active operation and writes produced
// bytes into output, returning their count.
func (c *Client) CipherUpdate(op *CipherOperation, input, output []byte) (int, error) {
	h := wire.Header{Selector: wire.SelCipherUpdate}
	out, err := c.opCall(&h, &op.Handle,
		[]wire.Vec{wire.Bytes(input)},
		[]wire.Vec{wire.Bytes(output)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// CipherFinish terminates a streaming operation, writing any remaining
// bytes into output and returning their count.
func (c *Client) CipherFinish(op *CipherOperation, output []byte) (int, error) {
	h := wire.Header{Selector: wire.SelCipherFinish}
	out, err := c.opCall(&h, &op.Handle, nil, []wire.Vec{wire.Bytes(output)})
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// CipherAbort releases an active cipher operation.
func (c *Client) CipherAbort(op *CipherOperation) error {
	h := wire.Header{Selector: wire.SelCipherAbort}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}
