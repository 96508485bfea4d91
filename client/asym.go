package client

import "xdao.co/psacall/wire"

// SignMessage signs input with key, writing the signature into signature
// and returning its length.
func (c *Client) SignMessage(key wire.KeyID, alg wire.Algorithm, input, signature []byte) (int, error) {
	h := wire.Header{Selector: wire.SelSignMessage, KeyID: key, Alg: alg}
	out, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(input)},
		[]wire.Vec{wire.Bytes(signature)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// VerifyMessage checks that signature is a valid signature of input
// under key.
func (c *Client) VerifyMessage(key wire.KeyID, alg wire.Algorithm, input, signature []byte) error {
	h := wire.Header{Selector: wire.SelVerifyMessage, KeyID: key, Alg: alg}
	_, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(input), wire.Bytes(signature)},
		nil,
	)
	return err
}

// SignHash signs a precomputed digest with key, writing the signature
// into signature and returning its length.
func (c *Client) SignHash(key wire.KeyID, alg wire.Algorithm, hash, signature []byte) (int, error) {
	h := wire.Header{Selector: wire.SelSignHash, KeyID: key, Alg: alg}
	out, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(hash)},
		[]wire.Vec{wire.Bytes(signature)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// VerifyHash checks that signature is a valid signature of a precomputed
// digest under key.
func (c *Client) VerifyHash(key wire.KeyID, alg wire.Algorithm, hash, signature []byte) error {
	h := wire.Header{Selector: wire.SelVerifyHash, KeyID: key, Alg: alg}
	_, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(hash), wire.Bytes(signature)},
		nil,
	)
	return err
}

// AsymmetricEncrypt encrypts input under a public key. salt is optional:
// nil omits its descriptor. Returns the bytes written into output.
func (c *Client) AsymmetricEncrypt(key wire.KeyID, alg wire.Algorithm, input, salt, output []byte) (int, error) {
	h := wire.Header{Selector: wire.SelAsymmetricEncrypt, KeyID: key, Alg: alg}
	out, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(input), wire.Bytes(salt)},
		[]wire.Vec{wire.Bytes(output)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// AsymmetricDecrypt decrypts input with a private key. salt is optional
// and must match the value used at encryption time. Returns the bytes
// written into output.
func (c *Client) AsymmetricDecrypt(key wire.KeyID, alg wire.Algorithm, input, salt, output []byte) (int, error) {
	h := wire.Header{Selector: wire.SelAsymmetricDecrypt, KeyID: key, Alg: alg}
	out, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(input), wire.Bytes(salt)},
		[]wire.Vec{wire.Bytes(output)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}
