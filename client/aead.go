package client

import "xdao.co/psacall/wire"

// AEADEncrypt seals plaintext under key in one call. The nonce rides
// inline in the envelope and is bounded by wire.MaxInline; longer nonces
// fail locally before anything is copied. additionalData is optional:
// nil omits its descriptor entirely (an empty non-nil slice sends an
// empty descriptor). Returns the ciphertext length (tag included).
func (c *Client) AEADEncrypt(key wire.KeyID, alg wire.Algorithm, nonce, additionalData, plaintext, ciphertext []byte) (int, error) {
	h := wire.Header{Selector: wire.SelAEADEncrypt, KeyID: key, Alg: alg}
	if err := h.SetInline(nonce); err != nil {
		return 0, err
	}
	out, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(plaintext), wire.Bytes(additionalData)},
		[]wire.Vec{wire.Bytes(ciphertext)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// AEADDecrypt opens ciphertext (tag included) under key in one call.
// See AEADEncrypt for nonce and additionalData handling. Returns the
// plaintext length.
func (c *Client) AEADDecrypt(key wire.KeyID, alg wire.Algorithm, nonce, additionalData, ciphertext, plaintext []byte) (int, error) {
	h := wire.Header{Selector: wire.SelAEADDecrypt, KeyID: key, Alg: alg}
	if err := h.SetInline(nonce); err != nil {
		return 0, err
	}
	out, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(ciphertext), wire.Bytes(additionalData)},
		[]wire.Vec{wire.Bytes(plaintext)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// AEADEncryptSetup begins a streaming authenticated encryption on an
// unbound operation value.
func (c *Client) AEADEncryptSetup(op *AEADOperation, key wire.KeyID, alg wire.Algorithm) error {
	if err := setupCheck(op.Handle); err != nil {
		return err
	}
	h := wire.Header{Selector: wire.SelAEADEncryptSetup, KeyID: key, Alg: alg}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// AEADDecryptSetup begins a streaming authenticated decryption on an
// unbound operation value.
func (c *Client) AEADDecryptSetup(op *AEADOperation, key wire.KeyID, alg wire.Algorithm) error {
	if err := setupCheck(op.Handle); err != nil {
		return err
	}
	h := wire.Header{Selector: wire.SelAEADDecryptSetup, KeyID: key, Alg: alg}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// AEADGenerateNonce has the service pick a nonce for an active
// encryption, writing it into nonce and returning its length.
func (c *Client) AEADGenerateNonce(op *AEADOperation, nonce []byte) (int, error) {
	h := wire.Header{Selector: wire.SelAEADGenerateNonce}
	out, err := c.opCall(&h, &op.Handle, nil, []wire.Vec{wire.Bytes(nonce)})
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// AEADSetNonce supplies the nonce for an active operation.
func (c *Client) AEADSetNonce(op *AEADOperation, nonce []byte) error {
	h := wire.Header{Selector: wire.SelAEADSetNonce}
	_, err := c.opCall(&h, &op.Handle, []wire.Vec{wire.Bytes(nonce)}, nil)
	return err
}

// AEADSetLengths declares the total additional-data and plaintext sizes
// of an active operation ahead of the data.
func (c *Client) AEADSetLengths(op *AEADOperation, adLength, plaintextLength uint32) error {
	h := wire.Header{Selector: wire.SelAEADSetLengths}
	h.Len[0] = adLength
	h.Len[1] = plaintextLength
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}

// AEADUpdateAD feeds additional data into an active operation. A nil
// input omits the descriptor.
func (c *Client) AEADUpdateAD(op *AEADOperation, input []byte) error {
	h := wire.Header{Selector: wire.SelAEADUpdateAD}
	_, err := c.opCall(&h, &op.Handle, []wire.Vec{wire.Bytes(input)}, nil)
	return err
}

// AEADUpdate feeds message data into an active operation and writes any
// produced bytes into output, returning their count. A nil input omits
// its descriptor.
func (c *Client) AEADUpdate(op *AEADOperation, input, output []byte) (int, error) {
	h := wire.Header{Selector: wire.SelAEADUpdate}
	out, err := c.opCall(&h, &op.Handle,
		[]wire.Vec{wire.Bytes(input)},
		[]wire.Vec{wire.Bytes(output)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// AEADFinish terminates a streaming encryption: remaining ciphertext
// goes into ciphertext (optional; nil or zero-capacity elides the
// descriptor and reports length 0) and the tag into tag. Returns the
// ciphertext and tag lengths.
func (c *Client) AEADFinish(op *AEADOperation, ciphertext, tag []byte) (int, int, error) {
	h := wire.Header{Selector: wire.SelAEADFinish}
	out, err := c.opCall(&h, &op.Handle, nil,
		[]wire.Vec{wire.Bytes(tag), wire.Bytes(ciphertext)},
	)
	if err != nil {
		return 0, 0, err
	}
	return producedLen(out, 1), producedLen(out, 0), nil
}

// AEADVerify terminates a streaming decryption, checking tag and writing
// any remaining plaintext into plaintext (optional; nil or zero-capacity
// elides the descriptor and reports length 0). Returns the plaintext
// length.
func (c *Client) AEADVerify(op *AEADOperation, plaintext, tag []byte) (int, error) {
	h := wire.Header{Selector: wire.SelAEADVerify}
	out, err := c.opCall(&h, &op.Handle,
		[]wire.Vec{wire.Bytes(tag)},
		[]wire.Vec{wire.Bytes(plaintext)},
	)
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// AEADAbort releases an active AEAD operation.
func (c *Client) AEADAbort(op *AEADOperation) error {
	h := wire.Header{Selector: wire.SelAEADAbort}
	_, err := c.opCall(&h, &op.Handle, nil, nil)
	return err
}
