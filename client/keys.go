package client

import (
	"encoding/binary"

	"xdao.co/psacall/wire"
)

// ImportKey loads key material into the service under the given
// attributes and returns the identifier of the new key.
func (c *Client) ImportKey(attrs wire.KeyAttributes, data []byte) (wire.KeyID, error) {
	h := wire.Header{Selector: wire.SelImportKey}
	idBuf := make([]byte, 4)
	_, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(attrs.Encode()), wire.Bytes(data)},
		[]wire.Vec{wire.Bytes(idBuf)},
	)
	if err != nil {
		return 0, err
	}
	return wire.KeyID(binary.LittleEndian.Uint32(idBuf)), nil
}

// GenerateKey asks the service to generate a key with the given
// attributes and returns its identifier.
func (c *Client) GenerateKey(attrs wire.KeyAttributes) (wire.KeyID, error) {
	h := wire.Header{Selector: wire.SelGenerateKey}
	idBuf := make([]byte, 4)
	_, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(attrs.Encode())},
		[]wire.Vec{wire.Bytes(idBuf)},
	)
	if err != nil {
		return 0, err
	}
	return wire.KeyID(binary.LittleEndian.Uint32(idBuf)), nil
}

// OpenKey makes a persistent key usable and returns the identifier to
// use for subsequent operations.
func (c *Client) OpenKey(id wire.KeyID) (wire.KeyID, error) {
	h := wire.Header{Selector: wire.SelOpenKey}
	req := make([]byte, 4)
	binary.LittleEndian.PutUint32(req, uint32(id))
	idBuf := make([]byte, 4)
	_, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(req)},
		[]wire.Vec{wire.Bytes(idBuf)},
	)
	if err != nil {
		return 0, err
	}
	return wire.KeyID(binary.LittleEndian.Uint32(idBuf)), nil
}

// CloseKey releases a key opened with OpenKey.
func (c *Client) CloseKey(id wire.KeyID) error {
	h := wire.Header{Selector: wire.SelCloseKey, KeyID: id}
	_, err := c.Invoke(&h, nil, nil)
	return err
}

// DestroyKey destroys a key and its material.
func (c *Client) DestroyKey(id wire.KeyID) error {
	h := wire.Header{Selector: wire.SelDestroyKey, KeyID: id}
	_, err := c.Invoke(&h, nil, nil)
	return err
}

// PurgeKey removes transient copies of a persistent key.
func (c *Client) PurgeKey(id wire.KeyID) error {
	h := wire.Header{Selector: wire.SelPurgeKey, KeyID: id}
	_, err := c.Invoke(&h, nil, nil)
	return err
}

// CopyKey duplicates src under the given attributes and returns the new
// key's identifier.
func (c *Client) CopyKey(src wire.KeyID, attrs wire.KeyAttributes) (wire.KeyID, error) {
	h := wire.Header{Selector: wire.SelCopyKey, KeyID: src}
	idBuf := make([]byte, 4)
	_, err := c.Invoke(&h,
		[]wire.Vec{wire.Bytes(attrs.Encode())},
		[]wire.Vec{wire.Bytes(idBuf)},
	)
	if err != nil {
		return 0, err
	}
	return wire.KeyID(binary.LittleEndian.Uint32(idBuf)), nil
}

// GetKeyAttributes fetches the attributes of a key.
func (c *Client) GetKeyAttributes(id wire.KeyID) (wire.KeyAttributes, error) {
	h := wire.Header{Selector: wire.SelGetKeyAttributes, KeyID: id}
	blob := make([]byte, wire.KeyAttributesSize)
	_, err := c.Invoke(&h, nil, []wire.Vec{wire.Bytes(blob)})
	if err != nil {
		return wire.KeyAttributes{}, err
	}
	return wire.DecodeKeyAttributes(blob)
}

// ExportKey writes the key material into data and returns the number of
// bytes produced.
func (c *Client) ExportKey(id wire.KeyID, data []byte) (int, error) {
	h := wire.Header{Selector: wire.SelExportKey, KeyID: id}
	out, err := c.Invoke(&h, nil, []wire.Vec{wire.Bytes(data)})
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}

// ExportPublicKey writes the public part of an asymmetric key into data
// and returns the number of bytes produced.
func (c *Client) ExportPublicKey(id wire.KeyID, data []byte) (int, error) {
	h := wire.Header{Selector: wire.SelExportPublicKey, KeyID: id}
	out, err := c.Invoke(&h, nil, []wire.Vec{wire.Bytes(data)})
	if err != nil {
		return 0, err
	}
	return producedLen(out, 0), nil
}
