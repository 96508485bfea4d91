package client

import "xdao.co/psacall/wire"

// GenerateRandom fills output with random bytes from the service. A
// zero-capacity request succeeds immediately without dispatching.
func (c *Client) GenerateRandom(output []byte) error {
	if !c.mods.Has(wire.ModuleRandom) {
		return wire.ErrNotSupported
	}
	if len(output) == 0 {
		return nil
	}
	h := wire.Header{Selector: wire.SelGenerateRandom}
	_, err := c.Invoke(&h, nil, []wire.Vec{wire.Bytes(output)})
	return err
}
