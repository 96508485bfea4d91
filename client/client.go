// Package client turns typed cryptographic-operation calls into fixed
// envelopes dispatched over a channel.Channel and decodes the results
// back into typed outputs.
//
// The package performs no cryptography and never interprets key,
// algorithm, or continuation-handle semantics: it shapes and ships
// parameters, unshapes results, and nothing else. Cheap local checks
// (absent-module, oversize inline values, descriptor mismatches,
// clone-onto-bound-target) short-circuit before dispatch; every other
// outcome is the service's verbatim status surfaced as an error.
//
// A Client holds no mutable state and is safe for concurrent use.
// Issuing concurrent calls against the same operation value is a caller
// error whose outcome belongs to the service.
package client

import (
	"encoding/binary"

	"xdao.co/psacall/channel"
	"xdao.co/psacall/wire"
)

// ModuleSet is the capability table of a build: which operation families
// the connected service provides. Calls into an absent family fail
// locally with wire.ErrNotSupported, without dispatching.
type ModuleSet uint32

// Has reports whether module m is enabled.
func (s ModuleSet) Has(m wire.Module) bool {
	if m == 0 || int(m) > 32 {
		return false
	}
	return s&(1<<(uint(m)-1)) != 0
}

// With returns s with module m enabled.
func (s ModuleSet) With(m wire.Module) ModuleSet {
	return s | 1<<(uint(m)-1)
}

// Without returns s with module m disabled.
func (s ModuleSet) Without(m wire.Module) ModuleSet {
	return s &^ (1 << (uint(m) - 1))
}

// AllModules enables every operation family.
const AllModules ModuleSet = 1<<(wire.ModuleKeys-1) |
	1<<(wire.ModuleHash-1) |
	1<<(wire.ModuleMAC-1) |
	1<<(wire.ModuleCipher-1) |
	1<<(wire.ModuleAEAD-1) |
	1<<(wire.ModuleAsymSign-1) |
	1<<(wire.ModuleAsymEncrypt-1) |
	1<<(wire.ModuleDerive-1) |
	1<<(wire.ModuleRandom-1)

// Client is the request-encoding / response-decoding layer over one
// channel binding.
type Client struct {
	ch   channel.Channel
	mods ModuleSet
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithModules fixes the capability table. The default is AllModules.
func WithModules(mods ModuleSet) Option {
	return func(c *Client) { c.mods = mods }
}

// New builds a client over the given channel binding.
func New(ch channel.Channel, opts ...Option) *Client {
	c := &Client{ch: ch, mods: AllModules}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Invoke assembles and dispatches one call: capability check, descriptor
// assembly (mismatch validation and tail trimming), header descriptor
// prepended, then a single blocking channel call. It returns the
// dispatched output vectors so callers can read produced lengths, and a
// nil error only for a success status.
//
// The typed operation methods all funnel through Invoke; it is exported
// for callers that need to drive the raw descriptor form directly.
func (c *Client) Invoke(h *wire.Header, in, out []wire.Vec) ([]wire.Vec, error) {
	if !c.mods.Has(h.Selector.Module()) {
		return nil, wire.ErrNotSupported
	}
	ain, aout, err := wire.Assemble(h.Selector, in, out)
	if err != nil {
		return nil, err
	}
	full := make([]wire.Vec, 0, 1+len(ain))
	full = append(full, wire.Bytes(h.Encode()))
	full = append(full, ain...)

	if err := c.ch.Call(h.Selector, full, aout).Err(); err != nil {
		return nil, err
	}
	return aout, nil
}

// opCall dispatches a streaming-operation step: the caller-held handle
// rides in the header, and out[0] receives the (possibly reassigned)
// handle, which is written back into the caller's operation state only
// on success.
func (c *Client) opCall(h *wire.Header, hp *wire.Handle, in, out []wire.Vec) ([]wire.Vec, error) {
	h.Handle = *hp
	hbuf := make([]byte, 4)
	allOut := make([]wire.Vec, 0, 1+len(out))
	allOut = append(allOut, wire.Bytes(hbuf))
	allOut = append(allOut, out...)

	aout, err := c.Invoke(h, in, allOut)
	if err != nil {
		return nil, err
	}
	*hp = wire.Handle(binary.LittleEndian.Uint32(hbuf))
	return aout[1:], nil
}

// setupCheck enforces that an operation value is unbound before a
// *_setup call. A stale nonzero handle fails locally with a state error
// rather than leaking undefined client state into a request.
func setupCheck(h wire.Handle) error {
	if h != 0 {
		return wire.ErrBadState
	}
	return nil
}

// producedLen reports the bytes produced by output descriptor i, or 0 if
// the descriptor was elided during assembly.
func producedLen(out []wire.Vec, i int) int {
	if i >= len(out) {
		return 0
	}
	return int(out[i].Len)
}
