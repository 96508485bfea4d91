// Package channel declares the synchronous call capability connecting
// the client layer to a crypto service. The two shipped bindings — the
// in-process service (softserv) and the gRPC transport (grpcchan) — are
// interchangeable behind this interface; the client is indifferent to
// which one is wired in.
package channel

import "xdao.co/psacall/wire"

// Channel is the single point of contact with the service. Call blocks
// until the service has produced its reply: one request in flight per
// call, no asynchronous continuation.
//
// in[0] is always the encoded envelope header. For output vectors the
// service overwrites Len in place with the bytes actually produced;
// those lengths are meaningful only when the returned status is
// wire.StatusSuccess.
//
// Implementations do not interpret status codes; they pass them through.
type Channel interface {
	Call(sel wire.Selector, in []wire.Vec, out []wire.Vec) wire.Status
}

// Func adapts a plain function to the Channel interface, the direct-call
// binding in its smallest form.
type Func func(sel wire.Selector, in []wire.Vec, out []wire.Vec) wire.Status

func (f Func) Call(sel wire.Selector, in []wire.Vec, out []wire.Vec) wire.Status {
	return f(sel, in, out)
}
