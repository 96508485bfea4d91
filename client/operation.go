package client

import "xdao.co/psacall/wire"

// Operation state values. Each holds only the service's continuation
// handle for one multi-step operation; the zero value is ready for a
// *_setup call. The handle is updated on every successful step and must
// not be copied while an operation is active — the service may reassign
// it on any call.
//
// Streaming operations must be finished, verified, or aborted
// explicitly; nothing is released when the value is dropped.
type (
	HashOperation          struct{ Handle wire.Handle }
	MACOperation           struct{ Handle wire.Handle }
	CipherOperation        struct{ Handle wire.Handle }
	AEADOperation          struct{ Handle wire.Handle }
	KeyDerivationOperation struct{ Handle wire.Handle }
)
