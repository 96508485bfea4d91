// Package wire defines the call envelope exchanged with a crypto service:
// the fixed-size request header, the {buffer, length} descriptor vectors,
// the status taxonomy, and the byte framing used by remote channel
// bindings.
//
// The package is pure data shaping. It performs no cryptography and never
// interprets key, algorithm, or continuation-handle values; those belong
// to the service on the far side of the channel.
package wire
