// Package softserv is a software reference implementation of the crypto
// service this module's client talks to. It implements channel.Channel
// directly, so it doubles as the in-process (direct) channel binding and
// as the backend behind the gRPC binding.
//
// Keys live in a volatile in-memory store and streaming operations hand
// out a fresh continuation handle on every successful call, which keeps
// clients honest about threading handles between steps.
package softserv
