// Package client implements the Go SDK for the decikv datagram protocol.
// A Client owns one UDP socket and serializes calls over it. Each call
// frames a JSON request with a CRC32 trailer, sends it, and waits for the
// framed reply whose id matches the request. Replies that fail the
// checksum are discarded, so a damaged answer surfaces as ErrTimeout
// rather than a decode error. Failures reported by the server carry the
// protocol error object and are returned as *rpc.Error values, so callers
// can switch on the code.
package client
