// Package rpc implements the request protocol of decikv: a JSON-RPC shaped
// envelope carrying CRUD and arithmetic calls, dispatched onto the storage
// engine and the decimal package.
//
// # Requests and Responses
//
// A request is a JSON object {id, method, params} and every request gets
// exactly one response {result, error, id}. Both result and error are
// always present in the encoded response, the unused one as null, and the
// id echoes the request id byte for byte. Methods:
//
//	create  {key, value}                 -> null
//	read    {key}                        -> decimal string
//	update  {key, op, operand, scale?}   -> decimal string (new value)
//	delete  {key}                        -> null
//	add     {a, b}                       -> decimal string
//	sub     {a, b}                       -> decimal string
//	mul     {a, b}                       -> decimal string
//	div     {a, b, scale?}               -> decimal string
//
// update applies op (one of add, sub, mul, div) to the stored value and the
// operand atomically; concurrent updates of one key serialize through the
// engine's compare-and-swap loop. The arithmetic methods compute over their
// two literals without touching storage.
//
// # Error Codes
//
// Failures map onto a fixed code table: -32700 parse error, -32600 invalid
// request, -32601 method not found, -32602 invalid params, -32603 internal
// error, then -32000 storage failure, -32001 not found, -32002 already
// exists, -32003 conflict, -32004 corrupted record, -32005 truncated
// record, -32006 division by zero and -32007 timeout.
//
// # Datagram Framing
//
// Transports that carry whole messages per packet frame them with
// AppendFrame and SplitFrame: the JSON payload followed by its CRC32
// checksum in little-endian byte order. A datagram whose trailer does not
// match was damaged in flight and is dropped without a response.
package rpc
