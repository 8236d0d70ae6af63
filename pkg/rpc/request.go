package rpc

import (
	"encoding/json"
	"fmt"
)

// Method names recognized by the dispatcher.
const (
	MethodCreate = "create"
	MethodRead   = "read"
	MethodUpdate = "update"
	MethodDelete = "delete"
	MethodAdd    = "add"
	MethodSub    = "sub"
	MethodMul    = "mul"
	MethodDiv    = "div"
)

// KnownMethod reports whether name is a recognized method. Transports use
// it to keep attacker-chosen method strings out of metric labels.
func KnownMethod(name string) bool {
	switch name {
	case MethodCreate, MethodRead, MethodUpdate, MethodDelete,
		MethodAdd, MethodSub, MethodMul, MethodDiv:
		return true
	}
	return false
}

// Request is the wire form of a single call. The id is kept raw so the
// response can echo it byte for byte, number and string ids alike.
type Request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the wire form of a reply. Result and Error are both always
// present in the encoded JSON, the unused one as null. Exactly one is set
// on any response the dispatcher builds.
type Response struct {
	Result *string         `json:"result"`
	Error  *Error          `json:"error"`
	ID     json.RawMessage `json:"id"`
}

// CreateParams carries the arguments for create.
type CreateParams struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ReadParams carries the arguments for read.
type ReadParams struct {
	Key string `json:"key"`
}

// UpdateParams carries the arguments for update. Op names the transform
// applied to the stored value. Scale only matters for op "div" and falls
// back to the dispatcher's division scale when nil.
type UpdateParams struct {
	Key     string `json:"key"`
	Op      string `json:"op"`
	Operand string `json:"operand"`
	Scale   *int32 `json:"scale,omitempty"`
}

// DeleteParams carries the arguments for delete.
type DeleteParams struct {
	Key string `json:"key"`
}

// BinaryParams carries the operands for add, sub, mul and div. Scale only
// matters for div and falls back to the dispatcher's division scale when nil.
type BinaryParams struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Scale *int32 `json:"scale,omitempty"`
}

// ParseRequest decodes a JSON request body.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return &req, nil
}

// resultResponse builds a success reply carrying a value.
func resultResponse(id json.RawMessage, result string) *Response {
	return &Response{Result: &result, ID: id}
}

// emptyResponse builds a success reply with a null result, the shape
// create and delete answer with.
func emptyResponse(id json.RawMessage) *Response {
	return &Response{ID: id}
}

// errorResponse builds a failure reply. A nil id encodes as null, used
// when the request id could not be recovered.
func errorResponse(id json.RawMessage, rpcErr *Error) *Response {
	return &Response{Error: rpcErr, ID: id}
}
