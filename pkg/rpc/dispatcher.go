package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/decikv/decikv/pkg/decimal"
	"github.com/decikv/decikv/pkg/store"
)

// DefaultDivisionScale is the div target scale when a request omits one.
const DefaultDivisionScale = 16

// Config tunes dispatch behavior.
type Config struct {
	// DivisionScale is the target scale for div results when the request
	// does not carry a scale field. Zero means DefaultDivisionScale; a
	// request wanting integer division passes scale 0 explicitly.
	DivisionScale int32
}

// Dispatcher validates requests and routes storage methods to the engine
// and arithmetic methods to the decimal package. A single instance serves
// all transports concurrently.
type Dispatcher struct {
	engine        *store.Engine
	divisionScale int32
}

// NewDispatcher builds a dispatcher over engine.
func NewDispatcher(engine *store.Engine, cfg Config) *Dispatcher {
	scale := cfg.DivisionScale
	if scale == 0 {
		scale = DefaultDivisionScale
	}
	return &Dispatcher{engine: engine, divisionScale: scale}
}

// DispatchRaw parses a JSON request body and dispatches it. A body that
// does not parse yields a parse-error response with a null id.
func (d *Dispatcher) DispatchRaw(ctx context.Context, body []byte) *Response {
	req, err := ParseRequest(body)
	if err != nil {
		return errorResponse(nil, &Error{Code: CodeParseError, Message: err.Error()})
	}
	return d.Dispatch(ctx, req)
}

// Dispatch runs one request to completion. It always returns a response,
// echoing the request id; validation failures take the error path without
// touching storage.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = errorResponse(req.ID, &Error{
				Code:    CodeInternalError,
				Message: fmt.Sprintf("internal error: %v", r),
			})
		}
	}()

	if len(req.ID) == 0 || string(req.ID) == "null" {
		return errorResponse(nil, &Error{Code: CodeInvalidRequest, Message: "request id is required"})
	}

	switch req.Method {
	case MethodCreate:
		return d.create(req)
	case MethodRead:
		return d.read(req)
	case MethodUpdate:
		return d.update(ctx, req)
	case MethodDelete:
		return d.delete(req)
	case MethodAdd, MethodSub, MethodMul, MethodDiv:
		return d.binary(req)
	case "":
		return errorResponse(req.ID, &Error{Code: CodeInvalidRequest, Message: "request method is required"})
	default:
		return errorResponse(req.ID, &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)})
	}
}

func (d *Dispatcher) create(req *Request) *Response {
	var p CreateParams
	if rpcErr := unmarshalParams(req.Params, &p); rpcErr != nil {
		return errorResponse(req.ID, rpcErr)
	}
	if p.Key == "" {
		return errorResponse(req.ID, invalidParams("params.key is required"))
	}
	if p.Value == "" {
		return errorResponse(req.ID, invalidParams("params.value is required"))
	}

	value, err := decimal.Parse(p.Value)
	if err != nil {
		return errorResponse(req.ID, errorFor(err))
	}
	if err := d.engine.Create(p.Key, value); err != nil {
		return errorResponse(req.ID, errorFor(err))
	}
	return emptyResponse(req.ID)
}

func (d *Dispatcher) read(req *Request) *Response {
	var p ReadParams
	if rpcErr := unmarshalParams(req.Params, &p); rpcErr != nil {
		return errorResponse(req.ID, rpcErr)
	}
	if p.Key == "" {
		return errorResponse(req.ID, invalidParams("params.key is required"))
	}

	value, err := d.engine.Read(p.Key)
	if err != nil {
		return errorResponse(req.ID, errorFor(err))
	}
	return resultResponse(req.ID, value.String())
}

func (d *Dispatcher) update(ctx context.Context, req *Request) *Response {
	var p UpdateParams
	if rpcErr := unmarshalParams(req.Params, &p); rpcErr != nil {
		return errorResponse(req.ID, rpcErr)
	}
	if p.Key == "" {
		return errorResponse(req.ID, invalidParams("params.key is required"))
	}
	if p.Op == "" {
		return errorResponse(req.ID, invalidParams("params.op is required"))
	}
	if p.Operand == "" {
		return errorResponse(req.ID, invalidParams("params.operand is required"))
	}

	operand, err := decimal.Parse(p.Operand)
	if err != nil {
		return errorResponse(req.ID, errorFor(err))
	}
	apply, rpcErr := d.transformFor(p.Op, operand, p.Scale)
	if rpcErr != nil {
		return errorResponse(req.ID, rpcErr)
	}

	next, err := d.engine.Update(ctx, p.Key, apply)
	if err != nil {
		return errorResponse(req.ID, errorFor(err))
	}
	return resultResponse(req.ID, next.String())
}

func (d *Dispatcher) delete(req *Request) *Response {
	var p DeleteParams
	if rpcErr := unmarshalParams(req.Params, &p); rpcErr != nil {
		return errorResponse(req.ID, rpcErr)
	}
	if p.Key == "" {
		return errorResponse(req.ID, invalidParams("params.key is required"))
	}

	if err := d.engine.Delete(p.Key); err != nil {
		return errorResponse(req.ID, errorFor(err))
	}
	return emptyResponse(req.ID)
}

// binary handles the pure arithmetic methods. Nothing is read from or
// written to storage.
func (d *Dispatcher) binary(req *Request) *Response {
	var p BinaryParams
	if rpcErr := unmarshalParams(req.Params, &p); rpcErr != nil {
		return errorResponse(req.ID, rpcErr)
	}
	if p.A == "" {
		return errorResponse(req.ID, invalidParams("params.a is required"))
	}
	if p.B == "" {
		return errorResponse(req.ID, invalidParams("params.b is required"))
	}

	a, err := decimal.Parse(p.A)
	if err != nil {
		return errorResponse(req.ID, errorFor(err))
	}
	b, err := decimal.Parse(p.B)
	if err != nil {
		return errorResponse(req.ID, errorFor(err))
	}

	var result decimal.Decimal
	switch req.Method {
	case MethodAdd:
		result = a.Add(b)
	case MethodSub:
		result = a.Sub(b)
	case MethodMul:
		result = a.Mul(b)
	case MethodDiv:
		result, err = a.Div(b, d.scaleOr(p.Scale))
		if err != nil {
			return errorResponse(req.ID, errorFor(err))
		}
	}
	return resultResponse(req.ID, result.String())
}

// transformFor builds the read-modify-write function update hands to the
// engine.
func (d *Dispatcher) transformFor(op string, operand decimal.Decimal, scale *int32) (store.Transform, *Error) {
	switch op {
	case MethodAdd:
		return func(cur decimal.Decimal) (decimal.Decimal, error) {
			return cur.Add(operand), nil
		}, nil
	case MethodSub:
		return func(cur decimal.Decimal) (decimal.Decimal, error) {
			return cur.Sub(operand), nil
		}, nil
	case MethodMul:
		return func(cur decimal.Decimal) (decimal.Decimal, error) {
			return cur.Mul(operand), nil
		}, nil
	case MethodDiv:
		target := d.scaleOr(scale)
		return func(cur decimal.Decimal) (decimal.Decimal, error) {
			return cur.Div(operand, target)
		}, nil
	default:
		return nil, invalidParams("params.op %q is not one of add, sub, mul, div", op)
	}
}

func (d *Dispatcher) scaleOr(scale *int32) int32 {
	if scale != nil {
		return *scale
	}
	return d.divisionScale
}

func unmarshalParams(raw json.RawMessage, into interface{}) *Error {
	if len(raw) == 0 {
		return invalidParams("params object is required")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return invalidParams("malformed params: %v", err)
	}
	return nil
}
