package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/decikv/decikv/pkg/codec"
	"github.com/decikv/decikv/pkg/decimal"
	"github.com/decikv/decikv/pkg/store"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "decikv_rpc_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	engine, err := store.NewEngine(store.Config{DataDir: tmpDir})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := engine.Open(); err != nil {
		t.Fatalf("Failed to open engine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })

	return NewDispatcher(engine, Config{})
}

func call(t *testing.T, d *Dispatcher, body string) *Response {
	t.Helper()
	return d.DispatchRaw(context.Background(), []byte(body))
}

func TestDispatch_CreateReadUpdateDelete(t *testing.T) {
	d := newTestDispatcher(t)

	resp := call(t, d, `{"id":1,"method":"create","params":{"key":"acct","value":"100.50"}}`)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Result)
	assert.Equal(t, "1", string(resp.ID))

	resp = call(t, d, `{"id":2,"method":"read","params":{"key":"acct"}}`)
	assert.Nil(t, resp.Error)
	if assert.NotNil(t, resp.Result) {
		assert.Equal(t, "100.50", *resp.Result)
	}

	resp = call(t, d, `{"id":3,"method":"update","params":{"key":"acct","op":"add","operand":"0.25"}}`)
	assert.Nil(t, resp.Error)
	if assert.NotNil(t, resp.Result) {
		assert.Equal(t, "100.75", *resp.Result)
	}

	resp = call(t, d, `{"id":4,"method":"delete","params":{"key":"acct"}}`)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Result)

	resp = call(t, d, `{"id":5,"method":"read","params":{"key":"acct"}}`)
	if assert.NotNil(t, resp.Error) {
		assert.Equal(t, CodeNotFound, resp.Error.Code)
	}
	assert.Equal(t, "5", string(resp.ID))
}

func TestDispatch_UpdateOps(t *testing.T) {
	d := newTestDispatcher(t)

	resp := call(t, d, `{"id":0,"method":"create","params":{"key":"n","value":"10.00"}}`)
	assert.Nil(t, resp.Error)

	// Each step transforms the value left by the previous one
	steps := []struct {
		name string
		body string
		want string
	}{
		{"Add", `{"id":1,"method":"update","params":{"key":"n","op":"add","operand":"2.5"}}`, "12.50"},
		{"Sub", `{"id":2,"method":"update","params":{"key":"n","op":"sub","operand":"0.50"}}`, "12.00"},
		{"Mul", `{"id":3,"method":"update","params":{"key":"n","op":"mul","operand":"2"}}`, "24.00"},
		{"Div", `{"id":4,"method":"update","params":{"key":"n","op":"div","operand":"7","scale":3}}`, "3.429"},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			resp := call(t, d, step.body)
			assert.Nil(t, resp.Error)
			if assert.NotNil(t, resp.Result) {
				assert.Equal(t, step.want, *resp.Result)
			}
		})
	}
}

func TestDispatch_DefaultDivisionScale(t *testing.T) {
	d := newTestDispatcher(t)

	resp := call(t, d, `{"id":1,"method":"div","params":{"a":"1","b":"3"}}`)
	assert.Nil(t, resp.Error)
	if assert.NotNil(t, resp.Result) {
		assert.Equal(t, "0.3333333333333333", *resp.Result)
	}

	resp = call(t, d, `{"id":2,"method":"create","params":{"key":"third","value":"1"}}`)
	assert.Nil(t, resp.Error)
	resp = call(t, d, `{"id":3,"method":"update","params":{"key":"third","op":"div","operand":"3"}}`)
	assert.Nil(t, resp.Error)
	if assert.NotNil(t, resp.Result) {
		assert.Equal(t, "0.3333333333333333", *resp.Result)
	}
}

func TestDispatch_Arithmetic(t *testing.T) {
	d := newTestDispatcher(t)

	testCases := []struct {
		name string
		body string
		want string
	}{
		{"Add", `{"id":1,"method":"add","params":{"a":"0.1","b":"0.2"}}`, "0.3"},
		{"AddScales", `{"id":2,"method":"add","params":{"a":"1.50","b":"2.25"}}`, "3.75"},
		{"Sub", `{"id":3,"method":"sub","params":{"a":"1","b":"0.001"}}`, "0.999"},
		{"Mul", `{"id":4,"method":"mul","params":{"a":"1.5","b":"2.5"}}`, "3.75"},
		{"MulScaleSums", `{"id":5,"method":"mul","params":{"a":"0.10","b":"0.2"}}`, "0.020"},
		{"DivScale", `{"id":6,"method":"div","params":{"a":"1","b":"3","scale":4}}`, "0.3333"},
		{"DivHalfEven", `{"id":7,"method":"div","params":{"a":"1","b":"8","scale":2}}`, "0.12"},
		{"DivNegative", `{"id":8,"method":"div","params":{"a":"-3","b":"8","scale":2}}`, "-0.38"},
		{"DivExact", `{"id":9,"method":"div","params":{"a":"1","b":"4"}}`, "0.2500000000000000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, d, tc.body)
			assert.Nil(t, resp.Error)
			if assert.NotNil(t, resp.Result) {
				assert.Equal(t, tc.want, *resp.Result)
			}
		})
	}
}

func TestDispatch_DivisionByZero(t *testing.T) {
	d := newTestDispatcher(t)

	resp := call(t, d, `{"id":1,"method":"div","params":{"a":"1","b":"0.00"}}`)
	if assert.NotNil(t, resp.Error) {
		assert.Equal(t, CodeDivisionByZero, resp.Error.Code)
	}
	assert.Nil(t, resp.Result)

	// The same failure through update leaves the stored value untouched
	resp = call(t, d, `{"id":2,"method":"create","params":{"key":"k","value":"5"}}`)
	assert.Nil(t, resp.Error)
	resp = call(t, d, `{"id":3,"method":"update","params":{"key":"k","op":"div","operand":"0"}}`)
	if assert.NotNil(t, resp.Error) {
		assert.Equal(t, CodeDivisionByZero, resp.Error.Code)
	}
	resp = call(t, d, `{"id":4,"method":"read","params":{"key":"k"}}`)
	assert.Nil(t, resp.Error)
	if assert.NotNil(t, resp.Result) {
		assert.Equal(t, "5", *resp.Result)
	}
}

func TestDispatch_Validation(t *testing.T) {
	d := newTestDispatcher(t)

	resp := call(t, d, `{"id":0,"method":"create","params":{"key":"dup","value":"1"}}`)
	assert.Nil(t, resp.Error)

	testCases := []struct {
		name     string
		body     string
		wantCode int
		wantID   string // raw id echoed on the response, "" when unrecoverable
	}{
		{"MalformedJSON", `{"id":1,`, CodeParseError, ""},
		{"MissingID", `{"method":"read","params":{"key":"x"}}`, CodeInvalidRequest, ""},
		{"NullID", `{"id":null,"method":"read","params":{"key":"x"}}`, CodeInvalidRequest, ""},
		{"MissingMethod", `{"id":7,"params":{}}`, CodeInvalidRequest, "7"},
		{"UnknownMethod", `{"id":8,"method":"increment","params":{}}`, CodeMethodNotFound, "8"},
		{"MissingParams", `{"id":9,"method":"read"}`, CodeInvalidParams, "9"},
		{"ParamsWrongType", `{"id":10,"method":"read","params":5}`, CodeInvalidParams, "10"},
		{"EmptyKey", `{"id":11,"method":"read","params":{"key":""}}`, CodeInvalidParams, "11"},
		{"MalformedValue", `{"id":12,"method":"create","params":{"key":"k","value":"1e5"}}`, CodeInvalidParams, "12"},
		{"UnknownOp", `{"id":13,"method":"update","params":{"key":"dup","op":"pow","operand":"2"}}`, CodeInvalidParams, "13"},
		{"NegativeScale", `{"id":14,"method":"div","params":{"a":"1","b":"3","scale":-1}}`, CodeInvalidParams, "14"},
		{"DuplicateCreate", `{"id":15,"method":"create","params":{"key":"dup","value":"2"}}`, CodeAlreadyExists, "15"},
		{"ReadMissing", `{"id":16,"method":"read","params":{"key":"ghost"}}`, CodeNotFound, "16"},
		{"DeleteMissing", `{"id":17,"method":"delete","params":{"key":"ghost"}}`, CodeNotFound, "17"},
		{"UpdateMissing", `{"id":18,"method":"update","params":{"key":"ghost","op":"add","operand":"1"}}`, CodeNotFound, "18"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, d, tc.body)
			if assert.NotNil(t, resp.Error) {
				assert.Equal(t, tc.wantCode, resp.Error.Code)
				assert.NotEmpty(t, resp.Error.Message)
			}
			assert.Nil(t, resp.Result)
			assert.Equal(t, tc.wantID, string(resp.ID))
		})
	}
}

func TestDispatch_IDEcho(t *testing.T) {
	d := newTestDispatcher(t)

	// Number and string ids come back byte for byte
	for _, id := range []string{`1`, `42`, `0`, `"abc-123"`, `"2EWJwQ9LarIYbKCuGfrW7Wnsr3v"`} {
		resp := call(t, d, `{"id":`+id+`,"method":"read","params":{"key":"ghost"}}`)
		assert.Equal(t, id, string(resp.ID))
	}
}

func TestResponseEncoding(t *testing.T) {
	value := "1.50"
	data, err := json.Marshal(&Response{Result: &value, ID: json.RawMessage("42")})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"result":"1.50","error":null,"id":42}`, string(data))

	data, err = json.Marshal(emptyResponse(json.RawMessage("1")))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"result":null,"error":null,"id":1}`, string(data))

	data, err = json.Marshal(errorResponse(nil, &Error{Code: CodeParseError, Message: "parse request: unexpected end of JSON input"}))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"result":null,"error":{"code":-32700,"message":"parse request: unexpected end of JSON input"},"id":null}`, string(data))
}

func TestErrorCodeMapping(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"NotFound", store.ErrNotFound, CodeNotFound},
		{"AlreadyExists", store.ErrAlreadyExists, CodeAlreadyExists},
		{"Conflict", store.ErrConflict, CodeConflict},
		{"Corrupted", fmt.Errorf("record under %q: %w", "k", store.ErrCorrupted), CodeCorrupted},
		{"Truncated", fmt.Errorf("record under %q: %w", "k", codec.ErrTruncated), CodeTruncated},
		{"InvalidKey", store.ErrInvalidKey, CodeInvalidParams},
		{"MalformedDecimal", decimal.ErrMalformed, CodeInvalidParams},
		{"InvalidScale", decimal.ErrInvalidScale, CodeInvalidParams},
		{"DivisionByZero", decimal.ErrDivisionByZero, CodeDivisionByZero},
		{"DeadlineExceeded", context.DeadlineExceeded, CodeTimeout},
		{"Cancelled", context.Canceled, CodeTimeout},
		{"Unknown", errors.New("pebble: write failed"), CodeStorageFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rpcErr := errorFor(tc.err)
			assert.Equal(t, tc.want, rpcErr.Code)
			assert.Equal(t, tc.err.Error(), rpcErr.Message)
		})
	}
}
