package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/decikv/decikv/pkg/rpc"
)

// handleHealth reports liveness: the process is up and routing requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleRPC runs one protocol request per body. The transport-level status
// is always 200 OK; failures ride inside the response envelope so clients
// only ever parse one shape.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		resp := &rpc.Response{Error: &rpc.Error{
			Code:    rpc.CodeInternalError,
			Message: "failed to read request body",
		}}
		s.metrics.RecordRPCRequest("invalid", resp.Error.Code, time.Since(start))
		writeRPCResponse(w, resp)
		return
	}

	method := "invalid"
	var resp *rpc.Response
	if req, perr := rpc.ParseRequest(body); perr != nil {
		resp = &rpc.Response{Error: &rpc.Error{Code: rpc.CodeParseError, Message: perr.Error()}}
	} else {
		if rpc.KnownMethod(req.Method) {
			method = req.Method
		}
		resp = s.dispatcher.Dispatch(r.Context(), req)
	}

	s.metrics.RecordRPCRequest(method, responseCode(resp), time.Since(start))
	writeRPCResponse(w, resp)
}

// responseCode labels a response for metrics: 0 on success, otherwise the
// protocol error code.
func responseCode(resp *rpc.Response) int {
	if resp.Error != nil {
		return resp.Error.Code
	}
	return 0
}

func writeRPCResponse(w http.ResponseWriter, resp *rpc.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
