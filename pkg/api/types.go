package api

//go:generate mockgen -destination=./mock_dispatcher.go -package=api . Dispatcher

import (
	"context"
	"time"

	"github.com/decikv/decikv/pkg/rpc"
)

// DefaultRequestTimeout bounds how long a datagram request may run before
// the server answers with a timeout error.
const DefaultRequestTimeout = 5 * time.Second

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the HTTP API server
type ServerConfig struct {
	Bind   string // Listen address, empty binds all interfaces
	Port   int
	APIKey string // Static key checked against X-API-Key; empty disables auth
}

// UDPConfig holds configuration for the UDP datagram server
type UDPConfig struct {
	Bind           string
	Port           int
	RequestTimeout time.Duration // Per-request TTL, DefaultRequestTimeout when zero
}

// Dispatcher routes one decoded request and always yields a response. Both
// transports share a single instance.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *rpc.Request) *rpc.Response
}
