package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/decikv/decikv/pkg/rpc"
)

// DefaultCallTimeout bounds a call when the context carries no deadline.
const DefaultCallTimeout = 5 * time.Second

// ErrTimeout is returned when no matching reply arrives before the call
// deadline.
var ErrTimeout = errors.New("client: call timed out")

// Option configures a Client.
type Option func(*Client)

// WithCallTimeout overrides the fallback deadline applied when the
// context has none.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Client is a connection to one decikv UDP endpoint. It is safe for
// concurrent use; calls are serialized on the underlying socket.
type Client struct {
	conn    *net.UDPConn
	timeout time.Duration

	mu  sync.Mutex
	buf []byte
}

// New connects a Client to the server at addr, a host:port string.
func New(addr string, opts ...Option) (*Client, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: resolve %q: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("client: dial %q: %w", addr, err)
	}

	c := &Client{
		conn:    conn,
		timeout: DefaultCallTimeout,
		buf:     make([]byte, rpc.MaxDatagramSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the socket. In-flight calls fail.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Call builds a request for method with params and executes it. The
// request id is a fresh ksuid string.
func (c *Client) Call(ctx context.Context, method string, params interface{}) (*rpc.Response, error) {
	req := &rpc.Request{Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("client: encode params: %w", err)
		}
		req.Params = raw
	}
	return c.Do(ctx, req)
}

// Do sends req and waits for its reply. A request with no id is assigned
// a fresh ksuid string id before it is sent. Datagrams that fail the
// checksum or answer a different id are dropped; the deadline bounds the
// wait.
func (c *Client) Do(ctx context.Context, req *rpc.Request) (*rpc.Response, error) {
	if req == nil {
		return nil, errors.New("client: request is nil")
	}
	if len(req.ID) == 0 {
		req.ID, _ = json.Marshal(ksuid.New().String())
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("client: encode request: %w", err)
	}
	frame := rpc.AppendFrame(body)
	if len(frame) > rpc.MaxDatagramSize {
		return nil, fmt.Errorf("client: request of %d bytes exceeds the %d byte datagram limit", len(frame), rpc.MaxDatagramSize)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Cancellation pokes the read deadline so a blocked Read wakes up.
	stop := context.AfterFunc(ctx, func() { c.conn.SetReadDeadline(time.Now()) })
	defer stop()

	if _, err := c.conn.Write(frame); err != nil {
		return nil, fmt.Errorf("client: send: %w", err)
	}

	for {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("client: set deadline: %w", err)
		}
		n, err := c.conn.Read(c.buf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				if errors.Is(ctxErr, context.DeadlineExceeded) {
					return nil, ErrTimeout
				}
				return nil, ctxErr
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if time.Now().Before(deadline) {
					// Woken by a stale interrupt, keep waiting.
					continue
				}
				return nil, ErrTimeout
			}
			return nil, fmt.Errorf("client: receive: %w", err)
		}

		payload, err := rpc.SplitFrame(c.buf[:n])
		if err != nil {
			// Damaged in flight, wait for a clean reply.
			continue
		}
		var resp rpc.Response
		if err := json.Unmarshal(payload, &resp); err != nil {
			continue
		}
		if string(resp.ID) != string(req.ID) {
			// Answer to an earlier, timed out call.
			continue
		}
		return &resp, nil
	}
}

// Create stores value under key.
func (c *Client) Create(ctx context.Context, key, value string) error {
	_, err := c.result(ctx, rpc.MethodCreate, rpc.CreateParams{Key: key, Value: value})
	return err
}

// Read returns the value stored under key.
func (c *Client) Read(ctx context.Context, key string) (string, error) {
	return c.result(ctx, rpc.MethodRead, rpc.ReadParams{Key: key})
}

// Update applies op with operand to the value under key and returns the
// new value. Scale only matters for op "div" and falls back to the
// server's division scale when nil.
func (c *Client) Update(ctx context.Context, key, op, operand string, scale *int32) (string, error) {
	return c.result(ctx, rpc.MethodUpdate, rpc.UpdateParams{Key: key, Op: op, Operand: operand, Scale: scale})
}

// Delete removes the value stored under key.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.result(ctx, rpc.MethodDelete, rpc.DeleteParams{Key: key})
	return err
}

// Add returns a+b.
func (c *Client) Add(ctx context.Context, a, b string) (string, error) {
	return c.result(ctx, rpc.MethodAdd, rpc.BinaryParams{A: a, B: b})
}

// Sub returns a-b.
func (c *Client) Sub(ctx context.Context, a, b string) (string, error) {
	return c.result(ctx, rpc.MethodSub, rpc.BinaryParams{A: a, B: b})
}

// Mul returns a*b.
func (c *Client) Mul(ctx context.Context, a, b string) (string, error) {
	return c.result(ctx, rpc.MethodMul, rpc.BinaryParams{A: a, B: b})
}

// Div returns a/b rounded half to even at scale, or at the server's
// division scale when scale is nil.
func (c *Client) Div(ctx context.Context, a, b string, scale *int32) (string, error) {
	return c.result(ctx, rpc.MethodDiv, rpc.BinaryParams{A: a, B: b, Scale: scale})
}

// Scale is a convenience for building the optional scale argument.
func Scale(n int32) *int32 {
	return &n
}

// result runs one call and unwraps the response envelope.
func (c *Client) result(ctx context.Context, method string, params interface{}) (string, error) {
	resp, err := c.Call(ctx, method, params)
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", resp.Error
	}
	if resp.Result == nil {
		return "", nil
	}
	return *resp.Result, nil
}
