package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/decikv/decikv/pkg/rpc"
)

// UDPServer serves the request protocol over UDP. Each datagram carries
// one checksum-framed request and is answered, when answered at all, by a
// single framed response from a dedicated goroutine.
type UDPServer struct {
	config     UDPConfig
	dispatcher Dispatcher
	metrics    *Metrics
	logger     *zap.Logger

	conn *net.UDPConn
	wg   sync.WaitGroup
}

// NewUDPServer creates a new UDP server around dispatcher.
func NewUDPServer(dispatcher Dispatcher, config UDPConfig, metrics *Metrics, logger *zap.Logger) *UDPServer {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	return &UDPServer{
		config:     config,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Start binds the socket and begins serving datagrams in the background.
func (s *UDPServer) Start() error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port))
	if err != nil {
		return fmt.Errorf("resolve udp address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("listen udp: %w", err)
	}
	s.conn = conn

	s.logger.Info("udp server listening", zap.String("addr", conn.LocalAddr().String()))

	s.wg.Add(1)
	go s.serve()
	return nil
}

// Addr returns the bound address, nil before Start. Tests bind port 0 and
// read the real port from here.
func (s *UDPServer) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Close stops the listener and waits for in-flight datagrams.
func (s *UDPServer) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.wg.Wait()
	return err
}

func (s *UDPServer) serve() {
	defer s.wg.Done()

	buf := make([]byte, rpc.MaxDatagramSize)
	for {
		n, peer, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("udp read failed", zap.Error(err))
			continue
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])

		// serve holds one waitgroup slot, so Add never races Close
		s.wg.Add(1)
		go s.handle(datagram, peer)
	}
}

// handle runs one datagram to completion.
func (s *UDPServer) handle(datagram []byte, peer *net.UDPAddr) {
	defer s.wg.Done()

	payload, err := rpc.SplitFrame(datagram)
	if err != nil {
		// Damaged in flight. No response: the sender retries or times out.
		s.metrics.RecordUDPDatagram("dropped")
		s.logger.Warn("dropping damaged datagram",
			zap.String("peer", peer.String()),
			zap.Int("bytes", len(datagram)),
			zap.Error(err))
		return
	}

	req, err := rpc.ParseRequest(payload)
	if err != nil {
		s.metrics.RecordUDPDatagram("parse_error")
		s.respond(peer, &rpc.Response{Error: &rpc.Error{Code: rpc.CodeParseError, Message: err.Error()}})
		return
	}

	s.logger.Debug("handling datagram",
		zap.String("peer", peer.String()),
		zap.String("method", req.Method),
		zap.String("id", string(req.ID)))

	ctx, cancel := context.WithTimeout(context.Background(), s.config.RequestTimeout)
	defer cancel()

	done := make(chan *rpc.Response, 1)
	go func() { done <- s.dispatcher.Dispatch(ctx, req) }()

	select {
	case resp := <-done:
		s.metrics.RecordUDPDatagram("handled")
		s.respond(peer, resp)
	case <-ctx.Done():
		s.metrics.RecordUDPDatagram("timeout")
		s.logger.Warn("request deadline exceeded",
			zap.String("peer", peer.String()),
			zap.String("id", string(req.ID)),
			zap.Duration("ttl", s.config.RequestTimeout))
		s.respond(peer, &rpc.Response{
			Error: &rpc.Error{Code: rpc.CodeTimeout, Message: "server timeout"},
			ID:    req.ID,
		})
	}
}

func (s *UDPServer) respond(peer *net.UDPAddr, resp *rpc.Response) {
	body, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		return
	}
	if _, err := s.conn.WriteToUDP(rpc.AppendFrame(body), peer); err != nil {
		s.logger.Error("failed to send response",
			zap.String("peer", peer.String()),
			zap.Error(err))
		return
	}
	s.logger.Debug("response sent",
		zap.String("peer", peer.String()),
		zap.String("id", string(resp.ID)))
}
