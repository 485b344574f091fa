package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultIdleTimeout bounds the wait for the first byte of input
const DefaultIdleTimeout = 5 * time.Second

// Handler answers one validated request with the payload to emit.
type Handler interface {
	Handle(ctx context.Context, req Request) (any, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, req Request) (any, error)

// Handle calls f
func (f HandlerFunc) Handle(ctx context.Context, req Request) (any, error) {
	return f(ctx, req)
}

// Server runs the child side of the protocol.
type Server struct {
	handler     Handler
	idleTimeout time.Duration
	logger      *zap.Logger
}

// NewServer creates a server. The logger must not write to stdout.
func NewServer(handler Handler, idleTimeout time.Duration, logger *zap.Logger) *Server {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{handler: handler, idleTimeout: idleTimeout, logger: logger}
}

// Serve reads one request from in, writes one JSON value to out and returns
// the process exit code: 0 on success, 1 on any failure envelope.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) (code int) {
	emit := func(v any) {
		if err := json.NewEncoder(out).Encode(v); err != nil {
			s.logger.Error("Failed to write bridge output", zap.Error(err))
		}
	}
	fail := func(errorType, message string) int {
		s.logger.Warn("Bridge request failed", zap.String("error_type", errorType), zap.String("message", message))
		emit(Failure(errorType, message))
		return 1
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Bridge handler panicked", zap.Any("panic", r), zap.Stack("stack"))
			code = fail(ErrorTypeInternal, fmt.Sprintf("%v", r))
		}
	}()

	raw, err := s.readInput(ctx, in)
	if err != nil {
		return fail(ErrorTypeTimeout, err.Error())
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fail(ErrorTypeNoInput, "No input data provided")
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return fail(ErrorTypeInvalidJSON, err.Error())
	}
	if err := req.Validate(); err != nil {
		return fail(ErrorTypeValidation, err.Error())
	}
	req.ApplyDefaults()

	payload, err := s.handler.Handle(ctx, req)
	if err != nil {
		return fail(ErrorTypeInternal, err.Error())
	}
	emit(payload)
	return 0
}

// readInput reads all of in, failing when no byte arrives within the idle timeout.
func (s *Server) readInput(ctx context.Context, in io.Reader) ([]byte, error) {
	first := make(chan struct{})
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(&notifyReader{r: in, first: first})
		done <- result{data, err}
	}()

	timer := time.NewTimer(s.idleTimeout)
	defer timer.Stop()

	select {
	case <-first:
	case res := <-done:
		return res.data, res.err
	case <-timer.C:
		return nil, fmt.Errorf("Timeout: No input received within %s", s.idleTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-done:
		return res.data, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// notifyReader closes first once the first byte has been read.
type notifyReader struct {
	r     io.Reader
	first chan struct{}
	once  sync.Once
}

func (n *notifyReader) Read(p []byte) (int, error) {
	c, err := n.r.Read(p)
	if c > 0 {
		n.once.Do(func() { close(n.first) })
	}
	return c, err
}
