package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	app "github.com/sellerpulse/backend/internal/application/analytics"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"go.uber.org/zap"
)

// DefaultCallTimeout bounds one bridge invocation end to end
const DefaultCallTimeout = 45 * time.Second

// ErrEmptyOutput is returned when the child wrote nothing to stdout
var ErrEmptyOutput = errors.New("bridge: empty output")

// ClientConfig configures the parent side of the bridge.
type ClientConfig struct {
	// Path is the bridge executable; Args are passed before any input.
	Path    string
	Args    []string
	Timeout time.Duration
}

// Client runs the bridge executable once per page.
type Client struct {
	config ClientConfig
	logger *zap.Logger
}

// NewClient creates a bridge client
func NewClient(config ClientConfig, logger *zap.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultCallTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{config: config, logger: logger}
}

// RequestFor maps a page request to the bridge input for a single day.
func RequestFor(req app.PageRequest) Request {
	date := domain.FormatDate(req.Date)
	return Request{
		Cookie:         req.Shop.Cookie,
		OecSellerID:    req.Shop.SellerID,
		BaseURL:        req.Shop.BaseURL,
		Fp:             req.Shop.Fingerprint,
		TimezoneOffset: req.Shop.EffectiveTimezoneOffset(),
		StartDate:      date,
		EndDate:        date,
		PageNo:         req.PageNo,
		PageSize:       req.PageSize,
	}
}

// FetchPage implements analytics.PageFetcher.
//
// Stdout is parsed whatever the exit code, since the child reports its own
// failures as envelopes. Only a failed start or unparseable output is an error.
func (c *Client) FetchPage(ctx context.Context, req app.PageRequest) (any, error) {
	input, err := json.Marshal(RequestFor(req))
	if err != nil {
		return nil, fmt.Errorf("%w: marshal input: %v", domain.ErrBridgeTransport, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.config.Path, c.config.Args...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()

	if s := strings.TrimSpace(stderr.String()); s != "" {
		c.logger.Debug("Bridge stderr", zap.String("stderr", s))
	}

	if runErr != nil && cmd.ProcessState == nil {
		return nil, fmt.Errorf("%w: start %s: %v", domain.ErrBridgeTransport, c.config.Path, runErr)
	}
	if runErr != nil {
		c.logger.Warn("Bridge exited with error",
			zap.Int("page_no", req.PageNo),
			zap.Duration("duration", time.Since(start)),
			zap.Error(runErr),
		)
	}

	payload, err := parseOutput(stdout.Bytes())
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBridgeTransport, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrBridgeTransport, err)
	}
	return payload, nil
}

// parseOutput decodes the single JSON value on stdout.
func parseOutput(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrEmptyOutput
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("bridge: invalid output: %w", err)
	}
	return v, nil
}

var _ app.PageFetcher = (*Client)(nil)
