package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"go.uber.org/zap"
)

// Network error types reported in transport envelopes
const (
	ErrorTypeTimeout      = "ETIMEDOUT"
	ErrorTypeRefused      = "ECONNREFUSED"
	ErrorTypeNotFound     = "ENOTFOUND"
	ErrorTypeReset        = "ECONNRESET"
	ErrorTypeUnknown      = "UNKNOWN"
	statusRequestFailed   = "request_failed"
	statusInvalidResponse = "invalid_response"
)

// ErrInvalidRequest is returned for requests missing shop credentials
var ErrInvalidRequest = errors.New("tiktok: invalid product list request")

// ProductListRequest is one page query for one shop.
type ProductListRequest struct {
	BaseURL        string
	Cookie         string
	SellerID       string
	Fingerprint    string
	TimezoneOffset int
	StartDate      time.Time
	EndDate        time.Time
	PageNo         int
	PageSize       int
}

// Client calls the product list endpoint.
type Client struct {
	config     Config
	encoder    *QueryEncoder
	invoker    *SigningInvoker
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewClient creates a client. httpClient may be nil.
func NewClient(config Config, invoker *SigningInvoker, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	// copy so the caller's client keeps its own timeout
	hc := *httpClient
	hc.Timeout = config.Timeout
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:     config,
		encoder:    NewQueryEncoder(MsTokenKey),
		invoker:    invoker,
		httpClient: &hc,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// FetchProductList sends one signed request.
//
// HTTP and network failures never produce an error: they come back as an
// envelope payload with status_code -2. The error return is reserved for
// failures before anything was sent (bad input, encoding, signing).
func (c *Client) FetchProductList(ctx context.Context, req ProductListRequest) (any, error) {
	if req.BaseURL == "" || req.SellerID == "" || req.Cookie == "" || req.Fingerprint == "" {
		return nil, ErrInvalidRequest
	}
	baseURL := strings.TrimRight(req.BaseURL, "/")
	tz := req.TimezoneOffset
	if tz == 0 {
		tz = domain.DefaultTimezoneOffset
	}

	msToken := MsTokenFromCookie(req.Cookie)
	if msToken == "" {
		msToken = GenerateMsToken()
	}
	query, err := c.encoder.Encode(ProductListParams(c.config, req.SellerID, req.Fingerprint, msToken))
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(NewProductListBody(req.StartDate, req.EndDate, tz, req.PageNo, req.PageSize, c.now()))
	if err != nil {
		return nil, fmt.Errorf("tiktok: marshal body: %w", err)
	}

	signedURL, err := c.invoker.SignURL(ctx, baseURL+ProductListPath, query, string(body))
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, signedURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tiktok: create request: %w", err)
	}
	c.setHeaders(httpReq, baseURL, req)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("Product list request failed", zap.String("base_url", baseURL), zap.Error(err))
		return domain.Envelope{
			StatusCode: domain.StatusTransportFailure,
			StatusMsg:  statusRequestFailed,
			Error:      err.Error(),
			ErrorType:  networkErrorType(err),
		}.Payload(), nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize))
	if err != nil {
		return domain.Envelope{
			StatusCode: domain.StatusTransportFailure,
			StatusMsg:  statusRequestFailed,
			Error:      err.Error(),
			ErrorType:  networkErrorType(err),
		}.Payload(), nil
	}

	payload, decodeErr := decodePayload(raw)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Product list returned HTTP error", zap.Int("status", resp.StatusCode))
		if decodeErr == nil && payload != nil {
			return payload, nil
		}
		return domain.Envelope{
			StatusCode: domain.StatusTransportFailure,
			StatusMsg:  fmt.Sprintf("HTTP %d", resp.StatusCode),
			Error:      fmt.Sprintf("request failed with status code %d", resp.StatusCode),
		}.Payload(), nil
	}
	if decodeErr != nil {
		return domain.Envelope{
			StatusCode: domain.StatusTransportFailure,
			StatusMsg:  statusInvalidResponse,
			Error:      decodeErr.Error(),
		}.Payload(), nil
	}
	return payload, nil
}

func (c *Client) setHeaders(r *http.Request, baseURL string, req ProductListRequest) {
	referer := fmt.Sprintf("%s/compass/product-analysis?shop_region=US&timeRange=%s%%7C%s",
		baseURL, domain.FormatDate(req.StartDate), domain.FormatDate(req.EndDate))

	h := r.Header
	h.Set("accept", "*/*")
	h.Set("accept-language", "en-US,en;q=0.9")
	h.Set("cache-control", "no-cache")
	h.Set("content-type", "application/json")
	h.Set("origin", baseURL)
	h.Set("pragma", "no-cache")
	h.Set("priority", "u=1, i")
	h.Set("referer", referer)
	h.Set("sec-ch-ua", c.config.SecChUa)
	h.Set("sec-ch-ua-mobile", "?0")
	h.Set("sec-ch-ua-platform", `"macOS"`)
	h.Set("sec-fetch-dest", "empty")
	h.Set("sec-fetch-mode", "cors")
	h.Set("sec-fetch-site", "same-origin")
	h.Set("user-agent", c.config.UserAgent)
	h.Set("cookie", req.Cookie)
}

// decodePayload parses a JSON body keeping numbers as json.Number.
// An empty body is an error.
func decodePayload(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("empty response body")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

// networkErrorType classifies a transport error with the errno-style names
// the bridge protocol reports.
func networkErrorType(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.As(err, &dnsErr):
		if dnsErr.IsTimeout {
			return ErrorTypeTimeout
		}
		return ErrorTypeNotFound
	case errors.Is(err, syscall.ECONNREFUSED):
		return ErrorTypeRefused
	case errors.Is(err, syscall.ECONNRESET):
		return ErrorTypeReset
	case errors.As(err, &netErr) && netErr.Timeout():
		return ErrorTypeTimeout
	}
	return ErrorTypeUnknown
}
