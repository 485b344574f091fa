package tiktok

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	app "github.com/sellerpulse/backend/internal/application/analytics"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/sellerpulse/backend/internal/infrastructure/signer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	inv := NewSigningInvoker(signer.Static("BOGUS"), signer.Static("GNARLY"), cfg.UserAgent, cfg.GnarlyVersion, fixedClock)
	c, err := NewClient(cfg, inv, nil, nil)
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) }
	return c
}

func testRequest(baseURL string) ProductListRequest {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return ProductListRequest{
		BaseURL:     baseURL,
		Cookie:      "sessionid=abc; msToken=cookieTok==",
		SellerID:    "7495",
		Fingerprint: "verify_fp",
		StartDate:   day,
		EndDate:     day,
		PageNo:      1,
		PageSize:    50,
	}
}

// ---------------------------------------------------------------------------
// Request construction
// ---------------------------------------------------------------------------

func TestClient_FetchProductList_Request(t *testing.T) {
	var got *http.Request
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"data":{"items":[]}}`))
	}))
	defer server.Close()

	c := newTestClient(t, DefaultConfig())
	payload, err := c.FetchProductList(context.Background(), testRequest(server.URL+"/"))
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, ProductListPath, got.URL.Path)
	assert.Contains(t, got.URL.RawQuery, "oec_seller_id=7495")
	assert.Contains(t, got.URL.RawQuery, "&msToken=cookieTok==&X-Bogus=BOGUS&X-Gnarly=GNARLY")

	assert.Equal(t, "*/*", got.Header.Get("accept"))
	assert.Equal(t, "application/json", got.Header.Get("content-type"))
	assert.Equal(t, server.URL, got.Header.Get("origin"))
	assert.Equal(t, server.URL+"/compass/product-analysis?shop_region=US&timeRange=2025-03-01%7C2025-03-01", got.Header.Get("referer"))
	assert.Equal(t, DefaultSecChUa, got.Header.Get("sec-ch-ua"))
	assert.Equal(t, `"macOS"`, got.Header.Get("sec-ch-ua-platform"))
	assert.Equal(t, "u=1, i", got.Header.Get("priority"))
	assert.Equal(t, DefaultUserAgent, got.Header.Get("user-agent"))
	assert.Equal(t, "sessionid=abc; msToken=cookieTok==", got.Header.Get("cookie"))

	var body ProductListBody
	require.NoError(t, json.Unmarshal(gotBody, &body))
	assert.Equal(t, "2025-03-01", body.Request.TimeDescriptor.Start)
	assert.Equal(t, "2025-03-02", body.Request.TimeDescriptor.End)
	assert.Equal(t, domain.DefaultTimezoneOffset, body.Request.TimeDescriptor.TimezoneOffset)
	assert.Equal(t, Pagination{Size: 50, Page: 1}, body.Request.ListControl.Pagination)

	_, failed := domain.DetectError(payload)
	assert.False(t, failed)
}

func TestClient_FetchProductList_GeneratesMsToken(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"code":0}`))
	}))
	defer server.Close()

	req := testRequest(server.URL)
	req.Cookie = "sessionid=abc"
	_, err := newTestClient(t, DefaultConfig()).FetchProductList(context.Background(), req)
	require.NoError(t, err)

	q := parseRawQuery(rawQuery)
	assert.Len(t, q["msToken"], msTokenLength)
}

func parseRawQuery(raw string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(raw, "&") {
		if k, v, ok := strings.Cut(part, "="); ok {
			out[k] = v
		}
	}
	return out
}

func TestClient_FetchProductList_InvalidRequest(t *testing.T) {
	c := newTestClient(t, DefaultConfig())
	_, err := c.FetchProductList(context.Background(), ProductListRequest{BaseURL: "https://x"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

// ---------------------------------------------------------------------------
// Failure envelopes
// ---------------------------------------------------------------------------

func TestClient_FetchProductList_Envelopes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    int
		message string
	}{
		{"non-2xx with JSON body passes through", http.StatusForbidden, `{"code":40300,"message":"forbidden"}`, 40300, "forbidden"},
		{"non-2xx without body synthesized", http.StatusBadGateway, ``, domain.StatusTransportFailure, "HTTP 502"},
		{"non-2xx with HTML synthesized", http.StatusServiceUnavailable, `<html>down</html>`, domain.StatusTransportFailure, "HTTP 503"},
		{"2xx with non-JSON body", http.StatusOK, `<html>captcha</html>`, domain.StatusTransportFailure, "invalid_response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			payload, err := newTestClient(t, DefaultConfig()).FetchProductList(context.Background(), testRequest(server.URL))
			require.NoError(t, err)

			upstream, failed := domain.DetectError(payload)
			require.True(t, failed)
			assert.Equal(t, tt.code, upstream.Envelope.StatusCode)
			assert.Equal(t, tt.message, upstream.Envelope.StatusMsg)
		})
	}
}

func TestClient_FetchProductList_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	payload, err := newTestClient(t, DefaultConfig()).FetchProductList(context.Background(), testRequest("http://"+addr))
	require.NoError(t, err)

	m, ok := payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, domain.StatusTransportFailure, m["status_code"])
	assert.Equal(t, "request_failed", m["status_msg"])
	assert.Equal(t, ErrorTypeRefused, m["error_type"])
	assert.NotEmpty(t, m["error"])
}

func TestClient_FetchProductList_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	cfg := DefaultConfig()
	cfg.Timeout = 100 * time.Millisecond
	payload, err := newTestClient(t, cfg).FetchProductList(context.Background(), testRequest(server.URL))
	require.NoError(t, err)

	m := payload.(map[string]any)
	assert.Equal(t, "request_failed", m["status_msg"])
	assert.Equal(t, ErrorTypeTimeout, m["error_type"])
}

func TestClient_FetchProductList_LimitsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"data":{"items":[{"id":"1"}]}}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.MaxResponseSize = 10
	payload, err := newTestClient(t, cfg).FetchProductList(context.Background(), testRequest(server.URL))
	require.NoError(t, err)

	upstream, failed := domain.DetectError(payload)
	require.True(t, failed)
	assert.Equal(t, "invalid_response", upstream.Envelope.StatusMsg)
}

// ---------------------------------------------------------------------------
// Fetcher
// ---------------------------------------------------------------------------

func TestFetcher_FetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body ProductListBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, 3600, body.Request.TimeDescriptor.TimezoneOffset)
		assert.Equal(t, 3, body.Request.ListControl.Pagination.Page)
		_, _ = w.Write([]byte(`{"code":0,"data":{"items":[{"id":"1"}]}}`))
	}))
	defer server.Close()

	f := NewFetcher(newTestClient(t, DefaultConfig()))
	shop := &domain.Shop{
		SellerID:       "7495",
		BaseURL:        server.URL,
		Cookie:         "msToken=t",
		Fingerprint:    "fp",
		TimezoneOffset: 3600,
	}
	shop.ID = uuid.New()

	payload, err := f.FetchPage(context.Background(), app.PageRequest{
		Shop: shop, Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), PageNo: 3, PageSize: 50,
	})
	require.NoError(t, err)
	assert.Len(t, app.NewNormalizer(app.DefaultRules()).Items(payload), 1)
}

func TestFetcher_FetchPage_LocalFailure(t *testing.T) {
	f := NewFetcher(newTestClient(t, DefaultConfig()))
	_, err := f.FetchPage(context.Background(), app.PageRequest{Shop: &domain.Shop{}})
	assert.ErrorIs(t, err, domain.ErrBridgeTransport)
}
