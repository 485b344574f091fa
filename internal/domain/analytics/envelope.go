package analytics

import (
	"strings"

	"github.com/spf13/cast"
)

// Synthetic status codes used when no vendor response could be obtained.
const (
	// StatusBridgeFailure is emitted by the bridge process for its own failures
	StatusBridgeFailure = -1
	// StatusTransportFailure is emitted by the transport client for network and HTTP failures
	StatusTransportFailure = -2
)

// DefaultErrorMessage is used when a vendor error carries no message field
const DefaultErrorMessage = "Unknown error"

// Envelope is the normalized error/status shape shared by the vendor API,
// the transport client and the bridge.
type Envelope struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
	Error      any    `json:"error,omitempty"`
	ErrorType  string `json:"error_type,omitempty"`
}

// ErrorConvention describes one way the vendor reports an error in a payload.
type ErrorConvention struct {
	Name        string
	CodeKey     string
	MessageKeys []string
}

// ErrorConventions lists the recognized vendor conventions in detection order.
var ErrorConventions = []ErrorConvention{
	{Name: "code", CodeKey: "code", MessageKeys: []string{"message", "status_msg"}},
	{Name: "status_code", CodeKey: "status_code", MessageKeys: []string{"status_msg", "message"}},
}

// DetectError checks a decoded payload against ErrorConventions.
// A convention matches when its code field is present and not zero. Numeric
// strings are compared by value, so "0" is success.
func DetectError(payload any) (*UpstreamError, bool) {
	doc, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	for _, conv := range ErrorConventions {
		raw, present := doc[conv.CodeKey]
		if !present || raw == nil {
			continue
		}
		code, isZero := statusCode(raw)
		if isZero {
			continue
		}
		env := Envelope{
			StatusCode: code,
			StatusMsg:  firstMessage(doc, conv.MessageKeys),
			Error:      doc["error"],
		}
		if et, ok := doc["error_type"].(string); ok {
			env.ErrorType = et
		}
		return &UpstreamError{Convention: conv.Name, Envelope: env}, true
	}
	return nil, false
}

// statusCode converts a raw code field. Non-numeric values count as an error
// and are reported as -1.
func statusCode(raw any) (int, bool) {
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
		if raw == "" {
			return 0, true
		}
	}
	n, err := cast.ToInt64E(raw)
	if err != nil {
		f, ferr := cast.ToFloat64E(raw)
		if ferr != nil {
			return -1, false
		}
		return int(f), f == 0
	}
	return int(n), n == 0
}

func firstMessage(doc map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := doc[k]; ok && v != nil {
			if s := cast.ToString(v); s != "" {
				return s
			}
		}
	}
	return DefaultErrorMessage
}

// Payload renders the envelope as a decoded JSON object so it flows through
// the same checks as a vendor response.
func (e Envelope) Payload() map[string]any {
	m := map[string]any{
		"status_code": e.StatusCode,
		"status_msg":  e.StatusMsg,
	}
	if e.Error != nil {
		m["error"] = e.Error
	}
	if e.ErrorType != "" {
		m["error_type"] = e.ErrorType
	}
	return m
}
