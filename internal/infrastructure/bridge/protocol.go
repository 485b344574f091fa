// Package bridge implements the stdin/stdout protocol that isolates request
// signing and transport in a child process.
//
// The child reads exactly one JSON request from stdin and always writes
// exactly one JSON value to stdout: the raw vendor payload on success or a
// failure envelope otherwise.
package bridge

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
)

// Failure envelope error types
const (
	ErrorTypeTimeout     = "TIMEOUT"
	ErrorTypeNoInput     = "NO_INPUT"
	ErrorTypeInvalidJSON = "INVALID_JSON"
	ErrorTypeValidation  = "VALIDATION"
	ErrorTypeInternal    = "INTERNAL"
)

// Request defaults
const (
	DefaultPageSize = 10
)

// Request is the single JSON object read from stdin.
type Request struct {
	Cookie         string `json:"cookie" validate:"required"`
	OecSellerID    string `json:"oecSellerId" validate:"required"`
	BaseURL        string `json:"baseUrl" validate:"required"`
	Fp             string `json:"fp" validate:"required"`
	TimezoneOffset int    `json:"timezoneOffset,omitempty"`
	StartDate      string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PageNo         int    `json:"pageNo,omitempty" validate:"gte=0"`
	PageSize       int    `json:"pageSize,omitempty" validate:"gte=0"`
}

// ApplyDefaults fills optional fields
func (r *Request) ApplyDefaults() {
	if r.PageSize == 0 {
		r.PageSize = DefaultPageSize
	}
	if r.TimezoneOffset == 0 {
		r.TimezoneOffset = domain.DefaultTimezoneOffset
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks required fields. The message names the first failing field.
func (r *Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s parameter is required", fe.Field())
	case "datetime":
		return fmt.Errorf("%s must be a YYYY-MM-DD date", fe.Field())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}

// Failure builds the failure envelope written on every error path.
func Failure(errorType, message string) domain.Envelope {
	return domain.Envelope{
		StatusCode: domain.StatusBridgeFailure,
		StatusMsg:  message,
		Error:      true,
		ErrorType:  errorType,
	}
}
