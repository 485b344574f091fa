package analytics

import (
	"errors"
	"fmt"

	"github.com/sellerpulse/backend/internal/domain/shared"
)

// Recoverable ingestion failures. They stop a page, a date or a record, never a sync.
var (
	// ErrBridgeTransport covers network failures, subprocess timeouts and unparseable bridge output.
	ErrBridgeTransport = errors.New("analytics: bridge transport failure")
	// ErrUpstreamAPI is reported when the vendor payload carries a nonzero error code.
	ErrUpstreamAPI = errors.New("analytics: upstream api error")
	// ErrExtractionMiss is reported when no identity field can be resolved for a product.
	ErrExtractionMiss = errors.New("analytics: product identity not found")
	// ErrPersistence wraps constraint and validation failures while upserting a record.
	ErrPersistence = errors.New("analytics: persistence failure")
)

// Surfaced errors.
var (
	ErrShopNotFound      = shared.NewDomainError(shared.CodeNotFound, "Shop not found")
	ErrSnapshotNotFound  = shared.NewDomainError(shared.CodeNotFound, "Snapshot not found")
	ErrProductNotFound   = shared.NewDomainError(shared.CodeNotFound, "Product not found")
	ErrInvalidDateRange  = NewValidationError("start_date must be before or equal to end_date")
	ErrDatesRequired     = NewValidationError("start_date and end_date are required")
	ErrInvalidDateFormat = NewValidationError("Invalid date format. Use YYYY-MM-DD")
	ErrInvalidMinGMV     = NewValidationError("min_gmv must be a decimal number")
)

// Entity validation errors.
var (
	ErrShopSellerIDRequired = errors.New("analytics: shop seller id is required")
	ErrShopBaseURLRequired  = errors.New("analytics: shop base url is required")
	ErrExternalIDRequired   = errors.New("analytics: product external id is required")
	ErrNegativeGMV          = errors.New("analytics: snapshot gmv must be non-negative")
	ErrNegativeItemsSold    = errors.New("analytics: snapshot items sold must be non-negative")
	ErrNegativeOrdersCount  = errors.New("analytics: snapshot orders count must be non-negative")
	ErrSnapshotDateRequired = errors.New("analytics: snapshot date is required")
)

// NewValidationError creates a validation error that surfaces as a 400.
func NewValidationError(message string) *shared.DomainError {
	return shared.NewDomainError(shared.CodeValidation, message)
}

// UpstreamError is an ErrUpstreamAPI carrying the normalized vendor envelope.
type UpstreamError struct {
	Convention string
	Envelope   Envelope
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s=%d message=%s", ErrUpstreamAPI, e.Convention, e.Envelope.StatusCode, e.Envelope.StatusMsg)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstreamAPI
}
