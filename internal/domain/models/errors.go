package models

import (
	"fmt"
	"net/http"
)

// PriceErrorType is a coarse category for spot-price provider failures.
type PriceErrorType string

const (
	PriceErrConfig       PriceErrorType = "CONFIG_ERROR"
	PriceErrRateLimited  PriceErrorType = "RATE_LIMITED"
	PriceErrForbidden    PriceErrorType = "FORBIDDEN"
	PriceErrUnauthorized PriceErrorType = "UNAUTHORIZED"
	PriceErrServer       PriceErrorType = "SERVER_ERROR"
	PriceErrNullResponse PriceErrorType = "NULL_RESPONSE"
	PriceErrAPI          PriceErrorType = "API_ERROR"
	PriceErrJSONParse    PriceErrorType = "JSON_PARSE_ERROR"
	PriceErrInvalidResp  PriceErrorType = "INVALID_RESPONSE"
	PriceErrUnexpected   PriceErrorType = "UNEXPECTED_ERROR"
)

// PriceUnavailableError is the only error type that crosses the core boundary
// for on-demand price fetches. It carries a short request correlation id, the
// provider-reported (or synthesized) HTTP status, and a coarse error category.
type PriceUnavailableError struct {
	Message   string
	Status    int
	Type      PriceErrorType
	RequestID string
	Err       error
}

func (e *PriceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PriceUnavailableError) Unwrap() error { return e.Err }

func (e *PriceUnavailableError) IsRateLimited() bool {
	return e.Status == http.StatusTooManyRequests || e.Type == PriceErrRateLimited
}

// RecommendedStatus maps the failure category to the caller-visible HTTP
// status: 503 for rate limiting (retry later), 502 for everything else
// (upstream degraded).
func (e *PriceUnavailableError) RecommendedStatus() int {
	if e.IsRateLimited() {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

// NewPriceUnavailable builds a categorized provider failure.
func NewPriceUnavailable(message string, status int, t PriceErrorType, requestID string, err error) *PriceUnavailableError {
	return &PriceUnavailableError{
		Message:   message,
		Status:    status,
		Type:      t,
		RequestID: requestID,
		Err:       err,
	}
}
