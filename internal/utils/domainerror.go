package utils

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind is the error taxonomy described by the error-handling design:
// each kind maps to exactly one HTTP status and logging treatment.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindConflict
	KindUpstreamTimeout
	KindUpstreamHTTP
	KindInternal
)

// DomainError is the single error type service-layer code should return so
// handlers can translate it with one switch instead of ad hoc status codes.
type DomainError struct {
	Kind          ErrorKind
	Message       string
	Entity        string // populated for KindNotFound
	UpstreamCode  int    // populated for KindUpstreamHTTP
	UpstreamBody  string // truncated to 500 chars by NewUpstreamHTTPError
	Cause         error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Cause }

func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

func NewNotFoundError(entity string) *DomainError {
	return &DomainError{Kind: KindNotFound, Entity: entity, Message: entity + " not found"}
}

func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

func NewUpstreamTimeoutError(message string) *DomainError {
	return &DomainError{Kind: KindUpstreamTimeout, Message: message}
}

const maxUpstreamBodySnippet = 500

// NewUpstreamHTTPError tags an error with the upstream status code and a
// body snippet truncated to 500 chars for the caller's log.
func NewUpstreamHTTPError(message string, upstreamCode int, body string) *DomainError {
	if len(body) > maxUpstreamBodySnippet {
		body = body[:maxUpstreamBodySnippet]
	}
	return &DomainError{Kind: KindUpstreamHTTP, Message: message, UpstreamCode: upstreamCode, UpstreamBody: body}
}

func NewInternalError(err error) *DomainError {
	return &DomainError{Kind: KindInternal, Message: "internal error", Cause: err}
}

// WriteDomainError translates a DomainError (or any other error, treated as
// internal) into the appropriate HTTP response.
func WriteDomainError(c *fiber.Ctx, err error) error {
	de, ok := err.(*DomainError)
	if !ok {
		return SendInternalServerError(c, err.Error())
	}

	switch de.Kind {
	case KindValidation:
		return SendError(c, http.StatusBadRequest, de.Message)
	case KindNotFound:
		return SendNotFoundError(c, de.Entity)
	case KindConflict:
		return SendConflictError(c, de.Message)
	case KindUpstreamTimeout:
		return SendUpstreamError(c, http.StatusGatewayTimeout, de.Message, de.UpstreamBody)
	case KindUpstreamHTTP:
		return SendUpstreamError(c, http.StatusBadGateway, de.Message,
			fmt.Sprintf("upstream status %d: %s", de.UpstreamCode, de.UpstreamBody))
	default:
		return SendInternalServerError(c, de.Message)
	}
}
