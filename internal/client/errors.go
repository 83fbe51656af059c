package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"articledesk/internal/domain"
)

// Kind classifies a failed call the way views react to it.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindServer
	// KindTransient means no structured response arrived.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server"
	case KindTransient:
		return "transient"
	}
	return "unknown"
}

// Error is returned for every failed backend call. Unwrap yields the
// matching domain error, so domain.IsConflict and friends work on it.
type Error struct {
	Kind      Kind
	Status    int
	Message   string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports a network-level failure.
func IsTransient(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindTransient
}

func transient(err error) *Error {
	return &Error{Kind: KindTransient, Message: err.Error(), Err: err}
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// responseError builds the Error for a non-2xx response.
func responseError(resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Message
		if msg == "" {
			msg = body.Error
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	e := &Error{Status: resp.StatusCode, Message: msg, RequestID: body.RequestID}
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		e.Kind, e.Err = KindValidation, domain.ValidationError{Msg: msg}
	case http.StatusUnauthorized:
		e.Kind, e.Err = KindUnauthorized, domain.UnauthorizedError{Msg: msg}
	case http.StatusForbidden:
		e.Kind, e.Err = KindForbidden, domain.ForbiddenError{Msg: msg}
	case http.StatusNotFound:
		e.Kind, e.Err = KindNotFound, domain.NotFoundError{Resource: "resource"}
	case http.StatusConflict:
		e.Kind, e.Err = KindConflict, domain.ConflictError{Msg: msg}
	default:
		e.Kind, e.Err = KindServer, domain.InternalError{Msg: msg}
	}
	return e
}
