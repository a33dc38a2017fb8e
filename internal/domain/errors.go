package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine-readable category of a domain error.
type Kind string

const (
	KindInvalidBucketID      Kind = "INVALID_BUCKET_ID"
	KindInvalidPagination    Kind = "INVALID_PAGINATION"
	KindEmptySearchCondition Kind = "EMPTY_SEARCH_CONDITION"
	KindEmptyRegion          Kind = "EMPTY_REGION"
	KindInvalidItem          Kind = "INVALID_ITEM"
	KindItemNotFound         Kind = "ITEM_NOT_FOUND"
	KindOutOfStock           Kind = "OUT_OF_STOCK"
	KindStoreUnavailable     Kind = "STORE_UNAVAILABLE"
)

// HTTPStatus maps a kind to the status the request layer renders.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidBucketID, KindInvalidPagination, KindEmptySearchCondition, KindEmptyRegion, KindInvalidItem:
		return http.StatusBadRequest
	case KindItemNotFound, KindOutOfStock:
		return http.StatusNotFound
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed domain failure. Two errors match under errors.Is when their kinds are equal.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Retryable reports whether a caller may retry a read-only operation that failed with e.
// Reservations must never be retried blindly, whatever this returns.
func (e *Error) Retryable() bool { return e.Kind == KindStoreUnavailable }

// Client reports whether the failure is the caller's fault.
func (e *Error) Client() bool {
	s := e.Kind.HTTPStatus()
	return s >= 400 && s < 500
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, cause: cause}
}

// Withf returns a copy of e with a formatted message.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Message: fmt.Sprintf(format, args...), cause: e.cause}
}

var (
	ErrInvalidBucketID      = &Error{Kind: KindInvalidBucketID, Message: "invalid range id"}
	ErrInvalidPagination    = &Error{Kind: KindInvalidPagination, Message: "invalid pagination"}
	ErrEmptySearchCondition = &Error{Kind: KindEmptySearchCondition, Message: "search condition not found"}
	ErrEmptyRegion          = &Error{Kind: KindEmptyRegion, Message: "coordinates are empty"}
	ErrInvalidItem          = &Error{Kind: KindInvalidItem, Message: "invalid item id"}
	ErrItemNotFound         = &Error{Kind: KindItemNotFound, Message: "item not found"}
	ErrOutOfStock           = &Error{Kind: KindOutOfStock, Message: "item is out of stock"}
	ErrStoreUnavailable     = &Error{Kind: KindStoreUnavailable, Message: "store unavailable"}
)

// KindOf extracts the kind of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether err is a domain error eligible for a read retry.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable()
}
