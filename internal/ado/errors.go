package ado

import (
	"errors"
	"fmt"
)

// Error kinds reported by KindOf.
const (
	KindQuery    = "query"
	KindFetch    = "fetch"
	KindInternal = "internal"
)

// UpstreamQueryError is returned when the WIQL endpoint answers with a non-success status.
type UpstreamQueryError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamQueryError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Body)
}

// UpstreamFetchError is returned when a work item batch call answers with a non-success status.
type UpstreamFetchError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Body)
}

// InternalError covers transport failures and malformed responses.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// KindOf classifies an error returned by this package.
// Anything that is not an upstream status error counts as internal.
func KindOf(err error) string {
	var qe *UpstreamQueryError
	if errors.As(err, &qe) {
		return KindQuery
	}
	var fe *UpstreamFetchError
	if errors.As(err, &fe) {
		return KindFetch
	}
	return KindInternal
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var qe *UpstreamQueryError
	if errors.As(err, &qe) {
		return qe.StatusCode
	}
	var fe *UpstreamFetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
