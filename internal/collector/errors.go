package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FetchKind classifies a failed fetch.
type FetchKind string

const (
	KindNetwork         FetchKind = "NETWORK"
	KindTimeout         FetchKind = "TIMEOUT"
	KindMalformedJSON   FetchKind = "MALFORMED_JSON"
	KindUnexpectedShape FetchKind = "UNEXPECTED_SHAPE"
)

// FetchError is a recoverable failure to obtain a valid screener response.
type FetchError struct {
	Kind    FetchKind
	Profile string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Profile != "" {
		return fmt.Sprintf("fetch %s: %s: %v", e.Profile, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch: %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StatusError is returned by HTTP fetchers for a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d, body: %s", e.Code, e.Body)
}

// KindOf returns the fetch error kind carried by err, or "" if err is not a FetchError.
func KindOf(err error) FetchKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// classifyTransport maps a transport error to NETWORK or TIMEOUT.
func classifyTransport(profile string, err error) *FetchError {
	kind := KindNetwork
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		kind = KindTimeout
	}
	return &FetchError{Kind: kind, Profile: profile, Err: err}
}
