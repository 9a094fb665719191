// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package usecase

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a use-case failure the way HandlerRuntime needs to
// decide ack/nack-with-requeue/nack-without-requeue/RPC-error-response.
type ErrorKind int

const (
	// KindInternal is a logic/invariant violation; nack-without-requeue,
	// logged at error level.
	KindInternal ErrorKind = iota
	// KindDecode is a malformed inbound message; nack-without-requeue.
	KindDecode
	// KindTransientUpstream is a collaborator failure expected to clear on
	// retry (blob not yet available, backend 5xx); nack-with-requeue.
	KindTransientUpstream
	// KindPermanentUpstream is a collaborator failure that will not clear
	// on retry (404 from the blob store); nack-without-requeue.
	KindPermanentUpstream
	// KindExtractionFormat is a malformed EPUB/XML/PDF document;
	// nack-without-requeue.
	KindExtractionFormat
	// KindRPCTimeout is a broker RPC call that did not resolve within its
	// deadline; returned to the caller, reply queue torn down.
	KindRPCTimeout
	// KindValidation is a bad RPC request (missing/empty fields);
	// answered with an Err{status:BadRequest} response, not a nack.
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindDecode:
		return "decode"
	case KindTransientUpstream:
		return "transient_upstream"
	case KindPermanentUpstream:
		return "permanent_upstream"
	case KindExtractionFormat:
		return "extraction_format"
	case KindRPCTimeout:
		return "rpc_timeout"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with the ErrorKind HandlerRuntime needs
// to apply the ack/nack policy from SPEC_FULL.md §7.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("usecase: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds an *Error of the given kind around err. Returns nil if err
// is nil.
func Wrap(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Requeue reports whether a use-case error of this kind should be
// nacked with requeue (transient) rather than without (everything else).
func Requeue(err error) bool {
	var ucErr *Error
	if !errors.As(err, &ucErr) {
		return false
	}
	return ucErr.Kind == KindTransientUpstream
}
