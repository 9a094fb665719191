// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// SearchRoutingKey is the routing key search-worker binds its RPC queue
// to.
const SearchRoutingKey = "search.fulltext.v1"

// DefaultSearchLimit is used when a SearchRequest omits Limit.
const DefaultSearchLimit = 10

// Search answers a SearchRequest RPC by delegating to the full-text
// collaborator and replying via the broker's default-exchange
// RPCRespond, never by returning an error to HandlerRuntime — every path
// here produces a reply, Ok{data} or Error{status,message}.
type Search struct {
	Index     FullTextIndex
	Responder Responder
}

// Run validates req, searches, and replies to (replyTo, correlationID).
// The returned error is only non-nil for failures outside the RPC
// contract itself (the reply publish failed); validation and collaborator
// failures are communicated to the caller as an Error envelope, not as a
// Go error.
func (u *Search) Run(ctx context.Context, replyTo, correlationID string, req SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return u.respondError(ctx, replyTo, correlationID, StatusBadRequest, "query must not be empty")
	}

	limit := DefaultSearchLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	hits, err := u.Index.Search(ctx, req.Query, limit)
	if err != nil {
		return u.respondError(ctx, replyTo, correlationID, StatusInternalServerError, fmt.Sprintf("search failed: %v", err))
	}

	return u.respond(ctx, replyTo, correlationID, RPCEnvelope{
		Ok: &RPCOk{Data: SearchResponse{Results: hits}},
	})
}

func (u *Search) respondError(ctx context.Context, replyTo, correlationID string, status RPCStatus, message string) error {
	return u.respond(ctx, replyTo, correlationID, RPCEnvelope{Error: &RPCError{Status: status, Message: message}})
}

func (u *Search) respond(ctx context.Context, replyTo, correlationID string, envelope RPCEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return Wrap(KindInternal, err)
	}
	if err := u.Responder.RPCRespond(ctx, replyTo, correlationID, payload); err != nil {
		return Wrap(KindTransientUpstream, fmt.Errorf("responding to rpc call: %w", err))
	}
	return nil
}
