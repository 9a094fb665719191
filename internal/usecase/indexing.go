// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package usecase

import (
	"context"
	"fmt"
)

// Indexing saves one ExtractedContent message into the full-text
// collaborator.
type Indexing struct {
	Index FullTextIndex
}

// Run indexes req.ExtractedContent. Collaborator failures are treated as
// transient: a full-text index write failure is expected to clear on
// retry (segment merge in progress, disk pressure), not a permanent
// rejection of the document.
func (u *Indexing) Run(ctx context.Context, req IndexRequest) error {
	if err := u.Index.Save(ctx, req.ExtractedContent); err != nil {
		return Wrap(KindTransientUpstream, fmt.Errorf("indexing %s: %w", req.ID, err))
	}
	return nil
}
