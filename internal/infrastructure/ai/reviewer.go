package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// GenerativeReviewer asks a backend for a second opinion on an already
// policy-approved proposal. The reply must parse as a single
// {"approved": ..., "reasoning": ...} object; anything else is rejected
// outright rather than guessed at.
type GenerativeReviewer struct {
	provider provider
	platform domain.Platform
}

func NewReviewer(p provider, platform domain.Platform) *GenerativeReviewer {
	return &GenerativeReviewer{provider: p, platform: platform}
}

func (r *GenerativeReviewer) Assess(ctx context.Context, proposal domain.CommandProposal, taskContext string) (domain.ReviewVerdict, error) {
	messages, err := renderReviewerMessages(proposal, taskContext, r.platform)
	if err != nil {
		return domain.ReviewVerdict{}, err
	}

	content, err := r.provider.Complete(ctx, completion{Messages: messages})
	if err != nil {
		return domain.ReviewVerdict{}, fmt.Errorf("reviewer %s: %w", r.provider.Name(), err)
	}

	return parseVerdict(proposal, content)
}

func parseVerdict(proposal domain.CommandProposal, content string) (domain.ReviewVerdict, error) {
	raw := extractJSONObject(content)
	if raw == "" {
		return domain.ReviewVerdict{}, fmt.Errorf("%w: no JSON object in %q", domain.ErrReviewerMalformed, content)
	}

	var parsed struct {
		Approved  *bool  `json:"approved"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return domain.ReviewVerdict{}, fmt.Errorf("%w: %v", domain.ErrReviewerMalformed, err)
	}
	if parsed.Approved == nil {
		return domain.ReviewVerdict{}, fmt.Errorf("%w: missing approved field", domain.ErrReviewerMalformed)
	}

	if *parsed.Approved {
		return domain.Approve(proposal, parsed.Reasoning), nil
	}
	return domain.Reject(proposal, domain.CategorySafety, parsed.Reasoning), nil
}

var _ ports.Reviewer = (*GenerativeReviewer)(nil)
