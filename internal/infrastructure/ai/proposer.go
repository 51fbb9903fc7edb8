package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// CommandProposer turns a provider reply into a reviewable proposal.
// Empty or unusable replies surface as proposal failures and never reach
// the policy engine.
type CommandProposer struct {
	provider provider
	model    domain.ModelDefinition
	platform domain.Platform
}

func NewProposer(p provider, model domain.ModelDefinition, platform domain.Platform) *CommandProposer {
	return &CommandProposer{provider: p, model: model, platform: platform}
}

func (c *CommandProposer) Propose(ctx context.Context, task string, taskContext string) (domain.CommandProposal, error) {
	messages, err := renderProposerMessages(c.model, task, taskContext, c.platform)
	if err != nil {
		return domain.CommandProposal{}, &domain.ProposalError{Detail: fmt.Sprintf("render prompt: %v", err)}
	}

	content, err := c.provider.Complete(ctx, completion{Messages: messages, Task: task})
	if err != nil {
		return domain.CommandProposal{}, &domain.ProposalError{Detail: fmt.Sprintf("%s: %v", c.provider.Name(), err)}
	}

	command := extractCommand(content)
	if strings.TrimSpace(command) == "" {
		return domain.CommandProposal{}, &domain.ProposalError{Raw: content, Detail: "empty command"}
	}

	return domain.CommandProposal{
		ID:        uuid.NewString(),
		Command:   command,
		Rationale: fmt.Sprintf("proposed by %s", c.provider.Name()),
	}, nil
}

var _ ports.Proposer = (*CommandProposer)(nil)
