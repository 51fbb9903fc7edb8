package ai

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/doeshing/cmdgate/internal/domain"
)

type templateData struct {
	Task      string
	Context   string
	Platform  string
	Command   string
	Rationale string
}

// renderProposerMessages expands the model's prompt templates, falling back
// to the built-in proposer prompt, and guarantees a user message exists.
func renderProposerMessages(model domain.ModelDefinition, task string, taskContext string, platform domain.Platform) ([]domain.PromptMessage, error) {
	data := templateData{
		Task:     strings.TrimSpace(task),
		Context:  strings.TrimSpace(taskContext),
		Platform: string(platform),
	}

	messages := model.Prompt
	if len(messages) == 0 {
		messages = defaultProposerMessages()
	}

	rendered := make([]domain.PromptMessage, 0, len(messages))
	for _, msg := range messages {
		content, err := executeTemplate(msg.Content, data)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, domain.PromptMessage{
			Role:    msg.Role,
			Content: strings.TrimSpace(content),
		})
	}

	if !hasUserMessage(rendered) {
		rendered = append(rendered, domain.PromptMessage{Role: "user", Content: data.Task})
	}

	return rendered, nil
}

// renderReviewerMessages always uses the built-in reviewer prompt; the
// configured model prompt belongs to the proposer role.
func renderReviewerMessages(proposal domain.CommandProposal, taskContext string, platform domain.Platform) ([]domain.PromptMessage, error) {
	data := templateData{
		Context:   strings.TrimSpace(taskContext),
		Platform:  string(platform),
		Command:   proposal.Command,
		Rationale: proposal.Rationale,
	}

	rendered := make([]domain.PromptMessage, 0, 2)
	for _, msg := range defaultReviewerMessages() {
		content, err := executeTemplate(msg.Content, data)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, domain.PromptMessage{
			Role:    msg.Role,
			Content: strings.TrimSpace(content),
		})
	}
	return rendered, nil
}

func executeTemplate(raw string, data templateData) (string, error) {
	tmpl, err := template.New("prompt").Parse(raw)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func hasUserMessage(messages []domain.PromptMessage) bool {
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "user") {
			return true
		}
	}
	return false
}

func defaultProposerMessages() []domain.PromptMessage {
	return []domain.PromptMessage{
		{
			Role: "system",
			Content: `You translate tasks into a single POSIX shell command.
Target platform: {{.Platform}}.
Output only the command, in a fenced code block, with no explanation.
All file paths must stay inside the current working directory.`,
		},
		{
			Role: "user",
			Content: `Task: {{.Task}}
{{if .Context}}
{{.Context}}{{end}}`,
		},
	}
}

func defaultReviewerMessages() []domain.PromptMessage {
	return []domain.PromptMessage{
		{
			Role: "system",
			Content: `You are a strict shell command reviewer for platform {{.Platform}}.
Given a proposed command, decide whether it is safe to run inside a
throwaway working directory. Reject anything destructive, anything that
reads or writes outside that directory, and anything that would not run
on the target platform.
Respond with exactly one JSON object: {"approved": true|false, "reasoning": "..."}`,
		},
		{
			Role: "user",
			Content: `Command: {{.Command}}
{{if .Rationale}}Rationale: {{.Rationale}}
{{end}}{{if .Context}}{{.Context}}{{end}}`,
		},
	}
}
