package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/doeshing/cmdgate/internal/domain"
)

// offlineProvider maps a small family of task phrasings onto shell
// commands without any network access. It keeps the pipeline and the
// regression battery runnable when no backend is configured. Tasks it
// does not recognize produce an empty reply, which the proposer adapter
// reports as a proposal failure.
type offlineProvider struct {
	platform domain.Platform
}

func newOfflineProvider(platform domain.Platform) provider {
	return &offlineProvider{platform: platform}
}

func (p *offlineProvider) Name() string {
	return "offline"
}

func (p *offlineProvider) Complete(_ context.Context, req completion) (string, error) {
	if req.Task == "" {
		// Reviewer role: defer to the rule-based policy engine.
		return `{"approved": true, "reasoning": "offline reviewer defers to the policy engine"}`, nil
	}
	return translateTask(req.Task, p.platform), nil
}

type taskRule struct {
	pattern *regexp.Regexp
	build   func(m []string, platform domain.Platform) string
}

var taskRules = []taskRule{
	{
		pattern: regexp.MustCompile(`replace\s+'?"?([^\s'"]+)'?"?\s+with\s+'?"?([^\s'"]+)'?"?\s+in\s+(\S+)`),
		build: func(m []string, platform domain.Platform) string {
			file := trimPunct(m[3])
			if platform == domain.PlatformDarwin {
				return fmt.Sprintf("sed -i '' 's/%s/%s/g' %s", m[1], m[2], file)
			}
			return fmt.Sprintf("sed -i 's/%s/%s/g' %s", m[1], m[2], file)
		},
	},
	{
		pattern: regexp.MustCompile(`(?:create|make)\s+(?:an?\s+)?(?:new\s+)?(?:empty\s+)?file\s+(?:named|called)\s+(\S+)`),
		build: func(m []string, _ domain.Platform) string {
			return "touch " + trimPunct(m[1])
		},
	},
	{
		pattern: regexp.MustCompile(`copy\s+(\S+)\s+(?:to|into|as)\s+(\S+)`),
		build: func(m []string, _ domain.Platform) string {
			return fmt.Sprintf("cp %s %s", trimPunct(m[1]), trimPunct(m[2]))
		},
	},
	{
		pattern: regexp.MustCompile(`(?:create|make)\s+(?:a\s+)?(?:new\s+)?(?:directory|folder)\s+(?:named\s+|called\s+)?(\S+)`),
		build: func(m []string, _ domain.Platform) string {
			return "mkdir " + trimPunct(m[1])
		},
	},
	{
		pattern: regexp.MustCompile(`lines?\s+containing\s+'?"?([^\s'"]+)'?"?\s+in\s+(\S+)`),
		build: func(m []string, _ domain.Platform) string {
			return fmt.Sprintf("grep '%s' %s", m[1], trimPunct(m[2]))
		},
	},
	{
		pattern: regexp.MustCompile(`list\s+(?:all\s+)?(?:the\s+)?files`),
		build: func(_ []string, _ domain.Platform) string {
			return "ls -la"
		},
	},
}

func translateTask(task string, platform domain.Platform) string {
	lowered := strings.ToLower(strings.TrimSpace(task))
	for _, rule := range taskRules {
		if m := rule.pattern.FindStringSubmatch(lowered); m != nil {
			return rule.build(m, platform)
		}
	}
	return ""
}

func trimPunct(word string) string {
	return strings.TrimRight(word, ".,;:!?")
}
