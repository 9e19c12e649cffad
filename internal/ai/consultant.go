package ai

import (
	"context"
	"fmt"
	"strings"
)

// TemplateConsultant answers from the visible hotel facts alone. It backs the
// model consultants when they fail and serves deployments without a model key.
type TemplateConsultant struct{}

func (TemplateConsultant) Answer(_ context.Context, question, hotelsContext string) (string, error) {
	hotelsContext = strings.TrimSpace(hotelsContext)
	if hotelsContext == "" {
		return "I don't have any hotels on screen yet, so I can't answer that one. Tell me where and when you'd like to stay and I'll look.", nil
	}
	return fmt.Sprintf("I don't have live details beyond the listing for %q, but here is what I know:\n%s", question, hotelsContext), nil
}
