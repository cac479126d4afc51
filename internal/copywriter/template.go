package copywriter

import (
	"context"
	"fmt"
	"strings"
)

// TemplateProvider is the built-in generation backend used when no
// external service is configured. It composes copy from the prompt
// fields deterministically, so the same prompt always yields the same
// text.
type TemplateProvider struct{}

func NewTemplateProvider() *TemplateProvider {
	return &TemplateProvider{}
}

var _ Provider = (*TemplateProvider)(nil)

func (p *TemplateProvider) Generate(ctx context.Context, prompt string) (string, error) {
	name, category, _ := strings.Cut(prompt, "|")
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if name == "" {
		return "", fmt.Errorf("empty prompt")
	}
	if category == "" {
		return fmt.Sprintf("Discover %s. Quality you can count on, shipped fast.", name), nil
	}
	return fmt.Sprintf("Discover %s, a standout pick from our %s range. Quality you can count on, shipped fast.", name, category), nil
}
