package hub

import (
	"fmt"
	"regexp"

	"github.com/sreevatsan/storysmith/internal/types"
)

// Prompt is a remotely stored template: a sequence of role-tagged message
// templates with {variable} placeholders, plus the model configuration saved
// with it when pulled with include_model.
type Prompt struct {
	Name     string            `json:"name"`
	Messages []MessageTemplate `json:"messages"`
	Model    *ModelConfig      `json:"model,omitempty"`
}

// MessageTemplate is one templated message of a prompt.
type MessageTemplate struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelConfig is the model configuration stored alongside a prompt.
type ModelConfig struct {
	Provider    string  `json:"provider,omitempty"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Variables returns the distinct placeholder names used by the template, in
// order of first appearance.
func (p *Prompt) Variables() []string {
	seen := make(map[string]bool)
	var names []string
	for _, mt := range p.Messages {
		for _, match := range placeholderPattern.FindAllStringSubmatch(mt.Content, -1) {
			if !seen[match[1]] {
				seen[match[1]] = true
				names = append(names, match[1])
			}
		}
	}
	return names
}

// Render substitutes inputs into the template and returns the resulting
// history. Every placeholder must have a value; a placeholder without one is
// a types.ErrMissingVariable error rather than being passed through to the
// model verbatim.
func (p *Prompt) Render(inputs map[string]string) ([]types.Message, error) {
	messages := make([]types.Message, 0, len(p.Messages))
	for _, mt := range p.Messages {
		var missing error
		content := placeholderPattern.ReplaceAllStringFunc(mt.Content, func(m string) string {
			name := placeholderPattern.FindStringSubmatch(m)[1]
			value, ok := inputs[name]
			if !ok {
				if missing == nil {
					missing = fmt.Errorf("%w: %q in prompt %q", types.ErrMissingVariable, name, p.Name)
				}
				return m
			}
			return value
		})
		if missing != nil {
			return nil, missing
		}
		messages = append(messages, types.Message{
			Role:    types.Role(mt.Role),
			Content: content,
		})
	}
	return messages, nil
}
