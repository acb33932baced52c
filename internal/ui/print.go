package ui

import (
	"fmt"
	"strings"

	"github.com/sreevatsan/storysmith/internal/types"
)

// Printer renders messages and sections to stdout for one-shot runs.
type Printer struct {
	styles Styles
}

// NewPrinter creates a printer with the default theme.
func NewPrinter() *Printer {
	return &Printer{styles: DefaultStyles()}
}

// Header prints a section header.
func (p *Printer) Header(title string) {
	fmt.Println(p.styles.Header.Render("=== " + title + " ==="))
}

// Divider prints a horizontal rule.
func (p *Printer) Divider() {
	fmt.Println(p.styles.Divider.Render(strings.Repeat("-", 50)))
}

// Message prints one history message.
func (p *Printer) Message(msg types.Message) {
	switch msg.Role {
	case types.RoleHuman:
		fmt.Println(p.styles.UserMessage.Render("You: " + msg.Content))

	case types.RoleAssistant:
		if len(msg.ToolCalls) > 0 {
			for _, call := range msg.ToolCalls {
				params := make([]string, 0, len(call.Arguments))
				for k, v := range call.Arguments {
					params = append(params, fmt.Sprintf("%s=%v", k, v))
				}
				line := p.styles.ToolName.Render("Tool call: "+call.Name) +
					" " + p.styles.ToolParams.Render("("+strings.Join(params, ", ")+")")
				fmt.Println("  " + line)
			}
		}
		if msg.Content != "" {
			fmt.Println(p.styles.AssistantMessage.Render("Assistant: " + msg.Content))
		}

	case types.RoleTool:
		if strings.HasPrefix(msg.Content, "Error:") {
			fmt.Println("  " + p.styles.ToolError.Render(msg.Name+" -> "+msg.Content))
		} else {
			fmt.Println("  " + p.styles.ToolSuccess.Render(msg.Name+" = "+msg.Content))
		}

	case types.RoleSystem:
		fmt.Println(p.styles.SystemMessage.Render(msg.Content))
	}
}

// History prints every message of a history in order.
func (p *Printer) History(history []types.Message) {
	for _, msg := range history {
		p.Message(msg)
	}
}

// Success prints a success line.
func (p *Printer) Success(text string) {
	fmt.Println(p.styles.ToolSuccess.Render("✓ " + text))
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Println(p.styles.ToolError.Render("✗ " + fmt.Sprintf(format, args...)))
}

// Info prints a dim informational line.
func (p *Printer) Info(text string) {
	fmt.Println(p.styles.StatusText.Render(text))
}
