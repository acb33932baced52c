// Package ui provides the terminal user interface using Bubble Tea, plus a
// plain renderer for one-shot output.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sreevatsan/storysmith/internal/types"
)

// uiState tracks what the chat view is doing.
type uiState int

const (
	stateIdle uiState = iota
	stateThinking
)

// RunResult is delivered when an agent run finishes. Appended holds the
// messages the run added to the history, in order: assistant tool-call
// turns, tool results, and the terminal assistant answer.
type RunResult struct {
	Appended []types.Message
	Err      error
}

// Model is the Bubble Tea model for the chat UI.
type Model struct {
	// UI components
	textInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	styles    Styles

	// State
	state     uiState
	messages  []chatMessage
	toolNames []string
	width     int
	height    int
	ready     bool
	quitting  bool
	err       error

	// Agent entry point (injected). Returns a command that resolves to a
	// RunResult.
	runQuery func(query string) tea.Cmd
}

// chatMessage is one rendered entry in the chat log.
type chatMessage struct {
	role    string // "user", "assistant", "system", "tool"
	content string
	tool    *toolExecution
}

// toolExecution is a resolved tool call paired with its result.
type toolExecution struct {
	name    string
	params  map[string]any
	output  string
	isError bool
}

// NewModel creates a new chat UI model. toolNames is shown by the "tools"
// command.
func NewModel(runQuery func(query string) tea.Cmd, toolNames []string) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask something... (e.g., 'Add 3 and 4. Multiply the output by 2')"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = DefaultStyles().Spinner

	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.DefaultKeyMap()

	return Model{
		textInput: ti,
		spinner:   s,
		viewport:  vp,
		styles:    DefaultStyles(),
		state:     stateIdle,
		messages:  make([]chatMessage, 0),
		toolNames: toolNames,
		runQuery:  runQuery,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m Model) headerHeight() int {
	banner := m.styles.BannerTitle.Render(Banner())
	return strings.Count(banner, "\n") + 3
}

func (m Model) footerHeight() int {
	// 1 blank line + 1 prompt/input line + 1 newline + 1 help bar = 4
	return 4
}

// updateViewport rebuilds the viewport content and scrolls to the bottom.
func (m *Model) updateViewport() {
	var b strings.Builder

	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if m.state == stateThinking {
		b.WriteString(m.renderStatus())
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			if m.state != stateIdle {
				return m, nil
			}

			query := strings.TrimSpace(m.textInput.Value())
			if query == "" {
				return m, nil
			}

			if handled, cmd := m.handleCommand(query); handled {
				m.updateViewport()
				return m, cmd
			}

			m.messages = append(m.messages, chatMessage{
				role:    "user",
				content: query,
			})
			m.textInput.SetValue("")
			m.state = stateThinking
			m.updateViewport()

			if m.runQuery != nil {
				cmds = append(cmds, m.runQuery(query))
			}
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10

		vpWidth := msg.Width
		vpHeight := msg.Height - m.headerHeight() - m.footerHeight()
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(vpWidth, vpHeight)
			m.viewport.KeyMap = viewport.DefaultKeyMap()
		} else {
			m.viewport.Width = vpWidth
			m.viewport.Height = vpHeight
		}

		m.ready = true
		m.updateViewport()

	case RunResult:
		m.state = stateIdle
		if msg.Err != nil {
			m.err = msg.Err
			m.messages = append(m.messages, chatMessage{
				role:    "system",
				content: fmt.Sprintf("Error: %v", msg.Err),
			})
		} else {
			m.appendRun(msg.Appended)
		}
		m.updateViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		m.updateViewport()
	}

	if m.state == stateIdle {
		var tiCmd tea.Cmd
		m.textInput, tiCmd = m.textInput.Update(msg)
		cmds = append(cmds, tiCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// appendRun converts the messages a run appended into chat log entries.
// Tool-role messages are matched back to their originating calls by call id.
func (m *Model) appendRun(appended []types.Message) {
	calls := make(map[string]types.ToolCall)

	for _, msg := range appended {
		switch msg.Role {
		case types.RoleAssistant:
			for _, call := range msg.ToolCalls {
				calls[call.ID] = call
			}
			if msg.Content != "" {
				m.messages = append(m.messages, chatMessage{
					role:    "assistant",
					content: msg.Content,
				})
			}

		case types.RoleTool:
			exec := &toolExecution{
				name:    msg.Name,
				output:  msg.Content,
				isError: strings.HasPrefix(msg.Content, "Error:"),
			}
			if call, ok := calls[msg.ToolCallID]; ok {
				exec.params = call.Arguments
			}
			m.messages = append(m.messages, chatMessage{role: "tool", tool: exec})
		}
	}
}

// handleCommand processes special commands. It reports whether the input was
// consumed as a command.
func (m *Model) handleCommand(input string) (bool, tea.Cmd) {
	switch strings.ToLower(input) {
	case "exit", "quit", "q":
		m.quitting = true
		return true, tea.Quit

	case "clear":
		m.messages = make([]chatMessage, 0)
		m.textInput.SetValue("")
		return true, nil

	case "help", "?":
		m.messages = append(m.messages, chatMessage{
			role: "system",
			content: `Available commands:
  help, ?     Show this help
  clear       Clear chat history
  tools       List bound tools
  exit, quit  Exit

Example queries:
  "Add 3 and 4"
  "Multiply the output by 2. Divide the output by 5"`,
		})
		m.textInput.SetValue("")
		return true, nil

	case "tools":
		m.messages = append(m.messages, chatMessage{
			role:    "system",
			content: "Bound tools: " + strings.Join(m.toolNames, ", "),
		})
		m.textInput.SetValue("")
		return true, nil
	}

	return false, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return m.styles.SystemMessage.Render("Goodbye!\n")
	}

	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.styles.BannerTitle.Render(Banner()))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	b.WriteString(m.styles.Prompt.Render("> "))
	if m.state == stateIdle {
		b.WriteString(m.textInput.View())
	} else {
		b.WriteString(m.styles.StatusText.Render("(thinking...)"))
	}
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return m.styles.App.Render(b.String())
}

// renderMessage renders a single chat message.
func (m Model) renderMessage(msg chatMessage) string {
	switch msg.role {
	case "user":
		return m.styles.UserMessage.Render("You: " + msg.content)

	case "assistant":
		return m.styles.AssistantMessage.Render("Assistant: " + msg.content)

	case "system":
		return m.styles.SystemMessage.Render(msg.content)

	case "tool":
		if msg.tool != nil {
			return m.renderToolResult(msg.tool)
		}
	}
	return ""
}

// renderToolResult renders a resolved tool call.
func (m Model) renderToolResult(t *toolExecution) string {
	var b strings.Builder

	b.WriteString(m.styles.ToolName.Render("Tool: " + t.name))

	if len(t.params) > 0 {
		params := make([]string, 0, len(t.params))
		for k, v := range t.params {
			params = append(params, fmt.Sprintf("%s=%v", k, v))
		}
		b.WriteString(" ")
		b.WriteString(m.styles.ToolParams.Render("(" + strings.Join(params, ", ") + ")"))
	}
	b.WriteString("\n")

	if t.isError {
		b.WriteString(m.styles.ToolError.Render("  " + t.output))
	} else {
		b.WriteString(m.styles.ToolSuccess.Render("  = " + t.output))
	}
	b.WriteString("\n")

	return m.styles.ToolBox.Render(b.String())
}

// renderStatus renders the current processing status.
func (m Model) renderStatus() string {
	return fmt.Sprintf("%s %s",
		m.spinner.View(),
		m.styles.StatusText.Render("Thinking..."),
	)
}

// renderHelpBar renders the bottom help bar.
func (m Model) renderHelpBar() string {
	help := []string{
		m.styles.HelpKey.Render("enter") + m.styles.HelpValue.Render(" send"),
		m.styles.HelpKey.Render("ctrl+c") + m.styles.HelpValue.Render(" quit"),
		m.styles.HelpKey.Render("help") + m.styles.HelpValue.Render(" commands"),
		m.styles.HelpKey.Render("tools") + m.styles.HelpValue.Render(" list tools"),
	}
	return m.styles.HelpBar.Render(strings.Join(help, "  |  "))
}
