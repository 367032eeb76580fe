// This file implements the interactive chat interface using bubbletea.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"musebot/cmd/musebot/ui"
	"musebot/internal/orchestrator"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive booking chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

const inputPlaceholder = "Type your message... (Enter to send, Ctrl+C to exit)"

const welcomeMessage = `Welcome to the museum booking assistant!

Tell me who you are, when you'd like to visit, and how many tickets you
need. You can say it all at once or answer one question at a time.

**What's your name?**`

// chatModel is the main model for the interactive chat interface
type chatModel struct {
	// UI Components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	// State
	history   []chatMessage
	isLoading bool
	err       error
	width     int
	height    int
	ready     bool
	booked    bool

	// Backend
	orch    *orchestrator.Orchestrator
	cleanup func()
	userID  string
}

type chatMessage struct {
	role    string // "user" or "assistant"
	kind    orchestrator.ResponseKind
	content string
	time    time.Time
}

// Messages for tea updates
type (
	replyMsg orchestrator.Response
	errorMsg error
)

// initChat initializes the interactive chat model
func initChat() (chatModel, error) {
	styles := ui.DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 1024
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}

	orch, st, err := buildOrchestrator(cfg)
	if err != nil {
		return chatModel{}, err
	}
	st.StartJanitor(context.Background())
	stopWatch := watchConfig(orch)

	return chatModel{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,
		history: []chatMessage{
			{role: "assistant", content: welcomeMessage, time: time.Now()},
		},
		orch: orch,
		cleanup: func() {
			stopWatch()
			st.Stop()
		},
		userID: uuid.NewString(),
	}, nil
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if !m.isLoading {
				return m.handleSubmit()
			}
		}

		if !m.isLoading {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		footerHeight := 2
		inputHeight := 3

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight-inputHeight)
			m.viewport.SetContent(m.renderHistory())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight - inputHeight
		}

		m.textinput.Width = msg.Width - 4

		if m.renderer != nil {
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(msg.Width-8),
			)
		}

	case spinner.TickMsg:
		if m.isLoading {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case replyMsg:
		m.isLoading = false
		if msg.Kind == orchestrator.ResponseComplete {
			m.booked = true
		}
		m.history = append(m.history, chatMessage{
			role:    "assistant",
			kind:    msg.Kind,
			content: msg.Message,
			time:    time.Now(),
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case errorMsg:
		m.isLoading = false
		m.err = msg
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m chatModel) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.history = append(m.history, chatMessage{
		role:    "user",
		content: input,
		time:    time.Now(),
	})
	m.err = nil
	m.textinput.Reset()
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	m.isLoading = true

	return m, tea.Batch(
		m.spinner.Tick,
		m.processInput(input),
	)
}

// processInput runs one message through the orchestrator in the background.
func (m chatModel) processInput(input string) tea.Cmd {
	orch, userID := m.orch, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		resp, err := orch.HandleMessage(ctx, userID, input)
		if err != nil {
			return errorMsg(err)
		}
		return replyMsg(resp)
	}
}

func (m chatModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.Fields(input)[0] {
	case "/quit", "/exit", "/q":
		return m, tea.Quit

	case "/clear":
		m.history = nil
		m.viewport.SetContent("")
		m.textinput.Reset()
		return m, nil

	case "/new":
		// Start over with a fresh visitor
		m.userID = uuid.NewString()
		m.booked = false
		m.history = append(m.history, chatMessage{
			role:    "assistant",
			content: welcomeMessage,
			time:    time.Now(),
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		m.textinput.Reset()
		return m, nil

	case "/help":
		help := `## Available Commands

| Command | Description |
|---------|-------------|
| /help | Show this help message |
| /new | Start a new booking |
| /clear | Clear chat history |
| /quit, /exit, /q | Exit |

## Tips
- Say everything at once ("My name is Alex, July 4th at 3pm, 2 tickets")
  or answer one question at a time
- **Enter** to send, **Ctrl+C** or **Esc** to exit`
		m.history = append(m.history, chatMessage{
			role:    "assistant",
			content: help,
			time:    time.Now(),
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		m.textinput.Reset()
		return m, nil

	default:
		m.history = append(m.history, chatMessage{
			role:    "assistant",
			content: fmt.Sprintf("Unknown command %q. Try /help.", input),
			time:    time.Now(),
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		m.textinput.Reset()
		return m, nil
	}
}

func (m chatModel) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.history {
		if msg.role == "user" {
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.content))
			sb.WriteString("\n\n")
			continue
		}

		assistantStyle := m.styles.Bold.
			Foreground(m.styles.Theme.Accent).
			MarginTop(1)
		sb.WriteString(assistantStyle.Render("🏛 musebot") + "\n")

		switch msg.kind {
		case orchestrator.ResponseValidationError:
			sb.WriteString(m.styles.Warning.Render(msg.content))
			sb.WriteString("\n")
		case orchestrator.ResponseComplete:
			sb.WriteString(m.styles.Success.Render(msg.content))
			sb.WriteString("\n")
		default:
			sb.WriteString(m.safeRenderMarkdown(msg.content))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery
func (m chatModel) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, return plain text
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()

	chatView := m.styles.Content.Render(m.viewport.View())
	if m.isLoading {
		chatView += "\n" + m.styles.Spinner.Render(m.spinner.View()) + " Checking..."
	}
	if m.err != nil {
		chatView += "\n" + m.styles.Error.Render("Error: "+m.err.Error())
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textinput.View())

	footer := m.styles.Footer.Render("Enter: send • /help: commands • Ctrl+C: exit")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m chatModel) renderHeader() string {
	title := m.styles.Header.Render(" 🏛 musebot ")
	badge := m.styles.Badge.Render("v" + version)

	var status string
	switch {
	case m.isLoading:
		status = m.styles.Warning.Render("● Processing")
	case m.booked:
		status = m.styles.Success.Render("● Booked")
	default:
		status = m.styles.Success.Render("● Ready")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		badge,
		"  ",
		status,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		m.styles.Muted.Render(" "+cfg.Name),
		m.styles.RenderDivider(m.width),
	)
}

// runInteractiveChat starts the interactive chat interface
func runInteractiveChat() error {
	model, err := initChat()
	if err != nil {
		return err
	}
	defer model.cleanup()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
