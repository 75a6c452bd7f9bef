// Package tui is the interactive chat front end. It is thin glue over the
// retrieval service: it renders results and warnings and never crashes the
// session on an operation failure.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"securequery/internal/domain"
)

// QueryPort is the TUI-facing subset of the retrieval service.
type QueryPort interface {
	Query(ctx context.Context, question string, k int) (domain.QueryResult, error)
	HasAnswerer() bool
}

const noLogsWarning = "No log entries ingested yet. Start securequery with a log file, e.g.:\n\n" +
	"    securequery --type cloudtrail events.json"

const noKeyWarning = "**API key required for querying.**\n\n" +
	"Set GEMINI_API_KEY or OPENAI_API_KEY (in the environment or a .env file) to ask questions.\n\n" +
	"Get a free Gemini API key at https://aistudio.google.com/app/apikey.\n\n" +
	"Note: the local embedding backend only covers retrieval; generating answers needs a generative API key."

type chatTurn struct {
	question string
	answer   string
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	service  QueryPort
	input    textinput.Model
	viewport viewport.Model
	turns    []chatTurn
	status   string
	topK     int
	ingested int
	ready    bool
}

// New creates a chat model. ingested is the current index entry count shown
// as the session banner.
func New(service QueryPort, ingested, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your logs and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		status:   fmt.Sprintf("%d log entries indexed. Type a question.", ingested),
		topK:     topK,
		ingested: ingested,
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ch)
		m.viewport.SetContent(m.renderTurns())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.turns = append(m.turns, m.answer(q))
				m.input.Reset()
				m.viewport.SetContent(m.renderTurns())
				m.viewport.GotoBottom()
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// answer produces the chat turn for a question. Failures become readable
// messages, never an unhandled crash of the session.
func (m *Model) answer(question string) chatTurn {
	if m.ingested == 0 {
		return chatTurn{question: question, answer: noLogsWarning}
	}
	if !m.service.HasAnswerer() {
		return chatTurn{question: question, answer: noKeyWarning}
	}
	res, err := m.service.Query(context.Background(), question, m.topK)
	if err != nil {
		m.status = "Query failed."
		return chatTurn{question: question, answer: "Error: " + err.Error()}
	}
	m.status = fmt.Sprintf("Answered with confidence %.2f from %d entries.", res.Confidence, len(res.Sources))
	return chatTurn{question: question, answer: res.ToMarkdown()}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("SecureQuery")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderTurns() string {
	if len(m.turns) == 0 {
		return "No questions yet."
	}
	blocks := make([]string, 0, len(m.turns))
	for _, t := range m.turns {
		q := questionStyle.Render("You: " + t.question)
		blocks = append(blocks, q+"\n"+t.answer)
	}
	return strings.Join(blocks, "\n\n")
}

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
