package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abduilm/lexuz-bot/internal/domain"
)

// Model is the Bubble Tea model for the interactive ask client.
type Model struct {
	service domain.AskService
	input   textinput.Model
	view    viewport.Model
	answer  domain.Answer
	status  string
	ready   bool
	asked   bool
}

// New creates a new TUI model around the ask service.
func New(service domain.AskService) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Savolni kiriting va Enter bosing"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, view: vp, status: "Tayyor."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + query box + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.view.Width = max(20, msg.Width)
		m.view.Height = max(3, vh-rh)
		m.view.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.status = "Izlanmoqda..."
				ans, err := m.service.Ask(context.Background(), q)
				if err != nil {
					m.status = "Xatolik: " + err.Error()
					m.answer = domain.Answer{}
					m.asked = false
				} else {
					m.status = fmt.Sprintf("Javob: %q", q)
					m.answer = ans
					m.asked = true
				}
				m.view.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Yuklanmoqda..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Lex.uz AI Bot")
	body := answerBoxStyle.Render(m.view.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if !m.asked {
		return "Hozircha javob yo'q."
	}
	var b strings.Builder
	b.WriteString(m.answer.Text)
	if len(m.answer.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sourceLabelStyle.Render("Rasmiy manbalar:"))
		for _, s := range m.answer.Sources {
			b.WriteString("\n")
			if s.Title != "" && s.Title != s.URL {
				b.WriteString(s.Title + " — " + sourceURLStyle.Render(s.URL))
			} else {
				b.WriteString(sourceURLStyle.Render(s.URL))
			}
		}
	}
	return b.String()
}

var (
	answerBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	sourceLabelStyle = lipgloss.NewStyle().Bold(true)
	sourceURLStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
