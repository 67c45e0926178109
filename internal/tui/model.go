package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docchat/internal/chat"
	"docchat/internal/models"
	"docchat/internal/session"
)

type tab int

const (
	tabText tab = iota
	tabImage
)

// Model is the Bubble Tea model for the dual-mode chat TUI.
type Model struct {
	orch    *chat.Orchestrator
	session *session.Session

	tab      tab
	input    textinput.Model
	viewport viewport.Model
	status   string
	cursor   int // selected image in the list
	ready    bool
}

// New creates the TUI over a processed session.
func New(orch *chat.Orchestrator, s *session.Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about the document"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		orch:     orch,
		session:  s,
		input:    ti,
		viewport: vp,
		status:   fmt.Sprintf("Processed %s. Tab switches between text and image chat.", s.DocumentPath),
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := boxStyle.GetFrameSize()
		reserved := 4 + fh // header, status, input box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.content())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.tab == tabText {
				m.tab = tabImage
				m.input.Placeholder = "Select an image, then ask about it"
				m.status = m.imageStatus()
			} else {
				m.tab = tabText
				m.input.Placeholder = "Ask a question about the document"
				m.status = "Text chat."
			}
			m.viewport.SetContent(m.content())
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.input.SetValue("")
				m.submit(q)
				m.viewport.SetContent(m.content())
				m.viewport.GotoBottom()
				return m, nil
			}
			if m.tab == tabImage {
				m.selectCurrentImage()
				m.viewport.SetContent(m.content())
				return m, nil
			}
		case "down":
			if m.tab == tabImage && len(m.session.Images) > 0 {
				m.cursor = (m.cursor + 1) % len(m.session.Images)
				m.viewport.SetContent(m.content())
				return m, nil
			}
		case "up":
			if m.tab == tabImage && len(m.session.Images) > 0 {
				m.cursor = (m.cursor - 1 + len(m.session.Images)) % len(m.session.Images)
				m.viewport.SetContent(m.content())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var header string
	if m.tab == tabText {
		header = headerStyle.Render("docchat — Text [tab: images]")
	} else {
		header = headerStyle.Render("docchat — Images [tab: text]")
	}
	return header + "\n" +
		m.viewport.View() + "\n" +
		boxStyle.Render(m.input.View()) + "\n" +
		statusStyle.Render(m.status)
}

// submit routes the typed line to the orchestrator for the active tab.
// Answering-service failures already come back as visible answer strings,
// so only routing errors reach the status line.
func (m *Model) submit(q string) {
	ctx := context.Background()
	switch m.tab {
	case tabText:
		if _, err := m.orch.TextTurn(ctx, m.session, q); err != nil {
			m.status = "Error: " + err.Error()
			return
		}
		m.status = "Text chat."
	case tabImage:
		answer, err := m.orch.ImageTurn(ctx, m.session, q)
		if err != nil {
			m.status = "Error: " + err.Error() + " (enter selects the highlighted image)"
			return
		}
		m.status = answer
	}
}

func (m *Model) selectCurrentImage() {
	if len(m.session.Images) == 0 {
		m.status = "No images were found in the processed document."
		return
	}
	img := m.session.Images[m.cursor]
	if err := m.orch.SelectImage(m.session, img.PageNumber, img.IndexOnPage); err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("Selected %s. Type a question about it.", img.Address())
}

func (m Model) content() string {
	if m.tab == tabImage {
		return m.imageList()
	}
	return m.transcript()
}

func (m Model) transcript() string {
	if len(m.session.Transcript) == 0 {
		return "Ask a question about the document's text."
	}
	var b strings.Builder
	for _, turn := range m.session.Transcript {
		if turn.Role == models.RoleUser {
			b.WriteString(userStyle.Render("you: ") + turn.Content)
		} else {
			b.WriteString(assistantStyle.Render("assistant: ") + turn.Content)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m Model) imageList() string {
	addresses := m.orch.Addresses(m.session)
	if len(addresses) == 0 {
		return "No images were found in the processed document."
	}
	var b strings.Builder
	for i, addr := range addresses {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + addr))
		} else {
			b.WriteString("  " + addr)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) imageStatus() string {
	if len(m.session.Images) == 0 {
		return "No images were found in the processed document."
	}
	return fmt.Sprintf("%d images. Up/down to highlight, enter to select, then type a question.", len(m.session.Images))
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
