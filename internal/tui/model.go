package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sustainability-qa/internal/domain"
)

// previewRunes bounds the source text shown under each citation.
const previewRunes = 200

// phase tracks where the current question is in its linear flow.
// Idle -> Retrieving -> Generating -> Idle, no branching beyond errors.
type phase int

const (
	phaseIdle phase = iota
	phaseRetrieving
	phaseGenerating
)

type retrievedMsg struct {
	question string
	sources  domain.RetrievalResult
	err      error
}

type answeredMsg struct {
	answer domain.Answer
	err    error
}

// Model is the Bubble Tea model for the Q&A screen.
type Model struct {
	service  domain.QAService
	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	phase    phase
	status   string
	answer   domain.Answer
	answered bool
	about    string
	ready    bool
}

// New creates the TUI model. The about line describes the loaded index and is
// shown in the footer.
func New(service domain.QAService, about string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the company's sustainability efforts and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		spin:     sp,
		about:    about,
		status:   "Ready. Type a question to begin.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and question-flow events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // title + subtitle
		totalFooterLines := 2                                    // status + help
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && m.phase == phaseIdle {
				m.phase = phaseRetrieving
				m.status = "Retrieving relevant passages..."
				return m, tea.Batch(m.retrieveCmd(q), m.spin.Tick)
			}
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		case "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		}

	case retrievedMsg:
		if msg.err != nil {
			m.phase = phaseIdle
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.phase = phaseGenerating
		m.status = "Generating answer..."
		return m, tea.Batch(m.answerCmd(msg.question, msg.sources), m.spin.Tick)

	case answeredMsg:
		m.phase = phaseIdle
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.answer = msg.answer
		m.answered = true
		m.status = fmt.Sprintf("Done. %d source passage(s).", len(msg.answer.Sources))
		m.viewport.SetContent(m.renderAnswer())
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseIdle {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the Q&A layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := titleStyle.Render("ITC Sustainability Q&A")
	subtitle := subtitleStyle.Render("Answers are grounded in the pre-indexed sustainability reports.")
	result := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := m.renderStatus()
	help := helpStyle.Render("enter: ask • up/down: scroll • ctrl+c: quit • " + m.about)
	return title + "\n" + subtitle + "\n" + result + "\n" + input + "\n" + status + "\n" + help
}

func (m Model) renderStatus() string {
	if m.phase != phaseIdle {
		return statusBusyStyle.Render(m.spin.View() + " " + m.status)
	}
	if strings.HasPrefix(m.status, "Error: ") {
		return statusErrStyle.Render(m.status)
	}
	return statusOKStyle.Render(m.status)
}

func (m Model) renderAnswer() string {
	if !m.answered {
		return "No answer yet. Ask a question below."
	}
	var b strings.Builder
	b.WriteString(headingStyle.Render("Answer"))
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(m.answer.Text))
	b.WriteString("\n\n")
	b.WriteString(headingStyle.Render("Sources"))
	b.WriteString("\n")
	if len(m.answer.Sources) == 0 {
		b.WriteString("No source documents found.")
		return b.String()
	}
	for i, src := range m.answer.Sources {
		b.WriteString(sourceMetaStyle.Render(fmt.Sprintf("%d. %s", i+1, metadataLine(src.Chunk.Metadata))))
		b.WriteString("\n")
		b.WriteString("   " + preview(src.Chunk.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func metadataLine(meta domain.Metadata) string {
	if len(meta) == 0 {
		return "(no metadata)"
	}
	pairs := make([]string, 0, len(meta))
	for _, k := range meta.Keys() {
		pairs = append(pairs, k+": "+meta.Get(k))
	}
	return strings.Join(pairs, ", ")
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}

func (m Model) retrieveCmd(question string) tea.Cmd {
	return func() tea.Msg {
		sources, err := m.service.Retrieve(context.Background(), question)
		return retrievedMsg{question: question, sources: sources, err: err}
	}
}

func (m Model) answerCmd(question string, sources domain.RetrievalResult) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.service.Answer(context.Background(), question, sources)
		return answeredMsg{answer: answer, err: err}
	}
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	subtitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	resultBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headingStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	sourceMetaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusOKStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusBusyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
