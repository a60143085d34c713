// Package generate is the study tools panel: it runs a generative flow
// over one note and shows the result.
package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/UgochukwuChidera/studio-sub001/internal/flow"
	"github.com/UgochukwuChidera/studio-sub001/internal/keys"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/study"
	"github.com/UgochukwuChidera/studio-sub001/internal/theme"
)

// defaultQuestions is the size of a practice test started from the panel.
const defaultQuestions = 5

// clipboardWriteAll is replaced in tests.
var clipboardWriteAll = clipboard.WriteAll

// CloseMsg signals the parent to close the panel.
type CloseMsg struct{}

// ResultMsg carries the outcome of one generation.
type ResultMsg struct {
	Kind       model.ArtifactKind
	ArtifactID string
	Body       string

	// Text is Body without styling, as copied to the clipboard.
	Text string
	Err  error
}

// Model is the study tools panel.
type Model struct {
	service  *study.Service
	note     *model.Note
	viewport viewport.Model
	running  bool
	pending  model.ArtifactKind
	result   *ResultMsg
	notice   string
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates the panel. A nil service, or one whose generator is not
// configured, shows setup instructions instead.
func New(svc *study.Service, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width-4, panelHeight(height))
	vp.Style = lipgloss.NewStyle()

	return Model{
		service:  svc,
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

func panelHeight(height int) int {
	h := height - 8 // title, menu and borders
	if h < 4 {
		h = 4
	}
	return h
}

// Ready reports whether generation can run.
func (m Model) Ready() bool {
	return m.service != nil && m.service.Readiness().Ready()
}

// Running reports whether a generation is in flight.
func (m Model) Running() bool {
	return m.running
}

// Result returns the last result, if any.
func (m Model) Result() (ResultMsg, bool) {
	if m.result == nil {
		return ResultMsg{}, false
	}
	return *m.result, true
}

// SetNote selects the note to work on and clears the previous result.
func (m *Model) SetNote(n model.Note) {
	m.note = &n
	m.result = nil
	m.notice = ""
	m.running = false
	m.refreshViewport()
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		m.running = false
		m.result = &msg
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "esc" {
		if m.running {
			return m, nil
		}
		return m, func() tea.Msg { return CloseMsg{} }
	}

	if msg.String() == "c" && m.result != nil && m.result.Err == nil && !m.running {
		if err := clipboardWriteAll(m.result.Text); err != nil {
			m.notice = "Copy failed: " + err.Error()
		} else {
			m.notice = "Copied to clipboard"
		}
		m.refreshViewport()
		return m, nil
	}

	if !m.Ready() || m.running || m.note == nil {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch msg.String() {
	case "t":
		cmd = m.practiceTest(flow.MultipleChoice)
		m.pending = model.ArtifactPracticeTest
	case "o":
		cmd = m.practiceTest(flow.Descriptive)
		m.pending = model.ArtifactPracticeTest
	case "f":
		cmd = m.flashcards()
		m.pending = model.ArtifactFlashcards
	case "s":
		cmd = m.summary()
		m.pending = model.ArtifactSummary
	default:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.running = true
	m.result = nil
	m.notice = ""
	m.refreshViewport()
	return m, cmd
}

func (m Model) practiceTest(qt flow.QuestionType) tea.Cmd {
	svc, src := m.service, study.Source{NoteID: m.note.ID}
	return func() tea.Msg {
		t, a, err := svc.GeneratePracticeTest(context.Background(), src, study.PracticeTestOptions{
			QuestionType:      qt,
			NumberOfQuestions: defaultQuestions,
		})
		if err != nil {
			return ResultMsg{Kind: model.ArtifactPracticeTest, Err: err}
		}
		return ResultMsg{
			Kind:       model.ArtifactPracticeTest,
			ArtifactID: a.ID,
			Body:       renderPracticeTest(t, styledText()),
			Text:       renderPracticeTest(t, plainText()),
		}
	}
}

func (m Model) flashcards() tea.Cmd {
	svc, src := m.service, study.Source{NoteID: m.note.ID}
	return func() tea.Msg {
		f, a, err := svc.GenerateFlashcards(context.Background(), src, nil)
		if err != nil {
			return ResultMsg{Kind: model.ArtifactFlashcards, Err: err}
		}
		return ResultMsg{
			Kind:       model.ArtifactFlashcards,
			ArtifactID: a.ID,
			Body:       renderFlashcards(f, styledText()),
			Text:       renderFlashcards(f, plainText()),
		}
	}
}

func (m Model) summary() tea.Cmd {
	svc, src := m.service, study.Source{NoteID: m.note.ID}
	wrap := max(m.width-10, 20)
	return func() tea.Msg {
		n, a, err := svc.SummarizeNote(context.Background(), src, flow.NoteMedium)
		if err != nil {
			return ResultMsg{Kind: model.ArtifactSummary, Err: err}
		}
		text := summaryMarkdown(n)
		return ResultMsg{
			Kind:       model.ArtifactSummary,
			ArtifactID: a.ID,
			Body:       renderMarkdown(text, wrap),
			Text:       text,
		}
	}
}

// refreshViewport re-renders the result and scrolls to the top.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderBody())
	m.viewport.GotoTop()
}

func (m Model) renderBody() string {
	gray := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)

	switch {
	case m.running:
		return gray.Render(fmt.Sprintf("Generating %s...", kindLabel(m.pending)))
	case m.result == nil:
		return gray.Render("Pick a tool to generate study material from this note.")
	case m.result.Err != nil:
		return theme.ErrorStyle.Render(failureText(m.result.Err))
	default:
		saved := lipgloss.NewStyle().Foreground(theme.ColorGray).
			Render(fmt.Sprintf("Saved as %s", m.result.ArtifactID))
		body := m.result.Body + "\n\n" + saved
		if m.notice != "" {
			body += "\n" + lipgloss.NewStyle().Foreground(theme.ColorBlue).Render(m.notice)
		}
		return body
	}
}

// failureText explains err without exposing generator internals.
func failureText(err error) string {
	if flow.IsValidation(err) {
		return "This note can't be used: " + err.Error()
	}
	if flow.IsExecution(err) {
		return "Generation failed: " + err.Error() + "\n\nNothing was saved. Try again."
	}
	return err.Error()
}

func kindLabel(k model.ArtifactKind) string {
	switch k {
	case model.ArtifactPracticeTest:
		return "practice test"
	case model.ArtifactFlashcards:
		return "flashcards"
	case model.ArtifactSummary:
		return "summary"
	default:
		return string(k)
	}
}

// textStyles styles rendered results. The zero value renders plain text.
type textStyles struct {
	title lipgloss.Style
	front lipgloss.Style
}

func styledText() textStyles {
	return textStyles{
		title: lipgloss.NewStyle().Bold(true),
		front: lipgloss.NewStyle().Foreground(theme.ColorBlue),
	}
}

func plainText() textStyles {
	return textStyles{title: lipgloss.NewStyle(), front: lipgloss.NewStyle()}
}

func renderPracticeTest(t flow.PracticeTest, st textStyles) string {
	var b strings.Builder
	b.WriteString(st.title.Render(t.TestTitle) + "\n")
	for i, q := range t.Questions {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, q.Text())
		switch q := q.(type) {
		case *flow.MultipleChoiceQuestion:
			for j, opt := range q.Options {
				mark := " "
				if j == q.CorrectOptionIndex {
					mark = "✓"
				}
				fmt.Fprintf(&b, "   %s %c) %s\n", mark, 'a'+rune(j), opt)
			}
			if q.Explanation != "" {
				b.WriteString("   " + q.Explanation + "\n")
			}
		case *flow.DescriptiveQuestion:
			b.WriteString("   (answer in your own words)\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderFlashcards(f flow.Flashcards, st textStyles) string {
	var b strings.Builder
	b.WriteString(st.title.Render(f.Title) + "\n")
	for i, c := range f.Flashcards {
		fmt.Fprintf(&b, "\n%d. %s\n   %s\n", i+1, st.front.Render(c.Front), c.Back)
	}
	return strings.TrimRight(b.String(), "\n")
}

func summaryMarkdown(n flow.Notes) string {
	return "# " + n.Title + "\n\n" + strings.TrimSpace(n.NotesContent)
}

// renderMarkdown renders md for the terminal, falling back to the source
// when the renderer fails.
func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// View renders the panel.
func (m Model) View() string {
	if !m.Ready() {
		return m.renderNotConfigured()
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := "Study tools"
	if m.note != nil {
		title += " · " + m.note.Title
	}

	menu := lipgloss.NewStyle().Foreground(theme.ColorGray).
		Render("t practice test | o open questions | f flashcards | s summary | c copy | esc back")

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-6, 80), 0)))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		menu,
		separator,
		m.viewport.View(),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// renderNotConfigured shows setup instructions when generation is
// unavailable.
func (m Model) renderNotConfigured() string {
	style := lipgloss.NewStyle().
		Width(m.width - 4).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	detail := "no generator"
	if m.service != nil {
		detail = m.service.Readiness().Detail
	}

	msg := "Study tools need a Gemini API key.\n\n" +
		detail + "\n\n" +
		"Set GEMINI_API_KEY, run 'noteflow login --api-key',\n" +
		"or add the key with ':settings'.\n\n" +
		"Press Esc to go back."

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(max(m.height-4, 0)).
		Render(style.Render(msg))
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 4
	m.viewport.Height = panelHeight(height)
}
