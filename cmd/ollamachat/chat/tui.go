package chatcmder

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/papercomputeco/ollamachat/pkg/llm"
	"github.com/papercomputeco/ollamachat/pkg/ollama"
	"github.com/papercomputeco/ollamachat/pkg/render"
)

const inputHeight = 3

// replyMsg carries a finished generate call back to the UI.
type replyMsg struct {
	prompt string
	result ollama.Result
	err    error
}

// tuiModel is the full-screen chat.
type tuiModel struct {
	ctx     context.Context
	session *session

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	// style is the glamour style picked before the program starts, so the
	// terminal is never queried while bubbletea owns it.
	style    string
	markdown *render.Markdown
	width    int

	turns   []llm.Message
	waiting bool
	status  string
}

func newTUIModel(ctx context.Context, s *session, style string) tuiModel {
	input := textarea.New()
	input.Placeholder = "Send a message (Enter to send, /reset to clear, Esc to quit)"
	input.ShowLineNumbers = false
	input.SetHeight(inputHeight)
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := tuiModel{
		ctx:      ctx,
		session:  s,
		viewport: viewport.New(80, 20),
		input:    input,
		spinner:  sp,
		style:    style,
		width:    80,
		status:   "model: " + s.client.ResolveModel(s.model, false),
	}
	m.markdown, _ = render.NewMarkdown(m.width-4, style)
	return m
}

func (m tuiModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(msg.Width)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-inputHeight-2, 1)
		if md, err := render.NewMarkdown(max(msg.Width-4, 20), m.style); err == nil {
			m.markdown = md
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			// The turn never reached the transcript, so take it off screen
			// and hand the prompt back for another try.
			if n := len(m.turns); n > 0 && m.turns[n-1].Role == llm.RoleUser {
				m.turns = m.turns[:n-1]
			}
			m.input.SetValue(msg.prompt)
			m.status = "error: " + msg.err.Error()
		} else {
			m.session.record(msg.prompt, msg.result.Text)
			m.turns = append(m.turns, llm.Message{Role: llm.RoleAssistant, Content: msg.result.Text})
			m.status = ""
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var inputCmd, viewCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, viewCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, viewCmd)
}

// submit handles Enter: a line command or a new prompt.
func (m tuiModel) submit() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}

	prompt := strings.TrimSpace(m.input.Value())
	m.input.Reset()

	switch prompt {
	case "":
		return m, nil
	case commandReset:
		m.session.reset()
		m.turns = nil
		m.status = "conversation cleared"
		m.refresh()
		return m, nil
	case commandExit, commandQuit:
		return m, tea.Quit
	}

	m.turns = append(m.turns, llm.Message{Role: llm.RoleUser, Content: prompt})
	m.waiting = true
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, m.generate(prompt))
}

// generate runs the call off the UI loop. The transcript is only read here;
// it changes in Update once the reply arrives.
func (m tuiModel) generate(prompt string) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		result, err := s.generate(ctx, prompt)
		return replyMsg{prompt: prompt, result: result, err: err}
	}
}

func (m *tuiModel) refresh() {
	var b strings.Builder
	for _, turn := range m.turns {
		if turn.Role == llm.RoleUser {
			b.WriteString(userLabel.Render("you") + "\n" + turn.Content + "\n\n")
			continue
		}
		text := turn.Content
		if m.markdown != nil {
			text = m.markdown.Render(text)
		}
		b.WriteString(assistantLabel.Render("assistant") + "\n" + text + "\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m tuiModel) View() string {
	status := statusStyle.Render(m.status)
	if m.waiting {
		status = m.spinner.View() + " thinking…"
	} else if strings.HasPrefix(m.status, "error:") {
		status = errorStyle.Render(m.status)
	}
	return m.viewport.View() + "\n" + status + "\n" + m.input.View()
}
