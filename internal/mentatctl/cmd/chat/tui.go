package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mentatproj/mentat/internal/mentatctl/cmd/util"
)

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle      = lipgloss.NewStyle().Faint(true)
)

type answerMsg struct {
	result *util.QueryResult
}

type errMsg struct {
	err error
}

type chatModel struct {
	client *util.Client
	base   *util.QueryRequest

	vp    viewport.Model
	input textinput.Model
	spin  spinner.Model

	transcript strings.Builder
	waiting    bool
	ready      bool
	width      int
}

func newChatModel(client *util.Client, base *util.QueryRequest) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask a question (ctrl+c to quit)"
	input.Prompt = "> "
	input.CharLimit = 4096
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return chatModel{
		client: client,
		base:   base,
		input:  input,
		spin:   spin,
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) ask(question string) tea.Cmd {
	req := &util.QueryRequest{
		Query:    question,
		Servers:  m.base.Servers,
		Provider: m.base.Provider,
		Model:    m.base.Model,
		Chaining: m.base.Chaining,
	}
	return func() tea.Msg {
		result, err := m.client.Query(context.Background(), req)
		if err != nil {
			return errMsg{err}
		}
		return answerMsg{result}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		inputHeight := 3
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-inputHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - inputHeight
		}
		m.vp.SetContent(m.transcript.String())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.waiting {
				return m, nil
			}
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()
			m.appendLine(userStyle.Render("you") + "\n" + question + "\n")
			m.waiting = true
			cmds = append(cmds, m.ask(question), m.spin.Tick)
		}

	case answerMsg:
		m.waiting = false
		answer := util.RenderMarkdown(msg.result.Answer, m.width-4)
		block := assistantStyle.Render("mentat") + "\n" + answer + "\n"
		if msg.result.ToolCallsMade > 0 {
			block += statStyle.Render(fmt.Sprintf("%d tool calls over %d iterations (servers: %s)",
				msg.result.ToolCallsMade, msg.result.Iterations, strings.Join(msg.result.ServersUsed, ", "))) + "\n"
		}
		m.appendLine(block)

	case errMsg:
		m.waiting = false
		m.appendLine(errorStyle.Render("Error: ") + msg.err.Error() + "\n")

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.vp, cmd = m.vp.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *chatModel) appendLine(block string) {
	m.transcript.WriteString(block)
	m.transcript.WriteString("\n")
	m.vp.SetContent(m.transcript.String())
	m.vp.GotoBottom()
}

func (m chatModel) View() string {
	if !m.ready {
		return "starting..."
	}

	status := helpStyle.Render("enter to send, ctrl+c to quit")
	if m.waiting {
		status = m.spin.View() + statStyle.Render("thinking...")
	}

	return m.vp.View() + "\n" + m.input.View() + "\n" + status
}

func runTUI(client *util.Client, base *util.QueryRequest) error {
	p := tea.NewProgram(newChatModel(client, base))
	_, err := p.Run()
	return err
}
