package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yolodolo42/sqldesk/internal/history"
	"github.com/yolodolo42/sqldesk/internal/session"
	"github.com/yolodolo42/sqldesk/internal/ui"
)

const replHelp = `Commands:
  /ask [question]      switch to ask mode, or ask right away
  /sql [statement]     switch to sql mode, or run right away
  /tables [schema]     list tables, or show the schema overview
  /describe [table]    switch to describe mode, or describe right away
  /health [detailed]   check the service
  /history             show recent questions and statements
  /clear               clear the screen
  /help, /?            show this help
  /quit, /exit         leave

Plain input goes to the current mode. Tab cycles modes.`

// runner performs one request; *session.Controller satisfies it.
type runner interface {
	Run(ctx context.Context, req session.Request) session.Output
}

type historyLister interface {
	Recent(limit int) ([]history.Entry, error)
}

// model is the REPL state. Request bookkeeping lives in session.State; the
// model adds the transcript and the widgets around it.
type model struct {
	runner       runner
	history      historyLister
	historyLimit int
	timeout      time.Duration

	state      session.State
	prompt     ui.Prompt
	viewport   viewport.Model
	spinner    spinner.Model
	transcript []string
	status     string
	width      int
	height     int
	ready      bool
	quitting   bool
}

// responseMsg carries a finished request back into the update loop.
type responseMsg struct {
	out session.Output
}

func newModel(r runner, h historyLister, historyLimit int, timeout time.Duration) model {
	p := ui.NewPrompt("Ask a question about your data...")
	p.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.PromptStyle

	m := model{
		runner:       r,
		history:      h,
		historyLimit: historyLimit,
		timeout:      timeout,
		state:        session.NewState(),
		prompt:       p,
		spinner:      sp,
		width:        100,
		transcript: []string{
			ui.HelpStyle.Render("Welcome to sqldesk. Ask a question, or type /help for commands."),
		},
	}
	m.syncPrompt()
	return m
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyTab:
			m = m.navigate(nextSection(m.state.Section))
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.prompt.Value())
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				m.prompt.Reset()
				m.status = ""
				return m.handleCommand(input)
			}
			if m.state.Loading {
				// keep the typed text for when the current request finishes
				m.status = session.ErrBusy.Error()
				return m, nil
			}
			m.prompt.Reset()
			m.status = ""
			return m.submit(session.Request{Section: m.state.Section, Input: input})
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		m.prompt.SetWidth(msg.Width)
		m.updateViewport()
		return m, nil

	case responseMsg:
		m.state = m.state.Finish(msg.out)
		if m.state.Output == nil {
			m.appendLine(ui.MetaStyle.Render(fmt.Sprintf("Discarded %s result after switching to %s.",
				msg.out.Section.Title(), m.state.Section.Title())))
			return m, nil
		}
		m.appendLine(m.formatOutput(*m.state.Output))
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var piCmd, vpCmd tea.Cmd
	_, piCmd = m.prompt.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(piCmd, vpCmd)
}

func (m model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return "Initializing...\n"
	}

	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("sqldesk") + " " + ui.MetaStyle.Render(sectionTabs(m.state.Section)))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	switch {
	case m.state.Loading:
		b.WriteString(fmt.Sprintf("%s Running %s...", m.spinner.View(), strings.ToLower(m.state.Section.Title())))
	case m.status != "":
		b.WriteString(ui.ErrorStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.prompt.View())
	b.WriteString("\n")
	b.WriteString(ui.HelpStyle.Render("/help " + ui.SymbolDot + " tab switch mode " + ui.SymbolDot + " ctrl+c quit"))
	return b.String()
}

// submit starts a request unless one is already in flight.
func (m model) submit(req session.Request) (tea.Model, tea.Cmd) {
	st, err := m.state.Begin()
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.state = st
	if req.Section != m.state.Section {
		m.state.Section = req.Section
		m.syncPrompt()
	}

	echo := ui.QuestionStyle.Render(m.state.Section.Title() + " " + ui.SymbolPrompt)
	if req.Input != "" {
		echo += " " + oneLine(req.Input)
	}
	m.appendLine(echo)

	r, timeout := m.runner, m.timeout
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return responseMsg{out: r.Run(ctx, req)}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

func (m model) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.SplitN(input, " ", 2)
	cmd := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/quit", "/exit", "/q":
		m.quitting = true
		return m, tea.Quit

	case "/clear":
		m.state = m.state.Clear()
		m.transcript = nil
		m.updateViewport()
		return m, nil

	case "/help", "/?":
		m.appendLine(ui.HelpStyle.Render(replHelp))
		return m, nil

	case "/history":
		m.appendLine(m.historyText())
		return m, nil

	case "/ask", "/sql", "/describe":
		sec, _ := session.ParseSection(strings.TrimPrefix(cmd, "/"))
		if arg == "" {
			m = m.navigate(sec)
			return m, nil
		}
		return m.submit(session.Request{Section: sec, Input: arg})

	case "/tables":
		return m.submit(session.Request{Section: session.SectionTables, Schema: arg == "schema"})

	case "/health":
		detailed := arg == "detailed" || arg == "-d" || arg == "--detailed"
		return m.submit(session.Request{Section: session.SectionHealth, Detailed: detailed})

	default:
		m.status = fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)
		return m, nil
	}
}

func (m model) navigate(sec session.Section) model {
	m.state = m.state.Navigate(sec)
	m.syncPrompt()
	return m
}

func (m *model) syncPrompt() {
	mode := ""
	if m.state.Section != session.SectionAsk {
		mode = string(m.state.Section)
	}
	m.prompt.SetMode(mode)
	m.prompt.SetWidth(m.width)
}

func (m model) formatOutput(out session.Output) string {
	return formatTerminal(out, outputOptions{format: formatTable, width: m.width - 2, color: true})
}

func (m model) historyText() string {
	if m.history == nil {
		return ui.NoticeStyle.Render("History is disabled.")
	}
	entries, err := m.history.Recent(m.historyLimit)
	if err != nil {
		return ui.ErrorStyle.Render(ui.SymbolCross + " " + err.Error())
	}
	var b strings.Builder
	writeHistory(&b, entries)
	return strings.TrimRight(b.String(), "\n")
}

func (m *model) appendLine(s string) {
	m.transcript = append(m.transcript, s)
	m.updateViewport()
}

func (m *model) updateViewport() {
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
}

func nextSection(cur session.Section) session.Section {
	secs := session.Sections()
	for i, s := range secs {
		if s == cur {
			return secs[(i+1)%len(secs)]
		}
	}
	return session.SectionAsk
}

func sectionTabs(cur session.Section) string {
	secs := session.Sections()
	names := make([]string, len(secs))
	for i, s := range secs {
		if s == cur {
			names[i] = "[" + s.Title() + "]"
		} else {
			names[i] = s.Title()
		}
	}
	return strings.Join(names, " ")
}

// RunREPL starts the interactive REPL
func RunREPL() error {
	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(
		newModel(a.ctrl, a.history, a.cfg.HistoryLimit, requestTimeout(a.cfg)),
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
