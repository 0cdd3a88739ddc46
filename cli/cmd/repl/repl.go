package repl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/criteria/lang"
	"github.com/ardnew/criteria/log"
)

const prompt = "➜ "

const helpMessage = `
Type an expression and press Enter to evaluate it.

Commands:
  :help    Print this help
  :vars    List bound variables and functions
  :clear   Clear the screen
  :quit    Exit (also Ctrl+D, or Ctrl+C on an empty line)

Keys:
  Tab / Shift+Tab   Cycle completions of bound names
  Esc               Cancel completion
  Up / Down         Browse history
`

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle         = suggestionStyle.Bold(true)
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// Evaluator evaluates one expression. [*lang.Interpreter] implements it.
type Evaluator interface {
	EvaluateValue(ctx context.Context, expression string) (lang.Value, error)
}

// Session configures an interactive session.
type Session struct {
	Evaluator Evaluator
	// Variables and Functions list the bound names offered for completion.
	Variables func() []string
	Functions func() []string
	// CacheDir holds the history file. Empty keeps history in memory.
	CacheDir string
	Logger   log.Logger
}

// Run reads, evaluates, and prints expressions until the user quits or ctx
// is done.
func (s Session) Run(ctx context.Context, opts ...tea.ProgramOption) (err error) {
	if s.Evaluator == nil {
		return ErrNoEvaluator
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	path := ""
	if s.CacheDir != "" {
		path = filepath.Join(s.CacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		s.Logger.WarnContext(ctx, "history not loaded",
			slog.String("path", path), slog.Any("error", err))
	}

	s.Logger.TraceContext(ctx, "repl start",
		slog.String("history", path),
		slog.Int("entries", history.Len()))

	p := tea.NewProgram(newModel(ctx, s, history),
		append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	_, err = p.Run()

	return err
}

const defaultWidth = 80

// model is the Bubble Tea model of a session.
type model struct {
	ctx       func() context.Context
	session   Session
	input     textinput.Model
	history   *History
	historyAt int

	completion
	functions map[string]bool
	selected  int    // index into matches while cycling
	cycling   bool   // Tab has replaced the word with a candidate
	before    string // input before cycling began
	beforeAt  int    // cursor before cycling began

	width    int
	quitting bool
}

func newModel(ctx context.Context, s Session, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctx:       func() context.Context { return ctx },
		session:   s,
		input:     ti,
		history:   history,
		historyAt: history.Len(),
		selected:  -1,
		width:     defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(prompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyAt < m.history.Len():
		b.WriteString(hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyAt+1)),
			m.history.Len())))

	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render("Type an expression, or :help"))

	default:
		b.WriteString(renderCandidateBar(
			m.matches, m.selected, m.cycling, m.functions, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.cycling = false
		m.historyAt = m.history.Len()
		m.refresh()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.cycling && len(m.matches) > 0 {
			m.cycling = false
			m.refresh()

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyEsc:
		if m.cycling {
			m.cycling = false
			m.input.SetValue(m.before)
			m.input.SetCursor(m.beforeAt)
			m.refresh()
		}

		return m, nil

	case tea.KeyUp:
		return m.browse(-1), nil

	case tea.KeyDown:
		return m.browse(1), nil
	}

	var cmd tea.Cmd

	m.cycling = false
	m.historyAt = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh()

	return m, cmd
}

// refresh recomputes completions for the current input.
func (m *model) refresh() {
	var vars, funcs []string

	if m.session.Variables != nil {
		vars = m.session.Variables()
	}

	if m.session.Functions != nil {
		funcs = m.session.Functions()
	}

	m.functions = make(map[string]bool, len(funcs))
	for _, f := range funcs {
		m.functions[f] = true
	}

	m.completion = complete(m.input.Value(), m.input.Position(), candidateNames(vars, funcs))

	if !m.cycling {
		m.selected = -1
	}
}

// cycle replaces the current word with the next (step 1) or previous
// (step -1) candidate. A sole candidate is accepted outright.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replace(m.matches[0].Str)
		m.cycling = false
		m.selected = -1
		m.matches = nil

		return m
	}

	if !m.cycling {
		m.cycling = true
		m.before = m.input.Value()
		m.beforeAt = m.input.Position()
		m.selected = -1

		if step < 0 {
			m.selected = 0
		}
	}

	m.selected = ((m.selected+step)%n + n) % n
	m.replace(m.matches[m.selected].Str)

	return m
}

// replace substitutes s for the completed span of the input.
func (m *model) replace(s string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.start] + s + input[m.end:])
	m.input.SetCursor(m.start + len(s))
	m.end = m.start + len(s)
}

// browse moves through history; past the newest entry the input clears.
func (m model) browse(step int) model {
	at := m.historyAt + step
	if at < 0 {
		return m
	}

	m.cycling = false

	if at >= m.history.Len() {
		m.historyAt = m.history.Len()
		m.input.SetValue("")
		m.refresh()

		return m
	}

	line, err := m.history.Entry(at)
	if err != nil {
		return m
	}

	m.historyAt = at
	m.input.SetValue(line)
	m.input.SetCursor(len(line))
	m.refresh()

	return m
}

func (m model) submit() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	if err := m.history.Add(line); err != nil {
		m.session.Logger.WarnContext(m.ctx(), "history not saved", slog.Any("error", err))
	}

	m.historyAt = m.history.Len()
	m.input.SetValue("")
	m.refresh()

	echo := tea.Println(promptStyle.Render(prompt) + inputStyle.Render(line))

	if strings.HasPrefix(line, commandPrefix) {
		return m.command(line, echo)
	}

	return m, tea.Sequence(echo, tea.Println(m.evaluate(line)))
}

// evaluate renders the result of line, or its error.
func (m model) evaluate(line string) string {
	v, err := m.session.Evaluator.EvaluateValue(m.ctx(), line)
	if err != nil {
		m.session.Logger.TraceContext(m.ctx(), "repl eval failed", slog.Any("error", err))

		return errorStyle.Render("error: " + err.Error())
	}

	return resultStyle.Render(lang.FormatResult(v.Native()))
}

func (m model) command(line string, echo tea.Cmd) (model, tea.Cmd) {
	switch strings.Fields(line)[0] {
	case ":q", ":quit", ":exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case ":h", ":help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case ":v", ":vars":
		return m, tea.Sequence(echo, tea.Println(m.listBindings()))

	case ":c", ":clear":
		return m, tea.ClearScreen

	default:
		err := ErrUnknownInput.With(slog.String("command", line))

		return m, tea.Sequence(echo,
			tea.Println(errorStyle.Render(err.Error()+": "+line+" (try :help)")))
	}
}

// listBindings renders each bound variable with its value, then each bound
// function.
func (m model) listBindings() string {
	var b strings.Builder

	if m.session.Variables != nil {
		for _, name := range m.session.Variables() {
			v, err := m.session.Evaluator.EvaluateValue(m.ctx(), name)

			text := lang.FormatResult(v.Native())
			if err != nil {
				text = err.Error()
			}

			fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render("= "+text))
		}
	}

	if m.session.Functions != nil {
		for _, name := range m.session.Functions() {
			fmt.Fprintf(&b, "  %s%s\n", name, hintStyle.Render("()"))
		}
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no bindings)")
	}

	return strings.TrimSuffix(b.String(), "\n")
}
