// Package ui provides the terminal output and the confirmation prompt for memix.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	apperrors "github.com/memix/memix/internal/pkg/errors"
)

// ErrInterrupted is returned inside an ErrInput AppError when the user
// aborts the confirmation prompt with Ctrl+C.
var ErrInterrupted = errors.New("prompt interrupted")

// Spinner provides loading animation functionality.
type Spinner interface {
	Start()
	Stop()
}

// Manager defines the interface for UI operations.
type Manager interface {
	DisplayMessage(message string) error
	PromptConfirm(prompt string) (bool, error)
	ShowSpinner(text string) Spinner
	ShowError(message string)
	ShowWarning(message string)
	ShowSuccess(message string)
	ShowInfo(message string)
}

// ConfirmFunc is a confirmation gate: it receives the question and returns
// the user's decision.
type ConfirmFunc func(prompt string) (bool, error)

// WithConfirm returns m with its confirmation prompt replaced by confirm.
// All display methods still go through m.
func WithConfirm(m Manager, confirm ConfirmFunc) Manager {
	return &confirmOverride{Manager: m, confirm: confirm}
}

type confirmOverride struct {
	Manager
	confirm ConfirmFunc
}

func (c *confirmOverride) PromptConfirm(prompt string) (bool, error) {
	return c.confirm(prompt)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// styles holds the lipgloss styles for UI rendering.
type styles struct {
	header     lipgloss.Style
	message    lipgloss.Style
	success    lipgloss.Style
	errorStyle lipgloss.Style
	warning    lipgloss.Style
	info       lipgloss.Style
}

func newStyles(colorEnabled bool) *styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &styles{
			header:     plain,
			message:    plain,
			success:    plain,
			errorStyle: plain,
			warning:    plain,
			info:       plain,
		}
	}

	return &styles{
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")),
		message: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220")),
		success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")),
		errorStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
	}
}

// DefaultManager implements the Manager interface using charmbracelet libraries.
type DefaultManager struct {
	colorEnabled bool
	styles       *styles
	in           io.Reader
	out          io.Writer
}

// NewDefaultManager creates a DefaultManager writing to stdout.
func NewDefaultManager(colorEnabled bool) *DefaultManager {
	return &DefaultManager{
		colorEnabled: colorEnabled,
		styles:       newStyles(colorEnabled),
		in:           os.Stdin,
		out:          os.Stdout,
	}
}

// SetIO redirects the prompt input and all output.
func (m *DefaultManager) SetIO(in io.Reader, out io.Writer) {
	m.in = in
	m.out = out
}

// DisplayMessage shows the suggested commit message, quoted.
func (m *DefaultManager) DisplayMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message cannot be empty")
	}

	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, m.styles.header.Render("Suggested commit message:"))
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, m.styles.message.Render(`"`+message+`"`))
	fmt.Fprintln(m.out)

	return nil
}

// PromptConfirm asks a yes/no question. Enter accepts the default, Yes.
// On a terminal the question is a Bubble Tea prompt and Ctrl+C returns an
// ErrInput error wrapping ErrInterrupted. Any other input is read line by
// line, and end of input before an answer is an ErrInput error wrapping io.EOF.
func (m *DefaultManager) PromptConfirm(prompt string) (bool, error) {
	if f, ok := m.in.(*os.File); ok && IsTerminal(f) {
		return m.promptTerminal(prompt)
	}
	return m.promptLine(prompt)
}

func (m *DefaultManager) promptTerminal(prompt string) (bool, error) {
	p := tea.NewProgram(newConfirmModel(prompt, m.colorEnabled), tea.WithInput(m.in), tea.WithOutput(m.out))

	finalModel, err := p.Run()
	if err != nil {
		return false, apperrors.NewInputError(err)
	}

	result := finalModel.(confirmModel)
	if result.interrupted {
		return false, apperrors.NewInputError(ErrInterrupted)
	}
	return result.confirmed, nil
}

func (m *DefaultManager) promptLine(prompt string) (bool, error) {
	reader := bufio.NewReader(m.in)
	for {
		fmt.Fprint(m.out, "? "+prompt+" [Y/n]: ")

		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			fmt.Fprintln(m.out)
			return false, apperrors.NewInputError(err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if err == io.EOF {
			fmt.Fprintln(m.out)
			return false, apperrors.NewInputError(err)
		}
		fmt.Fprintln(m.out, "Please answer y or n.")
	}
}

// confirmModel is the Bubble Tea model for yes/no confirmation.
type confirmModel struct {
	prompt      string
	cursor      int // 0 = Yes, 1 = No
	confirmed   bool
	interrupted bool
	done        bool
	color       bool
}

func newConfirmModel(prompt string, color bool) confirmModel {
	return confirmModel{
		prompt: prompt,
		cursor: 0,
		color:  color,
	}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.interrupted = true
			m.done = true
			return m, tea.Quit
		case "n", "N", "q", "esc":
			m.confirmed = false
			m.done = true
			return m, tea.Quit
		case "y", "Y":
			m.confirmed = true
			m.done = true
			return m, tea.Quit
		case "left", "h":
			m.cursor = 0
		case "right", "l":
			m.cursor = 1
		case "tab":
			m.cursor = 1 - m.cursor
		case "enter", " ":
			m.confirmed = m.cursor == 0
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	titleStyle := lipgloss.NewStyle()
	selectedStyle := lipgloss.NewStyle().Underline(true)
	normalStyle := lipgloss.NewStyle()
	if m.color {
		titleStyle = titleStyle.Bold(true)
		selectedStyle = selectedStyle.Bold(true).Foreground(lipgloss.Color("42"))
		normalStyle = normalStyle.Foreground(lipgloss.Color("245"))
	}

	yesStyle, noStyle := normalStyle, normalStyle
	if m.cursor == 0 {
		yesStyle = selectedStyle
	} else {
		noStyle = selectedStyle
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("? " + m.prompt))
	sb.WriteString(" ")
	sb.WriteString(yesStyle.Render("[Y]es"))
	sb.WriteString(" / ")
	sb.WriteString(noStyle.Render("[N]o"))

	return sb.String()
}

// ShowSpinner creates a spinner for loading states. Callers must Start it.
func (m *DefaultManager) ShowSpinner(text string) Spinner {
	return newBubbleSpinner(text, m.out)
}

// ShowError displays an error message to the user.
func (m *DefaultManager) ShowError(message string) {
	fmt.Fprintln(m.out, m.styles.errorStyle.Render(message))
}

// ShowWarning displays a non-blocking warning.
func (m *DefaultManager) ShowWarning(message string) {
	fmt.Fprintln(m.out, m.styles.warning.Render("! "+message))
}

// ShowSuccess displays a success message to the user.
func (m *DefaultManager) ShowSuccess(message string) {
	fmt.Fprintln(m.out, m.styles.success.Render(message))
}

// ShowInfo displays an informational message.
func (m *DefaultManager) ShowInfo(message string) {
	fmt.Fprintln(m.out, m.styles.info.Render(message))
}

// bubbleSpinner implements Spinner with a background Bubble Tea program.
type bubbleSpinner struct {
	text    string
	out     io.Writer
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
}

type spinnerModel struct {
	spinner  spinner.Model
	text     string
	quitting bool
}

// spinnerQuitMsg signals the spinner to quit.
type spinnerQuitMsg struct{}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerQuitMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

func newBubbleSpinner(text string, out io.Writer) *bubbleSpinner {
	return &bubbleSpinner{
		text: text,
		out:  out,
	}
}

func (s *bubbleSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program != nil {
		return
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	model := spinnerModel{
		spinner: sp,
		text:    s.text,
	}

	// The spinner never reads keys; the confirmation prompt owns stdin.
	s.program = tea.NewProgram(model, tea.WithInput(nil), tea.WithOutput(s.out))
	s.done = make(chan struct{})
	go func(p *tea.Program, done chan struct{}) {
		defer close(done)
		_, _ = p.Run()
	}(s.program, s.done)
}

func (s *bubbleSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program == nil {
		return
	}
	s.program.Send(spinnerQuitMsg{})
	select {
	case <-s.done:
	case <-time.After(500 * time.Millisecond):
		s.program.Kill()
	}
	s.program = nil
}

// NonInteractiveManager implements Manager for non-interactive mode (--yes flag).
type NonInteractiveManager struct {
	styles *styles
	out    io.Writer
	errOut io.Writer
}

// NewNonInteractiveManager creates a new NonInteractiveManager.
func NewNonInteractiveManager(colorEnabled bool) *NonInteractiveManager {
	return &NonInteractiveManager{
		styles: newStyles(colorEnabled),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// SetOutput redirects regular and error output.
func (m *NonInteractiveManager) SetOutput(out, errOut io.Writer) {
	m.out = out
	m.errOut = errOut
}

// DisplayMessage prints the message without decoration so it can be piped.
func (m *NonInteractiveManager) DisplayMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	fmt.Fprintln(m.out, message)
	return nil
}

// PromptConfirm always returns true in non-interactive mode.
func (m *NonInteractiveManager) PromptConfirm(prompt string) (bool, error) {
	return true, nil
}

// ShowSpinner returns a no-op spinner in non-interactive mode.
func (m *NonInteractiveManager) ShowSpinner(text string) Spinner {
	return &noopSpinner{}
}

// ShowError displays an error message on stderr.
func (m *NonInteractiveManager) ShowError(message string) {
	fmt.Fprintln(m.errOut, m.styles.errorStyle.Render(message))
}

// ShowWarning displays a warning on stderr.
func (m *NonInteractiveManager) ShowWarning(message string) {
	fmt.Fprintln(m.errOut, m.styles.warning.Render("! "+message))
}

// ShowSuccess displays a success message.
func (m *NonInteractiveManager) ShowSuccess(message string) {
	fmt.Fprintln(m.errOut, m.styles.success.Render(message))
}

// ShowInfo displays an informational message.
func (m *NonInteractiveManager) ShowInfo(message string) {
	fmt.Fprintln(m.errOut, m.styles.info.Render(message))
}

type noopSpinner struct{}

func (s *noopSpinner) Start() {}
func (s *noopSpinner) Stop()  {}
