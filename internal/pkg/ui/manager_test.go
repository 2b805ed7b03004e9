package ui

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/memix/memix/internal/pkg/errors"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestConfirmModel_Update(t *testing.T) {
	tests := []struct {
		name            string
		keys            []tea.KeyMsg
		wantConfirmed   bool
		wantInterrupted bool
	}{
		{"enter accepts default", []tea.KeyMsg{{Type: tea.KeyEnter}}, true, false},
		{"y accepts", []tea.KeyMsg{runeKey('y')}, true, false},
		{"n rejects", []tea.KeyMsg{runeKey('n')}, false, false},
		{"esc rejects", []tea.KeyMsg{{Type: tea.KeyEsc}}, false, false},
		{"move to no then enter", []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyEnter}}, false, false},
		{"move back to yes", []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyLeft}, {Type: tea.KeyEnter}}, true, false},
		{"tab toggles", []tea.KeyMsg{{Type: tea.KeyTab}, {Type: tea.KeyEnter}}, false, false},
		{"ctrl+c interrupts", []tea.KeyMsg{{Type: tea.KeyCtrlC}}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var model tea.Model = newConfirmModel("Use this commit message?", false)
			for _, key := range tt.keys {
				model, _ = model.Update(key)
			}

			result := model.(confirmModel)
			assert.True(t, result.done)
			assert.Equal(t, tt.wantConfirmed, result.confirmed)
			assert.Equal(t, tt.wantInterrupted, result.interrupted)
		})
	}
}

func TestConfirmModel_View(t *testing.T) {
	m := newConfirmModel("Use this commit message?", false)
	view := m.View()

	assert.Contains(t, view, "Use this commit message?")
	assert.Contains(t, view, "[Y]es")
	assert.Contains(t, view, "[N]o")

	m.done = true
	assert.Empty(t, m.View())
}

func TestDefaultManager_PromptConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"enter", "\n", true},
		{"carriage return", "\r\n", true},
		{"y without newline", "y", true},
		{"yes", "yes\n", true},
		{"no", "n\n", false},
		{"upper case no", "NO\n", false},
		{"asks again after an invalid answer", "maybe\nn\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewDefaultManager(false)
			var out bytes.Buffer
			m.SetIO(strings.NewReader(tt.input), &out)

			got, err := m.PromptConfirm("Use this commit message?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultManager_PromptConfirm_EndOfInput(t *testing.T) {
	for _, input := range []string{"", "maybe"} {
		m := NewDefaultManager(false)
		var out bytes.Buffer
		m.SetIO(strings.NewReader(input), &out)

		done := make(chan error, 1)
		go func() {
			_, err := m.PromptConfirm("Use this commit message?")
			done <- err
		}()

		select {
		case err := <-done:
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrInput))
			assert.ErrorIs(t, err, io.EOF)
		case <-time.After(3 * time.Second):
			t.Fatalf("PromptConfirm(%q) did not return at end of input", input)
		}
	}
}

func TestDefaultManager_DisplayMessage(t *testing.T) {
	m := NewDefaultManager(false)
	var out bytes.Buffer
	m.SetIO(strings.NewReader(""), &out)

	require.NoError(t, m.DisplayMessage("Add debug log statement"))

	assert.Contains(t, out.String(), "Suggested commit message:")
	assert.Contains(t, out.String(), `"Add debug log statement"`)

	assert.Error(t, m.DisplayMessage("  "))
}

func TestDefaultManager_StatusMessages(t *testing.T) {
	m := NewDefaultManager(false)
	var out bytes.Buffer
	m.SetIO(strings.NewReader(""), &out)

	m.ShowError("No staged changes found.")
	m.ShowWarning("subject line exceeds 72 characters")
	m.ShowSuccess("Commit created!")
	m.ShowInfo("Commit cancelled.")

	for _, want := range []string{
		"No staged changes found.",
		"! subject line exceeds 72 characters",
		"Commit created!",
		"Commit cancelled.",
	} {
		assert.Contains(t, out.String(), want)
	}
}

func TestNewDefaultManager(t *testing.T) {
	m := NewDefaultManager(true)
	require.NotNil(t, m)
	assert.True(t, m.colorEnabled)
	assert.NotNil(t, m.styles)

	m = NewDefaultManager(false)
	assert.False(t, m.colorEnabled)
}

func TestNonInteractiveManager(t *testing.T) {
	m := NewNonInteractiveManager(false)
	var out, errOut bytes.Buffer
	m.SetOutput(&out, &errOut)

	confirmed, err := m.PromptConfirm("Use this commit message?")
	require.NoError(t, err)
	assert.True(t, confirmed)

	require.NoError(t, m.DisplayMessage("Add debug log statement"))
	assert.Equal(t, "Add debug log statement\n", out.String())

	m.ShowSuccess("Commit created!")
	m.ShowError("Failed to generate commit message.")
	assert.Contains(t, errOut.String(), "Commit created!")
	assert.Contains(t, errOut.String(), "Failed to generate commit message.")

	spinner := m.ShowSpinner("Generating commit message...")
	_, ok := spinner.(*noopSpinner)
	assert.True(t, ok, "non-interactive spinner should be a no-op")
	spinner.Start()
	spinner.Stop()
}

func TestWithConfirm(t *testing.T) {
	base := NewNonInteractiveManager(false)
	var out, errOut bytes.Buffer
	base.SetOutput(&out, &errOut)

	var asked string
	m := WithConfirm(base, func(prompt string) (bool, error) {
		asked = prompt
		return false, nil
	})

	confirmed, err := m.PromptConfirm("Use this commit message?")
	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.Equal(t, "Use this commit message?", asked)

	require.NoError(t, m.DisplayMessage("Fix typo"))
	assert.Contains(t, out.String(), "Fix typo", "display methods should delegate to the wrapped manager")

	failing := WithConfirm(base, func(string) (bool, error) {
		return false, errors.New("closed stdin")
	})
	_, err = failing.PromptConfirm("?")
	assert.EqualError(t, err, "closed stdin")
}

func TestDefaultSpinner(t *testing.T) {
	t.Run("Start and Stop", func(t *testing.T) {
		m := NewDefaultManager(false)
		var out bytes.Buffer
		m.SetIO(strings.NewReader(""), &out)

		spinner := m.ShowSpinner("Loading...")
		spinner.Start()
		spinner.Stop()
	})

	t.Run("Double Start and Stop should not panic", func(t *testing.T) {
		m := NewDefaultManager(false)
		var out bytes.Buffer
		m.SetIO(strings.NewReader(""), &out)

		spinner := m.ShowSpinner("Loading...")
		spinner.Start()
		spinner.Start()
		spinner.Stop()
		spinner.Stop()
	})

	t.Run("Stop without Start", func(t *testing.T) {
		spinner := NewDefaultManager(false).ShowSpinner("Loading...")
		spinner.Stop()
	})
}
