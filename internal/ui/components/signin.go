package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"studydash/internal/platform/i18n"
	"studydash/internal/ui/theme"
)

// SignInSubmitMsg is emitted when both fields are filled and the user confirms.
type SignInSubmitMsg struct {
	ParticipantCode string
	BirthDate       string
	Remember        bool
}

// SignInInvalidMsg is emitted when the user confirms with a field left empty.
type SignInInvalidMsg struct{}

const (
	focusCode = iota
	focusBirthDate
	focusRemember
	focusSubmit
	focusCount
)

// SignIn is the participant code / birth date form.
type SignIn struct {
	code      textinput.Model
	birthDate textinput.Model
	remember  bool
	focus     int
	strings   i18n.LoginStrings
}

func NewSignIn(s i18n.LoginStrings) SignIn {
	code := textinput.New()
	code.CharLimit = 64
	code.Focus()

	birth := textinput.New()
	birth.Placeholder = "YYYY-MM-DD"
	birth.CharLimit = 10

	return SignIn{code: code, birthDate: birth, strings: s}
}

func (f *SignIn) SetStrings(s i18n.LoginStrings) { f.strings = s }

// Prefill sets whichever fields are non-empty.
func (f *SignIn) Prefill(code, birthDate string) {
	if code != "" {
		f.code.SetValue(code)
	}
	if birthDate != "" {
		f.birthDate.SetValue(birthDate)
	}
}

func (f SignIn) Update(msg tea.Msg) (SignIn, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			f.setFocus((f.focus + 1) % focusCount)
			return f, nil
		case "shift+tab", "up":
			f.setFocus((f.focus + focusCount - 1) % focusCount)
			return f, nil
		case " ":
			if f.focus == focusRemember {
				f.remember = !f.remember
				return f, nil
			}
		case "enter":
			if f.focus == focusRemember {
				f.remember = !f.remember
				return f, nil
			}
			if f.focus == focusCode {
				f.setFocus(focusBirthDate)
				return f, nil
			}
			return f, f.submit()
		}
	}
	var cmd tea.Cmd
	switch f.focus {
	case focusCode:
		f.code, cmd = f.code.Update(msg)
	case focusBirthDate:
		f.birthDate, cmd = f.birthDate.Update(msg)
	}
	return f, cmd
}

func (f SignIn) submit() tea.Cmd {
	code := strings.TrimSpace(f.code.Value())
	birth := strings.TrimSpace(f.birthDate.Value())
	if code == "" || birth == "" {
		return func() tea.Msg { return SignInInvalidMsg{} }
	}
	remember := f.remember
	return func() tea.Msg {
		return SignInSubmitMsg{ParticipantCode: code, BirthDate: birth, Remember: remember}
	}
}

func (f *SignIn) setFocus(i int) {
	f.focus = i
	f.code.Blur()
	f.birthDate.Blur()
	switch i {
	case focusCode:
		f.code.Focus()
	case focusBirthDate:
		f.birthDate.Focus()
	}
}

func (f SignIn) View() string {
	var sb strings.Builder
	sb.WriteString(f.label(focusCode, f.strings.FieldParticipant) + "\n")
	sb.WriteString("  " + f.code.View() + "\n\n")
	sb.WriteString(f.label(focusBirthDate, f.strings.FieldBirthDate) + "\n")
	sb.WriteString("  " + f.birthDate.View() + "\n\n")

	box := "[ ]"
	if f.remember {
		box = "[x]"
	}
	sb.WriteString(f.label(focusRemember, box+" "+f.strings.RememberCheckbox) + "\n\n")
	sb.WriteString(f.label(focusSubmit, "[ "+f.strings.LoginButton+" ]"))
	return sb.String()
}

func (f SignIn) label(i int, text string) string {
	if f.focus == i {
		return theme.Hot.Render("> " + text)
	}
	return theme.Muted.Render("  " + text)
}
