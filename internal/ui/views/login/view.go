package login

import (
	"strings"

	sessiondto "studydash/internal/modules/session/dto"
	"studydash/internal/platform/i18n"
	"studydash/internal/ui/components"
	"studydash/internal/ui/theme"
)

// View renders the sign-in screen. validation is the form's own complaint,
// shown in place of the session error when set.
func View(form components.SignIn, out sessiondto.SessionOutput, s i18n.Strings, validation string) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(s.Login.Title) + "\n")
	sb.WriteString(theme.Muted.Render(s.Login.Description) + "\n\n")
	sb.WriteString(form.View() + "\n")

	switch {
	case validation != "":
		sb.WriteString("\n" + theme.Error.Render(validation))
	case out.LastError != "" && out.LastError != "transient_refresh":
		sb.WriteString("\n" + theme.Error.Render(s.Login.Errors[out.LastError]))
	}
	return sb.String()
}
