package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	sessiondto "studydash/internal/modules/session/dto"
	"studydash/internal/platform/i18n"
	"studydash/internal/ui/theme"
)

const transientRefresh = "transient_refresh"

type Model struct {
	bar   progress.Model
	width int
}

func New() Model {
	bar := progress.New(
		progress.WithGradient(string(theme.Sapphire), string(theme.Green)),
		progress.WithoutPercentage(),
	)
	bar.Width = 40
	return Model{bar: bar}
}

func (m *Model) SetWidth(w int) {
	m.width = w
	m.bar.Width = max(10, min(w-20, 60))
}

func (m Model) View(out sessiondto.SessionOutput, s i18n.Strings) string {
	var sections []string
	if banner := s.Congratulate(out.JustCompleted); banner != "" {
		sections = append(sections, theme.Banner.Render(banner)+"\n"+theme.Muted.Render("enter/esc ✕"))
	}
	if out.LastError == transientRefresh {
		sections = append(sections, theme.Warning.Render("⚠ "+s.Login.Errors[transientRefresh]))
	}
	sections = append(sections, theme.Muted.Render(s.Dashboard.InfoBox))
	sections = append(sections, m.stepper(out, s))

	if len(out.Ongoing) > 0 {
		cards := []string{theme.Title.Render(s.Dashboard.TitleOngoing)}
		for _, idx := range out.Ongoing {
			cards = append(cards, m.ongoingCard(out, idx, s))
		}
		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, cards...))
	}
	if len(out.Finished) > 0 {
		cards := []string{theme.Title.Render(s.Dashboard.TitleFinished)}
		for _, idx := range out.Finished {
			cards = append(cards, m.finishedCard(idx, s))
		}
		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, cards...))
	}
	return strings.Join(sections, "\n\n")
}

// stepper renders one marker per form, highlighting the next one to fill in.
func (m Model) stepper(out sessiondto.SessionOutput, s i18n.Strings) string {
	steps := make([]string, len(out.Forms))
	for i, f := range out.Forms {
		switch {
		case f.Finished:
			steps[i] = theme.Done.Render("●")
		case out.HasIncomplete && i == out.FirstIncomplete:
			steps[i] = theme.Hot.Render("◉")
		default:
			steps[i] = theme.Muted.Render("○")
		}
	}
	return s.Dashboard.ProgressionIndicator + "  " + strings.Join(steps, theme.Muted.Render("──"))
}

func (m Model) ongoingCard(out sessiondto.SessionOutput, idx int, s i18n.Strings) string {
	f := out.Forms[idx]
	button := s.Dashboard.ContinueFormButton
	if f.Progress == 0 {
		button = s.Dashboard.StartFormButton
	}
	body := []string{
		theme.Title.Render(s.FormTitle(idx)),
		description(s, idx),
		m.bar.ViewAs(f.Progress) + fmt.Sprintf(" %3.0f%%", f.Progress*100),
	}
	if f.Link != "" {
		body = append(body, theme.Hot.Render("[ "+button+" ]")+" "+theme.Link.Render(f.Link))
	}
	style := theme.Card
	if out.HasIncomplete && idx == out.FirstIncomplete {
		style = theme.CardNext
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, body...))
}

func (m Model) finishedCard(idx int, s i18n.Strings) string {
	body := []string{
		theme.Done.Render("✓ " + s.FormTitle(idx) + " · " + s.Dashboard.Finished),
	}
	if idx < len(s.Dashboard.Forms) && s.Dashboard.Forms[idx].Reward != "" {
		body = append(body, theme.Muted.Render(s.Dashboard.Forms[idx].Reward))
	}
	return theme.CardFinished.Render(lipgloss.JoinVertical(lipgloss.Left, body...))
}

func description(s i18n.Strings, idx int) string {
	if idx < len(s.Dashboard.Forms) {
		return theme.Muted.Render(s.Dashboard.Forms[idx].Description)
	}
	return ""
}
