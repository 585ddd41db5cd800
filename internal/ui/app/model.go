package app

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"studydash/internal/modules/session/domain"
	sessiondto "studydash/internal/modules/session/dto"
	apperrors "studydash/internal/platform/errors"
	"studydash/internal/platform/i18n"
	"studydash/internal/platform/idle"
	"studydash/internal/ui/components"
	"studydash/internal/ui/theme"
	dashboardview "studydash/internal/ui/views/dashboard"
	loginview "studydash/internal/ui/views/login"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type sessionPort interface {
	Bootstrap(ctx context.Context) (sessiondto.SessionOutput, error)
	Login(ctx context.Context, code, birthDate string, remember bool) (sessiondto.SessionOutput, error)
	Refresh(ctx context.Context) (sessiondto.SessionOutput, error)
	Logout(ctx context.Context) (sessiondto.SessionOutput, error)
	SetLanguage(ctx context.Context, lang string) (sessiondto.SessionOutput, error)
	Acknowledge(ctx context.Context) sessiondto.SessionOutput
	Prefill(ctx context.Context, link string) (sessiondto.PrefillOutput, error)
	Snapshot(ctx context.Context) sessiondto.SessionOutput
}


// ─── async messages ───────────────────────────────────────────────────────────

type bootedMsg struct {
	prefill sessiondto.PrefillOutput
	out     sessiondto.SessionOutput
	err     error
}

type sessionMsg struct {
	out sessiondto.SessionOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Language key.Binding
	Logout   key.Binding
	Refresh  key.Binding
	Dismiss  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Language: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "fr/de")),
		Logout:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "logout")),
		Refresh:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		Dismiss:  key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "dismiss")),
		Help:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Language, k.Logout, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Language, k.Logout, k.Refresh},
		{k.Dismiss, k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It renders whatever the session
// controller reports and forwards user intent back to it.
type Model struct {
	session    sessionPort
	scheduler  idle.Scheduler
	refreshDue *atomic.Bool
	catalog    i18n.Catalog
	link       string

	state      sessiondto.SessionOutput
	form       components.SignIn
	dashboard  dashboardview.Model
	spinner    spinner.Model
	keys       keyMap
	help       help.Model
	showHelp   bool
	validation string
	status     string
	width      int
	height     int
}

// NewModel builds the root model and registers its refresh tick with the
// scheduler. link, when set, pre-fills the sign-in form.
func NewModel(session sessionPort, scheduler idle.Scheduler, every time.Duration, catalog i18n.Catalog, link string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	m := Model{
		session:    session,
		scheduler:  scheduler,
		refreshDue: new(atomic.Bool),
		catalog:    catalog,
		link:       link,
		state:      session.Snapshot(context.Background()),
		dashboard:  dashboardview.New(),
		spinner:    sp,
		keys:       defaultKeys(),
		help:       help.New(),
	}
	m.form = components.NewSignIn(m.strings().Login)
	if scheduler != nil {
		due := m.refreshDue
		scheduler.OnIdleTick(func() { due.Store(true) }, every)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.bootCmd())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = m.width
		m.dashboard.SetWidth(m.width)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bootedMsg:
		if msg.prefill.Found {
			m.form.Prefill(msg.prefill.ParticipantCode, msg.prefill.BirthDate)
			m.status = msg.prefill.SanitizedLink
		}
		m.adopt(msg.out, msg.err)
		return m, nil

	case sessionMsg:
		m.adopt(msg.out, msg.err)
		return m, nil

	case components.SignInInvalidMsg:
		m.validation = m.strings().Login.MissingFields
		return m, nil

	case components.SignInSubmitMsg:
		m.validation = ""
		m.state.BusyLoading = true
		return m, m.loginCmd(msg)

	case tea.MouseMsg:
		return m, m.noteActivity()

	case tea.KeyMsg:
		cmds = append(cmds, m.noteActivity())

		if m.showHelp {
			if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, tea.Batch(cmds...)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, tea.Batch(cmds...)
		case key.Matches(msg, m.keys.Language):
			return m, tea.Batch(append(cmds, m.languageCmd(nextLanguage(m.state.Language)))...)
		case key.Matches(msg, m.keys.Logout) && m.state.Authenticated:
			return m, tea.Batch(append(cmds, m.logoutCmd())...)
		case key.Matches(msg, m.keys.Refresh) && m.state.Authenticated:
			return m, tea.Batch(append(cmds, m.refreshCmd())...)
		case key.Matches(msg, m.keys.Dismiss) && m.state.Authenticated && len(m.state.JustCompleted) > 0:
			m.state = m.session.Acknowledge(context.Background())
			return m, tea.Batch(cmds...)
		}

		if !m.state.Authenticated && !m.state.BusyLoading {
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// adopt takes a new controller snapshot. Errors the snapshot already
// describes through LastError are not repeated in the status line.
func (m *Model) adopt(out sessiondto.SessionOutput, err error) {
	m.state = out
	m.form.SetStrings(m.strings().Login)
	switch {
	case err == nil:
		m.status = ""
	case errors.Is(err, apperrors.ErrExchangeInFlight), errors.Is(err, apperrors.ErrNoToken):
		log.Debug().Err(err).Msg("session request skipped")
	default:
		log.Warn().Err(err).Msg("session request failed")
		m.status = err.Error()
	}
}

// noteActivity reports user activity to the scheduler and runs the refresh
// its tick asked for. A tick that lands while signed out or busy is dropped.
func (m Model) noteActivity() tea.Cmd {
	if m.scheduler == nil {
		return nil
	}
	m.scheduler.Activity()
	if !m.refreshDue.Swap(false) {
		return nil
	}
	if !m.state.Authenticated || m.state.BusyLoading {
		return nil
	}
	return m.refreshCmd()
}

func (m Model) strings() i18n.Strings {
	return m.catalog.For(m.state.Language, string(domain.DefaultLanguage))
}

func nextLanguage(current string) string {
	langs := domain.Languages()
	for i, l := range langs {
		if string(l) == current {
			return string(langs[(i+1)%len(langs)])
		}
	}
	return string(domain.DefaultLanguage)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	s := m.strings()
	header := m.renderHeader(s)
	footer := m.renderFooter()

	var content string
	switch {
	case m.showHelp:
		content = m.help.View(m.keys)
	case m.state.BusyLoading && !m.state.Authenticated:
		content = lipgloss.Place(max(m.width-4, 1), max(m.height-6, 3), lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" "+s.App.Loading)
	case m.state.Authenticated:
		content = m.dashboard.View(m.state, s)
	default:
		content = loginview.View(m.form, m.state, s, m.validation)
	}
	return theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", content, "", footer))
}

func (m Model) renderHeader(s i18n.Strings) string {
	langs := make([]string, 0, 2)
	for _, l := range domain.Languages() {
		if string(l) == m.state.Language {
			langs = append(langs, theme.Hot.Render(strings.ToUpper(string(l))))
		} else {
			langs = append(langs, theme.Muted.Render(strings.ToUpper(string(l))))
		}
	}
	left := theme.Title.Render(s.App.Title)
	right := strings.Join(langs, theme.Muted.Render("|"))
	if m.state.Authenticated {
		right += "  " + theme.Muted.Render(s.App.Logout+" (ctrl+o)")
	}
	gap := m.width - 4 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderFooter() string {
	left := m.status
	if m.state.BusyLoading && m.state.Authenticated {
		left = m.spinner.View() + " " + left
	}
	return left + "  " + m.help.ShortHelpView(m.keys.ShortHelp())
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) bootCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var pre sessiondto.PrefillOutput
		if m.link != "" {
			out, err := m.session.Prefill(ctx, m.link)
			if err != nil {
				log.Warn().Err(err).Msg("ignoring launch link")
			} else {
				pre = out
			}
		}
		out, err := m.session.Bootstrap(ctx)
		return bootedMsg{prefill: pre, out: out, err: err}
	}
}

func (m Model) loginCmd(in components.SignInSubmitMsg) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Login(context.Background(), in.ParticipantCode, in.BirthDate, in.Remember)
		return sessionMsg{out: out, err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Refresh(context.Background())
		return sessionMsg{out: out, err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Logout(context.Background())
		return sessionMsg{out: out, err: err}
	}
}

func (m Model) languageCmd(lang string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.SetLanguage(context.Background(), lang)
		return sessionMsg{out: out, err: err}
	}
}
