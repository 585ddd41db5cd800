package domain

import (
	"fmt"
	"strings"

	apperrors "studydash/internal/platform/errors"
)

// Persistence keys shared by the durable and ephemeral stores.
const (
	KeyToken       = "token"
	KeyStorageMode = "useLocalStorage"
	KeyLanguage    = "language"
)

type State int

const (
	StateBootstrapping State = iota
	StateLoggingIn
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateLoggingIn:
		return "logging_in"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrorKind classifies the outcome of the most recent failed exchange.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorNetwork
	ErrorInvalidCredentials
	ErrorTokenExpired
	ErrorTransientRefresh
)

// AllErrorKinds lists every kind that needs a user-facing description.
func AllErrorKinds() []ErrorKind {
	return []ErrorKind{ErrorNetwork, ErrorInvalidCredentials, ErrorTokenExpired, ErrorTransientRefresh}
}

// ErrorKeys returns the description keys of AllErrorKinds.
func ErrorKeys() []string {
	kinds := AllErrorKinds()
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = k.String()
	}
	return keys
}

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return ""
	case ErrorNetwork:
		return "network"
	case ErrorInvalidCredentials:
		return "invalid_credentials"
	case ErrorTokenExpired:
		return "token_expired"
	case ErrorTransientRefresh:
		return "transient_refresh"
	}
	return fmt.Sprintf("error(%d)", int(k))
}

// Blocking reports whether the error belongs on the sign-in screen.
func (k ErrorKind) Blocking() bool {
	return k == ErrorNetwork || k == ErrorInvalidCredentials || k == ErrorTokenExpired
}

type StorageMode int

const (
	StorageEphemeral StorageMode = iota
	StorageDurable
)

func (m StorageMode) String() string {
	if m == StorageDurable {
		return "durable"
	}
	return "ephemeral"
}

type Language string

const (
	LanguageFrench Language = "fr"
	LanguageGerman Language = "de"

	DefaultLanguage = LanguageFrench
)

func Languages() []Language {
	return []Language{LanguageFrench, LanguageGerman}
}

func ParseLanguage(raw string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(raw))) {
	case LanguageFrench:
		return LanguageFrench, nil
	case LanguageGerman:
		return LanguageGerman, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedLanguage, raw)
}

// Credentials are staged by the sign-in form and never persisted.
type Credentials struct {
	ParticipantCode string
	BirthDate       string
}

// Session is an immutable snapshot of the controller state. Transitions
// build a new value; use Clone before handing one out.
type Session struct {
	State         State
	Authenticated bool
	BusyLoading   bool
	Token         string
	StorageMode   StorageMode
	Progress      []float64
	FormLinks     []string
	JustCompleted []int
	Credentials   Credentials
	LastError     ErrorKind
	Language      Language
}

func NewSession() Session {
	return Session{
		State:       StateBootstrapping,
		BusyLoading: true,
		Language:    DefaultLanguage,
	}
}

func (s Session) Clone() Session {
	out := s
	out.Progress = append([]float64(nil), s.Progress...)
	out.FormLinks = append([]string(nil), s.FormLinks...)
	out.JustCompleted = append([]int(nil), s.JustCompleted...)
	return out
}

// HasData reports whether there is a dashboard worth showing.
func (s Session) HasData() bool {
	return len(s.Progress) > 0 && len(s.FormLinks) > 0
}
