package service

import (
	"github.com/rs/zerolog/log"

	"studydash/internal/modules/session/domain"
)

// RefreshOutcome tells the caller what a token exchange did to the session,
// so it can mirror the change into persistence.
type RefreshOutcome int

const (
	// RefreshAdopted: new progress and a rotated token were taken.
	RefreshAdopted RefreshOutcome = iota
	// RefreshStale: the exchange failed but cached data is still shown.
	RefreshStale
	// RefreshDropped: the exchange failed and there was nothing to show.
	RefreshDropped
	// RefreshExpired: the endpoint rejected the token as expired.
	RefreshExpired
)

// SessionService computes session transitions. It never mutates its input
// and performs no I/O.
type SessionService struct{}

func NewSessionService() *SessionService {
	return &SessionService{}
}

// StageToken prepares a bootstrap token exchange.
func (s *SessionService) StageToken(cur domain.Session, token string, mode domain.StorageMode) domain.Session {
	next := cur.Clone()
	next.State = domain.StateBootstrapping
	next.BusyLoading = true
	next.Token = token
	next.StorageMode = mode
	return next
}

// NoToken ends a bootstrap that found nothing to exchange.
func (s *SessionService) NoToken(cur domain.Session, mode domain.StorageMode) domain.Session {
	next := cur.Clone()
	next.StorageMode = mode
	next.State = domain.StateUnauthenticated
	next.Authenticated = false
	next.BusyLoading = false
	next.Token = ""
	return next
}

func (s *SessionService) BeginLogin(cur domain.Session, creds domain.Credentials, mode domain.StorageMode) domain.Session {
	next := cur.Clone()
	next.State = domain.StateLoggingIn
	next.BusyLoading = true
	next.Credentials = creds
	next.StorageMode = mode
	next.LastError = domain.ErrorNone
	return next
}

func (s *SessionService) CompleteLogin(cur domain.Session, resp domain.ExchangeResponse, err error) domain.Session {
	next := cur.Clone()
	next.BusyLoading = false
	switch {
	case err != nil:
		next = s.signOut(next)
		next.LastError = domain.ErrorNetwork
	case !resp.OK:
		next = s.signOut(next)
		next.LastError = domain.ErrorInvalidCredentials
	default:
		next = s.adopt(next, resp, nil)
	}
	return next
}

// BeginRefresh marks a token exchange outstanding without leaving the
// current state, so a dashboard stays visible while it runs.
func (s *SessionService) BeginRefresh(cur domain.Session) domain.Session {
	next := cur.Clone()
	next.BusyLoading = true
	if next.LastError == domain.ErrorTransientRefresh {
		next.LastError = domain.ErrorNone
	}
	return next
}

func (s *SessionService) CompleteRefresh(cur domain.Session, resp domain.ExchangeResponse, err error) (domain.Session, RefreshOutcome) {
	next := cur.Clone()
	next.BusyLoading = false
	switch {
	case err == nil && resp.OK:
		return s.adopt(next, resp, domain.CompletionDiff(cur.Progress, resp.Progression)), RefreshAdopted
	case err == nil && resp.Expired():
		next = s.signOut(next)
		next.LastError = domain.ErrorTokenExpired
		return next, RefreshExpired
	case cur.HasData():
		next.State = domain.StateAuthenticated
		next.Authenticated = true
		next.LastError = domain.ErrorTransientRefresh
		return next, RefreshStale
	default:
		next = s.signOut(next)
		next.LastError = domain.ErrorNone
		return next, RefreshDropped
	}
}

// Reset is the logout transition. Only the language survives.
func (s *SessionService) Reset(cur domain.Session) domain.Session {
	return domain.Session{
		State:       domain.StateUnauthenticated,
		StorageMode: domain.StorageEphemeral,
		Language:    cur.Language,
	}
}

func (s *SessionService) WithLanguage(cur domain.Session, lang domain.Language) domain.Session {
	next := cur.Clone()
	next.Language = lang
	return next
}

func (s *SessionService) Acknowledge(cur domain.Session) domain.Session {
	next := cur.Clone()
	next.JustCompleted = nil
	return next
}

func (s *SessionService) Prefill(cur domain.Session, link domain.LaunchLink) domain.Session {
	next := cur.Clone()
	if link.Credentials.ParticipantCode != "" {
		next.Credentials.ParticipantCode = link.Credentials.ParticipantCode
	}
	if link.Credentials.BirthDate != "" {
		next.Credentials.BirthDate = link.Credentials.BirthDate
	}
	return next
}

func (s *SessionService) adopt(next domain.Session, resp domain.ExchangeResponse, justCompleted []int) domain.Session {
	if !domain.Aligned(resp.Progression, resp.FormLinks) {
		log.Warn().
			Int("progression", len(resp.Progression)).
			Int("form_links", len(resp.FormLinks)).
			Msg("progress and form links differ in length, showing what lines up")
	}
	next.State = domain.StateAuthenticated
	next.Authenticated = true
	next.Progress = append([]float64(nil), resp.Progression...)
	next.FormLinks = append([]string(nil), resp.FormLinks...)
	next.Token = resp.Token
	next.JustCompleted = justCompleted
	next.LastError = domain.ErrorNone
	return next
}

func (s *SessionService) signOut(next domain.Session) domain.Session {
	next.State = domain.StateUnauthenticated
	next.Authenticated = false
	next.Token = ""
	next.Progress = nil
	next.FormLinks = nil
	next.JustCompleted = nil
	return next
}
