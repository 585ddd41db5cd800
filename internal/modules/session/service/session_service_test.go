package service_test

import (
	"errors"
	"reflect"
	"testing"

	"studydash/internal/modules/session/domain"
	"studydash/internal/modules/session/service"
)

func authenticated() domain.Session {
	s := domain.NewSession()
	s.State = domain.StateAuthenticated
	s.Authenticated = true
	s.BusyLoading = false
	s.Token = "tok"
	s.StorageMode = domain.StorageDurable
	s.Progress = []float64{0.5, 1}
	s.FormLinks = []string{"a", "b"}
	s.Credentials = domain.Credentials{ParticipantCode: "P", BirthDate: "D"}
	s.Language = domain.LanguageGerman
	return s
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	t.Parallel()
	svc := service.NewSessionService()
	cur := authenticated()
	before := cur.Clone()

	_, _ = svc.CompleteRefresh(cur, domain.ExchangeResponse{OK: true, Progression: []float64{1, 1}, FormLinks: []string{"x", "y"}, Token: "t2"}, nil)
	_ = svc.Reset(cur)
	_ = svc.Acknowledge(cur)
	_ = svc.BeginRefresh(cur)

	if !reflect.DeepEqual(cur, before) {
		t.Fatalf("input mutated:\nbefore %+v\nafter  %+v", before, cur)
	}
}

func TestCompleteRefreshOutcomes(t *testing.T) {
	t.Parallel()
	svc := service.NewSessionService()
	expired := domain.ReasonExpired
	other := 7

	tests := []struct {
		name      string
		cur       domain.Session
		resp      domain.ExchangeResponse
		err       error
		outcome   service.RefreshOutcome
		authed    bool
		lastError domain.ErrorKind
	}{
		{
			name:    "adopted",
			cur:     authenticated(),
			resp:    domain.ExchangeResponse{OK: true, Progression: []float64{1, 1}, FormLinks: []string{"a", "b"}, Token: "t2"},
			outcome: service.RefreshAdopted,
			authed:  true,
		},
		{
			name:      "expired",
			cur:       authenticated(),
			resp:      domain.ExchangeResponse{Reason: &expired},
			outcome:   service.RefreshExpired,
			lastError: domain.ErrorTokenExpired,
		},
		{
			name:      "rejected for another reason with data",
			cur:       authenticated(),
			resp:      domain.ExchangeResponse{Reason: &other},
			outcome:   service.RefreshStale,
			authed:    true,
			lastError: domain.ErrorTransientRefresh,
		},
		{
			name:      "transport failure with data",
			cur:       authenticated(),
			err:       errors.New("boom"),
			outcome:   service.RefreshStale,
			authed:    true,
			lastError: domain.ErrorTransientRefresh,
		},
		{
			name:    "transport failure without data",
			cur:     svc.StageToken(domain.NewSession(), "tok", domain.StorageDurable),
			err:     errors.New("boom"),
			outcome: service.RefreshDropped,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			next, outcome := svc.CompleteRefresh(tc.cur, tc.resp, tc.err)
			if outcome != tc.outcome {
				t.Fatalf("expected outcome %d, got %d", tc.outcome, outcome)
			}
			if next.Authenticated != tc.authed || next.LastError != tc.lastError || next.BusyLoading {
				t.Fatalf("unexpected session: %+v", next)
			}
			if !tc.authed && (next.Token != "" || len(next.Progress) != 0) {
				t.Fatalf("signed-out session must carry no token or progress: %+v", next)
			}
		})
	}
}

func TestCompleteRefreshAdoptsRotatedTokenAndDiff(t *testing.T) {
	t.Parallel()
	svc := service.NewSessionService()
	next, _ := svc.CompleteRefresh(authenticated(), domain.ExchangeResponse{
		OK: true, Progression: []float64{1, 1}, FormLinks: []string{"a", "b"}, Token: "t2",
	}, nil)
	if next.Token != "t2" {
		t.Fatalf("expected rotated token, got %q", next.Token)
	}
	if !reflect.DeepEqual(next.JustCompleted, []int{0}) {
		t.Fatalf("expected [0], got %v", next.JustCompleted)
	}
}

func TestCompleteLoginClassifiesErrors(t *testing.T) {
	t.Parallel()
	svc := service.NewSessionService()
	cur := svc.BeginLogin(domain.NewSession(), domain.Credentials{ParticipantCode: "P", BirthDate: "D"}, domain.StorageEphemeral)
	if cur.State != domain.StateLoggingIn || !cur.BusyLoading {
		t.Fatalf("unexpected begin state: %+v", cur)
	}

	next := svc.CompleteLogin(cur, domain.ExchangeResponse{}, errors.New("offline"))
	if next.LastError != domain.ErrorNetwork || next.State != domain.StateUnauthenticated {
		t.Fatalf("unexpected state: %+v", next)
	}
	next = svc.CompleteLogin(cur, domain.ExchangeResponse{OK: false}, nil)
	if next.LastError != domain.ErrorInvalidCredentials {
		t.Fatalf("unexpected state: %+v", next)
	}
	next = svc.CompleteLogin(cur, domain.ExchangeResponse{OK: true, Progression: []float64{0}, FormLinks: []string{"a"}, Token: "t"}, nil)
	if !next.Authenticated || next.Token != "t" || len(next.JustCompleted) != 0 {
		t.Fatalf("unexpected state: %+v", next)
	}
}

func TestFailedLoginClearsPreviousSession(t *testing.T) {
	t.Parallel()
	svc := service.NewSessionService()
	cur := svc.BeginLogin(authenticated(), domain.Credentials{ParticipantCode: "Q", BirthDate: "E"}, domain.StorageEphemeral)

	for _, next := range []domain.Session{
		svc.CompleteLogin(cur, domain.ExchangeResponse{}, errors.New("offline")),
		svc.CompleteLogin(cur, domain.ExchangeResponse{OK: false}, nil),
	} {
		if next.Authenticated || next.Token != "" || next.Progress != nil || next.FormLinks != nil {
			t.Fatalf("failed login kept session data: %+v", next)
		}
		if next.Credentials.ParticipantCode != "Q" {
			t.Fatalf("credentials should stay staged: %+v", next.Credentials)
		}
	}
}

func TestResetKeepsOnlyLanguage(t *testing.T) {
	t.Parallel()
	svc := service.NewSessionService()
	next := svc.Reset(authenticated())
	want := domain.Session{
		State:       domain.StateUnauthenticated,
		StorageMode: domain.StorageEphemeral,
		Language:    domain.LanguageGerman,
	}
	if !reflect.DeepEqual(next, want) {
		t.Fatalf("expected %+v, got %+v", want, next)
	}
}

func TestPrefillOnlyOverwritesPresentFields(t *testing.T) {
	t.Parallel()
	svc := service.NewSessionService()
	cur := domain.NewSession()
	cur.Credentials = domain.Credentials{ParticipantCode: "old", BirthDate: "kept"}
	next := svc.Prefill(cur, domain.LaunchLink{Credentials: domain.Credentials{ParticipantCode: "new"}, Found: true})
	if next.Credentials.ParticipantCode != "new" || next.Credentials.BirthDate != "kept" {
		t.Fatalf("unexpected credentials: %+v", next.Credentials)
	}
}
