package stubserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	sessionout "studydash/internal/modules/session/adapter/out"
	"studydash/internal/modules/session/domain"
	sessiondto "studydash/internal/modules/session/dto"
	port "studydash/internal/modules/session/port/out"
	"studydash/internal/modules/session/service"
	"studydash/internal/modules/session/usecase"
	"studydash/internal/platform/clock"
	apperrors "studydash/internal/platform/errors"
	"studydash/internal/stubserver"
)

func startStub(t *testing.T, clk clock.Clock) *httptest.Server {
	t.Helper()
	roster, err := stubserver.LoadRoster("testdata/roster.yaml")
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	issuer := stubserver.NewTokenIssuer([]byte("test-secret"), 10*time.Minute, clk)
	srv := httptest.NewServer(stubserver.New(roster, issuer).Router())
	t.Cleanup(srv.Close)
	return srv
}

func exchange(t *testing.T, url string, req domain.ExchangeRequest) domain.ExchangeResponse {
	t.Helper()
	resp, err := sessionout.NewHTTPProgressEndpoint(url, time.Second).Exchange(context.Background(), req)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	return resp
}

func TestStubCredentialAndTokenExchange(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	srv := startStub(t, clk)

	first := exchange(t, srv.URL, domain.CredentialRequest(domain.Credentials{ParticipantCode: "AB12", BirthDate: "1990-01-01"}))
	if !first.OK || first.Token == "" || !reflect.DeepEqual(first.Progression, []float64{1, 0.5, 0, 0}) {
		t.Fatalf("unexpected response: %+v", first)
	}

	clk.Advance(time.Second)
	second := exchange(t, srv.URL, domain.TokenRequest(first.Token))
	if !second.OK || second.Token == first.Token {
		t.Fatalf("expected success with a rotated token: %+v", second)
	}

	clk.Advance(11 * time.Minute)
	third := exchange(t, srv.URL, domain.TokenRequest(second.Token))
	if !third.Expired() {
		t.Fatalf("expected expired rejection, got %+v", third)
	}
}

func TestStubRejectsBadCredentialsAndTokens(t *testing.T) {
	t.Parallel()
	srv := startStub(t, nil)

	for _, creds := range []domain.Credentials{
		{ParticipantCode: "AB12", BirthDate: "2000-01-01"},
		{ParticipantCode: "nobody", BirthDate: "1990-01-01"},
	} {
		resp := exchange(t, srv.URL, domain.CredentialRequest(creds))
		if resp.OK || resp.Reason == nil || *resp.Reason != 1 {
			t.Fatalf("%+v: expected reason 1, got %+v", creds, resp)
		}
	}

	other := stubserver.NewTokenIssuer([]byte("another-secret"), time.Minute, nil)
	forged, err := other.Issue("AB12")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if resp := exchange(t, srv.URL, domain.TokenRequest(forged)); !resp.Expired() {
		t.Fatalf("forged token should be rejected as expired, got %+v", resp)
	}
	if resp := exchange(t, srv.URL, domain.TokenRequest("not-a-jwt")); !resp.Expired() {
		t.Fatalf("garbage token should be rejected as expired, got %+v", resp)
	}
}

func TestStubMalformedBodyIsBadRequest(t *testing.T) {
	t.Parallel()
	srv := startStub(t, nil)
	for _, body := range []string{`{`, `{}`, `{"token":"t","participantCode":"AB12"}`} {
		res, err := http.Post(srv.URL, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, res.StatusCode)
		}
	}
	_, err := sessionout.NewHTTPProgressEndpoint(srv.URL, time.Second).Exchange(context.Background(), domain.ExchangeRequest{})
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("expected ErrTransport for 400, got %v", err)
	}
}

func TestRosterValidation(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"missing birth date": "participants:\n  - code: A\n",
		"duplicate":          "participants:\n  - {code: A, birth_date: x}\n  - {code: A, birth_date: y}\n",
	}
	for name, raw := range cases {
		if _, err := stubserver.ParseRoster([]byte(raw)); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

// A dashboard refreshing against the stub sees forms completed through the
// progress route, and is signed out once its token lapses.
func TestDashboardAgainstStub(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	srv := startStub(t, clk)
	stores := port.Stores{Durable: sessionout.NewMemoryKeyValueStore(), Ephemeral: sessionout.NewMemoryKeyValueStore()}
	uc := usecase.NewInteractor(service.NewSessionService(), sessionout.NewHTTPProgressEndpoint(srv.URL, time.Second), stores)

	out, err := uc.Login(ctx, sessiondto.LoginInput{ParticipantCode: "CD34", BirthDate: "1985-06-30", RememberMe: true})
	if err != nil || !out.Authenticated {
		t.Fatalf("login: %v %+v", err, out)
	}

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/participants/CD34/progress", strings.NewReader(`{"progression":[1,0,1,0.3]}`))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put progress: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.StatusCode)
	}

	clk.Advance(time.Minute)
	out, err = uc.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !reflect.DeepEqual(out.JustCompleted, []int{0, 2}) || out.FirstIncomplete != 1 {
		t.Fatalf("unexpected refresh: %+v", out)
	}

	clk.Advance(time.Hour)
	out, err = uc.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if out.Authenticated || out.LastError != "token_expired" {
		t.Fatalf("expected expiry sign-out, got %+v", out)
	}
}
