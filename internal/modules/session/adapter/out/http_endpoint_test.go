package out_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	sessionout "studydash/internal/modules/session/adapter/out"
	"studydash/internal/modules/session/domain"
	apperrors "studydash/internal/platform/errors"
)

func TestHTTPProgressEndpointPostsJSON(t *testing.T) {
	t.Parallel()
	var got domain.ExchangeRequest
	var requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get("Accept") != "application/json" {
			t.Errorf("unexpected headers: %v", r.Header)
		}
		requestID = r.Header.Get("X-Request-ID")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true,"progression":[1,0.25],"formLinks":["a","b"],"token":"next"}`))
	}))
	defer srv.Close()

	endpoint := sessionout.NewHTTPProgressEndpoint(srv.URL, time.Second)
	resp, err := endpoint.Exchange(context.Background(), domain.TokenRequest("tok"))
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if got.Token != "tok" || got.ParticipantCode != "" {
		t.Fatalf("unexpected request body: %+v", got)
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected uuid request id, got %q", requestID)
	}
	if !resp.OK || resp.Token != "next" || len(resp.Progression) != 2 || resp.Progression[1] != 0.25 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHTTPProgressEndpointDecodesRejection(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"reason":0}`))
	}))
	defer srv.Close()

	resp, err := sessionout.NewHTTPProgressEndpoint(srv.URL, time.Second).
		Exchange(context.Background(), domain.TokenRequest("old"))
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if !resp.Expired() {
		t.Fatalf("expected expired rejection, got %+v", resp)
	}
}

func TestHTTPProgressEndpointTransportErrors(t *testing.T) {
	t.Parallel()
	statusSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer statusSrv.Close()
	garbageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer garbageSrv.Close()
	trailingSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"progression":[1],"formLinks":["a"],"token":"t"}xyz`))
	}))
	defer trailingSrv.Close()
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	for name, url := range map[string]string{
		"status":      statusSrv.URL,
		"undecodable": garbageSrv.URL,
		"trailing":    trailingSrv.URL,
		"unreachable": closedURL,
		"unset":       "",
	} {
		_, err := sessionout.NewHTTPProgressEndpoint(url, time.Second).
			Exchange(context.Background(), domain.CredentialRequest(domain.Credentials{ParticipantCode: "P", BirthDate: "D"}))
		if !errors.Is(err, apperrors.ErrTransport) {
			t.Fatalf("%s: expected ErrTransport, got %v", name, err)
		}
	}
}
