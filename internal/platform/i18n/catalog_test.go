package i18n_test

import (
	"strings"
	"testing"

	"studydash/internal/platform/i18n"
)

var errorKeys = []string{"network", "invalid_credentials", "token_expired", "transient_refresh"}

func TestEmbeddedCatalogIsComplete(t *testing.T) {
	t.Parallel()
	catalog, err := i18n.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := catalog.Validate([]string{"fr", "de"}, errorKeys); err != nil {
		t.Fatalf("embedded catalog invalid: %v", err)
	}
}

func TestValidateReportsMissingErrorAndFormMismatch(t *testing.T) {
	t.Parallel()
	raw := `
fr:
  login:
    errors:
      network: x
  dashboard:
    forms:
      - title: a
de:
  login:
    errors:
      network: y
  dashboard:
    forms: []
`
	catalog, err := i18n.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := catalog.Validate([]string{"fr"}, []string{"network", "token_expired"}); err == nil || !strings.Contains(err.Error(), "token_expired") {
		t.Fatalf("expected missing error description, got %v", err)
	}
	if err := catalog.Validate([]string{"fr", "de"}, []string{"network"}); err == nil || !strings.Contains(err.Error(), "forms") {
		t.Fatalf("expected form count mismatch, got %v", err)
	}
	if err := catalog.Validate([]string{"it"}, nil); err == nil {
		t.Fatalf("expected missing language error")
	}
}

func TestCongratulate(t *testing.T) {
	t.Parallel()
	catalog, err := i18n.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	fr := catalog.For("fr", "fr")
	if msg := fr.Congratulate(nil); msg != "" {
		t.Fatalf("expected empty message, got %q", msg)
	}
	if msg := fr.Congratulate([]int{1}); !strings.Contains(msg, "Suivi à 6 mois") {
		t.Fatalf("single completion must name the form: %q", msg)
	}
	if msg := fr.Congratulate([]int{0, 2}); !strings.Contains(msg, "2 questionnaires") {
		t.Fatalf("multiple completions must give the count: %q", msg)
	}
	if title := fr.FormTitle(9); title != "#10" {
		t.Fatalf("unexpected fallback title %q", title)
	}
	if de := catalog.For("it", "de"); de.App.Title != "Mein Studienfortschritt" {
		t.Fatalf("fallback language not applied")
	}
}
