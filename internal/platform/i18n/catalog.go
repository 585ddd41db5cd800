// Package i18n holds the localized texts shown by the dashboard.
package i18n

import (
	_ "embed"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed strings.yaml
var embedded []byte

type Strings struct {
	App             AppStrings             `yaml:"app"`
	Login           LoginStrings           `yaml:"login"`
	Dashboard       DashboardStrings       `yaml:"dashboard"`
	Congratulations CongratulationsStrings `yaml:"congratulations"`
}

type AppStrings struct {
	Title   string `yaml:"title"`
	Logout  string `yaml:"logout"`
	Loading string `yaml:"loading"`
}

type LoginStrings struct {
	Title            string            `yaml:"title"`
	Description      string            `yaml:"description"`
	FieldParticipant string            `yaml:"field_participant"`
	FieldBirthDate   string            `yaml:"field_birthdate"`
	RememberCheckbox string            `yaml:"remember_checkbox"`
	LoginButton      string            `yaml:"login_button"`
	MissingFields    string            `yaml:"missing_fields"`
	Errors           map[string]string `yaml:"errors"`
}

type DashboardStrings struct {
	InfoBox              string `yaml:"info_box"`
	TitleOngoing         string `yaml:"title_ongoing"`
	TitleFinished        string `yaml:"title_finished"`
	ProgressionIndicator string `yaml:"progression_indicator"`
	StartFormButton      string `yaml:"start_form_button"`
	ContinueFormButton   string `yaml:"continue_form_button"`
	Finished             string `yaml:"finished"`
	Forms                []Form `yaml:"forms"`
}

// Form describes one study form. Its position in Forms is its identity and
// matches the index in the participant's progress vector.
type Form struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Reward      string `yaml:"reward"`
}

type CongratulationsStrings struct {
	OneStart  string `yaml:"one_start"`
	OneEnd    string `yaml:"one_end"`
	ManyStart string `yaml:"many_start"`
	ManyEnd   string `yaml:"many_end"`
}

// Catalog maps a language code to its strings.
type Catalog map[string]Strings

func Load() (Catalog, error) {
	return Parse(embedded)
}

func Parse(raw []byte) (Catalog, error) {
	catalog := Catalog{}
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("decode strings: %w", err)
	}
	return catalog, nil
}

// Validate checks that every language in langs exists, describes every error
// key, and lists the same number of forms.
func (c Catalog) Validate(langs []string, errorKeys []string) error {
	forms := -1
	for _, lang := range langs {
		s, ok := c[lang]
		if !ok {
			return fmt.Errorf("strings for language %q are missing", lang)
		}
		for _, key := range errorKeys {
			if s.Login.Errors[key] == "" {
				return fmt.Errorf("language %q has no description for error %q", lang, key)
			}
		}
		if forms >= 0 && len(s.Dashboard.Forms) != forms {
			return fmt.Errorf("language %q lists %d forms, expected %d", lang, len(s.Dashboard.Forms), forms)
		}
		forms = len(s.Dashboard.Forms)
	}
	return nil
}

// For returns the strings of lang, falling back to fallback.
func (c Catalog) For(lang, fallback string) Strings {
	if s, ok := c[lang]; ok {
		return s
	}
	return c[fallback]
}

// FormTitle returns the title of form i, or a positional label when the
// catalog has fewer forms than the participant's progress vector.
func (s Strings) FormTitle(i int) string {
	if i >= 0 && i < len(s.Dashboard.Forms) {
		return s.Dashboard.Forms[i].Title
	}
	return "#" + strconv.Itoa(i+1)
}

// Congratulate builds the message for forms that were just completed.
func (s Strings) Congratulate(indices []int) string {
	switch len(indices) {
	case 0:
		return ""
	case 1:
		return s.Congratulations.OneStart + s.FormTitle(indices[0]) + s.Congratulations.OneEnd
	default:
		return s.Congratulations.ManyStart + strconv.Itoa(len(indices)) + s.Congratulations.ManyEnd
	}
}
