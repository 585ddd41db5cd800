package stubserver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "studydash/internal/platform/errors"
)

type Participant struct {
	Code        string    `yaml:"code"`
	BirthDate   string    `yaml:"birth_date"`
	Progression []float64 `yaml:"progression"`
	FormLinks   []string  `yaml:"form_links"`
}

type Roster struct {
	Participants []Participant `yaml:"participants"`
}

func LoadRoster(path string) (Roster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("read roster %s: %w", path, err)
	}
	return ParseRoster(raw)
}

func ParseRoster(raw []byte) (Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return Roster{}, fmt.Errorf("decode roster: %w", err)
	}
	seen := map[string]struct{}{}
	for idx, p := range r.Participants {
		if p.Code == "" || p.BirthDate == "" {
			return Roster{}, fmt.Errorf("%w: participant %d needs code and birth_date", apperrors.ErrInvalidInput, idx)
		}
		if _, dup := seen[p.Code]; dup {
			return Roster{}, fmt.Errorf("%w: duplicate participant %q", apperrors.ErrInvalidInput, p.Code)
		}
		seen[p.Code] = struct{}{}
	}
	return r, nil
}
