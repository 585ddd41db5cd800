package domain

import (
	"fmt"
	"net/url"
)

const (
	ParamParticipantCode = "participantCode"
	ParamBirthDate       = "birthDate"
)

// LaunchLink is what a shared link pre-fills on the sign-in form.
type LaunchLink struct {
	Credentials Credentials
	Found       bool
	// Sanitized is the link with both parameters removed, safe to bookmark.
	Sanitized string
}

func ParseLaunchLink(raw string) (LaunchLink, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return LaunchLink{}, fmt.Errorf("parse launch link: %w", err)
	}
	q := u.Query()
	out := LaunchLink{}
	if q.Has(ParamParticipantCode) {
		out.Credentials.ParticipantCode = q.Get(ParamParticipantCode)
		out.Found = true
	}
	if q.Has(ParamBirthDate) {
		out.Credentials.BirthDate = q.Get(ParamBirthDate)
		out.Found = true
	}
	if out.Found {
		q.Del(ParamParticipantCode)
		q.Del(ParamBirthDate)
		u.RawQuery = q.Encode()
	}
	out.Sanitized = u.String()
	return out, nil
}
