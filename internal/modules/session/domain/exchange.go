package domain

// ReasonExpired is the rejection reason for an expired or unknown token.
const ReasonExpired = 0

// ExchangeRequest carries either credentials or a token, never both.
type ExchangeRequest struct {
	ParticipantCode string `json:"participantCode,omitempty"`
	BirthDate       string `json:"birthDate,omitempty"`
	Token           string `json:"token,omitempty"`
}

func CredentialRequest(c Credentials) ExchangeRequest {
	return ExchangeRequest{ParticipantCode: c.ParticipantCode, BirthDate: c.BirthDate}
}

func TokenRequest(token string) ExchangeRequest {
	return ExchangeRequest{Token: token}
}

func (r ExchangeRequest) ByToken() bool {
	return r.Token != ""
}

type ExchangeResponse struct {
	OK          bool      `json:"ok"`
	Reason      *int      `json:"reason,omitempty"`
	Progression []float64 `json:"progression,omitempty"`
	FormLinks   []string  `json:"formLinks,omitempty"`
	Token       string    `json:"token,omitempty"`
}

// Expired reports a rejection with the expired-token reason.
func (r ExchangeResponse) Expired() bool {
	return !r.OK && r.Reason != nil && *r.Reason == ReasonExpired
}
