// Package stubserver serves the progress endpoint contract from a local
// roster, for development and end-to-end tests.
package stubserver

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"studydash/internal/modules/session/domain"
)

const (
	reasonExpired            = domain.ReasonExpired
	reasonInvalidCredentials = 1
	maxBodyBytes             = 64 << 10
)

type Server struct {
	tokens *TokenIssuer

	mu           sync.RWMutex
	participants map[string]Participant
}

func New(roster Roster, tokens *TokenIssuer) *Server {
	s := &Server{tokens: tokens, participants: make(map[string]Participant, len(roster.Participants))}
	for _, p := range roster.Participants {
		s.participants[p.Code] = p
	}
	return s
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "OK\n")
	}).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleExchange).Methods(http.MethodPost)
	r.HandleFunc("/participants/{code}/progress", s.handleSetProgress).Methods(http.MethodPut)
	return r
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req domain.ExchangeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	byCredentials := req.ParticipantCode != "" || req.BirthDate != ""
	if req.ByToken() == byCredentials {
		http.Error(w, "send either a token or credentials", http.StatusBadRequest)
		return
	}

	var code string
	if req.ByToken() {
		subject, err := s.tokens.Verify(req.Token)
		if err != nil {
			log.Debug().Err(err).Msg("stub rejected token")
			writeJSON(w, rejection(reasonExpired))
			return
		}
		code = subject
	} else {
		code = req.ParticipantCode
	}

	s.mu.RLock()
	p, found := s.participants[code]
	s.mu.RUnlock()
	switch {
	case !found && req.ByToken():
		writeJSON(w, rejection(reasonExpired))
		return
	case !found, !req.ByToken() && p.BirthDate != req.BirthDate:
		writeJSON(w, rejection(reasonInvalidCredentials))
		return
	}

	token, err := s.tokens.Issue(p.Code)
	if err != nil {
		http.Error(w, "issue token", http.StatusInternalServerError)
		return
	}
	log.Info().Str("participant", p.Code).Bool("by_token", req.ByToken()).Msg("stub exchange")
	writeJSON(w, domain.ExchangeResponse{
		OK:          true,
		Progression: append([]float64(nil), p.Progression...),
		FormLinks:   append([]string(nil), p.FormLinks...),
		Token:       token,
	})
}

type progressUpdate struct {
	Progression []float64 `json:"progression"`
}

func (s *Server) handleSetProgress(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var body progressUpdate
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.participants[code]
	if !found {
		http.Error(w, "unknown participant", http.StatusNotFound)
		return
	}
	p.Progression = body.Progression
	s.participants[code] = p
	w.WriteHeader(http.StatusNoContent)
}

func rejection(reason int) domain.ExchangeResponse {
	return domain.ExchangeResponse{OK: false, Reason: &reason}
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("write stub response")
	}
}
