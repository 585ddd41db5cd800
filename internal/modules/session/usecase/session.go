package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"studydash/internal/modules/session/domain"
	sessiondto "studydash/internal/modules/session/dto"
	sessionin "studydash/internal/modules/session/port/in"
	sessionout "studydash/internal/modules/session/port/out"
	"studydash/internal/modules/session/service"
	apperrors "studydash/internal/platform/errors"
)

// Interactor is the session controller. It holds the current snapshot and
// allows one exchange with the progress endpoint at a time.
type Interactor struct {
	svc      *service.SessionService
	endpoint sessionout.ProgressEndpoint
	stores   sessionout.Stores

	mu       sync.Mutex
	current  domain.Session
	inFlight bool
	// epoch changes on logout; a response from an older epoch is dropped.
	epoch uint64
}

func NewInteractor(svc *service.SessionService, endpoint sessionout.ProgressEndpoint, stores sessionout.Stores) sessionin.Usecase {
	return &Interactor{svc: svc, endpoint: endpoint, stores: stores, current: domain.NewSession()}
}

func (i *Interactor) Bootstrap(ctx context.Context) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	if i.inFlight {
		out := toOutput(i.current)
		i.mu.Unlock()
		return out, apperrors.ErrExchangeInFlight
	}
	mode := i.loadPreferences(ctx)

	token, ok, err := i.stores.Select(mode).Get(ctx, domain.KeyToken)
	if err != nil {
		log.Warn().Err(err).Str("store", mode.String()).Msg("read cached token")
	}
	if err != nil || !ok || token == "" {
		i.current = i.svc.NoToken(i.current, mode)
		out := toOutput(i.current)
		i.mu.Unlock()
		log.Info().Msg("no cached token, sign-in required")
		return out, nil
	}
	i.current = i.svc.StageToken(i.current, token, mode)
	i.mu.Unlock()

	log.Debug().Str("store", mode.String()).Msg("cached token found, exchanging")
	return i.Refresh(ctx)
}

// Preferences applies the persisted language without touching the token.
func (i *Interactor) Preferences(ctx context.Context) sessiondto.SessionOutput {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.loadPreferences(ctx)
	return toOutput(i.current)
}

// loadPreferences applies the stored language and returns the stored storage
// mode. Unreadable values are logged and ignored. Callers hold i.mu.
func (i *Interactor) loadPreferences(ctx context.Context) domain.StorageMode {
	if raw, ok, err := i.stores.Durable.Get(ctx, domain.KeyLanguage); err != nil {
		log.Warn().Err(err).Msg("read language preference")
	} else if ok {
		if lang, err := domain.ParseLanguage(raw); err == nil {
			i.current = i.svc.WithLanguage(i.current, lang)
		} else {
			log.Warn().Str("language", raw).Msg("ignoring stored language")
		}
	}

	mode := domain.StorageEphemeral
	if raw, ok, err := i.stores.Durable.Get(ctx, domain.KeyStorageMode); err != nil {
		log.Warn().Err(err).Msg("read storage mode preference")
	} else if ok {
		var durable bool
		if err := json.Unmarshal([]byte(raw), &durable); err != nil {
			log.Warn().Str("value", raw).Msg("ignoring stored storage mode")
		} else if durable {
			mode = domain.StorageDurable
		}
	}
	return mode
}

func (i *Interactor) Login(ctx context.Context, input sessiondto.LoginInput) (sessiondto.SessionOutput, error) {
	creds := domain.Credentials{ParticipantCode: input.ParticipantCode, BirthDate: input.BirthDate}
	mode := domain.StorageEphemeral
	if input.RememberMe {
		mode = domain.StorageDurable
	}
	epoch, out, err := i.begin(func(cur domain.Session) domain.Session {
		return i.svc.BeginLogin(cur, creds, mode)
	})
	if err != nil {
		return out, err
	}

	resp, exchangeErr := i.endpoint.Exchange(ctx, domain.CredentialRequest(creds))
	if exchangeErr != nil {
		log.Warn().Err(exchangeErr).Msg("credential exchange failed")
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.settle(epoch) {
		return toOutput(i.current), nil
	}
	i.current = i.svc.CompleteLogin(i.current, resp, exchangeErr)
	if !i.current.Authenticated {
		log.Info().Str("error", i.current.LastError.String()).Msg("sign-in rejected")
		return toOutput(i.current), nil
	}
	log.Info().Str("store", mode.String()).Int("forms", len(i.current.Progress)).Msg("signed in")
	return toOutput(i.current), i.persistLogin(ctx, i.current)
}

func (i *Interactor) Refresh(ctx context.Context) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	if i.current.Token == "" {
		out := toOutput(i.current)
		i.mu.Unlock()
		return out, apperrors.ErrNoToken
	}
	i.mu.Unlock()

	var token string
	epoch, out, err := i.begin(func(cur domain.Session) domain.Session {
		token = cur.Token
		return i.svc.BeginRefresh(cur)
	})
	if err != nil {
		return out, err
	}
	if token == "" {
		// Logged out between the check above and claiming the slot.
		i.mu.Lock()
		defer i.mu.Unlock()
		i.settle(epoch)
		i.current = i.svc.NoToken(i.current, i.current.StorageMode)
		return toOutput(i.current), apperrors.ErrNoToken
	}

	resp, exchangeErr := i.endpoint.Exchange(ctx, domain.TokenRequest(token))
	if exchangeErr != nil {
		log.Warn().Err(exchangeErr).Msg("token exchange failed")
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.settle(epoch) {
		return toOutput(i.current), nil
	}
	next, outcome := i.svc.CompleteRefresh(i.current, resp, exchangeErr)
	i.current = next
	if len(next.JustCompleted) > 0 {
		log.Info().Ints("forms", next.JustCompleted).Msg("forms completed since last refresh")
	}
	return toOutput(i.current), i.persistRefresh(ctx, next, outcome)
}

func (i *Interactor) Logout(ctx context.Context) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.epoch++
	i.inFlight = false
	i.current = i.svc.Reset(i.current)

	err := errors.Join(
		deleteKey(ctx, i.stores.Durable, domain.KeyToken),
		deleteKey(ctx, i.stores.Ephemeral, domain.KeyToken),
		deleteKey(ctx, i.stores.Durable, domain.KeyStorageMode),
	)
	log.Info().Msg("signed out")
	return toOutput(i.current), err
}

func (i *Interactor) SetLanguage(ctx context.Context, input sessiondto.LanguageInput) (sessiondto.SessionOutput, error) {
	lang, err := domain.ParseLanguage(input.Language)
	if err != nil {
		return i.Snapshot(ctx), err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.current = i.svc.WithLanguage(i.current, lang)
	if err := i.stores.Durable.Set(ctx, domain.KeyLanguage, string(lang)); err != nil {
		return toOutput(i.current), fmt.Errorf("persist language: %w", err)
	}
	return toOutput(i.current), nil
}

func (i *Interactor) AcknowledgeCompletions(_ context.Context) sessiondto.SessionOutput {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.current = i.svc.Acknowledge(i.current)
	return toOutput(i.current)
}

func (i *Interactor) Prefill(_ context.Context, input sessiondto.PrefillInput) (sessiondto.PrefillOutput, error) {
	link, err := domain.ParseLaunchLink(input.Link)
	if err != nil {
		return sessiondto.PrefillOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	i.mu.Lock()
	i.current = i.svc.Prefill(i.current, link)
	i.mu.Unlock()
	return sessiondto.PrefillOutput{
		ParticipantCode: link.Credentials.ParticipantCode,
		BirthDate:       link.Credentials.BirthDate,
		Found:           link.Found,
		SanitizedLink:   link.Sanitized,
	}, nil
}

func (i *Interactor) Snapshot(_ context.Context) sessiondto.SessionOutput {
	i.mu.Lock()
	defer i.mu.Unlock()
	return toOutput(i.current)
}

// begin claims the single exchange slot and applies the opening transition.
func (i *Interactor) begin(open func(domain.Session) domain.Session) (uint64, sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.inFlight {
		return 0, toOutput(i.current), apperrors.ErrExchangeInFlight
	}
	i.inFlight = true
	i.current = open(i.current)
	return i.epoch, toOutput(i.current), nil
}

// settle releases the exchange slot and reports whether the response still
// belongs to the current epoch. Callers hold i.mu.
func (i *Interactor) settle(epoch uint64) bool {
	if epoch != i.epoch {
		log.Debug().Msg("dropping exchange response from before logout")
		return false
	}
	i.inFlight = false
	return true
}

func (i *Interactor) persistLogin(ctx context.Context, s domain.Session) error {
	durable, err := json.Marshal(s.StorageMode == domain.StorageDurable)
	if err != nil {
		return fmt.Errorf("encode storage mode: %w", err)
	}
	if err := i.stores.Durable.Set(ctx, domain.KeyStorageMode, string(durable)); err != nil {
		return fmt.Errorf("persist storage mode: %w", err)
	}
	if err := i.stores.Select(s.StorageMode).Set(ctx, domain.KeyToken, s.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return deleteKey(ctx, i.stores.Other(s.StorageMode), domain.KeyToken)
}

func (i *Interactor) persistRefresh(ctx context.Context, s domain.Session, outcome service.RefreshOutcome) error {
	switch outcome {
	case service.RefreshAdopted:
		if err := i.stores.Select(s.StorageMode).Set(ctx, domain.KeyToken, s.Token); err != nil {
			return fmt.Errorf("persist token: %w", err)
		}
	case service.RefreshExpired:
		log.Info().Msg("session token expired")
		return deleteKey(ctx, i.stores.Select(s.StorageMode), domain.KeyToken)
	case service.RefreshStale:
		log.Info().Msg("refresh failed, keeping cached progress")
	}
	return nil
}

func deleteKey(ctx context.Context, store sessionout.KeyValueStore, key string) error {
	if err := store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func toOutput(s domain.Session) sessiondto.SessionOutput {
	forms := make([]sessiondto.FormOutput, len(s.Progress))
	for idx, p := range s.Progress {
		link := ""
		if idx < len(s.FormLinks) {
			link = s.FormLinks[idx]
		}
		forms[idx] = sessiondto.FormOutput{Index: idx, Progress: p, Link: link, Finished: p == 1}
	}
	finished, ongoing := domain.Partition(s.Progress)
	first, hasIncomplete := domain.FirstIncomplete(s.Progress)
	return sessiondto.SessionOutput{
		State:           s.State.String(),
		Authenticated:   s.Authenticated,
		BusyLoading:     s.BusyLoading,
		HasToken:        s.Token != "",
		StorageMode:     s.StorageMode.String(),
		Language:        string(s.Language),
		LastError:       s.LastError.String(),
		ParticipantCode: s.Credentials.ParticipantCode,
		BirthDate:       s.Credentials.BirthDate,
		Forms:           forms,
		Finished:        finished,
		Ongoing:         ongoing,
		JustCompleted:   append([]int(nil), s.JustCompleted...),
		FirstIncomplete: first,
		HasIncomplete:   hasIncomplete,
		Aligned:         domain.Aligned(s.Progress, s.FormLinks),
	}
}
