package in

import (
	"context"
	"fmt"
	"strings"

	sessiondto "studydash/internal/modules/session/dto"
	sessionin "studydash/internal/modules/session/port/in"
	apperrors "studydash/internal/platform/errors"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Bootstrap(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Bootstrap(ctx)
}

func (h CLIHandler) Preferences(ctx context.Context) sessiondto.SessionOutput {
	return h.usecase.Preferences(ctx)
}

// Login refuses to contact the endpoint unless both fields are filled in.
func (h CLIHandler) Login(ctx context.Context, code, birthDate string, remember bool) (sessiondto.SessionOutput, error) {
	code = strings.TrimSpace(code)
	birthDate = strings.TrimSpace(birthDate)
	if code == "" || birthDate == "" {
		return h.usecase.Snapshot(ctx), fmt.Errorf("%w: participant code and birth date are required", apperrors.ErrInvalidInput)
	}
	return h.usecase.Login(ctx, sessiondto.LoginInput{ParticipantCode: code, BirthDate: birthDate, RememberMe: remember})
}

func (h CLIHandler) Refresh(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Refresh(ctx)
}

func (h CLIHandler) Logout(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Logout(ctx)
}

func (h CLIHandler) SetLanguage(ctx context.Context, lang string) (sessiondto.SessionOutput, error) {
	return h.usecase.SetLanguage(ctx, sessiondto.LanguageInput{Language: lang})
}

func (h CLIHandler) Acknowledge(ctx context.Context) sessiondto.SessionOutput {
	return h.usecase.AcknowledgeCompletions(ctx)
}

func (h CLIHandler) Prefill(ctx context.Context, link string) (sessiondto.PrefillOutput, error) {
	return h.usecase.Prefill(ctx, sessiondto.PrefillInput{Link: link})
}

func (h CLIHandler) Snapshot(ctx context.Context) sessiondto.SessionOutput {
	return h.usecase.Snapshot(ctx)
}
