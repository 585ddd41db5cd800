package in

import (
	"context"

	"studydash/internal/modules/session/dto"
)

type Usecase interface {
	Bootstrap(ctx context.Context) (dto.SessionOutput, error)
	Preferences(ctx context.Context) dto.SessionOutput
	Login(ctx context.Context, input dto.LoginInput) (dto.SessionOutput, error)
	Refresh(ctx context.Context) (dto.SessionOutput, error)
	Logout(ctx context.Context) (dto.SessionOutput, error)
	SetLanguage(ctx context.Context, input dto.LanguageInput) (dto.SessionOutput, error)
	AcknowledgeCompletions(ctx context.Context) dto.SessionOutput
	Prefill(ctx context.Context, input dto.PrefillInput) (dto.PrefillOutput, error)
	Snapshot(ctx context.Context) dto.SessionOutput
}
