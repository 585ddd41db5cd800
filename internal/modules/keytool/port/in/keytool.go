package in

import (
	"context"

	"studydash/internal/modules/keytool/dto"
)

type Usecase interface {
	Generate(ctx context.Context, input dto.GenerateInput) (dto.GenerateOutput, error)
	Demo(ctx context.Context, input dto.DemoInput) (dto.DemoOutput, error)
}
