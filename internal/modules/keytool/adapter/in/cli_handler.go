package in

import (
	"context"

	"studydash/internal/modules/keytool/dto"
	keytoolin "studydash/internal/modules/keytool/port/in"
)

type CLIHandler struct {
	usecase keytoolin.Usecase
}

func NewCLIHandler(usecase keytoolin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Demo(ctx context.Context, cipherName string, force bool) (dto.DemoOutput, error) {
	return h.usecase.Demo(ctx, dto.DemoInput{Cipher: cipherName, Force: force})
}
