package usecase

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog/log"

	"studydash/internal/modules/keytool/domain"
	"studydash/internal/modules/keytool/dto"
	keytoolin "studydash/internal/modules/keytool/port/in"
	keytoolout "studydash/internal/modules/keytool/port/out"
	"studydash/internal/modules/keytool/service"
)

type Interactor struct {
	svc   *service.CipherService
	store keytoolout.KeyStore
}

func NewInteractor(svc *service.CipherService, store keytoolout.KeyStore) keytoolin.Usecase {
	return &Interactor{svc: svc, store: store}
}

func (i *Interactor) Generate(ctx context.Context, input dto.GenerateInput) (dto.GenerateOutput, error) {
	key, err := i.svc.NewKey()
	if err != nil {
		return dto.GenerateOutput{}, err
	}
	if err := i.store.Save(ctx, key, input.Force); err != nil {
		return dto.GenerateOutput{}, err
	}
	log.Info().Str("path", i.store.Location()).Msg("symmetric key generated")
	return dto.GenerateOutput{Path: i.store.Location()}, nil
}

// Demo generates a key, seals a message, reloads the key from disk and opens
// the envelope with it.
func (i *Interactor) Demo(ctx context.Context, input dto.DemoInput) (dto.DemoOutput, error) {
	c, err := domain.ParseCipher(input.Cipher)
	if err != nil {
		return dto.DemoOutput{}, err
	}
	message := input.Message
	if message == "" {
		message = domain.DemoMessage
	}
	generated, err := i.Generate(ctx, dto.GenerateInput{Force: input.Force})
	if err != nil {
		return dto.DemoOutput{}, err
	}
	key, err := i.store.Load(ctx)
	if err != nil {
		return dto.DemoOutput{}, err
	}
	env, err := i.svc.Seal(c, key, []byte(message))
	if err != nil {
		return dto.DemoOutput{}, fmt.Errorf("seal message: %w", err)
	}
	reloaded, err := i.store.Load(ctx)
	if err != nil {
		return dto.DemoOutput{}, err
	}
	plaintext, err := i.svc.Open(c, reloaded, env)
	if err != nil {
		return dto.DemoOutput{}, fmt.Errorf("open message: %w", err)
	}
	return dto.DemoOutput{
		Path:      generated.Path,
		Cipher:    string(c),
		Envelope:  hex.EncodeToString(env),
		Recovered: string(plaintext),
		Match:     bytes.Equal(plaintext, []byte(message)),
	}, nil
}
