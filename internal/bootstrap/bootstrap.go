package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	keytoolinadapter "studydash/internal/modules/keytool/adapter/in"
	keytooloutadapter "studydash/internal/modules/keytool/adapter/out"
	keytoolservice "studydash/internal/modules/keytool/service"
	keytoolusecase "studydash/internal/modules/keytool/usecase"
	sessioninadapter "studydash/internal/modules/session/adapter/in"
	sessionoutadapter "studydash/internal/modules/session/adapter/out"
	"studydash/internal/modules/session/domain"
	sessiondto "studydash/internal/modules/session/dto"
	sessionout "studydash/internal/modules/session/port/out"
	sessionservice "studydash/internal/modules/session/service"
	sessionusecase "studydash/internal/modules/session/usecase"
	"studydash/internal/platform/clock"
	"studydash/internal/platform/config"
	"studydash/internal/platform/i18n"
	"studydash/internal/platform/idle"
	uiapp "studydash/internal/ui/app"
)

type App struct {
	Config     config.Config
	SessionCLI sessioninadapter.CLIHandler
	Catalog    i18n.Catalog
	Detector   *idle.Detector

	closers []io.Closer
}

func New(cfg config.Config) (*App, error) {
	catalog, err := i18n.Load()
	if err != nil {
		return nil, err
	}
	if err := catalog.Validate(languageCodes(), domain.ErrorKeys()); err != nil {
		return nil, fmt.Errorf("validate strings: %w", err)
	}

	durable, closer, err := newDurableStore(cfg)
	if err != nil {
		return nil, err
	}
	stores := sessionout.Stores{
		Durable:   durable,
		Ephemeral: sessionoutadapter.NewMemoryKeyValueStore(),
	}
	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(),
		sessionoutadapter.NewHTTPProgressEndpoint(cfg.EndpointURL, cfg.RequestTimeout),
		stores,
	)

	return &App{
		Config:     cfg,
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		Catalog:    catalog,
		Detector:   idle.NewDetector(clock.SystemClock{}),
		closers:    []io.Closer{closer},
	}, nil
}

// NewKeytool wires the key demo to a key file. It needs no session stores.
func NewKeytool(keyPath string) keytoolinadapter.CLIHandler {
	return keytoolinadapter.NewCLIHandler(keytoolusecase.NewInteractor(
		keytoolservice.NewCipherService(nil),
		keytooloutadapter.NewFileKeyStore(keyPath),
	))
}

func newDurableStore(cfg config.Config) (sessionout.KeyValueStore, io.Closer, error) {
	switch cfg.DurableStore.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.DurableStore.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.DurableStore.RedisAddr, err)
		}
		store := sessionoutadapter.NewRedisKeyValueStore(client, cfg.DurableStore.RedisPrefix)
		return store, store, nil
	default:
		store, err := sessionoutadapter.NewSQLiteKeyValueStore(cfg.DBPath())
		if err != nil {
			return nil, nil, fmt.Errorf("new durable store: %w", err)
		}
		return store, store, nil
	}
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func RunTUI(app *App, link string) error {
	model := uiapp.NewModel(app.SessionCLI, app.Detector, app.Config.RefreshInterval, app.Catalog, link)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := program.Run()
	return err
}

// Watch bootstraps the session and refreshes it on a fixed period until ctx
// is done or the session is lost, passing every new snapshot to report.
func Watch(ctx context.Context, app *App, every time.Duration, report func(sessiondto.SessionOutput)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	out, err := app.SessionCLI.Bootstrap(ctx)
	if err != nil {
		return err
	}
	report(out)
	if !out.Authenticated {
		return nil
	}
	app.Detector.OnIdleTick(func() {
		out, err := app.SessionCLI.Refresh(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("watch refresh")
			return
		}
		report(out)
		if !out.Authenticated {
			cancel()
		}
	}, app.Config.RefreshInterval)
	app.Detector.Run(ctx, every)
	return nil
}

func languageCodes() []string {
	langs := domain.Languages()
	out := make([]string, len(langs))
	for i, l := range langs {
		out[i] = string(l)
	}
	return out
}
