package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"studydash/internal/bootstrap"
	"studydash/internal/modules/session/domain"
	sessiondto "studydash/internal/modules/session/dto"
	"studydash/internal/platform/clock"
	"studydash/internal/platform/config"
	"studydash/internal/platform/i18n"
	"studydash/internal/platform/logging"
	"studydash/internal/stubserver"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

type globalFlags struct {
	configPath string
	dataDir    string
	cfg        config.Config
	logCloser  io.Closer
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "studydash",
		Short:         "Study progress dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.configPath, g.dataDir)
			if err != nil {
				return err
			}
			g.cfg = cfg
			closer, err := logging.Setup(cfg.Log, cmd.Name() == "tui")
			if err != nil {
				return err
			}
			g.logCloser = closer
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if g.logCloser != nil {
				return g.logCloser.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&g.dataDir, "data-dir", "", "directory for the durable store, key and logs")

	root.AddCommand(newTUICmd(g))
	root.AddCommand(newLoginCmd(g))
	root.AddCommand(newStatusCmd(g))
	root.AddCommand(newRefreshCmd(g))
	root.AddCommand(newWatchCmd(g))
	root.AddCommand(newLogoutCmd(g))
	root.AddCommand(newLanguageCmd(g))
	root.AddCommand(newKeygenCmd(g))
	root.AddCommand(newStubCmd())
	return root
}

// withApp builds the application for one command and closes it afterwards.
func withApp(g *globalFlags, fn func(app *bootstrap.App) error) error {
	app, err := bootstrap.New(g.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn().Err(err).Msg("close app")
		}
	}()
	return fn(app)
}

func newTUICmd(g *globalFlags) *cobra.Command {
	var link string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the dashboard terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				return bootstrap.RunTUI(app, link)
			})
		},
	}
	cmd.Flags().StringVar(&link, "link", "", "launch link carrying participantCode and birthDate")
	return cmd
}

func newLoginCmd(g *globalFlags) *cobra.Command {
	var code, birthDate string
	var remember bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a participant code and birth date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				ctx := context.Background()
				app.SessionCLI.Preferences(ctx)
				out, err := app.SessionCLI.Login(ctx, code, birthDate, remember)
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), out, app.Catalog)
				if !out.Authenticated {
					return errors.New("sign-in failed")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "participant code")
	cmd.Flags().StringVar(&birthDate, "birth-date", "", "birth date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&remember, "remember", false, "keep the session across runs")
	return cmd
}

func newStatusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Restore the saved session and show progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Bootstrap(context.Background())
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), out, app.Catalog)
				return nil
			})
		},
	}
}

func newRefreshCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the saved token for fresh progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Bootstrap(context.Background())
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), out, app.Catalog)
				if !out.Authenticated {
					return errors.New("no active session, run login first")
				}
				return nil
			})
		},
	}
}

func newWatchCmd(g *globalFlags) *cobra.Command {
	var every time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep refreshing and report newly completed forms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(g, func(app *bootstrap.App) error {
				return bootstrap.Watch(ctx, app, every, func(out sessiondto.SessionOutput) {
					printSession(cmd.OutOrStdout(), out, app.Catalog)
					if len(out.JustCompleted) > 0 {
						app.SessionCLI.Acknowledge(ctx)
					}
				})
			})
		},
	}
	cmd.Flags().DurationVar(&every, "every", time.Minute, "how often to check")
	return cmd
}

func newLogoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				if _, err := app.SessionCLI.Logout(context.Background()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

func newLanguageCmd(g *globalFlags) *cobra.Command {
	language := &cobra.Command{Use: "language", Short: "Show or change the display language"}

	language.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current language",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				out := app.SessionCLI.Preferences(context.Background())
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Language)
				return nil
			})
		},
	})

	language.AddCommand(&cobra.Command{
		Use:   "set <fr|de>",
		Short: "Change the display language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.SetLanguage(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Language)
				return nil
			})
		},
	})
	return language
}

func newKeygenCmd(g *globalFlags) *cobra.Command {
	var out, cipherName string
	var force bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a symmetric key and check it with a sealed test message",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := out
			if path == "" {
				path = g.cfg.KeyPath()
			}
			res, err := bootstrap.NewKeytool(path).Demo(context.Background(), cipherName, force)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "key written to %s\n", res.Path)
			_, _ = fmt.Fprintf(w, "cipher: %s\n", res.Cipher)
			_, _ = fmt.Fprintf(w, "envelope: %s\n", res.Envelope)
			_, _ = fmt.Fprintf(w, "recovered: %s\n", res.Recovered)
			if !res.Match {
				return errors.New("recovered message does not match")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "key file path (default <data-dir>/keys/symmetric.key)")
	cmd.Flags().StringVar(&cipherName, "cipher", "aes-256-gcm", "aes-256-gcm|chacha20-poly1305")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing key")
	return cmd
}

func newStubCmd() *cobra.Command {
	var rosterPath, addr, secret string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve a local progress endpoint from a roster file",
		RunE: func(_ *cobra.Command, _ []string) error {
			roster, err := stubserver.LoadRoster(rosterPath)
			if err != nil {
				return err
			}
			key := []byte(secret)
			if len(key) == 0 {
				key = make([]byte, 32)
				if _, err := rand.Read(key); err != nil {
					return fmt.Errorf("generate stub secret: %w", err)
				}
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           stubserver.New(roster, stubserver.NewTokenIssuer(key, ttl, clock.SystemClock{})).Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			log.Info().Str("addr", addr).Int("participants", len(roster.Participants)).Msg("stub endpoint listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve stub: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rosterPath, "roster", "roster.yaml", "YAML roster of participants")
	cmd.Flags().StringVar(&addr, "addr", ":8089", "listen address")
	cmd.Flags().StringVar(&secret, "secret", "", "token signing secret (random when empty)")
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "token lifetime")
	return cmd
}

func printSession(w io.Writer, out sessiondto.SessionOutput, catalog i18n.Catalog) {
	s := catalog.For(out.Language, string(domain.DefaultLanguage))
	if !out.Authenticated {
		_, _ = fmt.Fprintln(w, "signed out")
		if out.LastError != "" {
			_, _ = fmt.Fprintln(w, s.Login.Errors[out.LastError])
		}
		return
	}
	_, _ = fmt.Fprintf(w, "%s (%s)\n", s.App.Title, out.StorageMode)
	if out.LastError != "" {
		_, _ = fmt.Fprintln(w, s.Login.Errors[out.LastError])
	}
	for _, f := range out.Forms {
		mark := "[ ]"
		if f.Finished {
			mark = "[x]"
		}
		_, _ = fmt.Fprintf(w, "%s %-32s %3.0f%%  %s\n", mark, s.FormTitle(f.Index), f.Progress*100, f.Link)
	}
	if msg := s.Congratulate(out.JustCompleted); msg != "" {
		_, _ = fmt.Fprintln(w, msg)
	}
}
