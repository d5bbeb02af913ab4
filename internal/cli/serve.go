package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TwigBush/keyguard/internal/guard"
	"github.com/TwigBush/keyguard/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func cmdServe() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo routes behind the API key guard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.applyServeFlags(cmd.Flags()); err != nil {
				return err
			}

			log := newLogger(cfg.LogJSON)
			slog.SetDefault(log)

			g := guard.New(cfg.guardOptions()...)
			log.Info("guard configured",
				"secret_source", g.Source(),
				"secrets", len(g.Secrets()),
				"credential", cfg.CredentialName,
				"tag", cfg.ProtectedTag,
			)

			h := server.BuildRouter(server.Deps{Guard: g}, server.Options{
				CORSOrigins:    cfg.CORSOrigins,
				CredentialName: cfg.CredentialName,
				Timeout:        time.Duration(cfg.TimeoutSeconds) * time.Second,
				Logger:         log,
			}, server.DefaultRoutes(cfg.ProtectedTag))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg.Addr, h, log)
		},
	}
	c.Flags().String("addr", ":8085", "listen address")
	c.Flags().Bool("log-json", false, "log in JSON format")
	return c
}

// applyServeFlags lets explicitly passed flags win over file and env values.
func (c *Config) applyServeFlags(flags *pflag.FlagSet) error {
	if flags.Changed("addr") {
		addr, err := flags.GetString("addr")
		if err != nil {
			return err
		}
		c.Addr = addr
	}
	if flags.Changed("log-json") {
		logJSON, err := flags.GetBool("log-json")
		if err != nil {
			return err
		}
		c.LogJSON = logJSON
	}
	return nil
}

func newLogger(asJSON bool) *slog.Logger {
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func run(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
