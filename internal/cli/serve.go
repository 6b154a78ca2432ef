package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gqlkit/graphql/relay"
)

var (
	serveAddr   string
	servePretty bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the schema over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr = serveAddr
		}
		if cmd.Flags().Changed("pretty") {
			cfg.HTTP.Pretty = servePretty
		}

		logger, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		s, closeTracer, err := buildSchema(cfg, logger)
		if err != nil {
			return err
		}
		defer closeTracer()

		h := &relay.Handler{
			Schema:     s,
			Logger:     logger,
			Pretty:     cfg.HTTP.Pretty,
			Playground: cfg.HTTP.Playground,
		}
		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Mount("/", h.Routes())

		srv := &http.Server{Addr: cfg.Addr, Handler: r}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("tracing", cfg.Tracing.Backend))
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().BoolVar(&servePretty, "pretty", false, "Indent JSON responses")
	rootCmd.AddCommand(serveCmd)
}
