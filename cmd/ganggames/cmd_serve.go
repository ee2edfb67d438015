package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gang-games/ganggames"
	"github.com/gang-games/ganggames/internal/config"
	"github.com/gang-games/ganggames/internal/views"
)

func newServeCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, stdout, stderr)
		},
	}
	cmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
	cmd.Flags().String("base", "", "Path prefix to serve under (overrides server.base)")
	return cmd
}

func runServe(cmd *cobra.Command, _, stderr io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v, _ := cmd.Flags().GetString("base"); v != "" {
		cfg.Server.Base = v
	}

	logger := newLogger(stderr, cfg.Log)

	h, err := newServer(cfg.Server, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           loggerMiddleware(h, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", cfg.Server.Addr, "base", cfg.Server.Base)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server: %w", err)
	}
	return nil
}

// newServer composes the application: views, route table, page handler and sitemap.
func newServer(cfg config.ServerConfig, logger *slog.Logger) (http.Handler, error) {
	set, err := views.Load()
	if err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}

	routes, err := ganggames.NewTable(ganggames.DefaultRoutes(set.Hub, set.Wordle)...)
	if err != nil {
		return nil, fmt.Errorf("route table: %w", err)
	}

	var assets fs.FS = views.Assets()
	if cfg.AssetsDir != "" {
		assets = os.DirFS(cfg.AssetsDir)
	}

	pages := &ganggames.Handler{
		Routes:     routes,
		Base:       cfg.Base,
		FileSystem: assets,
		Layout:     set.Layout,
		NotFound:   set.NotFound,
		ErrorView:  set.Error,
		Debug:      cfg.Debug,
		Logger:     logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/", pages)
	if cfg.PublicURL != "" {
		base := strings.TrimRight(cfg.Base, "/")
		mux.Handle(base+"/sitemap.xml", ganggames.SitemapHandler(routes, cfg.PublicURL, func(r *http.Request, err error) {
			logger.Error("Serve sitemap", "url", r.URL.Redacted(), "error", err)
		}))
	}

	return mux, nil
}
