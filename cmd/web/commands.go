package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hike.io/web/internal/catalog"
	"hike.io/web/internal/config"
	"hike.io/web/internal/format"
	"hike.io/web/internal/handlers"
	"hike.io/web/internal/icons"
	"hike.io/web/internal/observability"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "web",
		Short:        "hike.io web frontend",
		SilenceUsage: true,
	}
	cmd.AddCommand(newServeCmd(), newCatalogCmd())
	return cmd
}

type serveFlags struct {
	addr        string
	templates   string
	public      string
	catalogFile string
}

func newServeCmd() *cobra.Command {
	var flags serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the trail pages over HTTP",
		Example: `  # Serve with settings from the environment (.env is read when present)
  web serve

  # Serve on a custom address with an external catalog
  web serve --addr :3000 --catalog ./catalog.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyServeFlags(cmd, &cfg, flags)
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "", "HTTP listen address (overrides HIKE_WEB_ADDR/HIKE_WEB_PORT)")
	cmd.Flags().StringVar(&flags.templates, "templates", "", "templates directory")
	cmd.Flags().StringVar(&flags.public, "public", "", "public assets directory")
	cmd.Flags().StringVar(&flags.catalogFile, "catalog", "", "YAML catalog file (default: built-in catalog)")
	return cmd
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config, flags serveFlags) {
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = flags.addr
	}
	if cmd.Flags().Changed("templates") {
		cfg.Paths.Templates = flags.templates
	}
	if cmd.Flags().Changed("public") {
		cfg.Paths.Public = flags.public
	}
	if cmd.Flags().Changed("catalog") {
		cfg.Paths.CatalogFile = flags.catalogFile
	}
}

func newCatalogCmd() *cobra.Command {
	var catalogFile string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the trail catalog with display units",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(catalogFile)
			if err != nil {
				return err
			}
			return printCatalog(cmd.OutOrStdout(), cat)
		},
	}
	cmd.Flags().StringVar(&catalogFile, "catalog", "", "YAML catalog file (default: built-in catalog)")
	return cmd
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func printCatalog(w io.Writer, cat *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tDISTANCE\tELEVATION\tPICTURES")
	featured := cat.Featured().ID
	for _, e := range cat.All() {
		id := e.ID
		if id == featured {
			id += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			id, e.Name, e.Location, format.Distance(e.Distance), format.Elevation(e.ElevationGain), len(e.Pictures))
	}
	return tw.Flush()
}

// newApplication builds the HTTP collaborators. A catalog that fails to load
// is fatal: there is no featured entry to serve without one.
func newApplication(cfg config.Config, logger *zap.Logger) (*application, error) {
	cat, err := loadCatalog(cfg.Paths.CatalogFile)
	if err != nil {
		return nil, err
	}
	tmpl, err := newTemplates(cfg.Paths.Templates, cfg.DevMode())
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	var iconOpts []icons.Option
	if cfg.DevMode() {
		iconOpts = append(iconOpts, icons.WithoutCache())
	}
	resolver := icons.NewResolver(os.DirFS(cfg.Paths.Public), iconOpts...)

	pages := handlers.NewResolver(cat, resolver, handlers.Site{
		BaseURL:       cfg.Site.BaseURL,
		ImageDir:      cfg.Site.ImageDir,
		EntryImageDir: cfg.Site.EntryImageDir,
		Analytics:     handlers.AnalyticsFromConfig(cfg.Analytics),
	})
	logger.Info("catalog loaded", zap.Int("entries", cat.Len()), zap.String("featured", cat.Featured().ID))

	return &application{
		pages:     pages,
		templates: tmpl,
		logger:    logger,
		publicDir: cfg.Paths.Public,
		devMode:   cfg.DevMode(),
	}, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	app, err := newApplication(cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("web listening", zap.String("addr", cfg.Server.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
			return err
		}
		return nil
	case err := <-serverErr:
		logger.Error("listen", zap.Error(err))
		return err
	}
}
