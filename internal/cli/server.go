package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"globetrotter-service/internal/app"
	"globetrotter-service/internal/config"
	"globetrotter-service/internal/domain"
	"globetrotter-service/internal/infra/postgres"
	"globetrotter-service/internal/jobs"
	transport "globetrotter-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the globetrotter API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	svc, err := b.services(cfg)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(svc, transport.RouterOptions{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AdminKey:       cfg.Auth.AdminKey,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	if b.relay != nil {
		if err := b.relay.Start(ctx); err != nil {
			return err
		}
	}

	if b.purger != nil {
		purge := jobs.NewPurgeScheduler(b.purger, config.TTLDuration(cfg.Challenge.PurgeInterval, jobs.DefaultPurgeInterval))
		if err := purge.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := purge.Stop(); err != nil {
				log.Printf("stop purge scheduler: %v", err)
			}
		}()
	}

	g.Go(func() error {
		prepareDataset(ctx, svc.Catalog, cfg)
		return nil
	})

	g.Go(func() error {
		log.Printf("starting globetrotter service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// prepareDataset runs the boot-time seed and expansion. Failures are logged
// and never stop the server.
func prepareDataset(ctx context.Context, catalog *app.CatalogService, cfg config.Config) {
	if cfg.Dataset.SeedOnStart {
		n, err := catalog.Seed(ctx)
		switch {
		case errors.Is(err, domain.ErrCatalogSeeded):
			log.Printf("catalog already holds %d destinations", n)
		case err != nil:
			log.Printf("boot seed failed: %v", err)
		}
	}
	if cfg.Dataset.ExpandOnStart {
		if _, err := catalog.Expand(ctx, cfg.Dataset.ExpandCount); err != nil {
			log.Printf("boot expansion failed: %v", err)
		}
	}
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	db := postgres.Open(cfg.Postgres.URL)
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	log.Printf("migrations applied")
	return nil
}
