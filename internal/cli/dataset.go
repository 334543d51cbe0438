package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"globetrotter-service/internal/app"
	"globetrotter-service/internal/config"
	"globetrotter-service/internal/domain"
	"globetrotter-service/internal/infra/objectstore"
)

// NewSeedCmd inserts the starter destinations into an empty catalog.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the catalog with the starter destinations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd.Context(), *configPath, func(ctx context.Context, _ config.Config, catalog *app.CatalogService) error {
				n, err := catalog.Seed(ctx)
				if errors.Is(err, domain.ErrCatalogSeeded) {
					log.Printf("catalog already holds %d destinations", n)
					return nil
				}
				return err
			})
		},
	}
}

// NewExpandCmd grows the catalog with generated destinations.
func NewExpandCmd(configPath *string) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Generate new destinations with the text-generation API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd.Context(), *configPath, func(ctx context.Context, _ config.Config, catalog *app.CatalogService) error {
				res, err := catalog.Expand(ctx, count)
				if err != nil {
					return err
				}
				for _, d := range res.Inserted {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s, %s\n", d.Alias, d.Name, d.Country, d.Continent)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&count, "count", app.DefaultExpandCount, "number of destinations to request (max 20)")
	return cmd
}

// NewExportCmd writes a JSON snapshot of the catalog to a file or a bucket.
func NewExportCmd(configPath *string) *cobra.Command {
	var output, bucket string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as JSON to a file or an S3-compatible bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd.Context(), *configPath, func(ctx context.Context, cfg config.Config, catalog *app.CatalogService) error {
				snap, err := catalog.Snapshot(ctx)
				if err != nil {
					return err
				}
				body, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return err
				}

				if bucket == "" {
					bucket = cfg.Export.Bucket
				}
				if bucket == "" {
					if err := os.WriteFile(output, body, 0o644); err != nil {
						return err
					}
					log.Printf("exported %d destinations to %s", snap.Count, output)
					return nil
				}

				uploader, err := objectstore.NewUploader(ctx, objectstore.Options{
					Bucket:          bucket,
					Region:          cfg.Export.Region,
					Endpoint:        cfg.Export.Endpoint,
					AccessKeyID:     cfg.Export.AccessKeyID,
					SecretAccessKey: cfg.Export.SecretAccessKey,
				})
				if err != nil {
					return err
				}
				location, err := uploader.Put(ctx, app.ExportKey(snap.ExportedAt), body, "application/json")
				if err != nil {
					return err
				}
				log.Printf("exported %d destinations to %s", snap.Count, location)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&output, "output", "destinations.json", "local file to write when no bucket is set")
	cmd.Flags().StringVar(&bucket, "bucket", "", "bucket to upload to (overrides export.bucket)")
	return cmd
}

func withCatalog(ctx context.Context, configPath string, fn func(context.Context, config.Config, *app.CatalogService) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(ctx, cfg, b.catalogService(cfg))
}
