package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"globetrotter-service/internal/app"
	"globetrotter-service/internal/auth"
	"globetrotter-service/internal/config"
	"globetrotter-service/internal/infra/memory"
	"globetrotter-service/internal/infra/openai"
	"globetrotter-service/internal/infra/postgres"
	redisinfra "globetrotter-service/internal/infra/redis"
	transport "globetrotter-service/internal/transport/http"
)

// backend holds the storage adapters selected by config. Without Postgres or
// Redis everything lives in memory.
type backend struct {
	users        app.UserRepository
	destinations app.DestinationRepository
	catalog      app.CatalogRepository
	challenges   app.ChallengeRepository
	purger       app.ChallengePurger
	feed         app.ChallengeFeed
	relay        *redisinfra.ChallengeRelay
	closers      []func() error
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}
	cacheTTL := config.TTLDuration(cfg.Catalog.CacheTTL, 10*time.Minute)

	var loader memory.CatalogLoader
	if cfg.Postgres.URL != "" {
		db := postgres.Open(cfg.Postgres.URL)
		b.closers = append(b.closers, db.Close)
		if err := db.PingContext(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect pgx pool: %w", err)
		}
		b.closers = append(b.closers, func() error { pool.Close(); return nil })

		b.users = postgres.NewUserRepository(db)
		b.destinations = postgres.NewDestinationRepository(db)
		b.challenges = postgres.NewChallengeRepository(db)
		loader = postgres.NewCatalogLoader(pool)
		log.Printf("using postgres storage")
	} else {
		destinations := memory.NewDestinationStore()
		b.users = memory.NewUserStore()
		b.destinations = destinations
		b.challenges = memory.NewChallengeStore()
		loader = destinations
		log.Printf("using in-memory storage")
	}

	hub := app.NewChallengeHub()
	b.feed = hub
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.catalog = redisinfra.NewCatalogRepository(client, loader, cacheTTL)
		b.challenges = redisinfra.NewChallengeStore(client)
		b.relay = redisinfra.NewChallengeRelay(client, hub)
		b.feed = b.relay
		log.Printf("using redis at %s for challenges and catalog cache", cfg.Redis.Addr)
	} else {
		b.catalog = memory.NewCatalogRepository(loader, cacheTTL)
	}

	// redis keys expire on their own
	if p, ok := b.challenges.(app.ChallengePurger); ok {
		b.purger = p
	}
	return b, nil
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			log.Printf("close backend: %v", err)
		}
	}
	b.closers = nil
}

func (b *backend) catalogService(cfg config.Config) *app.CatalogService {
	var generator app.DestinationGenerator
	if cfg.OpenAI.APIKey != "" {
		generator = openai.NewGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	}
	return app.NewCatalogService(b.destinations, b.catalog, generator)
}

func (b *backend) services(cfg config.Config) (transport.Services, error) {
	if cfg.Auth.JWTSecret == "" {
		return transport.Services{}, fmt.Errorf("jwt secret not configured")
	}
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, auth.DefaultTokenTTL))
	challengeTTL := config.TTLDuration(cfg.Challenge.TTL, app.DefaultChallengeTTL)
	return transport.Services{
		Auth:       app.NewAuthService(b.users, issuer),
		Game:       app.NewGameService(b.users, b.destinations, b.catalog),
		Challenges: app.NewChallengeService(b.challenges, b.users, b.feed, challengeTTL),
		Catalog:    b.catalogService(cfg),
	}, nil
}
