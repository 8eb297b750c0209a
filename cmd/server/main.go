package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/blog-api/internal/auth"
	"github.com/ayush/blog-api/internal/config"
	"github.com/ayush/blog-api/internal/server"
	"github.com/ayush/blog-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	memStore := store.NewMemoryStore()
	deps := server.Deps{CORSOrigins: cfg.CORSOrigins}

	// ── MongoDB ──────────────────────────────────────────────
	var mongoStore *store.MongoStore
	if cfg.UsesMongo() {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("mongo connect: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())
		mongoStore = store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			log.Fatalf("mongo indexes: %v", err)
		}
	}

	// ── Users ────────────────────────────────────────────────
	switch cfg.UserStore {
	case config.DriverMongo:
		deps.Users = mongoStore
	case config.DriverPostgres:
		pgPool, err := store.NewPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			log.Fatalf("postgres migrate: %v", err)
		}
		deps.Users = pgStore
	default:
		log.Println("user store: in-memory, accounts are lost on restart")
		deps.Users = memStore
	}

	// ── Posts ────────────────────────────────────────────────
	if cfg.PostStore == config.DriverMongo {
		deps.Posts = mongoStore
	} else {
		log.Println("post store: in-memory, posts are lost on restart")
		deps.Posts = memStore
	}

	// ── Redis ────────────────────────────────────────────────
	authOpts := []auth.Option{auth.WithTTL(cfg.TokenTTL)}
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		defer rdb.Close()
		authOpts = append(authOpts, auth.WithRevocations(auth.NewRevocationStore(rdb)))
	} else {
		log.Println("REDIS_ADDR not set, logout will not revoke tokens")
	}
	deps.Auth = auth.NewService(cfg.JWTSecret, authOpts...)

	// ── MinIO ────────────────────────────────────────────────
	if cfg.MinioEndpoint != "" {
		minioStore, err := store.NewMinioStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			log.Fatalf("minio connect: %v", err)
		}
		deps.Covers = minioStore
	} else {
		log.Println("MINIO_ENDPOINT not set, cover images disabled")
	}

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.NewRouter(deps),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Blog API listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
