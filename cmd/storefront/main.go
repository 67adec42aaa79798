package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/cart"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/checkout"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/config"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/events"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/httpapi"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/logging"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/order"
	"github.com/redis/go-redis/v9"
)

func main() {
	configDir := flag.String("config", "./configs", "config directory")
	envName := flag.String("env", "dev", "environment overlay name")
	flag.Parse()

	cfg, err := config.Load(*configDir, *envName)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cart persistence: MongoDB document store plus Redis read cache.
	mongoDB, err := cart.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer mongoDB.Client().Disconnect(context.Background())

	cartRepo := cart.NewMongoRepository(mongoDB)
	if err := cartRepo.CreateIndexes(ctx); err != nil {
		log.Error("failed to create cart indexes", "error", err)
		os.Exit(1)
	}
	log.Info("connected to MongoDB", "uri", cfg.Mongo.URI)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	cartCache := cart.NewRedisCache(redisClient)

	// Order persistence: Postgres with schema migrations.
	creds := &order.Credentials{
		Host:              cfg.Postgres.Host,
		Port:              cfg.Postgres.Port,
		User:              cfg.Postgres.User,
		Password:          cfg.Postgres.Password,
		DBName:            cfg.Postgres.DBName,
		MigrationsDirPath: cfg.Postgres.MigrationsDir,
	}
	orderRepo, err := order.NewRepository(creds)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer orderRepo.Close()
	if err := orderRepo.RunMigrations(creds); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres", "host", cfg.Postgres.Host)

	carts := cart.NewManager(cartRepo, cartCache, logging.New("cart"))
	sessions := checkout.NewManager()
	submission := order.NewSubmissionService(orderRepo, logging.New("order"))

	poller := events.NewOutboxPoller(orderRepo, logging.New("events"), cfg.Kafka.Brokers...)
	go poller.Run(ctx)

	router := httpapi.NewRouter(
		httpapi.RouterConfig{
			JWTSecret:      cfg.Security.JWTSecret,
			RequestTimeout: cfg.HTTP.RequestTimeout,
		},
		httpapi.NewCartHandler(carts, cfg.HTTP.RequestTimeout),
		httpapi.NewCheckoutHandler(sessions),
		httpapi.NewOrdersHandler(submission, orderRepo, carts, sessions, cfg.HTTP.RequestTimeout),
	)

	srv := &http.Server{
		Addr:    cfg.App.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Info("storefront listening", "addr", cfg.App.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	log.Info("storefront stopped")
}
