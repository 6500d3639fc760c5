package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-service/internal/api/handlers"
	"auction-service/internal/config"
	"auction-service/internal/infrastructure/leader"
	"auction-service/internal/infrastructure/mysql"
	redisinfra "auction-service/internal/infrastructure/redis"
	ws "auction-service/internal/infrastructure/websocket"
	"auction-service/internal/services"
	"auction-service/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log := logger.New()
	log.Info("starting auction service")

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("failed to open mysql", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("failed to close mysql connection", "error", err)
		}
	}(db)

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping mysql", "error", err)
		os.Exit(1)
	}
	log.Info("connected to mysql")

	// Repository and event plumbing
	auctionRepo := mysql.NewMySQLAuctionRepository(db)
	eventPublisher := redisinfra.NewEventPublisher(rdb)
	eventSubscriber := redisinfra.NewRedisEventSubscriber(rdb, log)

	// The bid queue is owned by the consumer alone: created here, drained by
	// BidConsumer, closed via context cancellation on shutdown.
	bidQueue := redisinfra.NewBidStream(rdb, cfg.Queue.Stream, cfg.Queue.Group,
		cfg.Instance.ID, cfg.Queue.MinIdle, log)

	// Services
	auctionManager := services.NewAuctionManager(auctionRepo, log)
	bidService := services.NewBidService(auctionRepo, eventPublisher, cfg.Bidding.MaxRetries, log)
	bidConsumer := services.NewBidConsumer(bidQueue, bidService, log)

	leaderElection := leader.NewRedisLeaderElection(rdb, cfg.Leader.TTL)
	sweeper := services.NewLifecycleSweeper(auctionRepo, leaderElection, cfg.Instance.ID, log)

	hub := ws.NewHub(log)
	bidFeed := services.NewBidFeed(hub, log)
	sweeper.SetFeedCloser(hub)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","method":"${method}","uri":"${uri}","status":${status},"error":"${error}","latency":${latency},"bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	auctionHandler := handlers.NewAuctionHandler(auctionManager, bidService, log)
	wsHandler := handlers.NewWebSocketHandler(hub, auctionManager, log)

	api := e.Group("/api/v1")
	api.POST("/auctions", auctionHandler.CreateAuction)
	api.GET("/auctions", auctionHandler.ListAuctions)
	api.GET("/auctions/:id", auctionHandler.GetAuction)
	api.PUT("/auctions/:id", auctionHandler.UpdateAuction)
	api.DELETE("/auctions/:id", auctionHandler.DeleteAuction)
	api.POST("/auctions/:id/bids", auctionHandler.SubmitBid)
	api.GET("/auctions/:id/live", wsHandler.HandleLiveFeed)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "auction-service",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	go func() {
		if err := bidConsumer.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("bid consumer stopped", "error", err)
		}
	}()

	go func() {
		if err := bidFeed.Start(workerCtx, eventSubscriber); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("bid feed stopped", "error", err)
		}
	}()

	if err := sweeper.Start(workerCtx); err != nil {
		log.Error("failed to start lifecycle sweeper", "error", err)
		os.Exit(1)
	}

	go func() {
		for {
			became, err := leaderElection.BecomeLeader(workerCtx, cfg.Instance.ID)
			if err != nil {
				log.Error("failed to attempt leadership", "error", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if became {
				log.Info("became lifecycle sweeper leader", "instance_id", cfg.Instance.ID)
			}
			select {
			case <-workerCtx.Done():
				return
			case <-time.After(10 * time.Second):
			}
		}
	}()

	// Start server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting http server", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down auction service...")

	stopWorkers()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := sweeper.Stop(); err != nil {
		log.Error("failed to stop lifecycle sweeper", "error", err)
	}
	if err := leaderElection.ReleaseLeadership(shutdownCtx, cfg.Instance.ID); err != nil {
		log.Error("failed to release leadership", "error", err)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("auction service stopped")
}
