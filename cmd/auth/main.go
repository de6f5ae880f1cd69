package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	validate "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/password"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/service"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/token"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/config"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/geoip"
	lg "github.com/Miraines/MoonyAndStarry/account-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/server"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/metrics"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/notify"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/notify/telegram"
	mongorepo "github.com/Miraines/MoonyAndStarry/account-service/internal/repo/mongo"
	transport "github.com/Miraines/MoonyAndStarry/account-service/internal/transport/http"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/transport/http/middleware"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mongoCli, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		zapLog.Fatal("failed to connect to mongo", zap.Error(err))
	}
	defer mongoCli.Disconnect(context.Background())
	if err := mongoCli.Ping(connectCtx, nil); err != nil {
		zapLog.Fatal("mongo unreachable", zap.Error(err))
	}

	accountRepo := mongorepo.NewMongoAccountRepo(mongoCli.Database(cfg.MongoDatabase))
	if err := accountRepo.EnsureIndexes(connectCtx); err != nil {
		zapLog.Fatal("failed to ensure indexes", zap.Error(err))
	}

	geoOpts := []geoip.Option{}
	if cfg.RedisAddress != "" {
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()
		geoOpts = append(geoOpts, geoip.WithCache(redisCli, cfg.GeoCacheTTL))
	}
	geo := geoip.New(zapLog, geoOpts...)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifier = telegram.New(cfg.TelegramBotToken, cfg.TelegramChatID)
	} else {
		zapLog.Info("telegram sink not configured, notifications disabled")
	}

	svc := service.NewAccountService(
		accountRepo,
		password.New(cfg.PasswordPepper),
		token.New(cfg.JWTSecret, cfg.Issuer),
		notifier,
		geo,
		cfg,
		validate.New(),
		zapLog,
	)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(zapLog))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.NewRateLimitPerIP(cfg.RateLimitRPS, cfg.RateLimitBurst, 10_000, time.Hour))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	transport.NewHandler(svc, cfg, zapLog).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if err := server.StartHTTPServer(ctx, cfg.HTTPAddress, router, zapLog); err != nil {
		zapLog.Fatal("server error", zap.Error(err))
	}
}
