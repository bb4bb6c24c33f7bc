package main

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/run"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"user-accounts-backend/authentication"
	"user-accounts-backend/config"
	"user-accounts-backend/logging"
	"user-accounts-backend/metrics"
	"user-accounts-backend/users"
	"user-accounts-backend/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := LoadConfig()

	logger, err := logging.New(cfg.IsDevelopment())
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize MongoDB connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DatabaseURL))
	if err != nil {
		logger.Fatal("connect mongo", zap.Error(err))
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		logger.Fatal("ping mongo", zap.Error(err))
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.GetDatabaseName()))

	store := users.NewMongoStore(mongoClient, cfg.GetDatabaseName(), cfg.CollectionUserName)
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	authority, err := authentication.NewAuthority([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		logger.Fatal("session authority", zap.Error(err))
	}

	userService := users.NewService(store, authority, logger)
	if cfg.HasBootstrapAdmin() {
		if _, err := userService.EnsureAdmin(ctx, users.BootstrapAdmin{
			Username: cfg.AdminUsername,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			Address:  cfg.AdminAddress,
		}); err != nil {
			logger.Fatal("bootstrap admin", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           newRouter(cfg, logger, authority, userService),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g := new(run.Group)
	{
		g.Add(func() error {
			logger.Info("listening", zap.String("addr", cfg.ServerAddress))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		}, func(error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown http server", zap.Error(err))
			}
		})
	}
	{
		g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))
	}

	if err := g.Run(); err != nil {
		logger.Info("stopping", zap.Error(err))
	}

	disconnectCtx, cancelDisconnect := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelDisconnect()
	if err := mongoClient.Disconnect(disconnectCtx); err != nil {
		logger.Error("disconnect mongo", zap.Error(err))
	}
}

func newRouter(cfg *config.Config, logger *zap.Logger, authority *authentication.Authority, userService *users.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger))

	if cfg.MetricsEnabled {
		collector := metrics.New("accounts", "http")
		r.Use(collector.Middleware())
		r.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	r.GET("/api/info", version.Handler(cfg.AppEnv, cfg.GetDatabaseName()))

	authMiddleware := authentication.NewHandler(authority, userService, cfg.RequestTimeout, logger).AuthMiddleware()
	users.NewHandler(userService, cfg.RequestTimeout).RegisterRoutes(r.Group("/api"), authMiddleware)

	return r
}
