package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/princinho/storecatalog/config"
	"github.com/princinho/storecatalog/controllers"
	"github.com/princinho/storecatalog/database"
	"github.com/princinho/storecatalog/logger"
	"github.com/princinho/storecatalog/middleware"
	"github.com/princinho/storecatalog/utils"
)

const serviceName = "storecatalog"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Must(false).Fatal("load config", zap.Error(err))
	}
	log := logger.Must(cfg.IsDevelopment())
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, log)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer db.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("ensure indexes", zap.Error(err))
	}

	users := database.NewUserStore(db)
	if err := utils.SeedAdminUser(ctx, users, cfg.Admin, log); err != nil {
		log.Fatal("seed admin user", zap.Error(err))
	}

	storage, err := utils.NewObjectStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("open object storage", zap.Error(err))
	}
	defer storage.Close()

	h := &controllers.Handler{
		Products:   database.NewProductStore(db),
		Categories: database.NewCategoryStore(db),
		Users:      users,
		Storage:    storage,
		Media:      utils.NewMediaValidator(cfg.Storage.MaxUploadBytes()),
		JWT:        cfg.JWT,
		MaxImages:  cfg.Storage.MaxProdImages,
		LoginLimit: middleware.RateLimit(cfg.Server.LoginRPS, cfg.Server.LoginBurst, log),
		Log:        log,
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	allowedOrigins := map[string]bool{}
	for _, origin := range cfg.Server.AllowedOrigins {
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	log.Info("allowed origins", zap.Strings("origins", cfg.Server.AllowedOrigins))
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(serviceName))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.Register(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown", zap.Error(err))
	}
}
