package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ebhath/ebhath-api/api/swagger"
	"github.com/ebhath/ebhath-api/internal/handler"
	"github.com/ebhath/ebhath-api/internal/middleware"
	"github.com/ebhath/ebhath-api/internal/repository"
	"github.com/ebhath/ebhath-api/internal/service"
	"github.com/ebhath/ebhath-api/pkg/cache"
	"github.com/ebhath/ebhath-api/pkg/config"
	"github.com/ebhath/ebhath-api/pkg/database"
	"github.com/ebhath/ebhath-api/pkg/logger"
	corsmiddleware "github.com/ebhath/ebhath-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ebhath/ebhath-api/pkg/middleware/requestid"
	"github.com/ebhath/ebhath-api/pkg/secure"
	"github.com/ebhath/ebhath-api/pkg/storage"
)

// @title Ebhath API
// @version 1.0.0
// @description Application wizard, intake and site content for the Ebhath research program.
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err), zap.String("addr", cache.Addr(cfg.Redis)))
	}
	defer redisClient.Close()

	localStorage, err := storage.NewLocalStorage(cfg.Form.LocalStorageDir)
	if err != nil {
		logr.Fatal("failed to prepare local form storage", zap.Error(err))
	}
	cipher, err := secure.NewPassphraseCipher(cfg.Form.EncryptionKey, cfg.Form.EncryptionWorkFactor)
	if err != nil {
		logr.Fatal("failed to init draft cipher", zap.Error(err))
	}
	tokens, err := service.NewSessionTokenSigner(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		logr.Fatal("failed to init session tokens", zap.Error(err))
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	documents := repository.NewDocumentRepository(redisClient, cfg.Redis.KeyPrefix, logr)
	applications := repository.NewApplicationRepository(db)
	contacts := repository.NewContactRepository(db)
	content, err := repository.NewContentRepository(cfg.Content.File)
	if err != nil {
		logr.Fatal("failed to load site content", zap.Error(err))
	}

	formValidator := service.NewFormValidator(nil, cfg.Form.MaxWorkSampleBytes)
	submissions := service.NewSubmissionService(documents, metricsSvc, logr)
	sessions := service.NewSessionManager(service.SessionManagerConfig{
		IdleTTL:              cfg.Session.TTL,
		CleanupInterval:      cfg.Session.CleanupInterval,
		AutosaveQuietPeriod:  cfg.Form.AutosaveQuietPeriod,
		MaxSubmissions:       cfg.Form.MaxSubmissions,
		SubmissionWindow:     cfg.Form.SubmissionWindow,
		OpenApplicationTypes: cfg.Form.OpenApplicationTypes,
	}, service.SessionManagerDeps{
		Slots:     localStorage,
		Cleaner:   localStorage,
		Cipher:    cipher,
		Documents: documents,
		Submitter: submissions,
		Validator: formValidator,
		Tokens:    tokens,
		Observer:  metricsSvc,
		Logger:    logr,
	})
	defer sessions.Shutdown()
	go sessions.Run(ctx)

	intakeSvc, err := service.NewIntakeService(applications, metricsSvc, logr)
	if err != nil {
		logr.Fatal("failed to init intake service", zap.Error(err))
	}
	contactSvc := service.NewContactService(contacts, formValidator.Validator(), logr)
	contentSvc := service.NewContentService(content)

	formHandler := handler.NewFormHandler(sessions, formValidator, logr)
	intakeHandler := handler.NewIntakeHandler(intakeSvc)
	contentHandler := handler.NewContentHandler(contentSvc)
	contactHandler := handler.NewContactHandler(contactSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.Pinger{
		"postgres": applications,
		"redis":    documents,
	})

	r, err := newEngine(cfg, logr, metricsSvc)
	if err != nil {
		logr.Fatal("failed to configure router", zap.Error(err))
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/api/applications", intakeHandler.Submit)

	api := r.Group(cfg.APIPrefix)
	forms := api.Group("/forms")
	forms.GET("/schema", formHandler.Schema)
	forms.POST("", formHandler.Create)
	forms.GET("/:token", formHandler.Get)
	forms.PATCH("/:token", formHandler.Update)
	forms.PUT("/:token/work-sample", formHandler.AttachWorkSample)
	forms.DELETE("/:token/work-sample", formHandler.DetachWorkSample)
	forms.POST("/:token/next", formHandler.Next)
	forms.POST("/:token/previous", formHandler.Previous)

	contentGroup := api.Group("/content")
	contentGroup.GET("/site", contentHandler.Site)
	contentGroup.GET("/courses", contentHandler.Courses)
	contentGroup.GET("/team", contentHandler.Team)
	contentGroup.GET("/testimonials", contentHandler.Testimonials)

	api.POST("/contact", contactHandler.Send)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown", zap.Error(err))
	}
}

// newEngine builds the router with the shared middleware chain. Client IPs key the
// submission ledger, so forwarding headers count only from configured proxies.
func newEngine(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.MaxMultipartMemory = cfg.Form.MaxWorkSampleBytes
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	return r, nil
}
