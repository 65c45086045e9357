package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/atelier/backend/internal/application/catalog"
	documentapp "github.com/atelier/backend/internal/application/document"
	identityapp "github.com/atelier/backend/internal/application/identity"
	libraryapp "github.com/atelier/backend/internal/application/library"
	prescriptionapp "github.com/atelier/backend/internal/application/prescription"
	projectapp "github.com/atelier/backend/internal/application/project"
	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/persistence"
	"github.com/atelier/backend/internal/infrastructure/scheduler"
	"github.com/atelier/backend/internal/infrastructure/storage"
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"github.com/atelier/backend/internal/interfaces/http/handler"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
	"github.com/atelier/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// @title       Atelier API
// @version     1.0
// @description Projects, spaces, prescriptions and the shared resource library of an interior-design agency.
// @BasePath    /api/v1

// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Bearer token authentication. Format: "Bearer {token}"

func main() {
	if err := run(); err != nil {
		_, _ = os.Stderr.WriteString("atelier: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, version, bootLog)
	if err != nil {
		return err
	}
	// entries at info and above also reach the collector when log export is on
	log, err := logger.New(logCfg, providers.Logs.Core(zapcore.InfoLevel))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Atelier backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem: cfg.Database.Driver,
	}, log); err != nil {
		return err
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	var (
		store       documentapp.ObjectStorage
		uploadsRoot string
	)
	switch cfg.Storage.Backend {
	case "s3":
		s3Store, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return err
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			return err
		}
		store = s3Store
		log.Info("Storing uploads in S3", zap.String("bucket", s3Store.Bucket()))
	default:
		local, err := storage.NewLocalObjectStorage(cfg.Storage.LocalRoot, cfg.Storage.PublicBaseURL)
		if err != nil {
			return err
		}
		store = local
		uploadsRoot = local.Root()
		log.Info("Storing uploads on disk", zap.String("root", local.Root()))
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisBlacklist.Close() }()
		blacklist = redisBlacklist
		log.Info("Token revocations shared through Redis", zap.String("addr", cfg.Redis.Addr))
	}

	users := persistence.NewGormUserRepository(db.DB)
	hierarchy := persistence.NewGormHierarchyRepository(db.DB)
	prescriptionCategories := persistence.NewGormPrescriptionCategoryRepository(db.DB)
	resources := persistence.NewGormResourceRepository(db.DB)
	favorites := persistence.NewGormFavoriteRepository(db.DB)
	projects := persistence.NewGormProjectRepository(db.DB)
	spaces := persistence.NewGormSpaceRepository(db.DB)
	clients := persistence.NewGormClientRepository(db.DB)
	prescriptions := persistence.NewGormPrescriptionRepository(db.DB)
	documents := persistence.NewGormDocumentRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)
	access := projectapp.NewAccessChecker(projects, clients)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(users, jwtService, blacklist, log)
	categoryService := catalogapp.NewCategoryService(hierarchy, prescriptionCategories, log)
	resourceService := libraryapp.NewResourceService(resources, favorites, hierarchy, prescriptionCategories, log)
	projectService := projectapp.NewProjectService(projectapp.ProjectServiceDeps{
		TxScope:  txScope,
		Projects: projects,
		Spaces:   spaces,
		Clients:  clients,
		Users:    users,
		Access:   access,
		Store:    store,
		Metrics:  providers.Business,
		Logger:   log,
	})
	prescriptionService := prescriptionapp.NewPrescriptionService(prescriptionapp.Deps{
		TxScope:       txScope,
		Prescriptions: prescriptions,
		Approvals:     persistence.NewGormApprovalRepository(db.DB),
		Comments:      persistence.NewGormCommentRepository(db.DB),
		Spaces:        spaces,
		Resources:     resources,
		Categories:    prescriptionCategories,
		Access:        access,
		Store:         store,
		Metrics:       providers.Business,
		Logger:        log,
	})
	documentService := documentapp.NewDocumentService(documentapp.Deps{
		Documents:     documents,
		Spaces:        spaces,
		Prescriptions: prescriptions,
		Access:        access,
		Store:         store,
		Metrics:       providers.Business,
		Logger:        log,
	})

	reconciler, err := startReconciliation(ctx, cfg.Scheduler, projects, prescriptionService, log)
	if err != nil {
		return err
	}

	if cfg.Bootstrap.AdminEmail != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName)
		if err != nil {
			return err
		}
		if created {
			log.Info("Bootstrap admin account created", zap.String("email", cfg.Bootstrap.AdminEmail))
		}
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var httpMetrics *telemetry.HTTPMetrics
	if cfg.Metrics.PrometheusEnabled {
		httpMetrics = telemetry.NewHTTPMetrics("atelier")
	}
	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		log.Info("Rate limiting enabled",
			zap.Float64("rps", cfg.HTTP.RateLimitRPS),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.IsProduction()

	engine := router.NewEngine(router.Options{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Tracing:        providers.Tracer.IsEnabled(),
		Profiling:      providers.Profiler.IsEnabled(),
		Metrics:        httpMetrics,
		MetricsPath:    cfg.Metrics.Path,
		CORS: middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
		Security:      security,
		MaxBodySize:   cfg.HTTP.MaxBodySize,
		MaxUploadSize: cfg.HTTP.MaxUploadSize,
		RateLimiter:   limiter,
		JWT:           jwtService,
		Blacklist:     blacklist,
		UploadsRoot:   uploadsRoot,
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
	}, router.Handlers{
		Auth:         handler.NewAuthHandler(authService, log),
		Category:     handler.NewCategoryHandler(categoryService, log),
		Library:      handler.NewLibraryHandler(resourceService, log),
		Project:      handler.NewProjectHandler(projectService, log),
		Prescription: handler.NewPrescriptionHandler(prescriptionService, documentService, log),
		Document:     handler.NewDocumentHandler(documentService, log),
		System:       handler.NewSystemHandler(db, version, log),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := reconciler.stop(shutdownCtx); err != nil {
		log.Warn("Budget reconciliation did not stop cleanly", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}
	log.Info("Server exited")
	return nil
}

// reconciliation owns the background budget reconciliation
type reconciliation struct {
	scheduler *scheduler.Scheduler
	trigger   *scheduler.IntervalTrigger
}

// startReconciliation periodically recomputes every project's budget_spent.
// It returns a no-op value when disabled.
func startReconciliation(ctx context.Context, cfg config.SchedulerConfig, projects *persistence.GormProjectRepository, svc *prescriptionapp.PrescriptionService, log *zap.Logger) (*reconciliation, error) {
	if !cfg.Enabled {
		return &reconciliation{}, nil
	}
	schedCfg := scheduler.DefaultConfig()
	schedCfg.MaxConcurrentJobs = cfg.Workers
	schedCfg.JobTimeout = cfg.JobTimeout
	schedCfg.RetryAttempts = cfg.RetryAttempts
	schedCfg.RetryDelay = cfg.RetryDelay

	sched, err := scheduler.NewScheduler(schedCfg, scheduler.ExecutorFunc(func(ctx context.Context, job *scheduler.Job) error {
		_, err := svc.ReconcileBudget(ctx, job.ProjectID)
		return err
	}), log.Named("scheduler"))
	if err != nil {
		return nil, err
	}
	lister := scheduler.ProjectListerFunc(func(ctx context.Context) ([]uuid.UUID, error) {
		list, err := projects.FindAccessible(ctx, nil)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0, len(list))
		for _, p := range list {
			ids = append(ids, p.ID)
		}
		return ids, nil
	})
	trigger := scheduler.NewIntervalTrigger(cfg.Interval, sched, lister, log.Named("scheduler"))

	if err := sched.Start(ctx); err != nil {
		return nil, err
	}
	if err := trigger.Start(ctx); err != nil {
		_ = sched.Stop(ctx)
		return nil, err
	}
	return &reconciliation{scheduler: sched, trigger: trigger}, nil
}

func (r *reconciliation) stop(ctx context.Context) error {
	if r.trigger == nil {
		return nil
	}
	return errors.Join(r.trigger.Stop(ctx), r.scheduler.Stop(ctx))
}
