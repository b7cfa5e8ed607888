package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"viksit_backend/internal/config"
	"viksit_backend/internal/controller"
	"viksit_backend/internal/middleware"
	"viksit_backend/internal/repository"
	"viksit_backend/internal/service"
	"viksit_backend/internal/util"
	"viksit_backend/pkg/configwatcher"
	"viksit_backend/pkg/database"
	"viksit_backend/pkg/gateway"
	"viksit_backend/pkg/logger"
	"viksit_backend/pkg/monitoring"
	"viksit_backend/pkg/security"
	"viksit_backend/pkg/tracing"
	"viksit_backend/web"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	// ConfigDir is watched for config.yaml changes.
	ConfigDir string
	Router    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client

	services *services
	tracer   *sdktrace.TracerProvider
	// stopBackground ends goroutines started while wiring the router.
	stopBackground  context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user          *repository.UserRepository
	mock          *repository.MockRepository
	result        *repository.ResultRepository
	studyMaterial *repository.StudyMaterialRepository
	author        *repository.AuthorRepository
	subscription  *repository.SubscriptionRepository
}

type services struct {
	auth          *service.AuthService
	storage       *service.StorageService
	catalog       *service.CatalogStore
	exam          *service.ExamService
	studyMaterial *service.StudyMaterialService
	subscription  *service.SubscriptionService
	content       *service.ContentService
}

type controllers struct {
	auth          *controller.AuthController
	page          *controller.PageController
	exam          *controller.ExamController
	studyMaterial *controller.StudyMaterialController
	subscription  *controller.SubscriptionController
	health        *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:          repository.NewUserRepository(db),
		mock:          repository.NewMockRepository(db),
		result:        repository.NewResultRepository(db),
		studyMaterial: repository.NewStudyMaterialRepository(db),
		author:        repository.NewAuthorRepository(db),
		subscription:  repository.NewSubscriptionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, gw gateway.Gateway, storage *service.StorageService) *services {
	s := &services{storage: storage}

	var revoker service.TokenRevoker
	if a.Redis != nil {
		revoker = service.NewRedisTokenRevoker(a.Redis)
	}
	s.auth = service.NewAuthService(repos.user, cfg, revoker)

	s.catalog = service.NewCatalogStore(cfg.Courses)
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.catalog.Set(newCfg.Courses)
		logger.Log.Info("Course catalog updated", zap.Int("courses", len(newCfg.Courses.Items)))
	})

	s.exam = service.NewExamService(repos.mock, repos.result)
	s.studyMaterial = service.NewStudyMaterialService(repos.studyMaterial, repos.author, storage)
	s.subscription = service.NewSubscriptionService(repos.subscription, gw, s.catalog, cfg.Server.PublicBaseURL)
	s.content = service.NewContentService(repos.mock, repos.studyMaterial, repos.author, storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:          controller.NewAuthController(s.auth, a.Config.Session),
		page:          controller.NewPageController(s.auth, s.exam, s.studyMaterial, s.subscription),
		exam:          controller.NewExamController(s.exam),
		studyMaterial: controller.NewStudyMaterialController(s.studyMaterial),
		subscription:  controller.NewSubscriptionController(s.subscription),
		health:        controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(ctx context.Context, router *gin.Engine, cfg *config.Config) {
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		if window <= 0 {
			window = time.Minute
		}
		router.Use(security.RateLimiter(ctx, cfg.RateLimit.MaxRequests, window))
	}

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
	router.Use(middleware.Session(a.services.auth, cfg.Session.CookieName))
}

// wire builds services, controllers and the router on top of an open
// database. The gateway and storage are passed in so tests can stub them.
func (a *App) wire(gw gateway.Gateway, storage *service.StorageService) error {
	repos := a.initRepositories(a.DB)
	a.services = a.initServices(repos, a.Config, gw, storage)
	controllers := a.initControllers(a.services, a.DB)

	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	router := gin.Default()
	router.SetHTMLTemplate(tmpl)
	a.Router = router

	ctx, cancel := context.WithCancel(context.Background())
	a.stopBackground = cancel
	a.setupMiddlewares(ctx, router, a.Config)
	a.registerRoutes(router, controllers, a.services)

	if a.Config.Storage.Type == util.StorageLocal || a.Config.Storage.Type == "" {
		router.Static("/uploads", a.Config.Storage.LocalPath)
	}
	return nil
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	gw, err := gateway.New(&cfg.Payment)
	if err != nil {
		logger.Log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	storage, err := service.NewStorageService(&cfg.Storage)
	if err != nil {
		logger.Log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("viksit", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	if err := app.wire(gw, storage); err != nil {
		logger.Log.Fatal("Failed to build router", zap.Error(err))
	}
	return app
}

// ImportContent loads a YAML content file into the database. Relative file
// references inside it resolve against the file's directory.
func (a *App) ImportContent(ctx context.Context, path string) (*service.ImportReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := a.services.content.ParseContent(f)
	if err != nil {
		return nil, err
	}
	return a.services.content.Import(ctx, content, filepath.Dir(path))
}

// Close stops the background goroutines owned by the router.
func (a *App) Close() {
	if a.stopBackground != nil {
		a.stopBackground()
	}
}

func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           security.CORS(a.Config.CORS.AllowedOrigins, a.Router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := configwatcher.Watch(ctx, a.ConfigDir, a.applyConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
