package app

import (
	"context"
	"interview_marker_backend/internal/config"
	"interview_marker_backend/internal/controller"
	"interview_marker_backend/internal/repository"
	"interview_marker_backend/internal/service"
	"interview_marker_backend/pkg/configwatcher"
	"interview_marker_backend/pkg/database"
	"interview_marker_backend/pkg/logger"
	"interview_marker_backend/pkg/monitoring"
	"interview_marker_backend/pkg/security"
	"interview_marker_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services *services
	tracer   *sdktrace.TracerProvider
	cancel   context.CancelFunc
}

type repositories struct {
	answer   *repository.AnswerRepository
	feedback *repository.FeedbackRepository
	session  *repository.SessionRepository
}

type services struct {
	auth     *service.AuthService
	review   *service.ReviewService
	importer *service.AnswerImportService
	storage  *service.StorageService
	export   *service.ExportService
}

type controllers struct {
	review *controller.ReviewController
	export *controller.ExportController
	health *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		answer:   repository.NewAnswerRepository(db),
		feedback: repository.NewFeedbackRepository(db),
		// 会话与令牌同寿命
		session: repository.NewSessionRepository(rdb, a.Config.JWT.ExpireTime),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.auth = service.NewAuthService(cfg)
	s.review = service.NewReviewService(repos.session, repos.answer, repos.feedback, s.auth, service.ReviewOptionsFromConfig(cfg))
	s.importer = service.NewAnswerImportService(repos.answer)
	s.storage = service.NewStorageService(cfg)
	s.export = service.NewExportService(repos.feedback, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		review: controller.NewReviewController(s.review),
		export: controller.NewExportController(s.export),
		health: controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// importAnswers 从 CSV 导入答案，答案表与源文件保持一致
func (a *App) importAnswers(ctx context.Context, path string) error {
	_, err := a.services.importer.ImportFile(ctx, path)
	return err
}

func (a *App) startBackgroundTasks(ctx context.Context, cfg *config.Config) {
	if !cfg.Answers.Watch || cfg.Answers.ImportPath == "" {
		return
	}

	err := configwatcher.WatchFile(ctx, cfg.Answers.ImportPath, func() {
		if err := a.importAnswers(ctx, cfg.Answers.ImportPath); err != nil {
			logger.Log.Error("answer re-import failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Log.Error("failed to watch answers file", zap.String("path", cfg.Answers.ImportPath), zap.Error(err))
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		cancel: cancel,
	}

	repos := app.initRepositories(db, rdb)
	app.services = app.initServices(repos, cfg)
	controllers := app.initControllers(app.services, db, rdb)

	// 命令行导入与配置中的导入路径
	for _, path := range []string{cfg.ImportAnswers, cfg.Answers.ImportPath} {
		if path == "" {
			continue
		}
		if err := app.importAnswers(ctx, path); err != nil {
			logger.Log.Fatal("Failed to import answers", zap.String("path", path), zap.Error(err))
		}
	}

	if cfg.MigrateOnly {
		return app
	}

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("interview-marker", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	app.startBackgroundTasks(ctx, cfg)

	return app
}

// Close 释放后台任务与连接
func (a *App) Close() {
	a.cancel()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	if err := a.Redis.Close(); err != nil {
		logger.Log.Error("Failed to close redis", zap.Error(err))
	}

	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Sync()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close()
	log.Println("Server exiting")
}
