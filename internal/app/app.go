package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"school_assess_backend/internal/config"
	"school_assess_backend/internal/controller"
	"school_assess_backend/internal/repository"
	"school_assess_backend/internal/service"
	"school_assess_backend/internal/util"
	"school_assess_backend/pkg/configwatcher"
	"school_assess_backend/pkg/database"
	"school_assess_backend/pkg/logger"
	"school_assess_backend/pkg/monitoring"
	"school_assess_backend/pkg/security"
	"school_assess_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	school       *repository.SchoolRepository
	classSubject *repository.ClassSubjectRepository
	assessment   *repository.AssessmentRepository
	assignment   *repository.AssignmentRepository
	answer       *repository.AnswerRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	scoring    *service.ScoringService
	grade      *service.GradeService
	assignment *service.AssignmentService
	teaching   *service.TeachingService
	assessment *service.AssessmentService
}

type controllers struct {
	auth       *controller.AuthController
	school     *controller.SchoolController
	teaching   *controller.TeachingController
	assessment *controller.AssessmentController
	assignment *controller.AssignmentController
	grade      *controller.GradeController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		school:       repository.NewSchoolRepository(db),
		classSubject: repository.NewClassSubjectRepository(db),
		assessment:   repository.NewAssessmentRepository(db),
		assignment:   repository.NewAssignmentRepository(db),
		answer:       repository.NewAnswerRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.scoring = service.NewScoringService()

	// grade before assignment: grading completions invalidate cached averages
	s.grade = service.NewGradeService(repos.assignment, repos.assessment, repos.school, repos.classSubject, repos.user, rdb, cfg)
	s.assignment = service.NewAssignmentService(repos.assignment, repos.answer, repos.assessment, repos.school, repos.classSubject, s.scoring, s.grade, cfg, db)
	s.teaching = service.NewTeachingService(repos.classSubject, repos.school, repos.user, db)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.classSubject, repos.school, db)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		school:     controller.NewSchoolController(repos.school, repos.user),
		teaching:   controller.NewTeachingController(s.teaching),
		assessment: controller.NewAssessmentController(s.assessment),
		assignment: controller.NewAssignmentController(s.assignment, s.storage),
		grade:      controller.NewGradeController(s.grade),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			if err := s.assignment.EnforceDeadlines(); err != nil {
				logger.Log.Error("deadline enforcement error", zap.Error(err))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, repos, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("school-assess", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	// 热更新可安全替换的配置段
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		cfg.Grading = newCfg.Grading
		cfg.RateLimit = newCfg.RateLimit
		logger.Log.Info("runtime config reloaded")
	})
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(raw interface{}) {
		if newCfg, ok := raw.(*config.Config); ok {
			for _, cb := range app.configCallbacks {
				cb(newCfg)
			}
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
