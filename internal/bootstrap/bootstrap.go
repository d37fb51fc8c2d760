// Package bootstrap wires configuration, storage, services and HTTP handlers together.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/fitalumni/alumni/internal/app/controllers"
	appMigrations "github.com/fitalumni/alumni/internal/app/migrations"
	appRepos "github.com/fitalumni/alumni/internal/app/repositories"
	pgRepos "github.com/fitalumni/alumni/internal/app/repositories/postgres"
	appRoutes "github.com/fitalumni/alumni/internal/app/routes"
	appServices "github.com/fitalumni/alumni/internal/app/services"
	"github.com/fitalumni/alumni/internal/config"
	"github.com/fitalumni/alumni/internal/db"
	appMiddleware "github.com/fitalumni/alumni/internal/middleware"
	pkgAuth "github.com/fitalumni/alumni/internal/pkg/auth"
	"github.com/fitalumni/alumni/internal/pkg/broker"
	"github.com/fitalumni/alumni/internal/pkg/email"
	"github.com/fitalumni/alumni/internal/pkg/filestorage"
	"github.com/fitalumni/alumni/internal/pkg/logger"
	"github.com/fitalumni/alumni/internal/pkg/scheduler"
	"github.com/fitalumni/alumni/internal/pkg/validation"
	"github.com/fitalumni/alumni/internal/pkg/websocket"
	"github.com/fitalumni/alumni/internal/seed"
)

// DefaultConfigPath is read unless CONFIG_PATH points elsewhere
const DefaultConfigPath = "configs/config.yaml"

const scheduledTaskTimeout = 5 * time.Minute

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	FileStorage *filestorage.LocalStorage
	Tokens      *pkgAuth.TokenService
	Producer    *broker.Producer
	Hub         *websocket.Hub
	Scheduler   *scheduler.Scheduler

	AuthService       *appServices.AuthService
	UserService       *appServices.UserService
	ProfileService    *appServices.ProfileService
	PostService       *appServices.PostService
	JobService        *appServices.JobService
	EventService      *appServices.EventService
	ConnectionService *appServices.ConnectionService
	MessageService    *appServices.MessageService
	AdminService      *appServices.AdminService
	SettingsService   *appServices.SettingsService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Handlers       *appRoutes.Handlers
	Logger         zerolog.Logger

	stopHub context.CancelFunc
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.FromSlash(DefaultConfigPath))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := logger.Logger()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the pool, applies migrations when auto_migrate is on and seeds the default data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	pool := database.Pool

	if cfg.Database.AutoMigrate {
		lgr.Info().Msg("Running database migrations...")
		if err := runMigrations(ctx, pool, lgr); err != nil {
			pool.Close()
			return nil, err
		}
		lgr.Info().Msg("Database migrations successfully applied.")
	}

	admin := seed.AdminAccount{
		Email:    cfg.Admin.Email,
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	}
	if err := seed.CreateDefaultData(ctx, pgRepos.NewRepositories(pool), admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return pool, nil
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool, lgr zerolog.Logger) error {
	migrator, err := appMigrations.NewMigrator(pool, logger.Component("migrations"))
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Up(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	return nil
}

// BuildDependencies initializes repositories, services and controllers over repos.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Repos: repos, Logger: lgr}
	now := appServices.Clock(time.Now)

	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.UploadDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Tokens = pkgAuth.NewTokenService(pkgAuth.TokenConfig{
		SecretKey:   cfg.Session.Secret,
		TTL:         cfg.SessionTTL(),
		TokenIssuer: cfg.Session.Issuer,
	})

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  "Alumni Network",
		FromEmail: cfg.SMTP.From,
		UseTLS:    cfg.SMTP.Port == 465,
		BaseURL:   cfg.SMTP.AppURL,
	}, logger.Component("email"))

	deps.Producer = broker.NewProducer(cfg.KafkaBrokers(), cfg.Kafka.ActivityTopic, logger.Component("broker"))
	deps.Hub = websocket.NewHub(logger.Component("websocket"))

	activity := appServices.NewActivityService(repos.Activities, deps.Producer, logger.Component("activity"))
	deps.AuthService = appServices.NewAuthService(repos, deps.Tokens, activity, mailer,
		appServices.AuthConfig{AdminEmail: cfg.Admin.Email}, now, logger.Component("auth"))
	deps.UserService = appServices.NewUserService(repos, deps.FileStorage, activity, logger.Component("users"))
	deps.ProfileService = appServices.NewProfileService(repos, deps.FileStorage, activity, logger.Component("profiles"))
	deps.PostService = appServices.NewPostService(repos, deps.FileStorage, activity, now, logger.Component("posts"))
	deps.JobService = appServices.NewJobService(repos, deps.FileStorage, mailer, activity, now, logger.Component("jobs"))
	deps.EventService = appServices.NewEventService(repos, deps.FileStorage, activity, now, logger.Component("events"))
	deps.ConnectionService = appServices.NewConnectionService(repos, activity, logger.Component("connections"))
	deps.MessageService = appServices.NewMessageService(repos, deps.Hub, logger.Component("messages"))
	deps.AdminService = appServices.NewAdminService(repos, activity, now, logger.Component("admin"))
	deps.SettingsService = appServices.NewSettingsService(repos.Settings, activity, now, logger.Component("settings"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService, cfg.Session.CookieName)

	httpLog := logger.Component("http")
	deps.Handlers = &appRoutes.Handlers{
		Auth: appControllers.NewAuthController(deps.AuthService, deps.UserService,
			appControllers.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure}, httpLog),
		Profile:     appControllers.NewProfileController(deps.ProfileService, httpLog),
		Posts:       appControllers.NewPostController(deps.PostService, httpLog),
		Jobs:        appControllers.NewJobController(deps.JobService, httpLog),
		Events:      appControllers.NewEventController(deps.EventService, httpLog),
		Connections: appControllers.NewConnectionController(deps.ConnectionService, httpLog),
		Messages:    appControllers.NewMessageController(deps.MessageService, httpLog),
		Users:       appControllers.NewUserController(deps.UserService, httpLog),
		Admin:       appControllers.NewAdminController(deps.AdminService, deps.SettingsService, httpLog),
		WebSocket: websocket.NewHandler(deps.Hub,
			websocket.NewMessageHandler(deps.MessageService, logger.Component("websocket")), logger.Component("websocket")),
	}

	if cfg.Scheduler.Enabled {
		deps.Scheduler = scheduler.New(logger.Component("scheduler"), scheduledTaskTimeout)
		if err := deps.Scheduler.Add("purge-expired-sessions", cfg.Scheduler.SessionPurgeSpec, deps.AuthService.PurgeExpired); err != nil {
			return nil, fmt.Errorf("invalid session purge schedule: %w", err)
		}
		if err := deps.Scheduler.Add("close-expired-jobs", cfg.Scheduler.JobCloseSpec, deps.JobService.CloseExpired); err != nil {
			return nil, fmt.Errorf("invalid job close schedule: %w", err)
		}
	}

	return deps, nil
}

// Start launches the websocket hub and the scheduler. Stop shuts them down.
func (d *Dependencies) Start(ctx context.Context) {
	hubCtx, cancel := context.WithCancel(ctx)
	d.stopHub = cancel
	go d.Hub.Run(hubCtx)
	if d.Scheduler != nil {
		d.Scheduler.Start()
	}
}

// Stop waits for running scheduled tasks, closes the hub, then flushes the broker producer
func (d *Dependencies) Stop(ctx context.Context) {
	if d.Scheduler != nil {
		d.Scheduler.Stop(ctx)
	}
	if d.stopHub != nil {
		d.stopHub()
	}
	if err := d.Producer.Close(); err != nil {
		d.Logger.Error().Err(err).Msg("Failed to close Kafka producer")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.CORS(cfg.AllowedOrigins()),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Handlers, deps.AuthMiddleware, deps.SettingsService, cfg.Server.UploadDir)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
