package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/asset"
	"github.com/simp-lee/touradmin/internal/config"
	"github.com/simp-lee/touradmin/internal/docstore"
	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/middleware"
	"github.com/simp-lee/touradmin/internal/module/article"
	"github.com/simp-lee/touradmin/internal/module/auth"
	"github.com/simp-lee/touradmin/internal/module/comment"
	"github.com/simp-lee/touradmin/internal/module/employee"
	"github.com/simp-lee/touradmin/internal/module/settings"
	"github.com/simp-lee/touradmin/internal/module/tour"
	"github.com/simp-lee/touradmin/internal/module/user"
	"github.com/simp-lee/touradmin/internal/notify"
)

const defaultShutdownTimeout = 5 * time.Second

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine    *gin.Engine
	db        *gorm.DB
	logger    *logger.Logger
	cfg       *config.Config
	scheduler *cron.Cron
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      2 * timeout,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// models lists every table the application owns.
var models = []any{
	&domain.User{},
	&domain.Article{},
	&domain.Comment{},
	&domain.Tour{},
	&domain.Employee{},
	&domain.Membership{},
	&domain.Asset{},
	&domain.Notification{},
	&domain.LifecycleEvent{},
}

// Migrate creates or updates every table, including the settings aggregates.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}
	return docstore.AutoMigrate(db)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the database and its schema, repositories, services,
// handlers, middleware, background jobs and routes, and creates the
// bootstrap admin account when no account exists.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		closeDB(db, log.Logger)
	}()

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("auto migration completed")

	w, err := wire(cfg, db, log.Logger)
	if err != nil {
		return nil, err
	}

	if err := bootstrapAdmin(context.Background(), w.users, cfg.Auth.Bootstrap, log.Logger); err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: cfg.Server.TrustRequestID,
		}),
		middleware.Logger(log.Logger, "/metrics", "/health"),
		middleware.CORSWithConfig(resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)),
		middleware.Metrics(),
	)
	if rl := cfg.Server.RateLimit; rl.Enabled {
		engine.Use(middleware.NewRateLimiter(rl.RPS, rl.Burst).Handler())
	}

	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:      w.modules,
		DB:           db,
		Authenticate: middleware.Authenticate(w.tokens, cfg.Auth.PublicPaths...),
		UploadDir:    cfg.Assets.Dir,
		UploadURL:    cfg.Assets.BaseURL,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	var scheduler *cron.Cron
	if cfg.Jobs.Enabled {
		scheduler, err = newScheduler(cfg.Jobs, w.assets.Sweep, w.dispatcher.Drain, config.Component(log.Logger, "jobs"))
		if err != nil {
			return nil, err
		}
	}

	success = true
	return &App{
		engine:    engine,
		db:        db,
		logger:    log,
		cfg:       cfg,
		scheduler: scheduler,
	}, nil
}

// wiring is the object graph built by wire.
type wiring struct {
	modules    []Module
	tokens     *auth.Tokens
	users      domain.UserService
	assets     *asset.Service
	dispatcher *notify.Dispatcher
}

// wire builds repositories, services, handlers and modules:
// repository → service → handler → module.
func wire(cfg *config.Config, db *gorm.DB, log *slog.Logger) (*wiring, error) {
	blobs, err := asset.NewLocalStore(cfg.Assets.Dir, cfg.Assets.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("setup asset store: %w", err)
	}
	assets := asset.NewService(db, blobs, config.DurationOr(cfg.Assets.CleanupGrace, 72*time.Hour), config.Component(log, "assets"))
	outbox := notify.NewOutbox()
	dispatcher := notify.NewDispatcher(db,
		notify.NewLogMailer(cfg.Notifications.MailFrom, config.Component(log, "mailer")),
		cfg.Notifications.BatchSize, cfg.Notifications.MaxAttempts,
		config.Component(log, "notifications"),
	)
	maxUpload := cfg.Assets.MaxUploadBytes()

	userRepo := user.NewUserRepository(db)
	authz := user.NewRoleAuthorizer(userRepo)
	userSvc := user.NewUserService(userRepo, config.Component(log, "users"))
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, config.DurationOr(cfg.Auth.TokenExpiry, 24*time.Hour))

	store := docstore.New(db, config.Component(log, "docstore"))
	settingsSvc := settings.NewService(store, authz, config.Component(log, "settings"))

	articleRepo := article.NewArticleRepository(db)
	articleSvc := article.NewArticleService(db, articleRepo, assets, authz, config.Component(log, "articles"))
	commentSvc := comment.NewCommentService(db, comment.NewCommentRepository(db), articleRepo, authz, config.Component(log, "comments"))
	tourSvc := tour.NewTourService(db, tour.NewTourRepository(db), assets, authz, outbox, config.Component(log, "tours"))
	employeeSvc := employee.NewEmployeeService(db, employee.NewEmployeeRepository(db), authz, config.Component(log, "employees"))

	modules := []Module{
		auth.NewModule(auth.NewHandler(auth.NewService(tokens, userRepo, config.Component(log, "auth")))),
		user.NewModule(user.NewUserHandler(userSvc), middleware.RequireRole(authz, domain.RoleAdmin)),
		settings.NewModule(settings.NewSettingsHandler(settingsSvc)),
		article.NewModule(article.NewArticleHandler(articleSvc, maxUpload)),
		comment.NewModule(comment.NewCommentHandler(commentSvc)),
		tour.NewModule(tour.NewTourHandler(tourSvc, maxUpload)),
		employee.NewModule(employee.NewEmployeeHandler(employeeSvc)),
	}

	return &wiring{
		modules:    modules,
		tokens:     tokens,
		users:      userSvc,
		assets:     assets,
		dispatcher: dispatcher,
	}, nil
}

// bootstrapAdmin creates the configured admin account on an empty users
// table. An empty bootstrap email disables it.
func bootstrapAdmin(ctx context.Context, users domain.UserService, b config.BootstrapConfig, log *slog.Logger) error {
	if b.Email == "" {
		return nil
	}
	u, err := users.EnsureAdmin(ctx, domain.CreateUserInput{
		Name:     b.Name,
		Email:    b.Email,
		Password: b.Password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return err
	}
	if u != nil {
		log.Warn("bootstrap admin created; change its password", slog.String("email", u.Email))
	}
	return nil
}

func resolveCORSConfig(mode string, cfg config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()

	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials
	if cfg.MaxAge != "" {
		corsConfig.MaxAge = strconv.Itoa(int(config.DurationOr(cfg.MaxAge, 24*time.Hour).Seconds()))
	}

	if len(cfg.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowOrigins
		return corsConfig
	}

	// In release mode, when no allowlist is configured, deny cross-origin requests.
	if mode == gin.ReleaseMode {
		corsConfig.AllowOrigins = []string{}
	}

	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the background jobs and the HTTP server and blocks until a
// shutdown signal is received. Shutdown stops the jobs, drains the server
// within server.shutdown_timeout, then closes the database and the logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := a.cfg.Server.Addr()
	srv := newHTTPServer(addr, a.engine, config.DurationOr(a.cfg.Server.Timeout, 30*time.Second))

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	shutdownTimeout := config.DurationOr(a.cfg.Server.ShutdownTimeout, defaultShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.scheduler != nil {
		select {
		case <-a.scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			log.Warn("background jobs still running at shutdown")
		}
	}

	if runErr == nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	closeDB(a.db, log)

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}

func closeDB(db *gorm.DB, log *slog.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close error", slog.Any("error", err))
		return
	}
	log.Info("database connection closed")
}

// Close releases the database and the logger without serving. New has
// already applied the schema by the time it returns.
func (a *App) Close() {
	if a == nil {
		return
	}
	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}
	closeDB(a.db, log)
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
}
