package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.ngrok.com/ngrok/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"garaadka-laundry/cmd/server"
	"garaadka-laundry/cmd/server/routes"
	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/config"
	"garaadka-laundry/internal/iam/application/auth"
	"garaadka-laundry/internal/iam/application/auth/otpstore"
	"garaadka-laundry/internal/iam/domain/model"
	"garaadka-laundry/internal/iam/domain/user"
	"garaadka-laundry/internal/iam/middleware"
	"garaadka-laundry/internal/infra/broker"
	"garaadka-laundry/internal/infra/database/postgres"
	"garaadka-laundry/internal/infra/database/sqlite"
	"garaadka-laundry/internal/infra/jwt"
	"garaadka-laundry/internal/laundry/cashclose"
	"garaadka-laundry/internal/laundry/customer"
	"garaadka-laundry/internal/laundry/order"
	"garaadka-laundry/internal/laundry/register"
	"garaadka-laundry/internal/pkg/log/accesslog"
	"garaadka-laundry/internal/pkg/logger"
	"garaadka-laundry/internal/pkg/mailer"
	"garaadka-laundry/internal/pkg/ratelimit"
	"garaadka-laundry/internal/pkg/util"
)

const (
	otpTTL          = 5 * time.Minute
	accessLogBuffer = 1024
	shutdownTimeout = 10 * time.Second
)

// Application holds every long running piece of the process.
type Application struct {
	cfg        config.Config
	logger     *zap.Logger
	db         *gorm.DB
	server     *server.HTTPServer
	audit      *audit.Service
	dispatcher *audit.Dispatcher
	publisher  broker.Publisher
	accessLog  *accesslog.Service
}

// Environment loads and validates the configuration and builds the logger.
func Environment() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.App.Env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log.With(zap.String("app", cfg.App.Name)), nil
}

// OpenDatabase connects to the configured driver.
func OpenDatabase(cfg config.Databases, log *zap.Logger) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		log.Info("sqlite database opened", zap.String("path", cfg.SQLite.Path))
		return db, nil
	case "postgres":
		return postgres.Open(cfg.Postgres, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Models lists every table the application owns, parents first.
func Models() []any {
	return []any{
		&model.User{},
		&model.AccessToken{},
		&audit.Audit{},
		&audit.OutboxMessage{},
		&customer.Customer{},
		&order.Order{},
		&order.OrderItem{},
		&order.Payment{},
		&register.Entry{},
		&cashclose.CashClose{},
		&accesslog.AccessLog{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// CloseDatabase releases the pool behind db.
func CloseDatabase(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// New wires repositories, services and controllers into the HTTP server.
func New(cfg config.Config, log *zap.Logger) (*Application, error) {
	tokens, err := jwt.NewTokenGenerator(jwt.Config{
		AccessSecret: cfg.Security.JWTAccessSecret,
		Issuer:       cfg.App.Name,
		AccessExpiry: cfg.AccessExpiry(),
	})
	if err != nil {
		return nil, fmt.Errorf("token generator: %w", err)
	}

	var mail mailer.Service
	if cfg.MailerEnabled() {
		mail, err = mailer.New(mailer.SMTPConfig{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			Username:   cfg.SMTP.Username,
			Password:   cfg.SMTP.Password,
			Encryption: cfg.SMTP.Encryption,
			Address:    cfg.SMTP.Address,
		}, logger.WithComponent(log, "mailer"))
		if err != nil {
			log.Warn("mailer disabled", zap.Error(err))
			mail = nil
		}
	} else {
		log.Info("smtp not configured, mailer disabled")
	}

	db, err := OpenDatabase(cfg.Databases, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		CloseDatabase(db)
		return nil, err
	}

	publisher, err := broker.New(cfg, logger.WithComponent(log, "broker"))
	if err != nil {
		CloseDatabase(db)
		return nil, fmt.Errorf("outbox publisher: %w", err)
	}

	auditRepo := audit.NewRepository(db)
	auditService := audit.NewService(db, auditRepo, logger.WithComponent(log, "audit"), audit.Options{
		Topic:       cfg.Outbox.Topic,
		ExportLimit: cfg.Audit.ExportLimit,
	})
	dispatcher := audit.NewDispatcher(auditRepo, publisher, logger.WithComponent(log, "outbox"), cfg.OutboxPollInterval(), cfg.Outbox.BatchSize)

	mw := middleware.NewMiddleware(middleware.NewRepository(db), tokens, logger.WithComponent(log, "auth-middleware"))
	password := util.NewArgon2Password()

	userService := user.NewService(db, user.NewRepository(db), auditService, password, log)
	authService := auth.NewService(auth.Deps{
		DB:         db,
		Repository: auth.NewRepository(db),
		Users:      userService,
		Tokens:     tokens,
		Recorder:   auditService,
		Password:   password,
		OTP:        otpstore.New(otpTTL),
		Mail:       mail,
		Logger:     log,
	})

	customerRepo := customer.NewRepository(db)
	customerService := customer.NewService(db, customerRepo, auditService, log)
	orderService := order.NewService(db, order.NewRepository(db), customerRepo, auditService, log)
	registerService := register.NewService(db, register.NewRepository(db), auditService, log)
	cashCloseService := cashclose.NewService(db, cashclose.NewRepository(db), auditService, mail,
		cashclose.Options{ReportTo: cfg.CashClose.ReportTo}, log)

	var accessLog *accesslog.Service
	if cfg.Log.Access {
		accessLog = accesslog.NewService(accesslog.NewRepository(db), logger.WithComponent(log, "access-log"), accessLogBuffer)
	}

	router, err := routes.SetupRouter(routes.Deps{
		Env:        cfg.App.Env,
		Origins:    cfg.Cors.Origins,
		DB:         db,
		Logger:     log,
		Middleware: mw,
		AccessLog:  accessLog,
		Limiter:    ratelimit.NewIPRateLimiter(rate.Limit(cfg.Security.LoginRatePerSec), cfg.Security.LoginBurst),
		Auth:       auth.NewController(authService, mw, auditService, log),
		Users:      user.NewController(userService, log),
		Customers:  customer.NewController(customerService, log),
		Orders:     order.NewController(orderService, log),
		Register:   register.NewController(registerService, log),
		CashClose:  cashclose.NewController(cashCloseService, log),
		Audit:      audit.NewController(auditService, log),
	})
	if err != nil {
		_ = publisher.Close()
		CloseDatabase(db)
		return nil, err
	}

	log.Info("dependencies wired",
		zap.String("driver", cfg.Databases.Driver),
		zap.String("broker", cfg.Outbox.Broker),
		zap.Bool("mailer", mail != nil),
		zap.Bool("access_log", accessLog != nil),
	)

	return &Application{
		cfg:        cfg,
		logger:     log,
		db:         db,
		server:     server.NewHTTPServer(cfg.Server.HTTP.Port, router, log),
		audit:      auditService,
		dispatcher: dispatcher,
		publisher:  publisher,
		accessLog:  accessLog,
	}, nil
}

// Start runs the HTTP server and the background workers until ctx is
// cancelled or one of them fails.
func (a *Application) Start(ctx context.Context) error {
	a.logger.Info("starting application", zap.String("env", a.cfg.App.Env))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(a.server.Start)

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.dispatcher.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.audit.RunRetention(gctx, a.cfg.AuditCleanupInterval(), a.cfg.Audit.RetentionDays)
		return nil
	})

	if a.accessLog != nil {
		g.Go(func() error { return a.accessLog.Run(gctx) })
	}

	if a.cfg.Test.Ngrok.Live {
		if a.cfg.Test.Ngrok.Token == "" {
			a.logger.Warn("test.ngrok.live is set but test.ngrok.token is empty; tunnel not started")
		} else {
			g.Go(func() error {
				if err := startNgrokForward(gctx, a.cfg.Test.Ngrok.Token, a.cfg.Server.HTTP.Port, a.logger); err != nil {
					a.logger.Error("ngrok tunnel stopped", zap.Error(err))
				}
				return nil
			})
		}
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// Close releases the broker connection and the database pool.
func (a *Application) Close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("close publisher", zap.Error(err))
	}
	CloseDatabase(a.db)
	_ = a.logger.Sync()
}

func startNgrokForward(ctx context.Context, token string, port int, log *zap.Logger) error {
	agent, err := ngrok.NewAgent(
		ngrok.WithAuthtoken(token),
		ngrok.WithAutoConnect(true),
	)
	if err != nil {
		return fmt.Errorf("create ngrok agent: %w", err)
	}

	endpoint, err := agent.Forward(ctx, ngrok.WithUpstream(fmt.Sprintf("http://127.0.0.1:%d", port)))
	if err != nil {
		var ngErr ngrok.Error
		if errors.As(err, &ngErr) {
			log.Error("ngrok forward failed", zap.String("code", ngErr.Code()), zap.Error(err))
		}
		return fmt.Errorf("start ngrok forward: %w", err)
	}

	log.Info("ngrok endpoint online", zap.Any("url", endpoint.URL()))

	<-ctx.Done()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := endpoint.CloseWithContext(closeCtx); err != nil {
		return fmt.Errorf("close ngrok endpoint: %w", err)
	}
	if err := agent.Disconnect(); err != nil {
		return fmt.Errorf("disconnect ngrok agent: %w", err)
	}
	return nil
}
