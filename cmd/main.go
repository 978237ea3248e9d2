package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brokerage-backoffice/config"
	_ "brokerage-backoffice/docs"
	"brokerage-backoffice/internal/handler"
	"brokerage-backoffice/internal/model"
	"brokerage-backoffice/internal/ports"
	"brokerage-backoffice/internal/ratelimit"
	"brokerage-backoffice/internal/repository"
	"brokerage-backoffice/internal/security"
	"brokerage-backoffice/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Brokerage-backoffice Auth API
// @version 1.0
// @description REST API аутентификации бэк-офиса страхового брокера

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if err := applyMigrations(&cfg.DatabaseConfig); err != nil {
		log.Fatalf("Не удалось применить миграции: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	userRepo := repository.NewUserRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	tokenService, err := security.NewTokenService(&cfg.JWT)
	if err != nil {
		log.Fatalf("Ошибка создания сервиса токенов: %v", err)
	}

	rateLimiter, closeLimiter, err := setupRateLimiter(cfg)
	if err != nil {
		log.Fatalf("Ошибка создания rate limiter-а: %v", err)
	}
	defer closeLimiter()

	authService := service.NewAuthenticationService(
		userRepo,
		tokenService,
		refreshRepo,
		auditRepo,
		rateLimiter,
		security.NewPasswordPolicy(),
	)

	authHandler := handler.NewAuthenticationHandler(authService)
	auditHandler := handler.NewAuditHandler(auditRepo)

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupAuthRoutes(router, authHandler, tokenService)
	setupAdminRoutes(router, auditHandler, tokenService)

	runServer(ctx, srv)
}

func applyMigrations(cfg *config.DatabaseConfig) error {
	migrationsPath := cfg.MigrationsPath
	if migrationsPath == "" {
		migrationsPath = "file://migrations"
	}

	m, err := migrate.New(migrationsPath, cfg.DSN)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	log.Println("Миграции применены")
	return nil
}

// setupRateLimiter выбирает реализацию по конфигу: in-memory для одного
// инстанса, Redis — когда счётчики должны быть общими для нескольких
func setupRateLimiter(cfg *config.AppConfig) (ports.LoginRateLimiterInterface, func(), error) {
	if cfg.RateLimit.Store == "redis" {
		redisClient, err := config.SetupRedis(&cfg.RedisConfig)
		if err != nil {
			return nil, nil, err
		}

		limiter, err := ratelimit.NewRedisLimiter(redisClient, &cfg.RateLimit)
		if err != nil {
			return nil, nil, err
		}

		return limiter, func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("Ошибка при закрытии Redis: %v", err)
			}
		}, nil
	}

	limiter, err := ratelimit.NewMemoryLimiter(&cfg.RateLimit)
	if err != nil {
		return nil, nil, err
	}

	return limiter, limiter.Close, nil
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, tokenService *security.TokenService) {
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/refresh", h.RefreshToken)
		})
		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware(tokenService))
			r.Post("/change-password", h.ChangePassword)
			r.Get("/me", h.GetCurrentUser)
		})
	})
}

func setupAdminRoutes(r chi.Router, h *handler.AuditHandler, tokenService *security.TokenService) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(security.JWTMiddleware(tokenService))
		r.Use(security.RequireRole(model.RoleAdmin))
		r.Get("/audit", h.ListAudit)
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
