package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/admin-dashboard-api/internal/config"
	"github.com/dimitrije/admin-dashboard-api/internal/database"
	"github.com/dimitrije/admin-dashboard-api/internal/handlers"
	"github.com/dimitrije/admin-dashboard-api/internal/logger"
	authmw "github.com/dimitrije/admin-dashboard-api/internal/middleware"
	"github.com/dimitrije/admin-dashboard-api/internal/permissions"
	"github.com/dimitrije/admin-dashboard-api/internal/realtime"
	"github.com/dimitrije/admin-dashboard-api/internal/server"
	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	hub := realtime.NewHub(zlog.Named("hub"))
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	// Without Redis, change events stay inside this instance.
	var publisher realtime.Publisher = hub
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		bridge := realtime.NewRedisBridge(rdb, hub, zlog.Named("redis"))
		g.Go(func() error { return bridge.Run(ctx) })
		publisher = bridge
		zlog.Info("change feed fanned out through redis", zap.String("addr", cfg.RedisAddr))
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	notificationService := services.NewNotificationService(db, publisher, zlog.Named("notifications"))
	preferencesService := services.NewPreferencesService(db)

	authHandler := handlers.NewAuthHandler(userService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	preferencesHandler := handlers.NewPreferencesHandler(preferencesService)
	eventsHandler := handlers.NewEventsHandler(notificationService, hub, zlog.Named("events"))

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())
	app.Use(authmw.RequestLogger(zlog.Named("http")))

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))
	protected.Use(authmw.CurrentUser(userService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)
	protected.Get("/users/me/permissions", userHandler.GetPermissions)
	protected.Get("/navigation", userHandler.GetNavigation)

	protected.Get("/notifications", notificationHandler.List)
	protected.Post("/notifications", notificationHandler.Create)
	protected.Post("/notifications/read-all", notificationHandler.MarkAllAsRead)
	protected.Get("/notifications/events", eventsHandler.Stream)
	protected.Post("/notifications/items/:id/read", notificationHandler.MarkAsRead)
	protected.Delete("/notifications/items/:id", notificationHandler.Delete)

	protected.Get("/preferences", preferencesHandler.Get)
	protected.Patch("/preferences", preferencesHandler.Update)
	protected.Post("/preferences/theme/toggle", preferencesHandler.ToggleTheme)
	protected.Post("/preferences/sidebar/toggle", preferencesHandler.ToggleSidebar)

	// Role changes and deletion are further gated by the user service.
	admin := api.Group("/admin")
	admin.Use(authmw.Auth(jwtService))
	admin.Use(authmw.CurrentUser(userService))
	admin.Use(authmw.RequirePermission(permissions.ManageUsers))
	admin.Get("/users", userHandler.List)
	admin.Patch("/users/:id/role", userHandler.UpdateRole)
	admin.Delete("/users/:id", userHandler.Delete)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Port),
		Handler: server.Harden(app, server.Options{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			Production:        cfg.IsProduction(),
			Logger:            zlog.Named("http"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		// Open event streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		zlog.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		zlog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				removed, err := tokenService.CleanupExpired(ctx)
				if err != nil {
					zlog.Warn("failed to clean up refresh tokens", zap.Error(err))
					continue
				}
				zlog.Debug("cleaned up refresh tokens", zap.Int64("removed", removed))
			}
		}
	})

	return g.Wait()
}
