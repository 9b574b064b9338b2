package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mateoquiroga/agencydesk-backend/api/controllers"
	"github.com/mateoquiroga/agencydesk-backend/api/routes"
	"github.com/mateoquiroga/agencydesk-backend/internal/accounts"
	"github.com/mateoquiroga/agencydesk-backend/internal/auth"
	"github.com/mateoquiroga/agencydesk-backend/internal/billing"
	"github.com/mateoquiroga/agencydesk-backend/internal/cart"
	"github.com/mateoquiroga/agencydesk-backend/internal/catalog"
	"github.com/mateoquiroga/agencydesk-backend/internal/deletion"
	"github.com/mateoquiroga/agencydesk-backend/internal/messages"
	"github.com/mateoquiroga/agencydesk-backend/internal/projects"
	"github.com/mateoquiroga/agencydesk-backend/pkg/auth/session"
	"github.com/mateoquiroga/agencydesk-backend/pkg/config"
	"github.com/mateoquiroga/agencydesk-backend/pkg/db"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
	"github.com/mateoquiroga/agencydesk-backend/pkg/migrate"
	"github.com/mateoquiroga/agencydesk-backend/pkg/redis"
	"github.com/mateoquiroga/agencydesk-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	catalogRepo := catalog.NewRepository(gdb)
	cartRepo := cart.NewRepository(gdb)
	userRepo := accounts.NewRepository(gdb)
	authRepo := auth.NewRepository(gdb)
	subsRepo := billing.NewRepository(gdb)
	projectsRepo := projects.NewRepository(gdb)
	contactRepo := messages.NewRepository(gdb)
	auditRecorder := deletion.NewAuditRecorder(gdb)

	runner, err := deletion.NewRunner(gdb, auditRecorder, logg, deletion.DefaultEdges())
	if err != nil {
		logg.Error(context.Background(), "failed to build deletion plan", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       authRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	accountsService, err := accounts.NewService(userRepo, sessionManager, runner, auditRecorder, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, dbClient, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(subsRepo, billing.NewStripeClient(stripeClient), cfg.Stripe)
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Sessions:    sessionManager,
		AuthService: authService,
		Register:    registerService,
		Accounts:    accountsService,
		Deletion:    runner,
		CartService: cartService,
		Billing:     billingService,
		Users:       userRepo,
		Catalog:     catalogRepo,
		Projects:    projectsRepo,
		Contact:     contactRepo,
		HealthDeps: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-shutdown
		logg.Info(ctx, "shutting down api server")
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(stopCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
