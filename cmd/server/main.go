package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finboard/internal/audit"
	auditrepo "finboard/internal/audit/repository"
	authhandler "finboard/internal/auth/handler"
	authservice "finboard/internal/auth/service"
	"finboard/internal/authz"
	authzrepo "finboard/internal/authz/repository"
	"finboard/internal/config"
	"finboard/internal/db"
	expensehandler "finboard/internal/expense/handler"
	expenserepo "finboard/internal/expense/repository"
	healthhandler "finboard/internal/health/handler"
	"finboard/internal/httpapi/dispatch"
	reporthandler "finboard/internal/report/handler"
	reportrepo "finboard/internal/report/repository"
	"finboard/internal/security"
	"finboard/internal/server"
	sessionrepo "finboard/internal/session/repository"
	"finboard/internal/telemetry"
	"finboard/internal/telemetry/otel"
	userrepo "finboard/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "finboard", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	var emitter audit.Emitter
	if ke := audit.NewKafkaEmitter(cfg.AuditKafkaBrokersList(), cfg.AuditKafkaTopic); ke != nil {
		emitter = ke
		defer ke.Close()
	}
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn), emitter)

	authSvc := authservice.NewAuthService(
		userrepo.NewPostgresRepository(conn),
		sessionrepo.NewPostgresRepository(conn),
		authz.NewResolver(authzrepo.NewPostgresRepository(conn)),
		auditLogger,
		security.NewHasher(cfg.BcryptCost),
		cfg.SessionTTLDuration(),
	)

	routes, err := server.BuildRoutes(server.Deps{
		Auth:    authhandler.NewHandler(authSvc, userrepo.NewPostgresRepository(conn)),
		Expense: expensehandler.NewHandler(expenserepo.NewPostgresRepository(conn)),
		Report:  reporthandler.NewHandler(reportrepo.NewPostgresRepository(conn)),
		Health:  healthhandler.NewHandler(conn),
	})
	if err != nil {
		log.Fatalf("routes: %v", err)
	}

	dispatcher := dispatch.New(routes, authSvc, cfg.RequestTimeoutDuration())
	handler := telemetry.HTTPMiddleware(dispatcher, map[string]bool{"/api/v1/health": true})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
