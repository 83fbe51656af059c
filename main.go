package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "articledesk/internal/config"
	intdb "articledesk/internal/db"
	router "articledesk/internal/http"
	"articledesk/internal/http/handlers"
	"articledesk/internal/repositories"
	"articledesk/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db, err := intconfig.ConnectDB(env.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer intconfig.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := intdb.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	articles := repositories.ArticleRepository{DB: db}
	files := services.DiskFileStore{Dir: env.UploadDir}
	tokens := services.Tokens{Secret: []byte(env.JWTSecret), TTL: env.TokenTTL}

	hs := &handlers.Handlers{
		Auth:     services.AuthService{Users: repositories.UserRepository{DB: db}, Tokens: tokens},
		Articles: services.ArticleService{Articles: articles, Files: files, MaxBytes: env.MaxUploadBytes()},
		Bindings: services.BindingService{Bindings: repositories.BindingRepository{DB: db}},
	}
	r := router.NewRouter(env.CORSOrigins, tokens, hs)

	worker := services.ProcessingService{
		Articles: articles,
		Files:    files,
		Interval: env.ProcessingInterval,
		Batch:    env.ProcessingBatch,
		Lease:    env.ProcessingLease,
	}
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	<-workerDone

	log.Println("Server stopped cleanly.")
}
