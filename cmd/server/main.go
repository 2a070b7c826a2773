package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adeebik/eraser/internal/api"
	"github.com/adeebik/eraser/internal/config"
	"github.com/adeebik/eraser/internal/db"
	"github.com/adeebik/eraser/internal/middleware"
	"github.com/adeebik/eraser/internal/repository"
	"github.com/adeebik/eraser/internal/services/collaboration"
	"github.com/adeebik/eraser/internal/telemetry"
)

func main() {
	log.Println("🚀 Starting collaborative canvas server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	jaegerShutdown, err := telemetry.InitJaeger("eraser", cfg.JaegerEndpoint)
	if err != nil {
		log.Printf("⚠️  Failed to initialize Jaeger: %v (continuing without tracing)", err)
		jaegerShutdown = func(ctx context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := jaegerShutdown(ctx); err != nil {
			log.Printf("⚠️  Failed to shutdown Jaeger: %v", err)
		}
	}()

	database, err := db.NewGorm(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	chatRepo := repository.NewChatRepository(database.DB)
	roomRepo := repository.NewRoomRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)

	registry := collaboration.NewRoomRegistry(chatRepo, roomRepo, userRepo, collaboration.Config{
		OfflineTTL:      cfg.MemberOfflineTTL,
		CleanupInterval: cfg.CleanupInterval,
	})
	registry.Start()

	wsHandler := collaboration.NewWebSocketHandler(registry, func(token string) (string, error) {
		return middleware.VerifyToken(cfg.JWTSecret, token)
	})

	handler := api.NewHandler(roomRepo, chatRepo, wsHandler)
	router := api.SetupRoutes(handler, cfg.JWTSecret)

	addr := cfg.ServerAddr()
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://%s", addr)
		log.Printf("📚 API Endpoints:")
		log.Printf("   POST   /api/rooms             - Create room")
		log.Printf("   GET    /api/rooms             - List rooms for caller")
		log.Printf("   POST   /api/rooms/share       - Mint share link")
		log.Printf("   POST   /api/rooms/join/:link  - Join via share link")
		log.Printf("   POST   /api/rooms/leave       - Leave room")
		log.Printf("   DELETE /api/rooms/:id         - Delete room")
		log.Printf("   GET    /api/chats/:roomId     - Replay mutation log")
		log.Printf("   GET    /ws?token=...          - Realtime coordinator")
		log.Println()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	registry.Shutdown()

	log.Println("✓ Server shutdown complete")
}
