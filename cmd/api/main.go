package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chanchat/internal/chat"
	"chanchat/internal/config"
	"chanchat/internal/database"
	"chanchat/internal/http/handlers"
	"chanchat/internal/http/middleware"
	"chanchat/internal/models"
	"chanchat/internal/report"
	"chanchat/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.DBDSN == "" || cfg.JWTSecret == "" {
		log.Fatal("DB_DSN and JWT_SECRET are required")
	}

	db, err := database.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("failed connect db:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Channel{},
		&models.Message{},
		&models.MessageReport{},
	); err != nil {
		log.Fatal("failed migrate:", err)
	}

	hub := ws.NewHub()
	reports := report.NewService(db)
	chatSvc := chat.NewService(db, hub, reports)

	r := gin.Default()

	// Auth
	authH := &handlers.AuthHandler{
		DB:        db,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  time.Duration(cfg.TokenTTLHours) * time.Hour,
	}
	r.POST("/api/v1/auth/register", authH.Register)
	r.POST("/api/v1/auth/login", authH.Login)

	// WebSocket endpoint, one subscription per channel
	wsH := &handlers.WSHandler{
		Hub:                  hub,
		JWTSecret:            cfg.JWTSecret,
		WSInsecureSkipVerify: cfg.WSInsecureSkipVerify,
	}
	r.GET("/ws/channels/:id", wsH.Handle)

	// Protected routes
	authed := r.Group("/api/v1")
	authed.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	channelH := &handlers.ChannelHandler{Chat: chatSvc}
	authed.POST("/channels", channelH.Create)
	authed.GET("/channels", channelH.List)
	authed.DELETE("/channels/:id", channelH.Delete)
	authed.GET("/channels/:id/messages", channelH.ListMessages)

	messageH := &handlers.MessageHandler{Chat: chatSvc}
	authed.POST("/channels/:id/messages", messageH.Create)
	authed.PUT("/channels/:id/messages/:messageId", messageH.Update)
	authed.DELETE("/channels/:id/messages/:messageId", messageH.Delete)

	reportH := &handlers.ReportHandler{Reports: reports}
	authed.POST("/messages/:id/report", reportH.File)
	authed.GET("/messages/:id/report_summary", reportH.Summary)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		log.Println("listening on", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	hub.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Println("shutdown:", err)
	}
}
