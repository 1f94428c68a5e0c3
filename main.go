package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"hr-realtime/internal/auth"
	"hr-realtime/internal/chat"
	"hr-realtime/internal/config"
	"hr-realtime/internal/db"
	"hr-realtime/internal/directory"
	"hr-realtime/internal/handlers"
	"hr-realtime/internal/middleware"
	"hr-realtime/internal/notifier"
	"hr-realtime/internal/observability"
	"hr-realtime/internal/repositories"
	"hr-realtime/internal/ws"
	"hr-realtime/pkg/logger"
)

func main() {
	cfg := config.Load()

	appLog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLog.Sync()

	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg.TracingEndpoint, cfg.Environment, cfg.TracingEnabled)
	if err != nil {
		appLog.Fatal("failed to set up tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		appLog.Fatal("failed to connect to db", zap.Error(err))
	}
	defer database.Close()

	events := observability.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, appLog)
	defer events.Close()

	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	departmentMessageRepo := repositories.NewDepartmentMessageRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)

	userDirectory := directory.NewSQLDirectory(database)
	verifier := auth.NewVerifier(cfg.JWTSecret)

	bus := notifier.NewBus()
	notifierService := notifier.NewService(notificationRepo, bus, events, appLog)

	hub := ws.NewHub(appLog)
	unbind := ws.BindNotifier(hub, bus)
	defer unbind()

	chatService := chat.NewService(
		conversationRepo,
		messageRepo,
		departmentMessageRepo,
		userDirectory,
		notifierService,
		hub,
		appLog,
		cfg.NotifyTimeout,
	)

	wsHandler := ws.NewHandler(hub, verifier, userDirectory, chatService, events, appLog)
	notificationHandler := handlers.NewNotificationHandler(notifierService)
	healthHandler := handlers.NewHealthHandler(database)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("hr-realtime"))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-Id", "X-Device-Id"},
		AllowWildcard: true,
	}))

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.GET("/ws", wsHandler.Handle)
	router.POST("/internal/notifications",
		authMiddleware,
		middleware.RequireRoles(auth.RoleAdmin, auth.RoleHR, auth.RoleOwner),
		notificationHandler.Publish,
	)
	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	appLog.Info("realtime service listening", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		appLog.Fatal("server error", zap.Error(err))
	}
}
