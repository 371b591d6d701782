package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/skillsprint/skillsprint-backend/internal/db"
	"github.com/skillsprint/skillsprint-backend/internal/gemini"
	"github.com/skillsprint/skillsprint-backend/internal/handlers"
	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/middleware"
	"github.com/skillsprint/skillsprint-backend/internal/observability"
	"github.com/skillsprint/skillsprint-backend/internal/repos"
	"github.com/skillsprint/skillsprint-backend/internal/server"
	"github.com/skillsprint/skillsprint-backend/internal/services"
	"github.com/skillsprint/skillsprint-backend/internal/sse"
	"github.com/skillsprint/skillsprint-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	port := utils.GetEnv("PORT", "8080", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "skillsprint-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	learningPlanRepo := repos.NewLearningPlanRepo(thePG, log)
	secureAPIKeyRepo := repos.NewSecureAPIKeyRepo(thePG, log)
	aiCallLogRepo := repos.NewAICallLogRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)
	var broadcaster sse.Broadcaster = sseHub
	if os.Getenv("REDIS_ADDR") != "" {
		sseBus, busErr := services.NewRedisSSEBus(log)
		if busErr != nil {
			log.Warn("Could not init Redis SSE bus, running single-instance", "error", busErr)
		} else {
			if fwdErr := sseBus.StartForwarder(context.Background(), sseHub.Broadcast); fwdErr != nil {
				log.Warn("Could not start Redis SSE forwarder, running single-instance", "error", fwdErr)
			} else {
				broadcaster = services.NewBusBroadcaster(log, sseBus, sseHub)
			}
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	geminiClient := services.NewGeminiClient(log, gemini.NewClient(log), secureAPIKeyRepo, aiCallLogRepo)
	avatarService, err := services.NewAvatarService(log)
	if err != nil {
		log.Error("Could not init AvatarService", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, avatarService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(log, userRepo, avatarService, broadcaster)
	plannerService := services.NewPlannerService(thePG, log, learningPlanRepo, geminiClient, broadcaster)
	quizService := services.NewQuizService(log, learningPlanRepo, geminiClient)
	chatService := services.NewChatService(log, geminiClient)
	secureKeyService := services.NewSecureKeyService(thePG, log, secureAPIKeyRepo)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	planHandler := handlers.NewPlanHandler(plannerService)
	quizHandler := handlers.NewQuizHandler(quizService)
	chatHandler := handlers.NewChatHandler(chatService)
	geminiHandler := handlers.NewGeminiHandler(geminiClient)
	secureKeyHandler := handlers.NewSecureKeyHandler(secureKeyService)
	sseHandler := handlers.NewSSEHandler(log, sseHub)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		UserHandler:      userHandler,
		PlanHandler:      planHandler,
		QuizHandler:      quizHandler,
		ChatHandler:      chatHandler,
		GeminiHandler:    geminiHandler,
		SecureKeyHandler: secureKeyHandler,
		SSEHandler:       sseHandler,
		Broadcaster:      broadcaster,
	})

	log.Info("Starting server...", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
