package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/skillsprint/skillsprint-backend/internal/handlers"
	"github.com/skillsprint/skillsprint-backend/internal/middleware"
	"github.com/skillsprint/skillsprint-backend/internal/sse"
)

type RouterConfig struct {
	AuthHandler      *handlers.AuthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	UserHandler      *handlers.UserHandler
	PlanHandler      *handlers.PlanHandler
	QuizHandler      *handlers.QuizHandler
	ChatHandler      *handlers.ChatHandler
	GeminiHandler    *handlers.GeminiHandler
	SecureKeyHandler *handlers.SecureKeyHandler
	SSEHandler       *handlers.SSEHandler
	Broadcaster      sse.Broadcaster
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("skillsprint-backend"))

	// Cors
	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if env := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); env != "" {
		origins = strings.Split(env, ",")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.Use(middleware.FlushSSE(cfg.Broadcaster))
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.Stream)
	protected.POST("/sse/subscribe", cfg.SSEHandler.Subscribe)
	protected.POST("/sse/unsubscribe", cfg.SSEHandler.Unsubscribe)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.PATCH("/user", cfg.UserHandler.UpdateName)
	protected.GET("/user/avatar", cfg.UserHandler.GetAvatar)
	// Plan
	protected.POST("/plan", cfg.PlanHandler.Generate)
	protected.GET("/plan", cfg.PlanHandler.Get)
	protected.DELETE("/plan", cfg.PlanHandler.Delete)
	protected.PATCH("/plan/days/:day", cfg.PlanHandler.UpdateDay)
	// Quiz
	protected.POST("/quiz", cfg.QuizHandler.Generate)
	// Chat
	protected.POST("/chat/sessions", cfg.ChatHandler.CreateSession)
	protected.GET("/chat/sessions/:id", cfg.ChatHandler.GetSession)
	protected.DELETE("/chat/sessions/:id", cfg.ChatHandler.CloseSession)
	protected.POST("/chat/sessions/:id/messages", cfg.ChatHandler.SendMessage)
	// Gemini proxy
	protected.POST("/gemini", cfg.GeminiHandler.Proxy)

	// ===============
	// || Admin     ||
	// ===============
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/keys", cfg.SecureKeyHandler.List)
	admin.POST("/keys", cfg.SecureKeyHandler.Create)
	admin.PUT("/keys/:id", cfg.SecureKeyHandler.Update)
	admin.DELETE("/keys/:id", cfg.SecureKeyHandler.Delete)
	admin.POST("/keys/:id/toggle", cfg.SecureKeyHandler.ToggleActive)

	return router
}
