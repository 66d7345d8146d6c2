package routes

import (
	"net/http"
	"strings"
	"time"

	"foundersnexus/handlers"
	"foundersnexus/logging"
	"foundersnexus/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Config struct {
	CORSOrigins []string
	JWTSecret   string
	// Limiter is optional; nil disables rate limiting.
	Limiter middleware.Limiter
	Log     logging.Logger
}

func SetupRouter(h *handlers.Handler, cfg Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(cfg.Log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.Limiter != nil {
		router.Use(middleware.RateLimit(cfg.Limiter, cfg.Log))
	}

	router.GET("/health", h.Health)

	// Public routes
	public := router.Group("/api")
	public.POST("/users", h.CreateUser)
	public.POST("/login", h.Login)
	public.GET("/push/vapid-public-key", h.VAPIDPublicKey)

	api := router.Group("/api")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))

	// Users
	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)
	api.DELETE("/users/:id", h.DeleteUser)
	api.POST("/users/:id/follow", h.ToggleFollow)
	api.GET("/users/:id/followers", h.Followers)
	api.GET("/users/:id/following", h.Following)

	// Roles
	api.GET("/roles", h.ListRoles)
	api.POST("/roles", h.CreateRole)
	api.GET("/roles/:id", h.GetRole)
	api.DELETE("/roles/:id", h.DeleteRole)

	// Profiles
	api.GET("/entrepreneurs", h.ListEntrepreneurs)
	api.POST("/entrepreneurs", h.CreateEntrepreneur)
	api.GET("/entrepreneurs/:id", h.GetEntrepreneur)
	api.DELETE("/entrepreneurs/:id", h.DeleteEntrepreneur)
	api.GET("/investors", h.ListInvestors)
	api.POST("/investors", h.CreateInvestor)
	api.GET("/investors/user/:userId", h.GetInvestorByUser)
	api.PATCH("/investors/user/:userId", h.UpdateInvestorByUser)
	api.DELETE("/investors/:id", h.DeleteInvestor)

	// Startups
	api.GET("/startups", h.ListStartups)
	api.POST("/startups", h.CreateStartup)
	api.GET("/startups/:id", h.GetStartup)
	api.DELETE("/startups/:id", h.DeleteStartup)

	// Posts and comments
	api.GET("/posts", h.ListPosts)
	api.POST("/posts", h.CreatePost)
	api.GET("/posts/user/:userId", h.PostsByUser)
	api.GET("/posts/:id", h.GetPost)
	api.DELETE("/posts/:id", h.DeletePost)
	api.POST("/posts/:id/like", h.ToggleLike)
	api.POST("/posts/:id/comments", h.AddComment)
	api.GET("/posts/:id/comments", h.CommentsByPost)
	api.DELETE("/posts/:id/comments/:commentId", h.RemoveComment)
	api.GET("/comments/:id", h.GetComment)

	// Pitch decks
	api.POST("/pitchdecks", h.CreatePitchDeck)
	api.GET("/pitchdecks", h.ListPitchDecks)
	api.GET("/pitchdecks/active/:startupId", h.ActivePitchDeck)
	api.GET("/pitchdecks/:id", h.GetPitchDeck)
	api.PATCH("/pitchdecks/:id", h.UpdatePitchDeck)
	api.PUT("/pitchdecks/:id/activate", h.ActivatePitchDeck)
	api.DELETE("/pitchdecks/:id", h.DeletePitchDeck)

	// Push
	api.POST("/push/subscribe", h.SubscribePush)

	// Admin
	api.GET("/admin/integrity", h.IntegrityReport)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}
