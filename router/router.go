// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/danielhkuo/quorum/cliparse"
	"github.com/danielhkuo/quorum/handlers"
	"github.com/danielhkuo/quorum/limiter"
	"github.com/danielhkuo/quorum/middleware"
	"github.com/danielhkuo/quorum/service"
)

// NewRouter wires the API. A nil limiter disables vote rate limiting.
func NewRouter(svc *service.Service, cfg cliparse.Config, l limiter.Limiter) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), middleware.WithLogging(), cors.New(corsConfig(cfg.AllowedOrigins)))

	// Initialize handlers
	ballotHandler := handlers.NewBallotHandler(svc)
	votingHandler := handlers.NewVotingHandler(svc)
	directoryHandler := handlers.NewDirectoryHandler(svc)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Root endpoint
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "quorum API v1")
	})

	api := r.Group("/api/v1", middleware.RequireAuth(cfg.JWTSecret), middleware.LoadPrincipal(svc))

	// Ballots and lifecycle (owner operations)
	ballots := api.Group("/ballots")
	ballots.POST("", ballotHandler.CreateBallot)
	ballots.GET("", ballotHandler.ListBallots)
	ballots.GET("/:id", ballotHandler.GetBallot)
	ballots.POST("/:id/suspend", ballotHandler.SuspendBallot)
	ballots.POST("/:id/unsuspend", ballotHandler.UnsuspendBallot)
	ballots.POST("/:id/end", ballotHandler.EndBallot)
	ballots.GET("/:id/analytics", ballotHandler.GetAnalytics)

	// Voting
	ballots.POST("/:id/votes", middleware.RateLimit(l, "vote"), votingHandler.SubmitVote)
	ballots.GET("/:id/votes/me", votingHandler.GetMyVote)

	// Roles and categories
	api.POST("/roles", directoryHandler.CreateRole)
	api.GET("/roles", directoryHandler.ListRoles)
	api.POST("/roles/:id/members", directoryHandler.AssignRole)
	api.POST("/categories", directoryHandler.CreateCategory)
	api.GET("/categories", directoryHandler.ListCategories)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
