package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"memorial-backend/internal/shared/middleware"
	"memorial-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupMemorialRoutes(v1, c)
		setupGroupRoutes(v1, c)
		setupProfileRoutes(v1, c)
		setupOrganizationRoutes(v1, c)
	}

	return router
}

func setupMemorialRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.Config.JWT.Secret)

	memorials := v1.Group("/memorials")
	{
		memorials.GET("", c.MemorialHandler.List)
		memorials.GET("/:id", c.MemorialHandler.Get)
		memorials.POST("", auth, c.MemorialHandler.Create)
		memorials.PUT("/:id", auth, c.MemorialHandler.Update)
		memorials.DELETE("/:id", auth, c.MemorialHandler.Delete)
	}
}

func setupGroupRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.Config.JWT.Secret)

	groups := v1.Group("/groups")
	{
		groups.GET("", c.GroupHandler.List)
		groups.GET("/:id", c.GroupHandler.Get)
		groups.GET("/:id/members", c.GroupHandler.ListMembers)
		groups.POST("", auth, c.GroupHandler.Create)
		groups.PUT("/:id", auth, c.GroupHandler.Update)
	}
}

func setupProfileRoutes(v1 *gin.RouterGroup, c *container.Container) {
	profiles := v1.Group("/profiles")
	profiles.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		profiles.GET("/me", c.ProfileHandler.Get)
		profiles.PUT("/me", c.ProfileHandler.Save)
		profiles.DELETE("/me", c.ProfileHandler.Delete)
	}
}

func setupOrganizationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.Config.JWT.Secret)

	orgs := v1.Group("/organizations")
	{
		orgs.GET("", c.OrgHandler.List)
		orgs.GET("/mine", auth, c.OrgHandler.ListMine)
	}
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := appCtx.DB.Ping(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
