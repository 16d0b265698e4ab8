package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"statuspage-cron/api/v1/health"
	"statuspage-cron/api/v1/metrics"
	"statuspage-cron/api/v1/sources"
	"statuspage-cron/client"
	v1 "statuspage-cron/services/v1"
)

func NewRouter(store *v1.MetricsStore, factory client.Factory, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	SetupRoutes(r, store, factory)
	return r
}

func SetupRoutes(r *gin.Engine, store *v1.MetricsStore, factory client.Factory) {
	m := metrics.NewHandler(store)

	v1Api := r.Group("/api/v1")
	{
		v1Api.GET("/health", health.GetHealth(store))

		v1Api.GET("/snapshots", m.GetSnapshots)
		v1Api.GET("/snapshots/:label", m.GetSnapshot)
		v1Api.GET("/errors", m.GetErrors)
		v1Api.GET("/resources", m.GetResources)
		v1Api.GET("/resource/*id", m.GetResource)

		sourcesApi := v1Api.Group("/sources")
		{
			sourcesApi.POST("/test", sources.PostTestConnection(factory))
		}
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("Handled request")
	}
}
