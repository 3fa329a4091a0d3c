package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videodub/config"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(cfg *config.Config, pipeline Pipeline) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	r.MaxMultipartMemory = config.MaxUploadBytes

	// Finished artifacts are served straight from the output directory.
	r.Static("/output", cfg.OutputDir)

	s := NewServer(pipeline)
	RegisterPipelineRoutes(r, s)
	RegisterHealthRoutes(r)
	return r
}

// corsMiddleware mirrors the permissive browser policy the web frontend
// expects.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,OPTIONS,PATCH,DELETE,POST,PUT")
		c.Header("Access-Control-Allow-Headers", "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RegisterHealthRoutes exposes the liveness probe.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}
