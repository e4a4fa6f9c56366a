package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with all routes.
func NewRouter(src StatusSource, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	router := gin.New()
	router.Use(Logger(log))
	router.Use(Recovery(log))

	h := NewHandler(src)
	router.GET("/health", h.Health)

	api := router.Group("/api/v1")
	{
		api.GET("/status", h.Status)
		api.GET("/auctions/:id", h.Auction)
		api.GET("/report", h.Report)
	}
	return router
}

// NewServer wraps the router in an HTTP server. Cross-origin GETs are
// allowed from the given origins only.
func NewServer(addr string, origins []string, router http.Handler) *http.Server {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet},
	})
	return &http.Server{
		Addr:              addr,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
