package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sakaba-labs/shinise-navi/internal/infra/config"
	"github.com/sakaba-labs/shinise-navi/web"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.CustomRecoveryWithWriter(nil, recoveryHandler(handler.logger)),
		requestLogger(handler.logger),
		corsMiddleware(),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexPage)
	})
	router.GET("/healthz", handler.Healthz)

	api := router.Group("/api/v1")
	{
		api.GET("/search", handler.Search)
		api.GET("/shops/:id", handler.ShopDetails)
		api.GET("/shops/:id/guide", handler.ShopGuide)
		api.GET("/photos/*name", handler.PhotoRedirect)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
