package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sakaba-labs/shinise-navi/internal/domain/discovery"
	"github.com/sakaba-labs/shinise-navi/internal/infra/config"
	apperrors "github.com/sakaba-labs/shinise-navi/pkg/errors"
)

// Handler wires the HTTP transport to the discovery domain.
type Handler struct {
	discoverySvc discovery.Service
	photoBase    string
	photoKey     string
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(discoverySvc discovery.Service, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		discoverySvc: discoverySvc,
		photoBase:    strings.TrimRight(cfg.Places.BaseURL, "/"),
		photoKey:     cfg.PhotoKey(),
		logger:       logger.With("component", "http.handler"),
	}
}

// Search handles the shop discovery endpoint.
func (h *Handler) Search(c *gin.Context) {
	req := discovery.Request{
		Lat:          queryFloat(c, "lat"),
		Lng:          queryFloat(c, "lng"),
		RadiusMeters: queryInt(c, "radius", 1000),
		Station:      c.Query("station"),
		Genre:        c.Query("genre"),
	}

	resp, err := h.discoverySvc.Search(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "search_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_input"
		case apperrors.IsCode(err, "station_not_found"):
			status = http.StatusNotFound
			code = "station_not_found"
		case apperrors.IsCode(err, "geocode_error"):
			code = "geocode_error"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ShopDetails returns the expanded record for one shop.
func (h *Handler) ShopDetails(c *gin.Context) {
	details, err := h.discoverySvc.ShopDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsCode(err, "shop_not_found") {
			status = http.StatusNotFound
		}
		abortWithError(c, NewHTTPError(status, "shop_not_found", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, details)
}

// ShopGuide returns the AI generated narrative guide for one shop.
func (h *Handler) ShopGuide(c *gin.Context) {
	guide, err := h.discoverySvc.ShopGuide(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsCode(err, "shop_not_found") {
			status = http.StatusNotFound
		}
		abortWithError(c, NewHTTPError(status, "shop_not_found", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, guide)
}

// PhotoRedirect sends the browser to the provider media URL for a photo
// reference, so the page never needs the API key inlined.
func (h *Handler) PhotoRedirect(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	if name == "" {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "photo_not_found", "photo reference missing", nil))
		return
	}
	target := h.photoBase + "/" + name + "/media?maxHeightPx=400&maxWidthPx=400&key=" + url.QueryEscape(h.photoKey)
	c.Redirect(http.StatusFound, target)
}

// Healthz reports process liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func queryFloat(c *gin.Context, key string) float64 {
	parsed, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil {
		return 0
	}
	return parsed
}

func queryInt(c *gin.Context, key string, fallback int) int {
	parsed, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return parsed
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
