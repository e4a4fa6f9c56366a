package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"TripBroker/internal/engine"
	"TripBroker/internal/model"
)

// StatusSource reads the agent state.
type StatusSource interface {
	Snapshot(ctx context.Context, history bool) (engine.Status, error)
}

// Handler serves the read-only status API.
type Handler struct {
	src     StatusSource
	timeout time.Duration
}

// NewHandler creates a Handler reading from src.
func NewHandler(src StatusSource) *Handler {
	return &Handler{src: src, timeout: 2 * time.Second}
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status handles GET /api/v1/status
func (h *Handler) Status(c *gin.Context) {
	s, ok := h.snapshot(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s)
}

// Auction handles GET /api/v1/auctions/:id
func (h *Handler) Auction(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("id"))
	if err != nil || !model.AuctionID(n).Valid() {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_AUCTION", "auction id must be 0-27"))
		return
	}
	s, ok := h.snapshot(c, true)
	if !ok {
		return
	}
	for _, a := range s.Auctions {
		if a.ID == model.AuctionID(n) {
			c.JSON(http.StatusOK, a)
			return
		}
	}
	c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "auction not tracked"))
}

// Report handles GET /api/v1/report
func (h *Handler) Report(c *gin.Context) {
	s, ok := h.snapshot(c, false)
	if !ok {
		return
	}
	if s.Report == nil {
		c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "no finished game"))
		return
	}
	c.JSON(http.StatusOK, s.Report)
}

func (h *Handler) snapshot(c *gin.Context, history bool) (engine.Status, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	s, err := h.src.Snapshot(ctx, history)
	switch {
	case err == nil:
		return s, true
	case errors.Is(err, engine.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, errorBody("AGENT_STOPPED", err.Error()))
	default:
		c.JSON(http.StatusGatewayTimeout, errorBody("SNAPSHOT_FAILED", err.Error()))
	}
	return engine.Status{}, false
}
