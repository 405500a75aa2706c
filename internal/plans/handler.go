package plans

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tariff-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the plans repository.
type Handler struct {
	Repo Repo
	// DefaultLookback bounds the listing window when the caller does not
	// pass one.
	DefaultLookback time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo, defaultLookback time.Duration) *Handler {
	return &Handler{Repo: repo, DefaultLookback: defaultLookback}
}

// RegisterRoutes attaches plan routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/plans", h.listPlans)
}

func (h *Handler) listPlans(c *gin.Context) {
	lookback := h.DefaultLookback
	if v := c.Query("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			respond.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "days must be a positive integer", nil)
			return
		}
		lookback = time.Duration(days) * 24 * time.Hour
	}

	rows, err := h.Repo.List(c.Request.Context(), time.Now().Add(-lookback), c.Query("brand"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list plans", nil)
		return
	}

	respond.OK(c, gin.H{
		"count": len(rows),
		"plans": rows,
	})
}
