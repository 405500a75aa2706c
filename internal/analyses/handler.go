package analyses

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tariff-backend/internal/plans"
	"tariff-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc      *Service
	PlanRepo plans.Repo
	// Lookback bounds how far back plan rows are pulled when resolving a
	// comparison request.
	Lookback time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, planRepo plans.Repo, lookback time.Duration) *Handler {
	return &Handler{Svc: svc, PlanRepo: planRepo, Lookback: lookback}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.createAnalysis)
	rg.GET("/analyses/:id", h.getAnalysis)
}

type createAnalysisRequest struct {
	Type   string   `json:"type"`
	Brands []string `json:"brands"`
}

func (h *Handler) createAnalysis(c *gin.Context) {
	var body createAnalysisRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "request body must be valid JSON", nil)
		return
	}

	rows, err := h.resolvePlans(c, body.Brands)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to load plan data", nil)
		return
	}

	resp, err := h.Svc.GenerateAnalysis(c.Request.Context(), Request{
		Type:   ComparisonType(body.Type),
		Brands: body.Brands,
		Plans:  rows,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusOK
	if !resp.Cached {
		status = http.StatusCreated
	}
	respond.JSON(c, status, resp)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysis, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "NOT_FOUND", "analysis not found", nil)
		default:
			h.respondError(c, err)
		}
		return
	}
	respond.OK(c, analysis)
}

// resolvePlans pulls the persisted plan rows belonging to the requested
// brands within the lookback window.
func (h *Handler) resolvePlans(c *gin.Context, brands []string) ([]plans.PlanRow, error) {
	lookback := h.Lookback
	if v := c.Query("lookback_days"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			lookback = time.Duration(days) * 24 * time.Hour
		}
	}
	since := time.Now().Add(-lookback)

	all, err := h.PlanRepo.List(c.Request.Context(), since, "")
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(brands))
	for _, b := range brands {
		wanted[strings.ToLower(strings.TrimSpace(b))] = struct{}{}
	}

	rows := make([]plans.PlanRow, 0, len(all))
	for _, row := range all {
		if _, ok := wanted[strings.ToLower(row.Source)]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var invalidReq *InvalidRequestError
	var genErr *GenerationError
	var persistErr *PersistError

	switch {
	case errors.As(err, &invalidReq):
		respond.Error(c, http.StatusBadRequest, ErrorCodeInvalidRequest, invalidReq.Reason, nil)
	case errors.As(err, &genErr):
		code := genErr.Code()
		message := genErr.Class.UserMessage()
		if code == ErrorCodeValidationExhausted {
			message = "generation repeatedly produced output that failed validation"
		}
		respond.Error(c, http.StatusBadGateway, code, message, gin.H{
			"attempts": genErr.Attempts,
		})
	case errors.As(err, &persistErr):
		respond.Error(c, http.StatusInternalServerError, ErrorCodePersistenceFailed, "analysis was generated but could not be stored", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "unexpected error", nil)
	}
}
