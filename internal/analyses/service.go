package analyses

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tariff-backend/internal/llm"
	"tariff-backend/internal/shared/metrics"
	"tariff-backend/internal/shared/telemetry"
)

// Service orchestrates analysis requests: validate, consult the cache, fall
// back to generation, persist, and return a uniform envelope.
type Service struct {
	Repo      Repo
	Cache     *CacheLookup
	Generator *Generator

	now func() time.Time
}

// NewService constructs the orchestrator.
func NewService(repo Repo, cache *CacheLookup, generator *Generator) *Service {
	return &Service{
		Repo:      repo,
		Cache:     cache,
		Generator: generator,
		now:       time.Now,
	}
}

// GenerateAnalysis serves one comparison request. Requests with empty brands
// or plans are rejected before any I/O. A fresh cached analysis is re-run
// through the lenient validator before being returned, guarding against
// schema drift between write-time and read-time.
func (s *Service) GenerateAnalysis(ctx context.Context, req Request) (Response, error) {
	if err := validateRequest(req); err != nil {
		return Response{}, err
	}

	started := s.now()
	ids := planIDs(req.Plans)

	if cached, ok := s.Cache.Check(ctx, req.Type, req.Brands, ids); ok {
		payload, issues, err := ValidateLenient(cached.Payload, req.Type)
		if err != nil {
			// Unparsable cached payload, treat as a miss and regenerate.
			telemetry.Error("analyses.cache.payload_invalid", map[string]any{
				"analysis_id": cached.ID,
				"error":       err.Error(),
			})
		} else {
			telemetry.Info("analyses.cache.hit", map[string]any{
				"analysis_id": cached.ID,
				"type":        string(req.Type),
				"issues":      len(issues),
			})
			return Response{
				Cached:     true,
				AnalysisID: cached.ID,
				CreatedAt:  cached.CreatedAt,
				Data:       payload,
				Issues:     issues,
			}, nil
		}
	}

	raw, err := s.Generator.Generate(ctx, req.Type, req.Brands, req.Plans)
	if err != nil {
		return Response{}, wrapDomain(err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Strict validation already parsed this payload; reaching here means
		// something mangled it in between.
		return Response{}, wrapDomain(fmt.Errorf("parse generated payload: %w", err))
	}

	analysis := Analysis{
		ID:        uuid.NewString(),
		Type:      req.Type,
		Brands:    req.Brands,
		PlanIDs:   ids,
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Repo.Insert(ctx, analysis); err != nil {
		// A generated-but-unpersisted result must surface distinctly: it will
		// not appear as cached later.
		return Response{}, &PersistError{Op: "insert analysis", Err: err}
	}

	metrics.ObserveAnalysisDurationMs(float64(s.now().Sub(started).Microseconds()) / 1000.0)
	telemetry.Info("analyses.generated", map[string]any{
		"analysis_id": analysis.ID,
		"type":        string(req.Type),
		"brands":      req.Brands,
		"plan_count":  len(req.Plans),
	})

	return Response{
		Cached:     false,
		AnalysisID: analysis.ID,
		CreatedAt:  analysis.CreatedAt,
		Data:       payload,
	}, nil
}

// Get returns a persisted analysis by ID.
func (s *Service) Get(ctx context.Context, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, &InvalidRequestError{Reason: "analysis id is required"}
	}
	return s.Repo.GetByID(ctx, analysisID)
}

func validateRequest(req Request) error {
	if !req.Type.Valid() {
		return &InvalidRequestError{Reason: fmt.Sprintf("unknown comparison type %q", req.Type)}
	}
	if len(req.Brands) == 0 {
		return &InvalidRequestError{Reason: "brands must be non-empty"}
	}
	if req.Type == CompareBrandPair && len(req.Brands) != 2 {
		return &InvalidRequestError{Reason: "brand_pair comparisons need exactly two brands"}
	}
	if len(req.Plans) == 0 {
		return &InvalidRequestError{Reason: "plans must be non-empty"}
	}
	return nil
}

// wrapDomain ensures errors leaving the orchestrator belong to the analysis
// error taxonomy.
func wrapDomain(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return &GenerationError{Attempts: 0, Class: llm.ErrorGeneric, Err: err}
}
