package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Insert persists a new analysis row.
func (r *PGRepo) Insert(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (id, comparison_type, brands, brands_key, plan_ids, plan_ids_key, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	brandsPayload, err := json.Marshal(analysis.Brands)
	if err != nil {
		return err
	}
	idsPayload, err := json.Marshal(analysis.PlanIDs)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(analysis.Payload)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		string(analysis.Type),
		brandsPayload,
		brandSetKey(analysis.Brands),
		idsPayload,
		planIDSetKey(analysis.PlanIDs),
		payload,
		analysis.CreatedAt,
	)
	return err
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	const query = `
SELECT id, comparison_type, brands, plan_ids, payload, created_at
FROM analyses
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, analysisID))
}

// FindCached returns the newest fresh analysis matching the comparison
// identity exactly.
func (r *PGRepo) FindCached(ctx context.Context, typ ComparisonType, brandsKey, planIDsKey string, since time.Time) (Analysis, error) {
	const query = `
SELECT id, comparison_type, brands, plan_ids, payload, created_at
FROM analyses
WHERE comparison_type = $1 AND brands_key = $2 AND plan_ids_key = $3 AND created_at >= $4
ORDER BY created_at DESC
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, string(typ), brandsKey, planIDsKey, since))
}

func (r *PGRepo) scanOne(row *sql.Row) (Analysis, error) {
	var a Analysis
	var typ string
	var brandsRaw, idsRaw, payloadRaw []byte
	err := row.Scan(&a.ID, &typ, &brandsRaw, &idsRaw, &payloadRaw, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	a.Type = ComparisonType(typ)
	if err := json.Unmarshal(brandsRaw, &a.Brands); err != nil {
		return Analysis{}, err
	}
	if err := json.Unmarshal(idsRaw, &a.PlanIDs); err != nil {
		return Analysis{}, err
	}
	if err := json.Unmarshal(payloadRaw, &a.Payload); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

var _ Repo = (*PGRepo)(nil)
