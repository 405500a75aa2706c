package plans

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const insertPlanQuery = `
INSERT INTO plans (source, plan_key, data_allowance, price, contract_term, norm_failed, raw, scraped_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
RETURNING id, scraped_at`

// Insert persists one normalized record and returns the stored row.
func (r *PGRepo) Insert(ctx context.Context, rec NormalizedPlanRecord) (PlanRow, error) {
	rawPayload, err := marshalRaw(rec.Raw)
	if err != nil {
		return PlanRow{}, err
	}

	row := PlanRow{NormalizedPlanRecord: rec}
	err = r.DB.QueryRowContext(ctx, insertPlanQuery,
		rec.Source,
		rec.PlanKey,
		rec.DataAllowance,
		rec.Price,
		rec.ContractTerm,
		rec.NormFailed,
		rawPayload,
	).Scan(&row.ID, &row.ScrapedAt)
	if err != nil {
		return PlanRow{}, err
	}
	return row, nil
}

// InsertMany persists all records in one transaction, all-or-nothing.
func (r *PGRepo) InsertMany(ctx context.Context, recs []NormalizedPlanRecord) ([]PlanRow, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	out := make([]PlanRow, 0, len(recs))
	for _, rec := range recs {
		rawPayload, err := marshalRaw(rec.Raw)
		if err != nil {
			return nil, err
		}
		row := PlanRow{NormalizedPlanRecord: rec}
		err = tx.QueryRowContext(ctx, insertPlanQuery,
			rec.Source,
			rec.PlanKey,
			rec.DataAllowance,
			rec.Price,
			rec.ContractTerm,
			rec.NormFailed,
			rawPayload,
		).Scan(&row.ID, &row.ScrapedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns rows scraped at or after since, newest first.
func (r *PGRepo) List(ctx context.Context, since time.Time, brand string) ([]PlanRow, error) {
	const query = `
SELECT id, source, plan_key, data_allowance, price, contract_term, norm_failed, raw, scraped_at
FROM plans
WHERE scraped_at >= $1 AND ($2 = '' OR lower(source) = lower($2))
ORDER BY scraped_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctx, query, since, brand)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlanRow
	for rows.Next() {
		var row PlanRow
		var rawPayload sql.NullString
		if err := rows.Scan(
			&row.ID,
			&row.Source,
			&row.PlanKey,
			&row.DataAllowance,
			&row.Price,
			&row.ContractTerm,
			&row.NormFailed,
			&rawPayload,
			&row.ScrapedAt,
		); err != nil {
			return nil, err
		}
		if rawPayload.Valid {
			if err := json.Unmarshal([]byte(rawPayload.String), &row.Raw); err != nil {
				// keep nil raw on parse errors
				row.Raw = nil
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)

func marshalRaw(raw RawPlanRecord) ([]byte, error) {
	if raw == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(raw)
}
