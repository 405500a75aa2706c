package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoInsertWritesSetKeys(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	analysis := Analysis{
		ID:        "analysis-1",
		Type:      CompareBrandVsMarket,
		Brands:    []string{"Voxi", "giffgaff"},
		PlanIDs:   []int64{2, 1},
		Payload:   map[string]any{"currency": "GBP"},
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs(
			analysis.ID,
			string(CompareBrandVsMarket),
			sqlmock.AnyArg(), // brands json
			"giffgaff|voxi",
			sqlmock.AnyArg(), // plan ids json
			"1,2",
			sqlmock.AnyArg(), // payload json
			analysis.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Insert(context.Background(), analysis); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoFindCachedDecodesRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	createdAt := time.Now().UTC()
	since := createdAt.Add(-24 * time.Hour)

	payload, _ := json.Marshal(map[string]any{"currency": "GBP"})
	rows := sqlmock.NewRows([]string{"id", "comparison_type", "brands", "plan_ids", "payload", "created_at"}).
		AddRow("analysis-1", "brand_vs_market", `["giffgaff","voxi"]`, `[1,2]`, payload, createdAt)

	mock.ExpectQuery("SELECT id, comparison_type").
		WithArgs("brand_vs_market", "giffgaff|voxi", "1,2", since).
		WillReturnRows(rows)

	got, err := repo.FindCached(context.Background(), CompareBrandVsMarket, "giffgaff|voxi", "1,2", since)
	if err != nil {
		t.Fatalf("FindCached: %v", err)
	}
	if got.ID != "analysis-1" {
		t.Errorf("ID = %q", got.ID)
	}
	if len(got.Brands) != 2 || len(got.PlanIDs) != 2 {
		t.Errorf("row not decoded: %+v", got)
	}
	if got.Payload["currency"] != "GBP" {
		t.Errorf("payload not decoded: %v", got.Payload)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT id, comparison_type").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "comparison_type", "brands", "plan_ids", "payload", "created_at"}))

	_, err = repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
