package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func TestPGRepoInsertReportsNewRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	inv := Invoice{
		ID:               "inv-1",
		TenantID:         "tenant-1",
		UserID:           "user-1",
		ScanJobID:        "job-1",
		SourceID:         "msg-1:att-1",
		VendorName:       "Acme Corp",
		VendorKey:        "acmecorp",
		InvoiceNumber:    "INV-100",
		InvoiceDate:      &date,
		Amount:           decimal.RequireFromString("2499.00"),
		Currency:         "USD",
		ConfidenceScore:  0.9,
		ExtractionMethod: MethodPattern,
		RawText:          "raw",
		CreatedAt:        time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO invoices").
		WithArgs(
			inv.ID,
			inv.TenantID,
			inv.UserID,
			inv.ScanJobID,
			inv.SourceID,
			inv.VendorName,
			inv.VendorKey,
			inv.InvoiceNumber,
			date,
			nil, // due_date
			"2499.00",
			inv.Currency,
			inv.ConfidenceScore,
			"pattern",
			inv.RawText,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.Insert(context.Background(), inv)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !inserted {
		t.Fatalf("Insert reported conflict for a new row")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoInsertConflictIsNotInserted(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO invoices").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	inserted, err := repo.Insert(context.Background(), Invoice{
		ID:       "inv-1",
		TenantID: "tenant-1",
		SourceID: "msg-1",
		Amount:   decimal.RequireFromString("10.00"),
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if inserted {
		t.Fatalf("Insert reported a row for an ON CONFLICT no-op")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByTenant(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "user_id", "scan_job_id", "source_id", "vendor_name",
		"vendor_key", "invoice_number", "invoice_date", "due_date", "amount",
		"currency", "confidence_score", "extraction_method", "raw_text", "created_at",
	}).
		AddRow("inv-1", "tenant-1", "user-1", "job-1", "msg-1", "Acme Corp",
			"acmecorp", "INV-100", date, nil, "2499.00",
			"USD", 0.9, "pattern", "raw", created).
		AddRow("inv-2", "tenant-1", "user-1", "job-1", "msg-2", "Unknown Vendor",
			"unknownvendor", nil, nil, nil, "0",
			"USD", 0.0, "fallback", "raw", created)

	mock.ExpectQuery("SELECT (.+) FROM invoices").
		WithArgs("tenant-1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	got, err := repo.ListByTenant(context.Background(), "tenant-1")
	if err != nil {
		t.Fatalf("ListByTenant: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].Amount.Equal(decimal.RequireFromString("2499.00")) {
		t.Errorf("amount = %s, want 2499.00", got[0].Amount)
	}
	if got[0].InvoiceDate == nil || !got[0].InvoiceDate.Equal(date) {
		t.Errorf("invoice date = %v, want %s", got[0].InvoiceDate, date)
	}
	if got[1].InvoiceNumber != "" || got[1].InvoiceDate != nil {
		t.Errorf("null columns not mapped: %+v", got[1])
	}
	if got[1].ExtractionMethod != MethodFallback {
		t.Errorf("method = %q, want %q", got[1].ExtractionMethod, MethodFallback)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
