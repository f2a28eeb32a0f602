package invoices

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Insert inserts an invoice. The (tenant_id, source_id) unique constraint
// makes re-ingestion a no-op; the return value reports whether a row landed.
func (r *PGRepo) Insert(ctx context.Context, inv Invoice) (bool, error) {
	const query = `
INSERT INTO invoices (
	id, tenant_id, user_id, scan_job_id, source_id, vendor_name, vendor_key,
	invoice_number, invoice_date, due_date, amount, currency,
	confidence_score, extraction_method, raw_text, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (tenant_id, source_id) DO NOTHING`

	res, err := r.DB.ExecContext(ctx, query,
		inv.ID,
		inv.TenantID,
		inv.UserID,
		inv.ScanJobID,
		inv.SourceID,
		inv.VendorName,
		inv.VendorKey,
		nullString(inv.InvoiceNumber),
		nullTime(inv.InvoiceDate),
		nullTime(inv.DueDate),
		inv.Amount.String(),
		inv.Currency,
		inv.ConfidenceScore,
		string(inv.ExtractionMethod),
		inv.RawText,
		inv.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListByTenant returns all invoices for a tenant, oldest first.
func (r *PGRepo) ListByTenant(ctx context.Context, tenantID string) ([]Invoice, error) {
	const query = `
SELECT id, tenant_id, user_id, scan_job_id, source_id, vendor_name, vendor_key,
	invoice_number, invoice_date, due_date, amount, currency,
	confidence_score, extraction_method, raw_text, created_at
FROM invoices
WHERE tenant_id = $1
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		var (
			inv           Invoice
			invoiceNumber sql.NullString
			invoiceDate   sql.NullTime
			dueDate       sql.NullTime
			amount        string
			method        string
		)
		if err := rows.Scan(
			&inv.ID, &inv.TenantID, &inv.UserID, &inv.ScanJobID, &inv.SourceID,
			&inv.VendorName, &inv.VendorKey, &invoiceNumber, &invoiceDate, &dueDate,
			&amount, &inv.Currency, &inv.ConfidenceScore, &method, &inv.RawText,
			&inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		inv.InvoiceNumber = invoiceNumber.String
		if invoiceDate.Valid {
			t := invoiceDate.Time
			inv.InvoiceDate = &t
		}
		if dueDate.Valid {
			t := dueDate.Time
			inv.DueDate = &t
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, err
		}
		inv.Amount = parsed
		inv.ExtractionMethod = ExtractionMethod(method)
		out = append(out, inv)
	}
	return out, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
