package findings

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PGRepo implements Repo using Postgres. Invoice ids and detail fields are
// stored as JSONB.
type PGRepo struct {
	DB *sql.DB
}

// Insert inserts the given findings.
func (r *PGRepo) Insert(ctx context.Context, fs []Finding) error {
	const query = `
INSERT INTO findings (
	id, tenant_id, type, title, description, amount, confidence_score,
	invoice_ids, details, dedupe_key, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for _, f := range fs {
		ids, err := json.Marshal(f.InvoiceIDs)
		if err != nil {
			return err
		}
		details, err := json.Marshal(f.Details)
		if err != nil {
			return err
		}
		if _, err := r.DB.ExecContext(ctx, query,
			f.ID,
			f.TenantID,
			string(f.Type),
			f.Title,
			f.Description,
			f.Amount.String(),
			f.ConfidenceScore,
			ids,
			details,
			f.DedupeKey(),
			f.CreatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

// ListByTenant returns all findings for a tenant, oldest first.
func (r *PGRepo) ListByTenant(ctx context.Context, tenantID string) ([]Finding, error) {
	const query = `
SELECT id, tenant_id, type, title, description, amount, confidence_score,
	invoice_ids, details, created_at
FROM findings
WHERE tenant_id = $1
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Finding
	for rows.Next() {
		var (
			f       Finding
			typ     string
			amount  string
			ids     []byte
			details []byte
		)
		if err := rows.Scan(
			&f.ID, &f.TenantID, &typ, &f.Title, &f.Description, &amount,
			&f.ConfidenceScore, &ids, &details, &f.CreatedAt,
		); err != nil {
			return nil, err
		}
		f.Type = Type(typ)
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, err
		}
		f.Amount = parsed
		if len(ids) > 0 {
			if err := json.Unmarshal(ids, &f.InvoiceIDs); err != nil {
				return nil, err
			}
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &f.Details); err != nil {
				return nil, err
			}
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
