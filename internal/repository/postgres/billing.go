package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
)

type billRepository struct {
	db *sqlx.DB
}

func NewBillRepository(db *sqlx.DB) repository.BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *model.Bill, items []*model.BillItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	bill.CreatedAt = time.Now()
	bill.UpdatedAt = time.Now()

	query := `
		INSERT INTO bills (id, hospital_id, patient_id, invoice_number, currency, total_cents, paid_cents, status, issued_at, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := tx.ExecContext(ctx, query,
		bill.ID,
		bill.HospitalID,
		bill.PatientID,
		bill.InvoiceNumber,
		bill.Currency,
		bill.TotalCents,
		bill.PaidCents,
		bill.Status,
		bill.IssuedAt,
		bill.DueDate,
		bill.CreatedAt,
		bill.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}

	itemQuery := `
		INSERT INTO bill_items (id, bill_id, description, quantity, unit_cents)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, itemQuery,
			item.ID, item.BillID, item.Description, item.Quantity, item.UnitCents,
		); err != nil {
			return fmt.Errorf("failed to create bill item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *billRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	query := `SELECT * FROM bills WHERE id = $1 AND deleted_at IS NULL`
	var bill model.Bill
	if err := r.db.GetContext(ctx, &bill, query, id); err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	itemQuery := `SELECT * FROM bill_items WHERE bill_id = $1`
	if err := r.db.SelectContext(ctx, &bill.Items, itemQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get bill items: %w", err)
	}
	return &bill, nil
}

func (r *billRepository) Update(ctx context.Context, bill *model.Bill) error {
	query := `
		UPDATE bills
		SET invoice_number = $1, total_cents = $2, paid_cents = $3, status = $4, issued_at = $5, due_date = $6, updated_at = $7
		WHERE id = $8
	`
	bill.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		bill.InvoiceNumber,
		bill.TotalCents,
		bill.PaidCents,
		bill.Status,
		bill.IssuedAt,
		bill.DueDate,
		bill.UpdatedAt,
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return nil
}

func (r *billRepository) List(ctx context.Context, filters *model.BillFilters) ([]*model.Bill, error) {
	query := `SELECT * FROM bills WHERE hospital_id = $1 AND deleted_at IS NULL`
	args := []interface{}{filters.HospitalID}

	if filters.PatientID != uuid.Nil {
		args = append(args, filters.PatientID)
		query += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	var bills []*model.Bill
	err := r.db.SelectContext(ctx, &bills, query, args...)
	return bills, err
}

// NextInvoiceNumber reserves the next per-hospital sequence value. The
// upsert keeps one counter row per hospital.
func (r *billRepository) NextInvoiceNumber(ctx context.Context, hospitalID uuid.UUID) (int64, error) {
	query := `
		INSERT INTO invoice_counters (hospital_id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (hospital_id)
		DO UPDATE SET last_number = invoice_counters.last_number + 1
		RETURNING last_number
	`
	var n int64
	if err := r.db.GetContext(ctx, &n, query, hospitalID); err != nil {
		return 0, fmt.Errorf("failed to get next invoice number: %w", err)
	}
	return n, nil
}

func (r *billRepository) RecordPayment(ctx context.Context, payment *model.Payment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO payments (id, bill_id, amount_cents, method, reference, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, query,
		payment.ID, payment.BillID, payment.Amount, payment.Method, payment.Reference, payment.PaidAt,
	); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	update := `
		UPDATE bills
		SET paid_cents = paid_cents + $1,
		    status = CASE WHEN paid_cents + $1 >= total_cents THEN 'paid' ELSE status END,
		    updated_at = $2
		WHERE id = $3
	`
	if _, err := tx.ExecContext(ctx, update, payment.Amount, time.Now(), payment.BillID); err != nil {
		return fmt.Errorf("failed to apply payment: %w", err)
	}

	return tx.Commit()
}

func (r *billRepository) ListPayments(ctx context.Context, billID uuid.UUID) ([]*model.Payment, error) {
	query := `SELECT * FROM payments WHERE bill_id = $1 ORDER BY paid_at`
	var payments []*model.Payment
	err := r.db.SelectContext(ctx, &payments, query, billID)
	return payments, err
}

func (r *billRepository) OutstandingForPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(total_cents - paid_cents), 0)
		FROM bills
		WHERE patient_id = $1 AND status = 'issued' AND deleted_at IS NULL
	`
	var outstanding int64
	if err := r.db.GetContext(ctx, &outstanding, query, patientID); err != nil {
		return 0, fmt.Errorf("failed to get outstanding balance: %w", err)
	}
	return outstanding, nil
}
