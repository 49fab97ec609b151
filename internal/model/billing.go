package model

import (
	"time"

	"github.com/google/uuid"
)

type BillStatus string

const (
	BillStatusDraft  BillStatus = "draft"
	BillStatusIssued BillStatus = "issued"
	BillStatusPaid   BillStatus = "paid"
	BillStatusVoid   BillStatus = "void"
)

// Bill amounts are integer cents. InvoiceNumber is sequential per
// hospital and assigned when the bill is issued.
type Bill struct {
	Base
	HospitalID    uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	InvoiceNumber *int64     `db:"invoice_number" json:"invoice_number,omitempty"`
	Currency      string     `db:"currency" json:"currency"`
	TotalCents    int64      `db:"total_cents" json:"total_cents"`
	PaidCents     int64      `db:"paid_cents" json:"paid_cents"`
	Status        BillStatus `db:"status" json:"status"`
	IssuedAt      *time.Time `db:"issued_at" json:"issued_at,omitempty"`
	DueDate       *time.Time `db:"due_date" json:"due_date,omitempty"`

	Items []*BillItem `db:"-" json:"items,omitempty"`
}

func (b *Bill) Outstanding() int64 {
	return b.TotalCents - b.PaidCents
}

type BillItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BillID      uuid.UUID `db:"bill_id" json:"bill_id"`
	Description string    `db:"description" json:"description"`
	Quantity    int       `db:"quantity" json:"quantity"`
	UnitCents   int64     `db:"unit_cents" json:"unit_cents"`
}

func (i *BillItem) Amount() int64 {
	return int64(i.Quantity) * i.UnitCents
}

type Payment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BillID    uuid.UUID `db:"bill_id" json:"bill_id"`
	Amount    int64     `db:"amount_cents" json:"amount_cents"`
	Method    string    `db:"method" json:"method"`
	Reference string    `db:"reference" json:"reference"`
	PaidAt    time.Time `db:"paid_at" json:"paid_at"`
}

type CreateBillRequest struct {
	PatientID uuid.UUID               `json:"patient_id" binding:"required"`
	Currency  string                  `json:"currency" binding:"required,len=3"`
	DueDate   *time.Time              `json:"due_date"`
	Items     []CreateBillItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateBillItemRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	UnitCents   int64  `json:"unit_cents" binding:"required,min=0"`
}

type RecordPaymentRequest struct {
	Amount    int64  `json:"amount_cents" binding:"required,min=1"`
	Method    string `json:"method" binding:"required,oneof=cash card transfer insurance"`
	Reference string `json:"reference"`
}

type BillFilters struct {
	HospitalID uuid.UUID
	PatientID  uuid.UUID
	Status     BillStatus
}
