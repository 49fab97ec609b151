package billing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
	"github.com/caretide/hospital-api/pkg/errors"
)

type BillingService interface {
	CreateBill(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreateBillRequest) (*model.Bill, error)
	GetBill(ctx context.Context, hospitalID, id uuid.UUID) (*model.Bill, error)
	IssueBill(ctx context.Context, hospitalID, actorID, id uuid.UUID) (*model.Bill, error)
	VoidBill(ctx context.Context, hospitalID, actorID, id uuid.UUID) (*model.Bill, error)
	RecordPayment(ctx context.Context, hospitalID, actorID, billID uuid.UUID, req *model.RecordPaymentRequest) (*model.Bill, error)
	ListBills(ctx context.Context, filters *model.BillFilters) ([]*model.Bill, error)
	OutstandingForPatient(ctx context.Context, hospitalID, patientID uuid.UUID) (int64, error)
}

type Service struct {
	repo        repository.BillRepository
	patientRepo repository.PatientRepository
	outboxRepo  repository.OutboxRepository
	auditor     *audit.Service
}

func NewService(repo repository.BillRepository, patientRepo repository.PatientRepository, outboxRepo repository.OutboxRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		outboxRepo:  outboxRepo,
		auditor:     auditor,
	}
}

// CreateBill stores a draft. Totals are computed server-side from the
// line items; client-supplied totals are never trusted.
func (s *Service) CreateBill(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreateBillRequest) (*model.Bill, error) {
	patient, err := s.patientRepo.Get(ctx, req.PatientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if patient == nil || patient.HospitalID != hospitalID {
		return nil, errors.NotFound("patient", nil)
	}

	now := time.Now()
	bill := &model.Bill{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HospitalID: hospitalID,
		PatientID:  req.PatientID,
		Currency:   req.Currency,
		Status:     model.BillStatusDraft,
		DueDate:    req.DueDate,
	}

	items := make([]*model.BillItem, 0, len(req.Items))
	for _, ir := range req.Items {
		item := &model.BillItem{
			ID:          uuid.New(),
			BillID:      bill.ID,
			Description: ir.Description,
			Quantity:    ir.Quantity,
			UnitCents:   ir.UnitCents,
		}
		bill.TotalCents += item.Amount()
		items = append(items, item)
	}
	bill.Items = items

	if err := s.repo.Create(ctx, bill, items); err != nil {
		return nil, errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionCreate, model.AuditEntityBill, bill.ID, &audit.LogOptions{
		Changes: bill,
	})
	return bill, nil
}

func (s *Service) GetBill(ctx context.Context, hospitalID, id uuid.UUID) (*model.Bill, error) {
	bill, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if bill == nil || bill.HospitalID != hospitalID {
		return nil, errors.NotFound("bill", nil)
	}
	return bill, nil
}

// IssueBill moves a draft to issued and assigns the next sequential
// invoice number for the hospital.
func (s *Service) IssueBill(ctx context.Context, hospitalID, actorID, id uuid.UUID) (*model.Bill, error) {
	bill, err := s.GetBill(ctx, hospitalID, id)
	if err != nil {
		return nil, err
	}
	if bill.Status != model.BillStatusDraft {
		return nil, errors.Conflict("only draft bills can be issued", nil)
	}

	number, err := s.repo.NextInvoiceNumber(ctx, hospitalID)
	if err != nil {
		return nil, errors.Internal(err)
	}

	now := time.Now()
	bill.InvoiceNumber = &number
	bill.Status = model.BillStatusIssued
	bill.IssuedAt = &now
	bill.UpdatedAt = now

	if err := s.repo.Update(ctx, bill); err != nil {
		return nil, errors.Internal(err)
	}

	s.publishIssued(ctx, bill)
	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionUpdate, model.AuditEntityBill, bill.ID, &audit.LogOptions{
		Metadata: map[string]interface{}{"event": "issued", "invoice_number": number},
	})
	return bill, nil
}

func (s *Service) VoidBill(ctx context.Context, hospitalID, actorID, id uuid.UUID) (*model.Bill, error) {
	bill, err := s.GetBill(ctx, hospitalID, id)
	if err != nil {
		return nil, err
	}
	if bill.Status == model.BillStatusPaid {
		return nil, errors.Conflict("paid bills cannot be voided", nil)
	}
	if bill.PaidCents > 0 {
		return nil, errors.Conflict("bills with payments cannot be voided", nil)
	}

	bill.Status = model.BillStatusVoid
	bill.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, bill); err != nil {
		return nil, errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionUpdate, model.AuditEntityBill, bill.ID, &audit.LogOptions{
		Metadata: map[string]string{"event": "voided"},
	})
	return bill, nil
}

// RecordPayment applies a payment against an issued bill. Overpayment
// is rejected rather than credited.
func (s *Service) RecordPayment(ctx context.Context, hospitalID, actorID, billID uuid.UUID, req *model.RecordPaymentRequest) (*model.Bill, error) {
	bill, err := s.GetBill(ctx, hospitalID, billID)
	if err != nil {
		return nil, err
	}
	if bill.Status != model.BillStatusIssued {
		return nil, errors.Conflict("payments are only accepted on issued bills", nil)
	}
	if req.Amount > bill.Outstanding() {
		return nil, errors.BadRequest("payment exceeds outstanding balance", nil)
	}

	payment := &model.Payment{
		ID:        uuid.New(),
		BillID:    billID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		PaidAt:    time.Now(),
	}

	if err := s.repo.RecordPayment(ctx, payment); err != nil {
		return nil, errors.Internal(err)
	}

	bill, err = s.GetBill(ctx, hospitalID, billID)
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionUpdate, model.AuditEntityBill, billID, &audit.LogOptions{
		Metadata: map[string]interface{}{"event": "payment", "amount_cents": req.Amount, "method": req.Method},
	})
	return bill, nil
}

func (s *Service) ListBills(ctx context.Context, filters *model.BillFilters) ([]*model.Bill, error) {
	bills, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return bills, nil
}

func (s *Service) OutstandingForPatient(ctx context.Context, hospitalID, patientID uuid.UUID) (int64, error) {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return 0, errors.Internal(err)
	}
	if patient == nil || patient.HospitalID != hospitalID {
		return 0, errors.NotFound("patient", nil)
	}

	total, err := s.repo.OutstandingForPatient(ctx, patientID)
	if err != nil {
		return 0, errors.Internal(err)
	}
	return total, nil
}

func (s *Service) publishIssued(ctx context.Context, bill *model.Bill) {
	enriched := struct {
		*model.Bill
		PatientEmail string `json:"patient_email,omitempty"`
	}{Bill: bill}

	if patient, err := s.patientRepo.Get(ctx, bill.PatientID); err == nil && patient != nil {
		enriched.PatientEmail = patient.Email
	}

	payload, err := json.Marshal(enriched)
	if err != nil {
		return
	}
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: model.EventBillIssued,
		Payload:   payload,
		Status:    string(model.OutboxStatusPending),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		log.Error().Err(err).Msg("failed to enqueue bill issued event")
	}
}
