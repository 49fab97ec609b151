package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/service/audit"
)

type fakeBillRepo struct {
	bills    map[uuid.UUID]*model.Bill
	payments map[uuid.UUID][]*model.Payment
	counters map[uuid.UUID]int64
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{
		bills:    make(map[uuid.UUID]*model.Bill),
		payments: make(map[uuid.UUID][]*model.Payment),
		counters: make(map[uuid.UUID]int64),
	}
}

func (f *fakeBillRepo) Create(_ context.Context, bill *model.Bill, items []*model.BillItem) error {
	clone := *bill
	clone.Items = items
	f.bills[bill.ID] = &clone
	return nil
}

func (f *fakeBillRepo) Get(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	b, ok := f.bills[id]
	if !ok {
		return nil, nil
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBillRepo) Update(_ context.Context, bill *model.Bill) error {
	clone := *bill
	f.bills[bill.ID] = &clone
	return nil
}

func (f *fakeBillRepo) List(_ context.Context, _ *model.BillFilters) ([]*model.Bill, error) {
	return nil, nil
}

func (f *fakeBillRepo) NextInvoiceNumber(_ context.Context, hospitalID uuid.UUID) (int64, error) {
	f.counters[hospitalID]++
	return f.counters[hospitalID], nil
}

func (f *fakeBillRepo) RecordPayment(_ context.Context, p *model.Payment) error {
	f.payments[p.BillID] = append(f.payments[p.BillID], p)
	bill := f.bills[p.BillID]
	bill.PaidCents += p.Amount
	if bill.PaidCents >= bill.TotalCents {
		bill.Status = model.BillStatusPaid
	}
	return nil
}

func (f *fakeBillRepo) ListPayments(_ context.Context, billID uuid.UUID) ([]*model.Payment, error) {
	return f.payments[billID], nil
}

func (f *fakeBillRepo) OutstandingForPatient(_ context.Context, patientID uuid.UUID) (int64, error) {
	var total int64
	for _, b := range f.bills {
		if b.PatientID == patientID && b.Status == model.BillStatusIssued {
			total += b.Outstanding()
		}
	}
	return total, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatientRepo) Create(context.Context, *model.Patient) error { return nil }
func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	return f.patients[id], nil
}
func (f *fakePatientRepo) GetByMRN(context.Context, uuid.UUID, string) (*model.Patient, error) {
	return nil, nil
}
func (f *fakePatientRepo) Update(context.Context, *model.Patient) error { return nil }
func (f *fakePatientRepo) Delete(context.Context, uuid.UUID) error      { return nil }
func (f *fakePatientRepo) List(context.Context, *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}
func (f *fakePatientRepo) MRNExists(context.Context, string) (bool, error) { return false, nil }
func (f *fakePatientRepo) SetMRN(context.Context, uuid.UUID, string) (bool, error) {
	return false, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	f.events = append(f.events, e)
	return nil
}
func (f *fakeOutboxRepo) GetPendingEventsWithLock(context.Context, int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepo) UpdateStatus(context.Context, uuid.UUID, model.OutboxStatus, *string) error {
	return nil
}
func (f *fakeOutboxRepo) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeAuditRepo struct{}

func (f *fakeAuditRepo) Create(context.Context, *model.AuditLog) error { return nil }
func (f *fakeAuditRepo) List(context.Context, uuid.UUID, int, int) ([]*model.AuditLog, error) {
	return nil, nil
}
func (f *fakeAuditRepo) DeleteBefore(context.Context, time.Time) (int64, error) { return 0, nil }

func setup() (*Service, *fakeBillRepo, *fakeOutboxRepo, uuid.UUID, uuid.UUID) {
	hospitalID := uuid.New()
	patientID := uuid.New()
	billRepo := newFakeBillRepo()
	patientRepo := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{
		patientID: {Base: model.Base{ID: patientID}, HospitalID: hospitalID},
	}}
	outbox := &fakeOutboxRepo{}
	svc := NewService(billRepo, patientRepo, outbox, audit.NewService(&fakeAuditRepo{}))
	return svc, billRepo, outbox, hospitalID, patientID
}

func draftRequest(patientID uuid.UUID) *model.CreateBillRequest {
	return &model.CreateBillRequest{
		PatientID: patientID,
		Currency:  "NGN",
		Items: []model.CreateBillItemRequest{
			{Description: "Consultation", Quantity: 1, UnitCents: 500_00},
			{Description: "Lab test", Quantity: 2, UnitCents: 150_00},
		},
	}
}

func TestCreateBillComputesTotalFromItems(t *testing.T) {
	svc, _, _, hospitalID, patientID := setup()

	bill, err := svc.CreateBill(context.Background(), hospitalID, uuid.New(), draftRequest(patientID))
	require.NoError(t, err)

	assert.Equal(t, int64(800_00), bill.TotalCents)
	assert.Equal(t, model.BillStatusDraft, bill.Status)
	assert.Nil(t, bill.InvoiceNumber)
}

func TestIssueBillAssignsSequentialInvoiceNumbers(t *testing.T) {
	svc, _, outbox, hospitalID, patientID := setup()
	actorID := uuid.New()

	first, err := svc.CreateBill(context.Background(), hospitalID, actorID, draftRequest(patientID))
	require.NoError(t, err)
	second, err := svc.CreateBill(context.Background(), hospitalID, actorID, draftRequest(patientID))
	require.NoError(t, err)

	issued1, err := svc.IssueBill(context.Background(), hospitalID, actorID, first.ID)
	require.NoError(t, err)
	issued2, err := svc.IssueBill(context.Background(), hospitalID, actorID, second.ID)
	require.NoError(t, err)

	require.NotNil(t, issued1.InvoiceNumber)
	require.NotNil(t, issued2.InvoiceNumber)
	assert.Equal(t, int64(1), *issued1.InvoiceNumber)
	assert.Equal(t, int64(2), *issued2.InvoiceNumber)
	assert.Equal(t, model.BillStatusIssued, issued1.Status)

	require.Len(t, outbox.events, 2)
	assert.Equal(t, model.EventBillIssued, outbox.events[0].EventType)
}

func TestIssueBillRejectsNonDraft(t *testing.T) {
	svc, _, _, hospitalID, patientID := setup()
	actorID := uuid.New()

	bill, err := svc.CreateBill(context.Background(), hospitalID, actorID, draftRequest(patientID))
	require.NoError(t, err)

	_, err = svc.IssueBill(context.Background(), hospitalID, actorID, bill.ID)
	require.NoError(t, err)
	_, err = svc.IssueBill(context.Background(), hospitalID, actorID, bill.ID)
	assert.Error(t, err)
}

func TestRecordPayment(t *testing.T) {
	svc, _, _, hospitalID, patientID := setup()
	actorID := uuid.New()

	bill, err := svc.CreateBill(context.Background(), hospitalID, actorID, draftRequest(patientID))
	require.NoError(t, err)
	_, err = svc.IssueBill(context.Background(), hospitalID, actorID, bill.ID)
	require.NoError(t, err)

	partial, err := svc.RecordPayment(context.Background(), hospitalID, actorID, bill.ID, &model.RecordPaymentRequest{
		Amount: 300_00, Method: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500_00), partial.Outstanding())
	assert.Equal(t, model.BillStatusIssued, partial.Status)

	paid, err := svc.RecordPayment(context.Background(), hospitalID, actorID, bill.ID, &model.RecordPaymentRequest{
		Amount: 500_00, Method: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), paid.Outstanding())
	assert.Equal(t, model.BillStatusPaid, paid.Status)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	svc, _, _, hospitalID, patientID := setup()
	actorID := uuid.New()

	bill, err := svc.CreateBill(context.Background(), hospitalID, actorID, draftRequest(patientID))
	require.NoError(t, err)
	_, err = svc.IssueBill(context.Background(), hospitalID, actorID, bill.ID)
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), hospitalID, actorID, bill.ID, &model.RecordPaymentRequest{
		Amount: 900_00, Method: "cash",
	})
	assert.Error(t, err)
}

func TestRecordPaymentRequiresIssuedBill(t *testing.T) {
	svc, _, _, hospitalID, patientID := setup()
	actorID := uuid.New()

	bill, err := svc.CreateBill(context.Background(), hospitalID, actorID, draftRequest(patientID))
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), hospitalID, actorID, bill.ID, &model.RecordPaymentRequest{
		Amount: 100_00, Method: "cash",
	})
	assert.Error(t, err)
}

func TestVoidBillWithPaymentsRejected(t *testing.T) {
	svc, _, _, hospitalID, patientID := setup()
	actorID := uuid.New()

	bill, err := svc.CreateBill(context.Background(), hospitalID, actorID, draftRequest(patientID))
	require.NoError(t, err)
	_, err = svc.IssueBill(context.Background(), hospitalID, actorID, bill.ID)
	require.NoError(t, err)
	_, err = svc.RecordPayment(context.Background(), hospitalID, actorID, bill.ID, &model.RecordPaymentRequest{
		Amount: 100_00, Method: "cash",
	})
	require.NoError(t, err)

	_, err = svc.VoidBill(context.Background(), hospitalID, actorID, bill.ID)
	assert.Error(t, err)
}
