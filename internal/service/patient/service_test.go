package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/mrn"
	"github.com/caretide/hospital-api/internal/service/audit"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
	mrns     map[string]uuid.UUID
	updates  []*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{
		patients: make(map[uuid.UUID]*model.Patient),
		mrns:     make(map[string]uuid.UUID),
	}
}

func (f *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	clone := *p
	f.patients[p.ID] = &clone
	return nil
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (f *fakePatientRepo) GetByMRN(_ context.Context, hospitalID uuid.UUID, mrnValue string) (*model.Patient, error) {
	id, ok := f.mrns[mrnValue]
	if !ok {
		return nil, nil
	}
	p := f.patients[id]
	if p.HospitalID != hospitalID {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

// Update mirrors the SQL implementation: the mrn column is never in the
// update list.
func (f *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	existing := f.patients[p.ID]
	clone := *p
	clone.MRN = existing.MRN
	f.patients[p.ID] = &clone
	f.updates = append(f.updates, &clone)
	return nil
}

func (f *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.patients, id)
	return nil
}

func (f *fakePatientRepo) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, error) {
	out := make([]*model.Patient, 0, len(f.patients))
	for _, p := range f.patients {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePatientRepo) MRNExists(_ context.Context, mrnValue string) (bool, error) {
	_, ok := f.mrns[mrnValue]
	return ok, nil
}

func (f *fakePatientRepo) SetMRN(_ context.Context, id uuid.UUID, mrnValue string) (bool, error) {
	p, ok := f.patients[id]
	if !ok || p.MRN != nil {
		return false, nil
	}
	p.MRN = &mrnValue
	f.mrns[mrnValue] = id
	return true, nil
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

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (f *fakeAuditRepo) Create(_ context.Context, l *model.AuditLog) error {
	f.entries = append(f.entries, l)
	return nil
}

func (f *fakeAuditRepo) List(context.Context, uuid.UUID, int, int) ([]*model.AuditLog, error) {
	return nil, nil
}

func (f *fakeAuditRepo) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func newTestService() (*Service, *fakePatientRepo, *fakeOutboxRepo, *fakeAuditRepo) {
	repo := newFakePatientRepo()
	outbox := &fakeOutboxRepo{}
	auditRepo := &fakeAuditRepo{}
	gen := mrn.NewGenerator(repo, 0, nil)
	svc := NewService(repo, outbox, gen, audit.NewService(auditRepo))
	return svc, repo, outbox, auditRepo
}

func createRequest() *model.CreatePatientRequest {
	return &model.CreatePatientRequest{
		FirstName:   "Amina",
		LastName:    "Okafor",
		DateOfBirth: time.Date(1988, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:      "F",
		Phone:       "+2348012345678",
	}
}

func TestCreatePatientAssignsMRN(t *testing.T) {
	svc, repo, outbox, auditRepo := newTestService()
	hospitalID := uuid.New()

	p, err := svc.CreatePatient(context.Background(), hospitalID, uuid.New(), createRequest())
	require.NoError(t, err)

	require.NotNil(t, p.MRN)
	assert.True(t, mrn.Valid(*p.MRN))
	assert.Equal(t, model.PatientStatusActive, p.Status)

	stored := repo.patients[p.ID]
	require.NotNil(t, stored.MRN)
	assert.Equal(t, *p.MRN, *stored.MRN)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventPatientCreated, outbox.events[0].EventType)

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.AuditActionCreate, auditRepo.entries[0].Action)
}

func TestUpdatePatientNeverChangesMRN(t *testing.T) {
	svc, repo, _, _ := newTestService()
	hospitalID := uuid.New()

	p, err := svc.CreatePatient(context.Background(), hospitalID, uuid.New(), createRequest())
	require.NoError(t, err)
	original := *p.MRN

	newPhone := "+2348099999999"
	updated, err := svc.UpdatePatient(context.Background(), hospitalID, uuid.New(), p.ID, &model.UpdatePatientRequest{
		Phone: &newPhone,
	})
	require.NoError(t, err)

	assert.Equal(t, newPhone, updated.Phone)
	require.NotNil(t, repo.patients[p.ID].MRN)
	assert.Equal(t, original, *repo.patients[p.ID].MRN)
}

func TestGetPatientScopedToHospital(t *testing.T) {
	svc, _, _, _ := newTestService()
	hospitalID := uuid.New()

	p, err := svc.CreatePatient(context.Background(), hospitalID, uuid.New(), createRequest())
	require.NoError(t, err)

	_, err = svc.GetPatient(context.Background(), uuid.New(), p.ID)
	assert.Error(t, err)

	got, err := svc.GetPatient(context.Background(), hospitalID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestGetByMRNRejectsMalformedInput(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.GetByMRN(context.Background(), uuid.New(), "bad")
	assert.Error(t, err)
}
