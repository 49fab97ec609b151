package referral

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
	apperrors "github.com/caretide/hospital-api/pkg/errors"
)

type fakeReferralRepo struct {
	referrals map[uuid.UUID]*model.Referral
}

func newFakeReferralRepo() *fakeReferralRepo {
	return &fakeReferralRepo{referrals: make(map[uuid.UUID]*model.Referral)}
}

func (r *fakeReferralRepo) Create(_ context.Context, referral *model.Referral) error {
	clone := *referral
	r.referrals[referral.ID] = &clone
	return nil
}

func (r *fakeReferralRepo) Get(_ context.Context, id uuid.UUID) (*model.Referral, error) {
	referral, ok := r.referrals[id]
	if !ok {
		return nil, nil
	}
	clone := *referral
	return &clone, nil
}

func (r *fakeReferralRepo) Update(_ context.Context, referral *model.Referral) error {
	clone := *referral
	r.referrals[referral.ID] = &clone
	return nil
}

func (r *fakeReferralRepo) List(_ context.Context, _ *model.ReferralFilters) ([]*model.Referral, error) {
	out := make([]*model.Referral, 0, len(r.referrals))
	for _, referral := range r.referrals {
		out = append(out, referral)
	}
	return out, nil
}

// fakePatientRepo and fakeHospitalRepo embed the interface so only the
// methods this service touches need real bodies.
type fakePatientRepo struct {
	repository.PatientRepository
	patients map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	return r.patients[id], nil
}

type fakeHospitalRepo struct {
	repository.HospitalRepository
	hospitals map[uuid.UUID]*model.Hospital
}

func (r *fakeHospitalRepo) Get(_ context.Context, id uuid.UUID) (*model.Hospital, error) {
	return r.hospitals[id], nil
}

type fakeAuditRepo struct {
	repository.AuditRepository
	entries []*model.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, log *model.AuditLog) error {
	r.entries = append(r.entries, log)
	return nil
}

type fixture struct {
	svc       *Service
	fromID    uuid.UUID
	toID      uuid.UUID
	patientID uuid.UUID
	actorID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fromID := uuid.New()
	toID := uuid.New()
	patientID := uuid.New()

	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{
		patientID: {Base: model.Base{ID: patientID}, HospitalID: fromID},
	}}
	hospitals := &fakeHospitalRepo{hospitals: map[uuid.UUID]*model.Hospital{
		fromID: {Base: model.Base{ID: fromID}, IsActive: true},
		toID:   {Base: model.Base{ID: toID}, IsActive: true},
	}}

	svc := NewService(newFakeReferralRepo(), patients, hospitals, audit.NewService(&fakeAuditRepo{}))
	return &fixture{
		svc:       svc,
		fromID:    fromID,
		toID:      toID,
		patientID: patientID,
		actorID:   uuid.New(),
	}
}

func (f *fixture) create(t *testing.T) *model.Referral {
	t.Helper()
	referral, err := f.svc.CreateReferral(context.Background(), f.fromID, f.actorID, &model.CreateReferralRequest{
		PatientID:    f.patientID,
		ToHospitalID: f.toID,
		Reason:       "specialist cardiology review",
	})
	require.NoError(t, err)
	return referral
}

func update(f *fixture, hospitalID, id uuid.UUID, status model.ReferralStatus) (*model.Referral, error) {
	return f.svc.UpdateReferral(context.Background(), hospitalID, f.actorID, id, &model.UpdateReferralRequest{
		Status: &status,
	})
}

func TestCreateReferralStartsPending(t *testing.T) {
	f := newFixture(t)
	referral := f.create(t)
	assert.Equal(t, model.ReferralStatusPending, referral.Status)
	assert.Equal(t, f.fromID, referral.FromHospitalID)
	assert.Equal(t, f.toID, referral.ToHospitalID)
}

func TestCreateReferralToSameHospitalRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateReferral(context.Background(), f.fromID, f.actorID, &model.CreateReferralRequest{
		PatientID:    f.patientID,
		ToHospitalID: f.fromID,
		Reason:       "loop",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, err.(*apperrors.AppError).Code)
}

func TestOnlyReceivingHospitalAccepts(t *testing.T) {
	f := newFixture(t)
	referral := f.create(t)

	_, err := update(f, f.fromID, referral.ID, model.ReferralStatusAccepted)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrForbidden, err.(*apperrors.AppError).Code)

	accepted, err := update(f, f.toID, referral.ID, model.ReferralStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.ReferralStatusAccepted, accepted.Status)
}

func TestCompleteRequiresAccepted(t *testing.T) {
	f := newFixture(t)
	referral := f.create(t)

	_, err := update(f, f.toID, referral.ID, model.ReferralStatusCompleted)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, err.(*apperrors.AppError).Code)

	_, err = update(f, f.toID, referral.ID, model.ReferralStatusAccepted)
	require.NoError(t, err)

	completed, err := update(f, f.toID, referral.ID, model.ReferralStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.ReferralStatusCompleted, completed.Status)
}

func TestDeclinedReferralIsFinal(t *testing.T) {
	f := newFixture(t)
	referral := f.create(t)

	_, err := update(f, f.toID, referral.ID, model.ReferralStatusDeclined)
	require.NoError(t, err)

	_, err = update(f, f.toID, referral.ID, model.ReferralStatusAccepted)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, err.(*apperrors.AppError).Code)
}

func TestReferralVisibleToBothEndsOnly(t *testing.T) {
	f := newFixture(t)
	referral := f.create(t)

	for _, hospitalID := range []uuid.UUID{f.fromID, f.toID} {
		got, err := f.svc.GetReferral(context.Background(), hospitalID, referral.ID)
		require.NoError(t, err)
		assert.Equal(t, referral.ID, got.ID)
	}

	_, err := f.svc.GetReferral(context.Background(), uuid.New(), referral.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, err.(*apperrors.AppError).Code)
}

func TestPendingRegressionRejected(t *testing.T) {
	f := newFixture(t)
	referral := f.create(t)

	_, err := update(f, f.toID, referral.ID, model.ReferralStatusAccepted)
	require.NoError(t, err)

	_, err = update(f, f.toID, referral.ID, model.ReferralStatusPending)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, err.(*apperrors.AppError).Code)
}
