package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
	apperrors "github.com/caretide/hospital-api/pkg/errors"
)

var ErrSlotTaken = errors.New("doctor already has an appointment in this time range")

type AppointmentService interface {
	CreateAppointment(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	GetAppointment(ctx context.Context, hospitalID, id uuid.UUID) (*model.Appointment, error)
	UpdateAppointment(ctx context.Context, hospitalID, actorID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error)
	CancelAppointment(ctx context.Context, hospitalID, actorID, id uuid.UUID, reason string) error
	ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	GetDoctorSchedule(ctx context.Context, hospitalID, doctorID uuid.UUID, date time.Time) ([]*model.TimeSlot, error)
}

type Service struct {
	repo        repository.AppointmentRepository
	patientRepo repository.PatientRepository
	userRepo    repository.UserRepository
	outboxRepo  repository.OutboxRepository
	auditor     *audit.Service
}

func NewService(repo repository.AppointmentRepository, patientRepo repository.PatientRepository,
	userRepo repository.UserRepository, outboxRepo repository.OutboxRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		userRepo:    userRepo,
		outboxRepo:  outboxRepo,
		auditor:     auditor,
	}
}

// CreateAppointment books a slot after checking the doctor has no
// overlapping appointment.
func (s *Service) CreateAppointment(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.BadRequest("end time must be after start time", nil)
	}
	if req.StartTime.Before(time.Now()) {
		return nil, apperrors.BadRequest("cannot book an appointment in the past", nil)
	}

	patient, err := s.patientRepo.Get(ctx, req.PatientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if patient == nil || patient.HospitalID != hospitalID {
		return nil, apperrors.NotFound("patient", nil)
	}

	doctor, err := s.userRepo.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if doctor == nil || doctor.HospitalID != hospitalID || doctor.Role != model.RoleDoctor {
		return nil, apperrors.NotFound("doctor", nil)
	}

	conflict, err := s.repo.CheckConflicts(ctx, req.DoctorID, req.StartTime, req.EndTime, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if conflict {
		return nil, apperrors.Conflict(ErrSlotTaken.Error(), ErrSlotTaken)
	}

	now := time.Now()
	appointment := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HospitalID: hospitalID,
		PatientID:  req.PatientID,
		DoctorID:   req.DoctorID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Reason:     req.Reason,
		Notes:      req.Notes,
		Status:     model.AppointmentStatusScheduled,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.publishEvent(ctx, model.EventAppointmentCreated, appointment)
	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionCreate, model.AuditEntityAppointment, appointment.ID, &audit.LogOptions{
		Changes: appointment,
	})

	return appointment, nil
}

func (s *Service) GetAppointment(ctx context.Context, hospitalID, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if appointment == nil || appointment.HospitalID != hospitalID {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return appointment, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, hospitalID, actorID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.GetAppointment(ctx, hospitalID, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == model.AppointmentStatusCancelled || appointment.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.Conflict("appointment can no longer be modified", nil)
	}

	if req.StartTime != nil {
		appointment.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		appointment.EndTime = *req.EndTime
	}
	if !appointment.EndTime.After(appointment.StartTime) {
		return nil, apperrors.BadRequest("end time must be after start time", nil)
	}

	if req.StartTime != nil || req.EndTime != nil {
		conflict, err := s.repo.CheckConflicts(ctx, appointment.DoctorID, appointment.StartTime, appointment.EndTime, &appointment.ID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if conflict {
			return nil, apperrors.Conflict(ErrSlotTaken.Error(), ErrSlotTaken)
		}
	}

	if req.Reason != nil {
		appointment.Reason = *req.Reason
	}
	if req.Status != nil {
		appointment.Status = *req.Status
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}
	appointment.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.publishEvent(ctx, model.EventAppointmentUpdated, appointment)
	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionUpdate, model.AuditEntityAppointment, appointment.ID, &audit.LogOptions{
		Changes: req,
	})

	return appointment, nil
}

func (s *Service) CancelAppointment(ctx context.Context, hospitalID, actorID, id uuid.UUID, reason string) error {
	appointment, err := s.GetAppointment(ctx, hospitalID, id)
	if err != nil {
		return err
	}
	if appointment.Status == model.AppointmentStatusCancelled {
		return nil
	}
	if appointment.Status == model.AppointmentStatusCompleted {
		return apperrors.Conflict("completed appointment cannot be cancelled", nil)
	}

	appointment.Status = model.AppointmentStatusCancelled
	if reason != "" {
		appointment.Notes = reason
	}
	appointment.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, appointment); err != nil {
		return apperrors.Internal(err)
	}

	s.publishEvent(ctx, model.EventAppointmentUpdated, appointment)
	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionUpdate, model.AuditEntityAppointment, id, &audit.LogOptions{
		Metadata: map[string]string{"event": "cancelled", "reason": reason},
	})
	return nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appointments, nil
}

func (s *Service) GetDoctorSchedule(ctx context.Context, hospitalID, doctorID uuid.UUID, date time.Time) ([]*model.TimeSlot, error) {
	doctor, err := s.userRepo.Get(ctx, doctorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if doctor == nil || doctor.HospitalID != hospitalID {
		return nil, apperrors.NotFound("doctor", nil)
	}

	slots, err := s.repo.GetDoctorSchedule(ctx, doctorID, date)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return slots, nil
}

// publishEvent enqueues an enriched payload so the notification worker
// can address the patient without further lookups.
func (s *Service) publishEvent(ctx context.Context, eventType string, appointment *model.Appointment) {
	enriched := struct {
		*model.Appointment
		PatientPhone string `json:"patient_phone,omitempty"`
		PatientEmail string `json:"patient_email,omitempty"`
		PatientName  string `json:"patient_name,omitempty"`
		DoctorName   string `json:"doctor_name,omitempty"`
	}{Appointment: appointment}

	if patient, err := s.patientRepo.Get(ctx, appointment.PatientID); err == nil && patient != nil {
		enriched.PatientPhone = patient.Phone
		enriched.PatientEmail = patient.Email
		enriched.PatientName = patient.FirstName + " " + patient.LastName
	}
	if doctor, err := s.userRepo.Get(ctx, appointment.DoctorID); err == nil && doctor != nil {
		enriched.DoctorName = doctor.Name
	}

	payload, err := json.Marshal(enriched)
	if err != nil {
		return
	}
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    string(model.OutboxStatusPending),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to enqueue outbox event")
	}
}
