package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/model"
)

// All repository interfaces in one file
type (
	HospitalRepository interface {
		Create(ctx context.Context, hospital *model.Hospital) error
		Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
		GetBySubdomain(ctx context.Context, subdomain string) (*model.Hospital, error)
		Update(ctx context.Context, hospital *model.Hospital) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Hospital, error)
		CreateSubscription(ctx context.Context, sub *model.Subscription) error
		GetSubscription(ctx context.Context, hospitalID uuid.UUID) (*model.Subscription, error)
		UpdateSubscription(ctx context.Context, sub *model.Subscription) error
		GetDashboardStats(ctx context.Context, hospitalID uuid.UUID) (*model.DashboardStats, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByMRN(ctx context.Context, hospitalID uuid.UUID, mrn string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
		MRNExists(ctx context.Context, mrn string) (bool, error)
		// SetMRN assigns the MRN only when the row has none yet and
		// reports whether a row was updated.
		SetMRN(ctx context.Context, id uuid.UUID, mrn string) (bool, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		GetByPhone(ctx context.Context, hospitalID uuid.UUID, phone string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
		UpdateEmailVerified(ctx context.Context, userID uuid.UUID, verified bool) error
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
		List(ctx context.Context, patientID uuid.UUID, filters *model.RecordFilters) ([]*model.MedicalRecord, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		CheckConflicts(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
		GetDoctorSchedule(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.TimeSlot, error)
	}

	BillRepository interface {
		Create(ctx context.Context, bill *model.Bill, items []*model.BillItem) error
		Get(ctx context.Context, id uuid.UUID) (*model.Bill, error)
		Update(ctx context.Context, bill *model.Bill) error
		List(ctx context.Context, filters *model.BillFilters) ([]*model.Bill, error)
		NextInvoiceNumber(ctx context.Context, hospitalID uuid.UUID) (int64, error)
		RecordPayment(ctx context.Context, payment *model.Payment) error
		ListPayments(ctx context.Context, billID uuid.UUID) ([]*model.Payment, error)
		OutstandingForPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
	}

	MaternityRepository interface {
		CreateAntenatal(ctx context.Context, record *model.AntenatalRecord) error
		GetAntenatal(ctx context.Context, id uuid.UUID) (*model.AntenatalRecord, error)
		UpdateAntenatal(ctx context.Context, record *model.AntenatalRecord) error
		ListAntenatal(ctx context.Context, patientID uuid.UUID) ([]*model.AntenatalRecord, error)
		AddVisit(ctx context.Context, visit *model.AntenatalVisit) error
		ListVisits(ctx context.Context, recordID uuid.UUID) ([]*model.AntenatalVisit, error)
		CreateNeonatal(ctx context.Context, record *model.NeonatalRecord) error
		GetNeonatal(ctx context.Context, id uuid.UUID) (*model.NeonatalRecord, error)
		ListNeonatal(ctx context.Context, motherPatientID uuid.UUID) ([]*model.NeonatalRecord, error)
	}

	ReferralRepository interface {
		Create(ctx context.Context, referral *model.Referral) error
		Get(ctx context.Context, id uuid.UUID) (*model.Referral, error)
		Update(ctx context.Context, referral *model.Referral) error
		List(ctx context.Context, filters *model.ReferralFilters) ([]*model.Referral, error)
	}

	PluginRepository interface {
		GetActivation(ctx context.Context, hospitalID uuid.UUID, pluginName string) (*model.HospitalPlugin, error)
		ListActivations(ctx context.Context, hospitalID uuid.UUID) ([]*model.HospitalPlugin, error)
		UpsertActivation(ctx context.Context, activation *model.HospitalPlugin) error
	}

	ChatRepository interface {
		CreateRoom(ctx context.Context, room *model.ChatRoom, staffIDs []uuid.UUID) error
		GetRoom(ctx context.Context, id uuid.UUID) (*model.ChatRoom, error)
		ListRooms(ctx context.Context, hospitalID uuid.UUID, patientID *uuid.UUID) ([]*model.ChatRoom, error)
		PostMessage(ctx context.Context, msg *model.ChatMessage) error
		ListMessages(ctx context.Context, roomID uuid.UUID) ([]*model.ChatMessage, error)
		MarkRead(ctx context.Context, roomID, readerID uuid.UUID) error
		UnreadCount(ctx context.Context, roomID, readerID uuid.UUID) (int64, error)
	}

	TokenRepository interface {
		StoreVerificationToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error
		ValidateVerificationToken(ctx context.Context, token string) (uuid.UUID, error)
		InvalidateVerificationToken(ctx context.Context, token string) error
		StoreResetToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error
		ValidateResetToken(ctx context.Context, token string) (uuid.UUID, error)
		InvalidateToken(ctx context.Context, token string) error
		IsTokenInvalidated(ctx context.Context, token string) (bool, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*model.AuditLog, error)
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	FHIRLinkRepository interface {
		Upsert(ctx context.Context, link *model.FHIRLink) error
		Get(ctx context.Context, entityType string, entityID uuid.UUID) (*model.FHIRLink, error)
	}
)
