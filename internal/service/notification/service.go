// Package notification consumes broker events and delivers email and
// SMS, and triggers FHIR syncs, outside the request path.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/email"
	"github.com/caretide/hospital-api/internal/fhir"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/sms"
	"github.com/caretide/hospital-api/pkg/logger"
	"github.com/caretide/hospital-api/pkg/messaging"
)

type Dispatcher struct {
	broker   messaging.Broker
	emailSvc email.Service
	smsSvc   sms.Service
	syncer   *fhir.Syncer
	logger   *logger.Logger
}

func NewDispatcher(broker messaging.Broker, emailSvc email.Service, smsSvc sms.Service, syncer *fhir.Syncer, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{
		broker:   broker,
		emailSvc: emailSvc,
		smsSvc:   smsSvc,
		syncer:   syncer,
		logger:   logger,
	}
}

// Start subscribes to every event channel and blocks until the context
// is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	channels := map[string]func(context.Context, []byte) error{
		model.EventPatientCreated:     d.handlePatientCreated,
		model.EventPatientUpdated:     d.handlePatientUpdated,
		model.EventAppointmentCreated: d.handleAppointmentCreated,
		model.EventBillIssued:         d.handleBillIssued,
		model.EventSendEmail:          d.handleSendEmail,
		model.EventSendSMS:            d.handleSendSMS,
		model.EventFHIRSync:           d.handleFHIRSync,
	}

	for channel, handler := range channels {
		ch, err := d.broker.Subscribe(ctx, channel)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		go d.consume(ctx, channel, ch, handler)
	}

	d.logger.Info("notification dispatcher started")
	<-ctx.Done()
	return nil
}

func (d *Dispatcher) consume(ctx context.Context, channel string, ch <-chan []byte, handler func(context.Context, []byte) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-ch:
			if !ok {
				return
			}
			if err := handler(ctx, payload); err != nil {
				d.logger.Error(err, "event handling failed", "channel", channel)
			}
		}
	}
}

func (d *Dispatcher) handlePatientCreated(ctx context.Context, payload []byte) error {
	var patient model.Patient
	if err := json.Unmarshal(payload, &patient); err != nil {
		return fmt.Errorf("bad patient payload: %w", err)
	}

	if patient.Phone != "" && patient.MRN != nil {
		msg := fmt.Sprintf("Welcome. Your medical record number is %s. Keep it for all visits.", *patient.MRN)
		if err := d.smsSvc.Send(ctx, patient.Phone, msg); err != nil {
			d.logger.Error(err, "failed to send welcome sms", "patient_id", patient.ID.String())
		}
	}

	if d.syncer == nil {
		return nil
	}
	return d.syncer.SyncPatient(ctx, patient.ID)
}

func (d *Dispatcher) handlePatientUpdated(ctx context.Context, payload []byte) error {
	var patient model.Patient
	if err := json.Unmarshal(payload, &patient); err != nil {
		return fmt.Errorf("bad patient payload: %w", err)
	}
	if d.syncer == nil {
		return nil
	}
	return d.syncer.SyncPatient(ctx, patient.ID)
}

func (d *Dispatcher) handleAppointmentCreated(ctx context.Context, payload []byte) error {
	var appt struct {
		model.Appointment
		PatientPhone string `json:"patient_phone"`
		PatientEmail string `json:"patient_email"`
		PatientName  string `json:"patient_name"`
		DoctorName   string `json:"doctor_name"`
	}
	if err := json.Unmarshal(payload, &appt); err != nil {
		return fmt.Errorf("bad appointment payload: %w", err)
	}

	when := appt.StartTime.Format("Mon, 2 Jan 2006 at 15:04")
	if appt.PatientPhone != "" {
		if err := d.smsSvc.SendAppointmentReminder(ctx, appt.PatientPhone, appt.DoctorName, when); err != nil {
			d.logger.Error(err, "failed to send appointment sms", "appointment_id", appt.ID.String())
		}
	}
	if appt.PatientEmail != "" {
		if err := d.emailSvc.SendAppointmentReminder(ctx, appt.PatientEmail, appt.PatientName, appt.DoctorName, when); err != nil {
			d.logger.Error(err, "failed to send appointment email", "appointment_id", appt.ID.String())
		}
	}
	return nil
}

func (d *Dispatcher) handleBillIssued(ctx context.Context, payload []byte) error {
	var bill struct {
		model.Bill
		PatientEmail string `json:"patient_email"`
	}
	if err := json.Unmarshal(payload, &bill); err != nil {
		return fmt.Errorf("bad bill payload: %w", err)
	}
	if bill.PatientEmail == "" || bill.InvoiceNumber == nil {
		return nil
	}

	amount := fmt.Sprintf("%s %.2f", bill.Currency, float64(bill.TotalCents)/100)
	return d.emailSvc.SendInvoice(ctx, bill.PatientEmail, fmt.Sprintf("%d", *bill.InvoiceNumber), amount)
}

func (d *Dispatcher) handleSendEmail(ctx context.Context, payload []byte) error {
	var req struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("bad email payload: %w", err)
	}
	return d.emailSvc.SendCustom(ctx, req.To, req.Subject, req.Body)
}

func (d *Dispatcher) handleSendSMS(ctx context.Context, payload []byte) error {
	var req struct {
		To      string `json:"to"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("bad sms payload: %w", err)
	}
	return d.smsSvc.Send(ctx, req.To, req.Message)
}

func (d *Dispatcher) handleFHIRSync(ctx context.Context, payload []byte) error {
	var req struct {
		EntityType string    `json:"entity_type"`
		EntityID   uuid.UUID `json:"entity_id"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("bad fhir sync payload: %w", err)
	}
	if d.syncer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch req.EntityType {
	case model.FHIREntityPatient:
		return d.syncer.SyncPatient(ctx, req.EntityID)
	case model.FHIREntityMedicalRecord:
		return d.syncer.SyncMedicalRecord(ctx, req.EntityID)
	default:
		return fmt.Errorf("unknown fhir entity type %q", req.EntityType)
	}
}
