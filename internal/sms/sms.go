// Package sms sends text messages through an HTTP gateway provider.
package sms

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/caretide/hospital-api/pkg/metrics"
)

type Service interface {
	Send(ctx context.Context, to, message string) error
	SendOTP(ctx context.Context, to, code string) error
	SendAppointmentReminder(ctx context.Context, to, doctorName, when string) error
}

type Config struct {
	BaseURL  string
	APIKey   string
	SenderID string
	Timeout  time.Duration
}

type gatewayService struct {
	cfg     Config
	client  *resty.Client
	metrics *metrics.Metrics
}

func NewGatewayService(cfg Config, m *metrics.Metrics) Service {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Authorization", "Bearer "+cfg.APIKey)

	return &gatewayService{cfg: cfg, client: client, metrics: m}
}

type sendRequest struct {
	To       string `json:"to"`
	Message  string `json:"message"`
	SenderID string `json:"sender_id,omitempty"`
}

type sendResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

func (s *gatewayService) Send(ctx context.Context, to, message string) error {
	return s.send(ctx, "generic", to, message)
}

func (s *gatewayService) SendOTP(ctx context.Context, to, code string) error {
	return s.send(ctx, "otp", to, fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code))
}

func (s *gatewayService) SendAppointmentReminder(ctx context.Context, to, doctorName, when string) error {
	return s.send(ctx, "appointment_reminder", to,
		fmt.Sprintf("Reminder: you have an appointment with %s on %s.", doctorName, when))
}

func (s *gatewayService) send(ctx context.Context, kind, to, message string) error {
	var result sendResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(sendRequest{To: to, Message: message, SenderID: s.cfg.SenderID}).
		SetResult(&result).
		SetError(&result).
		Post("/v1/messages")

	if err != nil {
		s.count(kind, "error")
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	if resp.IsError() {
		s.count(kind, "error")
		return fmt.Errorf("sms gateway rejected message: status %d: %s", resp.StatusCode(), result.Error)
	}

	s.count(kind, "sent")
	return nil
}

func (s *gatewayService) count(kind, status string) {
	if s.metrics != nil {
		s.metrics.SMSSent.WithLabelValues(kind, status).Inc()
	}
}
