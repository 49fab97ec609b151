package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatRoom struct {
	Base
	HospitalID uuid.UUID `db:"hospital_id" json:"hospital_id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	Name       string    `db:"name" json:"name"`
	IsActive   bool      `db:"is_active" json:"is_active"`
}

type ChatMessage struct {
	ID       uuid.UUID `db:"id" json:"id"`
	RoomID   uuid.UUID `db:"room_id" json:"room_id"`
	SenderID uuid.UUID `db:"sender_id" json:"sender_id"`
	Content  string    `db:"content" json:"content"`
	SentAt   time.Time `db:"sent_at" json:"sent_at"`
	IsRead   bool      `db:"is_read" json:"is_read"`
}

type CreateChatRoomRequest struct {
	PatientID uuid.UUID   `json:"patient_id" binding:"required"`
	Name      string      `json:"name" binding:"required"`
	StaffIDs  []uuid.UUID `json:"staff_ids"`
}

type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
