package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
)

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) repository.ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateRoom(ctx context.Context, room *model.ChatRoom, staffIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	room.CreatedAt = time.Now()
	room.UpdatedAt = time.Now()

	query := `
		INSERT INTO chat_rooms (id, hospital_id, patient_id, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.ExecContext(ctx, query,
		room.ID, room.HospitalID, room.PatientID, room.Name, room.IsActive, room.CreatedAt, room.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create chat room: %w", err)
	}

	memberQuery := `INSERT INTO chat_room_members (room_id, user_id) VALUES ($1, $2)`
	for _, staffID := range staffIDs {
		if _, err := tx.ExecContext(ctx, memberQuery, room.ID, staffID); err != nil {
			return fmt.Errorf("failed to add chat room member: %w", err)
		}
	}

	return tx.Commit()
}

func (r *chatRepository) GetRoom(ctx context.Context, id uuid.UUID) (*model.ChatRoom, error) {
	query := `SELECT * FROM chat_rooms WHERE id = $1 AND deleted_at IS NULL`
	var room model.ChatRoom
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, fmt.Errorf("failed to get chat room: %w", err)
	}
	return &room, nil
}

func (r *chatRepository) ListRooms(ctx context.Context, hospitalID uuid.UUID, patientID *uuid.UUID) ([]*model.ChatRoom, error) {
	query := `SELECT * FROM chat_rooms WHERE hospital_id = $1 AND deleted_at IS NULL`
	args := []interface{}{hospitalID}

	if patientID != nil {
		args = append(args, *patientID)
		query += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}

	query += " ORDER BY updated_at DESC"

	var rooms []*model.ChatRoom
	err := r.db.SelectContext(ctx, &rooms, query, args...)
	return rooms, err
}

func (r *chatRepository) PostMessage(ctx context.Context, msg *model.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, room_id, sender_id, content, sent_at, is_read)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.RoomID, msg.SenderID, msg.Content, msg.SentAt, msg.IsRead,
	)
	if err != nil {
		return fmt.Errorf("failed to post message: %w", err)
	}
	return nil
}

func (r *chatRepository) ListMessages(ctx context.Context, roomID uuid.UUID) ([]*model.ChatMessage, error) {
	query := `SELECT * FROM chat_messages WHERE room_id = $1 ORDER BY sent_at`
	var messages []*model.ChatMessage
	err := r.db.SelectContext(ctx, &messages, query, roomID)
	return messages, err
}

func (r *chatRepository) MarkRead(ctx context.Context, roomID, readerID uuid.UUID) error {
	query := `UPDATE chat_messages SET is_read = TRUE WHERE room_id = $1 AND sender_id != $2 AND is_read = FALSE`
	_, err := r.db.ExecContext(ctx, query, roomID, readerID)
	return err
}

func (r *chatRepository) UnreadCount(ctx context.Context, roomID, readerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM chat_messages WHERE room_id = $1 AND sender_id != $2 AND is_read = FALSE`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, roomID, readerID); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
