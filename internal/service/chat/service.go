package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/pkg/errors"
)

type ChatService interface {
	CreateRoom(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreateChatRoomRequest) (*model.ChatRoom, error)
	GetRoom(ctx context.Context, hospitalID, id uuid.UUID) (*model.ChatRoom, error)
	ListRooms(ctx context.Context, hospitalID uuid.UUID, patientID *uuid.UUID) ([]*model.ChatRoom, error)
	PostMessage(ctx context.Context, hospitalID, roomID, senderID uuid.UUID, req *model.PostMessageRequest) (*model.ChatMessage, error)
	ListMessages(ctx context.Context, hospitalID, roomID, readerID uuid.UUID) ([]*model.ChatMessage, error)
	UnreadCount(ctx context.Context, hospitalID, roomID, readerID uuid.UUID) (int64, error)
}

type Service struct {
	repo        repository.ChatRepository
	patientRepo repository.PatientRepository
}

func NewService(repo repository.ChatRepository, patientRepo repository.PatientRepository) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
	}
}

func (s *Service) CreateRoom(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreateChatRoomRequest) (*model.ChatRoom, error) {
	patient, err := s.patientRepo.Get(ctx, req.PatientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if patient == nil || patient.HospitalID != hospitalID {
		return nil, errors.NotFound("patient", nil)
	}

	now := time.Now()
	room := &model.ChatRoom{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HospitalID: hospitalID,
		PatientID:  req.PatientID,
		Name:       req.Name,
		IsActive:   true,
	}

	staffIDs := req.StaffIDs
	if len(staffIDs) == 0 {
		staffIDs = []uuid.UUID{actorID}
	}

	if err := s.repo.CreateRoom(ctx, room, staffIDs); err != nil {
		return nil, errors.Internal(err)
	}
	return room, nil
}

func (s *Service) GetRoom(ctx context.Context, hospitalID, id uuid.UUID) (*model.ChatRoom, error) {
	room, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if room == nil || room.HospitalID != hospitalID {
		return nil, errors.NotFound("chat room", nil)
	}
	return room, nil
}

func (s *Service) ListRooms(ctx context.Context, hospitalID uuid.UUID, patientID *uuid.UUID) ([]*model.ChatRoom, error) {
	rooms, err := s.repo.ListRooms(ctx, hospitalID, patientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return rooms, nil
}

func (s *Service) PostMessage(ctx context.Context, hospitalID, roomID, senderID uuid.UUID, req *model.PostMessageRequest) (*model.ChatMessage, error) {
	room, err := s.GetRoom(ctx, hospitalID, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, errors.Conflict("chat room is closed", nil)
	}

	msg := &model.ChatMessage{
		ID:       uuid.New(),
		RoomID:   roomID,
		SenderID: senderID,
		Content:  req.Content,
		SentAt:   time.Now(),
	}

	if err := s.repo.PostMessage(ctx, msg); err != nil {
		return nil, errors.Internal(err)
	}
	return msg, nil
}

// ListMessages returns the room history and marks it read for the
// caller.
func (s *Service) ListMessages(ctx context.Context, hospitalID, roomID, readerID uuid.UUID) ([]*model.ChatMessage, error) {
	if _, err := s.GetRoom(ctx, hospitalID, roomID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, roomID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if err := s.repo.MarkRead(ctx, roomID, readerID); err != nil {
		return nil, errors.Internal(err)
	}
	return messages, nil
}

func (s *Service) UnreadCount(ctx context.Context, hospitalID, roomID, readerID uuid.UUID) (int64, error) {
	if _, err := s.GetRoom(ctx, hospitalID, roomID); err != nil {
		return 0, err
	}

	count, err := s.repo.UnreadCount(ctx, roomID, readerID)
	if err != nil {
		return 0, errors.Internal(err)
	}
	return count, nil
}
