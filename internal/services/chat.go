package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"schoolhub/internal/apperr"
	"schoolhub/internal/db"
	"schoolhub/internal/models"
	"schoolhub/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomView is a chat room as shown to clients.
type RoomView struct {
	models.ChatRoom
	Categories  []string `json:"categories"`
	HasPassword bool     `json:"has_password"`
}

func (s *ChatService) roomView(r models.ChatRoom) RoomView {
	var cats []string
	if r.Categories != "" {
		if err := json.Unmarshal([]byte(r.Categories), &cats); err != nil {
			s.log.Warn("corrupt room categories",
				zap.String("room_id", r.ID),
				zap.String("categories", r.Categories),
				zap.Error(err))
			cats = nil
		}
	}
	if cats == nil {
		cats = []string{}
	}
	return RoomView{ChatRoom: r, Categories: cats, HasPassword: r.PasswordHash != ""}
}

type CreateRoomInput struct {
	ID                  string
	Title               string
	Categories          []string
	Password            string
	AllowDefaultProfile bool
}

type Participant struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

type ChatService struct {
	db  *gorm.DB
	hub *ChatHub
	log *zap.Logger
}

func NewChatService(conn *gorm.DB, hub *ChatHub, log *zap.Logger) *ChatService {
	return &ChatService{db: conn, hub: hub, log: log}
}

func (s *ChatService) Hub() *ChatHub {
	return s.hub
}

// Rooms lists every room newest first.
func (s *ChatService) Rooms(ctx context.Context) ([]RoomView, error) {
	var rooms []models.ChatRoom
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rooms).Error; err != nil {
		return nil, apperr.Store(err, "채팅방 조회 실패")
	}
	return s.roomViews(rooms), nil
}

func (s *ChatService) roomViews(rooms []models.ChatRoom) []RoomView {
	views := make([]RoomView, len(rooms))
	for i, r := range rooms {
		views[i] = s.roomView(r)
	}
	return views
}

// CreateRoom makes a room and joins the creator to it.
func (s *ChatService) CreateRoom(ctx context.Context, in CreateRoomInput, creator models.Identity) (*RoomView, error) {
	title := utils.SanitizeText(in.Title)
	if title == "" {
		return nil, apperr.Validation("채팅방 이름을 입력하세요.")
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	if len(id) > 50 {
		return nil, apperr.Validation("잘못된 채팅방 ID입니다.")
	}

	cats := make([]string, 0, len(in.Categories))
	for _, c := range in.Categories {
		if c = utils.SanitizeText(c); c != "" {
			cats = append(cats, c)
		}
	}
	rawCats, err := json.Marshal(cats)
	if err != nil {
		return nil, apperr.Store(err, "채팅방 생성 실패")
	}

	room := models.ChatRoom{
		ID:                  id,
		Title:               title,
		Categories:          string(rawCats),
		AllowDefaultProfile: in.AllowDefaultProfile,
	}
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, apperr.Store(err, "채팅방 생성 실패")
		}
		room.PasswordHash = hash
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		return tx.Create(&models.ChatParticipant{RoomID: room.ID, UserID: creator.ID, UserName: creator.Name}).Error
	})
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, apperr.Conflict("이미 존재하는 채팅방입니다.")
		}
		return nil, apperr.Store(err, "채팅방 생성 실패")
	}
	view := s.roomView(room)
	return &view, nil
}

// Join adds the caller to a room. Joining twice is a no-op.
func (s *ChatService) Join(ctx context.Context, roomID, password string, who models.Identity) error {
	conn := s.db.WithContext(ctx)

	var room models.ChatRoom
	err := conn.First(&room, "id = ?", roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("채팅방을 찾을 수 없습니다.")
	}
	if err != nil {
		return apperr.Store(err, "참여 실패")
	}
	if room.PasswordHash != "" && !utils.CheckPasswordHash(password, room.PasswordHash) {
		return apperr.Forbidden("비밀번호가 올바르지 않습니다.")
	}

	p := models.ChatParticipant{RoomID: roomID, UserID: who.ID, UserName: who.Name}
	if err := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
		return apperr.Store(err, "참여 실패")
	}
	return nil
}

func (s *ChatService) Participants(ctx context.Context, roomID string) ([]Participant, error) {
	out := []Participant{}
	err := s.db.WithContext(ctx).Model(&models.ChatParticipant{}).
		Select("user_id", "user_name").
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Scan(&out).Error
	if err != nil {
		return nil, apperr.Store(err, "조회 실패")
	}
	return out, nil
}

// JoinedRooms lists the rooms userID takes part in, newest first.
func (s *ChatService) JoinedRooms(ctx context.Context, userID string) ([]RoomView, error) {
	var rooms []models.ChatRoom
	err := s.db.WithContext(ctx).
		Joins("JOIN chat_participants ON chat_participants.room_id = chat_rooms.id").
		Where("chat_participants.user_id = ?", userID).
		Order("chat_rooms.created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, apperr.Store(err, "조회 실패")
	}
	return s.roomViews(rooms), nil
}

func (s *ChatService) IsParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ChatParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&n).Error
	if err != nil {
		return false, apperr.Store(err, "조회 실패")
	}
	return n > 0, nil
}

// Messages returns the room history oldest first.
func (s *ChatService) Messages(ctx context.Context, roomID string) ([]models.ChatMessage, error) {
	msgs := []models.ChatMessage{}
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("sent_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, apperr.Store(err, "메시지 조회 실패")
	}
	return msgs, nil
}

// Send stores a message from a participant and pushes it to live subscribers.
func (s *ChatService) Send(ctx context.Context, roomID, content string, who models.Identity) (*models.ChatMessage, error) {
	content = utils.SanitizeText(content)
	if roomID == "" || content == "" {
		return nil, apperr.Validation("메시지를 입력하세요.")
	}
	ok, err := s.IsParticipant(ctx, roomID, who.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("채팅방에 참여하지 않았습니다.")
	}

	msg := models.ChatMessage{RoomID: roomID, Sender: who.Name, Content: content}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, apperr.Store(err, "메시지 저장 실패")
	}
	s.hub.Publish(msg)
	return &msg, nil
}
