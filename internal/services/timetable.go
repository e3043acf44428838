package services

import (
	"context"
	"strings"

	"schoolhub/internal/apperr"
	"schoolhub/internal/models"
	"schoolhub/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TimetableService struct {
	db *gorm.DB
}

func NewTimetableService(conn *gorm.DB) *TimetableService {
	return &TimetableService{db: conn}
}

// Get returns the user's timetable as cell key -> subject.
func (s *TimetableService) Get(ctx context.Context, userID string) (map[string]string, error) {
	var cells []models.TimetableCell
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&cells).Error; err != nil {
		return nil, apperr.Store(err, "시간표 조회 실패")
	}
	out := make(map[string]string, len(cells))
	for _, c := range cells {
		out[c.CellKey] = c.Subject
	}
	return out, nil
}

// Save sets one cell. An empty subject clears it.
func (s *TimetableService) Save(ctx context.Context, userID, cellKey, subject string) error {
	cellKey = strings.TrimSpace(cellKey)
	subject = utils.SanitizeText(subject)
	if cellKey == "" || len(cellKey) > 10 {
		return apperr.Validation("잘못된 칸입니다.")
	}
	if len([]rune(subject)) > 50 {
		return apperr.Validation("과목명이 너무 깁니다.")
	}

	conn := s.db.WithContext(ctx)
	if subject == "" {
		if err := conn.Where("user_id = ? AND cell_key = ?", userID, cellKey).Delete(&models.TimetableCell{}).Error; err != nil {
			return apperr.Store(err, "시간표 저장 실패")
		}
		return nil
	}

	cell := models.TimetableCell{UserID: userID, CellKey: cellKey, Subject: subject}
	err := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "cell_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"subject"}),
	}).Create(&cell).Error
	if err != nil {
		return apperr.Store(err, "시간표 저장 실패")
	}
	return nil
}
