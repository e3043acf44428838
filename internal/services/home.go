package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"schoolhub/internal/apperr"
	"schoolhub/internal/models"
	"schoolhub/internal/utils"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	mealsKey   = "meals"
	menuSep    = ", "
)

// MealTable maps date -> meal type -> menu items. Callers must not modify it.
type MealTable map[string]map[string][]string

type HomeService struct {
	db    *gorm.DB
	meals *utils.TTLCache[string, MealTable]
	group singleflight.Group
	gen   atomic.Uint64 // bumped on every meals write
}

func NewHomeService(conn *gorm.DB, mealsTTL time.Duration) *HomeService {
	cache, err := utils.NewTTLCache[string, MealTable](1, mealsTTL)
	if err != nil {
		panic(err)
	}
	return &HomeService{db: conn, meals: cache}
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// SaveMeals replaces the menus of every (date, type) present in table.
func (s *HomeService) SaveMeals(ctx context.Context, table MealTable) error {
	if len(table) == 0 {
		return apperr.Validation("급식 정보가 없습니다.")
	}
	for date, byType := range table {
		if !validDate(date) {
			return apperr.Validation("날짜 형식이 올바르지 않습니다.")
		}
		for typ := range byType {
			if strings.TrimSpace(typ) == "" {
				return apperr.Validation("급식 종류가 비어 있습니다.")
			}
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for date, byType := range table {
			for typ, items := range byType {
				if err := tx.Where("date = ? AND type = ?", date, typ).Delete(&models.Meal{}).Error; err != nil {
					return err
				}
				meal := models.Meal{Date: date, Type: typ, Menu: strings.Join(items, menuSep)}
				if err := tx.Create(&meal).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	s.gen.Add(1)
	s.meals.Delete(mealsKey)
	if err != nil {
		return apperr.Store(err, "급식표 저장 실패")
	}
	return nil
}

// Meals returns the whole meal table, served from cache while fresh.
func (s *HomeService) Meals(ctx context.Context) (MealTable, error) {
	if table, ok := s.meals.Get(mealsKey); ok {
		return table, nil
	}

	// shared by every waiter, so detached from the request that started it
	fillCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(mealsKey, func() (interface{}, error) {
		gen := s.gen.Load()
		table, err := s.loadMeals(fillCtx)
		if err != nil {
			return nil, err
		}
		if s.gen.Load() == gen {
			s.meals.Set(mealsKey, table)
		}
		return table, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, apperr.Store(res.Err, "급식표 조회 실패")
		}
		return res.Val.(MealTable), nil
	}
}

func (s *HomeService) loadMeals(ctx context.Context) (MealTable, error) {
	var rows []models.Meal
	if err := s.db.WithContext(ctx).Order("date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	table := make(MealTable)
	for _, r := range rows {
		if table[r.Date] == nil {
			table[r.Date] = make(map[string][]string)
		}
		items := []string{}
		if r.Menu != "" {
			items = strings.Split(r.Menu, menuSep)
		}
		table[r.Date][r.Type] = items
	}
	return table, nil
}

// PlannerItems returns the caller's planner entries for one day.
func (s *HomeService) PlannerItems(ctx context.Context, userID, date string) ([]models.PlannerItem, error) {
	if !validDate(date) {
		return nil, apperr.Validation("날짜 형식이 올바르지 않습니다.")
	}
	items := []models.PlannerItem{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, apperr.Store(err, "플래너 조회 실패")
	}
	return items, nil
}

func (s *HomeService) AddPlannerItem(ctx context.Context, userID, date, text string) (*models.PlannerItem, error) {
	text = utils.SanitizeText(text)
	if !validDate(date) || text == "" {
		return nil, apperr.Validation("날짜와 내용을 입력하세요.")
	}
	item := models.PlannerItem{UserID: userID, Date: date, Text: text}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, apperr.Store(err, "플래너 저장 실패")
	}
	return &item, nil
}

// SetPlannerDone marks one of the caller's items done or not done.
func (s *HomeService) SetPlannerDone(ctx context.Context, userID string, id uint, done bool) error {
	res := s.db.WithContext(ctx).Model(&models.PlannerItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("done", done)
	if res.Error != nil {
		return apperr.Store(res.Error, "완료 상태 변경 실패")
	}
	if res.RowsAffected == 0 {
		return s.plannerMissing(ctx, userID, id)
	}
	return nil
}

func (s *HomeService) DeletePlannerItem(ctx context.Context, userID string, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.PlannerItem{})
	if res.Error != nil {
		return apperr.Store(res.Error, "플래너 삭제 실패")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("항목을 찾을 수 없습니다.")
	}
	return nil
}

// plannerMissing tells "no such item" apart from "done already had that value",
// since some drivers report zero affected rows for a no-op update.
func (s *HomeService) plannerMissing(ctx context.Context, userID string, id uint) error {
	var item models.PlannerItem
	err := s.db.WithContext(ctx).Select("id").Where("id = ? AND user_id = ?", id, userID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("항목을 찾을 수 없습니다.")
	}
	if err != nil {
		return apperr.Store(err, "완료 상태 변경 실패")
	}
	return nil
}

// Grade computes the credit-weighted grade average.
func (s *HomeService) Grade(subjects []utils.GradeSubject) (utils.GradeResult, error) {
	res, err := utils.CalculateGrade(subjects)
	if err != nil {
		return utils.GradeResult{}, apperr.Validation(err.Error())
	}
	return res, nil
}
