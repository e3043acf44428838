package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"schoolhub/internal/apperr"
	"schoolhub/internal/db"
	"schoolhub/internal/models"
	"schoolhub/internal/utils"

	"gorm.io/gorm"
)

const minPasswordLen = 4

type AuthService struct {
	db          *gorm.DB
	securityKey string
}

func NewAuthService(conn *gorm.DB, teacherSecurityKey string) *AuthService {
	return &AuthService{db: conn, securityKey: teacherSecurityKey}
}

// SignupStudent registers a student listed on the roster.
func (s *AuthService) SignupStudent(ctx context.Context, id, name, password string) error {
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)
	if id == "" || name == "" || password == "" {
		return apperr.Validation("모든 정보를 입력하세요.")
	}
	conn := s.db.WithContext(ctx)

	var n int64
	if err := conn.Model(&models.RosterStudent{}).Where("id = ? AND name = ?", id, name).Count(&n).Error; err != nil {
		return apperr.Store(err, "회원가입 실패")
	}
	if n == 0 {
		return apperr.Forbidden("사전 등록된 학생이 아닙니다.")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return apperr.Store(err, "회원가입 실패")
	}
	if err := conn.Create(&models.Student{ID: id, Name: name, Password: hash}).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return apperr.Conflict("이미 가입된 학생입니다.")
		}
		return apperr.Store(err, "회원가입 실패")
	}
	return nil
}

// SignupTeacher registers a rostered teacher who knows the security key.
func (s *AuthService) SignupTeacher(ctx context.Context, name, password, securityKey string) error {
	name = strings.TrimSpace(name)
	if name == "" || password == "" || securityKey == "" {
		return apperr.Validation("모든 정보를 입력하세요.")
	}
	if s.securityKey == "" || subtle.ConstantTimeCompare([]byte(securityKey), []byte(s.securityKey)) != 1 {
		return apperr.Forbidden("보안키가 올바르지 않습니다.")
	}
	conn := s.db.WithContext(ctx)

	var n int64
	if err := conn.Model(&models.RosterTeacher{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return apperr.Store(err, "회원가입 실패")
	}
	if n == 0 {
		return apperr.Forbidden("사전 등록된 교사가 아닙니다.")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return apperr.Store(err, "회원가입 실패")
	}
	if err := conn.Create(&models.Teacher{Name: name, Password: hash}).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return apperr.Conflict("이미 가입된 교사입니다.")
		}
		return apperr.Store(err, "회원가입 실패")
	}
	return nil
}

var errBadCredentials = &apperr.Error{Kind: apperr.KindAuthRequired, Message: "비밀번호가 틀렸습니다."}

// LoginStudent checks the credentials and returns the identity to store in the session.
func (s *AuthService) LoginStudent(ctx context.Context, id, name, password string) (models.Identity, error) {
	if id == "" || name == "" || password == "" {
		return models.Identity{}, apperr.Validation("모든 정보를 입력하세요.")
	}

	var student models.Student
	err := s.db.WithContext(ctx).Where("id = ? AND name = ?", id, name).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Identity{}, apperr.NotFound("등록되지 않은 학생입니다.")
	}
	if err != nil {
		return models.Identity{}, apperr.Store(err, "로그인 실패")
	}
	if !utils.CheckPasswordHash(password, student.Password) {
		return models.Identity{}, errBadCredentials
	}
	return models.Identity{ID: student.ID, Name: student.Name, Role: models.RoleStudent}, nil
}

func (s *AuthService) LoginTeacher(ctx context.Context, name, password string) (models.Identity, error) {
	if name == "" || password == "" {
		return models.Identity{}, apperr.Validation("모든 정보를 입력하세요.")
	}

	var teacher models.Teacher
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&teacher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Identity{}, apperr.NotFound("등록되지 않은 교사입니다.")
	}
	if err != nil {
		return models.Identity{}, apperr.Store(err, "로그인 실패")
	}
	if !utils.CheckPasswordHash(password, teacher.Password) {
		return models.Identity{}, errBadCredentials
	}
	return models.Identity{ID: teacher.Name, Name: teacher.Name, Role: models.RoleTeacher}, nil
}

// Profile reloads the caller's account. A deleted account is NotFound.
func (s *AuthService) Profile(ctx context.Context, who models.Identity) (models.Identity, error) {
	conn := s.db.WithContext(ctx)
	var err error
	if who.IsTeacher() {
		var t models.Teacher
		err = conn.Where("name = ?", who.ID).First(&t).Error
		who = models.Identity{ID: t.Name, Name: t.Name, Role: models.RoleTeacher}
	} else {
		var st models.Student
		err = conn.Where("id = ?", who.ID).First(&st).Error
		who = models.Identity{ID: st.ID, Name: st.Name, Role: models.RoleStudent}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Identity{}, apperr.NotFound("사용자를 찾을 수 없습니다.")
	}
	if err != nil {
		return models.Identity{}, apperr.Store(err, "프로필 조회 실패")
	}
	return who, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, who models.Identity, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("비밀번호를 입력하세요.")
	}
	if len([]rune(next)) < minPasswordLen {
		return apperr.Validation("새 비밀번호는 4자 이상이어야 합니다.")
	}

	var (
		model  interface{}
		stored string
		key    string
	)
	conn := s.db.WithContext(ctx)
	if who.IsTeacher() {
		var t models.Teacher
		if err := conn.Where("name = ?", who.ID).First(&t).Error; err != nil {
			return notFoundOrStore(err, "사용자를 찾을 수 없습니다.")
		}
		model, stored, key = &models.Teacher{}, t.Password, "name = ?"
	} else {
		var st models.Student
		if err := conn.Where("id = ?", who.ID).First(&st).Error; err != nil {
			return notFoundOrStore(err, "사용자를 찾을 수 없습니다.")
		}
		model, stored, key = &models.Student{}, st.Password, "id = ?"
	}

	if !utils.CheckPasswordHash(current, stored) {
		return apperr.Validation("현재 비밀번호가 틀렸습니다.")
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return apperr.Store(err, "비밀번호 변경 실패")
	}
	if err := conn.Model(model).Where(key, who.ID).Update("password", hash).Error; err != nil {
		return apperr.Store(err, "비밀번호 변경 실패")
	}
	return nil
}

func notFoundOrStore(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Store(err, "서버 오류")
}
