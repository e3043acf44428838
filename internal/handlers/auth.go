package handlers

import (
	"net/http"

	"schoolhub/internal/apperr"
	"schoolhub/internal/middleware"
	"schoolhub/internal/models"
	"schoolhub/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type studentSignupRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// SignupStudent POST /auth/signup/student
func (h *AuthHandler) SignupStudent(c *gin.Context) {
	var req studentSignupRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if err := h.auth.SignupStudent(c.Request.Context(), req.ID, req.Name, req.Password); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "회원가입 성공! 로그인 페이지로 이동합니다.", "redirect": "/"})
}

type teacherSignupRequest struct {
	Name        string `json:"name"`
	Password    string `json:"password"`
	SecurityKey string `json:"securityKey"`
}

// SignupTeacher POST /auth/signup/teacher
func (h *AuthHandler) SignupTeacher(c *gin.Context) {
	var req teacherSignupRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if err := h.auth.SignupTeacher(c.Request.Context(), req.Name, req.Password, req.SecurityKey); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "회원가입 성공! 로그인 페이지로 이동합니다.", "redirect": "/"})
}

// LoginStudent POST /auth/login/student
func (h *AuthHandler) LoginStudent(c *gin.Context) {
	var req studentSignupRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	who, err := h.auth.LoginStudent(c.Request.Context(), req.ID, req.Name, req.Password)
	h.finishLogin(c, who, err)
}

type teacherLoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginTeacher POST /auth/login/teacher
func (h *AuthHandler) LoginTeacher(c *gin.Context) {
	var req teacherLoginRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	who, err := h.auth.LoginTeacher(c.Request.Context(), req.Name, req.Password)
	h.finishLogin(c, who, err)
}

// finishLogin only touches the session once the password matched.
func (h *AuthHandler) finishLogin(c *gin.Context, who models.Identity, err error) {
	if err != nil {
		fail(c, h.log, err)
		return
	}
	if err := middleware.Login(c, who); err != nil {
		fail(c, h.log, apperr.Store(err, "로그인 실패"))
		return
	}
	h.log.Info("user logged in", zap.String("user_id", who.ID), zap.String("role", who.Role))
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "로그인 성공!",
		"redirect": "/main",
		"user":     gin.H{"user_id": who.ID},
	})
}

// Profile GET /auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	who, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}
	who, err := h.auth.Profile(c.Request.Context(), who)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			c.JSON(http.StatusOK, gin.H{"success": false})
			return
		}
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": who.ID, "name": who.Name, "role": who.Role})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), me(c), req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "비밀번호가 변경되었습니다.", "redirect": "/profile"})
}

// Logout POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		fail(c, h.log, apperr.Store(err, "로그아웃 실패"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "redirect": "/"})
}
