package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"schoolhub/internal/apperr"
	"schoolhub/internal/middleware"
	"schoolhub/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user, ok := middleware.CurrentUser(c); ok {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError renders the error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// fail writes err as {success:false, message}. Store failures are logged and their cause hidden.
func fail(c *gin.Context, log *zap.Logger, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.String("route", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"success": false, "message": apperr.Message(err)})
}

// bindJSON decodes the body or answers 400.
func bindJSON(c *gin.Context, log *zap.Logger, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		fail(c, log, apperr.Validation("잘못된 요청입니다."))
		return false
	}
	return true
}

// me returns the caller on routes guarded by AuthRequired.
func me(c *gin.Context) models.Identity {
	return c.MustGet(middleware.CheckUserKey).(models.Identity)
}

// viewerID is the caller's id, or "" for anonymous requests.
func viewerID(c *gin.Context) string {
	who, _ := middleware.CurrentUser(c)
	return who.ID
}

// flexID accepts an id sent either as a JSON number or as a numeric string.
type flexID uint

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return errors.New("invalid id")
	}
	*f = flexID(n)
	return nil
}

// ptr returns nil for a zero id.
func (f flexID) ptr() *uint {
	if f == 0 {
		return nil
	}
	v := uint(f)
	return &v
}
