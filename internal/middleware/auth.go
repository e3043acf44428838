package middleware

import (
	"net/http"

	"schoolhub/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

const (
	sessionUserID   = "user_id"
	sessionUserName = "user_name"
	sessionUserRole = "user_role"
)

// AuthRequired rejects requests without a logged-in user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "로그인 필요"})
			return
		}
		c.Next()
	}
}

// LoadUser retrieves user from session and sets to context
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, _ := session.Get(sessionUserID).(string)
		role, _ := session.Get(sessionUserRole).(string)
		if id != "" && (role == models.RoleStudent || role == models.RoleTeacher) {
			name, _ := session.Get(sessionUserName).(string)
			c.Set(CheckUserKey, models.Identity{ID: id, Name: name, Role: role})
		}
		c.Next()
	}
}

// CurrentUser returns the caller loaded by LoadUser.
func CurrentUser(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return models.Identity{}, false
	}
	who, ok := v.(models.Identity)
	return who, ok
}

// Login stores who in the session.
func Login(c *gin.Context, who models.Identity) error {
	session := sessions.Default(c)
	session.Set(sessionUserID, who.ID)
	session.Set(sessionUserName, who.Name)
	session.Set(sessionUserRole, who.Role)
	return session.Save()
}

func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}
