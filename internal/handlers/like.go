package handlers

import (
	"net/http"

	"schoolhub/internal/apperr"
	"schoolhub/internal/models"
	"schoolhub/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LikeHandler struct {
	likes *services.LikeService
	log   *zap.Logger
}

func NewLikeHandler(likes *services.LikeService, log *zap.Logger) *LikeHandler {
	return &LikeHandler{likes: likes, log: log}
}

type likeRequest struct {
	TargetType string `json:"targetType"`
	TargetID   flexID `json:"targetId"`
	Liked      bool   `json:"liked"`
}

// Toggle POST /likes
func (h *LikeHandler) Toggle(c *gin.Context) {
	var req likeRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	target, ok := models.ParseTargetType(req.TargetType)
	if !ok || req.TargetID == 0 {
		fail(c, h.log, apperr.Validation("잘못된 대상입니다."))
		return
	}

	count, err := h.likes.SetLike(c.Request.Context(), me(c).ID, target, uint(req.TargetID), req.Liked)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "likes": count})
}

// LikedPosts GET /likes/liked-posts
func (h *LikeHandler) LikedPosts(c *gin.Context) {
	posts, err := h.likes.LikedPosts(c.Request.Context(), me(c).ID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
