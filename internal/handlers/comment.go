package handlers

import (
	"net/http"

	"schoolhub/internal/apperr"
	"schoolhub/internal/services"
	"schoolhub/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments *services.CommentService
	log      *zap.Logger
}

func NewCommentHandler(comments *services.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

// List GET /comments/:postId
func (h *CommentHandler) List(c *gin.Context) {
	postID, err := utils.ParseID(c.Param("postId"))
	if err != nil {
		// an id that can never exist lists nothing, like an unknown post
		c.JSON(http.StatusOK, []services.CommentView{})
		return
	}

	views, err := h.comments.List(c.Request.Context(), postID, viewerID(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

type addCommentRequest struct {
	PostID   flexID `json:"postId"`
	Text     string `json:"text"`
	ParentID flexID `json:"parentId"`
}

// Create POST /comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req addCommentRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if req.PostID == 0 || req.Text == "" {
		fail(c, h.log, apperr.Validation("필수 항목 누락"))
		return
	}

	user := me(c)
	comment, err := h.comments.Add(c.Request.Context(), services.AddCommentInput{
		PostID:   uint(req.PostID),
		UserID:   user.ID,
		Text:     req.Text,
		ParentID: req.ParentID.ptr(),
	})
	if err != nil {
		fail(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"id":         comment.ID,
		"postId":     comment.PostID,
		"parentId":   comment.ParentID,
		"userId":     comment.UserID,
		"nickname":   comment.Nickname,
		"text":       comment.Text,
		"created_at": comment.CreatedAt,
	})
}

// Delete DELETE /comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, h.log, apperr.Validation("잘못된 댓글 ID입니다."))
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id, me(c)); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Mine GET /comments/my-comments
func (h *CommentHandler) Mine(c *gin.Context) {
	rows, err := h.comments.Mine(c.Request.Context(), me(c).ID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
