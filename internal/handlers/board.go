package handlers

import (
	"net/http"

	"schoolhub/internal/apperr"
	"schoolhub/internal/models"
	"schoolhub/internal/services"
	"schoolhub/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BoardHandler struct {
	board *services.BoardService
	likes *services.LikeService
	log   *zap.Logger
}

func NewBoardHandler(board *services.BoardService, likes *services.LikeService, log *zap.Logger) *BoardHandler {
	return &BoardHandler{board: board, likes: likes, log: log}
}

// List GET /board/posts
func (h *BoardHandler) List(c *gin.Context) {
	posts, err := h.board.List(c.Request.Context(), viewerID(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Create POST /board/post
func (h *BoardHandler) Create(c *gin.Context) {
	var req createPostRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	post, err := h.board.Create(c.Request.Context(), me(c).ID, req.Title, req.Content)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

// Detail GET /board/post/:id
func (h *BoardHandler) Detail(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, h.log, apperr.NotFound("게시글을 찾을 수 없습니다."))
		return
	}
	post, err := h.board.Get(c.Request.Context(), id, viewerID(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete DELETE /board/post/:id
func (h *BoardHandler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, h.log, apperr.NotFound("게시글을 찾을 수 없습니다."))
		return
	}
	if err := h.board.Delete(c.Request.Context(), id, me(c)); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Mine GET /board/my-posts
func (h *BoardHandler) Mine(c *gin.Context) {
	posts, err := h.board.Mine(c.Request.Context(), me(c).ID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Bookmarked GET /board/bookmarked-posts
func (h *BoardHandler) Bookmarked(c *gin.Context) {
	posts, err := h.likes.BookmarkedPosts(c.Request.Context(), me(c).ID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

type bookmarkRequest struct {
	TargetType string `json:"targetType"`
	TargetID   flexID `json:"targetId"`
	Bookmarked bool   `json:"bookmarked"`
}

// Bookmark POST /board/bookmark
func (h *BoardHandler) Bookmark(c *gin.Context) {
	var req bookmarkRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if req.TargetType == "" {
		req.TargetType = string(models.TargetPost)
	}
	target, ok := models.ParseTargetType(req.TargetType)
	if !ok || req.TargetID == 0 {
		fail(c, h.log, apperr.Validation("잘못된 대상입니다."))
		return
	}
	if err := h.likes.SetBookmark(c.Request.Context(), me(c).ID, target, uint(req.TargetID), req.Bookmarked); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
