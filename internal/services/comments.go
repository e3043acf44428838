package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"schoolhub/internal/apperr"
	"schoolhub/internal/db"
	"schoolhub/internal/models"
	"schoolhub/internal/utils"

	"gorm.io/gorm"
)

// CommentView is a comment as listed under a post.
type CommentView struct {
	models.Comment
	IsLiked bool `json:"isLiked"`
}

// MyComment is a top-level comment of the caller with the title of its post.
type MyComment struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	ParentID  *uint     `json:"parent_id"`
	UserID    string    `json:"user_id"`
	Nickname  string    `json:"nickname"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
}

type AddCommentInput struct {
	PostID   uint
	UserID   string
	Text     string
	ParentID *uint
}

type CommentService struct {
	db        *gorm.DB
	nicknames *NicknameAllocator
	authors   *PostAuthors
}

func NewCommentService(conn *gorm.DB, nicknames *NicknameAllocator, authors *PostAuthors) *CommentService {
	return &CommentService{db: conn, nicknames: nicknames, authors: authors}
}

// List returns every comment of the post oldest first. An unknown post yields an empty list.
func (s *CommentService) List(ctx context.Context, postID uint, viewerID string) ([]CommentView, error) {
	conn := s.db.WithContext(ctx)

	var comments []models.Comment
	if err := conn.Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, apperr.Store(err, "댓글 조회 실패")
	}

	views := make([]CommentView, len(comments))
	for i, c := range comments {
		views[i] = CommentView{Comment: c}
	}
	if viewerID == "" || len(comments) == 0 {
		return views, nil
	}

	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	liked, err := likedTargets(conn, viewerID, []models.TargetType{models.TargetComment, models.TargetReply}, ids)
	if err != nil {
		return nil, apperr.Store(err, "좋아요 조회 실패")
	}
	for i := range views {
		views[i].IsLiked = liked[targetKey{views[i].TargetType(), views[i].ID}]
	}
	return views, nil
}

// Add stores a comment or reply under the commenter's per-post nickname.
func (s *CommentService) Add(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	text := utils.SanitizeText(in.Text)
	if in.PostID == 0 || strings.TrimSpace(in.UserID) == "" || text == "" {
		return nil, apperr.Validation("필수 항목 누락")
	}

	comment := models.Comment{
		PostID:   in.PostID,
		ParentID: in.ParentID,
		UserID:   in.UserID,
		Text:     text,
	}
	err := s.nicknames.Within(ctx, s.db, in.PostID, func(tx *gorm.DB) error {
		authorID, err := s.authors.Lookup(tx, in.PostID)
		if err != nil {
			return err
		}
		if in.ParentID != nil {
			if err := checkParent(tx, in.PostID, *in.ParentID); err != nil {
				return err
			}
		}

		nickname, err := s.nicknames.Allocate(tx, in.PostID, authorID, in.UserID)
		if err != nil {
			return err
		}
		comment.ID = 0
		comment.Nickname = nickname
		return tx.Create(&comment).Error
	})
	if db.IsForeignKeyViolation(err) {
		// post deleted after its author was cached
		s.authors.Forget(in.PostID)
		return nil, apperr.NotFound("게시글을 찾을 수 없습니다.")
	}
	if err != nil {
		return nil, wrapStore(err, "댓글 작성 실패")
	}
	return &comment, nil
}

func checkParent(tx *gorm.DB, postID, parentID uint) error {
	var parent models.Comment
	err := tx.Select("id", "post_id").First(&parent, parentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Validation("원댓글을 찾을 수 없습니다.")
	}
	if err != nil {
		return err
	}
	if parent.PostID != postID {
		return apperr.Validation("다른 게시글의 댓글에는 답글을 달 수 없습니다.")
	}
	return nil
}

// Delete removes a comment with all of its replies and their likes.
// Only the comment owner or a teacher may do so.
func (s *CommentService) Delete(ctx context.Context, commentID uint, caller models.Identity) error {
	conn := s.db.WithContext(ctx)

	var comment models.Comment
	err := conn.First(&comment, commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("댓글을 찾을 수 없습니다.")
	}
	if err != nil {
		return apperr.Store(err, "댓글 조회 실패")
	}
	if comment.UserID != caller.ID && !caller.IsTeacher() {
		return apperr.Forbidden("본인 댓글만 삭제할 수 있습니다.")
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		ids, err := commentSubtree(tx, []uint{comment.ID})
		if err != nil {
			return err
		}
		return deleteComments(tx, ids)
	})
	if err != nil {
		return apperr.Store(err, "댓글 삭제 실패")
	}
	return nil
}

// commentSubtree returns roots plus every reply below them.
func commentSubtree(tx *gorm.DB, roots []uint) ([]uint, error) {
	all := append([]uint(nil), roots...)
	frontier := roots
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Comment{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		all = append(all, children...)
		frontier = children
	}
	return all, nil
}

func deleteComments(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("target_type IN ? AND target_id IN ?",
		[]string{string(models.TargetComment), string(models.TargetReply)}, ids).
		Delete(&models.Like{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
}

// Mine returns the caller's top-level comments newest first. Replies are left out.
func (s *CommentService) Mine(ctx context.Context, userID string) ([]MyComment, error) {
	var rows []MyComment
	err := s.db.WithContext(ctx).
		Table("comments").
		Select("comments.id, comments.post_id, comments.parent_id, comments.user_id, comments.nickname, comments.text, comments.created_at, posts.title").
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("comments.user_id = ? AND comments.parent_id IS NULL", userID).
		Order("comments.created_at DESC, comments.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Store(err, "내 댓글 조회 실패")
	}
	if rows == nil {
		rows = []MyComment{}
	}
	return rows, nil
}
