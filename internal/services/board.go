package services

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"time"

	"schoolhub/internal/apperr"
	"schoolhub/internal/models"
	"schoolhub/internal/utils"

	"gorm.io/gorm"
)

// PostView is a post with the viewer's like and bookmark flags.
type PostView struct {
	models.Post
	IsLiked      bool `json:"isLiked"`
	IsBookmarked bool `json:"isBookmarked"`
}

type PostDetail struct {
	PostView
	ContentHTML template.HTML `json:"content_html"`
}

type MyPost struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type BoardService struct {
	db      *gorm.DB
	authors *PostAuthors
}

func NewBoardService(conn *gorm.DB, authors *PostAuthors) *BoardService {
	return &BoardService{db: conn, authors: authors}
}

// List returns every post newest first.
func (s *BoardService) List(ctx context.Context, viewerID string) ([]PostView, error) {
	conn := s.db.WithContext(ctx)

	var posts []models.Post
	if err := conn.Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, apperr.Store(err, "게시글 조회 실패")
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = PostView{Post: p}
	}
	if err := s.attachFlags(conn, viewerID, views); err != nil {
		return nil, apperr.Store(err, "게시글 조회 실패")
	}
	return views, nil
}

func (s *BoardService) attachFlags(conn *gorm.DB, viewerID string, views []PostView) error {
	if viewerID == "" || len(views) == 0 {
		return nil
	}
	ids := make([]uint, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	rows, err := likeRows(conn, viewerID, []models.TargetType{models.TargetPost}, ids)
	if err != nil {
		return err
	}
	byPost := make(map[uint]models.Like, len(rows))
	for _, r := range rows {
		byPost[r.TargetID] = r
	}
	for i := range views {
		r := byPost[views[i].ID]
		views[i].IsLiked = r.IsLiked
		views[i].IsBookmarked = r.IsBookmarked
	}
	return nil
}

// Create publishes a post. Content is kept as written and rendered on read.
func (s *BoardService) Create(ctx context.Context, authorID, title, content string) (*models.Post, error) {
	title = utils.SanitizeText(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, apperr.Validation("제목과 내용을 입력해주세요.")
	}
	if len([]rune(title)) > 255 {
		return nil, apperr.Validation("제목이 너무 깁니다.")
	}

	post := models.Post{Title: title, Content: content, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, apperr.Store(err, "게시글 작성 실패")
	}
	return &post, nil
}

// Get returns one post with its rendered body.
func (s *BoardService) Get(ctx context.Context, id uint, viewerID string) (*PostDetail, error) {
	conn := s.db.WithContext(ctx)

	var post models.Post
	err := conn.First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("게시글을 찾을 수 없습니다.")
	}
	if err != nil {
		return nil, apperr.Store(err, "게시글 조회 실패")
	}

	views := []PostView{{Post: post}}
	if err := s.attachFlags(conn, viewerID, views); err != nil {
		return nil, apperr.Store(err, "게시글 조회 실패")
	}
	return &PostDetail{
		PostView:    views[0],
		ContentHTML: utils.RenderMarkdown(post.Content),
	}, nil
}

// Delete removes a post together with its comments, aliases and every like that points at them.
func (s *BoardService) Delete(ctx context.Context, id uint, caller models.Identity) error {
	conn := s.db.WithContext(ctx)

	var post models.Post
	err := conn.Select("id", "author_id").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("게시글을 찾을 수 없습니다.")
	}
	if err != nil {
		return apperr.Store(err, "게시글 조회 실패")
	}
	if post.AuthorID != caller.ID && !caller.IsTeacher() {
		return apperr.Forbidden("본인 글만 삭제할 수 있습니다.")
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if err := deleteComments(tx, commentIDs); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.CommentAlias{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetPost, id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return apperr.Store(err, "게시글 삭제 실패")
	}
	s.authors.Forget(id)
	return nil
}

// Mine returns the caller's posts newest first.
func (s *BoardService) Mine(ctx context.Context, userID string) ([]MyPost, error) {
	rows := []MyPost{}
	err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("id", "title", "content", "created_at").
		Where("author_id = ?", userID).
		Order("created_at DESC, id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Store(err, "내 글 조회 실패")
	}
	return rows, nil
}
