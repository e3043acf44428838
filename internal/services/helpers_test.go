package services

import (
	"testing"

	"schoolhub/internal/db/dbtest"
	"schoolhub/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	alice   = models.Identity{ID: "1101", Name: "김하늘", Role: models.RoleStudent}
	bob     = models.Identity{ID: "1102", Name: "이서준", Role: models.RoleStudent}
	carol   = models.Identity{ID: "1203", Name: "박지우", Role: models.RoleStudent}
	teacher = models.Identity{ID: "김선생", Name: "김선생", Role: models.RoleTeacher}
)

func newCommentService(t *testing.T) (*CommentService, *gorm.DB) {
	t.Helper()
	conn := dbtest.New(t)
	alloc := NewNicknameAllocator(5, nil, zap.NewNop())
	return NewCommentService(conn, alloc, NewPostAuthors(64)), conn
}

func createPost(t *testing.T, conn *gorm.DB, authorID string) models.Post {
	t.Helper()
	post := models.Post{Title: "급식 후기", Content: "오늘 급식 맛있었다", AuthorID: authorID}
	require.NoError(t, conn.Create(&post).Error)
	return post
}
