package services

import (
	"errors"

	"schoolhub/internal/apperr"
	"schoolhub/internal/models"
	"schoolhub/internal/utils"

	"gorm.io/gorm"
)

// PostAuthors caches post author ids, which never change after creation.
type PostAuthors struct {
	cache *utils.TTLCache[uint, string]
}

func NewPostAuthors(size int) *PostAuthors {
	c, err := utils.NewTTLCache[uint, string](size, 0)
	if err != nil {
		panic(err) // only fails for size <= 0
	}
	return &PostAuthors{cache: c}
}

// Lookup returns the author of postID, or NotFound when the post does not exist.
func (p *PostAuthors) Lookup(conn *gorm.DB, postID uint) (string, error) {
	if author, ok := p.cache.Get(postID); ok {
		return author, nil
	}

	var post models.Post
	err := conn.Select("id", "author_id").First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.NotFound("게시글을 찾을 수 없습니다.")
	}
	if err != nil {
		return "", apperr.Store(err, "게시글 조회 실패")
	}

	p.cache.Set(postID, post.AuthorID)
	return post.AuthorID, nil
}

// Forget drops a deleted post from the cache.
func (p *PostAuthors) Forget(postID uint) {
	p.cache.Delete(postID)
}
