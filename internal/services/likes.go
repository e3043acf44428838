package services

import (
	"context"
	"errors"

	"schoolhub/internal/apperr"
	"schoolhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type targetKey struct {
	Type models.TargetType
	ID   uint
}

// likeFlag is a boolean column of the likes table.
type likeFlag string

const (
	flagLiked      likeFlag = "is_liked"
	flagBookmarked likeFlag = "is_bookmarked"
)

type LikeService struct {
	db *gorm.DB
}

func NewLikeService(conn *gorm.DB) *LikeService {
	return &LikeService{db: conn}
}

// SetLike likes or unlikes a target and returns its like count.
func (s *LikeService) SetLike(ctx context.Context, userID string, target models.TargetType, targetID uint, liked bool) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTarget(tx, target, targetID); err != nil {
			return err
		}
		if err := setFlag(tx, userID, target, targetID, flagLiked, liked); err != nil {
			return err
		}

		if err := tx.Model(&models.Like{}).
			Where("target_type = ? AND target_id = ? AND is_liked = ?", target, targetID, true).
			Count(&count).Error; err != nil {
			return err
		}
		if target == models.TargetPost {
			return tx.Model(&models.Post{}).Where("id = ?", targetID).UpdateColumn("likes", count).Error
		}
		return nil
	})
	if err != nil {
		return 0, wrapStore(err, "좋아요 처리 실패")
	}
	return count, nil
}

// SetBookmark bookmarks or un-bookmarks a target.
func (s *LikeService) SetBookmark(ctx context.Context, userID string, target models.TargetType, targetID uint, bookmarked bool) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTarget(tx, target, targetID); err != nil {
			return err
		}
		return setFlag(tx, userID, target, targetID, flagBookmarked, bookmarked)
	})
	if err != nil {
		return wrapStore(err, "북마크 처리 실패")
	}
	return nil
}

// LikedPosts returns the posts the user liked, newest first.
func (s *LikeService) LikedPosts(ctx context.Context, userID string) ([]models.Post, error) {
	posts, err := s.postsFlagged(ctx, userID, flagLiked)
	if err != nil {
		return nil, apperr.Store(err, "좋아요한 글 조회 실패")
	}
	return posts, nil
}

// BookmarkedPosts returns the posts the user bookmarked, newest first.
func (s *LikeService) BookmarkedPosts(ctx context.Context, userID string) ([]models.Post, error) {
	posts, err := s.postsFlagged(ctx, userID, flagBookmarked)
	if err != nil {
		return nil, apperr.Store(err, "북마크 조회 실패")
	}
	return posts, nil
}

func (s *LikeService) postsFlagged(ctx context.Context, userID string, flag likeFlag) ([]models.Post, error) {
	posts := []models.Post{}
	err := s.db.WithContext(ctx).
		Joins("JOIN likes ON likes.target_id = posts.id AND likes.target_type = ?", models.TargetPost).
		Where("likes.user_id = ? AND likes."+string(flag)+" = ?", userID, true).
		Order("posts.created_at DESC, posts.id DESC").
		Find(&posts).Error
	return posts, err
}

func checkTarget(tx *gorm.DB, target models.TargetType, targetID uint) error {
	var n int64
	var err error
	switch target {
	case models.TargetPost:
		err = tx.Model(&models.Post{}).Where("id = ?", targetID).Count(&n).Error
	case models.TargetComment:
		err = tx.Model(&models.Comment{}).Where("id = ? AND parent_id IS NULL", targetID).Count(&n).Error
	case models.TargetReply:
		err = tx.Model(&models.Comment{}).Where("id = ? AND parent_id IS NOT NULL", targetID).Count(&n).Error
	default:
		return apperr.Validation("잘못된 대상입니다.")
	}
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("대상을 찾을 수 없습니다.")
	}
	return nil
}

// setFlag turns one flag of the user's row on or off.
// The row is created on demand and removed once no flag is left.
func setFlag(tx *gorm.DB, userID string, target models.TargetType, targetID uint, flag likeFlag, on bool) error {
	if on {
		row := models.Like{UserID: userID, TargetType: target, TargetID: targetID}
		if flag == flagLiked {
			row.IsLiked = true
		} else {
			row.IsBookmarked = true
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_type"}, {Name: "target_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{string(flag): true}),
		}).Create(&row).Error
	}

	where := tx.Model(&models.Like{}).Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target, targetID)
	if err := where.UpdateColumn(string(flag), false).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ? AND target_type = ? AND target_id = ? AND is_liked = ? AND is_bookmarked = ?",
		userID, target, targetID, false, false).
		Delete(&models.Like{}).Error
}

// likedTargets reports which of ids the user liked, for the given target types.
func likedTargets(conn *gorm.DB, userID string, types []models.TargetType, ids []uint) (map[targetKey]bool, error) {
	rows, err := likeRows(conn, userID, types, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[targetKey]bool, len(rows))
	for _, r := range rows {
		if r.IsLiked {
			out[targetKey{r.TargetType, r.TargetID}] = true
		}
	}
	return out, nil
}

// likeRows fetches the user's like rows for many targets in one query.
func likeRows(conn *gorm.DB, userID string, types []models.TargetType, ids []uint) ([]models.Like, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	var rows []models.Like
	err := conn.Where("user_id = ? AND target_type IN ? AND target_id IN ?", userID, names, ids).Find(&rows).Error
	return rows, err
}

// wrapStore passes taxonomy errors through and hides everything else behind msg.
func wrapStore(err error, msg string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Store(err, msg)
}
