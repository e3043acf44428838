package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"schoolhub/internal/apperr"
	"schoolhub/internal/db"
	"schoolhub/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthorNickname is what the post author is called in their own thread.
const AuthorNickname = "익명(작성자)"

var anonPattern = regexp.MustCompile(`^익명(\d+)$`)

// MaxAnonymousNumber returns the highest N among "익명N" nicknames, or 0.
func MaxAnonymousNumber(nicknames []string) int {
	highest := 0
	for _, name := range nicknames {
		m := anonPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest
}

// ResolveNickname picks the nickname userID comments under on a post.
// aliases maps user id to the nickname already given on that post.
// fresh is true when a new "익명N" was allocated and must be recorded.
func ResolveNickname(postAuthorID, userID string, aliases map[string]string) (nickname string, fresh bool) {
	if userID == postAuthorID {
		return AuthorNickname, false
	}
	if name, ok := aliases[userID]; ok {
		return name, false
	}

	names := make([]string, 0, len(aliases))
	for _, name := range aliases {
		names = append(names, name)
	}
	return "익명" + strconv.Itoa(MaxAnonymousNumber(names)+1), true
}

type postLock struct {
	mu   sync.Mutex
	refs int
}

// NicknameAllocator hands out per-post anonymous nicknames.
//
// Inside one process allocations for the same post take turns on a keyed
// mutex. Across processes the unique indexes on comment_aliases reject the
// loser, whose transaction is then retried from scratch.
type NicknameAllocator struct {
	mu         sync.Mutex
	locks      map[uint]*postLock
	maxRetries int
	retries    prometheus.Counter
	log        *zap.Logger
}

// NewNicknameAllocator registers its retry counter on reg; a nil reg skips registration.
func NewNicknameAllocator(maxRetries int, reg prometheus.Registerer, log *zap.Logger) *NicknameAllocator {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &NicknameAllocator{
		locks:      make(map[uint]*postLock),
		maxRetries: maxRetries,
		retries: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nickname_allocation_retries_total",
			Help: "Comment transactions retried after a nickname allocation conflict.",
		}),
		log: log,
	}
}

// lock takes the mutex of postID and returns its release func.
// Entries are dropped once nobody holds or waits on them.
func (a *NicknameAllocator) lock(postID uint) func() {
	a.mu.Lock()
	l, ok := a.locks[postID]
	if !ok {
		l = &postLock{}
		a.locks[postID] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, postID)
		}
		a.mu.Unlock()
	}
}

// Within runs fn in a transaction while holding the post's allocation lock.
// Duplicate-key failures restart the whole transaction, up to the retry limit.
func (a *NicknameAllocator) Within(ctx context.Context, conn *gorm.DB, postID uint, fn func(tx *gorm.DB) error) error {
	unlock := a.lock(postID)
	defer unlock()

	var err error
	for attempt := 1; attempt <= a.maxRetries; attempt++ {
		err = conn.WithContext(ctx).Transaction(fn)
		if err == nil || !db.IsDuplicateKey(err) {
			return err
		}
		if attempt < a.maxRetries {
			a.retries.Inc()
			a.log.Warn("nickname allocation conflict, retrying",
				zap.Uint("post_id", postID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
	}
	a.log.Error("nickname allocation gave up", zap.Uint("post_id", postID), zap.Error(err))
	return apperr.Conflict("잠시 후 다시 시도해주세요.")
}

// Allocate resolves userID's nickname on the post and records a new alias when needed.
// It must run on the transaction handed out by Within.
func (a *NicknameAllocator) Allocate(tx *gorm.DB, postID uint, postAuthorID, userID string) (string, error) {
	var rows []models.CommentAlias
	if err := tx.Where("post_id = ?", postID).Find(&rows).Error; err != nil {
		return "", fmt.Errorf("load aliases: %w", err)
	}

	aliases := make(map[string]string, len(rows))
	for _, r := range rows {
		aliases[r.UserID] = r.Nickname
	}

	nickname, fresh := ResolveNickname(postAuthorID, userID, aliases)
	if !fresh {
		return nickname, nil
	}

	alias := models.CommentAlias{PostID: postID, UserID: userID, Nickname: nickname}
	if err := tx.Create(&alias).Error; err != nil {
		return "", err
	}
	return nickname, nil
}
