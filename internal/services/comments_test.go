package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"schoolhub/internal/apperr"
	"schoolhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCommentNicknames(t *testing.T) {
	svc, conn := newCommentService(t)
	ctx := context.Background()
	post := createPost(t, conn, alice.ID)

	add := func(user models.Identity, text string) *models.Comment {
		c, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: user.ID, Text: text})
		require.NoError(t, err)
		return c
	}

	assert.Equal(t, "익명1", add(bob, "첫 댓글").Nickname)
	assert.Equal(t, "익명2", add(carol, "저도요").Nickname)
	assert.Equal(t, "익명1", add(bob, "또 왔어요").Nickname)
	assert.Equal(t, AuthorNickname, add(alice, "감사합니다").Nickname)
	assert.Equal(t, AuthorNickname, add(alice, "한 번 더").Nickname)

	views, err := svc.List(ctx, post.ID, "")
	require.NoError(t, err)
	var names []string
	for _, v := range views {
		names = append(names, v.Nickname)
	}
	assert.Equal(t, []string{"익명1", "익명2", "익명1", AuthorNickname, AuthorNickname}, names)
}

func TestNicknamesAreScopedPerPost(t *testing.T) {
	svc, conn := newCommentService(t)
	ctx := context.Background()
	first := createPost(t, conn, alice.ID)
	second := createPost(t, conn, bob.ID)

	c, err := svc.Add(ctx, AddCommentInput{PostID: first.ID, UserID: carol.ID, Text: "a"})
	require.NoError(t, err)
	assert.Equal(t, "익명1", c.Nickname)

	c, err = svc.Add(ctx, AddCommentInput{PostID: second.ID, UserID: alice.ID, Text: "b"})
	require.NoError(t, err)
	assert.Equal(t, "익명1", c.Nickname)

	c, err = svc.Add(ctx, AddCommentInput{PostID: second.ID, UserID: bob.ID, Text: "c"})
	require.NoError(t, err)
	assert.Equal(t, AuthorNickname, c.Nickname)
}

func TestNicknameNumbersAreNotReused(t *testing.T) {
	svc, conn := newCommentService(t)
	ctx := context.Background()
	post := createPost(t, conn, alice.ID)

	first, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "a"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, first.ID, bob))

	c, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: carol.ID, Text: "b"})
	require.NoError(t, err)
	assert.Equal(t, "익명2", c.Nickname)

	c, err = svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "c"})
	require.NoError(t, err)
	assert.Equal(t, "익명1", c.Nickname)
}

func TestConcurrentFirstCommentersGetDistinctNicknames(t *testing.T) {
	svc, conn := newCommentService(t)
	ctx := context.Background()
	post := createPost(t, conn, alice.ID)

	const n = 12
	var wg sync.WaitGroup
	results := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: fmt.Sprintf("user-%d", i), Text: "동시에"})
			errs[i] = err
			if err == nil {
				results[i] = c.Nickname
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[results[i]], "duplicate nickname %s", results[i])
		seen[results[i]] = true
	}
	for k := 1; k <= n; k++ {
		assert.True(t, seen[fmt.Sprintf("익명%d", k)], "missing 익명%d", k)
	}
}

func TestAddCommentValidation(t *testing.T) {
	svc, conn := newCommentService(t)
	ctx := context.Background()
	post := createPost(t, conn, alice.ID)
	other := createPost(t, conn, alice.ID)

	_, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "   "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: "", Text: "hi"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Add(ctx, AddCommentInput{PostID: 0, UserID: bob.ID, Text: "hi"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Add(ctx, AddCommentInput{PostID: 9999, UserID: bob.ID, Text: "hi"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	missing := uint(9999)
	_, err = svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "hi", ParentID: &missing})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	foreign, err := svc.Add(ctx, AddCommentInput{PostID: other.ID, UserID: bob.ID, Text: "elsewhere"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "hi", ParentID: &foreign.ID})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAddCommentStripsMarkup(t *testing.T) {
	svc, conn := newCommentService(t)
	post := createPost(t, conn, alice.ID)

	c, err := svc.Add(context.Background(), AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "<b>안녕</b><script>x()</script>"})
	require.NoError(t, err)
	assert.Equal(t, "안녕", c.Text)
}

func TestListCommentsOrderAndLikes(t *testing.T) {
	svc, conn := newCommentService(t)
	ctx := context.Background()
	post := createPost(t, conn, alice.ID)
	likes := NewLikeService(conn)

	top, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "1"})
	require.NoError(t, err)
	reply, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: carol.ID, Text: "2", ParentID: &top.ID})
	require.NoError(t, err)
	_, err = svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: alice.ID, Text: "3"})
	require.NoError(t, err)

	_, err = likes.SetLike(ctx, alice.ID, models.TargetReply, reply.ID, true)
	require.NoError(t, err)

	views, err := svc.List(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	for i := 1; i < len(views); i++ {
		assert.False(t, views[i].CreatedAt.Before(views[i-1].CreatedAt))
	}
	assert.False(t, views[0].IsLiked)
	assert.True(t, views[1].IsLiked)
	assert.Equal(t, &top.ID, views[1].ParentID)
	assert.False(t, views[2].IsLiked)

	anon, err := svc.List(ctx, post.ID, "")
	require.NoError(t, err)
	for _, v := range anon {
		assert.False(t, v.IsLiked)
	}
}

func TestListCommentsUnknownPostIsEmpty(t *testing.T) {
	svc, _ := newCommentService(t)

	views, err := svc.List(context.Background(), 424242, bob.ID)
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestDeleteCommentRemovesReplies(t *testing.T) {
	svc, conn := newCommentService(t)
	ctx := context.Background()
	post := createPost(t, conn, alice.ID)
	likes := NewLikeService(conn)

	top, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "top"})
	require.NoError(t, err)
	reply, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: carol.ID, Text: "reply", ParentID: &top.ID})
	require.NoError(t, err)
	nested, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: alice.ID, Text: "nested", ParentID: &reply.ID})
	require.NoError(t, err)
	keep, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: carol.ID, Text: "keep"})
	require.NoError(t, err)

	_, err = likes.SetLike(ctx, alice.ID, models.TargetReply, reply.ID, true)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, top.ID, bob))

	var children int64
	require.NoError(t, conn.Model(&models.Comment{}).Where("parent_id IN ?", []uint{top.ID, reply.ID}).Count(&children).Error)
	assert.Zero(t, children)

	var remaining []models.Comment
	require.NoError(t, conn.Where("post_id = ?", post.ID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].ID)
	assert.NotEqual(t, nested.ID, remaining[0].ID)

	var likeRows int64
	require.NoError(t, conn.Model(&models.Like{}).Where("target_id = ?", reply.ID).Count(&likeRows).Error)
	assert.Zero(t, likeRows)
}

func TestDeleteCommentAuthorization(t *testing.T) {
	svc, conn := newCommentService(t)
	ctx := context.Background()
	post := createPost(t, conn, alice.ID)

	c, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "mine"})
	require.NoError(t, err)

	err = svc.Delete(ctx, c.ID, carol)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, svc.Delete(ctx, c.ID, teacher))

	err = svc.Delete(ctx, c.ID, bob)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestMyCommentsExcludesReplies(t *testing.T) {
	svc, conn := newCommentService(t)
	ctx := context.Background()
	post := createPost(t, conn, alice.ID)

	first, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "first"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "reply", ParentID: &first.ID})
	require.NoError(t, err)
	second, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "second"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: carol.ID, Text: "not bob"})
	require.NoError(t, err)

	mine, err := svc.Mine(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
	for _, c := range mine {
		assert.Nil(t, c.ParentID)
		assert.Equal(t, post.Title, c.Title)
	}

	none, err := svc.Mine(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAddCommentAfterPostDeletedBehindCache(t *testing.T) {
	svc, conn := newCommentService(t)
	ctx := context.Background()
	post := createPost(t, conn, alice.ID)

	_, err := svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "먼저 왔어요"})
	require.NoError(t, err)
	_, cached := svc.authors.cache.Get(post.ID)
	require.True(t, cached)

	// a delete racing with the first Add can leave the author cached
	require.NoError(t, conn.Delete(&models.Post{}, post.ID).Error)

	_, err = svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: carol.ID, Text: "늦은 댓글"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, cached = svc.authors.cache.Get(post.ID)
	assert.False(t, cached)

	_, err = svc.Add(ctx, AddCommentInput{PostID: post.ID, UserID: bob.ID, Text: "또"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
