package poststore

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Luismorlan/socialmux/file_store"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *store.MemoryStore) {
	s := store.NewMemoryStore()
	for _, id := range []string{"alice", "bob"} {
		require.Nil(t, s.CreateUser(context.Background(), &model.User{
			Id:           id,
			FirstName:    strings.Title(id),
			LastName:     "Doe",
			Email:        id + "@x.com",
			PasswordHash: "hash",
			Location:     "Paris",
			PicturePath:  id + ".png",
		}))
	}
	return NewService(s, s, file_store.NewFakeFileStore(), nil, 0), s
}

func TestCreatePostSnapshotsAuthor(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	post, err := svc.CreatePost(ctx, "alice", "hello world", nil)
	require.Nil(t, err)
	assert.Equal(t, "alice", post.UserId)
	assert.Equal(t, "Alice", post.FirstName)
	assert.Equal(t, "Doe", post.LastName)
	assert.Equal(t, "Paris", post.Location)
	assert.Equal(t, "alice.png", post.UserPicturePath)
	assert.Equal(t, "hello world", post.Description)
	assert.Empty(t, post.PicturePath)
	assert.Empty(t, post.Likes)
	assert.Empty(t, post.Comments)

	_, err = svc.CreatePost(ctx, "ghost", "boo", nil)
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestCreatePostWithPicture(t *testing.T) {
	svc, _ := newTestService(t)
	pictures := file_store.NewFakeFileStore()
	pictures.UrlPrefix = "/assets/"
	svc.pictures = pictures
	post, err := svc.CreatePost(context.Background(), "alice", "look", &file_store.Upload{
		FileName: "sunset.jpg",
		Body:     bytes.NewBufferString("jpg"),
	})
	require.Nil(t, err)
	assert.Regexp(t, `^/assets/\d+-sunset\.jpg$`, post.PicturePath)
	assert.Len(t, pictures.Files, 1)
}

func TestToggleLikeTwiceRestoresLikeSet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	post, err := svc.CreatePost(ctx, "alice", "like me", nil)
	require.Nil(t, err)

	liked, err := svc.ToggleLike(ctx, post.Id, "bob")
	require.Nil(t, err)
	assert.Equal(t, []string{"bob"}, liked.Likes)
	assert.True(t, liked.HasLike("bob"))

	unliked, err := svc.ToggleLike(ctx, post.Id, "bob")
	require.Nil(t, err)
	assert.Empty(t, unliked.Likes)

	_, err = svc.ToggleLike(ctx, "no-such-post", "bob")
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestAddCommentKeepsSubmissionOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	post, err := svc.CreatePost(ctx, "alice", "discuss", nil)
	require.Nil(t, err)

	_, err = svc.AddComment(ctx, post.Id, "bob", "  first  ")
	require.Nil(t, err)
	updated, err := svc.AddComment(ctx, post.Id, "alice", "second")
	require.Nil(t, err)

	require.Len(t, updated.Comments, 2)
	assert.Equal(t, "first", updated.Comments[0].Text)
	assert.Equal(t, "bob", updated.Comments[0].UserId)
	assert.Equal(t, "second", updated.Comments[1].Text)
	assert.False(t, updated.Comments[1].CreatedAt.Before(updated.Comments[0].CreatedAt))
}

func TestAddCommentValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	post, err := svc.CreatePost(ctx, "alice", "discuss", nil)
	require.Nil(t, err)

	_, err = svc.AddComment(ctx, post.Id, "bob", "   ")
	assert.True(t, errors.Is(err, utils.ErrValidation))

	_, err = svc.AddComment(ctx, post.Id, "bob", strings.Repeat("é", DefaultMaxCommentLength+1))
	assert.True(t, errors.Is(err, utils.ErrValidation))

	// the bound counts characters, not bytes
	_, err = svc.AddComment(ctx, post.Id, "bob", strings.Repeat("é", DefaultMaxCommentLength))
	assert.Nil(t, err)

	_, err = svc.AddComment(ctx, "no-such-post", "bob", "hi")
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestFeedOrderAndStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	first, err := svc.CreatePost(ctx, "alice", "first", nil)
	require.Nil(t, err)
	_, err = svc.CreatePost(ctx, "bob", "second", nil)
	require.Nil(t, err)
	third, err := svc.CreatePost(ctx, "alice", "third", nil)
	require.Nil(t, err)

	feed, err := svc.ListFeed(ctx)
	require.Nil(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{feed[0].Description, feed[1].Description, feed[2].Description})

	mine, err := svc.ListByAuthor(ctx, "alice")
	require.Nil(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third.Id, mine[0].Id)
	assert.Equal(t, first.Id, mine[1].Id)

	_, err = svc.ToggleLike(ctx, first.Id, "bob")
	require.Nil(t, err)
	_, err = svc.ToggleLike(ctx, third.Id, "bob")
	require.Nil(t, err)
	_, err = svc.ToggleLike(ctx, third.Id, "alice")
	require.Nil(t, err)
	_, err = svc.AddComment(ctx, first.Id, "bob", "nice")
	require.Nil(t, err)

	stats, err := svc.CountStats(ctx, "alice")
	require.Nil(t, err)
	assert.Equal(t, model.PostStats{TotalPosts: 2, TotalLikes: 3, TotalComments: 1}, stats)

	empty, err := svc.CountStats(ctx, "nobody")
	require.Nil(t, err)
	assert.Equal(t, model.PostStats{}, empty)
}
