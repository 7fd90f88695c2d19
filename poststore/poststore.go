// Package poststore creates posts and applies likes and comments to them.
package poststore

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Luismorlan/socialmux/file_store"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/utils"
	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxCommentLength = 1000
)

type Service struct {
	users            store.UserStore
	posts            store.PostStore
	pictures         file_store.PictureStore
	stats            utils.StatsReporter
	maxCommentLength int
}

func NewService(users store.UserStore, posts store.PostStore, pictures file_store.PictureStore, stats utils.StatsReporter, maxCommentLength int) *Service {
	if maxCommentLength <= 0 {
		maxCommentLength = DefaultMaxCommentLength
	}
	if stats == nil {
		stats = utils.NoopStats
	}
	return &Service{
		users:            users,
		posts:            posts,
		pictures:         pictures,
		stats:            stats,
		maxCommentLength: maxCommentLength,
	}
}

// CreatePost publishes a post for authorId. The author's name, location and
// picture are copied into the post as they are now.
func (s *Service) CreatePost(ctx context.Context, authorId, description string, picture *file_store.Upload) (*model.Post, error) {
	author, err := s.users.GetUserById(ctx, authorId)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Id:              uuid.New().String(),
		UserId:          author.Id,
		FirstName:       author.FirstName,
		LastName:        author.LastName,
		Location:        author.Location,
		UserPicturePath: author.PicturePath,
		Description:     description,
	}
	if picture != nil {
		key, err := s.pictures.Store(ctx, picture.FileName, picture.Body)
		if err != nil {
			return nil, errors.Wrap(err, "fail to store post picture")
		}
		post.PicturePath = s.pictures.GetUrlFromKey(key)
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	Logger.Log.WithFields(logrus.Fields{"post_id": post.Id, "user_id": author.Id}).Info("post created")
	utils.ReportIncr(s.stats, utils.StatPostCreated)
	return post, nil
}

// ListFeed returns every post, newest first.
func (s *Service) ListFeed(ctx context.Context) ([]*model.Post, error) {
	return s.posts.ListPosts(ctx)
}

// ListByAuthor returns the posts of userId, newest first.
func (s *Service) ListByAuthor(ctx context.Context, userId string) ([]*model.Post, error) {
	return s.posts.ListPostsByUser(ctx, userId)
}

// ToggleLike adds userId to the post's like-set, or removes it if present.
func (s *Service) ToggleLike(ctx context.Context, postId, userId string) (*model.Post, error) {
	post, err := s.posts.ToggleLike(ctx, postId, userId)
	if err != nil {
		return nil, err
	}
	Logger.Log.WithFields(logrus.Fields{"post_id": postId, "user_id": userId, "liked": post.HasLike(userId)}).Debug("like toggled")
	utils.ReportIncr(s.stats, utils.StatPostLiked)
	return post, nil
}

// AddComment appends a comment by authorId. Text is trimmed and must not be
// empty or longer than the configured number of characters.
func (s *Service) AddComment(ctx context.Context, postId, authorId, text string) (*model.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, utils.NewError(utils.ErrValidation, "commentText is required")
	}
	if utf8.RuneCountInString(text) > s.maxCommentLength {
		return nil, utils.NewError(utils.ErrValidation, "comment must be at most %d characters", s.maxCommentLength)
	}

	post, err := s.posts.AppendComment(ctx, postId, &model.Comment{
		UserId: authorId,
		Text:   text,
	})
	if err != nil {
		return nil, err
	}
	utils.ReportIncr(s.stats, utils.StatPostCommented)
	return post, nil
}

// CountStats sums posts, likes and comments over all posts of userId.
func (s *Service) CountStats(ctx context.Context, userId string) (model.PostStats, error) {
	return s.posts.CountStats(ctx, userId)
}
