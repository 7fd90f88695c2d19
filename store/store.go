// Package store persists users, friend edges and posts. Every method returns
// errors classified with the kinds in utils/errors.go.
package store

import (
	"context"

	"github.com/Luismorlan/socialmux/model"
)

type UserStore interface {
	// CreateUser inserts u, failing with ErrConflict if the email is taken.
	CreateUser(ctx context.Context, u *model.User) error
	// GetUserById returns the user with its friend ids, ErrNotFound if absent.
	GetUserById(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// GetUsersByIds returns the users that exist, in the order of ids. Ids
	// that do not resolve are skipped.
	GetUsersByIds(ctx context.Context, ids []string) ([]*model.User, error)
	// ListUsersExcept returns every user but id, oldest first.
	ListUsersExcept(ctx context.Context, id string) ([]*model.User, error)
	UpdatePasswordHash(ctx context.Context, id string, hash string) error

	// SetFriendship makes a and b friends (present) or strangers (!present).
	// Both directed edges are written atomically. Calling it twice with the
	// same arguments is a no-op.
	SetFriendship(ctx context.Context, a, b string, present bool) error
	// AddFriendEdge inserts a single directed edge, ignoring duplicates.
	AddFriendEdge(ctx context.Context, edge model.FriendEdge) error
	// ListAsymmetricEdges returns directed edges whose reverse is missing.
	ListAsymmetricEdges(ctx context.Context) ([]model.FriendEdge, error)
	// HasFriendEdge reports whether the directed edge exists.
	HasFriendEdge(ctx context.Context, edge model.FriendEdge) (bool, error)
}

type PostStore interface {
	CreatePost(ctx context.Context, p *model.Post) error
	// GetPost returns the post with likes and comments, ErrNotFound if absent.
	GetPost(ctx context.Context, id string) (*model.Post, error)
	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]*model.Post, error)
	// ListPostsByUser returns the posts of userId, newest first.
	ListPostsByUser(ctx context.Context, userId string) ([]*model.Post, error)
	// ToggleLike removes userId from the like-set if present, adds it
	// otherwise, and returns the updated post.
	ToggleLike(ctx context.Context, postId, userId string) (*model.Post, error)
	// AppendComment appends c to the post and returns the updated post.
	AppendComment(ctx context.Context, postId string, c *model.Comment) (*model.Post, error)
	CountStats(ctx context.Context, userId string) (model.PostStats, error)
}

// Store bundles everything the services need.
type Store interface {
	UserStore
	PostStore
	Close() error
}
