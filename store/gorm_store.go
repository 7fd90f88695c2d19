package store

import (
	"context"
	"strings"
	"time"

	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	postOrder    = "posts.created_at desc, posts.id desc"
	commentOrder = "comments.id asc"
)

// GormStore is the PostgreSQL backed store. Multi-row writes run in a single
// transaction so a friendship is never left with only one side written.
type GormStore struct {
	db *gorm.DB
}

var _ Store = &GormStore{}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "SQLSTATE 23505") ||
		strings.Contains(err.Error(), "duplicate key value")
}

func notFoundOr(err error, msg string, wrap string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewError(utils.ErrNotFound, msg)
	}
	return errors.Wrap(err, wrap)
}

func (s *GormStore) CreateUser(ctx context.Context, u *model.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return errors.Wrap(err, "fail to check email uniqueness")
		}
		if count > 0 {
			return utils.NewError(utils.ErrConflict, "User with email %s already exists", u.Email)
		}
		if err := tx.Create(u).Error; err != nil {
			// Lost a race against a concurrent registration, the unique index
			// is the final arbiter.
			if isUniqueViolation(err) {
				return utils.NewError(utils.ErrConflict, "User with email %s already exists", u.Email)
			}
			return errors.Wrap(err, "fail to create user")
		}
		return nil
	})
	if err != nil {
		return err
	}
	u.Friends = []string{}
	return nil
}

// attachFriends populates Friends of every user with a single query.
func (s *GormStore) attachFriends(tx *gorm.DB, users []*model.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := []string{}
	for _, u := range users {
		ids = append(ids, u.Id)
		u.Friends = []string{}
	}
	var edges []model.FriendEdge
	if err := tx.Where("user_id IN ?", ids).Order("created_at asc").Find(&edges).Error; err != nil {
		return errors.Wrap(err, "fail to load friend edges")
	}
	friends := map[string][]string{}
	for _, e := range edges {
		friends[e.UserId] = append(friends[e.UserId], e.FriendId)
	}
	for _, u := range users {
		if f, ok := friends[u.Id]; ok {
			u.Friends = f
		}
	}
	return nil
}

func (s *GormStore) getUser(ctx context.Context, query string, arg string, notFoundMsg string) (*model.User, error) {
	tx := s.db.WithContext(ctx)
	var u model.User
	if err := tx.Where(query, arg).First(&u).Error; err != nil {
		return nil, notFoundOr(err, notFoundMsg, "fail to get user")
	}
	if err := s.attachFriends(tx, []*model.User{&u}); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) GetUserById(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, "id = ?", id, "User not found")
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, "email = ?", email, "User does not exist")
}

func (s *GormStore) GetUsersByIds(ctx context.Context, ids []string) ([]*model.User, error) {
	res := []*model.User{}
	if len(ids) == 0 {
		return res, nil
	}
	tx := s.db.WithContext(ctx)
	var users []*model.User
	if err := tx.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "fail to get users")
	}
	if err := s.attachFriends(tx, users); err != nil {
		return nil, err
	}
	byId := map[string]*model.User{}
	for _, u := range users {
		byId[u.Id] = u
	}
	for _, id := range ids {
		if u, ok := byId[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

func (s *GormStore) ListUsersExcept(ctx context.Context, id string) ([]*model.User, error) {
	tx := s.db.WithContext(ctx)
	users := []*model.User{}
	if err := tx.Where("id <> ?", id).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "fail to list users")
	}
	if err := s.attachFriends(tx, users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *GormStore) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return errors.Wrap(res.Error, "fail to update password")
	}
	if res.RowsAffected == 0 {
		return utils.NewError(utils.ErrNotFound, "User not found")
	}
	return nil
}

func (s *GormStore) SetFriendship(ctx context.Context, a, b string, present bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("id IN ?", []string{a, b}).Count(&count).Error; err != nil {
			return errors.Wrap(err, "fail to check users")
		}
		if count != 2 {
			return utils.NewError(utils.ErrNotFound, "User or friend not found")
		}

		if present {
			edges := []model.FriendEdge{{UserId: a, FriendId: b}, {UserId: b, FriendId: a}}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error; err != nil {
				return errors.Wrap(err, "fail to add friend edges")
			}
			return nil
		}

		err := tx.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
			Delete(&model.FriendEdge{}).Error
		return errors.Wrap(err, "fail to remove friend edges")
	})
}

func (s *GormStore) AddFriendEdge(ctx context.Context, edge model.FriendEdge) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error
	return errors.Wrap(err, "fail to add friend edge")
}

func (s *GormStore) HasFriendEdge(ctx context.Context, edge model.FriendEdge) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.FriendEdge{}).
		Where("user_id = ? AND friend_id = ?", edge.UserId, edge.FriendId).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "fail to check friend edge")
	}
	return count > 0, nil
}

func (s *GormStore) ListAsymmetricEdges(ctx context.Context) ([]model.FriendEdge, error) {
	edges := []model.FriendEdge{}
	// Edges pointing to a missing user are dangling references rather than
	// asymmetric edges, the inner join on users leaves them out.
	err := s.db.WithContext(ctx).Raw(`
		SELECT e.user_id, e.friend_id, e.created_at FROM friend_edges e
		JOIN users u ON u.id = e.friend_id
		LEFT JOIN friend_edges r ON r.user_id = e.friend_id AND r.friend_id = e.user_id
		WHERE r.user_id IS NULL
		ORDER BY e.user_id, e.friend_id`).Scan(&edges).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to list asymmetric friend edges")
	}
	return edges, nil
}

func preloadComments(db *gorm.DB) *gorm.DB {
	return db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order(commentOrder)
	})
}

// attachLikes populates the like-set of every post with a single query.
func (s *GormStore) attachLikes(tx *gorm.DB, posts []*model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := []string{}
	for _, p := range posts {
		ids = append(ids, p.Id)
		p.Likes = []string{}
		if p.Comments == nil {
			p.Comments = []model.Comment{}
		}
	}
	var likes []model.PostLike
	if err := tx.Where("post_id IN ?", ids).Order("user_id asc").Find(&likes).Error; err != nil {
		return errors.Wrap(err, "fail to load likes")
	}
	byPost := map[string][]string{}
	for _, l := range likes {
		byPost[l.PostId] = append(byPost[l.PostId], l.UserId)
	}
	for _, p := range posts {
		if l, ok := byPost[p.Id]; ok {
			p.Likes = l
		}
	}
	return nil
}

func (s *GormStore) CreatePost(ctx context.Context, p *model.Post) error {
	p.Comments = []model.Comment{}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.NewError(utils.ErrConflict, "Post with id %s already exists", p.Id)
		}
		return errors.Wrap(err, "fail to create post")
	}
	p.Likes = []string{}
	return nil
}

func (s *GormStore) GetPost(ctx context.Context, id string) (*model.Post, error) {
	tx := s.db.WithContext(ctx)
	var p model.Post
	if err := preloadComments(tx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFoundOr(err, "Post not found", "fail to get post")
	}
	if err := s.attachLikes(tx, []*model.Post{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) listPosts(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]*model.Post, error) {
	tx := s.db.WithContext(ctx)
	posts := []*model.Post{}
	if err := preloadComments(tx).Scopes(scope).Order(postOrder).Find(&posts).Error; err != nil {
		return nil, errors.Wrap(err, "fail to list posts")
	}
	if err := s.attachLikes(tx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *GormStore) ListPosts(ctx context.Context) ([]*model.Post, error) {
	return s.listPosts(ctx, func(db *gorm.DB) *gorm.DB { return db })
}

func (s *GormStore) ListPostsByUser(ctx context.Context, userId string) ([]*model.Post, error) {
	return s.listPosts(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.user_id = ?", userId)
	})
}

func (s *GormStore) ensurePost(tx *gorm.DB, postId string) error {
	var count int64
	if err := tx.Model(&model.Post{}).Where("id = ?", postId).Count(&count).Error; err != nil {
		return errors.Wrap(err, "fail to check post")
	}
	if count == 0 {
		return utils.NewError(utils.ErrNotFound, "Post not found")
	}
	return nil
}

func (s *GormStore) ToggleLike(ctx context.Context, postId, userId string) (*model.Post, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensurePost(tx, postId); err != nil {
			return err
		}
		res := tx.Where("post_id = ? AND user_id = ?", postId, userId).Delete(&model.PostLike{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "fail to unlike post")
		}
		if res.RowsAffected == 0 {
			like := model.PostLike{PostId: postId, UserId: userId}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return errors.Wrap(err, "fail to like post")
			}
		}
		return errors.Wrap(
			tx.Model(&model.Post{}).Where("id = ?", postId).UpdateColumn("updated_at", time.Now()).Error,
			"fail to touch post")
	})
	if err != nil {
		return nil, err
	}
	return s.GetPost(ctx, postId)
}

func (s *GormStore) AppendComment(ctx context.Context, postId string, c *model.Comment) (*model.Post, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensurePost(tx, postId); err != nil {
			return err
		}
		c.PostId = postId
		if err := tx.Create(c).Error; err != nil {
			return errors.Wrap(err, "fail to append comment")
		}
		return errors.Wrap(
			tx.Model(&model.Post{}).Where("id = ?", postId).UpdateColumn("updated_at", time.Now()).Error,
			"fail to touch post")
	})
	if err != nil {
		return nil, err
	}
	return s.GetPost(ctx, postId)
}

func (s *GormStore) CountStats(ctx context.Context, userId string) (model.PostStats, error) {
	tx := s.db.WithContext(ctx)
	stats := model.PostStats{}
	if err := tx.Model(&model.Post{}).Where("user_id = ?", userId).Count(&stats.TotalPosts).Error; err != nil {
		return stats, errors.Wrap(err, "fail to count posts")
	}
	if err := tx.Model(&model.PostLike{}).
		Joins("JOIN posts ON posts.id = post_likes.post_id").
		Where("posts.user_id = ?", userId).
		Count(&stats.TotalLikes).Error; err != nil {
		return stats, errors.Wrap(err, "fail to count likes")
	}
	if err := tx.Model(&model.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.user_id = ?", userId).
		Count(&stats.TotalComments).Error; err != nil {
		return stats, errors.Wrap(err, "fail to count comments")
	}
	return stats, nil
}
