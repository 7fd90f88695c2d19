package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/utils"
)

type memoryUser struct {
	seq     int64
	user    model.User
	friends []string
}

type memoryPost struct {
	seq         int64
	post        model.Post
	likes       map[string]struct{}
	nextComment uint
}

// MemoryStore keeps everything in process. It is used by tests and by the
// -memory development mode. All methods are safe for concurrent use, both
// sides of a friendship are written under the same lock.
type MemoryStore struct {
	m       sync.RWMutex
	seq     int64
	users   map[string]*memoryUser
	byEmail map[string]string
	posts   map[string]*memoryPost
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*memoryUser),
		byEmail: make(map[string]string),
		posts:   make(map[string]*memoryPost),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) nextSeq() int64 {
	s.seq++
	return s.seq
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *model.User) error {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return utils.NewError(utils.ErrConflict, "User with email %s already exists", u.Email)
	}
	if _, ok := s.users[u.Id]; ok {
		return utils.NewError(utils.ErrConflict, "User with id %s already exists", u.Id)
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Friends = []string{}

	stored := *u
	s.users[u.Id] = &memoryUser{seq: s.nextSeq(), user: stored, friends: []string{}}
	s.byEmail[u.Email] = u.Id
	return nil
}

// snapshot returns a copy of the user safe to hand out. Caller holds the lock.
func (s *MemoryStore) snapshot(mu *memoryUser) *model.User {
	u := mu.user
	u.Friends = append([]string{}, mu.friends...)
	return &u
}

func (s *MemoryStore) GetUserById(ctx context.Context, id string) (*model.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	mu, ok := s.users[id]
	if !ok {
		return nil, utils.NewError(utils.ErrNotFound, "User not found")
	}
	return s.snapshot(mu), nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, utils.NewError(utils.ErrNotFound, "User does not exist")
	}
	return s.snapshot(s.users[id]), nil
}

func (s *MemoryStore) GetUsersByIds(ctx context.Context, ids []string) ([]*model.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	res := []*model.User{}
	for _, id := range ids {
		if mu, ok := s.users[id]; ok {
			res = append(res, s.snapshot(mu))
		}
	}
	return res, nil
}

func (s *MemoryStore) ListUsersExcept(ctx context.Context, id string) ([]*model.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	all := []*memoryUser{}
	for uid, mu := range s.users {
		if uid != id {
			all = append(all, mu)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })

	res := []*model.User{}
	for _, mu := range all {
		res = append(res, s.snapshot(mu))
	}
	return res, nil
}

func (s *MemoryStore) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	s.m.Lock()
	defer s.m.Unlock()

	mu, ok := s.users[id]
	if !ok {
		return utils.NewError(utils.ErrNotFound, "User not found")
	}
	mu.user.PasswordHash = hash
	mu.user.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) SetFriendship(ctx context.Context, a, b string, present bool) error {
	s.m.Lock()
	defer s.m.Unlock()

	ua, okA := s.users[a]
	ub, okB := s.users[b]
	if !okA || !okB {
		return utils.NewError(utils.ErrNotFound, "User or friend not found")
	}
	if present {
		if !utils.ContainsString(ua.friends, b) {
			ua.friends = append(ua.friends, b)
		}
		if !utils.ContainsString(ub.friends, a) {
			ub.friends = append(ub.friends, a)
		}
		return nil
	}
	ua.friends = utils.RemoveString(ua.friends, b)
	ub.friends = utils.RemoveString(ub.friends, a)
	return nil
}

func (s *MemoryStore) AddFriendEdge(ctx context.Context, edge model.FriendEdge) error {
	s.m.Lock()
	defer s.m.Unlock()

	mu, ok := s.users[edge.UserId]
	if !ok {
		return utils.NewError(utils.ErrNotFound, "User not found")
	}
	if !utils.ContainsString(mu.friends, edge.FriendId) {
		mu.friends = append(mu.friends, edge.FriendId)
	}
	return nil
}

func (s *MemoryStore) HasFriendEdge(ctx context.Context, edge model.FriendEdge) (bool, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	mu, ok := s.users[edge.UserId]
	if !ok {
		return false, nil
	}
	return utils.ContainsString(mu.friends, edge.FriendId), nil
}

func (s *MemoryStore) ListAsymmetricEdges(ctx context.Context) ([]model.FriendEdge, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	res := []model.FriendEdge{}
	for uid, mu := range s.users {
		for _, fid := range mu.friends {
			other, ok := s.users[fid]
			// Dangling ids are not asymmetric edges, they are dropped on read.
			if !ok {
				continue
			}
			if !utils.ContainsString(other.friends, uid) {
				res = append(res, model.FriendEdge{UserId: uid, FriendId: fid})
			}
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].UserId != res[j].UserId {
			return res[i].UserId < res[j].UserId
		}
		return res[i].FriendId < res[j].FriendId
	})
	return res, nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, p *model.Post) error {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.posts[p.Id]; ok {
		return utils.NewError(utils.ErrConflict, "Post with id %s already exists", p.Id)
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Likes = []string{}
	p.Comments = []model.Comment{}

	s.posts[p.Id] = &memoryPost{
		seq:         s.nextSeq(),
		post:        *p,
		likes:       make(map[string]struct{}),
		nextComment: 1,
	}
	return nil
}

// postSnapshot returns a copy of the post safe to hand out. Caller holds the
// lock.
func (s *MemoryStore) postSnapshot(mp *memoryPost) *model.Post {
	p := mp.post
	p.Likes = []string{}
	for uid := range mp.likes {
		p.Likes = append(p.Likes, uid)
	}
	sort.Strings(p.Likes)
	p.Comments = append([]model.Comment{}, mp.post.Comments...)
	return &p
}

func (s *MemoryStore) GetPost(ctx context.Context, id string) (*model.Post, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	mp, ok := s.posts[id]
	if !ok {
		return nil, utils.NewError(utils.ErrNotFound, "Post not found")
	}
	return s.postSnapshot(mp), nil
}

func (s *MemoryStore) listPosts(filter func(*memoryPost) bool) []*model.Post {
	matched := []*memoryPost{}
	for _, mp := range s.posts {
		if filter(mp) {
			matched = append(matched, mp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].post.CreatedAt.Equal(matched[j].post.CreatedAt) {
			return matched[i].post.CreatedAt.After(matched[j].post.CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})
	res := []*model.Post{}
	for _, mp := range matched {
		res = append(res, s.postSnapshot(mp))
	}
	return res
}

func (s *MemoryStore) ListPosts(ctx context.Context) ([]*model.Post, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.listPosts(func(*memoryPost) bool { return true }), nil
}

func (s *MemoryStore) ListPostsByUser(ctx context.Context, userId string) ([]*model.Post, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.listPosts(func(mp *memoryPost) bool { return mp.post.UserId == userId }), nil
}

func (s *MemoryStore) ToggleLike(ctx context.Context, postId, userId string) (*model.Post, error) {
	s.m.Lock()
	defer s.m.Unlock()

	mp, ok := s.posts[postId]
	if !ok {
		return nil, utils.NewError(utils.ErrNotFound, "Post not found")
	}
	if _, liked := mp.likes[userId]; liked {
		delete(mp.likes, userId)
	} else {
		mp.likes[userId] = struct{}{}
	}
	mp.post.UpdatedAt = time.Now()
	return s.postSnapshot(mp), nil
}

func (s *MemoryStore) AppendComment(ctx context.Context, postId string, c *model.Comment) (*model.Post, error) {
	s.m.Lock()
	defer s.m.Unlock()

	mp, ok := s.posts[postId]
	if !ok {
		return nil, utils.NewError(utils.ErrNotFound, "Post not found")
	}
	c.Id = mp.nextComment
	c.PostId = postId
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	mp.nextComment++
	mp.post.Comments = append(mp.post.Comments, *c)
	mp.post.UpdatedAt = time.Now()
	return s.postSnapshot(mp), nil
}

func (s *MemoryStore) CountStats(ctx context.Context, userId string) (model.PostStats, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	stats := model.PostStats{}
	for _, mp := range s.posts {
		if mp.post.UserId != userId {
			continue
		}
		stats.TotalPosts++
		stats.TotalLikes += int64(len(mp.likes))
		stats.TotalComments += int64(len(mp.post.Comments))
	}
	return stats, nil
}
