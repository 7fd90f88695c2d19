package friendgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Luismorlan/socialmux/engine"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails the first failures friendship writes.
type flakyStore struct {
	store.UserStore
	failures int
	calls    int
}

func (f *flakyStore) SetFriendship(ctx context.Context, a, b string, present bool) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection reset by peer")
	}
	return f.UserStore.SetFriendship(ctx, a, b, present)
}

func createUsers(t *testing.T, s store.UserStore, names ...string) {
	for _, name := range names {
		require.Nil(t, s.CreateUser(context.Background(), &model.User{
			Id:           name,
			FirstName:    name,
			LastName:     "Doe",
			Email:        fmt.Sprintf("%s@x.com", name),
			PasswordHash: "hash",
			Location:     "Earth",
			Occupation:   "Tester",
		}))
	}
}

func summaryIds(summaries []model.FriendSummary) []string {
	ids := []string{}
	for _, s := range summaries {
		ids = append(ids, s.Id)
	}
	return ids
}

func friendsOf(t *testing.T, s store.UserStore, id string) []string {
	u, err := s.GetUserById(context.Background(), id)
	require.Nil(t, err)
	return u.Friends
}

func TestGetUserSelfOnly(t *testing.T) {
	s := store.NewMemoryStore()
	createUsers(t, s, "alice", "bob")
	g := NewService(s, nil, nil, 0)

	u, err := g.GetUser(context.Background(), "alice", "alice")
	require.Nil(t, err)
	assert.Equal(t, "alice", u.Id)

	_, err = g.GetUser(context.Background(), "bob", "alice")
	assert.True(t, errors.Is(err, utils.ErrForbidden))

	_, err = g.GetUser(context.Background(), "ghost", "ghost")
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestToggleFriendIsSymmetric(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	createUsers(t, s, "alice", "bob")
	g := NewService(s, nil, nil, 0)

	friends, err := g.ToggleFriend(ctx, "alice", "bob")
	require.Nil(t, err)
	assert.Equal(t, []string{"bob"}, summaryIds(friends))
	assert.Equal(t, "Earth", friends[0].Location)
	assert.Equal(t, []string{"bob"}, friendsOf(t, s, "alice"))
	assert.Equal(t, []string{"alice"}, friendsOf(t, s, "bob"))

	// a second toggle restores both sides
	friends, err = g.ToggleFriend(ctx, "alice", "bob")
	require.Nil(t, err)
	assert.Empty(t, friends)
	assert.Empty(t, friendsOf(t, s, "alice"))
	assert.Empty(t, friendsOf(t, s, "bob"))
}

func TestToggleFriendFromEitherSide(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	createUsers(t, s, "alice", "bob")
	g := NewService(s, nil, nil, 0)

	_, err := g.ToggleFriend(ctx, "alice", "bob")
	require.Nil(t, err)
	friends, err := g.ToggleFriend(ctx, "bob", "alice")
	require.Nil(t, err)
	assert.Empty(t, friends)
	assert.Empty(t, friendsOf(t, s, "alice"))
}

func TestToggleFriendErrors(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	createUsers(t, s, "alice")
	g := NewService(s, nil, nil, 0)

	_, err := g.ToggleFriend(ctx, "alice", "alice")
	assert.True(t, errors.Is(err, utils.ErrValidation))

	_, err = g.ToggleFriend(ctx, "alice", "ghost")
	assert.True(t, errors.Is(err, utils.ErrNotFound))

	_, err = g.ToggleFriend(ctx, "ghost", "alice")
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestToggleFriendRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	s := &flakyStore{UserStore: store.NewMemoryStore(), failures: 2}
	createUsers(t, s, "alice", "bob")
	g := NewService(s, nil, nil, 3)

	friends, err := g.ToggleFriend(ctx, "alice", "bob")
	require.Nil(t, err)
	assert.Equal(t, 3, s.calls)
	assert.Equal(t, []string{"bob"}, summaryIds(friends))
	assert.Equal(t, []string{"alice"}, friendsOf(t, s, "bob"))
}

func TestToggleFriendGivesUpAfterAttempts(t *testing.T) {
	ctx := context.Background()
	s := &flakyStore{UserStore: store.NewMemoryStore(), failures: 5}
	createUsers(t, s, "alice", "bob")
	g := NewService(s, nil, nil, 2)

	_, err := g.ToggleFriend(ctx, "alice", "bob")
	assert.NotNil(t, err)
	assert.Equal(t, utils.ErrInternal, utils.KindOf(err))
	assert.Equal(t, 2, s.calls)
	assert.Empty(t, friendsOf(t, s, "alice"))
	assert.Empty(t, friendsOf(t, s, "bob"))
}

func TestToggleFriendPublishesChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := engine.NewEventBus()
	defer bus.Close()
	messages, err := bus.Subscribe(ctx, engine.TOPIC_FRIEND_EDGE_CHANGED)
	require.Nil(t, err)

	s := store.NewMemoryStore()
	createUsers(t, s, "alice", "bob")
	g := NewService(s, bus, nil, 0)
	_, err = g.ToggleFriend(ctx, "alice", "bob")
	require.Nil(t, err)

	select {
	case msg := <-messages:
		msg.Ack()
		var event engine.FriendEdgeChanged
		require.Nil(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, engine.FriendEdgeChanged{UserId: "alice", FriendId: "bob", Present: true}, event)
	case <-time.After(time.Second):
		t.Fatal("no friend edge event published")
	}
}

func TestListFriendsDropsDanglingIds(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	createUsers(t, s, "alice", "bob", "carol")
	g := NewService(s, nil, nil, 0)

	_, err := g.ToggleFriend(ctx, "alice", "bob")
	require.Nil(t, err)
	_, err = g.ToggleFriend(ctx, "alice", "carol")
	require.Nil(t, err)
	require.Nil(t, s.AddFriendEdge(ctx, model.FriendEdge{UserId: "alice", FriendId: "deleted-user"}))

	friends, err := g.ListFriends(ctx, "alice")
	require.Nil(t, err)
	assert.Equal(t, []string{"bob", "carol"}, summaryIds(friends))

	_, err = g.ListFriends(ctx, "ghost")
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestFriendsAndNonFriendsPartitionUsers(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	names := []string{"alice", "bob", "carol", "dave", "erin"}
	createUsers(t, s, names...)
	g := NewService(s, nil, nil, 0)

	_, err := g.ToggleFriend(ctx, "alice", "carol")
	require.Nil(t, err)
	_, err = g.ToggleFriend(ctx, "erin", "alice")
	require.Nil(t, err)

	friends, err := g.ListFriends(ctx, "alice")
	require.Nil(t, err)
	strangers, err := g.ListNonFriends(ctx, "alice")
	require.Nil(t, err)
	assert.Equal(t, []string{"bob", "dave"}, summaryIds(strangers))

	seen := map[string]int{"alice": 1}
	for _, id := range append(summaryIds(friends), summaryIds(strangers)...) {
		seen[id]++
	}
	assert.Len(t, seen, len(names))
	for id, count := range seen {
		assert.Equal(t, 1, count, id)
	}
}
