package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSONNeverContainsPasswordHash(t *testing.T) {
	u := User{
		Id:           "u1",
		FirstName:    "Alice",
		Email:        "alice@x.com",
		PasswordHash: "$2a$10$secret",
		Friends:      []string{"u2"},
	}
	b, err := json.Marshal(u)
	require.Nil(t, err)
	assert.False(t, strings.Contains(string(b), "secret"))
	assert.False(t, strings.Contains(string(b), "password"))
	assert.True(t, strings.Contains(string(b), `"friends":["u2"]`))
}

func TestFriendEdgeReverse(t *testing.T) {
	e := FriendEdge{UserId: "a", FriendId: "b"}
	assert.Equal(t, FriendEdge{UserId: "b", FriendId: "a"}, e.Reverse())
}

func TestPostHasLike(t *testing.T) {
	p := Post{Likes: []string{"a", "b"}}
	assert.True(t, p.HasLike("a"))
	assert.False(t, p.HasLike("c"))
}
