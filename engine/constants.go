package engine

const (
	// A friendship was written, payload is a FriendEdgeChanged.
	TOPIC_FRIEND_EDGE_CHANGED = "topic.friend_edge_changed"
)

// FriendEdgeChanged is published after a friendship write. Present is the
// state the writer intended for the pair.
type FriendEdgeChanged struct {
	UserId   string `json:"userId"`
	FriendId string `json:"friendId"`
	Present  bool   `json:"present"`
}
