package model

import (
	"time"
)

/*

Post is a piece of content shared by a user

Id: primary key, uuid
CreatedAt: time when entity is created, feeds are ordered by it
UpdatedAt: time when entity is last updated

UserId: author id
FirstName, LastName, Location, UserPicturePath: snapshot of the author taken at
		creation time, not kept in sync with later profile edits
Description: free text
PicturePath: url of the attached picture, empty if none
Likes: like-set, ids of users who liked the post, materialized from post_likes
		and sorted ascending
Comments: append only, ordered by Comment.Id

*/

type Post struct {
	Id              string    `gorm:"primaryKey" json:"_id"`
	CreatedAt       time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	UserId          string    `gorm:"index;not null" json:"userId"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Location        string    `json:"location"`
	UserPicturePath string    `json:"userPicturePath"`
	Description     string    `json:"description"`
	PicturePath     string    `json:"picturePath"`
	Likes           []string  `gorm:"-" json:"likes"`
	Comments        []Comment `gorm:"constraint:OnDelete:CASCADE;" json:"comments"`
}

// PostLike is a member of a post's like-set. The composite primary key keeps
// at most one like per user per post.
type PostLike struct {
	PostId    string `gorm:"primaryKey"`
	UserId    string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// Comment is immutable once appended. The auto increment Id defines the order
// of comments within a post.
type Comment struct {
	Id        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	PostId    string    `gorm:"index;not null" json:"-"`
	UserId    string    `gorm:"not null" json:"userId"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostStats aggregates all posts of a single user.
type PostStats struct {
	TotalPosts    int64 `json:"totalPosts"`
	TotalLikes    int64 `json:"totalLikes"`
	TotalComments int64 `json:"totalComments"`
}

// HasLike returns true iff userId is in the like-set.
func (p *Post) HasLike(userId string) bool {
	for _, id := range p.Likes {
		if id == userId {
			return true
		}
	}
	return false
}
