package model

import (
	"time"
)

/*

User is a registered member of the network

Id: primary key, uuid
CreatedAt: time when entity is created
UpdatedAt: time when entity is last updated

FirstName, LastName: display name, 2 to 50 characters
Email: login identity, unique and case-sensitive as stored
PasswordHash: bcrypt hash, never serialized
PicturePath: url of the profile picture, empty if none
Location, Occupation: free text
ViewedProfile, Impressions: display only counters seeded randomly at creation
Friends: ids of friends, materialized from friend_edges on read

*/

type User struct {
	Id            string    `gorm:"primaryKey" json:"_id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	FirstName     string    `gorm:"size:50;not null" json:"firstName"`
	LastName      string    `gorm:"size:50;not null" json:"lastName"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"not null" json:"-"`
	PicturePath   string    `json:"picturePath"`
	Location      string    `json:"location"`
	Occupation    string    `json:"occupation"`
	ViewedProfile int       `json:"viewedProfile"`
	Impressions   int       `json:"impressions"`
	Friends       []string  `gorm:"-" json:"friends"`
}

// FriendEdge is one direction of a friendship. A friendship between A and B
// is stored as both (A, B) and (B, A).
type FriendEdge struct {
	UserId    string `gorm:"primaryKey"`
	FriendId  string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// Reverse returns the edge pointing the other way.
func (e FriendEdge) Reverse() FriendEdge {
	return FriendEdge{UserId: e.FriendId, FriendId: e.UserId}
}

// FriendSummary is the public projection of a user shown in friend lists.
type FriendSummary struct {
	Id          string `json:"_id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PicturePath string `json:"picturePath"`
	Location    string `json:"location"`
	Occupation  string `json:"occupation"`
}
