package models

import "time"

// Bookmark is a link saved by a user, optionally shared with everyone.
type Bookmark struct {
	ID              string    `json:"_id,omitempty"`
	UserID          string    `json:"userId"`
	Name            string    `json:"name" validate:"required"`
	Location        string    `json:"location" validate:"required"`
	Description     string    `json:"description,omitempty"`
	DescriptionHTML string    `json:"descriptionHtml,omitempty"`
	Tags            []string  `json:"tags" validate:"required,min=1"`
	Shared          bool      `json:"shared"`
	Language        string    `json:"language,omitempty"`
	Stars           int       `json:"stars,omitempty"`
	GithubURL       string    `json:"githubURL,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	LastAccessedAt  time.Time `json:"lastAccessedAt"`
}

// TagCount is one row of the public tag aggregate. The tag travels as _id on the wire.
type TagCount struct {
	Tag   string `json:"_id"`
	Count int64  `json:"count"`
}

// CreateResponse is returned with 201 on create.
type CreateResponse struct {
	ID       string `json:"_id"`
	Response string `json:"response"`
}

// Reverse reference lists kept on user records.
const (
	RefReadLater = "readLater"
	RefLikes     = "likes"
	RefPinned    = "pinned"
	RefHistory   = "history"
	RefFavorites = "favorites"
)

// ReverseReferenceFields lists every user field that may hold a bookmark id.
var ReverseReferenceFields = []string{RefReadLater, RefLikes, RefPinned, RefHistory, RefFavorites}

// UserReferences is the slice of a user record this service touches.
type UserReferences struct {
	UserID    string   `json:"userId"`
	ReadLater []string `json:"readLater"`
	Likes     []string `json:"likes"`
	Pinned    []string `json:"pinned"`
	History   []string `json:"history"`
	Favorites []string `json:"favorites"`
}
