package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"userId" json:"userId"`
	Content   string               `bson:"content" json:"content"`
	ImageURL  string               `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Likes     []string             `bson:"likes" json:"likes"` // user refs as hex strings
	Comments  []primitive.ObjectID `bson:"comments" json:"comments"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// LikedBy reports whether user has liked the post.
func (p Post) LikedBy(user primitive.ObjectID) bool {
	key := user.Hex()
	for _, l := range p.Likes {
		if l == key {
			return true
		}
	}
	return false
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"postId" json:"postId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
