package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a platform account. Followers and Following are kept symmetric by
// the follow recipe; CurrentStartupID is written only by startup creation
// and deletion.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName       string             `bson:"fullName" json:"fullName"`
	Email          string             `bson:"email" json:"email"`
	PasswordHash   string             `bson:"passwordHash" json:"-"`
	Age            *int               `bson:"age,omitempty" json:"age,omitempty"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`
	Bio            string             `bson:"bio" json:"bio"`
	Location       string             `bson:"location" json:"location"`
	RoleID         primitive.ObjectID `bson:"roleId,omitempty" json:"roleId,omitempty"`

	Followers []primitive.ObjectID `bson:"followers" json:"followers"`
	Following []primitive.ObjectID `bson:"following" json:"following"`
	Posts     []primitive.ObjectID `bson:"posts" json:"posts"`

	CurrentStartupID *primitive.ObjectID `bson:"currentStartupId,omitempty" json:"currentStartupId,omitempty"`

	IsVerified bool      `bson:"isVerified" json:"isVerified"`
	IsActive   bool      `bson:"isActive" json:"isActive"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Follows reports whether u follows other.
func (u User) Follows(other primitive.ObjectID) bool {
	return containsRef(u.Following, other)
}

func containsRef(refs []primitive.ObjectID, ref primitive.ObjectID) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}
