package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PitchDeck files are pdf, ppt or pptx. At most one deck per startup is active.
type PitchDeck struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	StartupID    primitive.ObjectID `bson:"startupId" json:"startupId"`
	FileURL      string             `bson:"fileUrl" json:"fileUrl"`
	ViewURL      string             `bson:"viewUrl" json:"viewUrl"`
	ThumbnailURL string             `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	Active       bool               `bson:"active" json:"active"`
	RaiseUntil   *time.Time         `bson:"raiseUntil,omitempty" json:"raiseUntil,omitempty"`
	TargetAmount *float64           `bson:"targetAmount,omitempty" json:"targetAmount,omitempty"`
	Round        string             `bson:"round,omitempty" json:"round,omitempty"`
	SlidesCount  int                `bson:"slidesCount" json:"slidesCount"`
	FileType     string             `bson:"fileType" json:"fileType"`
	ExternalLink string             `bson:"externalLink,omitempty" json:"externalLink,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
