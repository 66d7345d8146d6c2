package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Entrepreneur struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                primitive.ObjectID `bson:"userId" json:"userId"`
	EducationalBackground []map[string]any   `bson:"educationalBackground" json:"educationalBackground"`
	Skills                []string           `bson:"skills" json:"skills"`
	AreaOfInterest        []string           `bson:"areaOfInterest" json:"areaOfInterest"`
	WorkExperience        []string           `bson:"workExperience" json:"workExperience"`
	PreviousStartups      []string           `bson:"previousStartups" json:"previousStartups"`
	Certifications        []string           `bson:"certifications" json:"certifications"`
	PortfolioLinks        []string           `bson:"portfolioLinks" json:"portfolioLinks"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}
