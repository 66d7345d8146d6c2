package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Investor struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                primitive.ObjectID `bson:"userId" json:"userId"`
	InvestorType          string             `bson:"investorType" json:"investorType"`
	InvestmentInterests   []string           `bson:"investmentInterests" json:"investmentInterests"`
	PreviousInvestments   []InvestmentRecord `bson:"previousInvestments" json:"previousInvestments"`
	PreferredFundingStage string             `bson:"preferredFundingStage" json:"preferredFundingStage"`
	ContactDetails        string             `bson:"contactDetails,omitempty" json:"contactDetails,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// InvestmentRecord is a denormalized copy of a funding round entry. It is
// appended when a startup is created and never refreshed afterwards.
type InvestmentRecord struct {
	StartupID   *primitive.ObjectID `bson:"startupId,omitempty" json:"startupId,omitempty"`
	StartupName string              `bson:"startupName" json:"startupName"`
	Amount      float64             `bson:"investmentAmount" json:"investmentAmount"`
	Date        time.Time           `bson:"date" json:"date"`
}
