package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Startup struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	StartupName      string               `bson:"startupName" json:"startupName"`
	Description      string               `bson:"description" json:"description"`
	Industry         string               `bson:"industry" json:"industry"`
	Website          string               `bson:"website,omitempty" json:"website,omitempty"`
	LogoURL          string               `bson:"logoUrl,omitempty" json:"logoUrl,omitempty"`
	Founders         []primitive.ObjectID `bson:"founders" json:"founders"`
	MarketSize       string               `bson:"marketSize,omitempty" json:"marketSize,omitempty"`
	RevenueModel     string               `bson:"revenueModel,omitempty" json:"revenueModel,omitempty"`
	PreviousFundings []FundingRound       `bson:"previousFundings" json:"previousFundings"`
	EquitySplit      []EquityShare        `bson:"equitySplit" json:"equitySplit"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type FundingRound struct {
	Stage     string            `bson:"stage" json:"stage"`
	Amount    float64           `bson:"amount" json:"amount"`
	Date      time.Time         `bson:"date" json:"date"`
	Investors []FundingInvestor `bson:"investors" json:"investors"`
}

// FundingInvestor names an investor in a round. InvestorID holds the
// investing user's ref; it is empty for investors without an account.
type FundingInvestor struct {
	InvestorID   *primitive.ObjectID `bson:"investorId,omitempty" json:"investorId,omitempty"`
	InvestorName string              `bson:"investorName" json:"investorName"`
}

type EquityShare struct {
	Type             string              `bson:"type" json:"type"` // founder, investor, employee, pool
	UserID           *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Name             string              `bson:"name" json:"name"`
	EquityPercentage float64             `bson:"equityPercentage" json:"equityPercentage"`
}

// InvestorRefs returns the distinct investor refs across all rounds.
func (s Startup) InvestorRefs() []primitive.ObjectID {
	var out []primitive.ObjectID
	for _, round := range s.PreviousFundings {
		for _, inv := range round.Investors {
			if inv.InvestorID != nil && !containsRef(out, *inv.InvestorID) {
				out = append(out, *inv.InvestorID)
			}
		}
	}
	return out
}

// LatestRoundFor returns the most recent round listing investor.
func (s Startup) LatestRoundFor(investor primitive.ObjectID) (FundingRound, bool) {
	var latest FundingRound
	found := false
	for _, round := range s.PreviousFundings {
		for _, inv := range round.Investors {
			if inv.InvestorID == nil || *inv.InvestorID != investor {
				continue
			}
			if !found || round.Date.After(latest.Date) {
				latest = round
				found = true
			}
		}
	}
	return latest, found
}
