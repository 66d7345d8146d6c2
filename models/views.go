package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The view types are read shapes with reference fields replaced by the
// referenced documents. A missing target decodes as nil.

type UserView struct {
	ID             primitive.ObjectID   `bson:"_id" json:"id"`
	FullName       string               `bson:"fullName" json:"fullName"`
	Email          string               `bson:"email" json:"email"`
	Age            *int                 `bson:"age,omitempty" json:"age,omitempty"`
	ProfilePicture string               `bson:"profilePicture" json:"profilePicture"`
	Bio            string               `bson:"bio" json:"bio"`
	Location       string               `bson:"location" json:"location"`
	Role           *Role                `bson:"roleId" json:"role"`
	Followers      []primitive.ObjectID `bson:"followers" json:"followers"`
	Following      []primitive.ObjectID `bson:"following" json:"following"`
	Posts          []primitive.ObjectID `bson:"posts" json:"posts"`
	CurrentStartup *Startup             `bson:"currentStartupId" json:"currentStartup"`
	IsVerified     bool                 `bson:"isVerified" json:"isVerified"`
	IsActive       bool                 `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type StartupView struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	StartupName      string             `bson:"startupName" json:"startupName"`
	Description      string             `bson:"description" json:"description"`
	Industry         string             `bson:"industry" json:"industry"`
	Website          string             `bson:"website,omitempty" json:"website,omitempty"`
	LogoURL          string             `bson:"logoUrl,omitempty" json:"logoUrl,omitempty"`
	Founders         []*User            `bson:"founders" json:"founders"`
	MarketSize       string             `bson:"marketSize,omitempty" json:"marketSize,omitempty"`
	RevenueModel     string             `bson:"revenueModel,omitempty" json:"revenueModel,omitempty"`
	PreviousFundings []FundingRoundView `bson:"previousFundings" json:"previousFundings"`
	EquitySplit      []EquityShareView  `bson:"equitySplit" json:"equitySplit"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type FundingRoundView struct {
	Stage     string                `bson:"stage" json:"stage"`
	Amount    float64               `bson:"amount" json:"amount"`
	Date      time.Time             `bson:"date" json:"date"`
	Investors []FundingInvestorView `bson:"investors" json:"investors"`
}

type FundingInvestorView struct {
	Investor     *Investor `bson:"investorId,omitempty" json:"investor"`
	InvestorName string    `bson:"investorName" json:"investorName"`
}

type EquityShareView struct {
	Type             string  `bson:"type" json:"type"`
	User             *User   `bson:"userId,omitempty" json:"user"`
	Name             string  `bson:"name" json:"name"`
	EquityPercentage float64 `bson:"equityPercentage" json:"equityPercentage"`
}

type PostView struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	User      *User              `bson:"userId" json:"user"`
	Content   string             `bson:"content" json:"content"`
	ImageURL  string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Likes     []string           `bson:"likes" json:"likes"`
	Comments  []*CommentView     `bson:"comments" json:"comments"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CommentView struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	PostID    primitive.ObjectID `bson:"postId" json:"postId"`
	User      *User              `bson:"userId" json:"user"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type InvestorView struct {
	ID                    primitive.ObjectID `bson:"_id" json:"id"`
	User                  *User              `bson:"userId" json:"user"`
	InvestorType          string             `bson:"investorType" json:"investorType"`
	InvestmentInterests   []string           `bson:"investmentInterests" json:"investmentInterests"`
	PreviousInvestments   []InvestmentRecord `bson:"previousInvestments" json:"previousInvestments"`
	PreferredFundingStage string             `bson:"preferredFundingStage" json:"preferredFundingStage"`
	ContactDetails        string             `bson:"contactDetails,omitempty" json:"contactDetails,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type EntrepreneurView struct {
	ID                    primitive.ObjectID `bson:"_id" json:"id"`
	User                  *User              `bson:"userId" json:"user"`
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

type PitchDeckView struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Startup      *Startup           `bson:"startupId" json:"startup"`
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
