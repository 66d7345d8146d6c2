package models

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.mongodb.org/mongo-driver/bson"
)

// Command inputs carry identifiers as strings. Malformed identifiers are
// rejected as invalid references when converted, not by Validate.

type CreateUserInput struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Age            *int   `json:"age,omitempty"`
	ProfilePicture string `json:"profilePicture"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	RoleID         string `json:"roleId"`
}

func (in CreateUserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FullName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&in.Age, validation.Min(13), validation.Max(120)),
		validation.Field(&in.ProfilePicture, is.URL),
		validation.Field(&in.Bio, validation.Length(0, 1000)),
	)
}

type UpdateUserInput struct {
	FullName       *string `json:"fullName"`
	Age            *int    `json:"age"`
	ProfilePicture *string `json:"profilePicture"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
}

func (in UpdateUserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FullName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&in.Age, validation.Min(13), validation.Max(120)),
		validation.Field(&in.ProfilePicture, is.URL),
		validation.Field(&in.Bio, validation.Length(0, 1000)),
	)
}

// Fields returns the $set document for the provided fields.
func (in UpdateUserInput) Fields() bson.M {
	set := bson.M{}
	if in.FullName != nil {
		set["fullName"] = *in.FullName
	}
	if in.Age != nil {
		set["age"] = *in.Age
	}
	if in.ProfilePicture != nil {
		set["profilePicture"] = *in.ProfilePicture
	}
	if in.Bio != nil {
		set["bio"] = *in.Bio
	}
	if in.Location != nil {
		set["location"] = *in.Location
	}
	return set
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateRoleInput struct {
	Name string `json:"name"`
}

func (in CreateRoleInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 50)),
	)
}

type CreateEntrepreneurInput struct {
	UserID                string           `json:"userId"`
	EducationalBackground []map[string]any `json:"educationalBackground"`
	Skills                []string         `json:"skills"`
	AreaOfInterest        []string         `json:"areaOfInterest"`
	WorkExperience        []string         `json:"workExperience"`
	PreviousStartups      []string         `json:"previousStartups"`
	Certifications        []string         `json:"certifications"`
	PortfolioLinks        []string         `json:"portfolioLinks"`
}

func (in CreateEntrepreneurInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.UserID, validation.Required),
		validation.Field(&in.PortfolioLinks, validation.Each(is.URL)),
	)
}

type CreateInvestorInput struct {
	UserID                string                  `json:"userId"`
	InvestorType          string                  `json:"investorType"`
	InvestmentInterests   []string                `json:"investmentInterests"`
	PreviousInvestments   []InvestmentRecordInput `json:"previousInvestments"`
	PreferredFundingStage string                  `json:"preferredFundingStage"`
	ContactDetails        string                  `json:"contactDetails"`
}

type InvestmentRecordInput struct {
	StartupID   string    `json:"startupId"`
	StartupName string    `json:"startupName"`
	Amount      float64   `json:"investmentAmount"`
	Date        time.Time `json:"date"`
}

func (in InvestmentRecordInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.StartupName, validation.Required),
		validation.Field(&in.Amount, validation.Min(0.0)),
	)
}

func (in CreateInvestorInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.UserID, validation.Required),
		validation.Field(&in.InvestorType, validation.Required),
		validation.Field(&in.PreferredFundingStage, validation.Required),
		validation.Field(&in.PreviousInvestments),
	)
}

type UpdateInvestorInput struct {
	InvestorType          *string   `json:"investorType"`
	InvestmentInterests   *[]string `json:"investmentInterests"`
	PreferredFundingStage *string   `json:"preferredFundingStage"`
	ContactDetails        *string   `json:"contactDetails"`
}

func (in UpdateInvestorInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.InvestorType, validation.NilOrNotEmpty),
		validation.Field(&in.PreferredFundingStage, validation.NilOrNotEmpty),
	)
}

func (in UpdateInvestorInput) Fields() bson.M {
	set := bson.M{}
	if in.InvestorType != nil {
		set["investorType"] = *in.InvestorType
	}
	if in.InvestmentInterests != nil {
		set["investmentInterests"] = *in.InvestmentInterests
	}
	if in.PreferredFundingStage != nil {
		set["preferredFundingStage"] = *in.PreferredFundingStage
	}
	if in.ContactDetails != nil {
		set["contactDetails"] = *in.ContactDetails
	}
	return set
}

type CreateStartupInput struct {
	StartupName      string              `json:"startupName"`
	Description      string              `json:"description"`
	Industry         string              `json:"industry"`
	Website          string              `json:"website"`
	LogoURL          string              `json:"logoUrl"`
	Founders         []string            `json:"founders"`
	MarketSize       string              `json:"marketSize"`
	RevenueModel     string              `json:"revenueModel"`
	PreviousFundings []FundingRoundInput `json:"previousFundings"`
	EquitySplit      []EquityShareInput  `json:"equitySplit"`
}

type FundingRoundInput struct {
	Stage     string                 `json:"stage"`
	Amount    float64                `json:"amount"`
	Date      time.Time              `json:"date"`
	Investors []FundingInvestorInput `json:"investors"`
}

type FundingInvestorInput struct {
	InvestorID   string `json:"investorId"`
	InvestorName string `json:"investorName"`
}

type EquityShareInput struct {
	Type             string  `json:"type"`
	UserID           string  `json:"userId"`
	Name             string  `json:"name"`
	EquityPercentage float64 `json:"equityPercentage"`
}

func (in FundingRoundInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Stage, validation.Required),
		validation.Field(&in.Amount, validation.Min(0.0)),
		validation.Field(&in.Date, validation.Required),
	)
}

func (in EquityShareInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Type, validation.Required, validation.In("founder", "investor", "employee", "pool", "other")),
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.EquityPercentage, validation.Min(0.0), validation.Max(100.0)),
	)
}

func (in CreateStartupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.StartupName, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Industry, validation.Required),
		validation.Field(&in.Website, is.URL),
		validation.Field(&in.LogoURL, is.URL),
		validation.Field(&in.Founders, validation.Required),
		validation.Field(&in.PreviousFundings),
		validation.Field(&in.EquitySplit, validation.By(totalEquityAtMost100)),
	)
}

func totalEquityAtMost100(value any) error {
	shares, _ := value.([]EquityShareInput)
	var total float64
	for _, s := range shares {
		total += s.EquityPercentage
	}
	if total > 100 {
		return errors.New("equity split exceeds 100 percent")
	}
	return nil
}

type CreatePostInput struct {
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
}

func (in CreatePostInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Content, validation.Required, validation.Length(1, 5000)),
		validation.Field(&in.ImageURL, is.URL),
	)
}

type CreateCommentInput struct {
	Content string `json:"content"`
}

func (in CreateCommentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Content, validation.Required, validation.Length(1, 2000)),
	)
}

type CreatePitchDeckInput struct {
	Title        string     `form:"title" json:"title"`
	Description  string     `form:"description" json:"description"`
	StartupID    string     `form:"startupId" json:"startupId"`
	Active       bool       `form:"active" json:"active"`
	RaiseUntil   *time.Time `form:"raiseUntil" time_format:"2006-01-02" json:"raiseUntil"`
	TargetAmount *float64   `form:"targetAmount" json:"targetAmount"`
	Round        string     `form:"round" json:"round"`
	ExternalLink string     `form:"externalLink" json:"externalLink"`
}

func (in CreatePitchDeckInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.StartupID, validation.Required),
		validation.Field(&in.TargetAmount, validation.Min(0.0)),
		validation.Field(&in.ExternalLink, is.URL),
	)
}

type UpdatePitchDeckInput struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	RaiseUntil   *time.Time `json:"raiseUntil"`
	TargetAmount *float64   `json:"targetAmount"`
	Round        *string    `json:"round"`
	ExternalLink *string    `json:"externalLink"`
}

func (in UpdatePitchDeckInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&in.TargetAmount, validation.Min(0.0)),
		validation.Field(&in.ExternalLink, is.URL),
	)
}

func (in UpdatePitchDeckInput) Fields() bson.M {
	set := bson.M{}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.RaiseUntil != nil {
		set["raiseUntil"] = *in.RaiseUntil
	}
	if in.TargetAmount != nil {
		set["targetAmount"] = *in.TargetAmount
	}
	if in.Round != nil {
		set["round"] = *in.Round
	}
	if in.ExternalLink != nil {
		set["externalLink"] = *in.ExternalLink
	}
	return set
}

type PushSubscriptionInput struct {
	Endpoint string   `json:"endpoint"`
	Keys     PushKeys `json:"keys"`
}

func (in PushSubscriptionInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Endpoint, validation.Required, is.URL),
		validation.Field(&in.Keys),
	)
}

func (k PushKeys) Validate() error {
	return validation.ValidateStruct(&k,
		validation.Field(&k.P256dh, validation.Required),
		validation.Field(&k.Auth, validation.Required),
	)
}
