package cascade

import (
	"context"
	"errors"
	"fmt"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/models"
	"foundersnexus/relations"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateEntrepreneur adds the entrepreneur profile of an existing user. A
// user has at most one.
func (c *Coordinator) CreateEntrepreneur(ctx context.Context, in models.CreateEntrepreneurInput) (models.Entrepreneur, error) {
	const op = "createEntrepreneur"
	if err := validate(op, in); err != nil {
		return models.Entrepreneur{}, err
	}
	user, err := c.profileOwner(ctx, op, database.Entrepreneurs, in.UserID)
	if err != nil {
		return models.Entrepreneur{}, err
	}

	now := c.mutator.Now()
	e := models.Entrepreneur{
		UserID:                user,
		EducationalBackground: orEmpty(in.EducationalBackground),
		Skills:                orEmpty(in.Skills),
		AreaOfInterest:        orEmpty(in.AreaOfInterest),
		WorkExperience:        orEmpty(in.WorkExperience),
		PreviousStartups:      orEmpty(in.PreviousStartups),
		Certifications:        orEmpty(in.Certifications),
		PortfolioLinks:        orEmpty(in.PortfolioLinks),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	id, err := c.coll(database.Entrepreneurs).InsertOne(ctx, e)
	if errors.Is(err, store.ErrDuplicateKey) {
		return models.Entrepreneur{}, domain.Conflict(op, "user %s already has an entrepreneur profile", user.Hex())
	}
	if err != nil {
		return models.Entrepreneur{}, domain.Internal(op, err)
	}
	e.ID = id
	return e, nil
}

// CreateInvestor adds the investor profile of an existing user.
func (c *Coordinator) CreateInvestor(ctx context.Context, in models.CreateInvestorInput) (models.Investor, error) {
	const op = "createInvestor"
	if err := validate(op, in); err != nil {
		return models.Investor{}, err
	}
	user, err := c.profileOwner(ctx, op, database.Investors, in.UserID)
	if err != nil {
		return models.Investor{}, err
	}

	records := make([]models.InvestmentRecord, 0, len(in.PreviousInvestments))
	for i, r := range in.PreviousInvestments {
		rec := models.InvestmentRecord{StartupName: r.StartupName, Amount: r.Amount, Date: r.Date}
		if r.StartupID != "" {
			ref, err := domain.ParseRef(op, fmt.Sprintf("previousInvestments[%d].startupId", i), r.StartupID)
			if err != nil {
				return models.Investor{}, err
			}
			rec.StartupID = &ref
		}
		records = append(records, rec)
	}

	now := c.mutator.Now()
	inv := models.Investor{
		UserID:                user,
		InvestorType:          in.InvestorType,
		InvestmentInterests:   orEmpty(in.InvestmentInterests),
		PreviousInvestments:   records,
		PreferredFundingStage: in.PreferredFundingStage,
		ContactDetails:        in.ContactDetails,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	id, err := c.coll(database.Investors).InsertOne(ctx, inv)
	if errors.Is(err, store.ErrDuplicateKey) {
		return models.Investor{}, domain.Conflict(op, "user %s already has an investor profile", user.Hex())
	}
	if err != nil {
		return models.Investor{}, domain.Internal(op, err)
	}
	inv.ID = id
	return inv, nil
}

// UpdateInvestorProfile edits the investor profile owned by user.
func (c *Coordinator) UpdateInvestorProfile(ctx context.Context, user primitive.ObjectID, in models.UpdateInvestorInput) (models.Investor, error) {
	const op = "updateInvestor"
	if err := validate(op, in); err != nil {
		return models.Investor{}, err
	}

	investors := c.coll(database.Investors)
	set := in.Fields()
	set["updatedAt"] = c.mutator.Now()
	res, err := investors.UpdateOne(ctx, store.Filter{"userId": user}, store.Set(set))
	if err != nil {
		return models.Investor{}, domain.Internal(op, err)
	}
	if res.Matched == 0 {
		return models.Investor{}, domain.NotFound(op, "investor profile of user %s not found", user.Hex())
	}

	inv, err := store.FindOne[models.Investor](ctx, investors, store.Filter{"userId": user})
	if err != nil {
		return models.Investor{}, domain.Internal(op, err)
	}
	return inv, nil
}

// DeleteInvestor removes the investor and its user. Only the owning user may
// do this. Follow and like edges of the deleted user are detached afterwards.
func (c *Coordinator) DeleteInvestor(ctx context.Context, actor, id primitive.ObjectID) (relations.DeleteOutcome, []string, error) {
	const op = "deleteInvestor"
	if err := c.ownsProfile(ctx, op, database.Investors, "investor", id, actor); err != nil {
		return relations.DeleteOutcome{}, nil, err
	}
	out, err := c.mutator.DeleteInvestor(ctx, id)
	return out, c.afterProfileDelete(ctx, op, out), err
}

func (c *Coordinator) DeleteEntrepreneur(ctx context.Context, actor, id primitive.ObjectID) (relations.DeleteOutcome, []string, error) {
	const op = "deleteEntrepreneur"
	if err := c.ownsProfile(ctx, op, database.Entrepreneurs, "entrepreneur", id, actor); err != nil {
		return relations.DeleteOutcome{}, nil, err
	}
	out, err := c.mutator.DeleteEntrepreneur(ctx, id)
	return out, c.afterProfileDelete(ctx, op, out), err
}

// ownsProfile fails with Forbidden unless the profile belongs to actor.
// The owning user may already be gone after a partial delete; the profile
// still names it, so its owner can re-run the delete.
func (c *Coordinator) ownsProfile(ctx context.Context, op, coll, kind string, id, actor primitive.ObjectID) error {
	var p struct {
		UserID primitive.ObjectID `bson:"userId"`
	}
	if err := c.load(ctx, op, coll, kind, id, &p); err != nil {
		return err
	}
	if p.UserID != actor {
		return domain.Forbidden(op, "%s %s belongs to another user", kind, id.Hex())
	}
	return nil
}

func (c *Coordinator) afterProfileDelete(ctx context.Context, op string, out relations.DeleteOutcome) []string {
	if !out.UserDeleted {
		return nil
	}
	c.background(ctx, "deleteChatIdentity", func(ctx context.Context) error {
		return c.identity.DeleteIdentity(ctx, out.UserID)
	})
	if err := c.mutator.DetachUserEdges(ctx, out.UserID); err != nil {
		return []string{c.warn(ctx, op, err)}
	}
	return nil
}

// profileOwner parses the owning user ref, checks the user exists and has
// no profile in coll yet.
func (c *Coordinator) profileOwner(ctx context.Context, op, coll, userID string) (primitive.ObjectID, error) {
	user, err := domain.ParseRef(op, "userId", userID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if err := c.mustExist(ctx, op, database.Users, "user", user); err != nil {
		return primitive.NilObjectID, err
	}
	taken, err := store.Exists(ctx, c.coll(coll), store.Filter{"userId": user})
	if err != nil {
		return primitive.NilObjectID, domain.Internal(op, err)
	}
	if taken {
		return primitive.NilObjectID, domain.Conflict(op, "user %s already has a profile", user.Hex())
	}
	return user, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
