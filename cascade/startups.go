package cascade

import (
	"context"
	"slices"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/models"
	"foundersnexus/relations"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StartupResult is a created startup plus the back-reference writes that
// did not take effect.
type StartupResult struct {
	Startup  models.Startup `json:"startup"`
	Warnings []string       `json:"warnings,omitempty"`
}

func (c *Coordinator) CreateStartup(ctx context.Context, in models.CreateStartupInput) (StartupResult, error) {
	const op = "createStartup"
	if err := validate(op, in); err != nil {
		return StartupResult{}, err
	}

	founders, err := domain.ParseRefs(op, "founders", in.Founders)
	if err != nil {
		return StartupResult{}, err
	}
	fundings, err := relations.FundingInvestorReferences(in.PreviousFundings)
	if err != nil {
		return StartupResult{}, err
	}
	equity, err := relations.EquitySplitReferences(in.EquitySplit)
	if err != nil {
		return StartupResult{}, err
	}

	s, warnings, err := c.mutator.CreateStartup(ctx, models.Startup{
		StartupName:      in.StartupName,
		Description:      in.Description,
		Industry:         in.Industry,
		Website:          in.Website,
		LogoURL:          in.LogoURL,
		Founders:         founders,
		MarketSize:       in.MarketSize,
		RevenueModel:     in.RevenueModel,
		PreviousFundings: fundings,
		EquitySplit:      equity,
	})
	if err != nil {
		return StartupResult{}, err
	}
	c.log.Info(ctx, "startup created", "startup", s.ID.Hex(), "warnings", len(warnings))
	return StartupResult{Startup: s, Warnings: warnings}, nil
}

// DeleteStartup removes the startup, clears founder back-references and
// removes its pitch decks. Only a founder may delete it and only the first
// step decides the outcome.
func (c *Coordinator) DeleteStartup(ctx context.Context, actor, id primitive.ObjectID) ([]string, error) {
	const op = "deleteStartup"
	var s models.Startup
	if err := c.load(ctx, op, database.Startups, "startup", id, &s); err != nil {
		return nil, err
	}
	if !slices.Contains(s.Founders, actor) {
		return nil, domain.Forbidden(op, "only a founder can delete startup %s", id.Hex())
	}

	warnings, err := c.mutator.DeleteStartup(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := c.mutator.DeleteDecksOfStartup(ctx, id); err != nil {
		warnings = append(warnings, c.warn(ctx, op, err))
	}
	return warnings, nil
}
