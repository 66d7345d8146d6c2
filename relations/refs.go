package relations

import (
	"fmt"

	"foundersnexus/domain"
	"foundersnexus/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EquitySplitReferences converts caller supplied equity shares. An empty
// userId means the holder has no account.
func EquitySplitReferences(in []models.EquityShareInput) ([]models.EquityShare, error) {
	const op = "setEquitySplitReferences"
	out := make([]models.EquityShare, 0, len(in))
	for i, s := range in {
		ref, err := optionalRef(op, fmt.Sprintf("equitySplit[%d].userId", i), s.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.EquityShare{
			Type:             s.Type,
			UserID:           ref,
			Name:             s.Name,
			EquityPercentage: s.EquityPercentage,
		})
	}
	return out, nil
}

// FundingInvestorReferences converts caller supplied funding rounds. An
// empty investorId names an investor without an account.
func FundingInvestorReferences(in []models.FundingRoundInput) ([]models.FundingRound, error) {
	const op = "setFundingInvestorReferences"
	out := make([]models.FundingRound, 0, len(in))
	for i, r := range in {
		investors := make([]models.FundingInvestor, 0, len(r.Investors))
		for j, inv := range r.Investors {
			ref, err := optionalRef(op, fmt.Sprintf("previousFundings[%d].investors[%d].investorId", i, j), inv.InvestorID)
			if err != nil {
				return nil, err
			}
			investors = append(investors, models.FundingInvestor{InvestorID: ref, InvestorName: inv.InvestorName})
		}
		out = append(out, models.FundingRound{
			Stage:     r.Stage,
			Amount:    r.Amount,
			Date:      r.Date,
			Investors: investors,
		})
	}
	return out, nil
}

func optionalRef(op, field, id string) (*primitive.ObjectID, error) {
	if id == "" {
		return nil, nil
	}
	ref, err := domain.ParseRef(op, field, id)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
