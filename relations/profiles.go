package relations

import (
	"context"
	"errors"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeleteOutcome reports which of the two deletes took effect.
type DeleteOutcome struct {
	UserID        primitive.ObjectID `json:"userId"`
	UserDeleted   bool               `json:"userDeleted"`
	RecordDeleted bool               `json:"recordDeleted"`
}

// DeleteInvestor deletes the investor's user and then the investor record.
// Both deletes are attempted. Unless each removed exactly one document the
// call fails with PartialFailure; nothing is restored.
func (m *Mutator) DeleteInvestor(ctx context.Context, id primitive.ObjectID) (DeleteOutcome, error) {
	return m.deleteProfile(ctx, "deleteInvestor", database.Investors, "investor", id)
}

// DeleteEntrepreneur is DeleteInvestor for entrepreneur profiles.
func (m *Mutator) DeleteEntrepreneur(ctx context.Context, id primitive.ObjectID) (DeleteOutcome, error) {
	return m.deleteProfile(ctx, "deleteEntrepreneur", database.Entrepreneurs, "entrepreneur", id)
}

func (m *Mutator) deleteProfile(ctx context.Context, op, coll, kind string, id primitive.ObjectID) (DeleteOutcome, error) {
	var rec struct {
		UserID primitive.ObjectID `bson:"userId"`
	}
	if err := m.load(ctx, op, coll, kind, id, &rec); err != nil {
		return DeleteOutcome{}, err
	}

	userN, userErr := m.coll(database.Users).DeleteOne(ctx, store.ByID(rec.UserID))
	recN, recErr := m.coll(coll).DeleteOne(ctx, store.ByID(id))

	out := DeleteOutcome{
		UserID:        rec.UserID,
		UserDeleted:   userErr == nil && userN == 1,
		RecordDeleted: recErr == nil && recN == 1,
	}
	if out.UserDeleted && out.RecordDeleted {
		return out, nil
	}

	err := errors.Join(userErr, recErr)
	m.log.Error(ctx, kind+" deletion incomplete",
		kind, id.Hex(), "user", rec.UserID.Hex(),
		"userDeleted", out.UserDeleted, "recordDeleted", out.RecordDeleted, "error", err)
	return out, domain.PartialFailure(op, err, "user deleted: %t, %s deleted: %t", out.UserDeleted, kind, out.RecordDeleted)
}
