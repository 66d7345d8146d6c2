package relations

import (
	"context"
	"errors"
	"fmt"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/models"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateStartup inserts s, points every founder's currentStartupId at it and
// appends an investment record to every funding investor that has an
// Investor profile. Only the insert can fail the call; failed side effects
// are returned as warnings and never rolled back.
func (m *Mutator) CreateStartup(ctx context.Context, s models.Startup) (models.Startup, []string, error) {
	const op = "createStartup"

	now := m.now()
	s.ID = primitive.NilObjectID
	s.CreatedAt, s.UpdatedAt = now, now
	if s.Founders == nil {
		s.Founders = []primitive.ObjectID{}
	}
	if s.PreviousFundings == nil {
		s.PreviousFundings = []models.FundingRound{}
	}
	if s.EquitySplit == nil {
		s.EquitySplit = []models.EquityShare{}
	}

	id, err := m.coll(database.Startups).InsertOne(ctx, s)
	if err != nil {
		return models.Startup{}, nil, domain.Internal(op, err)
	}
	s.ID = id

	var warnings []string
	warn := func(msg string, args ...any) {
		w := fmt.Sprintf(msg, args...)
		m.log.Warn(ctx, "startup side effect failed", "startup", id.Hex(), "warning", w)
		warnings = append(warnings, w)
	}

	users := m.coll(database.Users)
	for _, f := range s.Founders {
		res, err := users.UpdateOne(ctx, store.ByID(f), store.Set(bson.M{"currentStartupId": id, "updatedAt": now}))
		switch {
		case err != nil:
			warn("founder %s: back-reference not set: %v", f.Hex(), err)
		case res.Matched == 0:
			warn("founder %s not found", f.Hex())
		}
	}

	investors := m.coll(database.Investors)
	for _, ref := range s.InvestorRefs() {
		var inv models.Investor
		err := investors.FindOne(ctx, store.Filter{"userId": ref}, &inv)
		if errors.Is(err, store.ErrNotFound) {
			m.log.Debug(ctx, "funding investor has no profile", "startup", id.Hex(), "user", ref.Hex())
			continue
		}
		if err != nil {
			warn("investor %s: lookup failed: %v", ref.Hex(), err)
			continue
		}

		round, _ := s.LatestRoundFor(ref)
		record := models.InvestmentRecord{
			StartupID:   &id,
			StartupName: s.StartupName,
			Amount:      round.Amount,
			Date:        round.Date,
		}
		update := store.Merge(store.AddToSet("previousInvestments", record), store.Set(bson.M{"updatedAt": now}))
		if _, err := investors.UpdateOne(ctx, store.ByID(inv.ID), update); err != nil {
			warn("investor %s: investment record not added: %v", ref.Hex(), err)
		}
	}

	return s, warnings, nil
}

// DeleteStartup removes the startup and then clears currentStartupId on every
// user still pointing at it, whether or not the founders list was current.
// The cleanup does not affect the outcome; its failure is returned as a
// warning.
func (m *Mutator) DeleteStartup(ctx context.Context, id primitive.ObjectID) ([]string, error) {
	const op = "deleteStartup"

	n, err := m.coll(database.Startups).DeleteOne(ctx, store.ByID(id))
	if err != nil {
		return nil, domain.Internal(op, err)
	}
	if n == 0 {
		return nil, domain.NotFound(op, "startup %s not found", id.Hex())
	}

	update := store.Merge(store.Unset("currentStartupId"), store.Set(bson.M{"updatedAt": m.now()}))
	res, err := m.coll(database.Users).UpdateMany(ctx, store.Filter{"currentStartupId": id}, update)
	if err != nil {
		m.log.Warn(ctx, "founder back-references not cleared", "startup", id.Hex(), "error", err)
		return []string{fmt.Sprintf("founder back-references not cleared: %v", err)}, nil
	}
	m.log.Debug(ctx, "founder back-references cleared", "startup", id.Hex(), "users", res.Modified)
	return nil, nil
}

// DeleteDecksOfStartup removes the pitch decks of a deleted startup.
func (m *Mutator) DeleteDecksOfStartup(ctx context.Context, startupID primitive.ObjectID) (int64, error) {
	n, err := m.coll(database.PitchDecks).DeleteMany(ctx, store.Filter{"startupId": startupID})
	if err != nil {
		return n, domain.Internal("deleteDecksOfStartup", err)
	}
	return n, nil
}
