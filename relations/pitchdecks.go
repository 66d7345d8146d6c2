package relations

import (
	"context"
	"errors"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/models"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivatePitchDeck deactivates every deck of the deck's startup and then
// activates the deck. Stopping between the two writes leaves no active deck,
// never two. A concurrent activation that loses the race on the unique
// active index fails with Conflict.
func (m *Mutator) ActivatePitchDeck(ctx context.Context, id primitive.ObjectID) error {
	const op = "activatePitchDeck"

	var deck models.PitchDeck
	if err := m.load(ctx, op, database.PitchDecks, "pitch deck", id, &deck); err != nil {
		return err
	}

	decks := m.coll(database.PitchDecks)
	if _, err := decks.UpdateMany(ctx, store.Filter{"startupId": deck.StartupID}, store.Set(bson.M{"active": false})); err != nil {
		return domain.Internal(op, err)
	}

	res, err := decks.UpdateOne(ctx, store.ByID(id), store.Set(bson.M{"active": true, "updatedAt": m.now()}))
	if errors.Is(err, store.ErrDuplicateKey) {
		return domain.Conflict(op, "startup %s already has an active pitch deck", deck.StartupID.Hex())
	}
	if err != nil {
		return domain.Internal(op, err)
	}
	if res.Matched == 0 {
		return domain.NotFound(op, "pitch deck %s not found", id.Hex())
	}
	return nil
}
