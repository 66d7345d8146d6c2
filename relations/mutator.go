// Package relations holds the multi-document write recipes. Every recipe is
// an ordered list of single-document writes using idempotent operators, so a
// recipe that stopped half way can be re-run and converges.
package relations

import (
	"context"
	"errors"
	"time"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/logging"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Mutator struct {
	store store.Store
	log   logging.Logger
	now   func() time.Time
}

func New(s store.Store, log logging.Logger) *Mutator {
	return &Mutator{store: s, log: log, now: time.Now}
}

func (m *Mutator) coll(name string) store.Collection {
	return m.store.Collection(name)
}

// load reads one document into out, mapping absence to NotFound.
func (m *Mutator) load(ctx context.Context, op, coll, kind string, id primitive.ObjectID, out any) error {
	err := m.coll(coll).FindOne(ctx, store.ByID(id), out)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NotFound(op, "%s %s not found", kind, id.Hex())
	}
	if err != nil {
		return domain.Internal(op, err)
	}
	return nil
}

func (m *Mutator) mustExist(ctx context.Context, op, coll, kind string, id primitive.ObjectID) error {
	ok, err := store.Exists(ctx, m.coll(coll), store.ByID(id))
	if err != nil {
		return domain.Internal(op, err)
	}
	if !ok {
		return domain.NotFound(op, "%s %s not found", kind, id.Hex())
	}
	return nil
}

func (m *Mutator) userExists(ctx context.Context, op string, id primitive.ObjectID) error {
	return m.mustExist(ctx, op, database.Users, "user", id)
}

// Now is the clock used for timestamps written by the recipes.
func (m *Mutator) Now() time.Time {
	return m.now()
}
