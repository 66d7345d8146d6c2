package database

import (
	"context"
	"testing"

	"foundersnexus/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureIndexes_Memory(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, EnsureIndexes(ctx, s))
	// Idempotent, as with MongoDB createIndex.
	require.NoError(t, EnsureIndexes(ctx, s))

	users := s.Collection(Users)
	_, err := users.InsertOne(ctx, bson.M{"email": "a@example.com"})
	require.NoError(t, err)
	_, err = users.InsertOne(ctx, bson.M{"email": "a@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicateKey)

	investors := s.Collection(Investors)
	owner := primitive.NewObjectID()
	_, err = investors.InsertOne(ctx, bson.M{"userId": owner})
	require.NoError(t, err)
	_, err = investors.InsertOne(ctx, bson.M{"userId": owner})
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

func TestIndexes_ActiveDeckIsPartial(t *testing.T) {
	var found bool
	for _, idx := range Indexes() {
		if idx.Collection == PitchDecks && idx.Unique {
			found = true
			assert.Equal(t, store.Filter{"active": true}, idx.Partial)
		}
	}
	assert.True(t, found)
}
