package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type person struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Name      string               `bson:"name"`
	Email     string               `bson:"email,omitempty"`
	Age       int                  `bson:"age"`
	Friends   []primitive.ObjectID `bson:"friends"`
	Team      *primitive.ObjectID  `bson:"team,omitempty"`
	CreatedAt time.Time            `bson:"createdAt"`
}

func seed(t *testing.T, c Collection, people ...person) []primitive.ObjectID {
	t.Helper()
	ids := make([]primitive.ObjectID, 0, len(people))
	for _, p := range people {
		id, err := c.InsertOne(context.Background(), p)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestMemory_InsertAndFindOne(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("people")

	ids := seed(t, c, person{Name: "ada", Age: 36, Friends: []primitive.ObjectID{}})
	require.False(t, ids[0].IsZero())

	got, err := FindOne[person](ctx, c, ByID(ids[0]))
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Name)
	assert.Equal(t, 36, got.Age)

	_, err = FindOne[person](ctx, c, ByID(primitive.NewObjectID()))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_FilterOperators(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("people")
	team := primitive.NewObjectID()
	ids := seed(t, c,
		person{Name: "ada", Age: 36},
		person{Name: "bob", Age: 20, Team: &team},
		person{Name: "cyd", Age: 20},
	)
	_, err := c.UpdateOne(ctx, ByID(ids[0]), AddToSet("friends", ids[1]))
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"equality", Filter{"age": 20}, []string{"bob", "cyd"}},
		{"array membership", Filter{"friends": ids[1]}, []string{"ada"}},
		{"in", Filter{"_id": In([]primitive.ObjectID{ids[0], ids[2]})}, []string{"ada", "cyd"}},
		{"nin", Filter{"name": bson.M{"$nin": bson.A{"ada", "bob"}}}, []string{"cyd"}},
		{"ne", Filter{"name": bson.M{"$ne": "ada"}}, []string{"bob", "cyd"}},
		{"exists", Filter{"team": bson.M{"$exists": true}}, []string{"bob"}},
		{"missing equals nil", Filter{"team": nil}, []string{"ada", "cyd"}},
		{"or", Filter{"$or": bson.A{bson.M{"name": "ada"}, bson.M{"team": team}}}, []string{"ada", "bob"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Find[person](ctx, c, tc.filter, SortBy("name", false))
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Name)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestMemory_SortLimitSkip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("people")
	seed(t, c, person{Name: "a", Age: 3}, person{Name: "b", Age: 1}, person{Name: "c", Age: 2})

	got, err := Find[person](ctx, c, Filter{}, SortBy("age", true), Skip(1), Limit(1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Name)
}

func TestMemory_SetOperatorsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("people")
	ids := seed(t, c, person{Name: "ada"}, person{Name: "bob"})

	for range 2 {
		_, err := c.UpdateOne(ctx, ByID(ids[0]), AddToSet("friends", ids[1]))
		require.NoError(t, err)
	}
	p, err := FindOne[person](ctx, c, ByID(ids[0]))
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{ids[1]}, p.Friends)

	res, err := c.UpdateOne(ctx, ByID(ids[0]), AddToSet("friends", ids[1]))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)
	assert.Equal(t, int64(0), res.Modified)

	for range 2 {
		_, err = c.UpdateOne(ctx, ByID(ids[0]), Pull("friends", ids[1]))
		require.NoError(t, err)
	}
	p, err = FindOne[person](ctx, c, ByID(ids[0]))
	require.NoError(t, err)
	assert.Empty(t, p.Friends)
}

func TestMemory_SetUnsetPushMerge(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("people")
	team := primitive.NewObjectID()
	ids := seed(t, c, person{Name: "ada", Team: &team})

	_, err := c.UpdateOne(ctx, ByID(ids[0]), Merge(
		Set(bson.M{"name": "ada l."}),
		Unset("team"),
		Push("friends", Each([]primitive.ObjectID{ids[0], ids[0]})),
	))
	require.NoError(t, err)

	p, err := FindOne[person](ctx, c, ByID(ids[0]))
	require.NoError(t, err)
	assert.Equal(t, "ada l.", p.Name)
	assert.Nil(t, p.Team)
	assert.Len(t, p.Friends, 2)
}

func TestMemory_PullWithCondition(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("people")
	ids := seed(t, c, person{Name: "ada"}, person{Name: "bob"}, person{Name: "cyd"})
	_, err := c.UpdateOne(ctx, ByID(ids[0]), AddToSet("friends", Each(ids)))
	require.NoError(t, err)

	_, err = c.UpdateOne(ctx, ByID(ids[0]), Pull("friends", In(ids[1:])))
	require.NoError(t, err)

	p, err := FindOne[person](ctx, c, ByID(ids[0]))
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{ids[0]}, p.Friends)
}

func TestMemory_UpdateManyAndDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("people")
	team := primitive.NewObjectID()
	seed(t, c, person{Name: "a", Team: &team}, person{Name: "b", Team: &team}, person{Name: "c"})

	res, err := c.UpdateMany(ctx, Filter{"team": team}, Unset("team"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Modified)

	n, err := c.Count(ctx, Filter{"team": bson.M{"$exists": true}})
	require.NoError(t, err)
	assert.Zero(t, n)

	deleted, err := c.DeleteOne(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = c.DeleteMany(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = c.DeleteOne(ctx, Filter{"name": "a"})
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestMemory_UpsertOne(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("people")

	res, err := c.UpsertOne(ctx, Filter{"email": "x@example.com"}, Set(bson.M{"name": "x"}))
	require.NoError(t, err)
	require.NotNil(t, res.UpsertedID)
	upserted := *res.UpsertedID

	res, err = c.UpsertOne(ctx, Filter{"email": "x@example.com"}, Set(bson.M{"name": "y"}))
	require.NoError(t, err)
	assert.Nil(t, res.UpsertedID)
	assert.Equal(t, int64(1), res.Modified)

	p, err := FindOne[person](ctx, c, Filter{"email": "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "y", p.Name)
	assert.Equal(t, upserted, p.ID)
}

func TestMemory_UniqueIndex(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.EnsureIndex(ctx, Index{Collection: "people", Name: "email_unique", Fields: []string{"email"}, Unique: true}))
	c := s.Collection("people")

	seed(t, c, person{Name: "a", Email: "a@example.com"})
	_, err := c.InsertOne(ctx, person{Name: "b", Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	ids := seed(t, c, person{Name: "c", Email: "c@example.com"})
	_, err = c.UpdateOne(ctx, ByID(ids[0]), Set(bson.M{"email": "a@example.com"}))
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemory_PartialUniqueIndex(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.EnsureIndex(ctx, Index{
		Collection: "decks",
		Name:       "one_active_per_startup",
		Fields:     []string{"startupId"},
		Unique:     true,
		Partial:    Filter{"active": true},
	}))
	c := s.Collection("decks")
	startup := primitive.NewObjectID()

	_, err := c.InsertOne(ctx, bson.M{"startupId": startup, "active": false})
	require.NoError(t, err)
	second, err := c.InsertOne(ctx, bson.M{"startupId": startup, "active": false})
	require.NoError(t, err)
	_, err = c.InsertOne(ctx, bson.M{"startupId": startup, "active": true})
	require.NoError(t, err)

	_, err = c.UpdateOne(ctx, ByID(second), Set(bson.M{"active": true}))
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemory_DocumentsAreCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("people")
	ids := seed(t, c, person{Name: "ada"})

	docs, err := FindDocs(ctx, c, ByID(ids[0]))
	require.NoError(t, err)
	docs[0]["name"] = "mutated"

	p, err := FindOne[person](ctx, c, ByID(ids[0]))
	require.NoError(t, err)
	assert.Equal(t, "ada", p.Name)
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore().Collection("people").InsertOne(ctx, person{Name: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFaultyStore(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	fs := WithFaults(NewMemoryStore())
	c := fs.Collection("people")

	fs.FailAfter("people", OpInsert, 1, boom)

	_, err := c.InsertOne(ctx, person{Name: "first"})
	require.NoError(t, err)
	_, err = c.InsertOne(ctx, person{Name: "second"})
	assert.ErrorIs(t, err, boom)
	_, err = c.InsertOne(ctx, person{Name: "third"})
	require.NoError(t, err)

	n, err := c.Count(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	fs.FailNext("other", OpCount, boom)
	_, err = c.Count(ctx, Filter{})
	require.NoError(t, err)
	fs.Reset()
	_, err = fs.Collection("other").Count(ctx, Filter{})
	assert.NoError(t, err)
}
