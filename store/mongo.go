package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the production Store backed by a MongoDB database.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{c: s.db.Collection(name)}
}

func (s *MongoStore) EnsureIndex(ctx context.Context, idx Index) error {
	keys := bson.D{}
	for _, f := range idx.Fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	opts := options.Index().SetUnique(idx.Unique)
	if idx.Name != "" {
		opts.SetName(idx.Name)
	}
	if idx.Partial != nil {
		opts.SetPartialFilterExpression(idx.Partial)
	}

	_, err := s.db.Collection(idx.Collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts})
	if err != nil {
		return fmt.Errorf("create index %s on %s: %w", idx.Name, idx.Collection, err)
	}
	return nil
}

type mongoCollection struct {
	c *mongo.Collection
}

func (m *mongoCollection) Name() string {
	return m.c.Name()
}

func (m *mongoCollection) InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error) {
	res, err := m.c.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, mapMongoError(err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert into %s: unexpected id type %T", m.c.Name(), res.InsertedID)
	}
	return id, nil
}

func (m *mongoCollection) FindOne(ctx context.Context, filter Filter, out any) error {
	return mapMongoError(m.c.FindOne(ctx, filter).Decode(out))
}

func (m *mongoCollection) Find(ctx context.Context, filter Filter, out any, opts ...FindOption) error {
	o := collectOptions(opts)
	findOpts := options.Find()
	if o.SortField != "" {
		dir := 1
		if o.SortDesc {
			dir = -1
		}
		findOpts.SetSort(bson.D{{Key: o.SortField, Value: dir}})
	}
	if o.Limit > 0 {
		findOpts.SetLimit(o.Limit)
	}
	if o.Skip > 0 {
		findOpts.SetSkip(o.Skip)
	}

	cursor, err := m.c.Find(ctx, filter, findOpts)
	if err != nil {
		return mapMongoError(err)
	}
	defer cursor.Close(ctx)

	return mapMongoError(cursor.All(ctx, out))
}

func (m *mongoCollection) UpdateOne(ctx context.Context, filter Filter, update Update) (UpdateResult, error) {
	res, err := m.c.UpdateOne(ctx, filter, update)
	return toUpdateResult(res), mapMongoError(err)
}

func (m *mongoCollection) UpdateMany(ctx context.Context, filter Filter, update Update) (UpdateResult, error) {
	res, err := m.c.UpdateMany(ctx, filter, update)
	return toUpdateResult(res), mapMongoError(err)
}

func (m *mongoCollection) UpsertOne(ctx context.Context, filter Filter, update Update) (UpdateResult, error) {
	res, err := m.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return toUpdateResult(res), mapMongoError(err)
}

func (m *mongoCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	res, err := m.c.DeleteOne(ctx, filter)
	if err != nil {
		return 0, mapMongoError(err)
	}
	return res.DeletedCount, nil
}

func (m *mongoCollection) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	res, err := m.c.DeleteMany(ctx, filter)
	if err != nil {
		return 0, mapMongoError(err)
	}
	return res.DeletedCount, nil
}

func (m *mongoCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	n, err := m.c.CountDocuments(ctx, filter)
	return n, mapMongoError(err)
}

func toUpdateResult(res *mongo.UpdateResult) UpdateResult {
	if res == nil {
		return UpdateResult{}
	}
	out := UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		out.UpsertedID = &id
	}
	return out
}

func mapMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	default:
		return err
	}
}
