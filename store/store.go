// Package store is the document store adapter: typed access to named
// collections with query predicates and per-document update operators.
// Nothing here offers multi-document transactions.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound     = errors.New("store: document not found")
	ErrDuplicateKey = errors.New("store: duplicate key")
)

// Filter is a query predicate. Supported operators: equality (array fields
// match on membership), $eq, $ne, $in, $nin, $exists, $and, $or.
type Filter = bson.M

// Update is a document of update operators: $set, $unset, $push, $pull, $addToSet.
type Update = bson.M

type UpdateResult struct {
	Matched    int64
	Modified   int64
	UpsertedID *primitive.ObjectID
}

type Collection interface {
	Name() string
	InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error)
	// FindOne decodes the first match into out or returns ErrNotFound.
	FindOne(ctx context.Context, filter Filter, out any) error
	// Find decodes every match into out, which must be a pointer to a slice.
	Find(ctx context.Context, filter Filter, out any, opts ...FindOption) error
	UpdateOne(ctx context.Context, filter Filter, update Update) (UpdateResult, error)
	UpdateMany(ctx context.Context, filter Filter, update Update) (UpdateResult, error)
	// UpsertOne applies update to the first match or inserts a document built
	// from the filter's equality fields.
	UpsertOne(ctx context.Context, filter Filter, update Update) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter Filter) (int64, error)
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

type Store interface {
	Collection(name string) Collection
}

// Index describes a unique or plain index. Partial restricts it to the
// documents matching the filter.
type Index struct {
	Collection string
	Name       string
	Fields     []string
	Unique     bool
	Partial    Filter
}

// Indexer creates indexes on a backend.
type Indexer interface {
	EnsureIndex(ctx context.Context, idx Index) error
}

type FindOptions struct {
	SortField string
	SortDesc  bool
	Limit     int64
	Skip      int64
}

type FindOption func(*FindOptions)

func SortBy(field string, desc bool) FindOption {
	return func(o *FindOptions) {
		o.SortField = field
		o.SortDesc = desc
	}
}

func Limit(n int64) FindOption {
	return func(o *FindOptions) { o.Limit = n }
}

func Skip(n int64) FindOption {
	return func(o *FindOptions) { o.Skip = n }
}

func collectOptions(opts []FindOption) FindOptions {
	var o FindOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FindOne fetches a single document of type T.
func FindOne[T any](ctx context.Context, c Collection, filter Filter) (T, error) {
	var out T
	err := c.FindOne(ctx, filter, &out)
	return out, err
}

// Find fetches every matching document as T.
func Find[T any](ctx context.Context, c Collection, filter Filter, opts ...FindOption) ([]T, error) {
	var out []T
	if err := c.Find(ctx, filter, &out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// FindDocs fetches matching documents in their decoded, untyped form.
func FindDocs(ctx context.Context, c Collection, filter Filter, opts ...FindOption) ([]bson.M, error) {
	return Find[bson.M](ctx, c, filter, opts...)
}

// Exists reports whether at least one document matches.
func Exists(ctx context.Context, c Collection, filter Filter) (bool, error) {
	n, err := c.Count(ctx, filter)
	return n > 0, err
}
