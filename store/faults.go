package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Op names a Collection method for fault injection.
type Op string

const (
	OpInsert     Op = "insertOne"
	OpFindOne    Op = "findOne"
	OpFind       Op = "find"
	OpUpdateOne  Op = "updateOne"
	OpUpdateMany Op = "updateMany"
	OpUpsert     Op = "upsertOne"
	OpDeleteOne  Op = "deleteOne"
	OpDeleteMany Op = "deleteMany"
	OpCount      Op = "count"
)

// FaultyStore wraps a Store and fails chosen calls. It is used to stop a
// write recipe at a precise step.
type FaultyStore struct {
	Store

	mu     sync.Mutex
	faults []*fault
}

type fault struct {
	collection string
	op         Op
	skip       int
	err        error
}

func WithFaults(s Store) *FaultyStore {
	return &FaultyStore{Store: s}
}

// FailNext makes the next op call on collection return err.
func (f *FaultyStore) FailNext(collection string, op Op, err error) {
	f.FailAfter(collection, op, 0, err)
}

// FailAfter lets n op calls on collection through, then fails one with err.
func (f *FaultyStore) FailAfter(collection string, op Op, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = append(f.faults, &fault{collection: collection, op: op, skip: n, err: err})
}

// Reset drops every pending fault.
func (f *FaultyStore) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = nil
}

func (f *FaultyStore) Collection(name string) Collection {
	return &faultyCollection{inner: f.Store.Collection(name), f: f}
}

func (f *FaultyStore) check(collection string, op Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, ft := range f.faults {
		if ft.collection != collection || ft.op != op {
			continue
		}
		if ft.skip > 0 {
			ft.skip--
			return nil
		}
		f.faults = append(f.faults[:i], f.faults[i+1:]...)
		return ft.err
	}
	return nil
}

type faultyCollection struct {
	inner Collection
	f     *FaultyStore
}

func (c *faultyCollection) Name() string {
	return c.inner.Name()
}

func (c *faultyCollection) InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error) {
	if err := c.f.check(c.Name(), OpInsert); err != nil {
		return primitive.NilObjectID, err
	}
	return c.inner.InsertOne(ctx, doc)
}

func (c *faultyCollection) FindOne(ctx context.Context, filter Filter, out any) error {
	if err := c.f.check(c.Name(), OpFindOne); err != nil {
		return err
	}
	return c.inner.FindOne(ctx, filter, out)
}

func (c *faultyCollection) Find(ctx context.Context, filter Filter, out any, opts ...FindOption) error {
	if err := c.f.check(c.Name(), OpFind); err != nil {
		return err
	}
	return c.inner.Find(ctx, filter, out, opts...)
}

func (c *faultyCollection) UpdateOne(ctx context.Context, filter Filter, update Update) (UpdateResult, error) {
	if err := c.f.check(c.Name(), OpUpdateOne); err != nil {
		return UpdateResult{}, err
	}
	return c.inner.UpdateOne(ctx, filter, update)
}

func (c *faultyCollection) UpdateMany(ctx context.Context, filter Filter, update Update) (UpdateResult, error) {
	if err := c.f.check(c.Name(), OpUpdateMany); err != nil {
		return UpdateResult{}, err
	}
	return c.inner.UpdateMany(ctx, filter, update)
}

func (c *faultyCollection) UpsertOne(ctx context.Context, filter Filter, update Update) (UpdateResult, error) {
	if err := c.f.check(c.Name(), OpUpsert); err != nil {
		return UpdateResult{}, err
	}
	return c.inner.UpsertOne(ctx, filter, update)
}

func (c *faultyCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	if err := c.f.check(c.Name(), OpDeleteOne); err != nil {
		return 0, err
	}
	return c.inner.DeleteOne(ctx, filter)
}

func (c *faultyCollection) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	if err := c.f.check(c.Name(), OpDeleteMany); err != nil {
		return 0, err
	}
	return c.inner.DeleteMany(ctx, filter)
}

func (c *faultyCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	if err := c.f.check(c.Name(), OpCount); err != nil {
		return 0, err
	}
	return c.inner.Count(ctx, filter)
}
