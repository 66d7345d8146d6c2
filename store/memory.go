package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store with MongoDB query and update semantics
// for the operator subset the engine uses. It backs the test suites and the
// server's -memory mode.
type MemoryStore struct {
	mu      sync.RWMutex
	docs    map[string][]bson.M
	indexes map[string][]memoryIndex
}

type memoryIndex struct {
	Index
	partial bson.M
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:    make(map[string][]bson.M),
		indexes: make(map[string][]memoryIndex),
	}
}

func (s *MemoryStore) Collection(name string) Collection {
	return &memoryCollection{s: s, name: name}
}

func (s *MemoryStore) EnsureIndex(_ context.Context, idx Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mi := memoryIndex{Index: idx}
	if idx.Partial != nil {
		p, err := toDocument(idx.Partial)
		if err != nil {
			return err
		}
		mi.partial = p
	}
	for _, existing := range s.indexes[idx.Collection] {
		if existing.Name == idx.Name && idx.Name != "" {
			return nil
		}
	}

	docs := s.docs[idx.Collection]
	for i := range docs {
		if err := s.checkIndex(idx.Collection, mi, docs[i], i); err != nil {
			return err
		}
	}
	s.indexes[idx.Collection] = append(s.indexes[idx.Collection], mi)
	return nil
}

func (s *MemoryStore) checkUnique(coll string, doc bson.M, skip int) error {
	for i, other := range s.docs[coll] {
		if i == skip {
			continue
		}
		if equal(other["_id"], doc["_id"]) {
			return fmt.Errorf("%w: _id %v in %s", ErrDuplicateKey, doc["_id"], coll)
		}
	}
	for _, idx := range s.indexes[coll] {
		if err := s.checkIndex(coll, idx, doc, skip); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) checkIndex(coll string, idx memoryIndex, doc bson.M, skip int) error {
	if !idx.Unique || !idx.covers(doc) {
		return nil
	}
	key := idx.key(doc)
	for i, other := range s.docs[coll] {
		if i == skip || !idx.covers(other) {
			continue
		}
		if equal(key, idx.key(other)) {
			return fmt.Errorf("%w: index %s on %s", ErrDuplicateKey, idx.displayName(), coll)
		}
	}
	return nil
}

func (idx memoryIndex) covers(doc bson.M) bool {
	if idx.partial == nil {
		return true
	}
	ok, err := matches(doc, idx.partial)
	return err == nil && ok
}

func (idx memoryIndex) key(doc bson.M) bson.A {
	key := make(bson.A, len(idx.Fields))
	for i, f := range idx.Fields {
		key[i] = firstValue(doc, f)
	}
	return key
}

func (idx memoryIndex) displayName() string {
	if idx.Name != "" {
		return idx.Name
	}
	return strings.Join(idx.Fields, "_")
}

type memoryCollection struct {
	s    *MemoryStore
	name string
}

func (c *memoryCollection) Name() string {
	return c.name
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, err
	}
	d, err := toDocument(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := d["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		d["_id"] = id
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if err := c.s.checkUnique(c.name, d, -1); err != nil {
		return primitive.NilObjectID, err
	}
	c.s.docs[c.name] = append(c.s.docs[c.name], d)
	return id, nil
}

func (c *memoryCollection) FindOne(ctx context.Context, filter Filter, out any) error {
	matched, err := c.find(ctx, filter, FindOptions{Limit: 1})
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return ErrNotFound
	}
	return decodeInto(matched[0], out)
}

func (c *memoryCollection) Find(ctx context.Context, filter Filter, out any, opts ...FindOption) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("find on %s: out must be a pointer to a slice, got %T", c.name, out)
	}
	matched, err := c.find(ctx, filter, collectOptions(opts))
	if err != nil {
		return err
	}

	slice := reflect.MakeSlice(rv.Elem().Type(), 0, len(matched))
	for _, d := range matched {
		el := reflect.New(slice.Type().Elem())
		if err := decodeInto(d, el.Interface()); err != nil {
			return err
		}
		slice = reflect.Append(slice, el.Elem())
	}
	rv.Elem().Set(slice)
	return nil
}

func (c *memoryCollection) find(ctx context.Context, filter Filter, o FindOptions) ([]bson.M, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := toDocument(filter)
	if err != nil {
		return nil, err
	}

	c.s.mu.RLock()
	var out []bson.M
	for _, d := range c.s.docs[c.name] {
		ok, err := matches(d, f)
		if err != nil {
			c.s.mu.RUnlock()
			return nil, err
		}
		if ok {
			out = append(out, clone(d).(bson.M))
		}
	}
	c.s.mu.RUnlock()

	if o.SortField != "" {
		sort.SliceStable(out, func(i, j int) bool {
			cmp := compare(firstValue(out[i], o.SortField), firstValue(out[j], o.SortField))
			if o.SortDesc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	if o.Skip > 0 {
		if o.Skip >= int64(len(out)) {
			return nil, nil
		}
		out = out[o.Skip:]
	}
	if o.Limit > 0 && int64(len(out)) > o.Limit {
		out = out[:o.Limit]
	}
	return out, nil
}

func (c *memoryCollection) UpdateOne(ctx context.Context, filter Filter, update Update) (UpdateResult, error) {
	return c.update(ctx, filter, update, false, false)
}

func (c *memoryCollection) UpdateMany(ctx context.Context, filter Filter, update Update) (UpdateResult, error) {
	return c.update(ctx, filter, update, true, false)
}

func (c *memoryCollection) UpsertOne(ctx context.Context, filter Filter, update Update) (UpdateResult, error) {
	return c.update(ctx, filter, update, false, true)
}

func (c *memoryCollection) update(ctx context.Context, filter Filter, update Update, many, upsert bool) (UpdateResult, error) {
	var res UpdateResult
	if err := ctx.Err(); err != nil {
		return res, err
	}
	f, err := toDocument(filter)
	if err != nil {
		return res, err
	}
	u, err := toDocument(update)
	if err != nil {
		return res, err
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	docs := c.s.docs[c.name]
	for i, d := range docs {
		ok, err := matches(d, f)
		if err != nil {
			return res, err
		}
		if !ok {
			continue
		}
		res.Matched++

		next := clone(d).(bson.M)
		if err := applyUpdate(next, u); err != nil {
			return res, err
		}
		if !equal(d, next) {
			if err := c.s.checkUnique(c.name, next, i); err != nil {
				return res, err
			}
			docs[i] = next
			res.Modified++
		}
		if !many {
			break
		}
	}

	if res.Matched == 0 && upsert {
		doc := bson.M{}
		for k, v := range f {
			if _, isOps := operatorDoc(v); isOps || strings.HasPrefix(k, "$") {
				continue
			}
			if err := setPath(doc, k, clone(v)); err != nil {
				return res, err
			}
		}
		if err := applyUpdate(doc, u); err != nil {
			return res, err
		}
		id, ok := doc["_id"].(primitive.ObjectID)
		if !ok {
			id = primitive.NewObjectID()
			doc["_id"] = id
		}
		if err := c.s.checkUnique(c.name, doc, -1); err != nil {
			return res, err
		}
		c.s.docs[c.name] = append(c.s.docs[c.name], doc)
		res.UpsertedID = &id
	}
	return res, nil
}

func (c *memoryCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	return c.delete(ctx, filter, false)
}

func (c *memoryCollection) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	return c.delete(ctx, filter, true)
}

func (c *memoryCollection) delete(ctx context.Context, filter Filter, many bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, err := toDocument(filter)
	if err != nil {
		return 0, err
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var deleted int64
	kept := make([]bson.M, 0, len(c.s.docs[c.name]))
	for _, d := range c.s.docs[c.name] {
		if many || deleted == 0 {
			ok, err := matches(d, f)
			if err != nil {
				return 0, err
			}
			if ok {
				deleted++
				continue
			}
		}
		kept = append(kept, d)
	}
	c.s.docs[c.name] = kept
	return deleted, nil
}

func (c *memoryCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	matched, err := c.find(ctx, filter, FindOptions{})
	return int64(len(matched)), err
}
