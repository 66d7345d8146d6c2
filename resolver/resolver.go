// Package resolver performs read-time joins: reference fields of a document
// are replaced by the documents they point to. It never writes to the store.
package resolver

import (
	"context"

	"foundersnexus/docpath"
	"foundersnexus/domain"
	"foundersnexus/logging"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// Field names one reference field to resolve.
type Field struct {
	// Path is a dotted path, descending through arrays:
	// "previousFundings.investors.investorId".
	Path       string
	Collection string
	// MatchField is the target field holding the ref. Defaults to _id.
	MatchField string
	// As writes the target next to the ref instead of replacing it.
	As string
	// Nested fields are resolved on the fetched targets.
	Nested []Field
}

func (f Field) matchField() string {
	if f.MatchField == "" {
		return "_id"
	}
	return f.MatchField
}

func (f Field) outKey(key string) string {
	if f.As == "" {
		return key
	}
	return f.As
}

// Dangling is a stored ref whose target does not exist.
type Dangling struct {
	Path       string
	Collection string
	Ref        primitive.ObjectID
}

type Resolver struct {
	store store.Store
	log   logging.Logger
	limit int
}

func New(s store.Store, log logging.Logger) *Resolver {
	return &Resolver{store: s, log: log, limit: 4}
}

// Resolve resolves fields on a single document in place.
func (r *Resolver) Resolve(ctx context.Context, doc bson.M, fields ...Field) ([]Dangling, error) {
	return r.ResolveMany(ctx, []bson.M{doc}, fields...)
}

// ResolveMany resolves fields on every document in place. Targets of each
// field are fetched with a single query and the fields are fetched
// concurrently. Missing targets become nil and are returned as Dangling.
func (r *Resolver) ResolveMany(ctx context.Context, docs []bson.M, fields ...Field) ([]Dangling, error) {
	dangling, err := r.resolveMany(ctx, docs, fields)
	if err != nil {
		return nil, domain.Internal("resolve", err)
	}
	return dangling, nil
}

func (r *Resolver) resolveMany(ctx context.Context, docs []bson.M, fields []Field) ([]Dangling, error) {
	for _, d := range docs {
		docpath.Normalize(d)
	}

	targets := make([]map[primitive.ObjectID]bson.M, len(fields))
	nested := make([][]Dangling, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for i, f := range fields {
		refs := docpath.Collect(docs, f.Path)
		if len(refs) == 0 {
			continue
		}
		g.Go(func() error {
			found, dangling, err := r.fetch(gctx, f, refs)
			if err != nil {
				return err
			}
			targets[i] = found
			nested[i] = dangling
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var dangling []Dangling
	for i, f := range fields {
		found := targets[i]
		dangling = append(dangling, nested[i]...)
		for _, d := range docs {
			docpath.Visit(d, f.Path, func(parent bson.M, key string, value any) {
				if arr, ok := docpath.AsArray(value); ok {
					out := make(bson.A, 0, len(arr))
					for _, el := range arr {
						out = append(out, r.substitute(ctx, f, found, el, &dangling))
					}
					parent[f.outKey(key)] = out
					return
				}
				parent[f.outKey(key)] = r.substitute(ctx, f, found, value, &dangling)
			})
		}
	}
	return dangling, nil
}

func (r *Resolver) substitute(ctx context.Context, f Field, found map[primitive.ObjectID]bson.M, value any, dangling *[]Dangling) any {
	ref, ok := value.(primitive.ObjectID)
	if !ok {
		// Optional refs stored as null stay null.
		return nil
	}
	target, ok := found[ref]
	if !ok {
		r.log.Warn(ctx, "dangling reference", "collection", f.Collection, "path", f.Path, "ref", ref.Hex())
		*dangling = append(*dangling, Dangling{Path: f.Path, Collection: f.Collection, Ref: ref})
		return nil
	}
	return target
}

func (r *Resolver) fetch(ctx context.Context, f Field, refs []primitive.ObjectID) (map[primitive.ObjectID]bson.M, []Dangling, error) {
	match := f.matchField()
	docs, err := store.FindDocs(ctx, r.store.Collection(f.Collection), store.Filter{match: store.In(refs)})
	if err != nil {
		return nil, nil, err
	}

	var dangling []Dangling
	if len(f.Nested) > 0 && len(docs) > 0 {
		dangling, err = r.resolveMany(ctx, docs, f.Nested)
		if err != nil {
			return nil, nil, err
		}
		for i := range dangling {
			dangling[i].Path = f.Path + "." + dangling[i].Path
		}
	}

	found := make(map[primitive.ObjectID]bson.M, len(docs))
	for _, d := range docs {
		if id, ok := d[match].(primitive.ObjectID); ok {
			if _, dup := found[id]; !dup {
				found[id] = d
			}
		}
	}
	return found, dangling, nil
}
