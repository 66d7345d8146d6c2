// Package docpath walks dotted field paths through decoded documents,
// descending into nested objects and arrays of objects.
package docpath

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VisitFunc is called with the object holding the final path segment. value
// is nil when the key is absent.
type VisitFunc func(parent bson.M, key string, value any)

// Visit calls fn for every occurrence of path in doc. For
// "previousFundings.investors.investorId" it is called once per investor
// entry of every funding round.
func Visit(doc bson.M, path string, fn VisitFunc) {
	visit(doc, strings.Split(path, "."), fn)
}

func visit(v any, parts []string, fn VisitFunc) {
	if arr, ok := AsArray(v); ok {
		for _, el := range arr {
			visit(el, parts, fn)
		}
		return
	}
	m, ok := AsMap(v)
	if !ok {
		return
	}
	if len(parts) == 1 {
		val, present := m[parts[0]]
		if !present {
			return
		}
		fn(m, parts[0], val)
		return
	}
	next, ok := m[parts[0]]
	if !ok {
		return
	}
	visit(next, parts[1:], fn)
}

// Refs returns the refs held by a field value: a single ref or an array of refs.
func Refs(v any) []primitive.ObjectID {
	switch t := v.(type) {
	case primitive.ObjectID:
		return []primitive.ObjectID{t}
	case *primitive.ObjectID:
		if t == nil {
			return nil
		}
		return []primitive.ObjectID{*t}
	}
	arr, ok := AsArray(v)
	if !ok {
		return nil
	}
	var out []primitive.ObjectID
	for _, el := range arr {
		if id, ok := el.(primitive.ObjectID); ok {
			out = append(out, id)
		}
	}
	return out
}

// Collect returns the distinct refs found at path across docs, in first-seen order.
func Collect(docs []bson.M, path string) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{})
	var out []primitive.ObjectID
	for _, d := range docs {
		Visit(d, path, func(_ bson.M, _ string, value any) {
			for _, id := range Refs(value) {
				if _, dup := seen[id]; !dup {
					seen[id] = struct{}{}
					out = append(out, id)
				}
			}
		})
	}
	return out
}

// AsMap accepts the map shapes produced by BSON decoding.
func AsMap(v any) (bson.M, bool) {
	switch t := v.(type) {
	case bson.M:
		return t, true
	case map[string]any:
		return bson.M(t), true
	case bson.D:
		return t.Map(), true
	}
	return nil, false
}

// AsArray accepts the array shapes produced by BSON decoding.
func AsArray(v any) ([]any, bool) {
	switch t := v.(type) {
	case bson.A:
		return []any(t), true
	case []any:
		return t, true
	}
	return nil, false
}

// Normalize rewrites nested bson.D and map values of doc into bson.M in place
// so that writes made through Visit land in doc itself.
func Normalize(doc bson.M) bson.M {
	for k, v := range doc {
		doc[k] = normalize(v)
	}
	return doc
}

func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		return Normalize(t)
	case map[string]any:
		return Normalize(bson.M(t))
	case bson.D:
		return Normalize(t.Map())
	case bson.A:
		for i, el := range t {
			t[i] = normalize(el)
		}
		return t
	case []any:
		for i, el := range t {
			t[i] = normalize(el)
		}
		return bson.A(t)
	}
	return v
}
