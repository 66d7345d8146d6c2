package store

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

func matches(doc bson.M, filter bson.M) (bool, error) {
	for key, cond := range filter {
		switch key {
		case "$and", "$or":
			clauses, ok := cond.(bson.A)
			if !ok {
				return false, fmt.Errorf("%s expects an array", key)
			}
			ok, err := matchLogical(doc, key, clauses)
			if err != nil || !ok {
				return false, err
			}
		default:
			ok, err := matchField(doc, key, cond)
			if err != nil || !ok {
				return false, err
			}
		}
	}
	return true, nil
}

func matchLogical(doc bson.M, op string, clauses bson.A) (bool, error) {
	for _, c := range clauses {
		sub, ok := c.(bson.M)
		if !ok {
			return false, fmt.Errorf("%s clause must be a document", op)
		}
		ok, err := matches(doc, sub)
		if err != nil {
			return false, err
		}
		if op == "$or" && ok {
			return true, nil
		}
		if op == "$and" && !ok {
			return false, nil
		}
	}
	return op == "$and", nil
}

func matchField(doc bson.M, path string, cond any) (bool, error) {
	values, found := lookup(doc, strings.Split(path, "."))

	ops, isOps := operatorDoc(cond)
	if !isOps {
		return eq(values, found, cond), nil
	}
	for op, arg := range ops {
		ok, err := evalOp(op, arg, values, found)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func operatorDoc(v any) (bson.M, bool) {
	m, ok := v.(bson.M)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

func evalOp(op string, arg any, values []any, found bool) (bool, error) {
	switch op {
	case "$eq":
		return eq(values, found, arg), nil
	case "$ne":
		return !eq(values, found, arg), nil
	case "$in", "$nin":
		list, ok := arg.(bson.A)
		if !ok {
			return false, fmt.Errorf("%s expects an array", op)
		}
		in := false
		for _, want := range list {
			if eq(values, found, want) {
				in = true
				break
			}
		}
		if op == "$nin" {
			return !in, nil
		}
		return in, nil
	case "$exists":
		want, _ := arg.(bool)
		return found == want, nil
	default:
		return false, fmt.Errorf("unsupported operator %s", op)
	}
}

// eq implements MongoDB equality: a missing field equals null, and an array
// field equals a value when it contains it.
func eq(values []any, found bool, want any) bool {
	if !found {
		return want == nil
	}
	for _, v := range expand(values) {
		if equal(v, want) {
			return true
		}
	}
	return false
}

func expand(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
		if arr, ok := v.(bson.A); ok {
			out = append(out, arr...)
		}
	}
	return out
}

// lookup resolves a dotted path, descending into arrays of documents.
func lookup(v any, parts []string) ([]any, bool) {
	if len(parts) == 0 {
		return []any{v}, true
	}
	switch t := v.(type) {
	case bson.M:
		next, ok := t[parts[0]]
		if !ok {
			return nil, false
		}
		return lookup(next, parts[1:])
	case bson.A:
		var out []any
		found := false
		for _, el := range t {
			if m, ok := el.(bson.M); ok {
				vs, f := lookup(m, parts)
				if f {
					out = append(out, vs...)
					found = true
				}
			}
		}
		return out, found
	}
	return nil, false
}

func firstValue(doc bson.M, path string) any {
	values, found := lookup(doc, strings.Split(path, "."))
	if !found || len(values) == 0 {
		return nil
	}
	return values[0]
}
