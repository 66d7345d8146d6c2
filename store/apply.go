package store

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

func applyUpdate(doc bson.M, update bson.M) error {
	for op, raw := range update {
		fields, ok := raw.(bson.M)
		if !ok {
			return fmt.Errorf("%s expects a document", op)
		}
		for path, val := range fields {
			if err := applyOp(doc, op, path, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyOp(doc bson.M, op, path string, val any) error {
	switch op {
	case "$set":
		return setPath(doc, path, clone(val))
	case "$unset":
		unsetPath(doc, path)
		return nil
	case "$push":
		arr, err := arrayAt(doc, path)
		if err != nil {
			return err
		}
		for _, item := range eachItems(val) {
			arr = append(arr, clone(item))
		}
		return setPath(doc, path, arr)
	case "$addToSet":
		arr, err := arrayAt(doc, path)
		if err != nil {
			return err
		}
		for _, item := range eachItems(val) {
			if !containsEqual(arr, item) {
				arr = append(arr, clone(item))
			}
		}
		return setPath(doc, path, arr)
	case "$pull":
		if _, found := lookup(doc, strings.Split(path, ".")); !found {
			return nil
		}
		arr, err := arrayAt(doc, path)
		if err != nil {
			return err
		}
		kept := bson.A{}
		for _, el := range arr {
			drop, err := pullMatches(el, val)
			if err != nil {
				return err
			}
			if !drop {
				kept = append(kept, el)
			}
		}
		return setPath(doc, path, kept)
	default:
		return fmt.Errorf("unsupported update operator %s", op)
	}
}

func eachItems(val any) bson.A {
	if m, ok := val.(bson.M); ok {
		if each, ok := m["$each"].(bson.A); ok {
			return each
		}
	}
	return bson.A{val}
}

func containsEqual(arr bson.A, v any) bool {
	for _, el := range arr {
		if equal(el, v) {
			return true
		}
	}
	return false
}

func pullMatches(el any, cond any) (bool, error) {
	if ops, ok := operatorDoc(cond); ok {
		for op, arg := range ops {
			ok, err := evalOp(op, arg, []any{el}, true)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	if sub, ok := cond.(bson.M); ok {
		if m, ok := el.(bson.M); ok {
			return matches(m, sub)
		}
	}
	return equal(el, cond), nil
}

func arrayAt(doc bson.M, path string) (bson.A, error) {
	parts := strings.Split(path, ".")
	var cur any = doc
	for _, p := range parts {
		m, ok := cur.(bson.M)
		if !ok {
			return bson.A{}, nil
		}
		cur, ok = m[p]
		if !ok {
			return bson.A{}, nil
		}
	}
	switch t := cur.(type) {
	case nil:
		return bson.A{}, nil
	case bson.A:
		return append(bson.A{}, t...), nil
	default:
		return nil, fmt.Errorf("field %s is not an array", path)
	}
}

func setPath(doc bson.M, path string, val any) error {
	parts := strings.Split(path, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p]
		if !ok || next == nil {
			m := bson.M{}
			cur[p] = m
			cur = m
			continue
		}
		m, ok := next.(bson.M)
		if !ok {
			return fmt.Errorf("cannot set %s: %s is not a document", path, p)
		}
		cur = m
	}
	cur[parts[len(parts)-1]] = val
	return nil
}

func unsetPath(doc bson.M, path string) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		m, ok := cur[p].(bson.M)
		if !ok {
			return
		}
		cur = m
	}
	delete(cur, parts[len(parts)-1])
}
