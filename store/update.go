package store

import "go.mongodb.org/mongo-driver/bson"

func ByID(id any) Filter {
	return Filter{"_id": id}
}

func In[T any](values []T) bson.M {
	return bson.M{"$in": values}
}

func Set(fields bson.M) Update {
	return Update{"$set": fields}
}

func Unset(fields ...string) Update {
	m := bson.M{}
	for _, f := range fields {
		m[f] = ""
	}
	return Update{"$unset": m}
}

func Push(field string, value any) Update {
	return Update{"$push": bson.M{field: value}}
}

func Pull(field string, value any) Update {
	return Update{"$pull": bson.M{field: value}}
}

func AddToSet(field string, value any) Update {
	return Update{"$addToSet": bson.M{field: value}}
}

// Each wraps values for $push / $addToSet of several elements.
func Each[T any](values []T) bson.M {
	return bson.M{"$each": values}
}

// Merge combines updates; later operators on the same field win.
func Merge(updates ...Update) Update {
	out := Update{}
	for _, u := range updates {
		for op, fields := range u {
			dst, ok := out[op].(bson.M)
			if !ok {
				dst = bson.M{}
				out[op] = dst
			}
			for k, v := range fields.(bson.M) {
				dst[k] = v
			}
		}
	}
	return out
}
