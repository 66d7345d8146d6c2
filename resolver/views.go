package resolver

import (
	"context"
	"errors"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/models"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reference field sets per entity kind.
var (
	UserFields = []Field{
		{Path: "roleId", Collection: database.Roles},
		{Path: "currentStartupId", Collection: database.Startups},
	}
	StartupFields = []Field{
		{Path: "founders", Collection: database.Users},
		// Funding investors hold the investing user's ref.
		{Path: "previousFundings.investors.investorId", Collection: database.Investors, MatchField: "userId"},
		{Path: "equitySplit.userId", Collection: database.Users},
	}
	CommentFields = []Field{
		{Path: "userId", Collection: database.Users},
	}
	PostFields = []Field{
		{Path: "userId", Collection: database.Users},
		{Path: "comments", Collection: database.Comments, Nested: CommentFields},
	}
	ProfileFields = []Field{
		{Path: "userId", Collection: database.Users},
	}
	PitchDeckFields = []Field{
		{Path: "startupId", Collection: database.Startups},
	}
)

var newestFirst = store.SortBy("createdAt", true)

func (r *Resolver) User(ctx context.Context, id primitive.ObjectID) (models.UserView, error) {
	return one[models.UserView](ctx, r, database.Users, store.ByID(id), UserFields, "user")
}

func (r *Resolver) Users(ctx context.Context) ([]models.UserView, error) {
	return many[models.UserView](ctx, r, database.Users, store.Filter{}, UserFields, newestFirst)
}

// Followers lists the users following id. Refs to deleted users are skipped.
func (r *Resolver) Followers(ctx context.Context, id primitive.ObjectID) ([]models.UserView, error) {
	u, err := r.rawUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.usersIn(ctx, u.Followers)
}

// Following lists the users id follows.
func (r *Resolver) Following(ctx context.Context, id primitive.ObjectID) ([]models.UserView, error) {
	u, err := r.rawUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.usersIn(ctx, u.Following)
}

func (r *Resolver) rawUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	u, err := store.FindOne[models.User](ctx, r.store.Collection(database.Users), store.ByID(id))
	if errors.Is(err, store.ErrNotFound) {
		return u, domain.NotFound("getUser", "user %s not found", id.Hex())
	}
	if err != nil {
		return u, domain.Internal("getUser", err)
	}
	return u, nil
}

func (r *Resolver) usersIn(ctx context.Context, refs []primitive.ObjectID) ([]models.UserView, error) {
	if len(refs) == 0 {
		return []models.UserView{}, nil
	}
	return many[models.UserView](ctx, r, database.Users, store.Filter{"_id": store.In(refs)}, UserFields)
}

func (r *Resolver) Role(ctx context.Context, id primitive.ObjectID) (models.Role, error) {
	return one[models.Role](ctx, r, database.Roles, store.ByID(id), nil, "role")
}

func (r *Resolver) Roles(ctx context.Context) ([]models.Role, error) {
	return many[models.Role](ctx, r, database.Roles, store.Filter{}, nil, store.SortBy("name", false))
}

func (r *Resolver) Startup(ctx context.Context, id primitive.ObjectID) (models.StartupView, error) {
	return one[models.StartupView](ctx, r, database.Startups, store.ByID(id), StartupFields, "startup")
}

func (r *Resolver) Startups(ctx context.Context) ([]models.StartupView, error) {
	return many[models.StartupView](ctx, r, database.Startups, store.Filter{}, StartupFields, newestFirst)
}

func (r *Resolver) Post(ctx context.Context, id primitive.ObjectID) (models.PostView, error) {
	return one[models.PostView](ctx, r, database.Posts, store.ByID(id), PostFields, "post")
}

func (r *Resolver) Posts(ctx context.Context) ([]models.PostView, error) {
	return many[models.PostView](ctx, r, database.Posts, store.Filter{}, PostFields, newestFirst)
}

func (r *Resolver) PostsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PostView, error) {
	return many[models.PostView](ctx, r, database.Posts, store.Filter{"userId": userID}, PostFields, newestFirst)
}

func (r *Resolver) Comment(ctx context.Context, id primitive.ObjectID) (models.CommentView, error) {
	return one[models.CommentView](ctx, r, database.Comments, store.ByID(id), CommentFields, "comment")
}

func (r *Resolver) CommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]models.CommentView, error) {
	return many[models.CommentView](ctx, r, database.Comments, store.Filter{"postId": postID}, CommentFields,
		store.SortBy("createdAt", false))
}

func (r *Resolver) Investor(ctx context.Context, id primitive.ObjectID) (models.InvestorView, error) {
	return one[models.InvestorView](ctx, r, database.Investors, store.ByID(id), ProfileFields, "investor")
}

func (r *Resolver) InvestorByUser(ctx context.Context, userID primitive.ObjectID) (models.InvestorView, error) {
	return one[models.InvestorView](ctx, r, database.Investors, store.Filter{"userId": userID}, ProfileFields, "investor")
}

func (r *Resolver) Investors(ctx context.Context) ([]models.InvestorView, error) {
	return many[models.InvestorView](ctx, r, database.Investors, store.Filter{}, ProfileFields, newestFirst)
}

func (r *Resolver) Entrepreneur(ctx context.Context, id primitive.ObjectID) (models.EntrepreneurView, error) {
	return one[models.EntrepreneurView](ctx, r, database.Entrepreneurs, store.ByID(id), ProfileFields, "entrepreneur")
}

func (r *Resolver) Entrepreneurs(ctx context.Context) ([]models.EntrepreneurView, error) {
	return many[models.EntrepreneurView](ctx, r, database.Entrepreneurs, store.Filter{}, ProfileFields, newestFirst)
}

func (r *Resolver) PitchDeck(ctx context.Context, id primitive.ObjectID) (models.PitchDeckView, error) {
	return one[models.PitchDeckView](ctx, r, database.PitchDecks, store.ByID(id), PitchDeckFields, "pitch deck")
}

// PitchDecks lists decks, newest first, optionally for a single startup.
func (r *Resolver) PitchDecks(ctx context.Context, startupID *primitive.ObjectID) ([]models.PitchDeckView, error) {
	filter := store.Filter{}
	if startupID != nil {
		filter["startupId"] = *startupID
	}
	return many[models.PitchDeckView](ctx, r, database.PitchDecks, filter, PitchDeckFields, newestFirst)
}

func (r *Resolver) ActivePitchDeck(ctx context.Context, startupID primitive.ObjectID) (models.PitchDeckView, error) {
	return one[models.PitchDeckView](ctx, r, database.PitchDecks,
		store.Filter{"startupId": startupID, "active": true}, PitchDeckFields, "active pitch deck")
}

func one[T any](ctx context.Context, r *Resolver, coll string, filter store.Filter, fields []Field, kind string) (T, error) {
	var out T
	doc, err := store.FindOne[bson.M](ctx, r.store.Collection(coll), filter)
	if errors.Is(err, store.ErrNotFound) {
		return out, domain.NotFound("get", "%s not found", kind)
	}
	if err != nil {
		return out, domain.Internal("get", err)
	}
	if len(fields) > 0 {
		if _, err := r.Resolve(ctx, doc, fields...); err != nil {
			return out, err
		}
	}
	if err := decode(doc, &out); err != nil {
		return out, domain.Internal("get", err)
	}
	return out, nil
}

func many[T any](ctx context.Context, r *Resolver, coll string, filter store.Filter, fields []Field, opts ...store.FindOption) ([]T, error) {
	docs, err := store.FindDocs(ctx, r.store.Collection(coll), filter, opts...)
	if err != nil {
		return nil, domain.Internal("list", err)
	}
	if len(fields) > 0 {
		if _, err := r.ResolveMany(ctx, docs, fields...); err != nil {
			return nil, err
		}
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := decode(d, &v); err != nil {
			return nil, domain.Internal("list", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func decode(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}
