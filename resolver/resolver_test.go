package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/logging"
	"foundersnexus/models"
	"foundersnexus/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setup(t *testing.T) (*store.MemoryStore, *Resolver) {
	t.Helper()
	s := store.NewMemoryStore()
	return s, New(s, logging.Discard())
}

func insert(t *testing.T, s store.Store, coll string, doc any) primitive.ObjectID {
	t.Helper()
	id, err := s.Collection(coll).InsertOne(context.Background(), doc)
	require.NoError(t, err)
	return id
}

func TestUser_ResolvesRoleAndStartup(t *testing.T) {
	ctx := context.Background()
	s, r := setup(t)

	roleID := insert(t, s, database.Roles, models.Role{Name: "founder"})
	startupID := insert(t, s, database.Startups, models.Startup{StartupName: "Acme"})
	userID := insert(t, s, database.Users, models.User{
		FullName: "Ada", Email: "ada@example.com", RoleID: roleID, CurrentStartupID: &startupID,
	})

	u, err := r.User(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, u.Role)
	assert.Equal(t, "founder", u.Role.Name)
	require.NotNil(t, u.CurrentStartup)
	assert.Equal(t, "Acme", u.CurrentStartup.StartupName)
}

func TestUser_MissingRoleIsNil(t *testing.T) {
	ctx := context.Background()
	s, r := setup(t)

	userID := insert(t, s, database.Users, models.User{FullName: "Ada", RoleID: primitive.NewObjectID()})

	u, err := r.User(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, u.Role)
	assert.Nil(t, u.CurrentStartup)
}

func TestUser_NotFound(t *testing.T) {
	_, r := setup(t)
	_, err := r.User(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStartup_ResolvesNestedReferences(t *testing.T) {
	ctx := context.Background()
	s, r := setup(t)

	founder := insert(t, s, database.Users, models.User{FullName: "Founder"})
	backer := insert(t, s, database.Users, models.User{FullName: "Backer"})
	insert(t, s, database.Investors, models.Investor{UserID: backer, InvestorType: "angel"})
	gone := primitive.NewObjectID()

	startupID := insert(t, s, database.Startups, models.Startup{
		StartupName: "Acme",
		Founders:    []primitive.ObjectID{founder, gone},
		PreviousFundings: []models.FundingRound{{
			Stage: "seed", Amount: 100, Date: time.Now(),
			Investors: []models.FundingInvestor{
				{InvestorID: &backer, InvestorName: "Backer"},
				{InvestorName: "Friends and family"},
			},
		}},
		EquitySplit: []models.EquityShare{
			{Type: "founder", UserID: &founder, Name: "Founder", EquityPercentage: 80},
			{Type: "pool", Name: "ESOP", EquityPercentage: 20},
		},
	})

	v, err := r.Startup(ctx, startupID)
	require.NoError(t, err)

	require.Len(t, v.Founders, 2)
	assert.Equal(t, "Founder", v.Founders[0].FullName)
	assert.Nil(t, v.Founders[1])

	investors := v.PreviousFundings[0].Investors
	require.Len(t, investors, 2)
	require.NotNil(t, investors[0].Investor)
	assert.Equal(t, "angel", investors[0].Investor.InvestorType)
	assert.Nil(t, investors[1].Investor)
	assert.Equal(t, "Friends and family", investors[1].InvestorName)

	require.NotNil(t, v.EquitySplit[0].User)
	assert.Equal(t, founder, v.EquitySplit[0].User.ID)
	assert.Nil(t, v.EquitySplit[1].User)
}

func TestPost_ResolvesCommentsAndTheirAuthors(t *testing.T) {
	ctx := context.Background()
	s, r := setup(t)

	author := insert(t, s, database.Users, models.User{FullName: "Author"})
	commenter := insert(t, s, database.Users, models.User{FullName: "Commenter"})
	postID := primitive.NewObjectID()
	c1 := insert(t, s, database.Comments, models.Comment{PostID: postID, UserID: commenter, Content: "nice"})
	insert(t, s, database.Posts, models.Post{ID: postID, UserID: author, Content: "hello", Comments: []primitive.ObjectID{c1}})

	p, err := r.Post(ctx, postID)
	require.NoError(t, err)
	require.NotNil(t, p.User)
	assert.Equal(t, "Author", p.User.FullName)
	require.Len(t, p.Comments, 1)
	assert.Equal(t, "nice", p.Comments[0].Content)
	require.NotNil(t, p.Comments[0].User)
	assert.Equal(t, "Commenter", p.Comments[0].User.FullName)
}

func TestResolveMany_ReportsDangling(t *testing.T) {
	ctx := context.Background()
	s, r := setup(t)

	gone := primitive.NewObjectID()
	commenterGone := primitive.NewObjectID()
	c1 := insert(t, s, database.Comments, models.Comment{UserID: commenterGone, Content: "x"})
	docs := []bson.M{
		{"userId": gone, "comments": bson.A{c1}},
		{"userId": gone},
	}

	dangling, err := r.ResolveMany(ctx, docs, PostFields...)
	require.NoError(t, err)
	assert.Nil(t, docs[0]["userId"])
	assert.Nil(t, docs[1]["userId"])
	assert.ElementsMatch(t, []Dangling{
		{Path: "comments.userId", Collection: database.Users, Ref: commenterGone},
		{Path: "userId", Collection: database.Users, Ref: gone},
		{Path: "userId", Collection: database.Users, Ref: gone},
	}, dangling)
}

func TestResolve_As(t *testing.T) {
	ctx := context.Background()
	s, r := setup(t)
	uid := insert(t, s, database.Users, models.User{FullName: "Ada"})

	doc := bson.M{"userId": uid}
	_, err := r.Resolve(ctx, doc, Field{Path: "userId", Collection: database.Users, As: "user"})
	require.NoError(t, err)
	assert.Equal(t, uid, doc["userId"])
	assert.Equal(t, "Ada", doc["user"].(bson.M)["fullName"])
}

func TestResolve_StorageErrorIsInternal(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	faulty := store.WithFaults(mem)
	r := New(faulty, logging.Discard())

	uid := insert(t, mem, database.Users, models.User{FullName: "Ada"})
	faulty.FailNext(database.Users, store.OpFind, errors.New("connection reset"))

	_, err := r.Resolve(ctx, bson.M{"userId": uid}, ProfileFields...)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInternal)
}

func TestFollowersAndFollowing(t *testing.T) {
	ctx := context.Background()
	s, r := setup(t)

	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	insert(t, s, database.Users, models.User{ID: a, FullName: "A", Following: []primitive.ObjectID{b}})
	insert(t, s, database.Users, models.User{ID: b, FullName: "B", Followers: []primitive.ObjectID{a, primitive.NewObjectID()}})

	followers, err := r.Followers(ctx, b)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "A", followers[0].FullName)

	following, err := r.Following(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, following)

	_, err = r.Followers(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActivePitchDeck(t *testing.T) {
	ctx := context.Background()
	s, r := setup(t)

	startupID := insert(t, s, database.Startups, models.Startup{StartupName: "Acme"})
	insert(t, s, database.PitchDecks, models.PitchDeck{Title: "old", StartupID: startupID})
	insert(t, s, database.PitchDecks, models.PitchDeck{Title: "live", StartupID: startupID, Active: true})

	d, err := r.ActivePitchDeck(ctx, startupID)
	require.NoError(t, err)
	assert.Equal(t, "live", d.Title)
	require.NotNil(t, d.Startup)
	assert.Equal(t, "Acme", d.Startup.StartupName)

	decks, err := r.PitchDecks(ctx, &startupID)
	require.NoError(t, err)
	assert.Len(t, decks, 2)

	_, err = r.ActivePitchDeck(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
