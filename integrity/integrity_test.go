package integrity

import (
	"context"
	"testing"
	"time"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/logging"
	"foundersnexus/models"
	"foundersnexus/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	mem *store.MemoryStore
	c   *Checker
}

// Indexes are not installed so tests can seed states the unique indexes
// would reject.
func newFixture() *fixture {
	mem := store.NewMemoryStore()
	return &fixture{mem: mem, c: New(mem, logging.Discard())}
}

func (f *fixture) insert(t *testing.T, coll string, doc any) primitive.ObjectID {
	t.Helper()
	id, err := f.mem.Collection(coll).InsertOne(context.Background(), doc)
	require.NoError(t, err)
	return id
}

func (f *fixture) user(t *testing.T, u models.User) primitive.ObjectID {
	t.Helper()
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	if u.Posts == nil {
		u.Posts = []primitive.ObjectID{}
	}
	return f.insert(t, database.Users, u)
}

func (f *fixture) getUser(t *testing.T, id primitive.ObjectID) models.User {
	t.Helper()
	u, err := store.FindOne[models.User](context.Background(), f.mem.Collection(database.Users), store.ByID(id))
	require.NoError(t, err)
	return u
}

func TestReport_CleanStore(t *testing.T) {
	f := newFixture()
	a := f.user(t, models.User{FullName: "a"})
	b := f.user(t, models.User{FullName: "b", Followers: []primitive.ObjectID{a}})
	_, err := f.mem.Collection(database.Users).UpdateOne(context.Background(), store.ByID(a), store.AddToSet("following", b))
	require.NoError(t, err)

	r, err := f.c.Report(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Clean(), "%+v", r)
}

func TestDanglingReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u := f.user(t, models.User{FullName: "a", RoleID: primitive.NewObjectID()})
	missing := primitive.NewObjectID()
	f.insert(t, database.Posts, models.Post{
		UserID:   u,
		Likes:    []string{u.Hex(), missing.Hex(), "garbage"},
		Comments: []primitive.ObjectID{},
	})

	d, err := f.c.DanglingReferences(ctx, database.Users, "roleId")
	require.NoError(t, err)
	require.Len(t, d, 1)
	assert.Equal(t, u, d[0].Document)

	d, err = f.c.DanglingReferences(ctx, database.Posts, "likes")
	require.NoError(t, err)
	var refs []string
	for _, x := range d {
		refs = append(refs, x.Ref)
	}
	assert.ElementsMatch(t, []string{missing.Hex(), "garbage"}, refs)

	_, err = f.c.DanglingReferences(ctx, database.Users, "fullName")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDanglingReferences_InvestorMatchedByUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	investorUser := f.user(t, models.User{FullName: "vc"})
	f.insert(t, database.Investors, models.Investor{UserID: investorUser, InvestorType: "vc"})
	gone := primitive.NewObjectID()
	f.insert(t, database.Startups, models.Startup{
		StartupName: "Acme",
		Founders:    []primitive.ObjectID{},
		PreviousFundings: []models.FundingRound{{
			Stage: "seed",
			Investors: []models.FundingInvestor{
				{InvestorID: &investorUser, InvestorName: "vc"},
				{InvestorID: &gone, InvestorName: "gone"},
				{InvestorName: "no account"},
			},
		}},
		EquitySplit: []models.EquityShare{},
	})

	d, err := f.c.DanglingReferences(ctx, database.Startups, "previousFundings.investors.investorId")
	require.NoError(t, err)
	require.Len(t, d, 1)
	assert.Equal(t, gone.Hex(), d[0].Ref)
}

func TestFollowEdges_DetectAndRepair(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.user(t, models.User{FullName: "a"})
	b := f.user(t, models.User{FullName: "b"})
	c := f.user(t, models.User{FullName: "c", Followers: []primitive.ObjectID{a}})
	_, err := f.mem.Collection(database.Users).UpdateOne(ctx, store.ByID(a), store.AddToSet("following", b))
	require.NoError(t, err)

	edges, err := f.c.AsymmetricFollowEdges(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []FollowAsymmetry{
		{Follower: a, Followee: b, Missing: "followers"},
		{Follower: a, Followee: c, Missing: "following"},
	}, edges)

	n, err := f.c.RepairFollowEdges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, f.getUser(t, b).Followers, a)
	assert.Empty(t, f.getUser(t, c).Followers)

	edges, err = f.c.AsymmetricFollowEdges(ctx)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestOrphanedComments_DetectAndRepair(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u := f.user(t, models.User{FullName: "a"})
	post := f.insert(t, database.Posts, models.Post{UserID: u, Likes: []string{}, Comments: []primitive.ObjectID{}})
	comment := f.insert(t, database.Comments, models.Comment{PostID: post, UserID: u, Content: "lost"})
	f.insert(t, database.Comments, models.Comment{PostID: primitive.NewObjectID(), UserID: u, Content: "post gone"})

	orphans, err := f.c.OrphanedComments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []OrphanedComment{{Comment: comment, Post: post}}, orphans)

	n, err := f.c.RepairOrphanedComments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, err := store.FindOne[models.Post](ctx, f.mem.Collection(database.Posts), store.ByID(post))
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{comment}, p.Comments)
}

func TestDeactivateExtraDecks_KeepsNewest(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := f.insert(t, database.Startups, models.Startup{StartupName: "Acme", Founders: []primitive.ObjectID{}})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := f.insert(t, database.PitchDecks, models.PitchDeck{StartupID: s, Title: "old", Active: true, UpdatedAt: base})
	newest := f.insert(t, database.PitchDecks, models.PitchDeck{StartupID: s, Title: "new", Active: true, UpdatedAt: base.Add(time.Hour)})

	groups, err := f.c.MultipleActiveDecksPerStartup(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []primitive.ObjectID{newest, old}, groups[0].Decks)

	n, err := f.c.DeactivateExtraDecks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	d, err := store.FindOne[models.PitchDeck](ctx, f.mem.Collection(database.PitchDecks), store.ByID(old))
	require.NoError(t, err)
	assert.False(t, d.Active)
	d, err = store.FindOne[models.PitchDeck](ctx, f.mem.Collection(database.PitchDecks), store.ByID(newest))
	require.NoError(t, err)
	assert.True(t, d.Active)
}

func TestFounderBackReferences_DetectAndRepair(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	stale := primitive.NewObjectID()
	founder := f.user(t, models.User{FullName: "founder"})
	drifter := f.user(t, models.User{FullName: "drifter", CurrentStartupID: &stale})
	s := f.insert(t, database.Startups, models.Startup{StartupName: "Acme", Founders: []primitive.ObjectID{founder}, CreatedAt: time.Now()})

	got, err := f.c.FounderBackReferenceMismatch(ctx)
	require.NoError(t, err)
	var users []primitive.ObjectID
	for _, m := range got {
		users = append(users, m.User)
	}
	assert.ElementsMatch(t, []primitive.ObjectID{founder, drifter}, users)

	n, err := f.c.RepairFounderBackReferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NotNil(t, f.getUser(t, founder).CurrentStartupID)
	assert.Equal(t, s, *f.getUser(t, founder).CurrentStartupID)
	assert.Nil(t, f.getUser(t, drifter).CurrentStartupID)

	got, err = f.c.FounderBackReferenceMismatch(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepairAll_ConvergesToCleanReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.user(t, models.User{FullName: "a"})
	b := f.user(t, models.User{FullName: "b", Followers: []primitive.ObjectID{a}})
	post := f.insert(t, database.Posts, models.Post{UserID: a, Likes: []string{}, Comments: []primitive.ObjectID{}})
	f.insert(t, database.Comments, models.Comment{PostID: post, UserID: b, Content: "hi"})

	before, err := f.c.Report(ctx)
	require.NoError(t, err)
	assert.False(t, before.Clean())

	_, err = f.c.RepairAll(ctx)
	require.NoError(t, err)

	after, err := f.c.Report(ctx)
	require.NoError(t, err)
	assert.True(t, after.Clean(), "%+v", after)
}

func TestRepair_StorageFailureIsPartial(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	faulty := store.WithFaults(mem)
	c := New(faulty, logging.Discard())
	f := &fixture{mem: mem, c: c}
	a := f.user(t, models.User{FullName: "a"})
	f.user(t, models.User{FullName: "b", Followers: []primitive.ObjectID{a}})

	faulty.FailNext(database.Users, store.OpUpdateOne, assert.AnError)
	n, err := c.RepairFollowEdges(ctx)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, domain.ErrPartialFailure)
}
