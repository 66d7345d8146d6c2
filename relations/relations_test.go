package relations

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

var errStorage = errors.New("storage unavailable")

type fixture struct {
	mem    *store.MemoryStore
	faulty *store.FaultyStore
	m      *Mutator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemoryStore()
	require.NoError(t, database.EnsureIndexes(context.Background(), mem))
	faulty := store.WithFaults(mem)
	return &fixture{mem: mem, faulty: faulty, m: New(faulty, logging.Discard())}
}

func (f *fixture) insert(t *testing.T, coll string, doc any) primitive.ObjectID {
	t.Helper()
	id, err := f.mem.Collection(coll).InsertOne(context.Background(), doc)
	require.NoError(t, err)
	return id
}

func (f *fixture) user(t *testing.T, name string) primitive.ObjectID {
	t.Helper()
	return f.insert(t, database.Users, models.User{
		FullName:  name,
		Email:     name + "@example.com",
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		Posts:     []primitive.ObjectID{},
	})
}

func (f *fixture) getUser(t *testing.T, id primitive.ObjectID) models.User {
	t.Helper()
	u, err := store.FindOne[models.User](context.Background(), f.mem.Collection(database.Users), store.ByID(id))
	require.NoError(t, err)
	return u
}

func (f *fixture) getDeck(t *testing.T, id primitive.ObjectID) models.PitchDeck {
	t.Helper()
	d, err := store.FindOne[models.PitchDeck](context.Background(), f.mem.Collection(database.PitchDecks), store.ByID(id))
	require.NoError(t, err)
	return d
}

func TestToggleFollow_TwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u1, u2 := f.user(t, "u1"), f.user(t, "u2")

	res, err := f.m.ToggleFollow(ctx, u1, u2)
	require.NoError(t, err)
	assert.True(t, res.Following)
	assert.Contains(t, f.getUser(t, u1).Following, u2)
	assert.Contains(t, f.getUser(t, u2).Followers, u1)

	res, err = f.m.ToggleFollow(ctx, u1, u2)
	require.NoError(t, err)
	assert.False(t, res.Following)
	assert.NotContains(t, f.getUser(t, u1).Following, u2)
	assert.NotContains(t, f.getUser(t, u2).Followers, u1)
}

func TestToggleFollow_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u1 := f.user(t, "u1")

	_, err := f.m.ToggleFollow(ctx, u1, u1)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = f.m.ToggleFollow(ctx, u1, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.m.ToggleFollow(ctx, primitive.NewObjectID(), u1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToggleFollow_TargetWriteFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u1, u2 := f.user(t, "u1"), f.user(t, "u2")

	f.faulty.FailAfter(database.Users, store.OpUpdateOne, 1, errStorage)
	_, err := f.m.ToggleFollow(ctx, u1, u2)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInternal)

	// The actor side was written first.
	assert.Contains(t, f.getUser(t, u1).Following, u2)
	assert.NotContains(t, f.getUser(t, u2).Followers, u1)
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "u")
	post := f.insert(t, database.Posts, models.Post{UserID: u, Likes: []string{}, Comments: []primitive.ObjectID{}})

	res, err := f.m.ToggleLike(ctx, post, u)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	p, err := store.FindOne[models.Post](ctx, f.mem.Collection(database.Posts), store.ByID(post))
	require.NoError(t, err)
	assert.Equal(t, []string{u.Hex()}, p.Likes)

	res, err = f.m.ToggleLike(ctx, post, u)
	require.NoError(t, err)
	assert.False(t, res.Liked)

	_, err = f.m.ToggleLike(ctx, primitive.NewObjectID(), u)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.m.ToggleLike(ctx, post, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttachComment_ListedOnPost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "u")
	post := f.insert(t, database.Posts, models.Post{UserID: u, Comments: []primitive.ObjectID{}})

	c, err := f.m.AttachComment(ctx, post, models.Comment{UserID: u, Content: "hi"})
	require.NoError(t, err)
	require.False(t, c.ID.IsZero())
	assert.Equal(t, post, c.PostID)

	p, err := store.FindOne[models.Post](ctx, f.mem.Collection(database.Posts), store.ByID(post))
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{c.ID}, p.Comments)
}

func TestAttachComment_LinkFailureLeavesOrphan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "u")
	post := f.insert(t, database.Posts, models.Post{UserID: u, Comments: []primitive.ObjectID{}})

	f.faulty.FailNext(database.Posts, store.OpUpdateOne, errStorage)
	c, err := f.m.AttachComment(ctx, post, models.Comment{UserID: u, Content: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPartialFailure)
	assert.False(t, c.ID.IsZero())

	ok, err := store.Exists(ctx, f.mem.Collection(database.Comments), store.ByID(c.ID))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDetachComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "u")
	post := f.insert(t, database.Posts, models.Post{UserID: u, Comments: []primitive.ObjectID{}})
	other := f.insert(t, database.Posts, models.Post{UserID: u, Comments: []primitive.ObjectID{}})

	c, err := f.m.AttachComment(ctx, post, models.Comment{UserID: u, Content: "hi"})
	require.NoError(t, err)

	err = f.m.DetachComment(ctx, other, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.m.DetachComment(ctx, post, c.ID))
	p, err := store.FindOne[models.Post](ctx, f.mem.Collection(database.Posts), store.ByID(post))
	require.NoError(t, err)
	assert.Empty(t, p.Comments)

	err = f.m.DetachComment(ctx, post, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateStartup_FoundersAndInvestors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u1 := f.user(t, "u1")
	backer := f.user(t, "backer")
	invID := f.insert(t, database.Investors, models.Investor{UserID: backer, PreviousInvestments: []models.InvestmentRecord{}})
	noProfile := f.user(t, "noprofile")

	early := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s, warnings, err := f.m.CreateStartup(ctx, models.Startup{
		StartupName: "Acme",
		Founders:    []primitive.ObjectID{u1},
		PreviousFundings: []models.FundingRound{
			{Stage: "pre-seed", Amount: 50, Date: early, Investors: []models.FundingInvestor{{InvestorID: &backer}}},
			{Stage: "seed", Amount: 500, Date: late, Investors: []models.FundingInvestor{{InvestorID: &backer}, {InvestorID: &noProfile}}},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	got := f.getUser(t, u1)
	require.NotNil(t, got.CurrentStartupID)
	assert.Equal(t, s.ID, *got.CurrentStartupID)

	inv, err := store.FindOne[models.Investor](ctx, f.mem.Collection(database.Investors), store.ByID(invID))
	require.NoError(t, err)
	require.Len(t, inv.PreviousInvestments, 1)
	rec := inv.PreviousInvestments[0]
	assert.Equal(t, s.ID, *rec.StartupID)
	assert.Equal(t, "Acme", rec.StartupName)
	assert.Equal(t, 500.0, rec.Amount)
	assert.True(t, late.Equal(rec.Date))
}

func TestCreateStartup_SideEffectFailuresAreWarnings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u1 := f.user(t, "u1")
	missing := primitive.NewObjectID()

	f.faulty.FailNext(database.Users, store.OpUpdateOne, errStorage)
	s, warnings, err := f.m.CreateStartup(ctx, models.Startup{
		StartupName: "Acme",
		Founders:    []primitive.ObjectID{u1, missing},
	})
	require.NoError(t, err)
	assert.Len(t, warnings, 2)

	ok, err := store.Exists(ctx, f.mem.Collection(database.Startups), store.ByID(s.ID))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteStartup_ClearsBackReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u1 := f.user(t, "u1")

	s, _, err := f.m.CreateStartup(ctx, models.Startup{StartupName: "Acme", Founders: []primitive.ObjectID{u1}})
	require.NoError(t, err)
	require.Equal(t, s.ID, *f.getUser(t, u1).CurrentStartupID)

	// A user no longer listed as founder still points at the startup.
	stale := f.user(t, "stale")
	_, err = f.mem.Collection(database.Users).UpdateOne(ctx, store.ByID(stale), store.Set(bson.M{"currentStartupId": s.ID}))
	require.NoError(t, err)

	warnings, err := f.m.DeleteStartup(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Nil(t, f.getUser(t, u1).CurrentStartupID)
	assert.Nil(t, f.getUser(t, stale).CurrentStartupID)

	_, err = f.m.DeleteStartup(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteStartup_CleanupFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u1 := f.user(t, "u1")
	s, _, err := f.m.CreateStartup(ctx, models.Startup{StartupName: "Acme", Founders: []primitive.ObjectID{u1}})
	require.NoError(t, err)

	f.faulty.FailNext(database.Users, store.OpUpdateMany, errStorage)
	warnings, err := f.m.DeleteStartup(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestDeleteInvestor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "inv")
	inv := f.insert(t, database.Investors, models.Investor{UserID: u})

	out, err := f.m.DeleteInvestor(ctx, inv)
	require.NoError(t, err)
	assert.Equal(t, DeleteOutcome{UserID: u, UserDeleted: true, RecordDeleted: true}, out)

	_, err = f.m.DeleteInvestor(ctx, inv)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteInvestor_PartialFailureAndRerun(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "inv")
	inv := f.insert(t, database.Investors, models.Investor{UserID: u})

	f.faulty.FailNext(database.Investors, store.OpDeleteOne, errStorage)
	out, err := f.m.DeleteInvestor(ctx, inv)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPartialFailure)
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.True(t, out.UserDeleted)
	assert.False(t, out.RecordDeleted)

	// Re-running removes the surviving record; the user is already gone.
	out, err = f.m.DeleteInvestor(ctx, inv)
	assert.ErrorIs(t, err, domain.ErrPartialFailure)
	assert.False(t, out.UserDeleted)
	assert.True(t, out.RecordDeleted)

	n, err := f.mem.Collection(database.Investors).Count(ctx, store.Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteEntrepreneur_UserMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ent := f.insert(t, database.Entrepreneurs, models.Entrepreneur{UserID: primitive.NewObjectID()})

	out, err := f.m.DeleteEntrepreneur(ctx, ent)
	assert.ErrorIs(t, err, domain.ErrPartialFailure)
	assert.False(t, out.UserDeleted)
	assert.True(t, out.RecordDeleted)
}

func TestActivatePitchDeck_LastActivatedWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	startup := primitive.NewObjectID()
	d1 := f.insert(t, database.PitchDecks, models.PitchDeck{StartupID: startup, Title: "d1"})
	d2 := f.insert(t, database.PitchDecks, models.PitchDeck{StartupID: startup, Title: "d2"})
	d3 := f.insert(t, database.PitchDecks, models.PitchDeck{StartupID: startup, Title: "d3"})
	otherStartupDeck := f.insert(t, database.PitchDecks, models.PitchDeck{StartupID: primitive.NewObjectID(), Active: true})

	for _, id := range []primitive.ObjectID{d1, d3, d2, d3} {
		require.NoError(t, f.m.ActivatePitchDeck(ctx, id))
	}

	assert.False(t, f.getDeck(t, d1).Active)
	assert.False(t, f.getDeck(t, d2).Active)
	assert.True(t, f.getDeck(t, d3).Active)
	assert.True(t, f.getDeck(t, otherStartupDeck).Active)

	err := f.m.ActivatePitchDeck(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActivatePitchDeck_StopAfterDeactivateLeavesNoneActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	startup := primitive.NewObjectID()
	d1 := f.insert(t, database.PitchDecks, models.PitchDeck{StartupID: startup, Active: true})
	d2 := f.insert(t, database.PitchDecks, models.PitchDeck{StartupID: startup})

	f.faulty.FailNext(database.PitchDecks, store.OpUpdateOne, errStorage)
	err := f.m.ActivatePitchDeck(ctx, d2)
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.False(t, f.getDeck(t, d1).Active)
	assert.False(t, f.getDeck(t, d2).Active)
}

// racingStore activates another deck between the two activation writes.
type racingStore struct {
	store.Store
	race func()
}

func (s *racingStore) Collection(name string) store.Collection {
	return &racingCollection{Collection: s.Store.Collection(name), race: s.race}
}

type racingCollection struct {
	store.Collection
	race func()
}

func (c *racingCollection) UpdateMany(ctx context.Context, filter store.Filter, update store.Update) (store.UpdateResult, error) {
	res, err := c.Collection.UpdateMany(ctx, filter, update)
	if c.race != nil {
		c.race()
	}
	return res, err
}

func TestActivatePitchDeck_ConcurrentActivationConflicts(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, database.EnsureIndexes(ctx, mem))
	startup := primitive.NewObjectID()
	d1, err := mem.Collection(database.PitchDecks).InsertOne(ctx, models.PitchDeck{StartupID: startup})
	require.NoError(t, err)
	d2, err := mem.Collection(database.PitchDecks).InsertOne(ctx, models.PitchDeck{StartupID: startup})
	require.NoError(t, err)

	rs := &racingStore{Store: mem, race: func() {
		_, err := mem.Collection(database.PitchDecks).UpdateOne(ctx, store.ByID(d1), store.Set(bson.M{"active": true}))
		require.NoError(t, err)
	}}
	m := New(rs, logging.Discard())

	err = m.ActivatePitchDeck(ctx, d2)
	assert.ErrorIs(t, err, domain.ErrConflict)

	n, err := mem.Collection(database.PitchDecks).Count(ctx, store.Filter{"startupId": startup, "active": true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDetachUserEdges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u1, u2, u3 := f.user(t, "u1"), f.user(t, "u2"), f.user(t, "u3")
	_, err := f.m.ToggleFollow(ctx, u1, u2)
	require.NoError(t, err)
	_, err = f.m.ToggleFollow(ctx, u2, u3)
	require.NoError(t, err)
	post := f.insert(t, database.Posts, models.Post{UserID: u3, Likes: []string{u2.Hex(), u1.Hex()}})

	require.NoError(t, f.m.DetachUserEdges(ctx, u2))

	assert.Empty(t, f.getUser(t, u1).Following)
	assert.Empty(t, f.getUser(t, u3).Followers)
	p, err := store.FindOne[models.Post](ctx, f.mem.Collection(database.Posts), store.ByID(post))
	require.NoError(t, err)
	assert.Equal(t, []string{u1.Hex()}, p.Likes)
}

func TestLinkAndUnlinkPost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "u")
	post := primitive.NewObjectID()

	require.NoError(t, f.m.LinkPostToAuthor(ctx, post, u))
	require.NoError(t, f.m.LinkPostToAuthor(ctx, post, u))
	assert.Equal(t, []primitive.ObjectID{post}, f.getUser(t, u).Posts)

	require.NoError(t, f.m.UnlinkPostFromAuthor(ctx, post, u))
	assert.Empty(t, f.getUser(t, u).Posts)

	err := f.m.LinkPostToAuthor(ctx, post, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReferenceHelpers(t *testing.T) {
	uid := primitive.NewObjectID()

	shares, err := EquitySplitReferences([]models.EquityShareInput{
		{Type: "founder", UserID: uid.Hex(), Name: "Ada", EquityPercentage: 60},
		{Type: "pool", Name: "ESOP", EquityPercentage: 10},
	})
	require.NoError(t, err)
	require.NotNil(t, shares[0].UserID)
	assert.Equal(t, uid, *shares[0].UserID)
	assert.Nil(t, shares[1].UserID)

	_, err = EquitySplitReferences([]models.EquityShareInput{{UserID: "nope"}})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
	assert.Contains(t, err.Error(), "equitySplit[0].userId")

	rounds, err := FundingInvestorReferences([]models.FundingRoundInput{{
		Stage:     "seed",
		Investors: []models.FundingInvestorInput{{InvestorID: uid.Hex()}, {InvestorName: "angel"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, uid, *rounds[0].Investors[0].InvestorID)
	assert.Nil(t, rounds[0].Investors[1].InvestorID)

	_, err = FundingInvestorReferences([]models.FundingRoundInput{{Investors: []models.FundingInvestorInput{{InvestorID: "x"}}}})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}
