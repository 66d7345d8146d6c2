// Package integrity finds and repairs the inconsistencies that interrupted
// or racing write recipes can leave behind. Checks never write; repairs run
// only when an operator asks for them.
package integrity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"foundersnexus/database"
	"foundersnexus/docpath"
	"foundersnexus/domain"
	"foundersnexus/logging"
	"foundersnexus/models"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// Dangling is a ref whose target does not exist.
type Dangling struct {
	Collection string             `json:"collection"`
	Field      string             `json:"field"`
	Document   primitive.ObjectID `json:"document"`
	Ref        string             `json:"ref"`
}

// FollowAsymmetry is a follow edge recorded on one side only. Missing names
// the field that lacks the entry: "followers" on the followee or "following"
// on the follower.
type FollowAsymmetry struct {
	Follower primitive.ObjectID `json:"follower"`
	Followee primitive.ObjectID `json:"followee"`
	Missing  string             `json:"missing"`
}

type OrphanedComment struct {
	Comment primitive.ObjectID `json:"comment"`
	Post    primitive.ObjectID `json:"post"`
}

type ExtraActiveDecks struct {
	Startup primitive.ObjectID   `json:"startup"`
	Decks   []primitive.ObjectID `json:"decks"`
}

// FounderMismatch is a user whose currentStartupId disagrees with the
// startups listing them as founder.
type FounderMismatch struct {
	User      primitive.ObjectID   `json:"user"`
	Current   *primitive.ObjectID  `json:"current,omitempty"`
	FounderOf []primitive.ObjectID `json:"founderOf,omitempty"`
}

type Report struct {
	CheckedAt         time.Time          `json:"checkedAt"`
	Dangling          []Dangling         `json:"dangling"`
	AsymmetricFollows []FollowAsymmetry  `json:"asymmetricFollows"`
	OrphanedComments  []OrphanedComment  `json:"orphanedComments"`
	MultipleActive    []ExtraActiveDecks `json:"multipleActiveDecks"`
	FounderMismatches []FounderMismatch  `json:"founderMismatches"`
}

// Clean reports whether no violation was found.
func (r Report) Clean() bool {
	return len(r.Dangling) == 0 && len(r.AsymmetricFollows) == 0 && len(r.OrphanedComments) == 0 &&
		len(r.MultipleActive) == 0 && len(r.FounderMismatches) == 0
}

type Checker struct {
	store store.Store
	log   logging.Logger
	now   func() time.Time
}

func New(s store.Store, log logging.Logger) *Checker {
	return &Checker{store: s, log: log, now: time.Now}
}

func (c *Checker) coll(name string) store.Collection {
	return c.store.Collection(name)
}

// Report runs every check. Checks are independent reads and run
// concurrently.
func (c *Checker) Report(ctx context.Context) (Report, error) {
	r := Report{CheckedAt: c.now()}
	dangling := make([][]Dangling, len(References))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, ref := range References {
		g.Go(func() error {
			d, err := c.dangling(gctx, ref)
			dangling[i] = d
			return err
		})
	}
	g.Go(func() (err error) {
		r.AsymmetricFollows, err = c.asymmetricFollowEdges(gctx)
		return err
	})
	g.Go(func() (err error) {
		r.OrphanedComments, err = c.orphanedComments(gctx)
		return err
	})
	g.Go(func() (err error) {
		r.MultipleActive, err = c.multipleActiveDecks(gctx)
		return err
	})
	g.Go(func() (err error) {
		r.FounderMismatches, err = c.founderMismatches(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, domain.Internal("integrityReport", err)
	}

	for _, d := range dangling {
		r.Dangling = append(r.Dangling, d...)
	}
	c.log.Info(ctx, "integrity report",
		"dangling", len(r.Dangling),
		"asymmetricFollows", len(r.AsymmetricFollows),
		"orphanedComments", len(r.OrphanedComments),
		"multipleActiveDecks", len(r.MultipleActive),
		"founderMismatches", len(r.FounderMismatches),
	)
	return r, nil
}

// DanglingReferences returns the refs held in field of collection whose
// target is missing.
func (c *Checker) DanglingReferences(ctx context.Context, collection, field string) ([]Dangling, error) {
	const op = "danglingReferences"
	ref, ok := lookup(collection, field)
	if !ok {
		return nil, domain.Validation(op, fmt.Errorf("%s.%s is not a reference field", collection, field))
	}
	out, err := c.dangling(ctx, ref)
	if err != nil {
		return nil, domain.Internal(op, err)
	}
	return out, nil
}

func (c *Checker) dangling(ctx context.Context, ref Reference) ([]Dangling, error) {
	docs, err := store.FindDocs(ctx, c.coll(ref.Collection), store.Filter{})
	if err != nil {
		return nil, err
	}

	type held struct {
		doc primitive.ObjectID
		raw string
		id  primitive.ObjectID
		ok  bool
	}
	var refs []held
	var ids []primitive.ObjectID
	for _, doc := range docs {
		doc = docpath.Normalize(doc)
		docID, _ := doc["_id"].(primitive.ObjectID)
		docpath.Visit(doc, ref.Field, func(_ bson.M, _ string, value any) {
			if ref.Hex {
				for _, s := range hexValues(value) {
					id, err := primitive.ObjectIDFromHex(s)
					refs = append(refs, held{doc: docID, raw: s, id: id, ok: err == nil})
					if err == nil {
						ids = append(ids, id)
					}
				}
				return
			}
			for _, id := range docpath.Refs(value) {
				refs = append(refs, held{doc: docID, raw: id.Hex(), id: id, ok: true})
				ids = append(ids, id)
			}
		})
	}
	if len(refs) == 0 {
		return nil, nil
	}

	existing, err := c.existing(ctx, ref.Target, ref.match(), ids)
	if err != nil {
		return nil, err
	}
	var out []Dangling
	for _, h := range refs {
		if h.ok {
			if _, found := existing[h.id]; found {
				continue
			}
		}
		out = append(out, Dangling{Collection: ref.Collection, Field: ref.Field, Document: h.doc, Ref: h.raw})
	}
	return out, nil
}

// existing returns which of ids are present in field of collection.
func (c *Checker) existing(ctx context.Context, collection, field string, ids []primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	out := make(map[primitive.ObjectID]struct{})
	if len(ids) == 0 {
		return out, nil
	}
	docs, err := store.FindDocs(ctx, c.coll(collection), store.Filter{field: store.In(ids)})
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i] = docpath.Normalize(docs[i])
	}
	for _, id := range docpath.Collect(docs, field) {
		out[id] = struct{}{}
	}
	return out, nil
}

func hexValues(v any) []string {
	if s, ok := v.(string); ok {
		return []string{s}
	}
	arr, ok := docpath.AsArray(v)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// AsymmetricFollowEdges returns follow edges present on one side only.
// Edges to deleted users are reported as dangling refs instead.
func (c *Checker) AsymmetricFollowEdges(ctx context.Context) ([]FollowAsymmetry, error) {
	out, err := c.asymmetricFollowEdges(ctx)
	if err != nil {
		return nil, domain.Internal("asymmetricFollowEdges", err)
	}
	return out, nil
}

func (c *Checker) asymmetricFollowEdges(ctx context.Context) ([]FollowAsymmetry, error) {
	users, err := store.Find[models.User](ctx, c.coll(database.Users), store.Filter{})
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	var out []FollowAsymmetry
	for _, u := range users {
		for _, f := range u.Following {
			other, ok := byID[f]
			if ok && !contains(other.Followers, u.ID) {
				out = append(out, FollowAsymmetry{Follower: u.ID, Followee: f, Missing: "followers"})
			}
		}
		for _, f := range u.Followers {
			other, ok := byID[f]
			if ok && !other.Follows(u.ID) {
				out = append(out, FollowAsymmetry{Follower: f, Followee: u.ID, Missing: "following"})
			}
		}
	}
	return out, nil
}

// OrphanedComments returns comments of existing posts that the post does
// not list.
func (c *Checker) OrphanedComments(ctx context.Context) ([]OrphanedComment, error) {
	out, err := c.orphanedComments(ctx)
	if err != nil {
		return nil, domain.Internal("orphanedComments", err)
	}
	return out, nil
}

func (c *Checker) orphanedComments(ctx context.Context) ([]OrphanedComment, error) {
	posts, err := store.Find[models.Post](ctx, c.coll(database.Posts), store.Filter{})
	if err != nil {
		return nil, err
	}
	listed := make(map[primitive.ObjectID][]primitive.ObjectID, len(posts))
	for _, p := range posts {
		listed[p.ID] = p.Comments
	}

	comments, err := store.Find[models.Comment](ctx, c.coll(database.Comments), store.Filter{})
	if err != nil {
		return nil, err
	}
	var out []OrphanedComment
	for _, cm := range comments {
		refs, ok := listed[cm.PostID]
		if ok && !contains(refs, cm.ID) {
			out = append(out, OrphanedComment{Comment: cm.ID, Post: cm.PostID})
		}
	}
	return out, nil
}

// MultipleActiveDecksPerStartup returns startups with more than one active
// deck, newest deck first.
func (c *Checker) MultipleActiveDecksPerStartup(ctx context.Context) ([]ExtraActiveDecks, error) {
	out, err := c.multipleActiveDecks(ctx)
	if err != nil {
		return nil, domain.Internal("multipleActiveDecksPerStartup", err)
	}
	return out, nil
}

func (c *Checker) multipleActiveDecks(ctx context.Context) ([]ExtraActiveDecks, error) {
	decks, err := store.Find[models.PitchDeck](ctx, c.coll(database.PitchDecks), store.Filter{"active": true},
		store.SortBy("updatedAt", true))
	if err != nil {
		return nil, err
	}
	var order []primitive.ObjectID
	active := make(map[primitive.ObjectID][]primitive.ObjectID)
	for _, d := range decks {
		if _, seen := active[d.StartupID]; !seen {
			order = append(order, d.StartupID)
		}
		active[d.StartupID] = append(active[d.StartupID], d.ID)
	}
	var out []ExtraActiveDecks
	for _, s := range order {
		if len(active[s]) > 1 {
			out = append(out, ExtraActiveDecks{Startup: s, Decks: active[s]})
		}
	}
	return out, nil
}

// FounderBackReferenceMismatch returns users whose currentStartupId is not
// one of the startups listing them as founder, and founders whose
// currentStartupId is unset. FounderOf is sorted newest startup first.
func (c *Checker) FounderBackReferenceMismatch(ctx context.Context) ([]FounderMismatch, error) {
	out, err := c.founderMismatches(ctx)
	if err != nil {
		return nil, domain.Internal("founderBackReferenceMismatch", err)
	}
	return out, nil
}

func (c *Checker) founderMismatches(ctx context.Context) ([]FounderMismatch, error) {
	startups, err := store.Find[models.Startup](ctx, c.coll(database.Startups), store.Filter{},
		store.SortBy("createdAt", true))
	if err != nil {
		return nil, err
	}
	founderOf := make(map[primitive.ObjectID][]primitive.ObjectID)
	for _, s := range startups {
		for _, f := range s.Founders {
			founderOf[f] = append(founderOf[f], s.ID)
		}
	}

	users, err := store.Find[models.User](ctx, c.coll(database.Users), store.Filter{})
	if err != nil {
		return nil, err
	}
	var out []FounderMismatch
	for _, u := range users {
		listed := founderOf[u.ID]
		switch {
		case u.CurrentStartupID == nil && len(listed) == 0:
			continue
		case u.CurrentStartupID != nil && contains(listed, *u.CurrentStartupID):
			continue
		}
		out = append(out, FounderMismatch{User: u.ID, Current: u.CurrentStartupID, FounderOf: listed})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.Hex() < out[j].User.Hex() })
	return out, nil
}

func contains(refs []primitive.ObjectID, ref primitive.ObjectID) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}
