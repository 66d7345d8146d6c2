package integrity

import (
	"context"
	"errors"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson"
)

// Repairs counts the fixes applied by RepairAll.
type Repairs struct {
	FollowEdges       int `json:"followEdges"`
	OrphanedComments  int `json:"orphanedComments"`
	DeactivatedDecks  int `json:"deactivatedDecks"`
	FounderReferences int `json:"founderReferences"`
}

// RepairAll runs every repair. A failing repair does not stop the others.
func (c *Checker) RepairAll(ctx context.Context) (Repairs, error) {
	var r Repairs
	var errs []error
	var err error
	if r.FollowEdges, err = c.RepairFollowEdges(ctx); err != nil {
		errs = append(errs, err)
	}
	if r.OrphanedComments, err = c.RepairOrphanedComments(ctx); err != nil {
		errs = append(errs, err)
	}
	if r.DeactivatedDecks, err = c.DeactivateExtraDecks(ctx); err != nil {
		errs = append(errs, err)
	}
	if r.FounderReferences, err = c.RepairFounderBackReferences(ctx); err != nil {
		errs = append(errs, err)
	}
	return r, errors.Join(errs...)
}

// RepairFollowEdges treats following as the source of truth: a missing
// followers entry is added, a followers entry without its following
// counterpart is removed.
func (c *Checker) RepairFollowEdges(ctx context.Context) (int, error) {
	const op = "repairFollowEdges"
	edges, err := c.AsymmetricFollowEdges(ctx)
	if err != nil {
		return 0, err
	}

	users := c.coll(database.Users)
	fixed := 0
	var errs []error
	for _, e := range edges {
		var err error
		if e.Missing == "followers" {
			_, err = users.UpdateOne(ctx, store.ByID(e.Followee), store.AddToSet("followers", e.Follower))
		} else {
			_, err = users.UpdateOne(ctx, store.ByID(e.Followee), store.Pull("followers", e.Follower))
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fixed++
	}
	return c.finish(ctx, op, fixed, errs)
}

// RepairOrphanedComments lists each orphaned comment on its post again.
func (c *Checker) RepairOrphanedComments(ctx context.Context) (int, error) {
	const op = "repairOrphanedComments"
	orphans, err := c.OrphanedComments(ctx)
	if err != nil {
		return 0, err
	}

	posts := c.coll(database.Posts)
	fixed := 0
	var errs []error
	for _, o := range orphans {
		if _, err := posts.UpdateOne(ctx, store.ByID(o.Post), store.AddToSet("comments", o.Comment)); err != nil {
			errs = append(errs, err)
			continue
		}
		fixed++
	}
	return c.finish(ctx, op, fixed, errs)
}

// DeactivateExtraDecks keeps the most recently updated active deck of each
// startup and deactivates the rest.
func (c *Checker) DeactivateExtraDecks(ctx context.Context) (int, error) {
	const op = "deactivateExtraDecks"
	groups, err := c.MultipleActiveDecksPerStartup(ctx)
	if err != nil {
		return 0, err
	}

	decks := c.coll(database.PitchDecks)
	fixed := 0
	var errs []error
	for _, g := range groups {
		extra := g.Decks[1:]
		res, err := decks.UpdateMany(ctx, store.Filter{"_id": store.In(extra)}, store.Set(bson.M{"active": false}))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fixed += int(res.Modified)
	}
	return c.finish(ctx, op, fixed, errs)
}

// RepairFounderBackReferences points each mismatched founder at the newest
// startup listing them and clears the ref of users no startup lists.
func (c *Checker) RepairFounderBackReferences(ctx context.Context) (int, error) {
	const op = "repairFounderBackReferences"
	mismatches, err := c.FounderBackReferenceMismatch(ctx)
	if err != nil {
		return 0, err
	}

	users := c.coll(database.Users)
	now := c.now()
	fixed := 0
	var errs []error
	for _, m := range mismatches {
		update := store.Merge(store.Unset("currentStartupId"), store.Set(bson.M{"updatedAt": now}))
		if len(m.FounderOf) > 0 {
			update = store.Set(bson.M{"currentStartupId": m.FounderOf[0], "updatedAt": now})
		}
		if _, err := users.UpdateOne(ctx, store.ByID(m.User), update); err != nil {
			errs = append(errs, err)
			continue
		}
		fixed++
	}
	return c.finish(ctx, op, fixed, errs)
}

func (c *Checker) finish(ctx context.Context, op string, fixed int, errs []error) (int, error) {
	c.log.Info(ctx, "repair applied", "op", op, "fixed", fixed, "failed", len(errs))
	if len(errs) > 0 {
		return fixed, domain.PartialFailure(op, errors.Join(errs...), "%d of %d repairs failed", len(errs), fixed+len(errs))
	}
	return fixed, nil
}
