package relations

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

type FollowResult struct {
	// Following is the edge state after the toggle.
	Following bool `json:"following"`
}

// ToggleFollow follows target when actor does not follow it yet and
// unfollows otherwise. The branch is decided once from the actor's
// following set. The actor side is written first so that a failure in
// between leaves actor.following as a superset of target.followers.
func (m *Mutator) ToggleFollow(ctx context.Context, actor, target primitive.ObjectID) (FollowResult, error) {
	const op = "toggleFollow"
	if actor == target {
		return FollowResult{}, domain.InvalidReference(op, "user %s cannot follow itself", actor.Hex())
	}

	var a models.User
	if err := m.load(ctx, op, database.Users, "user", actor, &a); err != nil {
		return FollowResult{}, err
	}
	if err := m.userExists(ctx, op, target); err != nil {
		return FollowResult{}, err
	}

	follow := !a.Follows(target)
	var actorSide, targetSide store.Update
	if follow {
		actorSide = store.AddToSet("following", target)
		targetSide = store.AddToSet("followers", actor)
	} else {
		actorSide = store.Pull("following", target)
		targetSide = store.Pull("followers", actor)
	}
	touch := store.Set(bson.M{"updatedAt": m.now()})

	users := m.coll(database.Users)
	_, actorErr := users.UpdateOne(ctx, store.ByID(actor), store.Merge(actorSide, touch))
	_, targetErr := users.UpdateOne(ctx, store.ByID(target), store.Merge(targetSide, touch))

	if err := errors.Join(actorErr, targetErr); err != nil {
		m.log.Error(ctx, "follow edge write failed",
			"actor", actor.Hex(), "target", target.Hex(), "follow", follow,
			"actorWritten", actorErr == nil, "targetWritten", targetErr == nil, "error", err)
		return FollowResult{}, domain.Internal(op, err)
	}
	return FollowResult{Following: follow}, nil
}

type LikeResult struct {
	Liked bool `json:"liked"`
}

// ToggleLike flips user's membership in the post's like set. Likes have no
// back-reference on the user.
func (m *Mutator) ToggleLike(ctx context.Context, postID, user primitive.ObjectID) (LikeResult, error) {
	const op = "toggleLike"

	var p models.Post
	if err := m.load(ctx, op, database.Posts, "post", postID, &p); err != nil {
		return LikeResult{}, err
	}
	if err := m.userExists(ctx, op, user); err != nil {
		return LikeResult{}, err
	}

	liked := p.LikedBy(user)
	update := store.AddToSet("likes", user.Hex())
	if liked {
		update = store.Pull("likes", user.Hex())
	}
	res, err := m.coll(database.Posts).UpdateOne(ctx, store.ByID(postID), update)
	if err != nil {
		return LikeResult{}, domain.Internal(op, err)
	}
	if res.Matched == 0 {
		return LikeResult{}, domain.NotFound(op, "post %s not found", postID.Hex())
	}
	return LikeResult{Liked: !liked}, nil
}

// DetachUserEdges removes a deleted user from every follow set and like set.
// All three writes are attempted.
func (m *Mutator) DetachUserEdges(ctx context.Context, user primitive.ObjectID) error {
	const op = "detachUserEdges"
	users := m.coll(database.Users)

	_, errFollowers := users.UpdateMany(ctx, store.Filter{"followers": user}, store.Pull("followers", user))
	_, errFollowing := users.UpdateMany(ctx, store.Filter{"following": user}, store.Pull("following", user))
	_, errLikes := m.coll(database.Posts).UpdateMany(ctx, store.Filter{"likes": user.Hex()}, store.Pull("likes", user.Hex()))

	if err := errors.Join(errFollowers, errFollowing, errLikes); err != nil {
		return domain.Internal(op, err)
	}
	return nil
}
