package relations

import (
	"context"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/models"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttachComment inserts c and then lists it on the post. When the second
// write fails the comment exists without being listed (an orphan the
// integrity checker can re-link); the returned comment carries its ref.
func (m *Mutator) AttachComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) (models.Comment, error) {
	const op = "attachComment"

	if err := m.mustExist(ctx, op, database.Posts, "post", postID); err != nil {
		return models.Comment{}, err
	}
	if err := m.userExists(ctx, op, c.UserID); err != nil {
		return models.Comment{}, err
	}

	now := m.now()
	c.ID = primitive.NilObjectID
	c.PostID = postID
	c.CreatedAt, c.UpdatedAt = now, now

	id, err := m.coll(database.Comments).InsertOne(ctx, c)
	if err != nil {
		return models.Comment{}, domain.Internal(op, err)
	}
	c.ID = id

	res, err := m.coll(database.Posts).UpdateOne(ctx, store.ByID(postID), store.AddToSet("comments", id))
	if err == nil && res.Matched == 0 {
		err = store.ErrNotFound
	}
	if err != nil {
		m.log.Error(ctx, "comment saved but not linked to post", "comment", id.Hex(), "post", postID.Hex(), "error", err)
		return c, domain.PartialFailure(op, err, "comment %s saved but not linked to post %s", id.Hex(), postID.Hex())
	}
	return c, nil
}

// DetachComment deletes a comment of postID and then unlists it.
func (m *Mutator) DetachComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	const op = "detachComment"

	var c models.Comment
	if err := m.load(ctx, op, database.Comments, "comment", commentID, &c); err != nil {
		return err
	}
	if c.PostID != postID {
		return domain.NotFound(op, "comment %s not found on post %s", commentID.Hex(), postID.Hex())
	}

	n, err := m.coll(database.Comments).DeleteOne(ctx, store.ByID(commentID))
	if err != nil {
		return domain.Internal(op, err)
	}
	if n == 0 {
		return domain.NotFound(op, "comment %s not found", commentID.Hex())
	}

	if _, err := m.coll(database.Posts).UpdateOne(ctx, store.ByID(postID), store.Pull("comments", commentID)); err != nil {
		m.log.Error(ctx, "comment deleted but still listed on post", "comment", commentID.Hex(), "post", postID.Hex(), "error", err)
		return domain.PartialFailure(op, err, "comment %s deleted but still listed on post %s", commentID.Hex(), postID.Hex())
	}
	return nil
}

// DeleteCommentsOfPost removes every comment pointing at a deleted post.
func (m *Mutator) DeleteCommentsOfPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	n, err := m.coll(database.Comments).DeleteMany(ctx, store.Filter{"postId": postID})
	if err != nil {
		return n, domain.Internal("deleteCommentsOfPost", err)
	}
	return n, nil
}

// LinkPostToAuthor lists a new post on its author.
func (m *Mutator) LinkPostToAuthor(ctx context.Context, postID, user primitive.ObjectID) error {
	return m.authorPosts(ctx, "linkPostToAuthor", user, store.AddToSet("posts", postID))
}

// UnlinkPostFromAuthor removes a deleted post from its author's list.
func (m *Mutator) UnlinkPostFromAuthor(ctx context.Context, postID, user primitive.ObjectID) error {
	return m.authorPosts(ctx, "unlinkPostFromAuthor", user, store.Pull("posts", postID))
}

func (m *Mutator) authorPosts(ctx context.Context, op string, user primitive.ObjectID, update store.Update) error {
	res, err := m.coll(database.Users).UpdateOne(ctx, store.ByID(user), update)
	if err != nil {
		return domain.Internal(op, err)
	}
	if res.Matched == 0 {
		return domain.NotFound(op, "user %s not found", user.Hex())
	}
	return nil
}
