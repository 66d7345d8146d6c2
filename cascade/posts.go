package cascade

import (
	"context"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/models"
	"foundersnexus/relations"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreatePost stores a post and lists it on the author. A failed listing is
// returned as a warning.
func (c *Coordinator) CreatePost(ctx context.Context, author primitive.ObjectID, in models.CreatePostInput) (models.Post, []string, error) {
	const op = "createPost"
	if err := validate(op, in); err != nil {
		return models.Post{}, nil, err
	}
	if err := c.mustExist(ctx, op, database.Users, "user", author); err != nil {
		return models.Post{}, nil, err
	}

	now := c.mutator.Now()
	p := models.Post{
		UserID:    author,
		Content:   in.Content,
		ImageURL:  in.ImageURL,
		Likes:     []string{},
		Comments:  []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := c.coll(database.Posts).InsertOne(ctx, p)
	if err != nil {
		return models.Post{}, nil, domain.Internal(op, err)
	}
	p.ID = id

	var warnings []string
	if err := c.mutator.LinkPostToAuthor(ctx, id, author); err != nil {
		warnings = append(warnings, c.warn(ctx, op, err))
	}
	return p, warnings, nil
}

// DeletePost removes the post. Its comments and the author listing are
// cleaned up best-effort. Only the author may delete.
func (c *Coordinator) DeletePost(ctx context.Context, actor, id primitive.ObjectID) ([]string, error) {
	const op = "deletePost"

	var p models.Post
	if err := c.load(ctx, op, database.Posts, "post", id, &p); err != nil {
		return nil, err
	}
	if p.UserID != actor {
		return nil, domain.Forbidden(op, "only the author can delete post %s", id.Hex())
	}

	n, err := c.coll(database.Posts).DeleteOne(ctx, store.ByID(id))
	if err != nil {
		return nil, domain.Internal(op, err)
	}
	if n == 0 {
		return nil, domain.NotFound(op, "post %s not found", id.Hex())
	}

	var warnings []string
	if _, err := c.mutator.DeleteCommentsOfPost(ctx, id); err != nil {
		warnings = append(warnings, c.warn(ctx, op, err))
	}
	if err := c.mutator.UnlinkPostFromAuthor(ctx, id, p.UserID); err != nil {
		warnings = append(warnings, c.warn(ctx, op, err))
	}
	return warnings, nil
}

// AddComment attaches a comment and notifies the post author. The comment is
// returned even when the error is a PartialFailure.
func (c *Coordinator) AddComment(ctx context.Context, postID, author primitive.ObjectID, in models.CreateCommentInput) (models.Comment, error) {
	const op = "addComment"
	if err := validate(op, in); err != nil {
		return models.Comment{}, err
	}

	cm, err := c.mutator.AttachComment(ctx, postID, models.Comment{UserID: author, Content: in.Content})
	if cm.ID.IsZero() {
		return cm, err
	}

	var p models.Post
	if ferr := c.coll(database.Posts).FindOne(ctx, store.ByID(postID), &p); ferr == nil && p.UserID != author {
		c.notify(ctx, p.UserID, "New comment", cm.Content)
	}
	return cm, err
}

func (c *Coordinator) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return c.mutator.DetachComment(ctx, postID, commentID)
}

func (c *Coordinator) ToggleLike(ctx context.Context, postID, user primitive.ObjectID) (relations.LikeResult, error) {
	return c.mutator.ToggleLike(ctx, postID, user)
}
