package handlers

import (
	"net/http"

	"foundersnexus/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreatePost(c *gin.Context) {
	author, ok := currentUser(c)
	if !ok {
		return
	}
	var in models.CreatePostInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	p, warnings, err := h.cascade.CreatePost(ctx, author, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": p, "warnings": warnings})
}

func (h *Handler) ListPosts(c *gin.Context) {
	list(h, c, h.resolver.Posts)
}

func (h *Handler) GetPost(c *gin.Context) {
	getByID(h, c, "id", h.resolver.Post)
}

func (h *Handler) PostsByUser(c *gin.Context) {
	getByID(h, c, "userId", h.resolver.PostsByUser)
}

func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	warnings, err := h.cascade.DeletePost(ctx, actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	deleted(c, "Post deleted", warnings)
}

func (h *Handler) ToggleLike(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.cascade.ToggleLike(ctx, id, user)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AddComment returns the stored comment alongside a partial failure when
// it could not be listed on the post.
func (h *Handler) AddComment(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	author, ok := currentUser(c)
	if !ok {
		return
	}
	var in models.CreateCommentInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	cm, err := h.cascade.AddComment(ctx, postID, author, in)
	if err != nil {
		var extra gin.H
		if !cm.ID.IsZero() {
			extra = gin.H{"comment": cm}
		}
		h.respondWith(c, err, extra)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

func (h *Handler) CommentsByPost(c *gin.Context) {
	getByID(h, c, "id", h.resolver.CommentsByPost)
}

func (h *Handler) GetComment(c *gin.Context) {
	getByID(h, c, "id", h.resolver.Comment)
}

func (h *Handler) RemoveComment(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.cascade.RemoveComment(ctx, postID, commentID); err != nil {
		h.respondError(c, err)
		return
	}
	deleted(c, "Comment deleted", nil)
}
