package handlers

import (
	"net/http"

	"foundersnexus/domain"
	"foundersnexus/middleware"
	"foundersnexus/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateUser(c *gin.Context) {
	var in models.CreateUserInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.cascade.CreateUser(ctx, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c *gin.Context) {
	var in models.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.cascade.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	token, err := middleware.IssueToken(h.jwtSecret, u.ID, h.jwtTTL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

func (h *Handler) ListUsers(c *gin.Context) {
	list(h, c, h.resolver.Users)
}

func (h *Handler) GetUser(c *gin.Context) {
	getByID(h, c, "id", h.resolver.User)
}

// DeleteUser lets users delete their own account only.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	if actor != id {
		h.respondError(c, domain.Forbidden("deleteUser", "you can only delete your own account"))
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	warnings, err := h.cascade.DeleteUser(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	deleted(c, "User deleted", warnings)
}

func (h *Handler) ToggleFollow(c *gin.Context) {
	target, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.cascade.ToggleFollow(ctx, actor, target)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Followers(c *gin.Context) {
	getByID(h, c, "id", h.resolver.Followers)
}

func (h *Handler) Following(c *gin.Context) {
	getByID(h, c, "id", h.resolver.Following)
}
