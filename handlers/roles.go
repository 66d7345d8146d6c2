package handlers

import (
	"net/http"

	"foundersnexus/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateRole(c *gin.Context) {
	var in models.CreateRoleInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	r, err := h.cascade.CreateRole(ctx, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListRoles(c *gin.Context) {
	list(h, c, h.resolver.Roles)
}

func (h *Handler) GetRole(c *gin.Context) {
	getByID(h, c, "id", h.resolver.Role)
}

func (h *Handler) DeleteRole(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.cascade.DeleteRole(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	deleted(c, "Role deleted", nil)
}
