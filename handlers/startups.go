package handlers

import (
	"net/http"

	"foundersnexus/models"

	"github.com/gin-gonic/gin"
)

// CreateStartup answers 201 even when founder or investor back-references
// could not be written; those come back as warnings.
func (h *Handler) CreateStartup(c *gin.Context) {
	var in models.CreateStartupInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.cascade.CreateStartup(ctx, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListStartups(c *gin.Context) {
	list(h, c, h.resolver.Startups)
}

func (h *Handler) GetStartup(c *gin.Context) {
	getByID(h, c, "id", h.resolver.Startup)
}

func (h *Handler) DeleteStartup(c *gin.Context) {
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

	warnings, err := h.cascade.DeleteStartup(ctx, actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	deleted(c, "Startup deleted", warnings)
}
