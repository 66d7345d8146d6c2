package handlers

import (
	"net/http"

	"foundersnexus/domain"
	"foundersnexus/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateEntrepreneur(c *gin.Context) {
	var in models.CreateEntrepreneurInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	e, err := h.cascade.CreateEntrepreneur(ctx, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) ListEntrepreneurs(c *gin.Context) {
	list(h, c, h.resolver.Entrepreneurs)
}

func (h *Handler) GetEntrepreneur(c *gin.Context) {
	getByID(h, c, "id", h.resolver.Entrepreneur)
}

func (h *Handler) DeleteEntrepreneur(c *gin.Context) {
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

	out, warnings, err := h.cascade.DeleteEntrepreneur(ctx, actor, id)
	if err != nil {
		h.respondWith(c, err, gin.H{"outcome": out})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Entrepreneur deleted", "outcome": out, "warnings": warnings})
}

func (h *Handler) CreateInvestor(c *gin.Context) {
	var in models.CreateInvestorInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	inv, err := h.cascade.CreateInvestor(ctx, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *Handler) ListInvestors(c *gin.Context) {
	list(h, c, h.resolver.Investors)
}

func (h *Handler) GetInvestorByUser(c *gin.Context) {
	getByID(h, c, "userId", h.resolver.InvestorByUser)
}

// UpdateInvestorByUser lets users edit their own investor profile only.
func (h *Handler) UpdateInvestorByUser(c *gin.Context) {
	user, ok := pathID(c, "userId")
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	if actor != user {
		h.respondError(c, domain.Forbidden("updateInvestor", "you can only edit your own investor profile"))
		return
	}
	var in models.UpdateInvestorInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	inv, err := h.cascade.UpdateInvestorProfile(ctx, user, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// DeleteInvestor answers 500 with the outcome when only one of the two
// deletes took effect, so the caller can see which.
func (h *Handler) DeleteInvestor(c *gin.Context) {
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

	out, warnings, err := h.cascade.DeleteInvestor(ctx, actor, id)
	if err != nil {
		h.respondWith(c, err, gin.H{"outcome": out})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Investor deleted", "outcome": out, "warnings": warnings})
}
