package handlers

import (
	"net/http"

	"foundersnexus/media"
	"foundersnexus/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreatePitchDeck takes a multipart form: the deck fields plus an optional
// "file" part.
func (h *Handler) CreatePitchDeck(c *gin.Context) {
	var in models.CreatePitchDeckInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var file *media.File
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
			return
		}
		defer f.Close()
		file = &media.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	deck, err := h.cascade.CreatePitchDeck(ctx, in, file)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deck)
}

// ListPitchDecks filters by the optional startupId query parameter.
func (h *Handler) ListPitchDecks(c *gin.Context) {
	var startup *primitive.ObjectID
	if raw := c.Query("startupId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startupId"})
			return
		}
		startup = &id
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	decks, err := h.resolver.PitchDecks(ctx, startup)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if decks == nil {
		decks = []models.PitchDeckView{}
	}
	c.JSON(http.StatusOK, decks)
}

func (h *Handler) GetPitchDeck(c *gin.Context) {
	getByID(h, c, "id", h.resolver.PitchDeck)
}

func (h *Handler) ActivePitchDeck(c *gin.Context) {
	getByID(h, c, "startupId", h.resolver.ActivePitchDeck)
}

func (h *Handler) UpdatePitchDeck(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in models.UpdatePitchDeckInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	deck, err := h.cascade.UpdatePitchDeck(ctx, id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deck)
}

func (h *Handler) ActivatePitchDeck(c *gin.Context) {
	getByID(h, c, "id", h.cascade.ActivatePitchDeck)
}

func (h *Handler) DeletePitchDeck(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.cascade.DeletePitchDeck(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	deleted(c, "Pitch deck deleted", nil)
}
