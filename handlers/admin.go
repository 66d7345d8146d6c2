package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IntegrityReport runs every consistency check. It never repairs.
func (h *Handler) IntegrityReport(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	r, err := h.checker.Report(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clean": r.Clean(), "report": r})
}
