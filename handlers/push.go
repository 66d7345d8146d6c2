package handlers

import (
	"net/http"

	"foundersnexus/domain"
	"foundersnexus/models"
	"foundersnexus/notify"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SubscribePush(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var in models.PushSubscriptionInput
	if !bindJSON(c, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		h.respondError(c, domain.Validation("subscribePush", err))
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := notify.SaveSubscription(ctx, h.store, user, in); err != nil {
		h.respondError(c, domain.Internal("subscribePush", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed to push notifications"})
}

func (h *Handler) VAPIDPublicKey(c *gin.Context) {
	if h.vapidPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "VAPID public key not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.vapidPublicKey})
}
