// Package handlers is the HTTP surface of the engine. Each handler parses
// ids and bodies, calls one core operation and maps its error kind onto a
// status code.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"foundersnexus/cascade"
	"foundersnexus/domain"
	"foundersnexus/integrity"
	"foundersnexus/logging"
	"foundersnexus/middleware"
	"foundersnexus/resolver"
	"foundersnexus/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Options struct {
	Cascade        *cascade.Coordinator
	Resolver       *resolver.Resolver
	Checker        *integrity.Checker
	Store          store.Store
	Log            logging.Logger
	JWTSecret      string
	JWTTTL         time.Duration
	VAPIDPublicKey string
	// Timeout bounds each request's core call. Defaults to 10s.
	Timeout time.Duration
}

type Handler struct {
	cascade        *cascade.Coordinator
	resolver       *resolver.Resolver
	checker        *integrity.Checker
	store          store.Store
	log            logging.Logger
	jwtSecret      string
	jwtTTL         time.Duration
	vapidPublicKey string
	timeout        time.Duration
}

func New(o Options) *Handler {
	h := &Handler{
		cascade:        o.Cascade,
		resolver:       o.Resolver,
		checker:        o.Checker,
		store:          o.Store,
		log:            o.Log,
		jwtSecret:      o.JWTSecret,
		jwtTTL:         o.JWTTTL,
		vapidPublicKey: o.VAPIDPublicKey,
		timeout:        o.Timeout,
	}
	if h.timeout == 0 {
		h.timeout = 10 * time.Second
	}
	if h.jwtTTL == 0 {
		h.jwtTTL = 24 * time.Hour
	}
	return h
}

func (h *Handler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// respondError writes err with the status of its kind. Internal details are
// logged, not returned.
func (h *Handler) respondError(c *gin.Context, err error) {
	h.respondWith(c, err, nil)
}

// respondWith is respondError with extra body fields, used to return what
// was written before a partial failure.
func (h *Handler) respondWith(c *gin.Context, err error, extra gin.H) {
	status := domain.StatusCode(err)
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}

	body := gin.H{"error": err.Error()}
	for k, v := range extra {
		body[k] = v
	}
	switch {
	case errors.Is(err, domain.ErrPartialFailure):
		body["partial"] = true
		h.log.Error(c.Request.Context(), "partial failure", "path", c.FullPath(), "error", err)
	case status >= http.StatusInternalServerError:
		h.log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		body["error"] = "Internal server error"
	}
	c.JSON(status, body)
}

// pathID parses an id path parameter, answering 400 when malformed.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return primitive.NilObjectID, false
	}
	return id, true
}

func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
	return id, ok
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func deleted(c *gin.Context, message string, warnings []string) {
	body := gin.H{"message": message}
	if len(warnings) > 0 {
		body["warnings"] = warnings
	}
	c.JSON(http.StatusOK, body)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// getByID serves a read of one entity addressed by the :id style param.
func getByID[T any](h *Handler, c *gin.Context, param string, get func(context.Context, primitive.ObjectID) (T, error)) {
	id, ok := pathID(c, param)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	v, err := get(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func list[T any](h *Handler, c *gin.Context, get func(context.Context) ([]T, error)) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	v, err := get(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if v == nil {
		v = []T{}
	}
	c.JSON(http.StatusOK, v)
}
