// Package notify delivers best-effort user notifications over Web Push.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"foundersnexus/database"
	"foundersnexus/logging"
	"foundersnexus/models"
	"foundersnexus/store"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sender delivers a notification to a user. Callers treat failures as
// non-fatal.
type Sender interface {
	Send(ctx context.Context, to primitive.ObjectID, subject, body string) error
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Send(context.Context, primitive.ObjectID, string, string) error { return nil }

// ErrNoSubscription is returned when the user never subscribed to push.
var ErrNoSubscription = errors.New("no push subscription")

type sendFunc func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

type WebPush struct {
	store      store.Store
	log        logging.Logger
	privateKey string
	publicKey  string
	subscriber string
	send       sendFunc
}

func NewWebPush(s store.Store, publicKey, privateKey, subscriber string, log logging.Logger) *WebPush {
	return &WebPush{
		store:      s,
		log:        log,
		privateKey: privateKey,
		publicKey:  publicKey,
		subscriber: subscriber,
		send:       webpush.SendNotification,
	}
}

// PublicKey is handed to browsers when they subscribe.
func (w *WebPush) PublicKey() string {
	return w.publicKey
}

type payload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data"`
}

const maxBodyLen = 100

// Send pushes to the user's stored subscription. Expired subscriptions are
// deleted.
func (w *WebPush) Send(ctx context.Context, to primitive.ObjectID, subject, body string) error {
	subs := w.store.Collection(database.PushSubscriptions)

	sub, err := store.FindOne[models.PushSubscription](ctx, subs, store.Filter{"userId": to})
	if errors.Is(err, store.ErrNotFound) {
		w.log.Debug(ctx, "no push subscription", "user", to.Hex())
		return ErrNoSubscription
	}
	if err != nil {
		return fmt.Errorf("find subscription: %w", err)
	}

	body = truncate(body, maxBodyLen)
	msg, err := json.Marshal(payload{
		Title: subject,
		Body:  body,
		Data:  map[string]any{"timestamp": time.Now().Unix()},
	})
	if err != nil {
		return err
	}

	resp, err := w.send(msg, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth},
	}, &webpush.Options{
		Subscriber:      w.subscriber,
		VAPIDPublicKey:  w.publicKey,
		VAPIDPrivateKey: w.privateKey,
		TTL:             30,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		w.log.Info(ctx, "push subscription expired, deleting", "user", to.Hex())
		if _, err := subs.DeleteOne(ctx, store.Filter{"userId": to}); err != nil {
			w.log.Warn(ctx, "failed to delete expired subscription", "user", to.Hex(), "error", err)
		}
		return fmt.Errorf("push subscription expired: status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}

	w.log.Debug(ctx, "push notification sent", "user", to.Hex())
	return nil
}

// SaveSubscription stores the user's browser subscription, replacing any
// previous one.
func SaveSubscription(ctx context.Context, s store.Store, user primitive.ObjectID, in models.PushSubscriptionInput) error {
	_, err := s.Collection(database.PushSubscriptions).UpsertOne(ctx,
		store.Filter{"userId": user},
		store.Set(bson.M{
			"endpoint":  in.Endpoint,
			"keys":      bson.M{"p256dh": in.Keys.P256dh, "auth": in.Keys.Auth},
			"createdAt": time.Now(),
		}),
	)
	return err
}

// GenerateKeys creates a VAPID key pair for configuring the server.
func GenerateKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	return publicKey, privateKey, err
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
