// Package cascade sequences the write recipes of package relations into
// entity lifecycle operations and defines what each operation reports when
// only part of its writes took effect.
package cascade

import (
	"context"
	"errors"

	"foundersnexus/chatid"
	"foundersnexus/domain"
	"foundersnexus/logging"
	"foundersnexus/media"
	"foundersnexus/notify"
	"foundersnexus/relations"
	"foundersnexus/store"
	"foundersnexus/worker"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Submitter runs background tasks. *worker.Pool implements it.
type Submitter interface {
	Submit(name string, t worker.Task) bool
}

type Deps struct {
	Store    store.Store
	Mutator  *relations.Mutator
	Uploader media.Uploader
	Notifier notify.Sender
	Identity chatid.Registrar
	Tasks    Submitter
	Log      logging.Logger
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type Coordinator struct {
	store    store.Store
	mutator  *relations.Mutator
	uploader media.Uploader
	notifier notify.Sender
	identity chatid.Registrar
	tasks    Submitter
	log      logging.Logger
	cost     int
}

func New(d Deps) *Coordinator {
	c := &Coordinator{
		store:    d.Store,
		mutator:  d.Mutator,
		uploader: d.Uploader,
		notifier: d.Notifier,
		identity: d.Identity,
		tasks:    d.Tasks,
		log:      d.Log,
		cost:     d.BcryptCost,
	}
	if c.mutator == nil {
		c.mutator = relations.New(d.Store, d.Log)
	}
	if c.notifier == nil {
		c.notifier = notify.Nop{}
	}
	if c.identity == nil {
		c.identity = chatid.Nop{}
	}
	if c.cost == 0 {
		c.cost = bcrypt.DefaultCost
	}
	return c
}

func (c *Coordinator) coll(name string) store.Collection {
	return c.store.Collection(name)
}

// background hands a best-effort task to the pool. Without a pool the task
// is dropped.
func (c *Coordinator) background(ctx context.Context, name string, t worker.Task) {
	if c.tasks == nil {
		c.log.Debug(ctx, "no worker pool, dropping task", "task", name)
		return
	}
	c.tasks.Submit(name, t)
}

// notify sends a notification in the background.
func (c *Coordinator) notify(ctx context.Context, to primitive.ObjectID, subject, body string) {
	c.background(ctx, "notify", func(ctx context.Context) error {
		err := c.notifier.Send(ctx, to, subject, body)
		if errors.Is(err, notify.ErrNoSubscription) {
			return nil
		}
		return err
	})
}

// warn logs a failed best-effort step and returns its message.
func (c *Coordinator) warn(ctx context.Context, op string, err error) string {
	c.log.Warn(ctx, "best-effort step failed", "op", op, "error", err)
	return err.Error()
}

func validate(op string, v interface{ Validate() error }) error {
	if err := v.Validate(); err != nil {
		return domain.Validation(op, err)
	}
	return nil
}

// load reads one document by id, mapping absence to NotFound.
func (c *Coordinator) load(ctx context.Context, op, coll, kind string, id primitive.ObjectID, out any) error {
	err := c.coll(coll).FindOne(ctx, store.ByID(id), out)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NotFound(op, "%s %s not found", kind, id.Hex())
	}
	if err != nil {
		return domain.Internal(op, err)
	}
	return nil
}

func (c *Coordinator) mustExist(ctx context.Context, op, coll, kind string, id primitive.ObjectID) error {
	ok, err := store.Exists(ctx, c.coll(coll), store.ByID(id))
	if err != nil {
		return domain.Internal(op, err)
	}
	if !ok {
		return domain.NotFound(op, "%s %s not found", kind, id.Hex())
	}
	return nil
}
