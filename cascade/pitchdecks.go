package cascade

import (
	"context"
	"errors"
	"fmt"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/media"
	"foundersnexus/models"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errNoDeckSource = errors.New("a pitch deck file or an external link is required")

// CreatePitchDeck uploads the file, if any, and stores the deck. A deck
// created active goes through the same deactivate-then-activate recipe as
// ActivatePitchDeck.
func (c *Coordinator) CreatePitchDeck(ctx context.Context, in models.CreatePitchDeckInput, file *media.File) (models.PitchDeck, error) {
	const op = "createPitchDeck"
	if err := validate(op, in); err != nil {
		return models.PitchDeck{}, err
	}
	startup, err := domain.ParseRef(op, "startupId", in.StartupID)
	if err != nil {
		return models.PitchDeck{}, err
	}
	if err := c.mustExist(ctx, op, database.Startups, "startup", startup); err != nil {
		return models.PitchDeck{}, err
	}

	now := c.mutator.Now()
	deck := models.PitchDeck{
		Title:        in.Title,
		Description:  in.Description,
		StartupID:    startup,
		RaiseUntil:   in.RaiseUntil,
		TargetAmount: in.TargetAmount,
		Round:        in.Round,
		ExternalLink: in.ExternalLink,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch {
	case file != nil:
		if err := c.storeDeckFile(ctx, op, *file, &deck); err != nil {
			return models.PitchDeck{}, err
		}
	case in.ExternalLink != "":
		deck.FileURL = in.ExternalLink
		deck.ViewURL = in.ExternalLink
		deck.FileType = "link"
	default:
		return models.PitchDeck{}, domain.Validation(op, errNoDeckSource)
	}

	id, err := c.coll(database.PitchDecks).InsertOne(ctx, deck)
	if err != nil {
		return models.PitchDeck{}, domain.Internal(op, err)
	}
	deck.ID = id

	if in.Active {
		if err := c.mutator.ActivatePitchDeck(ctx, id); err != nil {
			return deck, err
		}
	}
	if err := c.load(ctx, op, database.PitchDecks, "pitch deck", id, &deck); err != nil {
		return models.PitchDeck{}, err
	}
	c.log.Info(ctx, "pitch deck created", "deck", id.Hex(), "startup", startup.Hex(), "active", deck.Active)
	return deck, nil
}

func (c *Coordinator) storeDeckFile(ctx context.Context, op string, f media.File, deck *models.PitchDeck) error {
	if f.Size > media.MaxPitchDeckSize {
		return domain.Validation(op, fmt.Errorf("file is larger than %d MB", media.MaxPitchDeckSize>>20))
	}
	fileType, err := media.FileType(f)
	if err != nil {
		return domain.Validation(op, err)
	}
	if c.uploader == nil {
		return domain.Upload(op, errors.New("file storage is not configured"))
	}
	res, err := c.uploader.Upload(ctx, f)
	if err != nil {
		return domain.Upload(op, err)
	}
	deck.FileURL = res.URL
	deck.ViewURL = res.ViewURL
	deck.ThumbnailURL = res.ThumbnailURL
	deck.SlidesCount = res.Pages
	deck.FileType = fileType
	return nil
}

func (c *Coordinator) UpdatePitchDeck(ctx context.Context, id primitive.ObjectID, in models.UpdatePitchDeckInput) (models.PitchDeck, error) {
	const op = "updatePitchDeck"
	if err := validate(op, in); err != nil {
		return models.PitchDeck{}, err
	}
	set := in.Fields()
	set["updatedAt"] = c.mutator.Now()
	res, err := c.coll(database.PitchDecks).UpdateOne(ctx, store.ByID(id), store.Set(set))
	if err != nil {
		return models.PitchDeck{}, domain.Internal(op, err)
	}
	if res.Matched == 0 {
		return models.PitchDeck{}, domain.NotFound(op, "pitch deck %s not found", id.Hex())
	}
	var deck models.PitchDeck
	if err := c.load(ctx, op, database.PitchDecks, "pitch deck", id, &deck); err != nil {
		return models.PitchDeck{}, err
	}
	return deck, nil
}

func (c *Coordinator) ActivatePitchDeck(ctx context.Context, id primitive.ObjectID) (models.PitchDeck, error) {
	if err := c.mutator.ActivatePitchDeck(ctx, id); err != nil {
		return models.PitchDeck{}, err
	}
	var deck models.PitchDeck
	if err := c.load(ctx, "activatePitchDeck", database.PitchDecks, "pitch deck", id, &deck); err != nil {
		return models.PitchDeck{}, err
	}
	return deck, nil
}

// DeletePitchDeck removes the deck record. The stored file is kept.
func (c *Coordinator) DeletePitchDeck(ctx context.Context, id primitive.ObjectID) error {
	const op = "deletePitchDeck"
	n, err := c.coll(database.PitchDecks).DeleteOne(ctx, store.ByID(id))
	if err != nil {
		return domain.Internal(op, err)
	}
	if n == 0 {
		return domain.NotFound(op, "pitch deck %s not found", id.Hex())
	}
	return nil
}
