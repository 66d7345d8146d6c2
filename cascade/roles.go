package cascade

import (
	"context"
	"errors"
	"strings"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/models"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (c *Coordinator) CreateRole(ctx context.Context, in models.CreateRoleInput) (models.Role, error) {
	const op = "createRole"
	if err := validate(op, in); err != nil {
		return models.Role{}, err
	}
	r := models.Role{Name: strings.TrimSpace(in.Name)}
	id, err := c.coll(database.Roles).InsertOne(ctx, r)
	if errors.Is(err, store.ErrDuplicateKey) {
		return models.Role{}, domain.Conflict(op, "role %q already exists", r.Name)
	}
	if err != nil {
		return models.Role{}, domain.Internal(op, err)
	}
	r.ID = id
	return r, nil
}

// DeleteRole removes the role. Users keep the dangling roleId, which
// resolves to nil.
func (c *Coordinator) DeleteRole(ctx context.Context, id primitive.ObjectID) error {
	const op = "deleteRole"
	n, err := c.coll(database.Roles).DeleteOne(ctx, store.ByID(id))
	if err != nil {
		return domain.Internal(op, err)
	}
	if n == 0 {
		return domain.NotFound(op, "role %s not found", id.Hex())
	}
	return nil
}
