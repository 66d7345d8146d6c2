package cascade

import (
	"context"
	"errors"
	"strings"

	"foundersnexus/database"
	"foundersnexus/domain"
	"foundersnexus/models"
	"foundersnexus/relations"
	"foundersnexus/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// CreateUser registers an account. The chat identity is created in the
// background and its failure does not affect the result.
func (c *Coordinator) CreateUser(ctx context.Context, in models.CreateUserInput) (models.User, error) {
	const op = "createUser"
	if err := validate(op, in); err != nil {
		return models.User{}, err
	}

	var role primitive.ObjectID
	if in.RoleID != "" {
		ref, err := domain.ParseRef(op, "roleId", in.RoleID)
		if err != nil {
			return models.User{}, err
		}
		role = ref
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	users := c.coll(database.Users)
	taken, err := store.Exists(ctx, users, store.Filter{"email": email})
	if err != nil {
		return models.User{}, domain.Internal(op, err)
	}
	if taken {
		return models.User{}, domain.Conflict(op, "email %s is already registered", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), c.cost)
	if err != nil {
		return models.User{}, domain.Internal(op, err)
	}

	now := c.mutator.Now()
	u := models.User{
		FullName:       strings.TrimSpace(in.FullName),
		Email:          email,
		PasswordHash:   string(hash),
		Age:            in.Age,
		ProfilePicture: in.ProfilePicture,
		Bio:            in.Bio,
		Location:       in.Location,
		RoleID:         role,
		Followers:      []primitive.ObjectID{},
		Following:      []primitive.ObjectID{},
		Posts:          []primitive.ObjectID{},
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	id, err := users.InsertOne(ctx, u)
	if errors.Is(err, store.ErrDuplicateKey) {
		return models.User{}, domain.Conflict(op, "email %s is already registered", email)
	}
	if err != nil {
		return models.User{}, domain.Internal(op, err)
	}
	u.ID = id

	c.background(ctx, "registerChatIdentity", func(ctx context.Context) error {
		return c.identity.RegisterIdentity(ctx, id, u.FullName, u.ProfilePicture)
	})
	c.log.Info(ctx, "user created", "user", id.Hex())
	return u, nil
}

// Authenticate checks credentials. Unknown email and wrong password are
// reported the same way.
func (c *Coordinator) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	const op = "login"
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := store.FindOne[models.User](ctx, c.coll(database.Users), store.Filter{"email": email})
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, domain.Unauthorized(op, "invalid email or password")
	}
	if err != nil {
		return models.User{}, domain.Internal(op, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, domain.Unauthorized(op, "invalid email or password")
	}
	if !u.IsActive {
		return models.User{}, domain.Unauthorized(op, "account is disabled")
	}
	return u, nil
}

func (c *Coordinator) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, in models.UpdateUserInput) (models.User, error) {
	const op = "updateUser"
	if err := validate(op, in); err != nil {
		return models.User{}, err
	}

	set := in.Fields()
	set["updatedAt"] = c.mutator.Now()
	res, err := c.coll(database.Users).UpdateOne(ctx, store.ByID(id), store.Set(set))
	if err != nil {
		return models.User{}, domain.Internal(op, err)
	}
	if res.Matched == 0 {
		return models.User{}, domain.NotFound(op, "user %s not found", id.Hex())
	}

	var u models.User
	if err := c.load(ctx, op, database.Users, "user", id, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// DeleteUser removes the account and detaches it from follow and like sets.
// Investor and entrepreneur profiles of the user are left in place.
func (c *Coordinator) DeleteUser(ctx context.Context, id primitive.ObjectID) ([]string, error) {
	const op = "deleteUser"

	n, err := c.coll(database.Users).DeleteOne(ctx, store.ByID(id))
	if err != nil {
		return nil, domain.Internal(op, err)
	}
	if n == 0 {
		return nil, domain.NotFound(op, "user %s not found", id.Hex())
	}

	var warnings []string
	if err := c.mutator.DetachUserEdges(ctx, id); err != nil {
		warnings = append(warnings, c.warn(ctx, op, err))
	}
	c.background(ctx, "deleteChatIdentity", func(ctx context.Context) error {
		return c.identity.DeleteIdentity(ctx, id)
	})
	return warnings, nil
}

// ToggleFollow flips the follow edge and tells the followed user about new
// followers.
func (c *Coordinator) ToggleFollow(ctx context.Context, actor, target primitive.ObjectID) (relations.FollowResult, error) {
	res, err := c.mutator.ToggleFollow(ctx, actor, target)
	if err != nil {
		return res, err
	}
	if res.Following {
		var u models.User
		if err := c.coll(database.Users).FindOne(ctx, store.ByID(actor), &u); err == nil {
			c.notify(ctx, target, "New follower", u.FullName+" started following you")
		}
	}
	return res, nil
}
