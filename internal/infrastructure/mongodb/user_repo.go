package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ErlanBelekov/todo-api/internal/domain"
)

type userDocument struct {
	ID                  bson.ObjectID `bson:"_id,omitempty"`
	Email               string        `bson:"email"`
	Name                string        `bson:"name"`
	PasswordHash        string        `bson:"password_hash"`
	ResetTokenHash      *string       `bson:"reset_token_hash,omitempty"`
	ResetTokenExpiresAt *time.Time    `bson:"reset_token_expires_at,omitempty"`
	CreatedAt           time.Time     `bson:"created_at"`
	UpdatedAt           time.Time     `bson:"updated_at"`
}

func (d *userDocument) toDomain() *domain.User {
	u := &domain.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.ResetTokenHash != nil && d.ResetTokenExpiresAt != nil {
		hash, exp := *d.ResetTokenHash, d.ResetTokenExpiresAt.UTC()
		u.ResetTokenHash = &hash
		u.ResetTokenExpiresAt = &exp
	}
	return u
}

type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := time.Now().UTC()
	doc := userDocument{
		ID:           bson.NewObjectID(),
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}

	u, err := r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrEmailTaken
	}
	return u, err
}

func (r *UserRepository) SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) (*domain.User, error) {
	return r.findOneAndUpdate(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{
		"reset_token_hash":       tokenHash,
		"reset_token_expires_at": expiresAt.UTC(),
		"updated_at":             time.Now().UTC(),
	}})
}

func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	u, err := r.findOne(ctx, liveResetFilter(tokenHash, now))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrResetTokenInvalid
	}
	return u, err
}

// ConsumeResetToken matches and clears the token in a single FindOneAndUpdate,
// so a token can only be consumed once.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*domain.User, error) {
	u, err := r.findOneAndUpdate(ctx, liveResetFilter(tokenHash, now), bson.M{
		"$set":   bson.M{"password_hash": passwordHash, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"reset_token_hash": "", "reset_token_expires_at": ""},
	})
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrResetTokenInvalid
	}
	return u, err
}

func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"reset_token_expires_at": bson.M{"$lte": now.UTC()}},
		bson.M{"$unset": bson.M{"reset_token_hash": "", "reset_token_expires_at": ""}},
	)
	if err != nil {
		return 0, fmt.Errorf("clear expired reset tokens: %w", err)
	}
	return int(res.ModifiedCount), nil
}

func liveResetFilter(tokenHash string, now time.Time) bson.M {
	return bson.M{
		"reset_token_hash":       tokenHash,
		"reset_token_expires_at": bson.M{"$gt": now.UTC()},
	}
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.User, error) {
	var doc userDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}
