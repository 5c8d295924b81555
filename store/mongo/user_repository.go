package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gatekit/userdir/domain"
)

const userCollection = "users"

// UserRepository persists directory records as documents keyed on the
// deterministic record identifier. All methods map store conditions
// onto the domain sentinels; transport failures wrap
// domain.ErrStoreUnavailable so callers can tell them apart from
// absence.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

type userDoc struct {
	ID          string   `bson:"_id"`
	Kind        string   `bson:"type"`
	Key         string   `bson:"user_id"`
	Email       string   `bson:"email"`
	Username    string   `bson:"username"`
	Role        string   `bson:"role"`
	DisplayName string   `bson:"display_name"`
	Active      bool     `bson:"is_active"`
	AgentIDs    []string `bson:"agents"`
	CreatedAt   int64    `bson:"created_at"`
	UpdatedAt   int64    `bson:"updated_at"`
}

func (r *UserRepository) FindByKey(ctx context.Context, key string) (*domain.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": domain.DocumentID(key)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find user: %v", domain.ErrStoreUnavailable, err)
	}
	return docToUser(&doc), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	filter := bson.M{"username": username, "type": domain.KindUser}
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find user by username: %v", domain.ErrStoreUnavailable, err)
	}
	return docToUser(&doc), nil
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, err := r.coll.InsertOne(ctx, userToDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("%w: insert user: %v", domain.ErrStoreUnavailable, err)
	}
	return user, nil
}

// UpdateRole patches the role field in place. No document is created
// when the key is unknown.
func (r *UserRepository) UpdateRole(ctx context.Context, key string, role domain.Role) error {
	update := bson.M{"$set": bson.M{
		"role":       string(role),
		"updated_at": time.Now().UTC().Unix(),
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": domain.DocumentID(key)}, update)
	if err != nil {
		return fmt.Errorf("%w: update role: %v", domain.ErrStoreUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func userToDoc(u *domain.User) userDoc {
	return userDoc{
		ID:          u.ID,
		Kind:        u.Kind,
		Key:         u.Key,
		Email:       u.Email,
		Username:    u.Username,
		Role:        string(u.Role),
		DisplayName: u.DisplayName,
		Active:      u.Active,
		AgentIDs:    u.AgentIDs,
		CreatedAt:   u.CreatedAt.Unix(),
		UpdatedAt:   u.UpdatedAt.Unix(),
	}
}

func docToUser(d *userDoc) *domain.User {
	agents := d.AgentIDs
	if agents == nil {
		agents = []string{}
	}
	return &domain.User{
		ID:          d.ID,
		Kind:        d.Kind,
		Key:         d.Key,
		Email:       d.Email,
		Username:    d.Username,
		Role:        domain.Role(d.Role),
		DisplayName: d.DisplayName,
		Active:      d.Active,
		AgentIDs:    agents,
		CreatedAt:   unixToTime(d.CreatedAt),
		UpdatedAt:   unixToTime(d.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
