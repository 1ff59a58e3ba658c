package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/schoolhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "admin"|"staff"|"teacher"|"parent"`)
	errSchoolNeeded   = errors.New("user must have a school_id")
	errEmailNeeded    = errors.New("user must have an email")
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailExists reports whether any user already has this email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"email_ci": text.Fold(email)})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a new user after normalizing and validating fields.
// The caller is responsible for password hashing and invite tokens.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = strings.TrimSpace(u.Email)
	u.EmailCI = text.Fold(u.Email)

	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	if u.SchoolID == "" {
		return models.User{}, errSchoolNeeded
	}
	if u.Email == "" {
		return models.User{}, errEmailNeeded
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ListForSchool returns all users in a school with the given role,
// sorted by folded full name. An empty role returns every user in the
// school.
func (s *Store) ListForSchool(ctx context.Context, schoolID, role string) ([]models.User, error) {
	filter := bson.M{"school_id": schoolID}
	if role != "" {
		filter["role"] = role
	}

	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetActive flips a user's active flag.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"is_active":  active,
		"updated_at": time.Now().UTC(),
	}})
	return err
}
