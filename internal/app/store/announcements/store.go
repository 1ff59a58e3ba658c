// internal/app/store/announcements/store.go
package annstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/schoolhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sentinel errors for the two ways a store operation can fail. Callers
// match with errors.Is; the wrapped driver error stays in the chain.
var (
	// ErrStoreUnavailable means a query could not complete (network or
	// backend failure). Callers must leave their local state untouched.
	ErrStoreUnavailable = errors.New("announcement store unavailable")

	// ErrStoreWriteFailed means an insert or patch did not persist. No
	// partial record is ever returned alongside it.
	ErrStoreWriteFailed = errors.New("announcement store write failed")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("announcements")}
}

// ListForSchool returns every announcement belonging to schoolID,
// newest publish date first.
func (s *Store) ListForSchool(ctx context.Context, schoolID string) ([]models.Announcement, error) {
	if strings.TrimSpace(schoolID) == "" {
		return nil, fmt.Errorf("%w: school id is required", ErrStoreUnavailable)
	}

	opts := options.Find().SetSort(bson.D{{Key: "publish_date", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"school_id": schoolID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer cur.Close(ctx)

	var out []models.Announcement
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}

// Create persists a new announcement, setting TitleCI and audit
// timestamps. Status defaults to published when unset; the returned
// record carries the store-assigned ID.
func (s *Store) Create(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	now := time.Now().UTC()

	a.ID = primitive.NewObjectID()
	a.TitleCI = text.Fold(a.Title)
	if a.Status == "" {
		a.Status = models.StatusPublished
	}
	if a.Priority == "" {
		a.Priority = models.PriorityMedium
	}
	if a.PublishDate.IsZero() {
		a.PublishDate = now
	}
	a.CreatedAt = now
	a.UpdatedAt = now

	if strings.TrimSpace(a.Title) == "" {
		return models.Announcement{}, fmt.Errorf("%w: title is required", ErrStoreWriteFailed)
	}
	if strings.TrimSpace(a.Content) == "" {
		return models.Announcement{}, fmt.Errorf("%w: content is required", ErrStoreWriteFailed)
	}
	if strings.TrimSpace(a.SchoolID) == "" {
		return models.Announcement{}, fmt.Errorf("%w: school id is required", ErrStoreWriteFailed)
	}
	if !a.Status.IsValid() {
		return models.Announcement{}, fmt.Errorf("%w: status %q is not valid", ErrStoreWriteFailed, a.Status)
	}
	if !a.Priority.IsValid() {
		return models.Announcement{}, fmt.Errorf("%w: priority %q is not valid", ErrStoreWriteFailed, a.Priority)
	}

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Announcement{}, fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
	}
	return a, nil
}

// PatchStatus persists a status change and refreshes updated_at. It
// does not read or revalidate the prior status; lifecycle monotonicity
// is the caller's invariant. Local state is never rolled back here.
func (s *Store) PatchStatus(ctx context.Context, id primitive.ObjectID, status models.AnnouncementStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: status %q is not valid", ErrStoreWriteFailed, status)
	}

	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
	}
	return nil
}

// GetByID returns a single announcement.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Announcement, error) {
	var a models.Announcement
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Announcement{}, err
		}
		return models.Announcement{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return a, nil
}

// CountForSchool returns the number of announcements for a tenant.
func (s *Store) CountForSchool(ctx context.Context, schoolID string) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"school_id": schoolID})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return n, nil
}
