package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/schoolhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateAnnouncement inserts a published announcement for the given
// school and returns it with its generated ID.
func (f *Fixtures) CreateAnnouncement(ctx context.Context, schoolID, title string) models.Announcement {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Announcement{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Content:     "<p>" + title + "</p>",
		SchoolID:    schoolID,
		AuthorID:    primitive.NewObjectID(),
		AuthorName:  "Test Author",
		Priority:    models.PriorityMedium,
		Status:      models.StatusPublished,
		PublishDate: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("announcements").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("insert announcement fixture: %v", err)
	}
	return a
}

// CreateAccountUser inserts an active user with the given role and
// school and returns it with its generated ID.
func (f *Fixtures) CreateAccountUser(ctx context.Context, schoolID, role, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FirstName:  "Test",
		LastName:   "User",
		FullName:   "Test User",
		FullNameCI: text.Fold("Test User"),
		Email:      email,
		EmailCI:    text.Fold(email),
		Role:       role,
		SchoolID:   schoolID,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("insert user fixture: %v", err)
	}
	return u
}
