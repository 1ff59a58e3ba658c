package annstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	annstore "github.com/dalemusser/schoolhub/internal/app/store/announcements"
	"github.com/dalemusser/schoolhub/internal/domain/models"
	"github.com/dalemusser/schoolhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := annstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := models.Announcement{
		Title:      "Picture Day",
		Content:    "<p>Photos on Friday.</p>",
		SchoolID:   "school-1",
		AuthorID:   primitive.NewObjectID(),
		AuthorName: "Pat Principal",
	}

	created, err := store.Create(ctx, a)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.TitleCI == "" {
		t.Error("expected TitleCI to be set")
	}
	if created.Status != models.StatusPublished {
		t.Errorf("expected default status published, got %q", created.Status)
	}
	if created.Priority != models.PriorityMedium {
		t.Errorf("expected default priority medium, got %q", created.Priority)
	}
	if created.PublishDate.IsZero() {
		t.Error("expected PublishDate to be set")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_MissingTitle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := annstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := models.Announcement{
		Content:  "<p>No title.</p>",
		SchoolID: "school-1",
	}

	_, err := store.Create(ctx, a)
	if err == nil {
		t.Fatal("expected error for missing title")
	}
	if !errors.Is(err, annstore.ErrStoreWriteFailed) {
		t.Errorf("expected ErrStoreWriteFailed in chain, got %v", err)
	}
}

func TestStore_Create_MissingSchool(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := annstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := models.Announcement{
		Title:   "Orphan",
		Content: "<p>No school.</p>",
	}

	_, err := store.Create(ctx, a)
	if err == nil {
		t.Fatal("expected error for missing school id")
	}
	if !errors.Is(err, annstore.ErrStoreWriteFailed) {
		t.Errorf("expected ErrStoreWriteFailed in chain, got %v", err)
	}
}

func TestStore_ListForSchool_OrderedNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := annstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Insert out of order; the list must come back publish_date desc.
	old := fix.CreateAnnouncement(ctx, "school-1", "Oldest")
	setPublishDate(t, db, old.ID, time.Now().UTC().Add(-48*time.Hour))
	mid := fix.CreateAnnouncement(ctx, "school-1", "Middle")
	setPublishDate(t, db, mid.ID, time.Now().UTC().Add(-24*time.Hour))
	fix.CreateAnnouncement(ctx, "school-1", "Newest")

	list, err := store.ListForSchool(ctx, "school-1")
	if err != nil {
		t.Fatalf("ListForSchool failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 announcements, got %d", len(list))
	}
	if list[0].Title != "Newest" || list[1].Title != "Middle" || list[2].Title != "Oldest" {
		t.Errorf("wrong order: %q, %q, %q", list[0].Title, list[1].Title, list[2].Title)
	}
}

func TestStore_ListForSchool_ScopedToSchool(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := annstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix.CreateAnnouncement(ctx, "school-1", "Ours")
	fix.CreateAnnouncement(ctx, "school-2", "Theirs")

	list, err := store.ListForSchool(ctx, "school-1")
	if err != nil {
		t.Fatalf("ListForSchool failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 announcement, got %d", len(list))
	}
	if list[0].Title != "Ours" {
		t.Errorf("expected own school's announcement, got %q", list[0].Title)
	}
}

func TestStore_ListForSchool_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := annstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	list, err := store.ListForSchool(ctx, "school-empty")
	if err != nil {
		t.Fatalf("ListForSchool failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d", len(list))
	}
}

func TestStore_PatchStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := annstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fix.CreateAnnouncement(ctx, "school-1", "To Archive")

	if err := store.PatchStatus(ctx, a.ID, models.StatusArchived); err != nil {
		t.Fatalf("PatchStatus failed: %v", err)
	}

	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.StatusArchived {
		t.Errorf("expected archived, got %q", got.Status)
	}
	if !got.UpdatedAt.After(a.UpdatedAt) {
		t.Error("expected UpdatedAt to advance")
	}
}

func TestStore_PatchStatus_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := annstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fix.CreateAnnouncement(ctx, "school-1", "Untouched")

	err := store.PatchStatus(ctx, a.ID, models.AnnouncementStatus("deleted"))
	if err == nil {
		t.Fatal("expected error for invalid status")
	}
	if !errors.Is(err, annstore.ErrStoreWriteFailed) {
		t.Errorf("expected ErrStoreWriteFailed in chain, got %v", err)
	}
}

func TestStore_ListForSchool_ErrorWrapsSentinel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := annstore.New(db)

	// Missing school id fails before touching the backend.
	_, err := store.ListForSchool(context.Background(), "")
	if !errors.Is(err, annstore.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable for empty school id, got %v", err)
	}

	// A dead context makes the query itself fail.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.ListForSchool(ctx, "school-1")
	if !errors.Is(err, annstore.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable for failed query, got %v", err)
	}
}

func TestStore_Create_WriteErrorWrapsSentinel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := annstore.New(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := models.Announcement{
		Title:    "Never lands",
		Content:  "<p>body</p>",
		SchoolID: "school-1",
	}
	_, err := store.Create(ctx, a)
	if !errors.Is(err, annstore.ErrStoreWriteFailed) {
		t.Errorf("expected ErrStoreWriteFailed for failed insert, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := annstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_CountForSchool(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := annstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix.CreateAnnouncement(ctx, "school-1", "One")
	fix.CreateAnnouncement(ctx, "school-1", "Two")
	fix.CreateAnnouncement(ctx, "school-2", "Other")

	n, err := store.CountForSchool(ctx, "school-1")
	if err != nil {
		t.Fatalf("CountForSchool failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
}

func setPublishDate(t *testing.T, db *mongo.Database, id primitive.ObjectID, when time.Time) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := db.Collection("announcements").UpdateByID(ctx,
		id, bson.M{"$set": bson.M{"publish_date": when}})
	if err != nil {
		t.Fatalf("set publish_date: %v", err)
	}
}
