package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/schoolhub/internal/app/system/auth"
	"github.com/dalemusser/schoolhub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testUserID returns a valid ObjectID hex string for tests.
func testUserID() string {
	return primitive.NewObjectID().Hex()
}

func TestIsAdmin_True_ForAdmin(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "admin",
	})

	if !authz.IsAdmin(req) {
		t.Error("expected IsAdmin to return true for admin user")
	}
}

func TestIsAdmin_False_ForStaff(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "staff",
	})

	if authz.IsAdmin(req) {
		t.Error("expected IsAdmin to return false for staff user")
	}
}

func TestIsAdmin_False_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	if authz.IsAdmin(req) {
		t.Error("expected IsAdmin to return false when no user")
	}
}

func TestIsStaff_True_ForStaff(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "staff",
	})

	if !authz.IsStaff(req) {
		t.Error("expected IsStaff to return true for staff user")
	}
}

func TestIsStaff_True_ForAdmin(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "admin",
	})

	if !authz.IsStaff(req) {
		t.Error("expected IsStaff to return true for admin user")
	}
}

func TestIsStaff_False_ForParent(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "parent",
	})

	if authz.IsStaff(req) {
		t.Error("expected IsStaff to return false for parent user")
	}
}

func TestCanManageAnnouncements_True_ForStaff(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "staff",
	})

	if !authz.CanManageAnnouncements(req) {
		t.Error("expected CanManageAnnouncements to return true for staff")
	}
}

func TestCanManageAnnouncements_False_ForTeacher(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "teacher",
	})

	if authz.CanManageAnnouncements(req) {
		t.Error("expected CanManageAnnouncements to return false for teacher")
	}
}

func TestCanManageAccounts_True_ForAdmin(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "admin",
	})

	if !authz.CanManageAccounts(req) {
		t.Error("expected CanManageAccounts to return true for admin")
	}
}

func TestCanManageAccounts_False_ForStaff(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "staff",
	})

	if authz.CanManageAccounts(req) {
		t.Error("expected CanManageAccounts to return false for staff")
	}
}

func TestUserSchoolID(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:       testUserID(),
		Role:     "staff",
		SchoolID: "lincoln-elementary",
	})

	if got := authz.UserSchoolID(req); got != "lincoln-elementary" {
		t.Errorf("expected school id 'lincoln-elementary', got %q", got)
	}
}

func TestUserSchoolID_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	if got := authz.UserSchoolID(req); got != "" {
		t.Errorf("expected empty school id when no user, got %q", got)
	}
}

func TestUserCtx_ReturnsUserDetails(t *testing.T) {
	userID := testUserID()
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   userID,
		Name: "Dana Whitfield",
		Role: "Admin",
	})

	role, name, actorID, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected UserCtx to return ok=true")
	}
	if role != "admin" {
		t.Errorf("expected lowercased role 'admin', got %q", role)
	}
	if name != "Dana Whitfield" {
		t.Errorf("expected name 'Dana Whitfield', got %q", name)
	}
	if actorID.Hex() != userID {
		t.Errorf("expected actorID %s, got %s", userID, actorID.Hex())
	}
}

func TestUserCtx_MalformedID_FailsClosed(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   "not-a-hex-id",
		Role: "admin",
	})

	role, _, actorID, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false for malformed user id")
	}
	if role != "visitor" {
		t.Errorf("expected role 'visitor', got %q", role)
	}
	if actorID != primitive.NilObjectID {
		t.Errorf("expected NilObjectID, got %s", actorID.Hex())
	}
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	role, _, _, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false with no user in context")
	}
	if role != "visitor" {
		t.Errorf("expected role 'visitor', got %q", role)
	}
}
