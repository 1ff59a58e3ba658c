// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/schoolhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), display name, Mongo
// ObjectID, and a found flag. If no user is present in context or the
// user ID is malformed, it returns "visitor", "", NilObjectID, false,
// so callers can trust that ok=true means a valid, authenticated user
// with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is a school admin.
func IsAdmin(r *http.Request) bool {
	return HasRole(r, "admin")
}

// IsStaff reports whether the current request's user is school staff.
// Admins count as staff for permission purposes.
func IsStaff(r *http.Request) bool {
	return HasAnyRole(r, "staff", "admin")
}

// IsTeacher reports whether the current request's user is a teacher.
func IsTeacher(r *http.Request) bool {
	return HasRole(r, "teacher")
}

// IsParent reports whether the current request's user is a parent.
func IsParent(r *http.Request) bool {
	return HasRole(r, "parent")
}

// UserSchoolID returns the current user's school identifier, or "" if
// the user is not signed in or has no school assigned yet. An empty
// result means no tenant-scoped data may be read for this user.
func UserSchoolID(r *http.Request) string {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return ""
	}
	return user.SchoolID
}

// CanManageAnnouncements reports whether the current user can publish
// and archive announcements. Admins and staff can; teachers and
// parents cannot.
func CanManageAnnouncements(r *http.Request) bool {
	return IsStaff(r)
}

// CanManageAccounts reports whether the current user can create parent
// and staff accounts. Only admins can.
func CanManageAccounts(r *http.Request) bool {
	return IsAdmin(r)
}
