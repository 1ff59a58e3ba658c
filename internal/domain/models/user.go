package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultSiteName is shown in page chrome when no custom name is set.
const DefaultSiteName = "SchoolHub"

// Roles a dashboard user account can hold.
const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
)

// User represents staff, teacher, and parent accounts.
//
// NOTE:
//   - Accounts are tenant-scoped: SchoolID is set at creation and never
//     changes.
//   - PasswordHash is optional; accounts created from the dashboard may
//     carry a temporary bcrypt hash plus an invite token used by the
//     (external) onboarding flow.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName  string             `bson:"first_name" json:"first_name"`
	LastName   string             `bson:"last_name" json:"last_name"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"email_ci"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role       string             `bson:"role" json:"role"` // admin | staff | teacher | parent
	SchoolID   string             `bson:"school_id" json:"school_id"`
	IsActive   bool               `bson:"is_active" json:"is_active"`

	PasswordHash string `bson:"password_hash,omitempty" json:"-"`
	InviteToken  string `bson:"invite_token,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DisplayName returns the name shown in page chrome and author fields.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsValidRole reports whether role is one this product knows.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleTeacher, RoleParent:
		return true
	}
	return false
}
