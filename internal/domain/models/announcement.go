package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnnouncementStatus is the lifecycle state of an announcement.
// Transitions are monotonic: draft -> published -> archived.
type AnnouncementStatus string

const (
	StatusDraft     AnnouncementStatus = "draft"
	StatusPublished AnnouncementStatus = "published"
	StatusArchived  AnnouncementStatus = "archived"
)

// rank orders lifecycle states so transition checks stay one comparison.
func (s AnnouncementStatus) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusPublished:
		return 1
	case StatusArchived:
		return 2
	}
	return -1
}

// IsValid reports whether s is a known lifecycle state.
func (s AnnouncementStatus) IsValid() bool {
	return s.rank() >= 0
}

// CanTransitionTo reports whether moving from s to next is allowed.
// An announcement never moves back toward draft; re-asserting the
// current state (e.g. archiving an archived record) is permitted.
func (s AnnouncementStatus) CanTransitionTo(next AnnouncementStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	return next.rank() >= s.rank()
}

// AnnouncementPriority affects presentation only.
type AnnouncementPriority string

const (
	PriorityLow    AnnouncementPriority = "low"
	PriorityMedium AnnouncementPriority = "medium"
	PriorityHigh   AnnouncementPriority = "high"
)

// IsValid reports whether p is a known priority.
func (p AnnouncementPriority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Audience tags an announcement can target. An empty target_audience
// array is the stored sentinel meaning "all audiences"; the literal
// "all" tag is never persisted.
const (
	AudienceStudents = "students"
	AudienceTeachers = "teachers"
	AudienceParents  = "parents"
	AudienceStaff    = "staff"
)

// audienceAll is accepted on input only and normalized to the sentinel.
const audienceAll = "all"

// ValidAudiences lists the audience tags in display order.
var ValidAudiences = []string{AudienceStudents, AudienceTeachers, AudienceParents, AudienceStaff}

// NormalizeAudience maps a form selection onto the persisted audience
// representation. Unknown tags are dropped. If the selection is empty,
// or contains "all" anywhere (including mixed with concrete tags), the
// result is nil: the empty-set sentinel meaning "all audiences".
func NormalizeAudience(selection []string) []string {
	valid := make(map[string]bool, len(ValidAudiences))
	for _, a := range ValidAudiences {
		valid[a] = true
	}

	var out []string
	seen := make(map[string]bool, len(selection))
	for _, tag := range selection {
		if tag == audienceAll {
			return nil
		}
		if valid[tag] && !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

// Announcement is a tenant-scoped broadcast message shown to the
// school's users. Every query and write is scoped by SchoolID; the
// tenant of an announcement never changes after creation.
type Announcement struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title    string             `bson:"title" json:"title"`
	TitleCI  string             `bson:"title_ci" json:"title_ci"` // lowercase, diacritics-stripped
	Content  string             `bson:"content" json:"content"`
	SchoolID string             `bson:"school_id" json:"school_id"`

	AuthorID   primitive.ObjectID `bson:"author_id" json:"author_id"`
	AuthorName string             `bson:"author_name" json:"author_name"`

	// TargetAudience is empty for "all audiences" (see NormalizeAudience).
	TargetAudience []string             `bson:"target_audience" json:"target_audience"`
	Priority       AnnouncementPriority `bson:"priority" json:"priority"`
	Status         AnnouncementStatus   `bson:"status" json:"status"`

	PublishDate time.Time  `bson:"publish_date" json:"publish_date"`
	ExpiryDate  *time.Time `bson:"expiry_date,omitempty" json:"expiry_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AudienceLabel renders the target audience for display.
func (a Announcement) AudienceLabel() string {
	if len(a.TargetAudience) == 0 {
		return "All Users"
	}
	label := ""
	for i, tag := range a.TargetAudience {
		if i > 0 {
			label += ", "
		}
		label += tag
	}
	return label
}
