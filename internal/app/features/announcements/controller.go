// internal/app/features/announcements/controller.go
package announcements

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/schoolhub/internal/app/system/auth"
	"github.com/dalemusser/schoolhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/schoolhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Repository is the slice of the announcements store the controller
// needs. *annstore.Store satisfies it; tests substitute fakes.
type Repository interface {
	ListForSchool(ctx context.Context, schoolID string) ([]models.Announcement, error)
	Create(ctx context.Context, a models.Announcement) (models.Announcement, error)
	PatchStatus(ctx context.Context, id primitive.ObjectID, status models.AnnouncementStatus) error
}

// SyncState tracks how a locally held announcement relates to the
// store. Confirmed entries match what was written; pending entries
// have a write in flight or a write that failed under the lenient
// archive policy; reverted entries had their optimistic change undone.
type SyncState string

const (
	SyncConfirmed SyncState = "confirmed"
	SyncPending   SyncState = "pending"
	SyncReverted  SyncState = "reverted"
)

// Entry is one announcement in the controller's working set.
type Entry struct {
	models.Announcement
	Sync SyncState
}

// ReportMode says whether a failed operation surfaces to the user or
// only to the log.
type ReportMode int

const (
	ReportSilent ReportMode = iota
	ReportLoud
)

// ErrorPolicy maps each operation to a ReportMode.
type ErrorPolicy struct {
	Load    ReportMode
	Publish ReportMode
	Archive ReportMode
}

// DefaultErrorPolicy surfaces publish failures to the user and keeps
// load and archive failures in the log only.
func DefaultErrorPolicy() ErrorPolicy {
	return ErrorPolicy{
		Load:    ReportSilent,
		Publish: ReportLoud,
		Archive: ReportSilent,
	}
}

// Alert is a one-shot message for the page to display.
type Alert struct {
	Kind    string // "success" | "error"
	Message string
}

// DraftForm holds the in-progress new-announcement form.
type DraftForm struct {
	Title    string
	Content  string
	Priority models.AnnouncementPriority
	Audience []string
	Expiry   string // yyyy-mm-dd, optional
}

// EmptyState discriminates the two reasons the visible list can be empty.
type EmptyState string

const (
	EmptyNone      EmptyState = ""           // list is not empty
	EmptyNoEntries EmptyState = "no-entries" // school has no announcements yet
	EmptyNoMatches EmptyState = "no-matches" // filter matched nothing
)

// Option configures a Controller.
type Option func(*Controller)

// WithErrorPolicy overrides the default report modes.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithArchiveRollback makes a failed archive write revert the local
// entry instead of leaving it optimistically archived.
func WithArchiveRollback() Option {
	return func(c *Controller) { c.rollback = true }
}

// Controller holds one signed-in user's announcements page state: the
// working set of entries, the active filter, the draft form, and a
// pending alert. It lives for the session, so optimistic updates
// survive across requests without refetching.
//
// All methods are safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	user   *auth.SessionUser
	repo   Repository
	log    *zap.Logger
	policy ErrorPolicy

	rollback bool

	// lifetime is cancelled by Close; in-flight operations joined to it
	// are cut off and later calls become no-ops.
	lifetime context.Context
	cancel   context.CancelFunc

	entries []Entry
	loaded  bool

	// loading and publishing are true while the matching store call is
	// in flight; concurrent renders can show progress.
	loading    bool
	publishing bool

	// showCreate is the open/closed state of the new-announcement panel.
	// Publish success closes it; a failed publish leaves it open with
	// the draft intact so the user can retry.
	showCreate bool

	searchTerm string
	form       DraftForm
	alert      *Alert
}

// NewController builds a controller bound to one session user. The
// user is a required capability: every fetch and write is scoped to
// user.SchoolID and attributed to user.ID.
func NewController(user *auth.SessionUser, repo Repository, logger *zap.Logger, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		user:     user,
		repo:     repo,
		log:      logger,
		policy:   DefaultErrorPolicy(),
		lifetime: ctx,
		cancel:   cancel,
		form:     DraftForm{Priority: models.PriorityMedium},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close tears the controller down. In-flight operations are cancelled
// and every later call is a no-op.
func (c *Controller) Close() {
	c.cancel()
}

// UpdateUser replaces the session user snapshot. The session
// middleware refetches the user on every request, so author
// attribution and tenant scoping follow role and profile changes
// instead of the values seen when the controller was created.
func (c *Controller) UpdateUser(u *auth.SessionUser) {
	c.mu.Lock()
	c.user = u
	c.mu.Unlock()
}

func (c *Controller) closed() bool {
	return c.lifetime.Err() != nil
}

// opContext joins the request context with the controller lifetime, so
// an operation stops when either the request is abandoned or the
// controller is closed.
func (c *Controller) opContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(c.lifetime, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

/* -------------------------------------------------------------------------- */
/* Operations                                                                 */
/* -------------------------------------------------------------------------- */

// Load fetches the school's announcements and replaces the working
// set. A user with no school gets an empty, loaded list. Fetch errors
// leave the previous working set in place.
func (c *Controller) Load(ctx context.Context) {
	if c.closed() {
		return
	}

	c.mu.Lock()
	user := c.user
	c.mu.Unlock()

	if user.SchoolID == "" {
		c.mu.Lock()
		c.entries = nil
		c.loaded = true
		c.mu.Unlock()
		return
	}

	c.setLoading(true)
	defer c.setLoading(false)

	opCtx, done := c.opContext(ctx)
	defer done()

	list, err := c.repo.ListForSchool(opCtx, user.SchoolID)
	if err != nil {
		c.log.Error("failed to load announcements",
			zap.String("school_id", user.SchoolID),
			zap.Error(err))
		if c.policy.Load == ReportLoud {
			c.setAlert("error", "Could not load announcements. Please try again.")
		}
		return
	}

	entries := make([]Entry, 0, len(list))
	for _, a := range list {
		entries = append(entries, Entry{Announcement: a, Sync: SyncConfirmed})
	}

	c.mu.Lock()
	if c.lifetime.Err() == nil {
		c.entries = entries
		c.loaded = true
	}
	c.mu.Unlock()
}

// Publish validates the draft form, writes a new announcement, and on
// success prepends it to the working set without refetching, clears the
// draft, and closes the creation panel. A failed write keeps the draft
// and the open panel so the user can retry. A draft with an empty title
// or content is silently ignored. The new entry goes to the head of the
// list even if older entries carry later publish dates; the store's
// ordering reasserts itself on next Load.
func (c *Controller) Publish(ctx context.Context) {
	if c.closed() {
		return
	}

	c.mu.Lock()
	form := c.form
	user := c.user
	c.mu.Unlock()

	title := strings.TrimSpace(form.Title)
	content := strings.TrimSpace(form.Content)
	if title == "" || content == "" {
		return
	}
	if user.SchoolID == "" {
		return
	}

	authorID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		c.log.Error("publish with malformed user id", zap.String("user_id", user.ID))
		return
	}

	a := models.Announcement{
		Title:          title,
		TitleCI:        text.Fold(title),
		Content:        htmlsanitize.Sanitize(content),
		SchoolID:       user.SchoolID,
		AuthorID:       authorID,
		AuthorName:     user.Name,
		TargetAudience: models.NormalizeAudience(form.Audience),
		Priority:       form.Priority,
		Status:         models.StatusPublished,
		PublishDate:    time.Now().UTC(),
	}
	if form.Expiry != "" {
		if t, perr := time.Parse("2006-01-02", form.Expiry); perr == nil {
			a.ExpiryDate = &t
		}
	}

	c.setPublishing(true)
	defer c.setPublishing(false)

	opCtx, done := c.opContext(ctx)
	defer done()

	created, err := c.repo.Create(opCtx, a)
	if err != nil {
		c.log.Error("failed to publish announcement",
			zap.String("school_id", user.SchoolID),
			zap.Error(err))
		if c.policy.Publish == ReportLoud {
			c.setAlert("error", "Failed to publish announcement. Please try again.")
		}
		return
	}

	c.mu.Lock()
	if c.lifetime.Err() == nil {
		c.entries = append([]Entry{{Announcement: created, Sync: SyncConfirmed}}, c.entries...)
		c.form = DraftForm{Priority: models.PriorityMedium}
		c.showCreate = false
	}
	c.mu.Unlock()

	if c.policy.Publish == ReportLoud {
		c.setAlert("success", "Announcement published successfully!")
	}
}

// Archive moves an announcement to archived. The local entry flips
// first (marked pending), then the write lands. On write failure the
// default is to keep the optimistic state and log; with
// WithArchiveRollback the entry reverts and is marked reverted.
func (c *Controller) Archive(ctx context.Context, id primitive.ObjectID) {
	if c.closed() {
		return
	}

	c.mu.Lock()
	idx := -1
	for i := range c.entries {
		if c.entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	prevStatus := c.entries[idx].Status
	c.entries[idx].Status = models.StatusArchived
	c.entries[idx].Sync = SyncPending
	c.mu.Unlock()

	opCtx, done := c.opContext(ctx)
	defer done()

	err := c.repo.PatchStatus(opCtx, id, models.StatusArchived)

	c.mu.Lock()
	defer c.mu.Unlock()

	// A Close while the write was in flight means the completion must
	// not touch state.
	if c.lifetime.Err() != nil {
		return
	}

	// The working set may have been reloaded while the write was in
	// flight; find the entry again.
	idx = -1
	for i := range c.entries {
		if c.entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	if err == nil {
		c.entries[idx].Sync = SyncConfirmed
		return
	}

	c.log.Error("failed to archive announcement",
		zap.String("announcement_id", id.Hex()),
		zap.Error(err))

	if c.rollback {
		c.entries[idx].Status = prevStatus
		c.entries[idx].Sync = SyncReverted
	}
	if c.policy.Archive == ReportLoud {
		// c.mu is already held here; set the alert directly.
		c.alert = &Alert{Kind: "error", Message: "Failed to archive announcement."}
	}
}

/* -------------------------------------------------------------------------- */
/* Local state                                                                */
/* -------------------------------------------------------------------------- */

// SetSearchTerm updates the filter applied by Visible.
func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	c.searchTerm = term
	c.mu.Unlock()
}

// SearchTerm returns the active filter.
func (c *Controller) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchTerm
}

// SetForm replaces the draft form.
func (c *Controller) SetForm(f DraftForm) {
	c.mu.Lock()
	if f.Priority == "" {
		f.Priority = models.PriorityMedium
	}
	c.form = f
	c.mu.Unlock()
}

// Form returns a copy of the draft form.
func (c *Controller) Form() DraftForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Visible returns the entries matching the active filter: a
// case-insensitive substring match against title or content. An empty
// filter returns everything.
func (c *Controller) Visible() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(c.searchTerm))
	if term == "" {
		out := make([]Entry, len(c.entries))
		copy(out, c.entries)
		return out
	}

	var out []Entry
	for _, e := range c.entries {
		if strings.Contains(strings.ToLower(e.Title), term) ||
			strings.Contains(strings.ToLower(e.Content), term) {
			out = append(out, e)
		}
	}
	return out
}

// EmptyState reports why the visible list is empty, or EmptyNone when
// it is not.
func (c *Controller) EmptyState() EmptyState {
	visible := c.Visible()
	if len(visible) > 0 {
		return EmptyNone
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return EmptyNoEntries
	}
	return EmptyNoMatches
}

// Loaded reports whether an initial Load has completed.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Loading reports whether a fetch is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

// Publishing reports whether a publish write is in flight.
func (c *Controller) Publishing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.publishing
}

func (c *Controller) setPublishing(v bool) {
	c.mu.Lock()
	c.publishing = v
	c.mu.Unlock()
}

// ShowCreate reports whether the new-announcement panel is open.
func (c *Controller) ShowCreate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showCreate
}

// SetShowCreate opens or closes the new-announcement panel.
func (c *Controller) SetShowCreate(open bool) {
	c.mu.Lock()
	c.showCreate = open
	c.mu.Unlock()
}

// TakeAlert returns the pending alert, if any, and clears it.
func (c *Controller) TakeAlert() *Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := c.alert
	c.alert = nil
	return a
}

func (c *Controller) setAlert(kind, msg string) {
	c.mu.Lock()
	c.alert = &Alert{Kind: kind, Message: msg}
	c.mu.Unlock()
}
