// internal/app/features/announcements/page.go
package announcements

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/dalemusser/schoolhub/internal/app/system/auth"
	"github.com/dalemusser/schoolhub/internal/app/system/authz"
	"github.com/dalemusser/schoolhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/schoolhub/internal/app/system/viewdata"
	"github.com/dalemusser/schoolhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// announcementRow represents an announcement in the list.
type announcementRow struct {
	ID          string
	Title       string
	Content     template.HTML
	Audience    string
	Priority    string
	Status      string
	Pending     bool
	PublishDate string
}

// ListVM is the view model for the announcements page.
type ListVM struct {
	viewdata.BaseVM
	Items      []announcementRow
	SearchTerm string
	EmptyState string // "", "no-entries", "no-matches"
	CanManage  bool
	ShowCreate bool

	// Draft form state, preserved across a failed publish.
	FormTitle    string
	FormContent  string
	FormPriority string
	FormAudience []string
	FormExpiry   string

	AlertKind    string
	AlertMessage string

	Audiences []string
}

// List displays the school's announcements with the active filter
// applied. GET /dashboard/announcements?q=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	c := h.controllerFor(user)
	if !c.Loaded() {
		c.Load(r.Context())
	}

	if q, present := queryParam(r, "q"); present {
		c.SetSearchTerm(q)
	}
	if v, present := queryParam(r, "create"); present {
		c.SetShowCreate(v == "1" || v == "true")
	}

	h.renderList(w, r, c)
}

// Refresh refetches from the store, discarding optimistic state.
// POST /dashboard/announcements/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	c := h.controllerFor(user)
	c.Load(r.Context())
	http.Redirect(w, r, "/dashboard/announcements", http.StatusSeeOther)
}

// Publish validates and writes the draft, then lands back on the list.
// An invalid draft (missing title or content) is a quiet no-op, like
// submitting the form with nothing in it. POST /dashboard/announcements/new
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse announcement form failed", err, "Invalid form data.", "/dashboard/announcements")
		return
	}

	c := h.controllerFor(user)
	c.SetShowCreate(true) // publishing implies the panel was open
	c.SetForm(DraftForm{
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		Priority: models.AnnouncementPriority(r.FormValue("priority")),
		Audience: r.Form["audience"],
		Expiry:   r.FormValue("expiry_date"),
	})
	c.Publish(r.Context())

	http.Redirect(w, r, "/dashboard/announcements", http.StatusSeeOther)
}

// Archive flips one announcement to archived.
// POST /dashboard/announcements/{id}/archive
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "archive with malformed id", err, "Invalid announcement.", "/dashboard/announcements")
		return
	}

	c := h.controllerFor(user)
	c.Archive(r.Context(), id)

	http.Redirect(w, r, "/dashboard/announcements", http.StatusSeeOther)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, c *Controller) {
	visible := c.Visible()
	rows := make([]announcementRow, 0, len(visible))
	for _, e := range visible {
		rows = append(rows, announcementRow{
			ID:          e.ID.Hex(),
			Title:       e.Title,
			Content:     htmlsanitize.SanitizeToHTML(e.Content),
			Audience:    e.AudienceLabel(),
			Priority:    string(e.Priority),
			Status:      string(e.Status),
			Pending:     e.Sync == SyncPending,
			PublishDate: e.PublishDate.Format("Jan 2, 2006"),
		})
	}

	form := c.Form()
	vm := ListVM{
		BaseVM:       viewdata.NewBaseVM(r, "Announcements", "/"),
		Items:        rows,
		SearchTerm:   c.SearchTerm(),
		EmptyState:   string(c.EmptyState()),
		CanManage:    authz.CanManageAnnouncements(r),
		ShowCreate:   c.ShowCreate(),
		FormTitle:    form.Title,
		FormContent:  form.Content,
		FormPriority: string(form.Priority),
		FormAudience: form.Audience,
		FormExpiry:   form.Expiry,
		Audiences:    models.ValidAudiences,
	}
	if a := c.TakeAlert(); a != nil {
		vm.AlertKind = a.Kind
		vm.AlertMessage = a.Message
	}

	templates.Render(w, r, "announcements/list", vm)
}

// queryParam returns the value and whether the key appeared at all, so
// "?q=" (clear the filter) is distinguishable from no q parameter.
func queryParam(r *http.Request, key string) (string, bool) {
	values := r.URL.Query()
	if _, present := values[key]; !present {
		return "", false
	}
	return strings.TrimSpace(values.Get(key)), true
}
