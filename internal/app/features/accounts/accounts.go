// internal/app/features/accounts/accounts.go
package accounts

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/schoolhub/internal/app/features/errors"
	userstore "github.com/dalemusser/schoolhub/internal/app/store/users"
	"github.com/dalemusser/schoolhub/internal/app/system/auth"
	"github.com/dalemusser/schoolhub/internal/app/system/authz"
	"github.com/dalemusser/schoolhub/internal/app/system/inputval"
	"github.com/dalemusser/schoolhub/internal/app/system/timeouts"
	"github.com/dalemusser/schoolhub/internal/app/system/viewdata"
	"github.com/dalemusser/schoolhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// formVM is the view model for the parent/staff creation forms.
type formVM struct {
	viewdata.BaseVM
	RoleLabel string // "Parent" or "Staff"
	Action    string // form post target

	FirstName string
	LastName  string
	Email     string
	Phone     string

	Error   string
	Success string
}

// ServeNewParent displays the new-parent form.
// GET /dashboard/parents/new
func (h *Handler) ServeNewParent(w http.ResponseWriter, r *http.Request) {
	h.serveNew(w, r, models.RoleParent)
}

// ServeNewStaff displays the new-staff form.
// GET /dashboard/staff/new
func (h *Handler) ServeNewStaff(w http.ResponseWriter, r *http.Request) {
	h.serveNew(w, r, models.RoleStaff)
}

// HandleCreateParent creates a parent account.
// POST /dashboard/parents/new
func (h *Handler) HandleCreateParent(w http.ResponseWriter, r *http.Request) {
	h.handleCreate(w, r, models.RoleParent)
}

// HandleCreateStaff creates a staff account.
// POST /dashboard/staff/new
func (h *Handler) HandleCreateStaff(w http.ResponseWriter, r *http.Request) {
	h.handleCreate(w, r, models.RoleStaff)
}

func (h *Handler) serveNew(w http.ResponseWriter, r *http.Request, role string) {
	vm := h.newFormVM(r, role)
	templates.Render(w, r, "accounts/new", vm)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request, role string) {
	if !authz.CanManageAccounts(r) {
		uierrors.RenderForbidden(w, r, "Only school admins can add accounts.", "/dashboard/announcements")
		return
	}

	user, ok := auth.CurrentUser(r)
	if !ok || user.SchoolID == "" {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse account form failed", err, "Invalid form data.", "/dashboard")
		return
	}

	firstName := strings.TrimSpace(r.FormValue("first_name"))
	lastName := strings.TrimSpace(r.FormValue("last_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	phone := strings.TrimSpace(r.FormValue("phone"))

	// Helper to re-render the form with a message, keeping the input.
	reRender := func(msg string) {
		vm := h.newFormVM(r, role)
		vm.FirstName = firstName
		vm.LastName = lastName
		vm.Email = email
		vm.Phone = phone
		vm.Error = msg
		templates.Render(w, r, "accounts/new", vm)
	}

	if firstName == "" || lastName == "" {
		reRender("First and last name are required.")
		return
	}
	if !inputval.IsValidEmail(email) {
		reRender("A valid email address is required.")
		return
	}
	if !inputval.IsValidPhone(phone) {
		reRender("Phone number is invalid.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// New accounts start with a random temporary password and an
	// invite token for the welcome email flow.
	hash, err := hashTempPassword()
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash temp password failed", err, "Unable to create the account.", "/dashboard")
		return
	}

	created, err := h.Users.Create(ctx, models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Phone:        phone,
		Role:         role,
		SchoolID:     user.SchoolID,
		IsActive:     true,
		PasswordHash: hash,
		InviteToken:  uuid.NewString(),
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			reRender("A user with this email already exists.")
			return
		}
		h.ErrLog.LogServerError(w, r, "create account failed", err, "Unable to create the account.", "/dashboard")
		return
	}

	h.Log.Info("account created",
		zap.String("role", role),
		zap.String("school_id", user.SchoolID),
		zap.String("user_id", created.ID.Hex()))

	vm := h.newFormVM(r, role)
	vm.Success = created.DisplayName() + " was added successfully."
	templates.Render(w, r, "accounts/new", vm)
}

func (h *Handler) newFormVM(r *http.Request, role string) formVM {
	label := "Parent"
	action := "/dashboard/parents/new"
	if role == models.RoleStaff {
		label = "Staff"
		action = "/dashboard/staff/new"
	}
	return formVM{
		BaseVM:    viewdata.NewBaseVM(r, "Add "+label, "/dashboard"),
		RoleLabel: label,
		Action:    action,
	}
}

// hashTempPassword generates a random throwaway password and returns
// its bcrypt hash. The user never sees it; they set a real password
// through the invite flow.
func hashTempPassword() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(base64.StdEncoding.EncodeToString(raw)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
