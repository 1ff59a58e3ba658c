// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/schoolhub/internal/app/features/errors"
	userstore "github.com/dalemusser/schoolhub/internal/app/store/users"
	"github.com/dalemusser/schoolhub/internal/app/system/auth"
	"github.com/dalemusser/schoolhub/internal/app/system/timeouts"
	"github.com/dalemusser/schoolhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves the email/password sign-in flow.
type Handler struct {
	DB       *mongo.Database
	Users    *userstore.Store
	Sessions *auth.SessionManager
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger

	// OnSignOut is called with the user id when a user signs out, so
	// session-scoped state elsewhere can be torn down.
	OnSignOut func(userID string)
}

// NewHandler constructs a login Handler.
func NewHandler(db *mongo.Database, sessions *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Users:    userstore.New(db),
		Sessions: sessions,
		Log:      logger,
		ErrLog:   errLog,
	}
}

type loginVM struct {
	viewdata.BaseVM
	Email     string
	ReturnURL string
	Error     string
}

// ServeForm displays the sign-in form. GET /login
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard/announcements", http.StatusSeeOther)
		return
	}

	vm := loginVM{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL: safeReturnURL(r.URL.Query().Get("return")),
	}
	templates.Render(w, r, "login", vm)
}

// HandleSignIn checks credentials and starts a session. POST /login
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse login form failed", err, "Invalid form data.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	returnURL := safeReturnURL(r.FormValue("return"))

	reRender := func(msg string) {
		vm := loginVM{
			BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
			Email:     email,
			ReturnURL: returnURL,
			Error:     msg,
		}
		templates.Render(w, r, "login", vm)
	}

	if email == "" || password == "" {
		reRender("Email and password are required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil || !u.IsActive || u.PasswordHash == "" {
		// Same message for unknown accounts and wrong passwords.
		reRender("Invalid email or password.")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		reRender("Invalid email or password.")
		return
	}

	su := &auth.SessionUser{
		ID:        u.ID.Hex(),
		Name:      u.DisplayName(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		SchoolID:  u.SchoolID,
	}
	if err := h.Sessions.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "session sign-in failed", err, "Unable to sign in.", "/login")
		return
	}

	h.Log.Info("user signed in",
		zap.String("user_id", su.ID),
		zap.String("role", su.Role))

	if returnURL == "" {
		returnURL = "/dashboard/announcements"
	}
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

// HandleSignOut ends the session. GET /logout
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok && h.OnSignOut != nil {
		h.OnSignOut(u.ID)
	}
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Warn("session sign-out failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeReturnURL only allows same-site relative paths, so the return
// param can't bounce users to another origin.
func safeReturnURL(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	return raw
}
