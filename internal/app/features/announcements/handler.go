// internal/app/features/announcements/handler.go
package announcements

import (
	"sync"

	uierrors "github.com/dalemusser/schoolhub/internal/app/features/errors"
	annstore "github.com/dalemusser/schoolhub/internal/app/store/announcements"
	"github.com/dalemusser/schoolhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all Announcements handlers. It keeps one Controller per
// signed-in user so page state (optimistic updates, the active filter,
// the draft form) survives across requests.
type Handler struct {
	DB     *mongo.Database
	Store  *annstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	mu          sync.Mutex
	controllers map[string]*Controller
	opts        []Option
}

// NewHandler constructs an Announcements Handler. Options are passed
// through to every controller it creates.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger, opts ...Option) *Handler {
	return &Handler{
		DB:          db,
		Store:       annstore.New(db),
		Log:         logger,
		ErrLog:      errLog,
		controllers: make(map[string]*Controller),
		opts:        opts,
	}
}

// controllerFor returns the user's controller, creating it on first
// use. An existing controller gets the fresh user snapshot, since the
// session middleware refetches the user each request.
func (h *Handler) controllerFor(user *auth.SessionUser) *Controller {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.controllers[user.ID]; ok {
		c.UpdateUser(user)
		return c
	}
	c := NewController(user, h.Store, h.Log, h.opts...)
	h.controllers[user.ID] = c
	return c
}

// EvictController closes and drops a user's controller. Called on sign-out.
func (h *Handler) EvictController(userID string) {
	h.mu.Lock()
	c, ok := h.controllers[userID]
	delete(h.controllers, userID)
	h.mu.Unlock()

	if ok {
		c.Close()
	}
}

// CloseAll tears down every live controller. Called on shutdown.
func (h *Handler) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.controllers {
		c.Close()
		delete(h.controllers, id)
	}
}
