// internal/app/features/accounts/handler.go
package accounts

import (
	uierrors "github.com/dalemusser/schoolhub/internal/app/features/errors"
	userstore "github.com/dalemusser/schoolhub/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the account-creation handlers for parents and staff.
type Handler struct {
	DB     *mongo.Database
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an accounts Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Users:  userstore.New(db),
		Log:    logger,
		ErrLog: errLog,
	}
}
