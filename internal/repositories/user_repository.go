package repositories

import (
	"context"

	"kora/internal/models"
)

// UserRepository covers the lookups the account directory needs. User
// creation and profile updates happen in a separate service.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
}
