package users

import (
	"context"

	"github.com/dmitrijs2005/resourcekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, email string, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
