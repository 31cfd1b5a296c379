// Package accounts persists Account rows.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context) ([]*models.Account, error)
	Delete(ctx context.Context, id int64) error
}
