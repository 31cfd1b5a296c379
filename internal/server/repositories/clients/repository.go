// Package clients persists Client rows and their TOTP credentials.
package clients

import (
	"context"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, client *models.Client) (*models.Client, error)
	UpdateAuthParams(ctx context.Context, id int64, params models.AuthParams) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	ListByAccount(ctx context.Context, accountID int64) ([]*models.Client, error)
}
