package accounts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/common"
	"github.com/dmitrijs2005/otpsteward/internal/dbx"
	"github.com/dmitrijs2005/otpsteward/internal/server/models"
)

// SQLRepository works against both SQLite and PostgreSQL; queries use
// $N placeholders, which both drivers accept.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts the account and sets its durable ID. Clients are not
// touched.
func (r *SQLRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (uuid, name, comments, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.UUID, account.Name, account.Comments, string(account.Role)).Scan(&account.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *SQLRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	query :=
		`UPDATE accounts SET last_login = $1
		 WHERE id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// List returns every account in sort order. Client lists are left empty;
// the identity index fills them from the clients table.
func (r *SQLRepository) List(ctx context.Context) ([]*models.Account, error) {
	query :=
		`SELECT id, uuid, name, comments, role, last_login FROM accounts
		 ORDER BY sort_order, id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		var (
			a         models.Account
			role      string
			lastLogin sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.UUID, &a.Name, &a.Comments, &role, &lastLogin); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		a.Role = models.Role(role)
		if lastLogin.Valid {
			t := lastLogin.Time
			a.LastLogin = &t
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Delete removes the account; the schema trigger removes its clients.
func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
