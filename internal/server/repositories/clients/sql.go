package clients

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/common"
	"github.com/dmitrijs2005/otpsteward/internal/dbx"
	"github.com/dmitrijs2005/otpsteward/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	params, err := client.AuthParams.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode auth params: %w", err)
	}

	query :=
		`INSERT INTO clients (uuid, account_id, name, comments, auth_alg, auth_params, auth_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err = r.db.QueryRowContext(ctx, query,
		client.UUID, client.AccountID, client.Name, client.Comments,
		client.AuthAlg, params, client.AuthKey).Scan(&client.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return client, nil
}

func (r *SQLRepository) UpdateAuthParams(ctx context.Context, id int64, params models.AuthParams) error {
	encoded, err := params.Marshal()
	if err != nil {
		return fmt.Errorf("encode auth params: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE clients SET auth_params = $1 WHERE id = $2`, encoded, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE clients SET last_login = $1 WHERE id = $2`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLRepository) ListByAccount(ctx context.Context, accountID int64) ([]*models.Client, error) {
	query :=
		`SELECT id, uuid, account_id, name, comments, auth_alg, auth_params, auth_key, last_login
		 FROM clients
		 WHERE account_id = $1
		 ORDER BY sort_order, id
		 `

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Client
	for rows.Next() {
		var (
			c         models.Client
			params    string
			lastLogin sql.NullTime
		)
		err := rows.Scan(&c.ID, &c.UUID, &c.AccountID, &c.Name, &c.Comments,
			&c.AuthAlg, &params, &c.AuthKey, &lastLogin)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if c.AuthParams, err = models.ParseAuthParams(params); err != nil {
			return nil, fmt.Errorf("client %d: %w", c.ID, err)
		}
		if lastLogin.Valid {
			t := lastLogin.Time
			c.LastLogin = &t
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
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
