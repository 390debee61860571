package issuer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/pkg/platform/sentinel"
	"issuer-gateway/pkg/requestcontext"
)

// PostgresStore persists issuers in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, issuer *models.Issuer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO issuers (id, did, name, auth_token, signing_private_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		issuer.ID, issuer.Did, issuer.Name, issuer.AuthToken,
		issuer.SigningPrivateKey, issuer.CreatedAt, issuer.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert issuer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByDid(ctx context.Context, did string) (*models.Issuer, error) {
	var issuer models.Issuer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, did, name, auth_token, signing_private_key, created_at, updated_at
		FROM issuers WHERE did = $1`, did,
	).Scan(&issuer.ID, &issuer.Did, &issuer.Name, &issuer.AuthToken,
		&issuer.SigningPrivateKey, &issuer.CreatedAt, &issuer.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find issuer: %w", err)
	}
	return &issuer, nil
}

func (s *PostgresStore) PatchAuthToken(ctx context.Context, id uuid.UUID, authToken string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE issuers SET auth_token = $2, updated_at = $3 WHERE id = $1",
		id, authToken, requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("patch issuer auth token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("patch issuer auth token: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
