package user

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

// PostgresStore persists users in PostgreSQL. DID and one-time code columns
// are nullable with unique partial indexes; empty strings map to NULL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = "id, did, user_code, phone, ssn, dob, created_at, updated_at"

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, did, user_code, phone, ssn, dob, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, nullable(user.Did), nullable(user.UserCode),
		user.Phone, user.Ssn, user.Dob, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByDid(ctx context.Context, did string) (*models.User, error) {
	return s.findBy(ctx, "did = $1", did)
}

func (s *PostgresStore) FindByCode(ctx context.Context, code string) (*models.User, error) {
	return s.findBy(ctx, "user_code = $1", code)
}

func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.findBy(ctx, "phone = $1", phone)
}

func (s *PostgresStore) Patch(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	set := "updated_at = $2"
	args := []any{id, requestcontext.Now(ctx)}

	if patch.Did != nil {
		args = append(args, nullable(*patch.Did))
		set += fmt.Sprintf(", did = $%d", len(args))
	}
	if patch.UserCode != nil {
		args = append(args, nullable(*patch.UserCode))
		set += fmt.Sprintf(", user_code = $%d", len(args))
	}

	row := s.db.QueryRowContext(ctx,
		"UPDATE users SET "+set+" WHERE id = $1 RETURNING "+userColumns, args...)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("patch user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) findBy(ctx context.Context, where string, arg any) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where, arg)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user models.User
		did  sql.NullString
		code sql.NullString
	)
	err := row.Scan(&user.ID, &did, &code, &user.Phone, &user.Ssn, &user.Dob,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.Did = did.String
	user.UserCode = code.String
	return &user, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
