package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/afritokeni/ussd-engine/internal/model"
)

var _ model.UserDirectory = (*UserRepository)(nil)

type UserRepository struct {
	db      *Connection
	pinCost int
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db:      db,
		pinCost: bcrypt.DefaultCost,
	}
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (model.User, error) {
	var user model.User
	query := `SELECT id, phone, full_name, currency, language, pin_hash IS NOT NULL, created_at, updated_at
			  FROM users WHERE phone = $1`

	err := r.db.QueryRow(ctx, query, phone).Scan(
		&user.ID, &user.Phone, &user.FullName, &user.Currency, &user.Language, &user.HasPIN,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by phone: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Register(ctx context.Context, user model.User) (model.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Language == "" {
		user.Language = model.LanguageEnglish
	}

	query := `INSERT INTO users (id, phone, full_name, currency, language)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, phone, full_name, currency, language, created_at, updated_at`

	var saved model.User
	err := r.db.QueryRow(ctx, query, user.ID, user.Phone, user.FullName, user.Currency, user.Language).Scan(
		&saved.ID, &saved.Phone, &saved.FullName, &saved.Currency, &saved.Language, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.ErrUserExists
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) VerifyPIN(ctx context.Context, phone, pin string) (bool, error) {
	var hash []byte
	err := r.db.QueryRow(ctx, `SELECT pin_hash FROM users WHERE phone = $1`, phone).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, model.ErrNotFound
		}
		return false, fmt.Errorf("failed to get PIN hash: %w", err)
	}
	if hash == nil {
		return false, nil
	}

	return bcrypt.CompareHashAndPassword(hash, []byte(pin)) == nil, nil
}

func (r *UserRepository) SetPIN(ctx context.Context, phone, pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), r.pinCost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}

	tag, err := r.db.Exec(ctx, `UPDATE users SET pin_hash = $2, updated_at = now() WHERE phone = $1`, phone, hash)
	if err != nil {
		return fmt.Errorf("failed to set PIN: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *UserRepository) SetLanguage(ctx context.Context, phone string, language model.Language) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET language = $2, updated_at = now() WHERE phone = $1`, phone, language)
	if err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
