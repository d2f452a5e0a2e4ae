package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/campusshelf/library-backend/pkg/enums"
	"github.com/campusshelf/library-backend/pkg/pagination"
)

// Repository is the gorm-backed store for accounts.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) users(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{})
}

func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail matches on the normalized (trimmed, lower-cased) address.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) first(ctx context.Context, cond string, arg any) (*models.User, error) {
	user := new(models.User)
	if err := r.db.WithContext(ctx).Where(cond, arg).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.setColumn(ctx, id, "last_login_at", at)
}

// UpdatePasswordHash stores a hash recomputed with the current argon2 costs.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.setColumn(ctx, id, "password_hash", hash)
}

// setColumn writes one column without touching updated_at.
func (r *Repository) setColumn(ctx context.Context, id uuid.UUID, column string, value any) error {
	return r.users(ctx).Where("id = ?", id).UpdateColumn(column, value).Error
}

// UpdateStatus reports whether an account with id existed.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.UserStatus) (bool, error) {
	res := r.users(ctx).Where("id = ?", id).Update("status", status)
	return res.RowsAffected == 1, res.Error
}

// List returns one page (plus the look-ahead row) of accounts, newest first.
func (r *Repository) List(ctx context.Context, status *enums.UserStatus, cursor *pagination.Cursor, limit int) ([]models.User, error) {
	query := r.users(ctx)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rows []models.User
	err := query.Scopes(pagination.Keyset(cursor, limit)).Find(&rows).Error
	return rows, err
}

func (r *Repository) CountByStatus(ctx context.Context, status enums.UserStatus) (int64, error) {
	var count int64
	err := r.users(ctx).Where("status = ?", status).Count(&count).Error
	return count, err
}
