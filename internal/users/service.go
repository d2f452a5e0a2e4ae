package users

import (
	"context"
	"strings"

	"github.com/campusshelf/library-backend/pkg/db"
	"github.com/campusshelf/library-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/campusshelf/library-backend/pkg/logger"
	"github.com/campusshelf/library-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Service covers the admin account-review surface.
type Service interface {
	GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	ListUsers(ctx context.Context, status *enums.UserStatus, cursor string, limit int) (pagination.Page[UserDTO], error)
	SetStatus(ctx context.Context, adminID, userID uuid.UUID, status enums.UserStatus) (*UserDTO, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) ListUsers(ctx context.Context, status *enums.UserStatus, cursor string, limit int) (pagination.Page[UserDTO], error) {
	decoded, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return pagination.Page[UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, status, decoded, limit)
	if err != nil {
		return pagination.Page[UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	dtos := make([]UserDTO, len(rows))
	for i := range rows {
		dtos[i] = *FromModel(&rows[i])
	}
	return pagination.BuildPage(dtos, limit, func(u UserDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: u.CreatedAt, ID: u.ID}
	}), nil
}

// SetStatus approves, rejects or suspends an account. Admins cannot change their own status.
func (s *service) SetStatus(ctx context.Context, adminID, userID uuid.UUID, status enums.UserStatus) (*UserDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user status")
	}
	if adminID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admins cannot change their own status")
	}
	changed, err := s.repo.UpdateStatus(ctx, userID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user status")
	}
	if !changed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"admin_id": adminID.String(),
		"user_id":  userID.String(),
		"status":   status.String(),
	})
	s.logg.Info(logCtx, "user status changed")
	return s.GetUser(ctx, userID)
}
