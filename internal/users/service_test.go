package users

import (
	"context"
	"testing"

	"github.com/campusshelf/library-backend/pkg/db/dbtest"
	"github.com/campusshelf/library-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNormalizesAndDefaults(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: " Ada@Campus.EDU ", Name: "Ada", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, "ada@campus.edu", user.Email)
	assert.Equal(t, enums.UserRoleStudent, user.Role)
	assert.Equal(t, enums.UserStatusPending, user.Status)

	found, err := repo.FindByEmail(ctx, "ADA@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestSetStatusApprovesAccount(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo, nil)
	require.NoError(t, err)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "grace@campus.edu", Name: "Grace", PasswordHash: "hash"})
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, uuid.New(), user.ID, enums.UserStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, enums.UserStatusApproved, updated.Status)

	_, err = svc.SetStatus(ctx, uuid.New(), uuid.New(), enums.UserStatusApproved)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = svc.SetStatus(ctx, user.ID, user.ID, enums.UserStatusRejected)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))
}

func TestListUsersFiltersByStatus(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = repo.Create(ctx, CreateUserDTO{Email: "a@campus.edu", Name: "A", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Email: "b@campus.edu", Name: "B", PasswordHash: "h", Status: enums.UserStatusApproved})
	require.NoError(t, err)

	pending := enums.UserStatusPending
	page, err := svc.ListUsers(ctx, &pending, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a@campus.edu", page.Items[0].Email)

	all, err := svc.ListUsers(ctx, nil, "", 10)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
}
