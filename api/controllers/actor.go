package controllers

import (
	"net/http"

	"github.com/campusshelf/library-backend/api/middleware"
	"github.com/campusshelf/library-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/google/uuid"
)

type requestActor struct {
	ID    uuid.UUID
	Admin bool
}

func actorFromRequest(r *http.Request) (requestActor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return requestActor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return requestActor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return requestActor{
		ID:    id,
		Admin: middleware.RoleFromContext(r.Context()) == string(enums.UserRoleAdmin),
	}, nil
}
