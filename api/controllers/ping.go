package controllers

import (
	"net/http"

	"github.com/campusshelf/library-backend/api/middleware"
	"github.com/campusshelf/library-backend/api/responses"
)

type pingResponse struct {
	Scope  string `json:"scope"`
	Status string `json:"status"`
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
}

// PublicPing, PrivatePing and AdminPing let clients check each route group's
// auth wiring; the authenticated ones echo the caller.
func PublicPing() http.HandlerFunc { return ping("public") }
func PrivatePing() http.HandlerFunc { return ping("private") }
func AdminPing() http.HandlerFunc { return ping("admin") }

func ping(scope string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := pingResponse{Scope: scope, Status: "ok"}
		if scope != "public" {
			resp.UserID = middleware.UserIDFromContext(r.Context())
			resp.Role = middleware.RoleFromContext(r.Context())
		}
		responses.WriteSuccess(w, resp)
	}
}
