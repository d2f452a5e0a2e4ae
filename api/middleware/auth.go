package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/campusshelf/library-backend/api/responses"
	pkgAuth "github.com/campusshelf/library-backend/pkg/auth"
	"github.com/campusshelf/library-backend/pkg/auth/session"
	"github.com/campusshelf/library-backend/pkg/config"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/campusshelf/library-backend/pkg/logger"
)

// Auth requires a bearer access token whose session is still live and puts
// the caller's identity on the request context.
func Auth(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, cfg, sessions)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			userID, role := claims.UserID.String(), string(claims.Role)
			ctx := WithSessionID(WithRole(WithUserID(r.Context(), userID), role), claims.ID)
			if logg != nil {
				ctx = logg.WithActorRole(logg.WithUserID(ctx, userID), role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, sessions session.AccessSessionChecker) (*pkgAuth.AccessTokenClaims, error) {
	raw, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, raw)
	if err != nil {
		msg := "invalid token"
		if pkgAuth.IsExpired(err) {
			msg = "token expired"
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msg)
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := checkSession(r.Context(), sessions, claims.ID); err != nil {
		return nil, err
	}
	return claims, nil
}

// checkSession rejects access tokens whose refresh session was revoked by
// logout or rotation.
func checkSession(ctx context.Context, sessions session.AccessSessionChecker, accessID string) error {
	if sessions == nil {
		return nil
	}
	live, err := sessions.HasSession(ctx, accessID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	}
	if !live {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
	}
	return nil
}

// bearerToken accepts "Bearer <token>" with any casing of the scheme.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
