package middleware

import (
	"net/http"

	"github.com/angelmondragon/shopoverlay/api/responses"
	"github.com/angelmondragon/shopoverlay/api/validators"
	pkgAuth "github.com/angelmondragon/shopoverlay/pkg/auth"
	"github.com/angelmondragon/shopoverlay/pkg/config"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
)

const streamTokenParam = "token"

// HostAuth validates a host-signed bearer token and seeds the request context
// with its subject and role. Websocket clients that cannot set headers may
// pass the token as a query parameter instead.
func HostAuth(cfg config.HostConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				token = r.URL.Query().Get(streamTokenParam)
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithSubject(r.Context(), claims.Subject)
			ctx = WithRole(ctx, string(claims.Role))
			ctx = logg.WithSubject(ctx, claims.Subject, string(claims.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
