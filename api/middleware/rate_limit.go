package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/httprate"

	"github.com/angelmondragon/gudang-backend/api/responses"
	"github.com/angelmondragon/gudang-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"github.com/angelmondragon/gudang-backend/pkg/logger"
)

// RateLimit caps requests per caller over a sliding window. Authenticated
// callers are keyed by user id, everyone else by client IP.
func RateLimit(cfg config.HTTPRateLimitConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	if cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(cfg.Requests, cfg.Window,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
		}),
	)
}

func rateLimitKey(r *http.Request) (string, error) {
	if id := UserIDFromContext(r.Context()); id != 0 {
		return "user:" + strconv.FormatUint(id, 10), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
