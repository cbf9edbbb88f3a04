package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"coursehub/internal/httputil"
)

// Recovery turns a handler panic into a 500 and logs it with the matched
// route and the acting user. It must sit inside the auth middleware for the
// user to be known. http.ErrAbortHandler is re-raised so net/http can abort
// the response.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logger.Error("handler panicked",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"route", r.Pattern,
					"user_id", httputil.GetUserID(r),
					"stack", string(debug.Stack()),
				)

				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
