package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// Throttle rejects requests beyond the given rate with 429. An rps of
// zero or less disables throttling. Burst capacity equals the rate,
// with a floor of one.
func Throttle(rps float64) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeErrorResponse(w, ErrorBody{
					Code:      "TOO_MANY_REQUESTS",
					Message:   "request rate limit exceeded",
					RequestID: GetRequestID(r.Context()),
				}, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
