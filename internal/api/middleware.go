package api

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	headerUserID    = "X-User-Id"
	headerRequestID = "X-Request-Id"
)

// authMiddleware extracts the user ID from the X-User-Id header
// and adds it to the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(headerUserID)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing X-User-Id header")

			return
		}

		ctx := withUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit gives every user a token bucket. Buckets nobody used for a while
// are dropped.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limit <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiterFor(UserIDFromContext(r.Context())).Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(max(1, int(1/float64(s.limit)))))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) limiterFor(userID string) *rate.Limiter {
	if v, ok := s.limiters.Get(userID); ok {
		if l, ok := v.(*rate.Limiter); ok {
			s.limiters.SetDefault(userID, l)

			return l
		}
	}

	l := rate.NewLimiter(s.limit, s.burst)
	if err := s.limiters.Add(userID, l, 0); err != nil {
		// Another request created it first.
		if v, ok := s.limiters.Get(userID); ok {
			if existing, ok := v.(*rate.Limiter); ok {
				return existing
			}
		}
	}

	return l
}

// statusWriter records the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}

	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n

	return n, err
}

// Hijack lets the WebSocket upgrader take over the connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer cannot be hijacked")
	}

	w.status = http.StatusSwitchingProtocols

	return h.Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// logRequests tags each request with an ID and logs it once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(headerRequestID, requestID)

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r.WithContext(withRequestID(r.Context(), requestID)))

		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		entry := s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"bytes":      sw.bytes,
			"duration":   time.Since(start).String(),
			"user_id":    r.Header.Get(headerUserID),
		})

		switch {
		case sw.status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case sw.status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	})
}
