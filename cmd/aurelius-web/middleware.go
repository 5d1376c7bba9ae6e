package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aurelius-bot/aurelius/internal/storage"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	requestIDKey contextKey = "requestID"
)

// authenticator resolves the calling user. In "local" mode every request
// acts as the configured local user; in "jwt" mode a bearer token signed
// with the shared secret is required and its subject is the user.
type authenticator struct {
	mode      string
	secret    []byte
	localUser string
}

func newAuthenticator(cfg *storage.Config) (*authenticator, error) {
	a := &authenticator{mode: cfg.Web.AuthMode, localUser: cfg.Database.LocalUserID}
	switch a.mode {
	case "local":
		if a.localUser == "" {
			return nil, fmt.Errorf("local auth needs database.local_user_id")
		}
	case "jwt":
		if cfg.Web.JWTSecret == "" {
			return nil, fmt.Errorf("jwt auth needs web.jwt_secret (or SUPABASE_JWT_SECRET)")
		}
		a.secret = []byte(cfg.Web.JWTSecret)
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", a.mode)
	}
	return a, nil
}

// validate returns the subject of a valid HS256 token.
func (a *authenticator) validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}

func (a *authenticator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.mode == "local" {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, a.localUser)))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "authorization header required")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			writeError(w, http.StatusUnauthorized, "invalid authorization format")
			return
		}
		userID, err := a.validate(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// userIDFromRequest returns the authenticated user, or "" outside the
// auth middleware.
func userIDFromRequest(r *http.Request) string {
	uid, _ := r.Context().Value(userIDKey).(string)
	return uid
}

// requestID tags each request with an X-Request-ID, keeping one supplied
// by a proxy.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

// logging logs each request with method, path, status, and duration.
func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		log.Printf("%s %s %d %s [%s]", r.Method, r.URL.Path, rw.status, time.Since(start).Round(time.Millisecond), requestIDFrom(r))
	})
}

// recovery catches panics and returns a 500.
func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("aurelius-web: panic [%s]: %v", requestIDFrom(r), err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
