package auth

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/you/go-dish-demand/internal/config"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

const defaultTokenTTL = time.Hour

// IssueToken signs an HS256 token for username that expires after cfg.JWTTTL
// (one hour when unset).
func IssueToken(cfg *config.Config, username string) (string, time.Time, error) {
	ttl := cfg.JWTTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := time.Now()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth.IssueToken: %w", err)
	}
	return tok, exp.UTC().Truncate(time.Second), nil
}

// isPublic lists the paths that never need a token.
func isPublic(path string) bool {
	return path == "/" || strings.HasPrefix(path, "/auth/")
}

// JWTMiddleware guards next with an HS256 bearer token. It is a pass-through
// when no secret is configured.
func JWTMiddleware(next http.Handler, cfg *config.Config) http.Handler {
	if !cfg.AuthEnabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r.URL.Path) || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		authH := r.Header.Get("Authorization")
		if authH == "" {
			if t := r.URL.Query().Get("token"); t != "" {
				// EventSource and websocket clients cannot set headers
				r.Header.Set("Authorization", "Bearer "+t)
				authH = r.Header.Get("Authorization")
			}
		}
		if !strings.HasPrefix(authH, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		tok := strings.TrimPrefix(authH, "Bearer ")
		_, err := jwt.Parse(tok, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenUnverifiable
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil {
			slog.Warn("JWT rejected", "err", err, "path", r.URL.Path)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginHandler trades the configured credentials for a bearer token. It is a
// 404 while auth is disabled.
func LoginHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !cfg.AuthEnabled() {
			http.Error(w, "authentication is disabled", http.StatusNotFound)
			return
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if subtle.ConstantTimeCompare([]byte(req.Username), []byte(cfg.JWTUser)) != 1 ||
			subtle.ConstantTimeCompare([]byte(req.Password), []byte(cfg.JWTPassword)) != 1 {
			slog.Warn("login rejected", "user", req.Username)
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, exp, err := IssueToken(cfg, req.Username)
		if err != nil {
			slog.Error("token issue failed", "err", err)
			http.Error(w, "token unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loginResponse{Token: tok, TokenType: "Bearer", ExpiresAt: exp})
	}
}
