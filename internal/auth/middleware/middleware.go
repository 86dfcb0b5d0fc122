package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/rbac"
)

type AuthService struct {
	hmac []byte
	ttl  time.Duration
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{hmac: []byte(secret), ttl: ttl}
}

type Claims struct {
	Sub      string `json:"sub"`
	Username string `json:"username"`
	Role     string `json:"role"` // "admin" or "learner"
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, username, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:      sub,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mindengage-trainer",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// Session describes the cookie carrying the token.
type Session struct {
	Cookie string
	Secure bool
	TTL    time.Duration
}

func (s Session) set(w http.ResponseWriter, tok string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Cookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.TTL.Seconds()),
	})
}

func (s Session) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Cookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// tokenFrom reads a Bearer header first, then the session cookie.
func (s Session) tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(s.Cookie); err == nil {
		return c.Value
	}
	return ""
}

// UserFinder resolves a user by id or username.
type UserFinder interface {
	FindUser(ctx context.Context, idOrUsername string) (quiz.User, error)
}

type meResponse struct {
	LoggedIn    bool   `json:"logged_in"`
	Username    string `json:"username,omitempty"`
	Role        string `json:"role,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(a *AuthService, users UserFinder, sess Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		u, err := users.FindUser(r.Context(), strings.TrimSpace(req.Username))
		if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(u.ID, u.Username, u.Role)
		if err != nil {
			http.Error(w, "issue token", 500)
			return
		}
		sess.set(w, tok)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(meResponse{LoggedIn: true, Username: u.Username, Role: u.Role, AccessToken: tok})
	}
}

// POST /auth/logout
func LogoutHandler(sess Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess.clear(w)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(meResponse{LoggedIn: false})
	}
}

// GET /auth/me
func MeHandler(a *AuthService, sess Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		c, err := a.Parse(sess.tokenFrom(r))
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(meResponse{LoggedIn: false})
			return
		}
		_ = json.NewEncoder(w).Encode(meResponse{LoggedIn: true, Username: c.Username, Role: c.Role})
	}
}

// JWTMiddleware accepts a Bearer token or the session cookie and puts the
// subject, username and claimed role in the request context.
func JWTMiddleware(a *AuthService, sess Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := sess.tokenFrom(r)
			if tok == "" {
				http.Error(w, "missing session", http.StatusUnauthorized)
				return
			}
			c, err := a.Parse(tok)
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := WithSubject(r.Context(), c.Sub)
			ctx = rbac.WithRole(ctx, c.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HashPassword returns a bcrypt hash at the default cost.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// UserCreator upserts users by username.
type UserCreator interface {
	CreateUser(ctx context.Context, u quiz.User) (quiz.User, error)
}

// EnsureAdmin upserts the configured admin account.
func EnsureAdmin(ctx context.Context, users UserCreator, username, passHash string) error {
	if username == "" || passHash == "" {
		return nil
	}
	_, err := users.CreateUser(ctx, quiz.User{Username: username, Role: rbac.RoleAdmin, PasswordHash: passHash})
	return err
}
