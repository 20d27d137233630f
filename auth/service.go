// Package auth handles user registration, login and bearer-token issuance.
// Passwords are stored only as bcrypt verifiers; tokens are HS256 JWTs bound
// to the user id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/config"
	"github.com/user/mealfeed-go/store"
)

// AuthService provides registration, login and token issuance.
type AuthService struct {
	store      store.Store
	authConfig config.AuthConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(st store.Store, authConfig config.AuthConfig) *AuthService {
	return &AuthService{store: st, authConfig: authConfig}
}

// Claims is the JWT payload: the user id plus registered claims.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Register creates a new user with a hashed password verifier. The email is
// checked for duplicates explicitly before insert; the store's unique
// constraints remain as a backstop for races.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*store.User, error) {
	email := strings.ToLower(req.Email)

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.NewConflictError("email already exists", nil)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NewDatabaseError("failed to check for existing email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &store.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
	}
	created, err := s.store.CreateUser(ctx, user)
	if err != nil {
		var uv *store.UniqueViolationError
		if errors.As(err, &uv) {
			if strings.Contains(uv.Constraint, "email") {
				return nil, apperror.NewConflictError("email already exists", nil)
			}
			return nil, apperror.NewConflictError("name already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return created, nil
}

// Login verifies the password against the stored verifier and issues a
// bearer token on success.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Do not reveal whether the email or the password was wrong.
			return nil, apperror.NewAuthError("invalid credentials", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}

	token, expiresAt, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue token", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt.Unix(),
		User: UserResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
	}, nil
}

// IssueToken signs a JWT bound to the user id.
func (s *AuthService) IssueToken(userID int64) (string, time.Time, error) {
	expirationTime := time.Now().Add(s.authConfig.TokenDuration)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "mealfeed",
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.authConfig.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expirationTime, nil
}
