package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/repository"
	"idatech-backoffice/pkg/apierror"
)

const bcryptCost = 12

type AuthService struct {
	users     repository.UserStore
	jwtSecret []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewAuthService(users repository.UserStore, jwtSecret string, accessTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SeedAdmin creates the first admin account when no user exists yet.
func (s *AuthService) SeedAdmin(ctx context.Context, username string, password string) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	user, err := s.Register(ctx, username, password, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	slog.Info("seeded admin account", "username", user.Username)
	return nil
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (model.AccessToken, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.AccessToken{}, model.ErrInvalidCredentials
		}
		return model.AccessToken{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.AccessToken{}, model.ErrInvalidCredentials
	}

	return s.issueAccessToken(user)
}

func (s *AuthService) Register(ctx context.Context, username string, password string, role string) (model.AuthUser, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	role = strings.ToLower(strings.TrimSpace(role))

	if username == "" || password == "" {
		return model.AuthUser{}, apierror.BadRequest("username and password are required", "")
	}
	if role == "" {
		role = model.RoleStaff
	}
	if role != model.RoleAdmin && role != model.RoleStaff {
		return model.AuthUser{}, apierror.BadRequest("invalid role", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return model.AuthUser{}, err
	}

	now := s.now()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return model.AuthUser{}, err
	}

	return authUser(user), nil
}

func (s *AuthService) ValidateToken(tokenString string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierror.Unauthorized("invalid token signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apierror.Unauthorized("invalid token")
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.Unauthorized("invalid token claims")
	}

	claims := &model.AuthClaims{}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Username, _ = claimsMap["username"].(string)
	claims.Role, _ = claimsMap["role"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	if claims.UserID == "" {
		return nil, apierror.Unauthorized("invalid token subject")
	}

	return claims, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID string) (model.AuthUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.AuthUser{}, err
	}
	return authUser(user), nil
}

func (s *AuthService) issueAccessToken(user model.User) (model.AccessToken, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     user.Role,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(s.accessTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return model.AccessToken{}, err
	}

	return model.AccessToken{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		User:        authUser(user),
	}, nil
}

func authUser(user model.User) model.AuthUser {
	return model.AuthUser{ID: user.ID, Username: user.Username, Role: user.Role}
}
