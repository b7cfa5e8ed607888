package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"viksit_backend/internal/config"
	"viksit_backend/internal/model"
	"viksit_backend/internal/repository"
	"viksit_backend/internal/util"
	"viksit_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenRevoker remembers session tokens that were logged out before expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
	// Revoker is nil when redis is disabled; logout then only clears the cookie.
	Revoker TokenRevoker

	now func() time.Time
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config, revoker TokenRevoker) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
		Revoker:  revoker,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Username        string `form:"username" binding:"required,min=3,max=150"`
	Email           string `form:"email" binding:"omitempty,email"`
	Password        string `form:"password1" binding:"required,min=8"`
	PasswordConfirm string `form:"password2" binding:"required"`
}

func (s *AuthService) Register(in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if in.Password != in.PasswordConfirm {
		return nil, util.ErrPasswordMismatch
	}

	_, err := s.UserRepo.FindByUsername(username)
	if err == nil {
		return nil, util.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    strings.TrimSpace(in.Email),
		Password: string(hashedPassword),
	}
	if err := s.UserRepo.Create(user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns a signed session token.
func (s *AuthService) Login(username, password string) (string, *util.Claims, error) {
	user, err := s.UserRepo.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrAuth
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrAuth
	}

	token, claims, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID, s.now()); err != nil {
		logger.Log.Warn("Failed to update last login", zap.Uint("userID", user.ID), zap.Error(err))
	}
	return token, claims, nil
}

// Authenticate validates a session token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*util.Claims, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUnauthorized, err)
	}
	if s.Revoker != nil && claims.ID != "" {
		revoked, err := s.Revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", util.ErrUnauthorized)
		}
	}
	return claims, nil
}

// Logout revokes the token until its natural expiry. Callers clear the
// cookie regardless of the result.
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if s.Revoker == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.Revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *AuthService) CurrentUser(claims *util.Claims) (*model.User, error) {
	if claims == nil {
		return nil, util.ErrUnauthorized
	}
	user, err := s.UserRepo.FindByID(claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUnauthorized
	}
	return user, err
}
