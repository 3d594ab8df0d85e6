package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/config"
	"github.com/financewallet/wallet/internal/models"

	"github.com/google/uuid"
)

// AuthService handles registration, login, and token issuance
type AuthService struct {
	store Store
	log   *logrus.Logger
	cfg   *config.Config
}

// NewAuthService initializes a new auth service
func NewAuthService(store Store, log *logrus.Logger, cfg *config.Config) *AuthService {
	return &AuthService{store: store, log: log, cfg: cfg}
}

// RegisterInput holds parameters for a new user.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

// Register creates a new user with a hashed password and returns the user
// together with a signed access token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if in.Email == "" || in.Username == "" {
		return nil, "", apperr.BadRequest("email and username are required")
	}
	if len(in.Password) < 8 {
		return nil, "", apperr.BadRequest("password must be at least 8 characters")
	}

	taken, err := s.store.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", apperr.BadRequest("email is already taken")
	}
	taken, err = s.store.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", apperr.BadRequest("username is already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: string(hashed),
		FullName:     in.FullName,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, token, nil
}

// Login authenticates a user and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, "", apperr.Unauthorized("invalid email or password")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.Unauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, "", apperr.Unauthorized("account is deactivated")
	}

	if err := s.store.UpdateUserLastLogin(ctx, user.ID, time.Now()); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return user, token, nil
}

// CurrentUser loads the authenticated caller's profile.
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.store.UserByID(ctx, userID)
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.JWTTTL)),
	})
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
