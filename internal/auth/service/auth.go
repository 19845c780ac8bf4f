package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	userserrors "skillex/internal/users/errors"
	"skillex/internal/users/repository"
	"skillex/pkg/config"
	apperrors "skillex/pkg/errors"
	"skillex/pkg/model"
	"skillex/pkg/sanitizer"
	"skillex/pkg/validation"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=learner teacher"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult carries the authenticated user and their fresh access token.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	Me(ctx context.Context, identity model.Identity) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewAuthService(users repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		users:    users,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	req.Name = sanitizer.TrimAndNormalize(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.checkInput(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     req.Role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email is already registered")
		}
		s.cfg.Log.Error("Failed to register user", "email", req.Email, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("User registered", "user_id", user.ID, "role", user.Role)
	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.checkInput(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		s.cfg.Log.Error("Failed to look up user for login", "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("User logged in", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) Me(ctx context.Context, identity model.Identity) (*model.User, error) {
	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", identity.UserID)
		}
		return nil, apperrors.Internal("Failed to load profile", err)
	}
	return user, nil
}

func (s *authService) issueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWTAccessTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", apperrors.Internal("Failed to sign token", err)
	}
	return token, nil
}

func (s *authService) checkInput(req any) error {
	if err := s.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			translated := validation.Translate(validationErrs)
			return apperrors.Validation("Invalid input", map[string]any{"error": translated.Error()})
		}
		return apperrors.Internal("Failed to validate input", err)
	}
	return nil
}
