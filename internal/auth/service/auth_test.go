package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"

	userserrors "skillex/internal/users/errors"
	"skillex/pkg/config"
	apperrors "skillex/pkg/errors"
	"skillex/pkg/logger"
	"skillex/pkg/model"
)

// memoryUserRepo stores users keyed by email, mimicking the unique index.
type memoryUserRepo struct {
	byEmail map[string]*model.User
	nextID  int
}

func (m *memoryUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.byEmail == nil {
		m.byEmail = make(map[string]*model.User)
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return userserrors.ErrDuplicateEmail
	}
	m.nextID++
	user.ID = "6653f1a2b3c4d5e6f7a8b9c" + string(rune('0'+m.nextID))
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, userserrors.ErrNotFound
}

func (m *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, userserrors.ErrNotFound
}

func (m *memoryUserRepo) FindPublicByID(ctx context.Context, id string) (*model.PublicUser, error) {
	return nil, userserrors.ErrNotFound
}

func (m *memoryUserRepo) FindPublicByIDs(ctx context.Context, ids []string) (map[string]*model.PublicUser, error) {
	return nil, nil
}

func (m *memoryUserRepo) Update(ctx context.Context, id string, fields bson.M) error { return nil }

func (m *memoryUserRepo) UpdateRating(ctx context.Context, id string, summary model.RatingSummary) error {
	return nil
}

func (m *memoryUserRepo) FindAll(ctx context.Context, limit int, skip int64) ([]*model.User, error) {
	return nil, nil
}

func (m *memoryUserRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *memoryUserRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

func newAuthService() (AuthService, *memoryUserRepo) {
	repo := &memoryUserRepo{}
	cfg := &config.Config{
		JWTSecret:    "test-secret",
		JWTAccessTTL: time.Hour,
		Log:          logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard}),
	}
	return NewAuthService(repo, cfg), repo
}

func registerRequest() *RegisterRequest {
	return &RegisterRequest{
		Name:     "Dana",
		Email:    "Dana@Example.com",
		Password: "hunter22",
		Role:     model.RoleTeacher,
	}
}

func assertAppError(t *testing.T, err error, code string, message string) {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != code {
		t.Errorf("Code = %s, want %s", appErr.Code, code)
	}
	if message != "" && appErr.Message != message {
		t.Errorf("Message = %q, want %q", appErr.Message, message)
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newAuthService()

	result, err := svc.Register(context.Background(), registerRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.User.Email != "dana@example.com" {
		t.Errorf("email not normalized, got %q", result.User.Email)
	}
	if result.User.Password == "hunter22" {
		t.Error("password stored in plaintext")
	}
	if result.Token == "" {
		t.Fatal("no token issued")
	}

	token, err := jwt.Parse(result.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != result.User.ID || claims["role"] != model.RoleTeacher {
		t.Errorf("claims = %v", claims)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(context.Background(), registerRequest())
	assertAppError(t, err, apperrors.CodeConflict, "Email is already registered")
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService()

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"short password", func(r *RegisterRequest) { r.Password = "abc" }},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"admin role rejected", func(r *RegisterRequest) { r.Role = model.RoleAdmin }},
		{"empty name", func(r *RegisterRequest) { r.Name = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := registerRequest()
			tt.mutate(req)
			_, err := svc.Register(context.Background(), req)
			assertAppError(t, err, apperrors.CodeValidation, "")
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService()
	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("correct credentials", func(t *testing.T) {
		result, err := svc.Login(context.Background(), &LoginRequest{Email: "dana@example.com", Password: "hunter22"})
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if result.Token == "" {
			t.Error("no token issued")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &LoginRequest{Email: "dana@example.com", Password: "wrong"})
		assertAppError(t, err, apperrors.CodeUnauthorized, "Invalid credentials")
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
		assertAppError(t, err, apperrors.CodeUnauthorized, "Invalid credentials")
	})
}
