package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "skillex/pkg/errors"
	"skillex/pkg/logger"
	"skillex/pkg/middleware"
	"skillex/pkg/model"
)

const testSecret = "test-secret"

type mockBookingService struct {
	createFn  func(ctx context.Context, identity model.Identity, req *model.BookingRequest) (*model.Booking, error)
	confirmFn func(ctx context.Context, identity model.Identity, id string) (*model.Booking, error)
}

func (m *mockBookingService) Create(ctx context.Context, identity model.Identity, req *model.BookingRequest) (*model.Booking, error) {
	return m.createFn(ctx, identity, req)
}

func (m *mockBookingService) GetByID(ctx context.Context, identity model.Identity, id string) (*model.Booking, error) {
	return &model.Booking{ID: id, LearnerID: identity.UserID, Status: model.BookingPending}, nil
}

func (m *mockBookingService) List(ctx context.Context, identity model.Identity, filter *model.BookingFilter, limit int, skip int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) Confirm(ctx context.Context, identity model.Identity, id string) (*model.Booking, error) {
	if m.confirmFn != nil {
		return m.confirmFn(ctx, identity, id)
	}
	return &model.Booking{ID: id, Status: model.BookingConfirmed}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, identity model.Identity, id string) (*model.Booking, error) {
	return &model.Booking{ID: id, Status: model.BookingCancelled}, nil
}

func (m *mockBookingService) Complete(ctx context.Context, identity model.Identity, id string) (*model.Booking, error) {
	return &model.Booking{ID: id, Status: model.BookingCompleted}, nil
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard})
	auth := middleware.NewAuthenticator(testSecret, log)
	router := httprouter.New()
	NewBookingHandler(svc, auth, log).RegisterRoutes(router)
	return router
}

func bearerToken(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return env
}

func TestCreateBookingEndpoint(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, identity model.Identity, req *model.BookingRequest) (*model.Booking, error) {
			return &model.Booking{
				ID:        "6653f1a2b3c4d5e6f7a8b9c3",
				LearnerID: identity.UserID,
				ListingID: req.ListingID,
				Status:    model.BookingPending,
			}, nil
		},
	}
	router := newRouter(svc)

	body := `{"listingId":"6653f1a2b3c4d5e6f7a8b9c2","requestedDate":"2031-05-01","requestedTime":"10:00-11:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, "6653f1a2b3c4d5e6f7a8b9c0", model.RoleLearner))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Booking request sent", env.Message)

	var booking model.Booking
	require.NoError(t, json.Unmarshal(env.Data, &booking))
	assert.Equal(t, "6653f1a2b3c4d5e6f7a8b9c0", booking.LearnerID)
	assert.Equal(t, model.BookingPending, booking.Status)
}

func TestCreateBookingEndpointRejectsAnonymous(t *testing.T) {
	router := newRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateBookingEndpointBadBody(t *testing.T) {
	router := newRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{not json`))
	req.Header.Set("Authorization", bearerToken(t, "6653f1a2b3c4d5e6f7a8b9c0", model.RoleLearner))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmEndpointMapsInvalidState(t *testing.T) {
	svc := &mockBookingService{
		confirmFn: func(ctx context.Context, identity model.Identity, id string) (*model.Booking, error) {
			return nil, apperrors.InvalidState("Booking is already confirmed")
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/bookings/6653f1a2b3c4d5e6f7a8b9c3/confirm", nil)
	req.Header.Set("Authorization", bearerToken(t, "6653f1a2b3c4d5e6f7a8b9c1", model.RoleTeacher))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Booking is already confirmed", env.Message)
}

func TestConfirmEndpoint(t *testing.T) {
	router := newRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPut, "/api/bookings/6653f1a2b3c4d5e6f7a8b9c3/confirm", nil)
	req.Header.Set("Authorization", bearerToken(t, "6653f1a2b3c4d5e6f7a8b9c1", model.RoleTeacher))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Booking confirmed", env.Message)
}
