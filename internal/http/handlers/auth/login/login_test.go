package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/expense-tracker/internal/models"
	services "github.com/magabrotheeeer/expense-tracker/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (*services.TokenPair, *models.User, error) {
	args := m.Called(ctx, email, password)
	pair, _ := args.Get(0).(*services.TokenPair)
	user, _ := args.Get(1).(*models.User)
	return pair, user, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	user := &models.User{
		UID:   "user-uuid",
		Email: "test@example.com",
	}
	pair := &services.TokenPair{
		AccessToken:  "tok",
		RefreshToken: "ref",
	}

	tests := []struct {
		name           string
		requestBody    any
		mockPair       *services.TokenPair
		mockUser       *models.User
		mockErr        error
		wantStatusCode int
		wantData       map[string]any
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Email: "test@example.com", Password: "password123"},
			mockPair:       pair,
			mockUser:       user,
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"token":         "tok",
				"refresh_token": "ref",
				"user_uid":      "user-uuid",
				"email":         "test@example.com",
			},
			wantStatus: "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Email: "test@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - malformed email",
			requestBody:    Request{Email: "not-an-email", Password: "password123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email must be a valid email address",
			wantStatus:     "Error",
		},
		{
			name:           "invalid credentials",
			requestBody:    Request{Email: "test@example.com", Password: "wrongpass123"},
			mockErr:        services.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid credentials",
			wantStatus:     "Error",
		},
		{
			name:           "service error",
			requestBody:    Request{Email: "test@example.com", Password: "password123"},
			mockErr:        errors.New("db unavailable"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal service error",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			handler := New(newNoopLogger(), authMock)

			if req, ok := tt.requestBody.(Request); ok && req.Email != "" && req.Password != "" {
				if req.Email != "not-an-email" {
					authMock.On("Login", mock.Anything, req.Email, req.Password).
						Return(tt.mockPair, tt.mockUser, tt.mockErr).Maybe()
				}
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/log_in", bytes.NewReader(bodyBytes))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp["status"])

			if tt.wantError != "" {
				assert.Contains(t, resp["error"], tt.wantError)
			}
			if tt.wantData != nil {
				data, ok := resp["data"].(map[string]any)
				require.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			}
		})
	}
}
