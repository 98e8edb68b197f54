package create

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

	"github.com/magabrotheeeer/expense-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, userUID string, req models.DummySubscription) (int, error) {
	args := m.Called(ctx, userUID, req)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func validRequest() models.DummySubscription {
	return models.DummySubscription{
		Title:            "Netflix",
		Price:            "15.99",
		StartDate:        "2026-09-15",
		RenewalCycleDays: 30,
	}
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		userUID        string
		setupMocks     func(m *ServiceMock)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "successful creation",
			requestBody: validRequest(),
			userUID:     "user-uuid",
			setupMocks: func(m *ServiceMock) {
				m.On("Create", mock.Anything, "user-uuid", validRequest()).Return(42, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			userUID:        "user-uuid",
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name: "validation error - cycle outside allowed set",
			requestBody: models.DummySubscription{
				Title: "Netflix", Price: "15.99", StartDate: "2026-09-15", RenewalCycleDays: 45,
			},
			userUID:        "user-uuid",
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field RenewalCycleDays must be one of: 30 60 90 120 150 180",
		},
		{
			name: "validation error - wrong date format",
			requestBody: models.DummySubscription{
				Title: "Netflix", Price: "15.99", StartDate: "15-09-2026", RenewalCycleDays: 30,
			},
			userUID:        "user-uuid",
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field StartDate can contain only date in format 2006-01-02",
		},
		{
			name:           "missing user identity",
			requestBody:    validRequest(),
			userUID:        "",
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:        "service error",
			requestBody: validRequest(),
			userUID:     "user-uuid",
			setupMocks: func(m *ServiceMock) {
				m.On("Create", mock.Anything, "user-uuid", validRequest()).
					Return(0, errors.New("db error")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not create subscription",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcMock := new(ServiceMock)
			tt.setupMocks(svcMock)

			handler := New(newNoopLogger(), svcMock)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/subscription", bytes.NewReader(bodyBytes))
			if tt.userUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

			if tt.wantError != "" {
				assert.Equal(t, "Error", resp["status"])
				assert.Contains(t, resp["error"], tt.wantError)
			} else {
				assert.Equal(t, "OK", resp["status"])
				data := resp["data"].(map[string]any)
				assert.Equal(t, float64(42), data["last_added_id"])
			}

			svcMock.AssertExpectations(t)
		})
	}
}
