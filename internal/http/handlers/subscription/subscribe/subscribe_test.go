package subscribe

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

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/task-reporter/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-reporter/internal/models"
	services "github.com/magabrotheeeer/task-reporter/internal/services/subscription"
)

type SubscriptionServiceMock struct {
	mock.Mock
}

func (m *SubscriptionServiceMock) Subscribe(ctx context.Context, userID int, req models.DummySubscription) (int, error) {
	args := m.Called(ctx, userID, req)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSubscribeHandler_ServeHTTP(t *testing.T) {
	validReq := models.DummySubscription{
		StartDate:  "2024-06-01",
		Frequency:  models.FrequencyDaily,
		ReportTime: "10:00:00",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockID         int
		mockErr        error
		wantStatusCode int
		wantStatus     string
	}{
		{
			name:           "valid subscription",
			requestBody:    validReq,
			mockID:         5,
			wantStatusCode: http.StatusCreated,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
		},
		{
			name: "validation error - missing report_time",
			requestBody: models.DummySubscription{
				StartDate: "2024-06-01",
				Frequency: models.FrequencyDaily,
			},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
		},
		{
			name: "report time with minutes rejected",
			requestBody: models.DummySubscription{
				StartDate:  "2024-06-01",
				Frequency:  models.FrequencyDaily,
				ReportTime: "10:30:00",
			},
			mockErr:        services.ErrInvalidReportTime,
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
		},
		{
			name:           "duplicate subscription",
			requestBody:    validReq,
			mockErr:        services.ErrAlreadySubscribed,
			wantStatusCode: http.StatusConflict,
			wantStatus:     "Error",
		},
		{
			name:           "service failure",
			requestBody:    validReq,
			mockErr:        errors.New("db error"),
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(SubscriptionServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockID != 0 || tt.mockErr != nil {
				serviceMock.On("Subscribe", mock.Anything, 42, tt.requestBody.(models.DummySubscription)).
					Return(tt.mockID, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/subscribe", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.UserID, 42)
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.mockID != 0 {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, float64(tt.mockID), data["id"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
