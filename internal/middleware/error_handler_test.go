package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"photofolio_api/internal/services"
)

func TestJSONErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{
			name:        "validation message is surfaced verbatim",
			err:         services.NewValidationError("missing packageId or paymentType"),
			wantCode:    http.StatusBadRequest,
			wantMessage: "missing packageId or paymentType",
		},
		{
			name:        "package not found",
			err:         services.ErrPackageNotFound,
			wantCode:    http.StatusNotFound,
			wantMessage: "package not found",
		},
		{
			name:        "already paid",
			err:         services.ErrAlreadyPaid,
			wantCode:    http.StatusConflict,
			wantMessage: "booking is already paid",
		},
		{
			name:        "inactive package",
			err:         services.ErrPackageInactive,
			wantCode:    http.StatusBadRequest,
			wantMessage: "this package is no longer available",
		},
		{
			name:        "bad webhook signature gets a generic message",
			err:         services.ErrInvalidSignature,
			wantCode:    http.StatusBadRequest,
			wantMessage: "webhook signature verification failed",
		},
		{
			name:        "echo http error passes through",
			err:         echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header"),
			wantCode:    http.StatusUnauthorized,
			wantMessage: "missing authorization header",
		},
		{
			name:        "unknown errors stay opaque",
			err:         json.Unmarshal([]byte("{"), &struct{}{}),
			wantCode:    http.StatusInternalServerError,
			wantMessage: "something went wrong, please try again later",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			JSONErrorHandler(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != tt.wantMessage {
				t.Errorf("message = %q, want %q", body["error"], tt.wantMessage)
			}
		})
	}
}
