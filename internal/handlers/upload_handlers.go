package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"photofolio_api/internal/services"
)

type UploadHandler struct {
	storage *services.StorageService
}

func NewUploadHandler(storage *services.StorageService) *UploadHandler {
	return &UploadHandler{storage: storage}
}

type signUploadInput struct {
	Pathname    string `json:"pathname"`
	ContentType string `json:"contentType"`
}

// Sign issues a short-lived signed PUT URL so the admin client uploads image
// bytes straight to the bucket.
func (h *UploadHandler) Sign(c echo.Context) error {
	if h.storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "uploads are not configured")
	}

	var input signUploadInput
	if err := c.Bind(&input); err != nil {
		return services.NewValidationError("invalid JSON payload")
	}
	if input.Pathname == "" || input.ContentType == "" {
		return services.NewValidationError("pathname and contentType are required")
	}

	signed, err := h.storage.SignUpload(input.Pathname, input.ContentType)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signed)
}
