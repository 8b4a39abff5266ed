package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"photofolio_api/internal/services"
)

// JSONErrorHandler maps domain errors from the service layer onto JSON error
// responses. Validation messages are surfaced verbatim; everything else gets
// a generic message with the detail logged server-side only.
func JSONErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "something went wrong, please try again later"

	var validationErr *services.ValidationError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &validationErr):
		code = http.StatusBadRequest
		message = validationErr.Msg
	case errors.Is(err, services.ErrPackageNotFound),
		errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrPostNotFound):
		code = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrAlreadyPaid):
		code = http.StatusConflict
		message = err.Error()
	case errors.Is(err, services.ErrPackageInactive):
		code = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrInvalidSignature):
		code = http.StatusBadRequest
		message = "webhook signature verification failed"
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	if jsonErr := c.JSON(code, map[string]string{"error": message}); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}
