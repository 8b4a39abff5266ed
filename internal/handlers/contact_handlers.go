package handlers

import (
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"

	"photofolio_api/internal/services"
)

type ContactHandler struct {
	email *services.EmailService
}

func NewContactHandler(email *services.EmailService) *ContactHandler {
	return &ContactHandler{email: email}
}

type contactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Post relays a contact-form submission to the studio inbox.
func (h *ContactHandler) Post(c echo.Context) error {
	var input contactInput
	if err := c.Bind(&input); err != nil {
		return services.NewValidationError("invalid JSON payload")
	}
	if input.Name == "" || input.Email == "" || input.Message == "" {
		return services.NewValidationError("name, email and message are required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return services.NewValidationError("invalid email address")
	}

	if err := h.email.SendContactEmail(input.Name, input.Email, input.Message); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Message sent successfully!",
	})
}
