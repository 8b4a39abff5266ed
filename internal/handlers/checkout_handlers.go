package handlers

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"photofolio_api/internal/models"
	"photofolio_api/internal/services"
)

type CheckoutHandler struct {
	checkout *services.CheckoutService
	gateway  services.PaymentGateway
}

func NewCheckoutHandler(checkout *services.CheckoutService, gateway services.PaymentGateway) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, gateway: gateway}
}

type checkoutSessionInput struct {
	PackageID     string `json:"packageId"`
	PaymentType   string `json:"paymentType"`
	Locale        string `json:"locale"`
	CustomerEmail string `json:"customerEmail"`
	SessionDate   string `json:"sessionDate"`
	TermsAccepted bool   `json:"termsAccepted"`
}

// CreateSession opens a hosted checkout session and returns the redirect
// URL. An Idempotency-Key header is forwarded to the gateway so browser
// retries resolve to the same session.
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	var input checkoutSessionInput
	if err := c.Bind(&input); err != nil {
		return services.NewValidationError("invalid JSON payload")
	}

	termsAcceptedAt := ""
	if input.TermsAccepted {
		termsAcceptedAt = time.Now().UTC().Format(time.RFC3339)
	}

	result, err := h.checkout.CreateSession(c.Request().Context(), services.CheckoutRequest{
		PackageID:       input.PackageID,
		PaymentType:     models.PaymentType(input.PaymentType),
		Locale:          input.Locale,
		CustomerEmail:   input.CustomerEmail,
		SessionDate:     input.SessionDate,
		IdempotencyKey:  c.Request().Header.Get("Idempotency-Key"),
		TermsAccepted:   input.TermsAccepted,
		TermsAcceptedAt: termsAcceptedAt,
		ClientIP:        c.RealIP(),
		ClientUserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"url": result.URL})
}

type manualBookingInput struct {
	PackageID     string `json:"packageId"`
	PaymentType   string `json:"paymentType"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	Locale        string `json:"locale"`
	SessionDate   string `json:"sessionDate"`
}

// CreateManual records a pending bank-transfer booking and returns the short
// reference the customer cites in their transfer.
func (h *CheckoutHandler) CreateManual(c echo.Context) error {
	var input manualBookingInput
	if err := c.Bind(&input); err != nil {
		return services.NewValidationError("invalid JSON payload")
	}

	booking, err := h.checkout.CreateManualBooking(c.Request().Context(), services.ManualBookingRequest{
		PackageID:     input.PackageID,
		PaymentType:   models.PaymentType(input.PaymentType),
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		Locale:        input.Locale,
		SessionDate:   input.SessionDate,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"bookingId": booking.ID,
		"reference": booking.Reference(),
	})
}

// HandleStripeWebhook receives payment-completion events. Once the signature
// verifies, the response is always 200 regardless of downstream persistence,
// so the gateway stops redelivering.
func (h *CheckoutHandler) HandleStripeWebhook(c echo.Context) error {
	signature := c.Request().Header.Get("Stripe-Signature")
	if signature == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing Stripe signature")
	}

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read request body")
	}

	completed, err := h.gateway.VerifyAndParseEvent(payload, signature)
	if err != nil {
		return err
	}
	if completed == nil {
		// An event type we do not act on; acknowledge it.
		return c.NoContent(http.StatusOK)
	}

	log.Printf("payment succeeded: session %s", completed.SessionID)
	if err := h.checkout.ReconcileCompletedSession(c.Request().Context(), completed); err != nil {
		log.Printf("webhook: reconcile failed for session %s: %v", completed.SessionID, err)
	}
	return c.NoContent(http.StatusOK)
}
