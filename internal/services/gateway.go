package services

import (
	"context"
	"errors"

	"photofolio_api/internal/models"
)

// ErrInvalidSignature is returned when a webhook payload fails signature
// verification against the shared secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// CheckoutSessionParams describes a hosted checkout session to be opened at
// the payment processor. All amounts crossing this boundary are in the
// smallest currency unit.
type CheckoutSessionParams struct {
	AmountMinor        int64
	Currency           string
	ProductName        string
	ProductDescription string
	PaymentType        models.PaymentType
	Metadata           map[string]string
	SuccessURL         string
	CancelURL          string
	CustomerEmail      string
	IdempotencyKey     string
}

// CheckoutSessionResult is the processor's handle for a created session.
type CheckoutSessionResult struct {
	SessionID string
	URL       string
}

// CompletedSession is a processor-neutral view of a payment-completion
// event. Metadata is the envelope handed over at session creation.
type CompletedSession struct {
	SessionID       string
	PaymentIntentID string
	AmountMinor     int64
	Currency        string
	CustomerEmail   string
	CustomerName    string
	Metadata        map[string]string
}

// PaymentGateway wraps the external payment processor. The checkout service
// depends on this interface so tests can substitute a double.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSessionResult, error)

	// VerifyAndParseEvent checks the payload signature and extracts the
	// completed session. Events of other types yield (nil, nil).
	VerifyAndParseEvent(payload []byte, sigHeader string) (*CompletedSession, error)

	// FetchReceiptURL looks up the hosted receipt for a payment. Best
	// effort: callers must tolerate an empty URL or an error.
	FetchReceiptURL(ctx context.Context, paymentRef string) (string, error)
}
