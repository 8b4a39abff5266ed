package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/webhook"

	"photofolio_api/internal/models"
)

// StripeService implements PaymentGateway on top of the Stripe API.
type StripeService struct {
	webhookSecret string
}

func NewStripeService() *StripeService {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	return &StripeService{
		webhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}
}

// CreateCheckoutSession opens a hosted checkout session. The booking fee
// (DEPOSIT) is non-refundable and must be paid immediately by card, so
// installment and wallet methods are offered only for FULL/BALANCE.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (*CheckoutSessionResult, error) {
	if stripe.Key == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is not configured")
	}

	methods := []string{"card", "klarna", "afterpay_clearpay"}
	if p.PaymentType == models.PaymentTypeDeposit {
		methods = []string{"card"}
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice(methods),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.ProductName),
						Description: stripe.String(p.ProductDescription),
						Metadata: map[string]string{
							"packageId": p.Metadata["packageId"],
						},
					},
					UnitAmount: stripe.Int64(p.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		// Copy the envelope onto the payment intent as well, so it is
		// visible from the charge in the Stripe dashboard.
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: p.Metadata,
		},
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}

	return &CheckoutSessionResult{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

// VerifyAndParseEvent checks the Stripe-Signature header against the webhook
// secret and extracts the completed checkout session, if any.
func (s *StripeService) VerifyAndParseEvent(payload []byte, sigHeader string) (*CompletedSession, error) {
	if s.webhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is not configured")
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("parse checkout session from event: %w", err)
	}

	completed := &CompletedSession{
		SessionID:   sess.ID,
		AmountMinor: sess.AmountTotal,
		Currency:    string(sess.Currency),
		Metadata:    sess.Metadata,
	}
	if sess.PaymentIntent != nil {
		completed.PaymentIntentID = sess.PaymentIntent.ID
	}
	if sess.CustomerDetails != nil {
		completed.CustomerEmail = sess.CustomerDetails.Email
		completed.CustomerName = sess.CustomerDetails.Name
	}
	return completed, nil
}

// FetchReceiptURL resolves the hosted receipt for a payment intent.
func (s *StripeService) FetchReceiptURL(ctx context.Context, paymentRef string) (string, error) {
	if paymentRef == "" {
		return "", nil
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := paymentintent.Get(paymentRef, params)
	if err != nil {
		return "", fmt.Errorf("stripe fetch payment intent: %w", err)
	}
	if pi.LatestCharge == nil {
		return "", nil
	}
	return pi.LatestCharge.ReceiptURL, nil
}
