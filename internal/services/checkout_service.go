package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"photofolio_api/internal/models"
)

// Mailer is the notification surface the checkout flow needs. Implemented by
// EmailService; substituted in tests.
type Mailer interface {
	SendBookingConfirmation(d BookingEmailDetails) error
	SendAdminSaleNotification(d BookingEmailDetails) error
}

// CheckoutService computes amounts owed, opens payment sessions, records
// manual bookings and reconciles completed payments into booking rows.
type CheckoutService struct {
	db          *gorm.DB
	gateway     PaymentGateway
	mailer      Mailer
	frontendURL string
	currency    string
}

func NewCheckoutService(db *gorm.DB, gateway PaymentGateway, mailer Mailer, frontendURL, currency string) *CheckoutService {
	if currency == "" {
		currency = "gbp"
	}
	return &CheckoutService{
		db:          db,
		gateway:     gateway,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		currency:    currency,
	}
}

// ToMinorUnits converts a major-unit price to the smallest currency unit.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts a smallest-currency-unit amount back to major units.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}

// ComputeAmount resolves the amount owed for a package and payment type,
// in minor units, together with a human description in the request locale.
// Deposit and balance always sum exactly to the full price because the
// arithmetic happens on integer minor units.
func ComputeAmount(pkg *models.Package, paymentType models.PaymentType, locale string) (int64, string, error) {
	isPt := locale == "pt"
	name := pkg.LocalizedName(locale)

	totalMinor := ToMinorUnits(pkg.TotalPrice)
	depositMinor := ToMinorUnits(pkg.DepositPrice)

	var amount int64
	var description string

	switch paymentType {
	case models.PaymentTypeDeposit:
		amount = depositMinor
		if isPt {
			description = "Taxa de reserva (Não reembolsável): " + name
		} else {
			description = "Booking Fee (Non-refundable): " + name
		}
	case models.PaymentTypeFull:
		amount = totalMinor
		if isPt {
			description = "Pagamento total: " + name
		} else {
			description = "Full payment: " + name
		}
	case models.PaymentTypeBalance:
		amount = totalMinor - depositMinor
		if isPt {
			description = "Pagamento restante: " + name
		} else {
			description = "Remaining balance: " + name
		}
	default:
		return 0, "", NewValidationError("payment type must be DEPOSIT, FULL, or BALANCE")
	}

	if amount <= 0 {
		return 0, "", NewValidationError("invalid calculation: price must be greater than 0")
	}
	return amount, description, nil
}

// CheckoutRequest carries everything a hosted-checkout request needs,
// including the audit fields threaded through gateway metadata.
type CheckoutRequest struct {
	PackageID       string
	PaymentType     models.PaymentType
	Locale          string
	CustomerEmail   string
	SessionDate     string
	IdempotencyKey  string
	TermsAccepted   bool
	TermsAcceptedAt string
	ClientIP        string
	ClientUserAgent string
}

// CreateSession computes the amount owed and opens a hosted checkout session
// at the gateway. The returned URL is where the customer is redirected to pay.
func (s *CheckoutService) CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSessionResult, error) {
	if req.PackageID == "" || req.PaymentType == "" {
		return nil, NewValidationError("missing packageId or paymentType")
	}
	if !req.PaymentType.Valid() {
		return nil, NewValidationError("payment type must be DEPOSIT, FULL, or BALANCE")
	}
	locale := normalizeLocale(req.Locale)

	var pkg models.Package
	if err := s.db.WithContext(ctx).First(&pkg, "id = ?", req.PackageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	if !pkg.Active {
		return nil, ErrPackageInactive
	}

	amountMinor, description, err := ComputeAmount(&pkg, req.PaymentType, locale)
	if err != nil {
		return nil, err
	}

	name := pkg.LocalizedName(locale)
	productName := "Payment: " + name
	if locale == "pt" {
		productName = "Pagamento: " + name
	}

	meta := SessionMetadata{
		PackageID:       pkg.ID,
		PackageName:     name,
		PaymentType:     req.PaymentType,
		Locale:          locale,
		SessionDate:     req.SessionDate,
		TermsAccepted:   req.TermsAccepted,
		TermsAcceptedAt: req.TermsAcceptedAt,
		ClientIP:        req.ClientIP,
		ClientUserAgent: req.ClientUserAgent,
	}

	return s.gateway.CreateCheckoutSession(ctx, CheckoutSessionParams{
		AmountMinor:        amountMinor,
		Currency:           s.currency,
		ProductName:        productName,
		ProductDescription: description,
		PaymentType:        req.PaymentType,
		Metadata:           meta.ToMap(),
		SuccessURL:         fmt.Sprintf("%s/%s/checkout/success?session_id={CHECKOUT_SESSION_ID}", s.frontendURL, locale),
		CancelURL:          fmt.Sprintf("%s/%s/checkout/cancel", s.frontendURL, locale),
		CustomerEmail:      req.CustomerEmail,
		IdempotencyKey:     req.IdempotencyKey,
	})
}

// ManualBookingRequest describes a bank-transfer booking.
type ManualBookingRequest struct {
	PackageID     string
	PaymentType   models.PaymentType
	CustomerName  string
	CustomerEmail string
	Locale        string
	SessionDate   string
}

// CreateManualBooking records a pending bank-transfer booking. The booking's
// short reference is what the customer cites in their transfer; the amount is
// settled at admin confirmation time.
func (s *CheckoutService) CreateManualBooking(ctx context.Context, req ManualBookingRequest) (*models.Booking, error) {
	if req.PackageID == "" || req.CustomerEmail == "" || req.CustomerName == "" {
		return nil, NewValidationError("packageId, customerEmail and customerName are required")
	}
	if !req.PaymentType.Valid() {
		return nil, NewValidationError("payment type must be DEPOSIT, FULL, or BALANCE")
	}
	locale := normalizeLocale(req.Locale)

	var pkg models.Package
	if err := s.db.WithContext(ctx).First(&pkg, "id = ?", req.PackageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	if !pkg.Active {
		return nil, ErrPackageInactive
	}

	// A non-positive computed amount must never become a booking.
	if _, _, err := ComputeAmount(&pkg, req.PaymentType, locale); err != nil {
		return nil, err
	}

	method := models.PaymentMethodTransfer
	booking := models.Booking{
		PackageID:     &pkg.ID,
		CustomerName:  &req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		AmountPaid:    0,
		Currency:      s.currency,
		PaymentType:   req.PaymentType,
		Status:        models.BookingStatusPending,
		PaymentMethod: &method,
		Locale:        locale,
		SessionDate:   parseTimestamp(req.SessionDate),
	}
	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// ReconcileCompletedSession turns a verified payment-completion event into a
// paid booking row, exactly once per session. A persistence failure is logged
// and swallowed so the gateway gets its acknowledgment and stops retrying;
// the unique index on the session id makes redelivery harmless.
func (s *CheckoutService) ReconcileCompletedSession(ctx context.Context, sess *CompletedSession) error {
	meta := MetadataFromMap(sess.Metadata)

	paymentType := meta.PaymentType
	if paymentType == "" {
		paymentType = "UNKNOWN"
	}

	customerEmail := sess.CustomerEmail
	if customerEmail == "" {
		customerEmail = "unknown"
	}

	currency := sess.Currency
	if currency == "" {
		currency = s.currency
	}

	var packageID *string
	if meta.PackageID != "" {
		var pkg models.Package
		if err := s.db.WithContext(ctx).Select("id").First(&pkg, "id = ?", meta.PackageID).Error; err == nil {
			packageID = &pkg.ID
		}
	}

	method := models.PaymentMethodStripe
	sessionID := sess.SessionID
	booking := models.Booking{
		PackageID:       packageID,
		CustomerEmail:   customerEmail,
		AmountPaid:      FromMinorUnits(sess.AmountMinor),
		Currency:        currency,
		PaymentType:     paymentType,
		Status:          models.BookingStatusPaid,
		PaymentMethod:   &method,
		StripeSessionID: &sessionID,
		Locale:          meta.Locale,
		SessionDate:     parseTimestamp(meta.SessionDate),
		TermsAccepted:   meta.TermsAccepted,
		TermsAcceptedAt: parseTimestamp(meta.TermsAcceptedAt),
		ClientIP:        meta.ClientIP,
		ClientUserAgent: meta.ClientUserAgent,
	}
	if sess.CustomerName != "" {
		booking.CustomerName = &sess.CustomerName
	}

	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		// Duplicate session id or transient db failure: the event is still
		// acknowledged so the gateway does not retry-storm us.
		log.Printf("reconcile: failed to save booking for session %s: %v", sess.SessionID, err)
		return nil
	}

	receiptURL := ""
	if url, err := s.gateway.FetchReceiptURL(ctx, sess.PaymentIntentID); err != nil {
		log.Printf("reconcile: receipt lookup failed for session %s: %v", sess.SessionID, err)
	} else {
		receiptURL = url
	}

	packageName := meta.PackageName
	if packageName == "" && packageID != nil {
		var pkg models.Package
		if err := s.db.WithContext(ctx).First(&pkg, "id = ?", *packageID).Error; err == nil {
			packageName = pkg.LocalizedName(meta.Locale)
		}
	}
	if packageName == "" {
		packageName = "Custom Package"
	}

	details := BookingEmailDetails{
		CustomerName:  displayName(booking.CustomerName),
		CustomerEmail: customerEmail,
		Amount:        formatAmount(booking.AmountPaid, currency),
		PackageName:   packageName,
		PaymentType:   paymentType,
		Locale:        meta.Locale,
		Reference:     shortReference(sessionID),
		SessionDate:   meta.SessionDate,
		ReceiptURL:    receiptURL,
	}

	if customerEmail != "unknown" {
		if err := s.mailer.SendBookingConfirmation(details); err != nil {
			log.Printf("reconcile: confirmation email failed for session %s: %v", sess.SessionID, err)
		}
	}
	if err := s.mailer.SendAdminSaleNotification(details); err != nil {
		log.Printf("reconcile: admin notification failed for session %s: %v", sess.SessionID, err)
	}
	return nil
}

// ConfirmBookingPayment is the admin action that settles a manual booking.
// It is the only path out of the pending state. A zero amountPaid is
// recomputed from the package with the same rule table as ComputeAmount.
func (s *CheckoutService) ConfirmBookingPayment(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Package").First(&booking, "id = ?", bookingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if booking.Status == models.BookingStatusPaid {
		return nil, ErrAlreadyPaid
	}

	finalAmount := booking.AmountPaid
	if finalAmount == 0 && booking.Package != nil {
		minor, _, err := ComputeAmount(booking.Package, booking.PaymentType, booking.Locale)
		if err != nil {
			return nil, err
		}
		finalAmount = FromMinorUnits(minor)
	}

	updates := map[string]interface{}{
		"status":      models.BookingStatusPaid,
		"amount_paid": finalAmount,
	}
	if err := s.db.WithContext(ctx).Model(&booking).Updates(updates).Error; err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusPaid
	booking.AmountPaid = finalAmount

	if booking.CustomerEmail != "" && booking.CustomerEmail != "unknown" {
		packageName := "Custom Package"
		if booking.Package != nil {
			packageName = booking.Package.LocalizedName(booking.Locale)
		}
		reference := booking.Reference()
		if booking.StripeSessionID != nil {
			reference = shortReference(*booking.StripeSessionID)
		}
		sessionDate := ""
		if booking.SessionDate != nil {
			sessionDate = booking.SessionDate.Format(time.RFC3339)
		}
		details := BookingEmailDetails{
			CustomerName:  displayName(booking.CustomerName),
			CustomerEmail: booking.CustomerEmail,
			Amount:        formatAmount(finalAmount, booking.Currency),
			PackageName:   packageName,
			PaymentType:   booking.PaymentType,
			Locale:        booking.Locale,
			Reference:     reference,
			SessionDate:   sessionDate,
		}
		if err := s.mailer.SendBookingConfirmation(details); err != nil {
			log.Printf("confirm: confirmation email failed for booking %s: %v", booking.ID, err)
		}
	}

	return &booking, nil
}

func normalizeLocale(locale string) string {
	if locale == "pt" {
		return "pt"
	}
	return "en"
}

// parseTimestamp accepts RFC 3339 or a bare date; anything else yields nil.
func parseTimestamp(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}

func displayName(name *string) string {
	if name == nil || *name == "" {
		return "Client"
	}
	return *name
}

func shortReference(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID
	}
	return sessionID[len(sessionID)-8:]
}

func formatAmount(amount float64, currency string) string {
	symbol := strings.ToUpper(currency) + " "
	switch strings.ToLower(currency) {
	case "gbp":
		symbol = "£"
	case "eur":
		symbol = "€"
	case "usd":
		symbol = "$"
	}
	return fmt.Sprintf("%s%.2f", symbol, amount)
}
