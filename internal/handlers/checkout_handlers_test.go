package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"photofolio_api/internal/middleware"
	"photofolio_api/internal/models"
	"photofolio_api/internal/services"
)

func newWebhookServer(deps *echoWebhookDeps) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.JSONErrorHandler
	h := NewCheckoutHandler(deps.checkout, deps.gateway)
	e.POST("/api/webhooks/stripe", h.HandleStripeWebhook)
	e.POST("/api/checkout/session", h.CreateSession)
	e.POST("/api/checkout/manual-booking", h.CreateManual)
	return e
}

type echoWebhookDeps struct {
	checkout *services.CheckoutService
	gateway  *fakeGateway
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{}
	deps := &echoWebhookDeps{
		checkout: services.NewCheckoutService(db, gateway, &fakeMailer{}, "https://studio.example.com", "gbp"),
		gateway:  gateway,
	}
	e := newWebhookServer(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{parseErr: services.ErrInvalidSignature}
	deps := &echoWebhookDeps{
		checkout: services.NewCheckoutService(db, gateway, &fakeMailer{}, "https://studio.example.com", "gbp"),
		gateway:  gateway,
	}
	e := newWebhookServer(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=bogus")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	var count int64
	db.Model(&models.Booking{}).Count(&count)
	if count != 0 {
		t.Errorf("bookings = %d, want 0 after rejected event", count)
	}
}

func TestWebhookAcknowledgesUnhandledEvent(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{} // parses to (nil, nil): not a completion event
	deps := &echoWebhookDeps{
		checkout: services.NewCheckoutService(db, gateway, &fakeMailer{}, "https://studio.example.com", "gbp"),
		gateway:  gateway,
	}
	e := newWebhookServer(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var count int64
	db.Model(&models.Booking{}).Count(&count)
	if count != 0 {
		t.Errorf("bookings = %d, want 0", count)
	}
}

func TestWebhookPersistsCompletedSession(t *testing.T) {
	db := newTestDB(t)

	pkg := models.Package{Name: "Family Session", TotalPrice: 300, DepositPrice: 50, Active: true}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("seed package: %v", err)
	}

	meta := services.SessionMetadata{
		PackageID:   pkg.ID,
		PackageName: pkg.Name,
		PaymentType: models.PaymentTypeDeposit,
		Locale:      "en",
	}
	gateway := &fakeGateway{
		parseResult: &services.CompletedSession{
			SessionID:     "cs_live_hookhook",
			AmountMinor:   5000,
			Currency:      "gbp",
			CustomerEmail: "ana@example.com",
			Metadata:      meta.ToMap(),
		},
	}
	mailer := &fakeMailer{}
	deps := &echoWebhookDeps{
		checkout: services.NewCheckoutService(db, gateway, mailer, "https://studio.example.com", "gbp"),
		gateway:  gateway,
	}
	e := newWebhookServer(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var booking models.Booking
	if err := db.First(&booking, "stripe_session_id = ?", "cs_live_hookhook").Error; err != nil {
		t.Fatalf("booking not persisted: %v", err)
	}
	if booking.Status != models.BookingStatusPaid {
		t.Errorf("status = %q, want paid", booking.Status)
	}
	if booking.AmountPaid != 50 {
		t.Errorf("amount = %v, want 50", booking.AmountPaid)
	}
	if mailer.confirmations != 1 || mailer.adminNotices != 1 {
		t.Errorf("emails = %d/%d, want 1 confirmation and 1 admin notice", mailer.confirmations, mailer.adminNotices)
	}
}

func TestCreateSessionEndpoint(t *testing.T) {
	db := newTestDB(t)
	pkg := models.Package{Name: "Family Session", TotalPrice: 300, DepositPrice: 50, Active: true}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("seed package: %v", err)
	}

	gateway := &fakeGateway{}
	deps := &echoWebhookDeps{
		checkout: services.NewCheckoutService(db, gateway, &fakeMailer{}, "https://studio.example.com", "gbp"),
		gateway:  gateway,
	}
	e := newWebhookServer(deps)

	body := `{"packageId":"` + pkg.ID + `","paymentType":"DEPOSIT","locale":"en","customerEmail":"ana@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/session", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["url"] == "" {
		t.Errorf("response %v missing redirect url", resp)
	}
}

func TestCreateSessionEndpointValidation(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{}
	deps := &echoWebhookDeps{
		checkout: services.NewCheckoutService(db, gateway, &fakeMailer{}, "https://studio.example.com", "gbp"),
		gateway:  gateway,
	}
	e := newWebhookServer(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/session", strings.NewReader(`{"locale":"en"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp["error"], "packageId") {
		t.Errorf("error = %q, want the missing-field message verbatim", resp["error"])
	}
}

func TestManualBookingEndpoint(t *testing.T) {
	db := newTestDB(t)
	pkg := models.Package{Name: "Family Session", TotalPrice: 300, DepositPrice: 50, Active: true}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("seed package: %v", err)
	}

	gateway := &fakeGateway{}
	deps := &echoWebhookDeps{
		checkout: services.NewCheckoutService(db, gateway, &fakeMailer{}, "https://studio.example.com", "gbp"),
		gateway:  gateway,
	}
	e := newWebhookServer(deps)

	body := `{"packageId":"` + pkg.ID + `","paymentType":"FULL","customerName":"Ana Silva","customerEmail":"ana@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/manual-booking", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success   bool   `json:"success"`
		BookingID string `json:"bookingId"`
		Reference string `json:"reference"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.BookingID == "" || len(resp.Reference) != 8 {
		t.Errorf("response = %+v", resp)
	}

	var booking models.Booking
	if err := db.First(&booking, "id = ?", resp.BookingID).Error; err != nil {
		t.Fatalf("booking not persisted: %v", err)
	}
	if booking.Status != models.BookingStatusPending {
		t.Errorf("status = %q, want pending", booking.Status)
	}
}
