package handlers

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"photofolio_api/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := services.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeGateway plays back a configured webhook parse result.
type fakeGateway struct {
	parseResult *services.CompletedSession
	parseErr    error
	receiptURL  string
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, p services.CheckoutSessionParams) (*services.CheckoutSessionResult, error) {
	return &services.CheckoutSessionResult{
		SessionID: "cs_test_123",
		URL:       "https://checkout.example.test/cs_test_123",
	}, nil
}

func (f *fakeGateway) VerifyAndParseEvent(payload []byte, sigHeader string) (*services.CompletedSession, error) {
	return f.parseResult, f.parseErr
}

func (f *fakeGateway) FetchReceiptURL(ctx context.Context, paymentRef string) (string, error) {
	return f.receiptURL, nil
}

type fakeMailer struct {
	confirmations int
	adminNotices  int
}

func (f *fakeMailer) SendBookingConfirmation(d services.BookingEmailDetails) error {
	f.confirmations++
	return nil
}

func (f *fakeMailer) SendAdminSaleNotification(d services.BookingEmailDetails) error {
	f.adminNotices++
	return nil
}
