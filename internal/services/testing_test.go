package services

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeGateway records the parameters it was called with and plays back
// configured results.
type fakeGateway struct {
	lastParams  *CheckoutSessionParams
	createErr   error
	result      *CheckoutSessionResult
	parseResult *CompletedSession
	parseErr    error
	receiptURL  string
	receiptErr  error
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (*CheckoutSessionResult, error) {
	f.lastParams = &p
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &CheckoutSessionResult{
		SessionID: "cs_test_123",
		URL:       "https://checkout.example.test/cs_test_123",
	}, nil
}

func (f *fakeGateway) VerifyAndParseEvent(payload []byte, sigHeader string) (*CompletedSession, error) {
	return f.parseResult, f.parseErr
}

func (f *fakeGateway) FetchReceiptURL(ctx context.Context, paymentRef string) (string, error) {
	return f.receiptURL, f.receiptErr
}

// fakeMailer counts notification calls.
type fakeMailer struct {
	confirmations []BookingEmailDetails
	adminNotices  []BookingEmailDetails
}

func (f *fakeMailer) SendBookingConfirmation(d BookingEmailDetails) error {
	f.confirmations = append(f.confirmations, d)
	return nil
}

func (f *fakeMailer) SendAdminSaleNotification(d BookingEmailDetails) error {
	f.adminNotices = append(f.adminNotices, d)
	return nil
}
