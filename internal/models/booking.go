package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentType describes which slice of the package price a payment covers.
type PaymentType string

const (
	PaymentTypeDeposit PaymentType = "DEPOSIT"
	PaymentTypeFull    PaymentType = "FULL"
	PaymentTypeBalance PaymentType = "BALANCE"
)

// Valid reports whether t is one of the three known payment types.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeDeposit, PaymentTypeFull, PaymentTypeBalance:
		return true
	}
	return false
}

// PaymentMethod records how a booking was paid. Rows created before the
// column existed have a NULL method.
type PaymentMethod string

const (
	PaymentMethodStripe   PaymentMethod = "STRIPE"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// BookingStatus is the payment lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending BookingStatus = "pending"
	BookingStatusPaid    BookingStatus = "paid"
)

// Booking is a customer's commitment to a package. Stripe-paid bookings are
// created directly in the paid state by the webhook handler; bank-transfer
// bookings start pending and are confirmed by an admin.
type Booking struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PackageID *string  `gorm:"type:uuid;index" json:"package_id"`
	Package   *Package `gorm:"foreignKey:PackageID" json:"package,omitempty"`

	CustomerName  *string `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerEmail string  `gorm:"type:varchar(255)" json:"customer_email"`

	// AmountPaid is authoritative: it is written once at payment time and
	// never re-derived from the package on reads.
	AmountPaid  float64       `gorm:"type:decimal(15,2)" json:"amount_paid"`
	Currency    string        `gorm:"type:varchar(10);default:'gbp'" json:"currency"`
	PaymentType PaymentType   `gorm:"type:varchar(20)" json:"payment_type"`
	Status      BookingStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	PaymentMethod *PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`

	// StripeSessionID is the natural dedup key for webhook reconciliation:
	// the unique index guarantees at most one booking per completed session.
	StripeSessionID *string `gorm:"type:varchar(255);uniqueIndex" json:"stripe_session_id"`

	Locale string `gorm:"type:varchar(5);default:'en'" json:"locale"`

	// SessionDate is the date of the photography session itself, not the
	// booking creation time.
	SessionDate *time.Time `json:"session_date"`

	TermsAccepted   bool       `gorm:"default:false" json:"terms_accepted"`
	TermsAcceptedAt *time.Time `json:"terms_accepted_at"`
	ClientIP        string     `gorm:"type:varchar(64)" json:"client_ip"`
	ClientUserAgent string     `gorm:"type:varchar(512)" json:"client_user_agent"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Reference is the short code a customer cites in a bank transfer.
func (b Booking) Reference() string {
	if len(b.ID) < 8 {
		return strings.ToUpper(b.ID)
	}
	return strings.ToUpper(b.ID[:8])
}
