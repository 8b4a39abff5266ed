package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Package represents a purchasable photography-session pricing tier.
// Inactive packages are hidden from the public listing but kept so that
// historical bookings can still resolve their package.
type Package struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name          string  `gorm:"type:varchar(255);not null" json:"name"`
	NamePt        *string `gorm:"type:varchar(255)" json:"name_pt,omitempty"`
	Description   *string `gorm:"type:text" json:"description,omitempty"`
	DescriptionPt *string `gorm:"type:text" json:"description_pt,omitempty"`
	TotalPrice    float64 `gorm:"type:decimal(15,2);not null" json:"total_price"`
	DepositPrice  float64 `gorm:"type:decimal(15,2);not null" json:"deposit_price"`

	// No column default here: gorm would skip a false value on insert and
	// the database default would resurrect the package as active. Creation
	// sites set the flag explicitly instead.
	Active          bool    `json:"active"`
	StripeProductID *string `gorm:"type:varchar(255)" json:"stripe_product_id,omitempty"`

	// Relationships
	Bookings []Booking `gorm:"foreignKey:PackageID" json:"bookings,omitempty"`
}

func (p *Package) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// LocalizedName returns the Portuguese variant when the locale asks for it
// and a translation exists, otherwise the default name.
func (p Package) LocalizedName(locale string) string {
	if locale == "pt" && p.NamePt != nil && *p.NamePt != "" {
		return *p.NamePt
	}
	return p.Name
}
