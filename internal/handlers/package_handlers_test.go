package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"photofolio_api/internal/models"
	"photofolio_api/internal/services"
)

func TestPackageDeleteWithoutBookings(t *testing.T) {
	db := newTestDB(t)
	h := NewPackageHandler(db, nil)

	pkg := models.Package{Name: "Mini Session", TotalPrice: 80, DepositPrice: 20, Active: true}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(pkg.ID)

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	err := db.First(&models.Package{}, "id = ?", pkg.ID).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("lookup after delete = %v, want record not found", err)
	}
}

func TestPackageDeleteWithBookingsDeactivates(t *testing.T) {
	db := newTestDB(t)
	h := NewPackageHandler(db, nil)

	pkg := models.Package{Name: "Family Session", TotalPrice: 300, DepositPrice: 50, Active: true}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("seed package: %v", err)
	}
	booking := models.Booking{
		PackageID:     &pkg.ID,
		CustomerEmail: "ana@example.com",
		AmountPaid:    50,
		PaymentType:   models.PaymentTypeDeposit,
		Status:        models.BookingStatusPaid,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(pkg.ID)

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	var kept models.Package
	if err := db.First(&kept, "id = ?", pkg.ID).Error; err != nil {
		t.Fatalf("package was hard-deleted despite bookings: %v", err)
	}
	if kept.Active {
		t.Error("package still active, want deactivated")
	}

	// The historical booking must still resolve its package.
	var reloaded models.Booking
	if err := db.Preload("Package").First(&reloaded, "id = ?", booking.ID).Error; err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if reloaded.Package == nil || reloaded.Package.Name != "Family Session" {
		t.Errorf("booking package = %+v, want Family Session", reloaded.Package)
	}
}

func TestPackageActiveFlagPersists(t *testing.T) {
	db := newTestDB(t)

	retired := models.Package{Name: "Retired", TotalPrice: 300, DepositPrice: 50, Active: false}
	if err := db.Create(&retired).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	var reloaded models.Package
	if err := db.First(&reloaded, "id = ?", retired.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Active {
		t.Error("package created inactive was read back active")
	}
}

func TestPackageListExcludesInactive(t *testing.T) {
	db := newTestDB(t)
	h := NewPackageHandler(db, nil)

	active := models.Package{Name: "Mini Session", TotalPrice: 80, DepositPrice: 20, Active: true}
	retired := models.Package{Name: "Retired", TotalPrice: 300, DepositPrice: 50, Active: false}
	if err := db.Create(&active).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&retired).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	var listed []models.Package
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "Mini Session" {
		t.Errorf("listing = %+v, want only the active package", listed)
	}
}

func TestPackageListOrdersByPrice(t *testing.T) {
	db := newTestDB(t)
	h := NewPackageHandler(db, nil)

	for _, p := range []models.Package{
		{Name: "Wedding", TotalPrice: 1000, DepositPrice: 200, Active: true},
		{Name: "Mini Session", TotalPrice: 80, DepositPrice: 20, Active: true},
		{Name: "Family Session", TotalPrice: 300, DepositPrice: 50, Active: true},
	} {
		pkg := p
		if err := db.Create(&pkg).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	var listed []models.Package
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"Mini Session", "Family Session", "Wedding"}
	if len(listed) != len(want) {
		t.Fatalf("listing length = %d, want %d", len(listed), len(want))
	}
	for i, name := range want {
		if listed[i].Name != name {
			t.Errorf("listing[%d] = %q, want %q", i, listed[i].Name, name)
		}
	}
}

func TestPackageCreateValidation(t *testing.T) {
	db := newTestDB(t)
	h := NewPackageHandler(db, nil)
	e := echo.New()

	tests := []struct {
		name string
		body string
	}{
		{"missing prices", `{"name":"Broken"}`},
		{"deposit above total", `{"name":"Broken","total_price":100,"deposit_price":150}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.Create(c)
			var verr *services.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}
