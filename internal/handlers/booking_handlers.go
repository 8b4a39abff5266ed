package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"photofolio_api/internal/models"
	"photofolio_api/internal/services"
)

type BookingHandler struct {
	db       *gorm.DB
	checkout *services.CheckoutService
}

func NewBookingHandler(db *gorm.DB, checkout *services.CheckoutService) *BookingHandler {
	return &BookingHandler{db: db, checkout: checkout}
}

// List returns all bookings, newest first, with their package resolved.
func (h *BookingHandler) List(c echo.Context) error {
	var bookings []models.Booking
	err := h.db.WithContext(c.Request().Context()).
		Preload("Package").
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

// Confirm settles a manual booking: pending to paid, amount recomputed from
// the package when it was left at zero.
func (h *BookingHandler) Confirm(c echo.Context) error {
	booking, err := h.checkout.ConfirmBookingPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

// Delete hard-deletes a booking row. No cascading side effects.
func (h *BookingHandler) Delete(c echo.Context) error {
	result := h.db.WithContext(c.Request().Context()).
		Delete(&models.Booking{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrBookingNotFound
	}
	return c.NoContent(http.StatusNoContent)
}
