package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"photofolio_api/internal/models"
	"photofolio_api/internal/services"
)

const packageListCacheKey = "packages:active"

type PackageHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewPackageHandler(db *gorm.DB, cache *services.RedisCache) *PackageHandler {
	return &PackageHandler{db: db, cache: cache}
}

// List returns active packages ordered by price, cheapest first. The public
// listing is cached briefly; admin writes invalidate it.
func (h *PackageHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	fetch := func() ([]models.Package, error) {
		var packages []models.Package
		err := h.db.WithContext(ctx).
			Where("active = ?", true).
			Order("total_price ASC").
			Find(&packages).Error
		return packages, err
	}

	var packages []models.Package
	var err error
	if h.cache != nil {
		packages, err = services.GetOrSet(h.cache, ctx, packageListCacheKey, 5*time.Minute, fetch)
	} else {
		packages, err = fetch()
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, packages)
}

func (h *PackageHandler) Show(c echo.Context) error {
	var pkg models.Package
	err := h.db.WithContext(c.Request().Context()).First(&pkg, "id = ?", c.Param("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return services.ErrPackageNotFound
		}
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

type packageInput struct {
	Name            string   `json:"name"`
	NamePt          *string  `json:"name_pt"`
	Description     *string  `json:"description"`
	DescriptionPt   *string  `json:"description_pt"`
	TotalPrice      *float64 `json:"total_price"`
	DepositPrice    *float64 `json:"deposit_price"`
	Active          *bool    `json:"active"`
	StripeProductID *string  `json:"stripe_product_id"`
}

func (h *PackageHandler) Create(c echo.Context) error {
	var input packageInput
	if err := c.Bind(&input); err != nil {
		return services.NewValidationError("invalid JSON payload")
	}
	if input.Name == "" || input.TotalPrice == nil || input.DepositPrice == nil {
		return services.NewValidationError("name, total_price and deposit_price are required")
	}
	if *input.DepositPrice > *input.TotalPrice {
		return services.NewValidationError("deposit_price cannot exceed total_price")
	}

	pkg := models.Package{
		Name:            input.Name,
		NamePt:          input.NamePt,
		Description:     input.Description,
		DescriptionPt:   input.DescriptionPt,
		TotalPrice:      *input.TotalPrice,
		DepositPrice:    *input.DepositPrice,
		Active:          true,
		StripeProductID: input.StripeProductID,
	}
	if err := h.db.WithContext(c.Request().Context()).Create(&pkg).Error; err != nil {
		return err
	}

	h.invalidateListing(c)
	return c.JSON(http.StatusCreated, pkg)
}

func (h *PackageHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var pkg models.Package
	if err := h.db.WithContext(ctx).First(&pkg, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return services.ErrPackageNotFound
		}
		return err
	}

	var input packageInput
	if err := c.Bind(&input); err != nil {
		return services.NewValidationError("invalid JSON payload")
	}

	if input.Name != "" {
		pkg.Name = input.Name
	}
	if input.NamePt != nil {
		pkg.NamePt = input.NamePt
	}
	if input.Description != nil {
		pkg.Description = input.Description
	}
	if input.DescriptionPt != nil {
		pkg.DescriptionPt = input.DescriptionPt
	}
	if input.TotalPrice != nil {
		pkg.TotalPrice = *input.TotalPrice
	}
	if input.DepositPrice != nil {
		pkg.DepositPrice = *input.DepositPrice
	}
	if input.Active != nil {
		pkg.Active = *input.Active
	}
	if input.StripeProductID != nil {
		pkg.StripeProductID = input.StripeProductID
	}
	if pkg.DepositPrice > pkg.TotalPrice {
		return services.NewValidationError("deposit_price cannot exceed total_price")
	}

	if err := h.db.WithContext(ctx).Save(&pkg).Error; err != nil {
		return err
	}

	h.invalidateListing(c)
	return c.JSON(http.StatusOK, pkg)
}

// Delete removes a package outright when nothing references it. As soon as a
// booking points at the package it is only deactivated, so historical
// bookings keep resolving their package.
func (h *PackageHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	var pkg models.Package
	if err := h.db.WithContext(ctx).First(&pkg, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return services.ErrPackageNotFound
		}
		return err
	}

	var referenced int64
	if err := h.db.WithContext(ctx).Model(&models.Booking{}).
		Where("package_id = ?", id).Count(&referenced).Error; err != nil {
		return err
	}

	if referenced > 0 {
		if err := h.db.WithContext(ctx).Model(&pkg).Update("active", false).Error; err != nil {
			return err
		}
	} else {
		if err := h.db.WithContext(ctx).Delete(&pkg).Error; err != nil {
			return err
		}
	}

	h.invalidateListing(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *PackageHandler) invalidateListing(c echo.Context) {
	if h.cache != nil {
		_ = h.cache.Delete(c.Request().Context(), packageListCacheKey)
	}
}
