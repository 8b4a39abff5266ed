package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"photofolio_api/internal/models"
)

// DashboardService derives revenue and booking statistics from the booking
// store. Everything is recomputed per call; nothing here is cached.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type RevenueStats struct {
	Total float64 `json:"total"`
	Month float64 `json:"month"`
}

type CountStats struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Paid    int64 `json:"paid"`
}

// MethodStats breaks bookings down by payment method. Rows with neither a
// method nor a session id predate the paymentMethod column and cannot be
// classified reliably, so they are reported as Legacy instead of being
// assumed to be transfers.
type MethodStats struct {
	Stripe   int64 `json:"stripe"`
	Transfer int64 `json:"transfer"`
	Legacy   int64 `json:"legacy"`
}

type TypeStats struct {
	Deposit int64 `json:"deposit"`
	Full    int64 `json:"full"`
	Balance int64 `json:"balance"`
}

type SessionStats struct {
	Scheduled   int64 `json:"scheduled"`
	Completed   int64 `json:"completed"`
	Unscheduled int64 `json:"unscheduled"`
}

type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type TopClient struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Total float64 `json:"total"`
}

type TopPackage struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type StuckPackage struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type DashboardStats struct {
	Revenue       RevenueStats   `json:"revenue"`
	Counts        CountStats     `json:"counts"`
	Methods       MethodStats    `json:"methods"`
	Types         TypeStats      `json:"types"`
	Sessions      SessionStats   `json:"sessions"`
	SalesHistory  []MonthRevenue `json:"salesHistory"`
	TopClients    []TopClient    `json:"topClients"`
	TopPackages   []TopPackage   `json:"topPackages"`
	StuckPackages []StuckPackage `json:"stuckPackages"`
}

// GetStats computes the full dashboard payload from current state.
func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	now := time.Now()
	stats := &DashboardStats{}

	// Revenue, all time and current month. Month windows anchor on day 1 so
	// month arithmetic never overflows across months of different lengths.
	if err := db.Model(&models.Booking{}).Where("status = ?", models.BookingStatusPaid).
		Select("COALESCE(SUM(amount_paid), 0)").Scan(&stats.Revenue.Total).Error; err != nil {
		return nil, err
	}
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err := db.Model(&models.Booking{}).
		Where("status = ? AND created_at >= ?", models.BookingStatusPaid, startOfMonth).
		Select("COALESCE(SUM(amount_paid), 0)").Scan(&stats.Revenue.Month).Error; err != nil {
		return nil, err
	}

	// Booking counts by status.
	if err := db.Model(&models.Booking{}).Count(&stats.Counts.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Booking{}).Where("status = ?", models.BookingStatusPending).Count(&stats.Counts.Pending).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Booking{}).Where("status = ?", models.BookingStatusPaid).Count(&stats.Counts.Paid).Error; err != nil {
		return nil, err
	}

	// Payment method breakdown. A NULL method with a session id present is
	// still a gateway payment (the column arrived later than the flow).
	if err := db.Model(&models.Booking{}).
		Where("payment_method = ? OR (payment_method IS NULL AND stripe_session_id IS NOT NULL)", models.PaymentMethodStripe).
		Count(&stats.Methods.Stripe).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Booking{}).
		Where("payment_method = ?", models.PaymentMethodTransfer).
		Count(&stats.Methods.Transfer).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Booking{}).
		Where("payment_method IS NULL AND stripe_session_id IS NULL").
		Count(&stats.Methods.Legacy).Error; err != nil {
		return nil, err
	}

	// Payment type breakdown.
	for _, bucket := range []struct {
		paymentType models.PaymentType
		dest        *int64
	}{
		{models.PaymentTypeDeposit, &stats.Types.Deposit},
		{models.PaymentTypeFull, &stats.Types.Full},
		{models.PaymentTypeBalance, &stats.Types.Balance},
	} {
		if err := db.Model(&models.Booking{}).
			Where("payment_type = ?", bucket.paymentType).
			Count(bucket.dest).Error; err != nil {
			return nil, err
		}
	}

	// Session scheduling, paid bookings only.
	if err := db.Model(&models.Booking{}).
		Where("status = ? AND session_date > ?", models.BookingStatusPaid, now).
		Count(&stats.Sessions.Scheduled).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Booking{}).
		Where("status = ? AND session_date < ?", models.BookingStatusPaid, now).
		Count(&stats.Sessions.Completed).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Booking{}).
		Where("status = ? AND session_date IS NULL", models.BookingStatusPaid).
		Count(&stats.Sessions.Unscheduled).Error; err != nil {
		return nil, err
	}

	// Trailing 6-month revenue series, bucketed by calendar month.
	stats.SalesHistory = make([]MonthRevenue, 0, 6)
	for i := 5; i >= 0; i-- {
		start := startOfMonth.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		var revenue float64
		if err := db.Model(&models.Booking{}).
			Where("status = ? AND created_at >= ? AND created_at < ?", models.BookingStatusPaid, start, end).
			Select("COALESCE(SUM(amount_paid), 0)").Scan(&revenue).Error; err != nil {
			return nil, err
		}
		stats.SalesHistory = append(stats.SalesHistory, MonthRevenue{
			Month:   start.Format("Jan"),
			Revenue: revenue,
		})
	}

	// Top clients by total paid.
	type clientRow struct {
		CustomerEmail string
		CustomerName  *string
		Total         float64
	}
	var clients []clientRow
	if err := db.Model(&models.Booking{}).
		Select("customer_email, customer_name, SUM(amount_paid) AS total").
		Where("status = ?", models.BookingStatusPaid).
		Group("customer_email, customer_name").
		Order("total DESC").
		Limit(5).
		Scan(&clients).Error; err != nil {
		return nil, err
	}
	stats.TopClients = make([]TopClient, 0, len(clients))
	for _, c := range clients {
		name := "Unknown"
		if c.CustomerName != nil && *c.CustomerName != "" {
			name = *c.CustomerName
		}
		stats.TopClients = append(stats.TopClients, TopClient{Name: name, Email: c.CustomerEmail, Total: c.Total})
	}

	// Top packages by paid initial sales. Only DEPOSIT and FULL count so a
	// later BALANCE payment never increments the same booking twice.
	type packageRow struct {
		PackageID *string
		Count     int64
	}
	var pkgRows []packageRow
	if err := db.Model(&models.Booking{}).
		Select("package_id, COUNT(id) AS count").
		Where("status = ? AND payment_type IN ?", models.BookingStatusPaid,
			[]models.PaymentType{models.PaymentTypeDeposit, models.PaymentTypeFull}).
		Group("package_id").
		Order("count DESC").
		Limit(5).
		Scan(&pkgRows).Error; err != nil {
		return nil, err
	}
	stats.TopPackages = make([]TopPackage, 0, len(pkgRows))
	for _, row := range pkgRows {
		name := "Custom Package"
		if row.PackageID != nil {
			var pkg models.Package
			if err := db.Select("name").First(&pkg, "id = ?", *row.PackageID).Error; err == nil {
				name = pkg.Name
			}
		}
		stats.TopPackages = append(stats.TopPackages, TopPackage{Name: name, Count: row.Count})
	}

	// Active packages with no bookings in the last 90 days.
	ninetyDaysAgo := now.AddDate(0, 0, -90)
	var stuck []models.Package
	if err := db.Model(&models.Package{}).
		Where("active = ?", true).
		Where("id NOT IN (?)", db.Model(&models.Booking{}).
			Select("package_id").
			Where("created_at >= ? AND package_id IS NOT NULL", ninetyDaysAgo)).
		Limit(5).
		Find(&stuck).Error; err != nil {
		return nil, err
	}
	stats.StuckPackages = make([]StuckPackage, 0, len(stuck))
	for _, p := range stuck {
		stats.StuckPackages = append(stats.StuckPackages, StuckPackage{Name: p.Name, Price: p.TotalPrice})
	}

	return stats, nil
}
