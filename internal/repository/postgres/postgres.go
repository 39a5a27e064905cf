package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/salonhq/salon-api/internal/repository"
)

type catalogRepository struct {
	db *sqlx.DB
}

type priceHistoryRepository struct {
	db *sqlx.DB
}

type bookingRepository struct {
	db *sqlx.DB
}

type billRepository struct {
	db *sqlx.DB
}

type couponRepository struct {
	db *sqlx.DB
}

type staffRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func NewPriceHistoryRepository(db *sqlx.DB) repository.PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

func NewBookingRepository(db *sqlx.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func NewBillRepository(db *sqlx.DB) repository.BillRepository {
	return &billRepository{db: db}
}

func NewCouponRepository(db *sqlx.DB) repository.CouponRepository {
	return &couponRepository{db: db}
}

func NewStaffRepository(db *sqlx.DB) repository.StaffRepository {
	return &staffRepository{db: db}
}
