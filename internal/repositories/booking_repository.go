package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intconfig "easyrent/internal/config"
	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Create inserts a booking for userID and returns the new id.
func (r BookingRepository) Create(ctx context.Context, userID int64, in models.BookingInput, from, to time.Time) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, fmt.Errorf("db not available")
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO bookings (
			user_id, vehicle_id,
			pickup_lat, pickup_lng, pickup_label,
			drop_lat, drop_lng, drop_label,
			date_from, date_to, distance_km, price,
			driver_name, driver_contact, driver_age, driver_license
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, in.VehicleID,
		in.Pickup.Lat, in.Pickup.Lng, in.Pickup.DisplayLabel(),
		in.Drop.Lat, in.Drop.Lng, in.Drop.DisplayLabel(),
		from.Format(domain.DateLayout), to.Format(domain.DateLayout), in.DistanceKm, in.Price,
		in.Driver.Name, in.Driver.Contact, in.Driver.Age, in.Driver.License,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const bookingSelect = `
	SELECT b.id, b.user_id, b.vehicle_id, COALESCE(v.name, ''),
	       b.pickup_lat, b.pickup_lng, b.pickup_label,
	       b.drop_lat, b.drop_lng, b.drop_label,
	       b.date_from, b.date_to, b.distance_km, b.price,
	       b.driver_name, b.driver_contact, b.driver_age, b.driver_license,
	       COALESCE(b.transaction_id, ''), b.created_at,
	       f.rating, f.review_text, f.updated_at
	FROM bookings b
	LEFT JOIN vehicles v ON v.id = b.vehicle_id
	LEFT JOIN feedback f ON f.booking_id = b.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b        models.Booking
		from, to time.Time
		rating   sql.NullInt64
		review   sql.NullString
		fbAt     sql.NullTime
	)
	if err := row.Scan(
		&b.ID, &b.UserID, &b.VehicleID, &b.VehicleName,
		&b.Pickup.Lat, &b.Pickup.Lng, &b.Pickup.Label,
		&b.Drop.Lat, &b.Drop.Lng, &b.Drop.Label,
		&from, &to, &b.DistanceKm, &b.Price,
		&b.Driver.Name, &b.Driver.Contact, &b.Driver.Age, &b.Driver.License,
		&b.TransactionID, &b.CreatedAt,
		&rating, &review, &fbAt,
	); err != nil {
		return models.Booking{}, err
	}
	b.DateFrom = from.Format(domain.DateLayout)
	b.DateTo = to.Format(domain.DateLayout)
	if rating.Valid {
		b.Feedback = &models.Feedback{
			BookingID:  b.ID,
			Rating:     int(rating.Int64),
			ReviewText: review.String,
			UpdatedAt:  fbAt.Time,
		}
	}
	return b, nil
}

// ListByUser returns the user's bookings, newest first.
func (r BookingRepository) ListByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	rows, err := db.QueryContext(ctx, bookingSelect+`
		WHERE b.user_id = ?
		ORDER BY b.created_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	db := r.db()
	if db == nil {
		return models.Booking{}, fmt.Errorf("db not available")
	}
	b, err := scanBooking(db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
	}
	return b, err
}

// OwnerOf returns the user id owning the booking.
func (r BookingRepository) OwnerOf(ctx context.Context, id int64) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, fmt.Errorf("db not available")
	}
	var userID int64
	err := db.QueryRowContext(ctx, `SELECT user_id FROM bookings WHERE id = ? LIMIT 1`, id).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFoundError{Resource: "booking", Err: err}
	}
	return userID, err
}

// DeleteOwned removes the booking only when userID owns it. Feedback goes
// with it through the foreign key.
func (r BookingRepository) DeleteOwned(ctx context.Context, id, userID int64) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, fmt.Errorf("db not available")
	}
	res, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
