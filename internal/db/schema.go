package db

import (
	"context"
	"database/sql"
	"fmt"
)

var tables = []struct {
	name string
	ddl  string
}{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	full_name VARCHAR(255) NOT NULL,
	username VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL,
	contact VARCHAR(20) NOT NULL DEFAULT '',
	city VARCHAR(100) NOT NULL DEFAULT '',
	state VARCHAR(100) NOT NULL DEFAULT '',
	pincode VARCHAR(10) NOT NULL DEFAULT '',
	dob VARCHAR(10) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_username (username),
	UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"vehicles", `
CREATE TABLE IF NOT EXISTS vehicles (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	brand VARCHAR(100) NOT NULL DEFAULT '',
	type VARCHAR(20) NOT NULL,
	seating_capacity INT NOT NULL DEFAULT 4,
	fuel_type VARCHAR(30) NOT NULL DEFAULT '',
	transmission VARCHAR(30) NOT NULL DEFAULT '',
	mileage DECIMAL(6,2) NOT NULL DEFAULT 0,
	registration_no VARCHAR(30) NOT NULL DEFAULT '',
	price_per_day DECIMAL(10,2) NOT NULL,
	image_url VARCHAR(500) NOT NULL DEFAULT '',
	description TEXT,
	KEY idx_type (type)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	vehicle_id BIGINT NOT NULL,
	pickup_lat DOUBLE NOT NULL,
	pickup_lng DOUBLE NOT NULL,
	pickup_label VARCHAR(500) NOT NULL,
	drop_lat DOUBLE NOT NULL,
	drop_lng DOUBLE NOT NULL,
	drop_label VARCHAR(500) NOT NULL,
	date_from DATE NOT NULL,
	date_to DATE NOT NULL,
	distance_km DOUBLE NOT NULL DEFAULT 0,
	price BIGINT NOT NULL,
	driver_name VARCHAR(255) NOT NULL,
	driver_contact VARCHAR(20) NOT NULL,
	driver_age INT NOT NULL,
	driver_license VARCHAR(50) NOT NULL,
	created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	KEY idx_user_created (user_id, created_at),
	CONSTRAINT fk_bookings_vehicle FOREIGN KEY (vehicle_id) REFERENCES vehicles(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"feedback", `
CREATE TABLE IF NOT EXISTS feedback (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_id BIGINT NOT NULL,
	rating TINYINT NOT NULL,
	review_text TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_booking (booking_id),
	CONSTRAINT fk_feedback_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
}

// EnsureSchema creates missing tables and adds columns introduced after the
// first release.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db not available")
	}
	for _, t := range tables {
		if HasTable(ctx, db, t.name) {
			continue
		}
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	if !HasColumn(ctx, db, "bookings", "transaction_id") {
		if _, err := db.ExecContext(ctx, `ALTER TABLE bookings ADD COLUMN transaction_id VARCHAR(40) NULL`); err != nil {
			return fmt.Errorf("add bookings.transaction_id: %w", err)
		}
	}
	return nil
}
