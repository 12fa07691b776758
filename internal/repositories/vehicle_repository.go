package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "easyrent/internal/config"
	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
)

type VehicleRepository struct {
	DB *sql.DB
}

func (r VehicleRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const vehicleSelect = `
	SELECT id, name, brand, type, seating_capacity, fuel_type, transmission,
	       mileage, registration_no, price_per_day, image_url, COALESCE(description, '')
	FROM vehicles`

func scanVehicle(row rowScanner) (models.Vehicle, error) {
	var v models.Vehicle
	var typ string
	err := row.Scan(&v.ID, &v.Name, &v.Brand, &typ, &v.SeatingCapacity, &v.FuelType, &v.Transmission,
		&v.Mileage, &v.RegistrationNo, &v.PricePerDay, &v.ImageURL, &v.Description)
	v.Type = models.VehicleType(typ)
	return v, err
}

// List filters by a case-insensitive name fragment and an exact type.
func (r VehicleRepository) List(ctx context.Context, f models.VehicleFilter) ([]models.Vehicle, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	var where []string
	var args []any
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	query := vehicleSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r VehicleRepository) GetVehicle(ctx context.Context, id int64) (models.Vehicle, error) {
	db := r.db()
	if db == nil {
		return models.Vehicle{}, fmt.Errorf("db not available")
	}
	v, err := scanVehicle(db.QueryRowContext(ctx, vehicleSelect+` WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vehicle{}, domain.NotFoundError{Resource: "vehicle", Err: err}
	}
	return v, err
}
