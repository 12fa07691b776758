package repositories

import (
	"context"
	"database/sql"
	"fmt"

	intconfig "easyrent/internal/config"
	intdb "easyrent/internal/db"
)

// PaymentRepository records simulated payments against bookings.
type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// AttachTransaction stores txnID on a booking owned by userID. It returns
// the number of rows changed.
func (r PaymentRepository) AttachTransaction(ctx context.Context, bookingID, userID int64, txnID string) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, fmt.Errorf("db not available")
	}
	res, err := db.ExecContext(ctx,
		`UPDATE bookings SET transaction_id = ? WHERE id = ? AND user_id = ?`,
		intdb.NullIfEmpty(txnID), bookingID, userID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
