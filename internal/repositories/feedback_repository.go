package repositories

import (
	"context"
	"database/sql"
	"fmt"

	intconfig "easyrent/internal/config"
)

type FeedbackRepository struct {
	DB *sql.DB
}

func (r FeedbackRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Upsert keeps a single feedback row per booking; a second call overwrites
// rating and text.
func (r FeedbackRepository) Upsert(ctx context.Context, bookingID int64, rating int, reviewText string) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO feedback (booking_id, rating, review_text)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE rating = VALUES(rating), review_text = VALUES(review_text)`,
		bookingID, rating, reviewText,
	)
	return err
}
