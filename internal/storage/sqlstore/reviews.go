package sqlstore

import (
	"fmt"

	"github.com/julianstephens/pokrok/internal/models"
)

// AddDailyReview records a review. A second review for the same date replaces the note.
func (s *Store) AddDailyReview(review models.DailyReview) error {
	_, err := s.exec(`
		INSERT INTO daily_reviews (id, date, note, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET note = excluded.note`,
		review.ID, review.Date, review.Note, formatTime(review.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save daily review for %s: %w", review.Date, err)
	}
	return nil
}

func (s *Store) GetDailyReview(date string) (models.DailyReview, error) {
	var (
		r         models.DailyReview
		createdAt string
	)
	err := s.queryRow("SELECT id, date, note, created_at FROM daily_reviews WHERE date = ?", date).
		Scan(&r.ID, &r.Date, &r.Note, &createdAt)
	if err != nil {
		return models.DailyReview{}, notFound(err, "daily review", date)
	}
	if r.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.DailyReview{}, err
	}
	return r, nil
}
