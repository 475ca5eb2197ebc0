package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the notifier
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// InsertNotification writes one notification row for a user
func (s *Storage) InsertNotification(ctx context.Context, userID, title, message string) error {
	query := `
		INSERT INTO notifications (notification_id, user_id, title, message)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.db.ExecContext(ctx, query, uuid.New().String(), userID, title, message); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	s.logger.Debug("Notification written",
		slog.String("user_id", userID),
		slog.String("title", title),
	)

	return nil
}

// InsertNotifications writes the same notification for a set of users.
// A failure for one user aborts the rest; the message will be redelivered
// and the duplicate rows are harmless.
func (s *Storage) InsertNotifications(ctx context.Context, userIDs []string, title, message string) error {
	for _, userID := range userIDs {
		if err := s.InsertNotification(ctx, userID, title, message); err != nil {
			return err
		}
	}
	return nil
}

// GetUserEmail looks up a user's e-mail address for mail dispatch
func (s *Storage) GetUserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	if err := s.db.GetContext(ctx, &email, `SELECT email FROM users WHERE user_id = $1`, userID); err != nil {
		return "", fmt.Errorf("failed to get user email: %w", err)
	}
	return email, nil
}
