package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/domain"
)

type Notifications struct {
	pool *pgxpool.Pool
}

func (n *Notifications) Insert(ctx context.Context, rec *domain.Notification) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	err := n.pool.QueryRow(ctx, `
INSERT INTO notifications (id, user_id, type, message)
VALUES ($1, $2, $3, $4)
RETURNING created_at;
`, rec.ID, rec.UserID, rec.Type, rec.Message).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (n *Notifications) ListBySubject(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := n.pool.Query(ctx, `
SELECT id, user_id, type, message, read, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC;
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var rec domain.Notification
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Type, &rec.Message, &rec.Read, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (n *Notifications) MarkRead(ctx context.Context, notificationID string) error {
	_, err := n.pool.Exec(ctx, `
UPDATE notifications SET read = true WHERE id = $1;
`, notificationID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
