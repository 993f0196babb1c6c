package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/domain"
)

type Messages struct {
	pool *pgxpool.Pool
}

func (m *Messages) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	err := m.pool.QueryRow(ctx, `
INSERT INTO messages (id, workspace_id, sender_id, content)
VALUES ($1, $2, $3, $4)
RETURNING created_at;
`, msg.ID, msg.WorkspaceID, msg.SenderID, msg.Content).Scan(&msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if msg.ReadBy == nil {
		msg.ReadBy = []string{}
	}
	return nil
}

func (m *Messages) ListByWorkspace(ctx context.Context, workspaceID string, limit int) ([]domain.ChatMessage, error) {
	rows, err := m.pool.Query(ctx, `
SELECT id, workspace_id, sender_id, content, read_by, created_at
FROM messages
WHERE workspace_id = $1
ORDER BY created_at DESC
LIMIT $2;
`, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.WorkspaceID, &msg.SenderID, &msg.Content, &msg.ReadBy, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// MarkRead records a read receipt; marking twice is a no-op.
func (m *Messages) MarkRead(ctx context.Context, messageID, userID string) error {
	_, err := m.pool.Exec(ctx, `
UPDATE messages
SET read_by = array_append(read_by, $2)
WHERE id = $1 AND NOT ($2 = ANY(read_by));
`, messageID, userID)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}
