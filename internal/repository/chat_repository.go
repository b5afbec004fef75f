package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
)

// ChatRepo provides access to the `chats` table.
type ChatRepo struct{ DB *sql.DB }

func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{DB: db} }

// Create inserts a chat message.
func (r *ChatRepo) Create(ctx context.Context, m model.ChatMessage) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO chats (id, sender_id, sender_name, sender_type, receiver_id, message, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		m.ID, m.SenderID, m.SenderName, string(m.SenderType), m.ReceiverID,
		m.Message, m.CreatedAt.UTC())
	return err
}

// ListBetween returns the full symmetric history between two users, oldest
// first.  There is no pagination: the polling client re-fetches the whole
// conversation each interval.
func (r *ChatRepo) ListBetween(ctx context.Context, a, b string) ([]model.ChatMessage, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, sender_id, sender_name, sender_type, receiver_id, message, created_at
		 FROM chats
		 WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		 ORDER BY created_at ASC`,
		a, b, b, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	msgs := []model.ChatMessage{}
	for rows.Next() {
		var m model.ChatMessage
		var senderType string
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderName, &senderType,
			&m.ReceiverID, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.SenderType = model.ParseRole(senderType)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// PartnerActivity is one row of the conversation derivation: a distinct
// chat partner together with the timestamp of the latest message exchanged.
type PartnerActivity struct {
	PartnerID     string
	LastMessageAt time.Time
}

// PartnerActivityOf groups every message the user sent or received by the
// other party and returns partners ordered by most recent activity.
func (r *ChatRepo) PartnerActivityOf(ctx context.Context, userID string) ([]PartnerActivity, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS partner_id,
		        MAX(created_at) AS last_message_at
		 FROM chats
		 WHERE sender_id = ? OR receiver_id = ?
		 GROUP BY partner_id
		 ORDER BY last_message_at DESC`,
		userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	acts := []PartnerActivity{}
	for rows.Next() {
		var a PartnerActivity
		if err := rows.Scan(&a.PartnerID, &a.LastMessageAt); err != nil {
			return nil, err
		}
		acts = append(acts, a)
	}
	return acts, rows.Err()
}
