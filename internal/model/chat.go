package model

import "time"

// ChatMessage is a row in the `chats` table.  Messages are directional rows;
// a conversation between two users is reconstructed at query time by the
// symmetric (sender, receiver) OR (receiver, sender) lookup.
type ChatMessage struct {
	ID         string
	SenderID   string
	SenderName string
	SenderType Role
	ReceiverID string
	Message    string
	CreatedAt  time.Time
}

// Conversation is a derived view: one distinct chat partner of a user with
// the timestamp of the latest message exchanged with them.
type Conversation struct {
	PartnerID     string
	PartnerName   string
	PartnerType   Role
	LastMessageAt time.Time
}
