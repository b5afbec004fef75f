package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/repository"
)

// ErrNotChatParticipant is returned when a caller requests a conversation
// they are not part of.
var ErrNotChatParticipant = errors.New("caller is not part of this conversation")

// ErrSenderRole is returned when the sender is neither a teacher nor a
// student; only real accounts may chat.
var ErrSenderRole = errors.New("only teachers and students can send messages")

// MessageStore is the chat persistence surface.
type MessageStore interface {
	Create(ctx context.Context, m model.ChatMessage) error
	ListBetween(ctx context.Context, a, b string) ([]model.ChatMessage, error)
	PartnerActivityOf(ctx context.Context, userID string) ([]repository.PartnerActivity, error)
}

// UserDirectory resolves identity details for message stamping and partner
// display.
type UserDirectory interface {
	RoleOf(ctx context.Context, id string) (model.Role, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

// Chat implements the polling chat model.  Every call is stateless: the
// consuming client re-fetches on a fixed interval (see internal/poller) and
// nothing here assumes push or subscribe semantics.
type Chat struct {
	Messages MessageStore
	Users    UserDirectory
	Now      func() time.Time
}

func NewChat(messages MessageStore, users UserDirectory) *Chat {
	return &Chat{Messages: messages, Users: users, Now: time.Now}
}

// Send stamps the message with the sender's current name and role and
// persists it.  The receiver is not validated against the users table; a
// dangling receiver simply never polls the conversation.
func (s *Chat) Send(ctx context.Context, senderID, receiverID, message string) (model.ChatMessage, error) {
	sender, err := s.Users.GetByID(ctx, senderID)
	if err != nil {
		return model.ChatMessage{}, err
	}
	if !sender.UserType.Valid() {
		return model.ChatMessage{}, ErrSenderRole
	}
	m := model.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		SenderName: sender.FullName,
		SenderType: sender.UserType,
		ReceiverID: receiverID,
		Message:    message,
		CreatedAt:  s.Now().UTC(),
	}
	if err := s.Messages.Create(ctx, m); err != nil {
		return model.ChatMessage{}, err
	}
	return m, nil
}

// History returns the full symmetric message history between two users,
// oldest first, after verifying the caller is one of them.
func (s *Chat) History(ctx context.Context, callerID, a, b string) ([]model.ChatMessage, error) {
	if callerID != a && callerID != b {
		return nil, ErrNotChatParticipant
	}
	return s.Messages.ListBetween(ctx, a, b)
}

// Conversations derives the caller's distinct partner list ordered by most
// recent activity.  Identity is resolved per partner; a partner whose user
// row is gone is silently skipped rather than erroring out the whole list.
func (s *Chat) Conversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	activity, err := s.Messages.PartnerActivityOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	convs := []model.Conversation{}
	seen := map[string]bool{}
	for _, a := range activity {
		if a.PartnerID == "" || a.PartnerID == userID || seen[a.PartnerID] {
			continue
		}
		seen[a.PartnerID] = true
		partner, err := s.Users.GetByID(ctx, a.PartnerID)
		if err != nil {
			log.Printf("chat: partner %s lookup failed, skipping: %v", a.PartnerID, err)
			continue
		}
		convs = append(convs, model.Conversation{
			PartnerID:     partner.ID,
			PartnerName:   partner.FullName,
			PartnerType:   partner.UserType,
			LastMessageAt: a.LastMessageAt,
		})
	}
	return convs, nil
}
