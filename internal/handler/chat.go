package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/repository"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/service"
)

// ChatHandler bundles dependencies for chat endpoints.  Delivery is polling
// only: clients re-fetch history on an interval, nothing is pushed.
type ChatHandler struct {
	Chat *service.Chat
}

func NewChatHandler(chat *service.Chat) *ChatHandler {
	return &ChatHandler{Chat: chat}
}

// ----- DTOs -----

type sendMessageReq struct {
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

type messageResp struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	SenderType string    `json:"senderType"`
	ReceiverID string    `json:"receiverId"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

type conversationResp struct {
	PartnerID     string    `json:"partnerId"`
	PartnerName   string    `json:"partnerName"`
	PartnerType   string    `json:"partnerType"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

func toMessageResp(m model.ChatMessage) messageResp {
	return messageResp{
		ID:         m.ID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		SenderType: string(m.SenderType),
		ReceiverID: m.ReceiverID,
		Message:    m.Message,
		CreatedAt:  m.CreatedAt,
	}
}

// Send persists one message from the caller to the receiver.
func (h *ChatHandler) Send(c echo.Context) error {
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.ReceiverID == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "receiverId and message are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Chat.Send(ctx, callerID(c), req.ReceiverID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSenderRole):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only teachers and students can send messages"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown sender"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send message failed"})
	}
	return c.JSON(http.StatusCreated, toMessageResp(m))
}

// Messages returns the full symmetric history between senderId and
// receiverId, oldest first.  The caller must be one of the two; there is no
// pagination because the polling client re-fetches the whole thread.
func (h *ChatHandler) Messages(c echo.Context) error {
	a := c.QueryParam("senderId")
	b := c.QueryParam("receiverId")
	if a == "" || b == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "senderId and receiverId are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.Chat.History(ctx, callerID(c), a, b)
	if err != nil {
		if errors.Is(err, service.ErrNotChatParticipant) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list messages failed"})
	}
	out := make([]messageResp, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

// Conversations lists the caller's distinct chat partners, most recent
// activity first.
func (h *ChatHandler) Conversations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	convs, err := h.Chat.Conversations(ctx, callerID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list conversations failed"})
	}
	out := make([]conversationResp, 0, len(convs))
	for _, cv := range convs {
		out = append(out, conversationResp{
			PartnerID:     cv.PartnerID,
			PartnerName:   cv.PartnerName,
			PartnerType:   string(cv.PartnerType),
			LastMessageAt: cv.LastMessageAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}
