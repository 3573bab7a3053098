package chathub

import (
	"chatvault/backend/internal/models"
	"chatvault/backend/internal/storage"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// handleSendMessage is the direct-message pipeline: persist the message,
// upsert the pair summary, and only after both writes succeed push a live
// event to the receiver if they are bound. A receiver that vanished between
// lookup and send is a normal delivery miss, not an error.
func (h *Hub) handleSendMessage(p models.SendMessagePayload) error {
	if p.SenderID == "" || p.ReceiverID == "" || p.Message == "" {
		return errors.New("senderId, receiverId and message are required")
	}

	msg := &models.DirectMessage{
		SenderID:   p.SenderID,
		ReceiverID: p.ReceiverID,
		Text:       p.Message,
	}
	if err := h.Storage.SaveDirectMessage(msg); err != nil {
		return err
	}

	lm := models.LastMessage{Text: msg.Text, SenderID: msg.SenderID, At: msg.CreatedAt}
	chat, err := h.Storage.FindChatByMembers(p.SenderID, p.ReceiverID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		err = h.Storage.CreateChat(&models.Chat{
			Members:     pq.StringArray{p.SenderID, p.ReceiverID},
			LastMessage: lm,
		})
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if err := h.Storage.UpdateChatLastMessage(chat.ID, lm); err != nil {
			return err
		}
	}

	// Durable writes are done; everything below is best effort.
	if err := h.Storage.PublishEvent(models.EventReceiveMessage, msg); err != nil {
		h.log.Warn("firehose publish failed", zap.Error(err))
	}

	if connID, ok := h.Presence.Lookup(p.ReceiverID); ok {
		h.Send(connID, models.EventReceiveMessage, models.ReceiveMessagePayload{
			SenderID: p.SenderID,
			Message:  p.Message,
		})
	}
	return nil
}
