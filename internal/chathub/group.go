package chathub

import (
	"chatvault/backend/internal/models"
	"chatvault/backend/internal/storage"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// handleSendGroupMessage is the group-message pipeline: persist the message,
// refresh the group summary when the group exists, re-read the message
// joined with the sender's name, and multicast it to the room. A chatId
// that resolves to no group still gets its message persisted; the broadcast
// reaches whoever joined that room regardless.
func (h *Hub) handleSendGroupMessage(p models.SendGroupMessagePayload) error {
	if p.ChatID == "" || p.SenderID == "" || p.Text == "" {
		return errors.New("chatId, senderId and text are required")
	}

	msg := &models.GroupMessage{
		ChatID:   p.ChatID,
		SenderID: p.SenderID,
		Text:     p.Text,
		IsReadBy: pq.StringArray{},
	}
	if err := h.Storage.SaveGroupMessage(msg); err != nil {
		return err
	}

	lm := models.LastMessage{Text: msg.Text, SenderID: msg.SenderID, At: msg.CreatedAt}
	_, err := h.Storage.FindGroupByID(p.ChatID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		h.log.Warn("group message for unknown group", zap.String("chat", p.ChatID))
	case err != nil:
		return err
	default:
		if err := h.Storage.UpdateGroupLastMessage(p.ChatID, lm); err != nil {
			return err
		}
	}

	// The broadcast payload carries the sender's display name, so re-read
	// the persisted row joined with the user record.
	view, err := h.Storage.FindGroupMessageView(msg.ID)
	if err != nil {
		return errors.WithMessage(err, "enrich group message")
	}

	if err := h.Storage.PublishEvent(models.EventReceiveGroupMessage, view); err != nil {
		h.log.Warn("firehose publish failed", zap.Error(err))
	}

	h.Broadcast(p.ChatID, models.EventReceiveGroupMessage, view)
	return nil
}
