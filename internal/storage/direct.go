package storage

import (
	"chatvault/backend/internal/models"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func (s *Service) SaveDirectMessage(msg *models.DirectMessage) error {
	if err := s.DB.Create(msg).Error; err != nil {
		return errors.WithMessage(err, "save direct message")
	}
	return nil
}

// FindChatByMembers locates the one summary row whose member set contains
// both users. Pair chats hold exactly two members, so array containment is
// equivalent to set equality here.
func (s *Service) FindChatByMembers(userA, userB string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.Where("members @> ?", pq.StringArray{userA, userB}).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.WithMessage(err, "find chat by members")
	}
	return &chat, nil
}

func (s *Service) CreateChat(chat *models.Chat) error {
	if err := s.DB.Create(chat).Error; err != nil {
		return errors.WithMessage(err, "create chat")
	}
	return nil
}

func (s *Service) UpdateChatLastMessage(chatID string, lm models.LastMessage) error {
	err := s.DB.Model(&models.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"last_message_text":      lm.Text,
			"last_message_sender_id": lm.SenderID,
			"last_message_at":        lm.At,
		}).Error
	if err != nil {
		return errors.WithMessage(err, "update chat last message")
	}
	return nil
}

// ListConversation returns the full history between two users in both
// directions, oldest first.
func (s *Service) ListConversation(userA, userB string) ([]models.DirectMessage, error) {
	var msgs []models.DirectMessage
	err := s.DB.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at asc").
		Find(&msgs).Error
	if err != nil {
		return nil, errors.WithMessage(err, "list conversation")
	}
	return msgs, nil
}

func (s *Service) ListChatsForUser(userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.DB.Where("? = ANY(members)", userID).
		Order("updated_at desc").
		Find(&chats).Error
	if err != nil {
		return nil, errors.WithMessage(err, "list chats")
	}
	return chats, nil
}

// MarkDirectRead flips every unread message from sender to receiver.
// Running it twice is a no-op the second time.
func (s *Service) MarkDirectRead(senderID, receiverID string) error {
	err := s.DB.Model(&models.DirectMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Update("is_read", true).Error
	if err != nil {
		return errors.WithMessage(err, "mark direct read")
	}
	return nil
}

func (s *Service) CountUnreadDirect(senderID, receiverID string) (int64, error) {
	var n int64
	err := s.DB.Model(&models.DirectMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Count(&n).Error
	if err != nil {
		return 0, errors.WithMessage(err, "count unread direct")
	}
	return n, nil
}

// RemoveChatMember drops one user from a pair summary; the emptied row is
// deleted outright. The other side keeps their view of the chat.
func (s *Service) RemoveChatMember(chatID, userID string) error {
	err := s.DB.Exec(
		`UPDATE chats SET members = array_remove(members, ?) WHERE id = ?`,
		userID, chatID).Error
	if err != nil {
		return errors.WithMessage(err, "remove chat member")
	}
	err = s.DB.Exec(
		`DELETE FROM chats WHERE id = ? AND cardinality(members) = 0`, chatID).Error
	if err != nil {
		return errors.WithMessage(err, "delete empty chat")
	}
	return nil
}
