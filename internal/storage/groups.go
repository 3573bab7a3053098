package storage

import (
	"chatvault/backend/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func (s *Service) CreateGroup(group *models.GroupChat) error {
	if err := s.DB.Create(group).Error; err != nil {
		return errors.WithMessage(err, "create group")
	}
	return nil
}

func (s *Service) SaveGroup(group *models.GroupChat) error {
	if err := s.DB.Save(group).Error; err != nil {
		return errors.WithMessage(err, "save group")
	}
	return nil
}

func (s *Service) DeleteGroup(id string) error {
	if err := s.DB.Delete(&models.GroupChat{}, "id = ?", id).Error; err != nil {
		return errors.WithMessage(err, "delete group")
	}
	return nil
}

func (s *Service) FindGroupByID(id string) (*models.GroupChat, error) {
	var group models.GroupChat
	err := s.DB.Where("id = ?", id).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.WithMessage(err, "find group by id")
	}
	return &group, nil
}

func (s *Service) ListGroupsForUser(userID string) ([]models.GroupChat, error) {
	var groups []models.GroupChat
	err := s.DB.Where("? = ANY(members)", userID).
		Order("updated_at desc").
		Find(&groups).Error
	if err != nil {
		return nil, errors.WithMessage(err, "list groups")
	}
	return groups, nil
}

func (s *Service) UpdateGroupLastMessage(chatID string, lm models.LastMessage) error {
	err := s.DB.Model(&models.GroupChat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"last_message_text":      lm.Text,
			"last_message_sender_id": lm.SenderID,
			"last_message_at":        lm.At,
		}).Error
	if err != nil {
		return errors.WithMessage(err, "update group last message")
	}
	return nil
}

func (s *Service) SaveGroupMessage(msg *models.GroupMessage) error {
	if err := s.DB.Create(msg).Error; err != nil {
		return errors.WithMessage(err, "save group message")
	}
	return nil
}

// FindGroupMessageView re-reads one message joined with the sender's name,
// which is what the live broadcast payload carries.
func (s *Service) FindGroupMessageView(id string) (*models.GroupMessageView, error) {
	var view models.GroupMessageView
	err := s.DB.Raw(
		`SELECT gm.*, u.name AS sender_name
		 FROM group_messages gm
		 JOIN users u ON u.id = gm.sender_id
		 WHERE gm.id = ?`, id).Scan(&view).Error
	if err != nil {
		return nil, errors.WithMessage(err, "find group message view")
	}
	if view.ID == "" {
		return nil, ErrNotFound
	}
	return &view, nil
}

func (s *Service) ListGroupMessages(chatID string) ([]models.GroupMessageView, error) {
	var views []models.GroupMessageView
	err := s.DB.Raw(
		`SELECT gm.*, u.name AS sender_name
		 FROM group_messages gm
		 JOIN users u ON u.id = gm.sender_id
		 WHERE gm.chat_id = ?
		 ORDER BY gm.created_at ASC`, chatID).Scan(&views).Error
	if err != nil {
		return nil, errors.WithMessage(err, "list group messages")
	}
	return views, nil
}

// MarkGroupRead adds the user to isReadBy on every message of the chat not
// already carrying them. Set-union semantics, so it is idempotent.
func (s *Service) MarkGroupRead(chatID, userID string) error {
	err := s.DB.Exec(
		`UPDATE group_messages
		 SET is_read_by = array_append(is_read_by, ?)
		 WHERE chat_id = ? AND NOT (? = ANY(COALESCE(is_read_by, '{}')))`,
		userID, chatID, userID).Error
	if err != nil {
		return errors.WithMessage(err, "mark group read")
	}
	return nil
}

// CountUnreadGroup counts messages in the chat sent by others that the user
// has not read yet.
func (s *Service) CountUnreadGroup(chatID, userID string) (int64, error) {
	var n int64
	err := s.DB.Model(&models.GroupMessage{}).
		Where("chat_id = ? AND sender_id <> ? AND NOT (? = ANY(COALESCE(is_read_by, '{}')))",
			chatID, userID, userID).
		Count(&n).Error
	if err != nil {
		return 0, errors.WithMessage(err, "count unread group")
	}
	return n, nil
}

// removeGroupMember takes one member out of a loaded group, deleting the
// group when nobody remains and promoting the first remaining member when
// the admin leaves.
func (s *Service) removeGroupMember(group *models.GroupChat, userID string) error {
	next := group.NextAdmin(userID)
	if next == "" {
		return s.DeleteGroup(group.ID)
	}

	members := group.Members[:0:0]
	for _, m := range group.Members {
		if m != userID {
			members = append(members, m)
		}
	}
	group.Members = members
	group.Admin = next
	return s.SaveGroup(group)
}

// ExitGroup removes the user from the group's member set. Returns
// ErrNotFound when the group does not exist and when the user is not a
// member of it.
func (s *Service) ExitGroup(groupID, userID string) error {
	group, err := s.FindGroupByID(groupID)
	if err != nil {
		return err
	}
	member := false
	for _, m := range group.Members {
		if m == userID {
			member = true
			break
		}
	}
	if !member {
		return ErrNotFound
	}
	return s.removeGroupMember(group, userID)
}
