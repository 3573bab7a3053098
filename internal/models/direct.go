package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DirectMessage is one message between two users. Records are immutable
// after creation except for the IsRead flip.
type DirectMessage struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	SenderID   string    `gorm:"type:uuid;not null;index:idx_direct_pair" json:"senderId"`
	ReceiverID string    `gorm:"type:uuid;not null;index:idx_direct_pair" json:"receiverId"`
	Text       string    `json:"text"`
	Image      string    `json:"image,omitempty"`
	IsRead     bool      `gorm:"not null;default:false" json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (m *DirectMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// LastMessage is the denormalized preview embedded in chat summaries. It is
// a cache over message history and can always be re-derived from it.
type LastMessage struct {
	Text     string    `json:"text"`
	SenderID string    `gorm:"type:uuid" json:"senderId"`
	At       time.Time `json:"createdAt"`
}

// Chat is the summary document for one unordered pair of users. At most one
// row exists whose member set equals a given pair.
type Chat struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Members     pq.StringArray `gorm:"type:text[];not null" json:"members"`
	LastMessage LastMessage    `gorm:"embedded;embeddedPrefix:last_message_" json:"lastMessage"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// ChatPreview is the per-peer entry returned by the direct chat list: the
// other participant plus the summary and unread counter.
type ChatPreview struct {
	ChatID              string     `json:"chatId"`
	UserID              string     `json:"userId"`
	Name                string     `json:"name"`
	ProfilePic          string     `json:"profilePic"`
	LastMessage         string     `json:"lastMessage"`
	LastMessageSender   string     `json:"lastMessageSender"`
	LastMessageSenderID string     `json:"lastMessageSenderId,omitempty"`
	LatestMessageTime   *time.Time `json:"latestMessageTime"`
	UnreadCount         int64      `json:"unreadCount"`
}
