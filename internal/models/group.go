package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GroupChat holds a named group, its member set and the current admin.
// The admin is always one of the members while the group exists; the group
// is deleted when the last member leaves.
type GroupChat struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	GroupName   string         `gorm:"not null" json:"groupName"`
	Members     pq.StringArray `gorm:"type:text[];not null" json:"members"`
	Admin       string         `gorm:"type:uuid;not null" json:"admin"`
	LastMessage LastMessage    `gorm:"embedded;embeddedPrefix:last_message_" json:"lastMessage"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (g *GroupChat) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return
}

// NextAdmin returns the admin after leaving removes a member: the current
// admin if they stay, otherwise the first remaining member in order.
// Empty string means no members remain.
func (g *GroupChat) NextAdmin(leaving string) string {
	for _, m := range g.Members {
		if m == leaving {
			continue
		}
		if m == g.Admin {
			return g.Admin
		}
	}
	for _, m := range g.Members {
		if m != leaving {
			return m
		}
	}
	return ""
}

// GroupMessage is one message inside a group chat. IsReadBy accumulates the
// ids of members who have seen it; rows are otherwise immutable.
type GroupMessage struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	ChatID    string         `gorm:"type:uuid;not null;index" json:"chatId"`
	SenderID  string         `gorm:"type:uuid;not null" json:"senderId"`
	Text      string         `json:"text"`
	Image     string         `json:"image,omitempty"`
	IsReadBy  pq.StringArray `gorm:"type:text[]" json:"isReadBy"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (m *GroupMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// GroupMessageView is a GroupMessage joined with the sender's display name.
// The live broadcast payload carries this shape, not the bare row.
type GroupMessageView struct {
	GroupMessage
	SenderName string `json:"senderName"`
}

// GroupPreview is the per-group entry of the group chat list.
type GroupPreview struct {
	GroupID             string     `json:"groupId"`
	GroupName           string     `json:"groupName"`
	Admin               string     `json:"admin"`
	Members             []User     `json:"members"`
	LastMessage         string     `json:"lastMessage"`
	LastMessageSender   string     `json:"lastMessageSender"`
	LastMessageSenderID string     `json:"lastMessageSenderId,omitempty"`
	LatestMessageTime   *time.Time `json:"latestMessageTime"`
	UnreadCount         int64      `json:"unreadCount"`
}
