package storage

import (
	"context"

	"chatvault/backend/internal/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced entity does not exist. Callers
// distinguish it from infrastructure failures with errors.Is.
var ErrNotFound = errors.New("not found")

// Storage is the persistence API the rest of the backend programs against.
// The live-delivery core only ever touches it through this interface, which
// keeps the hub testable without a database.
type Storage interface {
	// Users
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id string) (*models.User, error)
	FindUsersByIDs(ids []string) ([]models.User, error)
	ListUsersExcept(id string) ([]models.User, error)
	UpdateProfilePic(userID, url string) (*models.User, error)

	// Direct messages and pair summaries
	SaveDirectMessage(msg *models.DirectMessage) error
	FindChatByMembers(userA, userB string) (*models.Chat, error)
	CreateChat(chat *models.Chat) error
	UpdateChatLastMessage(chatID string, lm models.LastMessage) error
	ListConversation(userA, userB string) ([]models.DirectMessage, error)
	ListChatsForUser(userID string) ([]models.Chat, error)
	MarkDirectRead(senderID, receiverID string) error
	CountUnreadDirect(senderID, receiverID string) (int64, error)
	RemoveChatMember(chatID, userID string) error

	// Groups
	CreateGroup(group *models.GroupChat) error
	SaveGroup(group *models.GroupChat) error
	DeleteGroup(id string) error
	FindGroupByID(id string) (*models.GroupChat, error)
	ListGroupsForUser(userID string) ([]models.GroupChat, error)
	UpdateGroupLastMessage(chatID string, lm models.LastMessage) error
	SaveGroupMessage(msg *models.GroupMessage) error
	FindGroupMessageView(id string) (*models.GroupMessageView, error)
	ListGroupMessages(chatID string) ([]models.GroupMessageView, error)
	MarkGroupRead(chatID, userID string) error
	CountUnreadGroup(chatID, userID string) (int64, error)
	ExitGroup(groupID, userID string) error

	// Account lifecycle
	DeleteAccount(userID string) error

	// Event firehose
	PublishEvent(event string, payload any) error
}

// Service implements Storage on PostgreSQL (via GORM) plus a Redis client
// for the pub/sub firehose.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}
