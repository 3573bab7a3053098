package chathub_test

import (
	"chatvault/backend/internal/chathub"
	"chatvault/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock over the storage.Storage interface so hub
// tests run without a database.
type MockStorage struct {
	mock.Mock
}

// User operations
func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) FindUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) FindUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) FindUsersByIDs(ids []string) ([]models.User, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) ListUsersExcept(id string) ([]models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) UpdateProfilePic(userID, url string) (*models.User, error) {
	args := m.Called(userID, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Direct messages and pair summaries
func (m *MockStorage) SaveDirectMessage(msg *models.DirectMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) FindChatByMembers(userA, userB string) (*models.Chat, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) CreateChat(chat *models.Chat) error {
	args := m.Called(chat)
	return args.Error(0)
}

func (m *MockStorage) UpdateChatLastMessage(chatID string, lm models.LastMessage) error {
	args := m.Called(chatID, lm)
	return args.Error(0)
}

func (m *MockStorage) ListConversation(userA, userB string) ([]models.DirectMessage, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DirectMessage), args.Error(1)
}

func (m *MockStorage) ListChatsForUser(userID string) ([]models.Chat, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chat), args.Error(1)
}

func (m *MockStorage) MarkDirectRead(senderID, receiverID string) error {
	args := m.Called(senderID, receiverID)
	return args.Error(0)
}

func (m *MockStorage) CountUnreadDirect(senderID, receiverID string) (int64, error) {
	args := m.Called(senderID, receiverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) RemoveChatMember(chatID, userID string) error {
	args := m.Called(chatID, userID)
	return args.Error(0)
}

// Groups
func (m *MockStorage) CreateGroup(group *models.GroupChat) error {
	args := m.Called(group)
	return args.Error(0)
}

func (m *MockStorage) SaveGroup(group *models.GroupChat) error {
	args := m.Called(group)
	return args.Error(0)
}

func (m *MockStorage) DeleteGroup(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) FindGroupByID(id string) (*models.GroupChat, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroupChat), args.Error(1)
}

func (m *MockStorage) ListGroupsForUser(userID string) ([]models.GroupChat, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GroupChat), args.Error(1)
}

func (m *MockStorage) UpdateGroupLastMessage(chatID string, lm models.LastMessage) error {
	args := m.Called(chatID, lm)
	return args.Error(0)
}

func (m *MockStorage) SaveGroupMessage(msg *models.GroupMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) FindGroupMessageView(id string) (*models.GroupMessageView, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroupMessageView), args.Error(1)
}

func (m *MockStorage) ListGroupMessages(chatID string) ([]models.GroupMessageView, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GroupMessageView), args.Error(1)
}

func (m *MockStorage) MarkGroupRead(chatID, userID string) error {
	args := m.Called(chatID, userID)
	return args.Error(0)
}

func (m *MockStorage) CountUnreadGroup(chatID, userID string) (int64, error) {
	args := m.Called(chatID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) ExitGroup(groupID, userID string) error {
	args := m.Called(groupID, userID)
	return args.Error(0)
}

// Account lifecycle
func (m *MockStorage) DeleteAccount(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

// Event firehose
func (m *MockStorage) PublishEvent(event string, payload any) error {
	args := m.Called(event, payload)
	return args.Error(0)
}

// MockClient is a test double for the chathub.Client interface. RecvChannel
// is buffered so hub sends never block the test.
type MockClient struct {
	connID      string
	userID      string
	RecvChannel chan models.OutEvent
}

func newMockClient(connID, userID string) *MockClient {
	return &MockClient{
		connID:      connID,
		userID:      userID,
		RecvChannel: make(chan models.OutEvent, 10),
	}
}

func (c *MockClient) GetID() string                          { return c.connID }
func (c *MockClient) GetUserID() string                      { return c.userID }
func (c *MockClient) GetSendChannel() chan<- models.OutEvent { return c.RecvChannel }
func (c *MockClient) Run()                                   {}
func (c *MockClient) Close()                                 {}

// DrainEvents empties the receive channel and returns what was queued.
func (c *MockClient) DrainEvents() []models.OutEvent {
	var events []models.OutEvent
	for {
		select {
		case ev := <-c.RecvChannel:
			events = append(events, ev)
		default:
			return events
		}
	}
}

var _ chathub.Client = (*MockClient)(nil)
