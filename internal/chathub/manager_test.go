package chathub_test

import (
	"encoding/json"
	"testing"
	"time"

	"chatvault/backend/internal/chathub"
	"chatvault/backend/internal/models"
	"chatvault/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func inbound(c chathub.Client, event string, payload any) chathub.InboundEvent {
	data, _ := json.Marshal(payload)
	return chathub.InboundEvent{Conn: c, Envelope: models.Envelope{Event: event, Data: data}}
}

func TestHub_RegisterUnregister(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewHub(storageMock, zap.NewNop())
	go hub.Run()

	clientA := newMockClient("conn_A", "user_A")

	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, hub.Clients, "conn_A")

	hub.InboundCh <- inbound(clientA, models.EventAddUser, models.AddUserPayload{UserID: "user_A"})
	time.Sleep(100 * time.Millisecond)
	connID, ok := hub.Presence.Lookup("user_A")
	assert.True(t, ok)
	assert.Equal(t, "conn_A", connID)

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, hub.Clients, "conn_A")
	_, ok = hub.Presence.Lookup("user_A")
	assert.False(t, ok, "disconnect must clear the presence binding")
}

func TestHub_StaleDisconnectKeepsNewerBinding(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewHub(storageMock, zap.NewNop())
	go hub.Run()

	oldConn := newMockClient("conn_old", "user_A")
	newConn := newMockClient("conn_new", "user_A")
	hub.RegisterCh <- oldConn
	hub.RegisterCh <- newConn
	hub.InboundCh <- inbound(oldConn, models.EventAddUser, models.AddUserPayload{UserID: "user_A"})
	hub.InboundCh <- inbound(newConn, models.EventAddUser, models.AddUserPayload{UserID: "user_A"})

	// The old connection's disconnect arrives after the rebind.
	hub.UnregisterCh <- oldConn
	time.Sleep(100 * time.Millisecond)

	connID, ok := hub.Presence.Lookup("user_A")
	assert.True(t, ok)
	assert.Equal(t, "conn_new", connID)
}

func TestHub_DirectMessageDeliveredWhenBound(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewHub(storageMock, zap.NewNop())
	go hub.Run()

	storageMock.On("SaveDirectMessage", mock.AnythingOfType("*models.DirectMessage")).Return(nil)
	storageMock.On("FindChatByMembers", "alice", "bob").Return(nil, storage.ErrNotFound)
	storageMock.On("CreateChat", mock.AnythingOfType("*models.Chat")).Return(nil)
	storageMock.On("PublishEvent", models.EventReceiveMessage, mock.Anything).Return(nil)

	sender := newMockClient("conn_alice", "alice")
	receiver := newMockClient("conn_bob", "bob")
	hub.RegisterCh <- sender
	hub.RegisterCh <- receiver
	hub.InboundCh <- inbound(receiver, models.EventAddUser, models.AddUserPayload{UserID: "bob"})

	hub.InboundCh <- inbound(sender, models.EventSendMessage, models.SendMessagePayload{
		SenderID: "alice", ReceiverID: "bob", Message: "hello",
	})
	time.Sleep(100 * time.Millisecond)

	events := receiver.DrainEvents()
	assert.Len(t, events, 1, "receiver must get exactly one live event")
	assert.Equal(t, models.EventReceiveMessage, events[0].Event)
	payload, ok := events[0].Data.(models.ReceiveMessagePayload)
	assert.True(t, ok)
	assert.Equal(t, "alice", payload.SenderID)
	assert.Equal(t, "hello", payload.Message)

	storageMock.AssertCalled(t, "SaveDirectMessage", mock.AnythingOfType("*models.DirectMessage"))
	storageMock.AssertCalled(t, "CreateChat", mock.AnythingOfType("*models.Chat"))
}

func TestHub_DirectMessagePersistsWithoutReceiver(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewHub(storageMock, zap.NewNop())
	go hub.Run()

	storageMock.On("SaveDirectMessage", mock.AnythingOfType("*models.DirectMessage")).Return(nil)
	storageMock.On("FindChatByMembers", "alice", "bob").Return(nil, storage.ErrNotFound)
	storageMock.On("CreateChat", mock.AnythingOfType("*models.Chat")).Return(nil)
	storageMock.On("PublishEvent", models.EventReceiveMessage, mock.Anything).Return(nil)

	sender := newMockClient("conn_alice", "alice")
	offline := newMockClient("conn_bob", "bob")
	hub.RegisterCh <- sender

	hub.InboundCh <- inbound(sender, models.EventSendMessage, models.SendMessagePayload{
		SenderID: "alice", ReceiverID: "bob", Message: "hi",
	})
	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, offline.DrainEvents(), "offline receiver must get nothing")
	storageMock.AssertCalled(t, "SaveDirectMessage", mock.AnythingOfType("*models.DirectMessage"))
}

// Receiver offline for the first message, online and bound for the second.
func TestHub_DeliveryResumesAfterReconnect(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewHub(storageMock, zap.NewNop())
	go hub.Run()

	storageMock.On("SaveDirectMessage", mock.AnythingOfType("*models.DirectMessage")).Return(nil)
	storageMock.On("FindChatByMembers", "alice", "bob").Return(nil, storage.ErrNotFound)
	storageMock.On("CreateChat", mock.AnythingOfType("*models.Chat")).Return(nil)
	storageMock.On("PublishEvent", models.EventReceiveMessage, mock.Anything).Return(nil)

	sender := newMockClient("conn_alice", "alice")
	hub.RegisterCh <- sender

	hub.InboundCh <- inbound(sender, models.EventSendMessage, models.SendMessagePayload{
		SenderID: "alice", ReceiverID: "bob", Message: "hi",
	})
	time.Sleep(100 * time.Millisecond)

	receiver := newMockClient("conn_bob", "bob")
	hub.RegisterCh <- receiver
	hub.InboundCh <- inbound(receiver, models.EventAddUser, models.AddUserPayload{UserID: "bob"})

	hub.InboundCh <- inbound(sender, models.EventSendMessage, models.SendMessagePayload{
		SenderID: "alice", ReceiverID: "bob", Message: "there",
	})
	time.Sleep(100 * time.Millisecond)

	events := receiver.DrainEvents()
	assert.Len(t, events, 1)
	payload := events[0].Data.(models.ReceiveMessagePayload)
	assert.Equal(t, "there", payload.Message)
}

func TestHub_NoDeliveryWhenPersistenceFails(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewHub(storageMock, zap.NewNop())
	go hub.Run()

	storageMock.On("SaveDirectMessage", mock.AnythingOfType("*models.DirectMessage")).
		Return(assert.AnError)

	sender := newMockClient("conn_alice", "alice")
	receiver := newMockClient("conn_bob", "bob")
	hub.RegisterCh <- sender
	hub.RegisterCh <- receiver
	hub.InboundCh <- inbound(receiver, models.EventAddUser, models.AddUserPayload{UserID: "bob"})

	hub.InboundCh <- inbound(sender, models.EventSendMessage, models.SendMessagePayload{
		SenderID: "alice", ReceiverID: "bob", Message: "hello",
	})
	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, receiver.DrainEvents(), "delivery is downstream of durable success")
	storageMock.AssertNotCalled(t, "FindChatByMembers", mock.Anything, mock.Anything)
	storageMock.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
}

func TestHub_SecondMessageUpdatesExistingSummary(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewHub(storageMock, zap.NewNop())
	go hub.Run()

	existing := &models.Chat{ID: "chat1", Members: []string{"alice", "bob"}}
	storageMock.On("SaveDirectMessage", mock.AnythingOfType("*models.DirectMessage")).Return(nil)
	storageMock.On("FindChatByMembers", "bob", "alice").Return(existing, nil)
	storageMock.On("UpdateChatLastMessage", "chat1", mock.Anything).Return(nil)
	storageMock.On("PublishEvent", models.EventReceiveMessage, mock.Anything).Return(nil)

	sender := newMockClient("conn_bob", "bob")
	hub.RegisterCh <- sender

	hub.InboundCh <- inbound(sender, models.EventSendMessage, models.SendMessagePayload{
		SenderID: "bob", ReceiverID: "alice", Message: "back at you",
	})
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "UpdateChatLastMessage", "chat1", mock.Anything)
	storageMock.AssertNotCalled(t, "CreateChat", mock.Anything)
}

func TestHub_GroupBroadcastReachesOnlyJoinedConnections(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewHub(storageMock, zap.NewNop())
	go hub.Run()

	group := &models.GroupChat{ID: "g1", GroupName: "team", Members: []string{"a", "b", "c"}, Admin: "a"}
	view := &models.GroupMessageView{
		GroupMessage: models.GroupMessage{ChatID: "g1", SenderID: "a", Text: "standup"},
		SenderName:   "Alice",
	}
	storageMock.On("SaveGroupMessage", mock.AnythingOfType("*models.GroupMessage")).Return(nil)
	storageMock.On("FindGroupByID", "g1").Return(group, nil)
	storageMock.On("UpdateGroupLastMessage", "g1", mock.Anything).Return(nil)
	storageMock.On("FindGroupMessageView", mock.AnythingOfType("string")).Return(view, nil)
	storageMock.On("PublishEvent", models.EventReceiveGroupMessage, mock.Anything).Return(nil)

	joinedA := newMockClient("conn_a", "a")
	joinedB := newMockClient("conn_b", "b")
	outsider := newMockClient("conn_c", "c")
	hub.RegisterCh <- joinedA
	hub.RegisterCh <- joinedB
	hub.RegisterCh <- outsider

	hub.InboundCh <- inbound(joinedA, models.EventJoinGroup, "g1")
	hub.InboundCh <- inbound(joinedB, models.EventJoinGroup, "g1")
	// outsider is online and even present, but never joined the room
	hub.InboundCh <- inbound(outsider, models.EventAddUser, models.AddUserPayload{UserID: "c"})

	hub.InboundCh <- inbound(joinedA, models.EventSendGroupMessage, models.SendGroupMessagePayload{
		ChatID: "g1", SenderID: "a", Text: "standup",
	})
	time.Sleep(100 * time.Millisecond)

	assert.Len(t, joinedA.DrainEvents(), 1, "sender's connection is in the room too")
	eventsB := joinedB.DrainEvents()
	assert.Len(t, eventsB, 1)
	assert.Equal(t, models.EventReceiveGroupMessage, eventsB[0].Event)
	got := eventsB[0].Data.(*models.GroupMessageView)
	assert.Equal(t, "Alice", got.SenderName)
	assert.Empty(t, outsider.DrainEvents(), "presence does not imply room membership")
}

func TestHub_OrphanGroupMessageStillPersistsAndBroadcasts(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewHub(storageMock, zap.NewNop())
	go hub.Run()

	view := &models.GroupMessageView{
		GroupMessage: models.GroupMessage{ChatID: "ghost", SenderID: "a", Text: "anyone?"},
		SenderName:   "Alice",
	}
	storageMock.On("SaveGroupMessage", mock.AnythingOfType("*models.GroupMessage")).Return(nil)
	storageMock.On("FindGroupByID", "ghost").Return(nil, storage.ErrNotFound)
	storageMock.On("FindGroupMessageView", mock.AnythingOfType("string")).Return(view, nil)
	storageMock.On("PublishEvent", models.EventReceiveGroupMessage, mock.Anything).Return(nil)

	sender := newMockClient("conn_a", "a")
	hub.RegisterCh <- sender
	hub.InboundCh <- inbound(sender, models.EventJoinGroup, "ghost")

	hub.InboundCh <- inbound(sender, models.EventSendGroupMessage, models.SendGroupMessagePayload{
		ChatID: "ghost", SenderID: "a", Text: "anyone?",
	})
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "SaveGroupMessage", mock.AnythingOfType("*models.GroupMessage"))
	storageMock.AssertNotCalled(t, "UpdateGroupLastMessage", mock.Anything, mock.Anything)
	assert.Len(t, sender.DrainEvents(), 1)
}
